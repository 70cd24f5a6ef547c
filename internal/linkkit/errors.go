package linkkit

import "errors"

var (
	// ErrEmptyTemplateID indicates a state token was requested without a template identifier.
	ErrEmptyTemplateID = errors.New("flow_state.empty_template_id")
	// ErrStateNotFound indicates the supplied state token was not issued or already redeemed.
	ErrStateNotFound = errors.New("flow_state.not_found")
	// ErrStateExpired indicates the state token expired before redemption.
	ErrStateExpired = errors.New("flow_state.expired")
	// ErrSessionNotFound indicates no profile is stored under the supplied session identifier.
	ErrSessionNotFound = errors.New("session_store.not_found")
	// ErrTokenExchange indicates the provider rejected or failed the authorization-code exchange.
	ErrTokenExchange = errors.New("exchange.token_failed")
	// ErrUserInfo indicates the provider userinfo fetch failed or returned an unexpected shape.
	ErrUserInfo = errors.New("exchange.userinfo_failed")
)
