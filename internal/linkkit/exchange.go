package linkkit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

const defaultUserInfoURL = "https://api.linkedin.com/v2/userinfo"

// CodeExchanger covers the provider half of the flow: building the
// authorization URL, redeeming the authorization code, and fetching the
// signed-in member's profile.
type CodeExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (ProfileClaims, error)
}

// ExchangeConfig configures a LinkedInExchanger. The endpoint and userinfo
// overrides exist for tests; zero values select the public LinkedIn endpoints.
type ExchangeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	HTTPClient   *http.Client
}

// LinkedInExchanger implements CodeExchanger against the LinkedIn OAuth2 and
// OpenID Connect endpoints.
type LinkedInExchanger struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewLinkedInExchanger constructs an exchanger from the supplied configuration.
func NewLinkedInExchanger(configuration ExchangeConfig) *LinkedInExchanger {
	endpoint := linkedin.Endpoint
	if configuration.AuthURL != "" {
		endpoint.AuthURL = configuration.AuthURL
	}
	if configuration.TokenURL != "" {
		endpoint.TokenURL = configuration.TokenURL
	}
	userInfoURL := configuration.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}
	scopes := configuration.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}
	return &LinkedInExchanger{
		oauthConfig: &oauth2.Config{
			ClientID:     configuration.ClientID,
			ClientSecret: configuration.ClientSecret,
			RedirectURL:  configuration.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		httpClient:  configuration.HTTPClient,
	}
}

// AuthCodeURL builds the LinkedIn authorization URL carrying the state token.
func (exchanger *LinkedInExchanger) AuthCodeURL(state string) string {
	return exchanger.oauthConfig.AuthCodeURL(state)
}

// Exchange redeems the authorization code for an access token.
func (exchanger *LinkedInExchanger) Exchange(ctx context.Context, code string) (string, error) {
	token, err := exchanger.oauthConfig.Exchange(exchanger.requestContext(ctx), code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}
	return token.AccessToken, nil
}

// FetchProfile retrieves the userinfo document with a bearer-token client and
// maps it onto ProfileClaims.
func (exchanger *LinkedInExchanger) FetchProfile(ctx context.Context, accessToken string) (ProfileClaims, error) {
	requestContext := exchanger.requestContext(ctx)
	client := oauth2.NewClient(requestContext, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, exchanger.userInfoURL, nil)
	if err != nil {
		return ProfileClaims{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	response, err := client.Do(request)
	if err != nil {
		return ProfileClaims{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return ProfileClaims{}, fmt.Errorf("%w: read response: %v", ErrUserInfo, err)
	}
	if response.StatusCode != http.StatusOK {
		return ProfileClaims{}, fmt.Errorf("%w: status %d: %s", ErrUserInfo, response.StatusCode, body)
	}

	var claims ProfileClaims
	if err := json.Unmarshal(body, &claims); err != nil {
		return ProfileClaims{}, fmt.Errorf("%w: decode userinfo: %v", ErrUserInfo, err)
	}
	return claims, nil
}

// requestContext injects the configured HTTP client for outbound provider calls.
func (exchanger *LinkedInExchanger) requestContext(ctx context.Context) context.Context {
	if exchanger.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, exchanger.httpClient)
}
