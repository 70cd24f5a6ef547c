package linkkit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestLinkedInExchangerAuthCodeURL(t *testing.T) {
	t.Parallel()
	exchanger := NewLinkedInExchanger(ExchangeConfig{
		ClientID:    "client-123",
		RedirectURL: "https://bridge.example.com/api/linkedin/callback",
		Scopes:      []string{"openid", "profile", "email"},
	})

	rawURL := exchanger.AuthCodeURL("state-abc")
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse authorization url: %v", err)
	}
	if !strings.HasPrefix(rawURL, "https://www.linkedin.com/oauth/v2/authorization") {
		t.Fatalf("unexpected authorization endpoint: %s", rawURL)
	}

	query := parsed.Query()
	if query.Get("response_type") != "code" {
		t.Fatalf("expected response_type=code, got %q", query.Get("response_type"))
	}
	if query.Get("client_id") != "client-123" {
		t.Fatalf("expected client id, got %q", query.Get("client_id"))
	}
	if query.Get("state") != "state-abc" {
		t.Fatalf("expected state token, got %q", query.Get("state"))
	}
	if query.Get("redirect_uri") != "https://bridge.example.com/api/linkedin/callback" {
		t.Fatalf("expected redirect uri, got %q", query.Get("redirect_uri"))
	}
	if !strings.Contains(query.Get("scope"), "openid") {
		t.Fatalf("expected openid scope, got %q", query.Get("scope"))
	}
}

func TestLinkedInExchangerExchange(t *testing.T) {
	t.Parallel()
	tokenServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("expected POST token request, got %s", request.Method)
		}
		if err := request.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if request.FormValue("code") != "code-xyz" && request.PostFormValue("code") != "code-xyz" {
			t.Errorf("expected authorization code, got %q", request.FormValue("code"))
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"access_token":"token-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	exchanger := NewLinkedInExchanger(ExchangeConfig{
		ClientID:     "client-123",
		ClientSecret: "secret",
		TokenURL:     tokenServer.URL,
	})

	accessToken, err := exchanger.Exchange(context.Background(), "code-xyz")
	if err != nil {
		t.Fatalf("exchange code: %v", err)
	}
	if accessToken != "token-123" {
		t.Fatalf("expected access token, got %q", accessToken)
	}
}

func TestLinkedInExchangerExchangeFailure(t *testing.T) {
	t.Parallel()
	tokenServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenServer.Close()

	exchanger := NewLinkedInExchanger(ExchangeConfig{
		ClientID:     "client-123",
		ClientSecret: "secret",
		TokenURL:     tokenServer.URL,
	})

	_, err := exchanger.Exchange(context.Background(), "stale-code")
	if !errors.Is(err, ErrTokenExchange) {
		t.Fatalf("expected ErrTokenExchange, got %v", err)
	}
}

func TestLinkedInExchangerFetchProfile(t *testing.T) {
	t.Parallel()
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("expected bearer token, got %q", got)
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"sub": "abc123",
			"name": "Jane Doe",
			"given_name": "Jane",
			"family_name": "Doe",
			"picture": "https://media.example.com/jane.jpg",
			"email": "jane.doe@example.com",
			"email_verified": true
		}`))
	}))
	defer userInfoServer.Close()

	exchanger := NewLinkedInExchanger(ExchangeConfig{UserInfoURL: userInfoServer.URL})

	claims, err := exchanger.FetchProfile(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if claims.Name != "Jane Doe" || claims.GivenName != "Jane" || claims.FamilyName != "Doe" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Email == nil || *claims.Email != "jane.doe@example.com" {
		t.Fatalf("expected email claim, got %v", claims.Email)
	}
	if !claims.EmailVerified {
		t.Fatalf("expected email_verified true")
	}
}

func TestLinkedInExchangerFetchProfileWithoutEmail(t *testing.T) {
	t.Parallel()
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"sub":"abc123","name":"Jane Doe","given_name":"Jane","family_name":"Doe"}`))
	}))
	defer userInfoServer.Close()

	exchanger := NewLinkedInExchanger(ExchangeConfig{UserInfoURL: userInfoServer.URL})

	claims, err := exchanger.FetchProfile(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if claims.Email != nil {
		t.Fatalf("expected nil email, got %q", *claims.Email)
	}
	if claims.EmailVerified {
		t.Fatalf("expected email_verified false")
	}
}

func TestLinkedInExchangerFetchProfileUpstreamError(t *testing.T) {
	t.Parallel()
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer userInfoServer.Close()

	exchanger := NewLinkedInExchanger(ExchangeConfig{UserInfoURL: userInfoServer.URL})

	_, err := exchanger.FetchProfile(context.Background(), "token-123")
	if !errors.Is(err, ErrUserInfo) {
		t.Fatalf("expected ErrUserInfo, got %v", err)
	}
}
