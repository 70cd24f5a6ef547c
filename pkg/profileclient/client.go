package profileclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config configures the Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// DefaultTimeout bounds requests when Config.HTTPClient is nil.
const DefaultTimeout = 10 * time.Second

// Sentinel errors exposed by the client.
var (
	ErrMissingBaseURL    = errors.New("profile.client.missing_base_url")
	ErrInvalidBaseURL    = errors.New("profile.client.invalid_base_url")
	ErrMissingProfileURL = errors.New("profile.client.missing_profile_url")
	ErrMissingTemplateID = errors.New("profile.client.missing_template_id")
	ErrMissingSessionID  = errors.New("profile.client.missing_session_id")
	ErrImportRejected    = errors.New("profile.client.import_rejected")
	ErrSessionNotFound   = errors.New("profile.client.session_not_found")
	ErrUnexpectedStatus  = errors.New("profile.client.unexpected_status")
)

// Client calls an inbridge deployment over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Profile is the imported profile returned by the user-data endpoint. ID holds
// the template identifier the import was requested for; Email is nil when the
// member has not shared an address.
type Profile struct {
	ID             string  `json:"id"`
	FullName       string  `json:"fullName"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	ProfilePicture string  `json:"profilePicture"`
	Email          *string `json:"email"`
	EmailVerified  bool    `json:"emailVerified"`
}

// New constructs a Client after validating the supplied configuration.
func New(configuration Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("profile.client.new: %w", ErrMissingBaseURL)
	}
	parsed, parseErr := url.Parse(baseURL)
	if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("profile.client.new: %w", ErrInvalidBaseURL)
	}
	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// StartImport requests an authorization URL for the given profile URL and
// template. The caller sends the browser there to begin the LinkedIn consent
// round-trip.
func (client *Client) StartImport(ctx context.Context, linkedinURL string, templateID string) (string, error) {
	if strings.TrimSpace(linkedinURL) == "" {
		return "", fmt.Errorf("profile.client.start_import: %w", ErrMissingProfileURL)
	}
	if strings.TrimSpace(templateID) == "" {
		return "", fmt.Errorf("profile.client.start_import: %w", ErrMissingTemplateID)
	}

	requestBody, marshalErr := json.Marshal(map[string]string{
		"linkedinUrl": linkedinURL,
		"templateId":  templateID,
	})
	if marshalErr != nil {
		return "", fmt.Errorf("profile.client.start_import: %w", marshalErr)
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/api/linkedin/import", bytes.NewReader(requestBody))
	if requestErr != nil {
		return "", fmt.Errorf("profile.client.start_import: %w", requestErr)
	}
	request.Header.Set("Content-Type", "application/json")

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return "", fmt.Errorf("profile.client.start_import: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if readErr != nil {
		return "", fmt.Errorf("profile.client.start_import: %w", readErr)
	}

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return "", fmt.Errorf("profile.client.start_import: %w: %s", ErrImportRejected, errorCode(body))
	default:
		return "", fmt.Errorf("profile.client.start_import: %w: %d", ErrUnexpectedStatus, response.StatusCode)
	}

	var payload struct {
		AuthorizationURL string `json:"authorizationUrl"`
	}
	if unmarshalErr := json.Unmarshal(body, &payload); unmarshalErr != nil {
		return "", fmt.Errorf("profile.client.start_import: %w", unmarshalErr)
	}
	if payload.AuthorizationURL == "" {
		return "", fmt.Errorf("profile.client.start_import: %w: empty authorization url", ErrUnexpectedStatus)
	}
	return payload.AuthorizationURL, nil
}

// FetchProfile retrieves the imported profile stored under a session identifier.
func (client *Client) FetchProfile(ctx context.Context, sessionID string) (*Profile, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("profile.client.fetch_profile: %w", ErrMissingSessionID)
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/api/user-data/"+url.PathEscape(sessionID), nil)
	if requestErr != nil {
		return nil, fmt.Errorf("profile.client.fetch_profile: %w", requestErr)
	}

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return nil, fmt.Errorf("profile.client.fetch_profile: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if readErr != nil {
		return nil, fmt.Errorf("profile.client.fetch_profile: %w", readErr)
	}

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("profile.client.fetch_profile: %w", ErrSessionNotFound)
	default:
		return nil, fmt.Errorf("profile.client.fetch_profile: %w: %d", ErrUnexpectedStatus, response.StatusCode)
	}

	var profile Profile
	if unmarshalErr := json.Unmarshal(body, &profile); unmarshalErr != nil {
		return nil, fmt.Errorf("profile.client.fetch_profile: %w", unmarshalErr)
	}
	return &profile, nil
}

func errorCode(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return "unknown"
	}
	return payload.Error
}
