package linkkit

import "time"

// ServerConfig configures the LinkedIn application, redirect targets, and state TTL.
type ServerConfig struct {
	LinkedInClientID     string
	LinkedInClientSecret string
	RedirectURL          string
	OAuthScopes          []string
	PublicBaseURL        string
	FrontendBaseURL      string
	StateTTL             time.Duration
}
