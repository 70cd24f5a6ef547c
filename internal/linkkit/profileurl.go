package linkkit

import (
	"net/url"
	"strings"
)

const memberProfilePathPrefix = "/in/"

// ValidateProfileURL reports whether raw looks like a public LinkedIn member
// profile URL (https://www.linkedin.com/in/<slug>). Any other scheme, host, or
// path shape is rejected.
func ValidateProfileURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "www.linkedin.com" && host != "linkedin.com" {
		return false
	}
	path := parsed.EscapedPath()
	if !strings.HasPrefix(path, memberProfilePathPrefix) {
		return false
	}
	slug := strings.TrimSuffix(strings.TrimPrefix(path, memberProfilePathPrefix), "/")
	return slug != "" && !strings.Contains(slug, "/")
}
