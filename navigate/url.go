package navigate

import "strings"

// CompanyContext identifies the company whose founders are being resolved.
type CompanyContext struct {
	Name       string
	ProfileURL string
}

// NormalizeURL trims whitespace and guarantees exactly one trailing slash
// is present. It is idempotent.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// RosterURL is the company's people page, or "" without a profile URL.
func RosterURL(profileURL string) string {
	u := NormalizeURL(profileURL)
	if u == "" {
		return ""
	}
	return u + "people/"
}
