package enrich

import (
	"net/url"
	"strings"
)

// NormalizeSubject canonicalizes a subject identifier so the same
// profile always maps to the same cache and correlation key regardless
// of how the URL was pasted. Scheme and tracking noise are dropped,
// host and path are lowercased, trailing slashes removed. Non-URL
// subjects are lowercased and trimmed.
func NormalizeSubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return ""
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(trimmed)
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimRight(strings.ToLower(parsed.Path), "/")

	return host + path
}
