package domain

import (
	"net/url"
	"strings"
)

// allowedPostHosts are the hostnames accepted for social-post URLs.
var allowedPostHosts = map[string]struct{}{
	"twitter.com":     {},
	"www.twitter.com": {},
	"x.com":           {},
	"www.x.com":       {},
}

// PostRef is a validated reference to a social post.
type PostRef struct {
	// Author is the account name from the URL path.
	Author string

	// PostID is the numeric status identifier.
	PostID string

	// Host is the lowercased hostname the URL used.
	Host string

	// URL is the original URL exactly as submitted.
	URL string
}

// ParsePostURL validates a post URL and extracts its author and post id.
// The URL must use an allowed host and a /{author}/status/{id} path.
// Failures return a ValidationError whose message distinguishes a malformed
// URL, a disallowed domain, and a missing status segment.
func ParsePostURL(raw string) (*PostRef, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, NewValidationErrorWithValue("url", "malformed post URL", raw)
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := allowedPostHosts[host]; !ok {
		return nil, NewValidationErrorWithValue("url", "unsupported domain: "+host, raw)
	}

	segments := splitPath(u.Path)
	if len(segments) < 3 || segments[1] != "status" {
		return nil, NewValidationErrorWithValue("url", "expected /{author}/status/{id} path", raw)
	}

	return &PostRef{
		Author: segments[0],
		PostID: segments[2],
		Host:   host,
		URL:    raw,
	}, nil
}

// IsValidPostURL reports whether raw is an accepted post URL.
func IsValidPostURL(raw string) bool {
	_, err := ParsePostURL(raw)
	return err == nil
}

// splitPath splits a URL path into non-empty segments.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}

	return segments
}
