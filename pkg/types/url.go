package types

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL parses raw as an absolute URL, prefixing https:// when it
// has no http(s) scheme.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}

	if !HasHTTPScheme(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("URL %q has no hostname", raw)
	}
	return u, nil
}

// HasHTTPScheme reports whether raw starts with http:// or https://,
// ignoring case.
func HasHTTPScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
