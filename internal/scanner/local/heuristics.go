package local

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/buemura/scamscan/pkg/types"
)

var (
	suspiciousTLDs = []string{".xyz", ".top", ".click", ".tk", ".ml", ".ga", ".cf", ".gq", ".work", ".fit"}

	shorteners = []string{
		"bit.ly", "tinyurl.com", "short.link", "tiny.cc", "t.co", "goo.gl",
		"ow.ly", "buff.ly", "is.gd", "rebrand.ly", "cutt.ly", "linktr.ee",
	}

	suspiciousExtensions = []string{".exe", ".zip", ".scr", ".js", ".jar", ".bat", ".cmd", ".vbs", ".ps1"}

	authPathTerms = []string{
		"login", "signin", "account", "verify", "secure", "update", "password",
		"confirm", "security", "authenticate", "wallet", "recover",
	}

	sensitiveParams = []string{"token", "auth", "key", "pass", "pwd", "secret", "hash"}

	hexLabel       = regexp.MustCompile(`(?i)^[0-9a-f]+$`)
	ipv4Host       = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
	repeatedEscape = regexp.MustCompile(`%{2,}`)
	repeatedDots   = regexp.MustCompile(`\.{2,}`)
	base64Value    = regexp.MustCompile(`^[A-Za-z0-9+/]{20,}={0,2}$`)
	injection      = regexp.MustCompile(`(?i)<script|javascript:|data:`)
)

// target is the parsed view of a URL shared by every heuristic.
type target struct {
	host   string
	labels []string
	path   string
	params []param
}

type param struct {
	name  string
	value string
}

// hit is what a heuristic reports when it fires.
type hit struct {
	status types.SourceStatus
	reason string
}

// Heuristic is a single structural check over a URL.
type Heuristic struct {
	Name  string
	Check func(t target) *hit
}

func newTarget(u *url.URL) target {
	host := strings.ToLower(u.Hostname())
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return target{
		host:   host,
		labels: strings.Split(host, "."),
		path:   path,
		params: parseParams(u.RawQuery),
	}
}

// parseParams keeps every name/value pair in order, duplicates included.
func parseParams(raw string) []param {
	if raw == "" {
		return nil
	}
	var params []param
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		if n, err := url.QueryUnescape(name); err == nil {
			name = n
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		params = append(params, param{name: name, value: value})
	}
	return params
}

func suspicious(reason string) *hit { return &hit{status: types.StatusSuspicious, reason: reason} }
func malicious(reason string) *hit  { return &hit{status: types.StatusMalicious, reason: reason} }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// isShortener reports whether host is a listed shortener or one of its
// subdomains.
func isShortener(host string) bool {
	for _, s := range shorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

// Heuristics returns the host, path and query checks in evaluation order.
func Heuristics() []Heuristic {
	return []Heuristic{
		{
			Name: "suspicious-tld",
			Check: func(t target) *hit {
				for _, tld := range suspiciousTLDs {
					if strings.HasSuffix(t.host, tld) {
						return suspicious("Suspicious TLD: " + t.labels[len(t.labels)-1])
					}
				}
				return nil
			},
		},
		{
			Name: "subdomain-count",
			Check: func(t target) *hit {
				if len(t.labels) > 3 {
					return suspicious("Unusual number of subdomains: " + strconv.Itoa(len(t.labels)))
				}
				return nil
			},
		},
		{
			Name: "hex-label",
			Check: func(t target) *hit {
				if hexLabel.MatchString(t.labels[0]) {
					return suspicious("Domain contains only numbers or hex characters")
				}
				return nil
			},
		},
		{
			Name: "shortener",
			Check: func(t target) *hit {
				if isShortener(t.host) {
					return suspicious("URL shortener detected")
				}
				return nil
			},
		},
		{
			Name: "ip-host",
			Check: func(t target) *hit {
				if ipv4Host.MatchString(t.host) {
					return suspicious("Direct IP address used as domain")
				}
				return nil
			},
		},
		{
			Name: "file-extension",
			Check: func(t target) *hit {
				if t.path == "/" {
					return nil
				}
				lower := strings.ToLower(t.path)
				for _, ext := range suspiciousExtensions {
					if strings.HasSuffix(lower, ext) {
						return malicious("Suspicious file extension: " + t.path[strings.LastIndex(t.path, ".")+1:])
					}
				}
				return nil
			},
		},
		{
			Name: "auth-path",
			Check: func(t target) *hit {
				if t.path != "/" && containsAny(strings.ToLower(t.path), authPathTerms) {
					return suspicious("Path contains suspicious authentication-related terms")
				}
				return nil
			},
		},
		{
			Name: "path-encoding",
			Check: func(t target) *hit {
				if t.path != "/" && (repeatedEscape.MatchString(t.path) || repeatedDots.MatchString(t.path)) {
					return suspicious("Path contains suspicious encoding patterns")
				}
				return nil
			},
		},
		{
			Name: "sensitive-params",
			Check: func(t target) *hit {
				for _, p := range t.params {
					if containsAny(strings.ToLower(p.name), sensitiveParams) {
						return suspicious("Query contains sensitive parameters")
					}
				}
				return nil
			},
		},
		{
			Name: "encoded-values",
			Check: func(t target) *hit {
				for _, p := range t.params {
					if base64Value.MatchString(p.value) {
						return suspicious("Query contains possible encoded data")
					}
				}
				return nil
			},
		},
		{
			Name: "script-injection",
			Check: func(t target) *hit {
				for _, p := range t.params {
					if injection.MatchString(p.value) {
						return malicious("Query contains possible script injection")
					}
				}
				return nil
			},
		},
		{
			Name: "param-count",
			Check: func(t target) *hit {
				if len(t.params) > 10 {
					return suspicious("Unusually high number of query parameters")
				}
				return nil
			},
		},
		{
			Name: "non-ascii-host",
			Check: func(t target) *hit {
				for i := 0; i < len(t.host); i++ {
					if t.host[i] >= utf8.RuneSelf {
						return suspicious("Domain contains non-ASCII characters")
					}
				}
				return nil
			},
		},
		{
			Name: "host-length",
			Check: func(t target) *hit {
				if len(t.host) > 50 {
					return suspicious("Unusually long domain name")
				}
				return nil
			},
		},
	}
}
