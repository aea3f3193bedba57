// Package extract finds URL-like tokens in free text.
package extract

import (
	"regexp"

	"github.com/buemura/scamscan/pkg/types"
)

// urlPattern matches explicit http(s) URLs, bare www. hosts and bare
// host.tld[/path] tokens. Tokens end at the first whitespace.
var urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|[a-z0-9-]+\.[a-z]{2,}(?:/\S*)?)`)

// URLs returns every URL-like token in text in order of appearance,
// duplicates included. Tokens without an http(s) scheme get https://.
func URLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	urls := make([]string, len(matches))
	for i, m := range matches {
		if !types.HasHTTPScheme(m) {
			m = "https://" + m
		}
		urls[i] = m
	}
	return urls
}
