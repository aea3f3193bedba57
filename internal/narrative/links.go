package narrative

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	linkPattern = regexp.MustCompile(`(?i)https?://[\w.-]+(?:\.[\w.-]+)+[\w\-._~:/?#\[\]@!$&'()*+,;=]*`)

	linkTLDs       = []string{".ru", ".cn", ".tk", ".ml", ".ga", ".cf", ".gq", ".work", ".zip", ".review"}
	linkShorteners = []string{"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly", "adf.ly", "bit.do"}
)

// SuspiciousLinks returns the explicit http(s) links in message whose host
// uses a high-abuse TLD, a shortener, punycode or more than four labels.
func SuspiciousLinks(message string) []string {
	var out []string
	for _, link := range linkPattern.FindAllString(message, -1) {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if suspiciousHost(host) {
			out = append(out, link)
		}
	}
	return out
}

func suspiciousHost(host string) bool {
	for _, tld := range linkTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	for _, s := range linkShorteners {
		if strings.Contains(host, s) {
			return true
		}
	}
	return strings.HasPrefix(host, "xn--") || len(strings.Split(host, ".")) > 4
}

// appendLinkWarning adds the link warning section when message contains
// suspicious links.
func appendLinkWarning(narrative, message string) string {
	links := SuspiciousLinks(message)
	if len(links) == 0 {
		return narrative
	}
	var b strings.Builder
	b.WriteString(narrative)
	b.WriteString("\n\n" + SectionLinks + "\nPossible suspicious links detected:")
	for _, l := range links {
		b.WriteString("\n- " + l)
	}
	return b.String()
}
