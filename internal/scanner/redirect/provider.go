// Package redirect follows a URL's redirect chain so shortened and
// forwarding links are judged by where they actually land.
package redirect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/internal/scanner/local"
	"github.com/buemura/scamscan/pkg/types"
)

// ProviderName identifies the redirect check among URL verdict sources.
const ProviderName = "redirectChain"

// DefaultMaxHops bounds how many redirects are followed.
const DefaultMaxHops = 10

// longChain is the hop count above which a chain is suspicious by itself.
const longChain = 3

// redirectParams are query parameter names commonly abused to bounce a
// visitor through a trusted site to another one.
var redirectParams = []string{
	"url", "redirect", "next", "return", "goto",
	"dest", "redir", "redirect_uri", "return_to",
}

// Config bounds the chain that is followed.
type Config struct {
	MaxHops int
}

// Provider implements scanner.Provider.
type Provider struct {
	maxHops int
	client  *http.Client
}

// New creates a redirect-chain provider.
func New(cfg Config, opts scanner.Options) *Provider {
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	client := opts.HTTPClient()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Provider{maxHops: maxHops, client: client}
}

func (p *Provider) Name() string        { return ProviderName }
func (p *Provider) Description() string { return "Redirect chain and landing page check" }

// Scan checks the URL's query for embedded redirects, then follows its
// redirect chain hop by hop. A chain that leaves the original site is
// judged by the local heuristics on its landing URL.
func (p *Provider) Scan(ctx context.Context, u string) types.SourceResult {
	start, err := types.NormalizeURL(u)
	if err != nil {
		return scanner.Failed(ProviderName, err)
	}

	status := types.StatusSafe
	var reasons []string
	escalate := func(s types.SourceStatus, reason string) {
		status = types.Escalate(status, s)
		reasons = append(reasons, reason)
	}

	for _, r := range embeddedRedirects(start) {
		escalate(types.StatusSuspicious, r)
	}

	hops, err := p.follow(ctx, start)
	if err != nil && !errors.Is(err, errTooManyHops) {
		return types.SourceResult{Status: types.StatusError, Detail: err.Error()}
	}
	if errors.Is(err, errTooManyHops) {
		escalate(types.StatusSuspicious, fmt.Sprintf("More than %d redirects", p.maxHops))
	}

	if len(hops) == 0 {
		if len(reasons) == 0 {
			return types.SourceResult{Status: types.StatusSafe, Detail: "No redirects"}
		}
		return types.SourceResult{Status: status, Detail: strings.Join(reasons, "; ")}
	}

	if len(hops) > longChain {
		escalate(types.StatusSuspicious, fmt.Sprintf("Long redirect chain: %d hops", len(hops)))
	}

	landing := hops[len(hops)-1]
	if landing.Host != start.Host {
		res := local.Check(landing.String())
		reason := "Redirects to " + landing.String()
		if len(res.Reasons) > 0 {
			reason += " (" + strings.Join(res.Reasons, ", ") + ")"
		}
		switch res.Status {
		case types.StatusSuspicious, types.StatusMalicious:
			escalate(res.Status, reason)
		default:
			reasons = append(reasons, reason)
		}
	} else if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("Redirects within %s", start.Host))
	}

	return types.SourceResult{Status: status, Detail: strings.Join(reasons, "; ")}
}

var errTooManyHops = errors.New("too many redirects")

// follow returns every URL the chain redirects to, in order. When the hop
// limit is hit it returns the hops seen so far with errTooManyHops.
func (p *Provider) follow(ctx context.Context, start *url.URL) ([]*url.URL, error) {
	var hops []*url.URL
	current := start
	for {
		next, err := p.hop(ctx, current)
		if err != nil {
			return hops, err
		}
		if next == nil {
			return hops, nil
		}
		if len(hops) == p.maxHops {
			return hops, errTooManyHops
		}
		hops = append(hops, next)
		current = next
	}
}

// hop requests u and returns the redirect target, or nil when the response
// is not a redirect.
func (p *Provider) hop(ctx context.Context, u *url.URL) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", u.Host, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return nil, nil
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return nil, nil
	}
	next, err := u.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	return next, nil
}

// embeddedRedirects reports redirect parameters whose value points at a
// different host.
func embeddedRedirects(u *url.URL) []string {
	query := u.Query()
	var out []string
	for _, name := range redirectParams {
		for _, v := range query[name] {
			if !types.HasHTTPScheme(v) {
				continue
			}
			target, err := url.Parse(v)
			if err != nil || target.Hostname() == "" || strings.EqualFold(target.Hostname(), u.Hostname()) {
				continue
			}
			out = append(out, fmt.Sprintf("Embedded redirect to %s via %q", target.Hostname(), name))
		}
	}
	return out
}
