// Package whois flags URLs whose registered domain is younger than a
// configured age.
package whois

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/internal/scanner/local"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// ProviderName identifies the domain-age check among URL verdict sources.
const ProviderName = "whois"

// DefaultMinAgeDays is the age below which a domain counts as newly registered.
const DefaultMinAgeDays = 30

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// LookupFunc returns the raw WHOIS record for domain.
type LookupFunc func(domain string) (string, error)

// Config controls the domain-age threshold.
type Config struct {
	MinAgeDays int
}

// Provider implements scanner.Provider.
type Provider struct {
	minAge int
	lookup LookupFunc
	now    func() time.Time
}

// New creates a domain-age provider backed by the public WHOIS servers.
func New(cfg Config, opts scanner.Options) *Provider {
	client := whois.NewClient().SetTimeout(opts.HTTPClient().Timeout)
	return NewWithLookup(cfg, func(domain string) (string, error) {
		return client.Whois(domain)
	})
}

// NewWithLookup creates a provider with a custom WHOIS lookup.
func NewWithLookup(cfg Config, lookup LookupFunc) *Provider {
	minAge := cfg.MinAgeDays
	if minAge <= 0 {
		minAge = DefaultMinAgeDays
	}
	return &Provider{minAge: minAge, lookup: lookup, now: time.Now}
}

func (p *Provider) Name() string        { return ProviderName }
func (p *Provider) Description() string { return "WHOIS domain registration age" }

// Scan reports a domain registered fewer than MinAgeDays ago as suspicious.
func (p *Provider) Scan(ctx context.Context, u string) types.SourceResult {
	host := local.Host(u)
	if host == "" {
		return scanner.Failed(ProviderName, fmt.Errorf("invalid URL %q", u))
	}
	if net.ParseIP(host) != nil {
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusSafe,
			Detail:   "Domain age check not applicable to IP addresses",
		}
	}

	type answer struct {
		created time.Time
		err     error
	}
	ch := make(chan answer, 1)
	go func() {
		created, err := p.createdDate(host)
		ch <- answer{created, err}
	}()

	var a answer
	select {
	case a = <-ch:
	case <-ctx.Done():
		return scanner.Failed(ProviderName, ctx.Err())
	}
	if a.err != nil {
		return scanner.Failed(ProviderName, a.err)
	}

	days := int(p.now().Sub(a.created).Hours() / 24)
	detail := fmt.Sprintf("Domain registered %d days ago (%s)", days, a.created.Format("2006-01-02"))
	if days < p.minAge {
		return types.SourceResult{Provider: ProviderName, Status: types.StatusSuspicious, Detail: detail}
	}
	return types.SourceResult{Provider: ProviderName, Status: types.StatusSafe, Detail: detail}
}

// createdDate looks domain up, walking to the parent domain when the
// record cannot be parsed (e.g. mail.example.com -> example.com).
func (p *Provider) createdDate(domain string) (time.Time, error) {
	raw, err := p.lookup(domain)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois lookup %s: %w", domain, err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil || info.Domain == nil {
		if parts := strings.Split(domain, "."); len(parts) > 2 {
			return p.createdDate(strings.Join(parts[1:], "."))
		}
		if err == nil {
			err = fmt.Errorf("no domain section")
		}
		return time.Time{}, fmt.Errorf("parsing whois record for %s: %w", domain, err)
	}

	created, ok := parseDate(info.Domain.CreatedDate)
	if !ok {
		return time.Time{}, fmt.Errorf("whois record for %s has no usable creation date", domain)
	}
	return created, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
