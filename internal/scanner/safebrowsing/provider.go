// Package safebrowsing checks URLs against the Google Safe Browsing v4
// threat lists in a single batch request.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/pkg/types"
)

// ProviderName identifies Safe Browsing among URL verdict sources.
const ProviderName = "googleSafeBrowsing"

// DefaultBaseURL is the public Safe Browsing API endpoint.
const DefaultBaseURL = "https://safebrowsing.googleapis.com"

var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// Config holds the provider credentials.
type Config struct {
	APIKey  string
	BaseURL string
}

// Provider implements scanner.BatchProvider.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Safe Browsing provider.
func New(cfg Config, opts scanner.Options) *Provider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Provider{apiKey: cfg.APIKey, baseURL: base, client: opts.HTTPClient()}
}

func (p *Provider) Name() string        { return ProviderName }
func (p *Provider) Description() string { return "Google Safe Browsing threat list lookup" }

// Scan checks a single URL.
func (p *Provider) Scan(ctx context.Context, u string) types.SourceResult {
	return p.ScanBatch(ctx, []string{u})[u]
}

// ScanBatch checks every URL in one POST. URLs absent from the match list
// are safe; a failed request marks every URL as an error.
func (p *Provider) ScanBatch(ctx context.Context, urls []string) map[string]types.SourceResult {
	results := make(map[string]types.SourceResult, len(urls))

	matches, err := p.lookup(ctx, urls)
	if err != nil {
		for _, u := range urls {
			results[u] = scanner.Failed(ProviderName, err)
		}
		return results
	}

	for _, u := range urls {
		results[u] = types.SourceResult{Provider: ProviderName, Status: types.StatusSafe}
	}
	for _, m := range matches {
		if _, ok := results[m.Threat.URL]; !ok {
			continue
		}
		results[m.Threat.URL] = types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusMalicious,
			Detail:   "Threat types: " + m.ThreatType,
		}
	}
	return results
}

func (p *Provider) lookup(ctx context.Context, urls []string) ([]match, error) {
	body := findRequest{
		Client: clientInfo{ClientID: "scamscan", ClientVersion: "1.0.0"},
		ThreatInfo: threatInfo{
			ThreatTypes:      threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
		},
	}
	for _, u := range urls {
		body.ThreatInfo.ThreatEntries = append(body.ThreatInfo.ThreatEntries, threatEntry{URL: u})
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := p.baseURL + "/v4/threatMatches:find?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Google Safe Browsing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google Safe Browsing API error: %s", resp.Status)
	}

	var out findResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding Google Safe Browsing response: %w", err)
	}
	return out.Matches, nil
}
