// Package virustotal looks URLs up in the VirusTotal v3 API, submitting
// unknown URLs for a fresh multi-engine analysis.
package virustotal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/pkg/types"
)

// ProviderName identifies VirusTotal among URL verdict sources.
const ProviderName = "virusTotal"

// DefaultBaseURL is the public VirusTotal endpoint.
const DefaultBaseURL = "https://www.virustotal.com"

// Config holds the provider credentials.
type Config struct {
	APIKey  string
	BaseURL string
}

// Provider implements scanner.Resolver.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a VirusTotal provider.
func New(cfg Config, opts scanner.Options) *Provider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Provider{apiKey: cfg.APIKey, baseURL: base, client: opts.HTTPClient()}
}

func (p *Provider) Name() string        { return ProviderName }
func (p *Provider) Description() string { return "VirusTotal multi-engine URL analysis" }

// URLID returns the identifier VirusTotal uses for a URL: unpadded
// URL-safe base64 of the URL text.
func URLID(u string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(u))
}

// Scan fetches the cached analysis of u. When VirusTotal has none (404) or
// rejects the lookup (401), u is submitted and the new analysis is polled
// once; an unfinished analysis is reported as pending with its id as handle.
func (p *Provider) Scan(ctx context.Context, u string) types.SourceResult {
	status, obj, err := p.get(ctx, "/api/v3/urls/"+URLID(u))
	if err != nil {
		return scanner.Failed(ProviderName, err)
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusUnauthorized:
		return p.submit(ctx, u)
	case status != http.StatusOK:
		return scanner.Failed(ProviderName, fmt.Errorf("VirusTotal API error: %d %s", status, http.StatusText(status)))
	}

	if obj.Data == nil || obj.Data.Attributes == nil {
		return errorResult("No analysis data available")
	}
	return verdictFromStats(obj.Data.Attributes.counts())
}

// Resolve fetches the analysis identified by handle without resubmitting.
func (p *Provider) Resolve(ctx context.Context, handle string) types.SourceResult {
	status, obj, err := p.get(ctx, "/api/v3/analyses/"+url.PathEscape(handle))
	if err != nil {
		return scanner.Failed(ProviderName, err)
	}
	if status != http.StatusOK {
		return scanner.Failed(ProviderName, fmt.Errorf("VirusTotal API error: %d %s", status, http.StatusText(status)))
	}
	if obj.Data == nil || obj.Data.Attributes == nil {
		return errorResult("No analysis data available")
	}

	attrs := obj.Data.Attributes
	if attrs.inProgress() {
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusPending,
			Detail:   fmt.Sprintf("Analysis is %s. Results will be available shortly.", attrs.Status),
			Handle:   handle,
		}
	}
	return verdictFromStats(attrs.counts())
}

func (p *Provider) submit(ctx context.Context, u string) types.SourceResult {
	form := url.Values{"url": {u}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v3/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return scanner.Failed(ProviderName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("x-apikey", p.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return scanner.Failed(ProviderName, fmt.Errorf("VirusTotal submission: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return scanner.Failed(ProviderName, fmt.Errorf("VirusTotal submission error: %s", resp.Status))
	}

	var submitted objectResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return scanner.Failed(ProviderName, fmt.Errorf("decoding VirusTotal submission: %w", err))
	}
	if submitted.Data == nil || submitted.Data.ID == "" {
		return errorResult("Failed to get analysis ID from VirusTotal")
	}
	id := submitted.Data.ID

	status, obj, err := p.get(ctx, "/api/v3/analyses/"+url.PathEscape(id))
	if err != nil || status != http.StatusOK {
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusPending,
			Detail:   "Analysis in progress. Please check back in a few minutes.",
			Handle:   id,
		}
	}
	if obj.Data == nil || obj.Data.Attributes == nil || obj.Data.Attributes.inProgress() {
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusPending,
			Detail:   "Analysis in progress. Results will be available shortly.",
			Handle:   id,
		}
	}
	return verdictFromStats(obj.Data.Attributes.counts())
}

// get issues an authenticated GET. Non-200 bodies are not decoded.
func (p *Provider) get(ctx context.Context, path string) (int, objectResponse, error) {
	var obj objectResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return 0, obj, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-apikey", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, obj, fmt.Errorf("VirusTotal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, obj, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return resp.StatusCode, obj, fmt.Errorf("decoding VirusTotal response: %w", err)
	}
	return resp.StatusCode, obj, nil
}

// verdictFromStats turns engine vote counts into a source result. Any
// malicious vote wins, then any suspicious vote; otherwise safe.
func verdictFromStats(s *stats) types.SourceResult {
	if s == nil {
		return errorResult("Invalid analysis data")
	}

	total := s.Harmless + s.Malicious + s.Suspicious + s.Undetected
	var rate float64
	if total > 0 {
		rate = float64(s.Malicious+s.Suspicious) / float64(total) * 100
	}

	switch {
	case s.Malicious > 0:
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusMalicious,
			Detail: fmt.Sprintf("Detected as malicious by %d out of %d security vendors (%.1f%% detection rate)",
				s.Malicious, total, rate),
		}
	case s.Suspicious > 0:
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusSuspicious,
			Detail: fmt.Sprintf("Flagged as suspicious by %d out of %d security vendors (%.1f%% detection rate)",
				s.Suspicious, total, rate),
		}
	default:
		return types.SourceResult{
			Provider: ProviderName,
			Status:   types.StatusSafe,
			Detail:   fmt.Sprintf("Analyzed by %d security vendors - no threats detected", total),
		}
	}
}

func errorResult(detail string) types.SourceResult {
	return types.SourceResult{Provider: ProviderName, Status: types.StatusError, Detail: detail}
}
