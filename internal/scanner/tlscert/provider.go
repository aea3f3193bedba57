// Package tlscert inspects the certificate a URL's host presents. Phishing
// kits tend to run on freshly issued, self-signed or mismatched
// certificates.
package tlscert

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/pkg/types"
)

// ProviderName identifies the certificate check among URL verdict sources.
const ProviderName = "tlsCertificate"

// DefaultMinAgeDays is the certificate age below which it counts as fresh.
const DefaultMinAgeDays = 3

// Config controls the certificate checks.
type Config struct {
	// MinAgeDays flags certificates issued more recently. Negative disables
	// the check.
	MinAgeDays int
}

// Provider implements scanner.Provider.
type Provider struct {
	minAge  int
	timeout time.Duration
	now     func() time.Time
}

// New creates a certificate provider.
func New(cfg Config, opts scanner.Options) *Provider {
	minAge := cfg.MinAgeDays
	if minAge == 0 {
		minAge = DefaultMinAgeDays
	}
	return &Provider{minAge: minAge, timeout: opts.HTTPClient().Timeout, now: time.Now}
}

func (p *Provider) Name() string        { return ProviderName }
func (p *Provider) Description() string { return "TLS certificate trust signals" }

// Scan connects to the URL's host and checks the presented certificate.
// Plain http URLs are not applicable and count as safe.
func (p *Provider) Scan(ctx context.Context, u string) types.SourceResult {
	parsed, err := types.NormalizeURL(u)
	if err != nil {
		return scanner.Failed(ProviderName, err)
	}
	if strings.EqualFold(parsed.Scheme, "http") {
		return types.SourceResult{Status: types.StatusSafe, Detail: "not applicable: plain http"}
	}

	port := parsed.Port()
	if port == "" {
		port = "443"
	}
	addr := net.JoinHostPort(parsed.Hostname(), port)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.timeout},
		Config: &tls.Config{
			// verification happens below so each failure gets its own reason
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS10,
			ServerName:         parsed.Hostname(),
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return types.SourceResult{Status: types.StatusError, Detail: fmt.Sprintf("TLS connection failed: %v", err)}
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return types.SourceResult{Status: types.StatusError, Detail: "server presented no certificate"}
	}

	var reasons []string
	reasons = append(reasons, checkVersion(state)...)
	cert := state.PeerCertificates[0]
	reasons = append(reasons, p.checkValidity(cert)...)
	reasons = append(reasons, checkHostname(cert, parsed.Hostname())...)
	reasons = append(reasons, checkSelfSigned(cert, state.PeerCertificates)...)

	if len(reasons) == 0 {
		return types.SourceResult{
			Status: types.StatusSafe,
			Detail: fmt.Sprintf("%s, issued by %s", tlsVersionName(state.Version), issuerName(cert)),
		}
	}
	return types.SourceResult{Status: types.StatusSuspicious, Detail: strings.Join(reasons, "; ")}
}

func checkVersion(state tls.ConnectionState) []string {
	if state.Version <= tls.VersionTLS11 {
		return []string{"Deprecated TLS version: " + tlsVersionName(state.Version)}
	}
	return nil
}

func (p *Provider) checkValidity(cert *x509.Certificate) []string {
	now := p.now()
	if now.After(cert.NotAfter) {
		return []string{"Certificate expired on " + cert.NotAfter.Format("2006-01-02")}
	}
	if now.Before(cert.NotBefore) {
		return []string{"Certificate not valid until " + cert.NotBefore.Format("2006-01-02")}
	}
	if p.minAge > 0 {
		age := int(now.Sub(cert.NotBefore).Hours() / 24)
		if age < p.minAge {
			return []string{fmt.Sprintf("Certificate issued %d days ago", age)}
		}
	}
	return nil
}

func checkHostname(cert *x509.Certificate, hostname string) []string {
	if err := cert.VerifyHostname(hostname); err != nil {
		return []string{fmt.Sprintf("Certificate does not cover %s", hostname)}
	}
	return nil
}

func checkSelfSigned(cert *x509.Certificate, chain []*x509.Certificate) []string {
	// same subject and issuer with no intermediate
	if cert.Issuer.CommonName == cert.Subject.CommonName && len(chain) == 1 {
		return []string{"Self-signed certificate"}
	}
	return nil
}

func issuerName(cert *x509.Certificate) string {
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	return "unknown issuer"
}

func tlsVersionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("unknown (0x%04x)", version)
	}
}
