package whois

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(domain, created string) string {
	return fmt.Sprintf(`   Domain Name: %s
   Registry Domain ID: 2336799_DOMAIN_COM-VRSN
   Registrar WHOIS Server: whois.example-registrar.com
   Registrar URL: http://www.example-registrar.com
   Updated Date: 2026-01-01T00:00:00Z
   Creation Date: %s
   Registry Expiry Date: 2027-08-13T04:00:00Z
   Registrar: Example Registrar, Inc.
   Registrar IANA ID: 376
   Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
   Name Server: NS1.EXAMPLE-REGISTRAR.COM
   Name Server: NS2.EXAMPLE-REGISTRAR.COM
   DNSSEC: unsigned
`, domain, created)
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newProvider(minAge int, lookup LookupFunc) *Provider {
	p := NewWithLookup(Config{MinAgeDays: minAge}, lookup)
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestProvider_NameAndDefaults(t *testing.T) {
	p := NewWithLookup(Config{}, nil)
	assert.Equal(t, "whois", p.Name())
	assert.NotEmpty(t, p.Description())
	assert.Equal(t, DefaultMinAgeDays, p.minAge)
}

func TestProvider_YoungDomainIsSuspicious(t *testing.T) {
	p := newProvider(30, func(domain string) (string, error) {
		assert.Equal(t, "secure-verify.xyz", domain)
		return record("SECURE-VERIFY.XYZ", "2026-10-01T09:00:00Z"), nil
	})

	res := p.Scan(context.Background(), "http://secure-verify.xyz/login")
	assert.Equal(t, ProviderName, res.Provider)
	assert.Equal(t, types.StatusSuspicious, res.Status)
	assert.Equal(t, "Domain registered 16 days ago (2026-10-01)", res.Detail)
}

func TestProvider_OldDomainIsSafe(t *testing.T) {
	p := newProvider(30, func(string) (string, error) {
		return record("EXAMPLE.COM", "1995-08-14T04:00:00Z"), nil
	})

	res := p.Scan(context.Background(), "https://example.com")
	assert.Equal(t, types.StatusSafe, res.Status)
	assert.Contains(t, res.Detail, "Domain registered")
}

func TestProvider_FallsBackToParentDomain(t *testing.T) {
	var mu sync.Mutex
	var asked []string
	p := newProvider(30, func(domain string) (string, error) {
		mu.Lock()
		asked = append(asked, domain)
		mu.Unlock()
		if domain == "mail.example.com" {
			return `No match for "MAIL.EXAMPLE.COM".`, nil
		}
		return record("EXAMPLE.COM", "1995-08-14T04:00:00Z"), nil
	})

	res := p.Scan(context.Background(), "https://mail.example.com/inbox")
	assert.Equal(t, types.StatusSafe, res.Status)
	assert.Equal(t, []string{"mail.example.com", "example.com"}, asked)
}

func TestProvider_IPHostNotApplicable(t *testing.T) {
	p := newProvider(30, func(string) (string, error) {
		t.Error("lookup must not run for IP hosts")
		return "", nil
	})

	res := p.Scan(context.Background(), "http://1.2.3.4/a")
	assert.Equal(t, types.StatusSafe, res.Status)
	assert.Contains(t, res.Detail, "not applicable")
}

func TestProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		lookup LookupFunc
	}{
		{
			name:   "invalid url",
			url:    "https://exa mple.com",
			lookup: func(string) (string, error) { return "", nil },
		},
		{
			name:   "lookup fails",
			url:    "https://example.com",
			lookup: func(string) (string, error) { return "", errors.New("connection refused") },
		},
		{
			name:   "unparsable record",
			url:    "https://example.com",
			lookup: func(string) (string, error) { return "garbage", nil },
		},
		{
			name: "unusable creation date",
			url:  "https://example.com",
			lookup: func(string) (string, error) {
				return record("EXAMPLE.COM", "sometime last year"), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newProvider(30, tt.lookup).Scan(context.Background(), tt.url)
			assert.Equal(t, types.StatusError, res.Status)
			assert.NotEmpty(t, res.Detail)
		})
	}
}

func TestProvider_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	p := newProvider(30, func(string) (string, error) {
		<-release
		return "", errors.New("released")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := p.Scan(ctx, "https://example.com")
	require.Equal(t, types.StatusError, res.Status)
	assert.Contains(t, res.Detail, "deadline")
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2020-01-02T03:04:05Z", "2020-01-02 03:04:05", "2020-01-02", "02-Jan-2020", "2020.01.02"} {
		got, ok := parseDate(s)
		require.True(t, ok, s)
		assert.Equal(t, 2020, got.Year())
	}
	_, ok := parseDate("yesterday")
	assert.False(t, ok)
}
