package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "no urls",
			text: "hello there, how are you?",
			want: []string{},
		},
		{
			name: "explicit scheme kept",
			text: "go to http://secure-verify.xyz/login now",
			want: []string{"http://secure-verify.xyz/login"},
		},
		{
			name: "www host gets https",
			text: "visit www.example.com today",
			want: []string{"https://www.example.com"},
		},
		{
			name: "bare host with path gets https",
			text: "see bit.ly/abc123 for details",
			want: []string{"https://bit.ly/abc123"},
		},
		{
			name: "order and duplicates preserved",
			text: "a.com then https://b.org/x then a.com again",
			want: []string{"https://a.com", "https://b.org/x", "https://a.com"},
		},
		{
			name: "uppercase scheme is not prefixed",
			text: "HTTPS://EXAMPLE.COM/Login",
			want: []string{"HTTPS://EXAMPLE.COM/Login"},
		},
		{
			name: "host starting with http is still prefixed",
			text: "httpbin.org/get",
			want: []string{"https://httpbin.org/get"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URLs(tt.text))
		})
	}
}

func TestURLs_Idempotent(t *testing.T) {
	text := "URGENT: click www.pay-now.top/verify or tinyurl.com/x2 and http://1.2.3.4/a?b=c"
	first := URLs(text)
	second := URLs(strings.Join(first, " "))
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}
