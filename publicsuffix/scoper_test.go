package publicsuffix_test

import (
	"testing"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/publicsuffix"
	"github.com/stretchr/testify/assert"
)

func TestScoper_DomainOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"simple domain", "https://example.com/page", "example.com"},
		{"subdomain", "https://blog.example.com", "example.com"},
		{"multi-label public suffix", "https://blog.example.co.uk/post", "example.co.uk"},
		{"private suffix", "https://user.github.io/repo", "user.github.io"},
		{"port is ignored", "http://docs.example.com:8080/", "example.com"},
		{"missing scheme", "www.example.org/a", "example.org"},
		{"localhost", "http://localhost:3000", "localhost"},
		{"ipv4", "http://192.168.1.10/x", "192.168.1.10"},
		{"ipv6", "http://[::1]:8080/", "::1"},
		{"not crawlable", "mailto:someone@example.com", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, publicsuffix.Scoper{}.DomainOf(tt.url))
		})
	}
}

func TestScoper_InScopeOf(t *testing.T) {
	t.Parallel()

	s := publicsuffix.Scoper{}

	assert.True(t, spider.InScopeOf(s, "https://shop.example.co.uk/cart", "example.co.uk"))
	assert.False(t, spider.InScopeOf(s, "https://other.co.uk/", "example.co.uk"))
	// The two-label rule would treat every .co.uk site as one domain.
	assert.True(t, spider.InScope("https://other.co.uk/", spider.DomainOf("https://example.co.uk")))
}
