// Package publicsuffix implements spider.DomainScoper using the Public
// Suffix List, so hosts such as blog.example.co.uk scope to example.co.uk.
package publicsuffix

import (
	"net"
	"net/url"
	"strings"

	"github.com/fwojciec/spider"
	"golang.org/x/net/publicsuffix"
)

var _ spider.DomainScoper = Scoper{}

// Scoper derives Domain Keys as the effective TLD plus one label.
// Hosts without a public suffix match, such as localhost, fall back to the
// two-label rule of spider.DomainOf. IP addresses are their own domain.
type Scoper struct{}

// DomainOf implements spider.DomainScoper.
func (Scoper) DomainOf(rawURL string) string {
	canonical, err := spider.Canonicalize(rawURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(canonical)
	if err != nil {
		return ""
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return spider.DomainOf(canonical)
	}
	return domain
}
