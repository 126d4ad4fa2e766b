package spider

import "strings"

// DomainScoper derives the Domain Key used to bound a crawl.
type DomainScoper interface {
	// DomainOf returns the registrable domain of rawURL, or "" if the URL
	// is malformed.
	DomainOf(rawURL string) string
}

// LabelScoper is the default DomainScoper. It treats the last two labels of
// the host as the registrable domain.
type LabelScoper struct{}

// DomainOf implements DomainScoper.
func (LabelScoper) DomainOf(rawURL string) string {
	return DomainOf(rawURL)
}

// DomainOf returns the last two dot-separated labels of the URL's host with
// the port stripped, e.g. https://blog.example.com:8080/x -> example.com.
// Hosts with a single label are returned whole. Malformed URLs yield "".
func DomainOf(rawURL string) string {
	u, err := parseWithScheme(rawURL)
	if err != nil {
		return ""
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 1 {
		return host
	}
	return labels[len(labels)-2] + "." + labels[len(labels)-1]
}

// InScope reports whether candidate belongs to baseDomain using the default
// two-label rule.
func InScope(candidate, baseDomain string) bool {
	return InScopeOf(LabelScoper{}, candidate, baseDomain)
}

// InScopeOf reports whether scoper maps candidate to baseDomain.
// An empty Domain Key never matches.
func InScopeOf(scoper DomainScoper, candidate, baseDomain string) bool {
	if baseDomain == "" {
		return false
	}
	domain := scoper.DomainOf(candidate)
	return domain != "" && domain == baseDomain
}
