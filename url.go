package spider

import (
	"net"
	"net/url"
	"sort"
	"strings"
)

// DefaultScheme is prepended to URLs that are missing a scheme.
const DefaultScheme = "http"

// CanonicalScheme replaces http and https in canonical URLs.
const CanonicalScheme = "https"

// trackingParamPrefixes lists query parameter prefixes dropped during
// canonicalization. They identify campaigns and clicks, not content.
var trackingParamPrefixes = []string{
	"utm_",
	"fbclid",
	"gclid",
	"gclsrc",
	"dclid",
	"msclkid",
}

// opaqueSchemes are schemes that never identify a crawlable page.
var opaqueSchemes = map[string]bool{
	"mailto":     true,
	"javascript": true,
	"tel":        true,
	"data":       true,
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Canonicalize converts a raw URL into its canonical form, the key used for
// deduplication. Two URLs that address the same page produce the same key and
// canonicalizing a canonical URL returns it unchanged.
//
// Returns EINVALID if the URL cannot be parsed or has no host.
func Canonicalize(rawURL string) (string, error) {
	u, err := parseWithScheme(rawURL)
	if err != nil {
		return "", err
	}

	scheme := strings.ToLower(u.Scheme)
	canonical := &url.URL{
		Scheme:   scheme,
		User:     u.User,
		Host:     canonicalHost(u, scheme),
		Path:     canonicalPath(u.Path),
		RawQuery: canonicalQuery(u.RawQuery),
	}
	if scheme == "http" || scheme == "https" {
		canonical.Scheme = CanonicalScheme
	}
	if canonical.Host == "" {
		return "", Errorf(EINVALID, "url %q has no host", rawURL)
	}

	return canonical.String(), nil
}

// Normalize is like Canonicalize but never fails. Input that cannot be
// canonicalized is returned trimmed, as a best-effort key.
func Normalize(rawURL string) string {
	canonical, err := Canonicalize(rawURL)
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	return canonical
}

// parseWithScheme parses rawURL, prepending DefaultScheme when the URL has
// none. Opaque schemes such as mailto: are rejected.
func parseWithScheme(rawURL string) (*url.URL, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return nil, Errorf(EINVALID, "empty url")
	}

	switch {
	case strings.Contains(s, "://"):
	case strings.HasPrefix(s, "//"):
		s = DefaultScheme + ":" + s
	default:
		if i := strings.Index(s, ":"); i > 0 && opaqueSchemes[strings.ToLower(s[:i])] {
			return nil, Errorf(EINVALID, "url %q is not crawlable", rawURL)
		}
		s = DefaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid url %q: %v", rawURL, err)
	}
	return u, nil
}

// canonicalHost lowercases the host, strips a leading "www." and drops the
// port when it is the default for scheme.
func canonicalHost(u *url.URL, scheme string) string {
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}

	port := u.Port()
	if port != "" && port != defaultPorts[scheme] {
		return net.JoinHostPort(host, port)
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

// canonicalPath lowercases the path and strips trailing slashes.
// Unlike most normalizers it strips the root slash as well, so "/" and ""
// share one key.
func canonicalPath(p string) string {
	return strings.TrimRight(strings.ToLower(p), "/")
}

// canonicalQuery drops tracking parameters and blank values, keeps the first
// value of each key, lowercases keys and values and sorts by key.
func canonicalQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	// Malformed pairs are skipped; ParseQuery still returns the valid ones.
	values, _ := url.ParseQuery(rawQuery)

	// Keys differing only in case collapse to one; the smallest value wins so
	// the result does not depend on map iteration order.
	kept := make(map[string]string, len(values))
	for key, vals := range values {
		key = strings.ToLower(key)
		if key == "" || isTrackingParam(key) {
			continue
		}
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		value := strings.ToLower(vals[0])
		if prev, ok := kept[key]; ok && prev <= value {
			continue
		}
		kept[key] = value
	}

	keys := make([]string, 0, len(kept))
	for key := range kept {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kept[key]))
	}
	return b.String()
}

func isTrackingParam(key string) bool {
	for _, prefix := range trackingParamPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
