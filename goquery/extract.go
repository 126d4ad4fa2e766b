// Package goquery implements spider.LinkExtractor using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/spider"
)

// DefaultSelector matches every anchor with an href.
const DefaultSelector = "a[href]"

var _ spider.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts hyperlinks from HTML documents.
type LinkExtractor struct {
	// Selector chooses the elements whose href attributes are links.
	// Defaults to DefaultSelector.
	Selector string
}

// NewLinkExtractor creates a LinkExtractor using DefaultSelector.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{Selector: DefaultSelector}
}

// ExtractLinks parses html and returns the absolute http(s) URLs it links to,
// each once, in document order. Relative hrefs are resolved against the
// document's <base href> when present, otherwise against baseURL.
// Fragments are stripped.
func (e *LinkExtractor) ExtractLinks(baseURL, html string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, spider.Errorf(spider.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, spider.Errorf(spider.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	selector := e.Selector
	if selector == "" {
		selector = DefaultSelector
	}

	seen := make(map[string]bool)
	links := []string{}
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)

		// Skip empty, fragment-only and non-HTTP links (javascript:, mailto:, etc.)
		if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}

// resolveURL resolves href against base and strips the fragment.
// Returns empty string if href cannot be parsed or does not resolve to an
// http or https URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	switch strings.ToLower(resolved.Scheme) {
	case "http", "https":
	default:
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
