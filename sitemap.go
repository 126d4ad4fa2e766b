package spider

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs listed in a site's sitemaps.
	// It first checks robots.txt for Sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	// URLs found before an error may be returned together with it.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
