package http

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/spider"
)

// DefaultMaxSitemapURLs caps the URLs collected from one site's sitemaps.
const DefaultMaxSitemapURLs = 50000

// maxSitemapSize is the largest sitemap document read, after decompression.
const maxSitemapSize = 50 << 20

var _ spider.SitemapService = (*SitemapService)(nil)

// SitemapService discovers crawl seeds from a site's sitemaps.
type SitemapService struct {
	client *http.Client

	// UserAgent is sent with every request when set.
	UserAgent string

	// MaxURLs stops discovery once this many URLs are collected.
	MaxURLs int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, MaxURLs: DefaultMaxSitemapURLs}
}

// DiscoverURLs returns the page URLs listed in the sitemaps of baseURL's host,
// deduplicated in document order. Sitemaps declared in robots.txt are used
// when present, otherwise /sitemap.xml. Gzipped sitemaps are decompressed.
//
// A sitemap that cannot be fetched or parsed does not stop discovery: the
// URLs found elsewhere are returned together with the joined errors.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, spider.Errorf(spider.EINVALID, "invalid base URL %q", baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemapURLs, declared := s.locate(ctx, root)
	w := &sitemapWalk{
		svc:      s,
		sitemaps: make(map[string]bool),
		seen:     make(map[string]bool),
		urls:     []string{},
	}
	if !declared {
		w.optional = sitemapURLs[0]
	}
	for _, sitemapURL := range sitemapURLs {
		if w.full() {
			break
		}
		w.visit(ctx, sitemapURL, 0)
	}

	if err := ctx.Err(); err != nil {
		return w.urls, err
	}
	return w.urls, errors.Join(w.errs...)
}

// locate returns the sitemap URLs declared in robots.txt, or /sitemap.xml
// with declared false when robots.txt declares none.
func (s *SitemapService) locate(ctx context.Context, root *url.URL) (urls []string, declared bool) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if urls, err := s.robotsSitemaps(ctx, robotsURL); err == nil && len(urls) > 0 {
		return urls, true
	}
	return []string{root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, false
}

// statusError reports a non-200 response.
type statusError struct {
	URL  string
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// robotsSitemaps reads the Sitemap directives of a robots.txt file.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}

	var sitemaps []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		name, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "sitemap") {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			sitemaps = append(sitemaps, value)
		}
	}
	return sitemaps, scanner.Err()
}

// get fetches targetURL and returns its body, decompressed when gzipped.
// Any status other than 200 is an error.
func (s *SitemapService) get(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{URL: targetURL, Code: resp.StatusCode}
	}

	br := bufio.NewReader(io.LimitReader(resp.Body, maxSitemapSize))
	var r io.Reader = br
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", targetURL, err)
		}
		defer gz.Close()
		r = io.LimitReader(gz, maxSitemapSize)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", targetURL, err)
	}
	return body, nil
}

// maxSitemapDepth bounds sitemap index nesting.
const maxSitemapDepth = 5

// sitemapWalk collects URLs across the sitemaps of one site.
type sitemapWalk struct {
	svc      *SitemapService
	optional string // guessed location; a 404 there means no sitemap
	sitemaps map[string]bool
	seen     map[string]bool
	urls     []string
	errs     []error
}

func (w *sitemapWalk) full() bool {
	return w.svc.MaxURLs > 0 && len(w.urls) >= w.svc.MaxURLs
}

// visit reads one sitemap, following sitemap indexes recursively.
func (w *sitemapWalk) visit(ctx context.Context, sitemapURL string, depth int) {
	if ctx.Err() != nil || w.sitemaps[sitemapURL] || w.full() {
		return
	}
	w.sitemaps[sitemapURL] = true

	if depth > maxSitemapDepth {
		w.errs = append(w.errs, fmt.Errorf("sitemap %s: nested too deeply", sitemapURL))
		return
	}

	body, err := w.svc.get(ctx, sitemapURL)
	var status *statusError
	if sitemapURL == w.optional && errors.As(err, &status) && status.Code == http.StatusNotFound {
		return
	}
	if err != nil {
		w.errs = append(w.errs, fmt.Errorf("sitemap %s: %w", sitemapURL, err))
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		w.errs = append(w.errs, fmt.Errorf("sitemap %s: parsing XML: %w", sitemapURL, err))
		return
	}
	root := doc.Root()
	if root == nil {
		w.errs = append(w.errs, fmt.Errorf("sitemap %s: empty document", sitemapURL))
		return
	}

	switch root.Tag {
	case "sitemapindex":
		for _, child := range locs(root, "sitemap") {
			w.visit(ctx, child, depth+1)
		}
	case "urlset":
		for _, u := range locs(root, "url") {
			if w.full() {
				return
			}
			if !w.seen[u] {
				w.seen[u] = true
				w.urls = append(w.urls, u)
			}
		}
	default:
		w.errs = append(w.errs, fmt.Errorf("sitemap %s: unexpected root element <%s>", sitemapURL, root.Tag))
	}
}

// locs returns the non-empty <loc> values of root's entry elements.
func locs(root *etree.Element, entry string) []string {
	var out []string
	for _, el := range root.SelectElements(entry) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}
