package crawl_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/crawl"
	"github.com/fwojciec/spider/goquery"
	spiderhttp "github.com/fwojciec/spider/http"
	"github.com/fwojciec/spider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowSite serves a seed page linking to four pages. The seed is slow so
// idle workers hit their timeout while it is being fetched.
type slowSite struct {
	mu       sync.Mutex
	inflight int
	peak     int
}

func (s *slowSite) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*spider.Response, error) {
			s.mu.Lock()
			s.inflight++
			s.peak = max(s.peak, s.inflight)
			s.mu.Unlock()
			defer func() {
				s.mu.Lock()
				s.inflight--
				s.mu.Unlock()
			}()

			if url == "https://example.com" {
				time.Sleep(150 * time.Millisecond)
			} else {
				time.Sleep(40 * time.Millisecond)
			}
			return &spider.Response{URL: url, StatusCode: 200, ContentType: "text/html", Body: []byte(url)}, nil
		},
	}
}

func (s *slowSite) extractor() *mock.LinkExtractor {
	return &mock.LinkExtractor{
		ExtractLinksFn: func(baseURL, _ string) ([]string, error) {
			if baseURL != "https://example.com" {
				return nil, nil
			}
			var links []string
			for i := 1; i <= 4; i++ {
				links = append(links, fmt.Sprintf("https://example.com/p%d", i))
			}
			return links, nil
		},
	}
}

func (s *slowSite) peakFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

func TestCrawler_IdleTimeout(t *testing.T) {
	t.Parallel()

	t.Run("retires workers that find no work in time", func(t *testing.T) {
		t.Parallel()

		s := &slowSite{}
		c := &crawl.Crawler{
			Fetcher:     s.fetcher(),
			Extractor:   s.extractor(),
			IdleTimeout: 10 * time.Millisecond,
		}

		result, err := c.Start(context.Background(), "https://example.com", "", 4)

		require.NoError(t, err)
		assert.Equal(t, 5, result.Visited)
		assert.Equal(t, 0, result.Waiting)
		// Only the worker holding the seed is left to fetch its links.
		assert.Equal(t, 1, s.peakFetches())
	})

	t.Run("keeps workers while the timeout is long", func(t *testing.T) {
		t.Parallel()

		s := &slowSite{}
		c := &crawl.Crawler{
			Fetcher:     s.fetcher(),
			Extractor:   s.extractor(),
			IdleTimeout: time.Hour,
		}

		result, err := c.Start(context.Background(), "https://example.com", "", 4)

		require.NoError(t, err)
		assert.Equal(t, 5, result.Visited)
		assert.Greater(t, s.peakFetches(), 1)
	})
}

func TestCrawler_StartOverHTTP(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var requested []string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.Host+r.URL.Path)
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<html><body>
				<a href="/a">a</a>
				<a href="http://www.example.com/a/">a again</a>
				<a href="http://other.com/x">elsewhere</a>
			</body></html>`)
		case "/a":
			fmt.Fprint(w, `<html><body>leaf</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	// Every host dials the test server; its certificate covers example.com.
	transport := srv.Client().Transport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, srv.Listener.Addr().String())
	}
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}

	c := &crawl.Crawler{
		Fetcher:   spiderhttp.NewFetcher(spiderhttp.WithClient(client)),
		Extractor: goquery.NewLinkExtractor(),
	}

	result, err := c.Start(context.Background(), "http://example.com", "", 4)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Visited)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 0, result.Failed)

	mu.Lock()
	defer mu.Unlock()
	sort.Strings(requested)
	assert.Equal(t, []string{"example.com/", "example.com/a"}, requested)
}
