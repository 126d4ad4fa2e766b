//go:build integration

package rod_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/goquery"
	"github.com/fwojciec/spider/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ spider.Fetcher = (*rod.Fetcher)(nil)

// serve returns a server answering every path with page, after delay.
func serve(t *testing.T, page string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, opts ...rod.Option) *rod.Fetcher {
	t.Helper()
	fetcher, err := rod.NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("links added by scripts are extractable", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, `<!DOCTYPE html><html><body><nav id="nav"></nav>
<script>
for (const p of ['/guide', '/reference']) {
  const a = document.createElement('a');
  a.href = p;
  a.textContent = p;
  document.getElementById('nav').appendChild(a);
}
</script></body></html>`, 0)

		resp, err := newFetcher(t).Fetch(context.Background(), srv.URL+"/")
		require.NoError(t, err)
		assert.True(t, resp.IsHTML())

		links, err := goquery.NewLinkExtractor().ExtractLinks(resp.URL, string(resp.Body))
		require.NoError(t, err)
		assert.Contains(t, links, srv.URL+"/guide")
		assert.Contains(t, links, srv.URL+"/reference")
	})

	t.Run("serializes open shadow roots", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, `<!DOCTYPE html><html><body><side-nav></side-nav>
<script>
customElements.define('side-nav', class extends HTMLElement {
  constructor() {
    super();
    this.attachShadow({mode: 'open'}).innerHTML =
      '<a href="/' + 'in-shadow">x</a>';
  }
});
</script></body></html>`, 0)

		resp, err := newFetcher(t).Fetch(context.Background(), srv.URL+"/")
		require.NoError(t, err)

		// The href is assembled at runtime, so it only appears once the
		// shadow root is serialized.
		assert.Contains(t, string(resp.Body), `href="/in-shadow"`)
	})

	t.Run("reports final URL after redirect", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, `<html><body>moved</body></html>`, 0)

		resp, err := newFetcher(t).Fetch(context.Background(), srv.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/new", resp.URL)
		assert.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	})

	t.Run("fetch timeout bounds slow pages", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, `<html><body>late</body></html>`, 500*time.Millisecond)

		_, err := newFetcher(t, rod.WithFetchTimeout(100*time.Millisecond)).Fetch(context.Background(), srv.URL)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled context fails fast", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newFetcher(t).Fetch(ctx, "http://127.0.0.1:1/")
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent fetches survive browser recycling", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, `<html><body><a href="/x">x</a></body></html>`, 50*time.Millisecond)
		fetcher := newFetcher(t, rod.WithRecycleAfter(2))

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := fetcher.Fetch(context.Background(), fmt.Sprintf("%s/page-%d", srv.URL, i))
				if err == nil && !strings.Contains(string(resp.Body), `href="/x"`) {
					err = fmt.Errorf("page %d: missing link", i)
				}
				errs[i] = err
			}()
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())

	_, err = fetcher.Fetch(context.Background(), "http://example.com")
	require.Error(t, err)
	assert.Equal(t, spider.EINVALID, spider.ErrorCode(err))
}
