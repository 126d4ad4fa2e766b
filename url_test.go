package spider_test

import (
	"testing"

	"github.com/fwojciec/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"coerces http to https", "http://example.com/a", "https://example.com/a"},
		{"strips www and lowercases host", "https://WWW.Example.COM/a", "https://example.com/a"},
		{"lowercases path", "https://example.com/Docs/API", "https://example.com/docs/api"},
		{"strips trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"strips repeated trailing slashes", "https://example.com/docs//", "https://example.com/docs"},
		{"root path is empty", "https://example.com/", "https://example.com"},
		{"drops fragment", "https://example.com/a#section-2", "https://example.com/a"},
		{"sorts query parameters", "https://example.com/?b=2&a=1", "https://example.com?a=1&b=2"},
		{"drops tracking parameters", "https://example.com/p?utm_source=x&utm_medium=y&id=7", "https://example.com/p?id=7"},
		{"drops click identifiers", "https://example.com/p?fbclid=abc&gclid=def", "https://example.com/p"},
		{"drops blank values", "https://example.com/p?a=&b=1", "https://example.com/p?b=1"},
		{"keeps first value", "https://example.com/p?a=2&a=1", "https://example.com/p?a=2"},
		{"lowercases query", "https://example.com/p?Q=Hello", "https://example.com/p?q=hello"},
		{"defaults missing scheme", "example.com/a", "https://example.com/a"},
		{"handles protocol relative", "//example.com/a", "https://example.com/a"},
		{"drops default port", "http://example.com:80/a", "https://example.com/a"},
		{"drops default https port", "https://example.com:443/a", "https://example.com/a"},
		{"keeps other ports", "http://example.com:8080/a", "https://example.com:8080/a"},
		{"keeps non-http schemes", "FTP://files.example.com/pub/", "ftp://files.example.com/pub"},
		{"escapes spaces", "https://example.com/a%20b?q=x%20y", "https://example.com/a%20b?q=x+y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := spider.Canonicalize(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_EquivalentURLs(t *testing.T) {
	t.Parallel()

	a, err := spider.Canonicalize("http://WWW.Example.com/Path/?b=2&utm_source=x&a=1")
	require.NoError(t, err)
	b, err := spider.Canonicalize("https://example.com/path?a=1&b=2")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "https://example.com/path?a=1&b=2", a)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"http://WWW.Example.com/Path/?b=2&utm_source=x&a=1",
		"https://example.com",
		"https://example.com/",
		"example.com/Docs/Intro/#top",
		"http://example.com:8080/a/b/",
		"https://example.com/search?q=Go+Lang&Page=2&page=3",
		"https://example.com/a%20b/?x=%2Fy",
		"http://[::1]:8080/x",
		"http://[2001:db8::1]/",
		"https://example.com/p?A=2&a=1",
	}

	for _, raw := range inputs {
		once, err := spider.Canonicalize(raw)
		require.NoError(t, err, raw)

		twice, err := spider.Canonicalize(once)
		require.NoError(t, err, once)

		assert.Equal(t, once, twice, "canonicalize(%q) is not idempotent", raw)
		assert.Equal(t, once, spider.Normalize(once))
	}
}

func TestCanonicalize_RejectsUncrawlableURLs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"",
		"   ",
		"mailto:someone@example.com",
		"javascript:void(0)",
		"tel:+15551234",
		"/relative/path",
		"http://",
		"http://example.com:notaport/",
	} {
		_, err := spider.Canonicalize(raw)
		require.Error(t, err, raw)
		assert.Equal(t, spider.EINVALID, spider.ErrorCode(err), raw)
	}
}

func TestNormalize_BestEffortOnFailure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mailto:someone@example.com", spider.Normalize("  mailto:someone@example.com "))
	assert.Equal(t, "https://example.com/a", spider.Normalize("http://www.example.com/a/"))
}
