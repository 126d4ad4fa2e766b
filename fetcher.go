package spider

import (
	"context"
	"mime"
	"strings"
)

// Response is the content retrieved for a single URL.
type Response struct {
	// URL is the address that was fetched.
	URL string

	// StatusCode is the HTTP status, or 0 for non-HTTP fetchers.
	StatusCode int

	// ContentType is the media type reported by the server,
	// e.g. "text/html; charset=utf-8".
	ContentType string

	// Body holds the response content. HTML bodies are UTF-8.
	Body []byte
}

// IsHTML reports whether the response carries an HTML document.
// Only HTML responses are handed to a LinkExtractor.
func (r *Response) IsHTML() bool {
	if r == nil || r.ContentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(r.ContentType, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, "text/html")
}

// Fetcher retrieves the content of a URL.
type Fetcher interface {
	// Fetch retrieves the URL and returns its content.
	// Non-success statuses, network failures and undecodable bodies are errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases resources held by the fetcher.
	Close() error
}
