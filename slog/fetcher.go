package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

var _ spider.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every fetch with its status, size and duration.
type LoggingFetcher struct {
	next   spider.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next spider.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *spider.Response, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if resp != nil {
			attrs = append(attrs,
				"status", resp.StatusCode,
				"content_type", resp.ContentType,
				"bytes", len(resp.Body),
			)
			if resp.URL != "" && resp.URL != url {
				attrs = append(attrs, "final_url", resp.URL)
			}
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		f.logger.Log(ctx, levelFor(err), "fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
