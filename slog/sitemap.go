package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

var _ spider.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs sitemap discovery.
type LoggingSitemapService struct {
	next   spider.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next spider.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service. A partial result is logged
// with both its count and the error.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", baseURL, "count", len(urls), "duration", time.Since(begin)}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		s.logger.Log(ctx, levelFor(err), "sitemap discovery", attrs...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL)
}
