package mock

import (
	"context"

	"github.com/fwojciec/spider"
)

var _ spider.Coordinator = (*Coordinator)(nil)

// Coordinator is a mock implementation of spider.Coordinator.
type Coordinator struct {
	StartFn func(ctx context.Context, seedURL, domain string, workers int) (*spider.CrawlResult, error)
}

func (c *Coordinator) Start(ctx context.Context, seedURL, domain string, workers int) (*spider.CrawlResult, error) {
	return c.StartFn(ctx, seedURL, domain, workers)
}
