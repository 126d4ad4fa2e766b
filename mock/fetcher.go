package mock

import (
	"context"

	"github.com/fwojciec/spider"
)

var _ spider.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of spider.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*spider.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*spider.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
