package mock

import (
	"context"

	"github.com/fwojciec/spider"
)

var _ spider.FrontierStore = (*FrontierStore)(nil)

// FrontierStore is a mock implementation of spider.FrontierStore.
type FrontierStore struct {
	LoadFn func(ctx context.Context, name string) (*spider.FrontierState, error)
	SaveFn func(ctx context.Context, name string, state *spider.FrontierState) error
}

func (s *FrontierStore) Load(ctx context.Context, name string) (*spider.FrontierState, error) {
	return s.LoadFn(ctx, name)
}

func (s *FrontierStore) Save(ctx context.Context, name string, state *spider.FrontierState) error {
	return s.SaveFn(ctx, name, state)
}
