package mock

import (
	"context"

	"github.com/fwojciec/spider"
)

var _ spider.RunService = (*RunService)(nil)

// RunService is a mock implementation of spider.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *spider.Run) error
	FindRunsFn  func(ctx context.Context, filter spider.RunFilter) ([]*spider.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *spider.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter spider.RunFilter) ([]*spider.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
