package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

var _ spider.FrontierStore = (*LoggingFrontierStore)(nil)

// LoggingFrontierStore logs frontier loads and saves with the set sizes.
type LoggingFrontierStore struct {
	next   spider.FrontierStore
	logger *slog.Logger
}

// NewLoggingFrontierStore creates a new LoggingFrontierStore.
func NewLoggingFrontierStore(next spider.FrontierStore, logger *slog.Logger) *LoggingFrontierStore {
	return &LoggingFrontierStore{next: next, logger: logger}
}

// Load delegates to the wrapped store and logs the set sizes read.
func (s *LoggingFrontierStore) Load(ctx context.Context, name string) (state *spider.FrontierState, err error) {
	defer func(begin time.Time) {
		var waiting, visited int
		if state != nil {
			waiting, visited = len(state.Waiting), len(state.Visited)
		}
		attrs := []any{"name", name, "waiting", waiting, "visited", visited, "duration", time.Since(begin)}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		s.logger.Log(ctx, levelFor(err), "frontier load", attrs...)
	}(time.Now())
	return s.next.Load(ctx, name)
}

// Save delegates to the wrapped store and logs the set sizes written.
func (s *LoggingFrontierStore) Save(ctx context.Context, name string, state *spider.FrontierState) (err error) {
	defer func(begin time.Time) {
		var waiting, visited int
		if state != nil {
			waiting, visited = len(state.Waiting), len(state.Visited)
		}
		attrs := []any{"name", name, "waiting", waiting, "visited", visited, "duration", time.Since(begin)}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		s.logger.Log(ctx, levelFor(err), "frontier save", attrs...)
	}(time.Now())
	return s.next.Save(ctx, name, state)
}
