package spider

import (
	"context"
	"sort"
)

// FrontierState is the persisted form of a crawl frontier.
// Waiting holds URLs discovered but not yet visited; Visited holds URLs
// whose fetch was attempted. A URL appears in at most one of the two.
type FrontierState struct {
	Waiting []string
	Visited []string
}

// Empty reports whether the state holds no URLs.
func (s *FrontierState) Empty() bool {
	return s == nil || (len(s.Waiting) == 0 && len(s.Visited) == 0)
}

// Sort orders both sets lexically so persisted output is reproducible.
func (s *FrontierState) Sort() {
	sort.Strings(s.Waiting)
	sort.Strings(s.Visited)
}

// FrontierStore persists frontier state between crawl runs.
type FrontierStore interface {
	// Load reads the state saved under name.
	// A project that was never saved yields an empty state and no error.
	// Implementations may return a partially read state together with an
	// error when part of the persisted data is unreadable.
	Load(ctx context.Context, name string) (*FrontierState, error)

	// Save replaces the state saved under name. Both sets are written in
	// sorted order and are durable once Save returns.
	Save(ctx context.Context, name string, state *FrontierState) error
}
