package sqlite

import (
	"context"
	"fmt"

	"github.com/fwojciec/spider"
)

// URL states stored in frontier_urls.
const (
	stateWaiting = "waiting"
	stateVisited = "visited"
)

// Compile-time interface verification.
var _ spider.FrontierStore = (*FrontierStore)(nil)

// FrontierStore implements spider.FrontierStore using SQLite.
type FrontierStore struct {
	db *DB
}

// NewFrontierStore creates a new FrontierStore.
func NewFrontierStore(db *DB) *FrontierStore {
	return &FrontierStore{db: db}
}

// Load retrieves the frontier saved under name, sorted by URL.
func (s *FrontierStore) Load(ctx context.Context, name string) (*spider.FrontierState, error) {
	if name == "" {
		return nil, spider.Errorf(spider.EINVALID, "frontier name required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, state
		FROM frontier_urls
		WHERE project = ?
		ORDER BY url
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	state := &spider.FrontierState{Waiting: []string{}, Visited: []string{}}
	for rows.Next() {
		var url, st string
		if err := rows.Scan(&url, &st); err != nil {
			return nil, err
		}
		switch st {
		case stateWaiting:
			state.Waiting = append(state.Waiting, url)
		case stateVisited:
			state.Visited = append(state.Visited, url)
		}
	}

	return state, rows.Err()
}

// Save replaces the frontier saved under name in a single transaction.
// A URL present in both sets is stored as visited.
func (s *FrontierStore) Save(ctx context.Context, name string, state *spider.FrontierState) error {
	if name == "" {
		return spider.Errorf(spider.EINVALID, "frontier name required")
	}
	if state == nil {
		state = &spider.FrontierState{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM frontier_urls WHERE project = ?", name); err != nil {
		return fmt.Errorf("clearing frontier: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO frontier_urls (project, url, state)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, set := range []struct {
		state string
		urls  []string
	}{
		{stateWaiting, state.Waiting},
		{stateVisited, state.Visited},
	} {
		for _, url := range set.urls {
			if url == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, name, url, set.state); err != nil {
				return fmt.Errorf("saving %s: %w", url, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing frontier: %w", err)
	}
	return nil
}
