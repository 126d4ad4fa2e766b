package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/spider"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ spider.RunService = (*RunService)(nil)

// RunService implements spider.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a run with a generated ID.
func (s *RunService) CreateRun(ctx context.Context, run *spider.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, project, seed_url, domain, workers, visited, waiting, fetched, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Project, run.SeedURL, run.Domain, run.Workers,
		run.Visited, run.Waiting, run.Fetched, run.Failed,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339))

	return err
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter spider.RunFilter) ([]*spider.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, project, seed_url, domain, workers, visited, waiting, fetched, failed, started_at, finished_at
		FROM runs WHERE 1=1`)

	if filter.Project != nil {
		query.WriteString(" AND project = ?")
		args = append(args, *filter.Project)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*spider.Run
	for rows.Next() {
		var run spider.Run
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.Project, &run.SeedURL, &run.Domain, &run.Workers,
			&run.Visited, &run.Waiting, &run.Fetched, &run.Failed, &startedAt, &finishedAt); err != nil {
			return nil, err
		}

		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
