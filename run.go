package spider

import (
	"context"
	"time"
)

// Run records a completed crawl.
type Run struct {
	ID         string    `json:"id"`
	Project    string    `json:"project"`
	SeedURL    string    `json:"seedUrl"`
	Domain     string    `json:"domain"`
	Workers    int       `json:"workers"`
	Visited    int       `json:"visited"`
	Waiting    int       `json:"waiting"`
	Fetched    int       `json:"fetched"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Project == "" {
		return Errorf(EINVALID, "run project required")
	}
	if r.SeedURL == "" {
		return Errorf(EINVALID, "run seed URL required")
	}
	return nil
}

// RunService represents a service for recording crawl runs.
type RunService interface {
	// CreateRun records a run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Project *string `json:"project"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
