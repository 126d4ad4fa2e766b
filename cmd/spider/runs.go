package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/spider"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := spider.RunFilter{Limit: c.Limit}
	if c.Name != "" {
		filter.Project = &c.Name
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'spider crawl' to start one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  visited %d, waiting %d, fetched %d, failed %d\n",
			r.ID, r.Project, r.StartedAt.Local().Format(time.DateTime), r.SeedURL,
			r.Visited, r.Waiting, r.Fetched, r.Failed)
	}
	return nil
}
