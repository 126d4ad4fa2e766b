package main

import (
	"fmt"

	"github.com/fwojciec/spider"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	state, err := deps.Store.Load(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}

	if state.Empty() {
		fmt.Fprintf(deps.Stdout, "No saved state for %q. Use 'spider crawl' to start one.\n", c.Name)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "waiting: %d\n", len(state.Waiting))
	fmt.Fprintf(deps.Stdout, "visited: %d\n", len(state.Visited))
	if len(state.Waiting) == 0 {
		fmt.Fprintln(deps.Stdout, "Crawl finished.")
	}
	return nil
}
