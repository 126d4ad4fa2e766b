package main

import (
	"bufio"
	"fmt"

	"github.com/fwojciec/spider"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	state, err := deps.Store.Load(deps.Ctx, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}

	urls := state.Visited
	if c.Set == "waiting" {
		urls = state.Waiting
	}

	w := bufio.NewWriter(deps.Stdout)
	for _, u := range urls {
		fmt.Fprintln(w, u)
	}
	return w.Flush()
}
