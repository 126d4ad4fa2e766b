package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/crawl"
	"github.com/fwojciec/spider/publicsuffix"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	seed := c.Seed
	if seed == "" {
		fmt.Fprint(deps.Stdout, "Enter URL to crawl: ")
		line, err := bufio.NewReader(deps.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read seed URL: %w", err)
		}
		seed = strings.TrimSpace(line)
	}

	if err := spider.ValidateSeedURL(seed); err != nil {
		fmt.Fprintln(deps.Stdout, "Invalid URL.")
		return err
	}

	scoper := c.scoper()
	domain := scoper.DomainOf(seed)
	name := c.Name
	if name == "" {
		name = domain
	}

	coordinator := deps.NewCoordinator(name, scoper)
	startedAt := time.Now().UTC()
	result, err := coordinator.Start(deps.Ctx, seed, domain, c.Workers)
	if result != nil {
		fmt.Fprintln(deps.Stdout, crawl.FormatSummary(result))
		c.recordRun(deps, name, seed, domain, startedAt, result)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(deps.Stderr, "Interrupted. Run 'spider crawl %s' again to resume.\n", seed)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}

	return nil
}

// recordRun stores the run history entry. Failures are reported but do not
// fail the crawl.
func (c *CrawlCmd) recordRun(deps *Dependencies, name, seed, domain string, startedAt time.Time, result *spider.CrawlResult) {
	if deps.Runs == nil {
		return
	}
	run := &spider.Run{
		Project:    name,
		SeedURL:    seed,
		Domain:     domain,
		Workers:    c.Workers,
		Visited:    result.Visited,
		Waiting:    result.Waiting,
		Fetched:    result.Fetched,
		Failed:     result.Failed,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	if err := deps.Runs.CreateRun(context.WithoutCancel(deps.Ctx), run); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: failed to record run: %s\n", spider.ErrorMessage(err))
	}
}

func (c *CrawlCmd) scoper() spider.DomainScoper {
	if c.Scope == "psl" {
		return publicsuffix.Scoper{}
	}
	return spider.LabelScoper{}
}

// newProgressPrinter returns a ProgressFunc that keeps a single status line
// on w.
func newProgressPrinter(w io.Writer) crawl.ProgressFunc {
	var mu sync.Mutex
	return func(event crawl.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()

		switch event.Type {
		case crawl.ProgressCompleted:
			fmt.Fprintf(w, "\r\033[K[%d visited, %d waiting] %s", event.Visited, event.Waiting, crawl.TruncateURL(event.URL, 60))
		case crawl.ProgressFailed:
			fmt.Fprintf(w, "\r\033[Kfailed: %s: %v\n", crawl.TruncateURL(event.URL, 60), event.Error)
		case crawl.ProgressFinished:
			fmt.Fprint(w, "\r\033[K")
		}
	}
}
