package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Store  spider.FrontierStore
	Runs   spider.RunService

	// NewCoordinator builds the coordinator for a crawl of project.
	NewCoordinator func(project string, scoper spider.DomainScoper) spider.Coordinator
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Store   string `enum:"fs,sqlite" default:"fs" env:"SPIDER_STORE" help:"Frontier storage backend (fs or sqlite)"`
	Dir     string `type:"path" env:"SPIDER_DIR" help:"Root directory of the fs frontier store"`
	Verbose bool   `short:"v" env:"SPIDER_VERBOSE" help:"Log fetches and store operations"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a site from a seed URL"`
	Status StatusCmd `cmd:"" help:"Show persisted frontier sizes"`
	Runs   RunsCmd   `cmd:"" help:"List recorded crawl runs"`
	Export ExportCmd `cmd:"" help:"Print a persisted URL set"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Seed        string        `arg:"" optional:"" help:"Seed URL (prompted for when omitted)"`
	Name        string        `short:"n" env:"SPIDER_NAME" help:"Project name for persisted state (default: seed domain)"`
	Workers     int           `short:"w" default:"8" env:"SPIDER_WORKERS" help:"Concurrent workers"`
	IdleTimeout time.Duration `default:"5s" env:"SPIDER_IDLE_TIMEOUT" help:"How long a worker waits for new links before it retires"`
	Timeout     time.Duration `default:"10s" env:"SPIDER_TIMEOUT" help:"Per-request fetch timeout"`
	Checkpoint  time.Duration `env:"SPIDER_CHECKPOINT" help:"Save the frontier at this interval (0 disables)"`
	Retries     int           `env:"SPIDER_RETRIES" help:"Retry failed fetches with exponential backoff"`
	Sitemap     bool          `env:"SPIDER_SITEMAP" help:"Seed a fresh crawl from the site's sitemaps"`
	Render      bool          `env:"SPIDER_RENDER" help:"Render pages in headless Chrome"`
	Scope       string        `enum:"labels,psl" default:"labels" env:"SPIDER_SCOPE" help:"Domain scoping (labels: last two host labels, psl: public suffix list)"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Name string `arg:"" help:"Project name"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Name  string `arg:"" optional:"" help:"Only show runs for this project"`
	Limit int    `short:"l" default:"20" help:"Maximum runs to show"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Name string `arg:"" help:"Project name"`
	Set  string `enum:"waiting,visited" default:"visited" help:"URL set to print (waiting or visited)"`
}
