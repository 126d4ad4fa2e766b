package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/crawl"
	"github.com/fwojciec/spider/fs"
	"github.com/fwojciec/spider/goquery"
	spiderhttp "github.com/fwojciec/spider/http"
	"github.com/fwojciec/spider/rod"
	spiderslog "github.com/fwojciec/spider/slog"
	"github.com/fwojciec/spider/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path for run history and the sqlite frontier store.
	DBPath string

	// StateDir is the default root of the fs frontier store.
	StateDir string

	// ConfigPaths are YAML files consulted for flag defaults.
	ConfigPaths []string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Overrides for end-to-end testing.
	Fetcher spider.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:      defaultDBPath(),
		StateDir:    defaultStateDir(),
		ConfigPaths: []string{defaultConfigPath()},
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("spider"),
		kong.Description("Crawl every page of a site and keep a resumable frontier."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(YAMLLoader, m.ConfigPaths...),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'spider --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SPIDER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Runs = sqlite.NewRunService(m.DB)

	switch cli.Store {
	case "sqlite":
		deps.Store = sqlite.NewFrontierStore(m.DB)
	default:
		dir := cli.Dir
		if dir == "" {
			dir = m.StateDir
		}
		deps.Store = fs.NewFrontierStore(dir)
	}
	if cli.Verbose {
		deps.Store = spiderslog.NewLoggingFrontierStore(deps.Store, logger)
	}

	if strings.HasPrefix(kongCtx.Command(), "crawl") {
		fetcher, err := m.newFetcher(&cli.Crawl)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		var sitemaps spider.SitemapService
		if cli.Crawl.Sitemap {
			var client *http.Client
			if hf, ok := fetcher.(*spiderhttp.Fetcher); ok {
				client = hf.Client()
			}
			svc := spiderhttp.NewSitemapService(client)
			svc.UserAgent = spiderhttp.DefaultUserAgent
			sitemaps = svc
		}
		if cli.Verbose {
			fetcher = spiderslog.NewLoggingFetcher(fetcher, logger)
			if sitemaps != nil {
				sitemaps = spiderslog.NewLoggingSitemapService(sitemaps, logger)
			}
		}

		var progress crawl.ProgressFunc
		if !cli.Verbose {
			progress = newProgressPrinter(stderr)
		}

		extractor := goquery.NewLinkExtractor()
		flags := cli.Crawl
		deps.NewCoordinator = func(project string, scoper spider.DomainScoper) spider.Coordinator {
			return &crawl.Crawler{
				Fetcher:            fetcher,
				Extractor:          extractor,
				Store:              deps.Store,
				Sitemaps:           sitemaps,
				Scoper:             scoper,
				Logger:             logger,
				Project:            project,
				IdleTimeout:        flags.IdleTimeout,
				RetryDelays:        crawl.BackoffDelays(flags.Retries),
				CheckpointInterval: flags.Checkpoint,
				Progress:           progress,
			}
		}
	}

	return kongCtx.Run(deps)
}

// newFetcher returns the fetcher selected by the crawl flags.
func (m *Main) newFetcher(c *CrawlCmd) (spider.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if c.Render {
		fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		return fetcher, nil
	}
	return spiderhttp.NewFetcher(spiderhttp.WithTimeout(c.Timeout)), nil
}

func defaultDBPath() string {
	if path := os.Getenv("SPIDER_DB"); path != "" {
		return path
	}
	path, err := xdg.DataFile(filepath.Join("spider", "spider.db"))
	if err != nil {
		return "spider.db"
	}
	return path
}

func defaultStateDir() string {
	return filepath.Join(xdg.DataHome, "spider", "frontiers")
}

func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "spider", "config.yaml")
}
