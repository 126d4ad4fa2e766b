// Package crawl provides the crawl coordinator.
// It runs a fixed pool of workers over a shared Frontier, scopes and
// deduplicates discovered links, and persists progress through a
// spider.FrontierStore so an interrupted crawl can resume.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/spider"
	"golang.org/x/sync/errgroup"
)

// Coordinator defaults.
const (
	// DefaultWorkers is the worker count used when Start is given zero.
	DefaultWorkers = 8
	// DefaultIdleTimeout is how long a worker waits for new work before it
	// retires.
	DefaultIdleTimeout = 5 * time.Second
	// DefaultProject names the persisted frontier when Project is empty.
	DefaultProject = "default"
)

var _ spider.Coordinator = (*Crawler)(nil)

// Crawler coordinates a concurrent, domain-scoped crawl.
type Crawler struct {
	Fetcher   spider.Fetcher
	Extractor spider.LinkExtractor

	// Store persists the frontier. Optional; without it every crawl starts
	// fresh and nothing is saved.
	Store spider.FrontierStore

	// Sitemaps, when set, seeds a fresh frontier with sitemap URLs.
	Sitemaps spider.SitemapService

	// Scoper derives domain keys. Defaults to spider.LabelScoper.
	Scoper spider.DomainScoper

	Logger *slog.Logger

	// Project names the persisted frontier.
	Project string

	// IdleTimeout is how long a worker waits for new work before it retires,
	// shrinking the pool while peers finish slow fetches. The crawl itself
	// ends only when the frontier drains. Defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration

	// RetryDelays are the waits between fetch attempts. Empty means a
	// failed fetch is not retried.
	RetryDelays []time.Duration

	// CheckpointInterval enables periodic saves while the crawl runs.
	CheckpointInterval time.Duration

	Progress ProgressFunc
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Links   int
	Waiting int
	Visited int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
// It is called from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(event ProgressEvent)

// Start crawls from seedURL until the frontier drains or ctx ends, then saves
// the frontier. An empty domain is derived from seedURL. A context error is
// returned together with the result once the frontier has been saved.
func (c *Crawler) Start(ctx context.Context, seedURL, domain string, workers int) (*spider.CrawlResult, error) {
	seed, err := spider.Canonicalize(seedURL)
	if err != nil {
		return nil, err
	}

	scoper := c.scoper()
	if domain == "" {
		domain = scoper.DomainOf(seed)
	}
	if domain == "" {
		return nil, spider.Errorf(spider.EINVALID, "cannot derive a domain from %q", seedURL)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	logger := c.logger()
	state := c.load(ctx, logger)
	frontier := NewFrontier(state)

	if waiting, _ := frontier.Len(); waiting == 0 {
		frontier.Push(seed)
	}
	if state.Empty() && c.Sitemaps != nil {
		c.seedFromSitemaps(ctx, frontier, scoper, seed, domain, logger)
	}

	waiting, visited := frontier.Len()
	logger.Info("crawl started", "seed", seed, "domain", domain, "workers", workers, "waiting", waiting, "visited", visited)
	c.progress(ProgressEvent{Type: ProgressStarted, URL: seed, Waiting: waiting, Visited: visited})

	r := &run{
		crawler:  c,
		frontier: frontier,
		scoper:   scoper,
		domain:   domain,
		logger:   logger,
		hashes:   make(map[uint64]struct{}),
	}

	checkpointDone := c.startCheckpoints(ctx, frontier, logger)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			r.work(gctx)
			return nil
		})
	}
	_ = g.Wait()
	checkpointDone()

	result := r.result()
	if c.Store != nil {
		// Saved even when ctx was cancelled so an interrupted crawl can resume.
		if err := c.Store.Save(context.WithoutCancel(ctx), c.project(), frontier.Snapshot()); err != nil {
			return result, fmt.Errorf("saving frontier: %w", err)
		}
	}

	logger.Info("crawl finished",
		"visited", result.Visited,
		"waiting", result.Waiting,
		"fetched", result.Fetched,
		"failed", result.Failed,
		"duplicates", result.Duplicates,
		"seen", frontier.Seen(),
	)
	c.progress(ProgressEvent{Type: ProgressFinished, Waiting: result.Waiting, Visited: result.Visited})

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// load reads persisted state. Read failures are logged; whatever the store
// could read is kept and the rest starts empty.
func (c *Crawler) load(ctx context.Context, logger *slog.Logger) *spider.FrontierState {
	if c.Store == nil {
		return &spider.FrontierState{}
	}
	state, err := c.Store.Load(ctx, c.project())
	if err != nil {
		logger.Warn("loading frontier failed", "project", c.project(), "err", err)
	}
	if state == nil {
		return &spider.FrontierState{}
	}
	return state
}

func (c *Crawler) seedFromSitemaps(ctx context.Context, frontier *Frontier, scoper spider.DomainScoper, seed, domain string, logger *slog.Logger) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, seed)
	if err != nil {
		logger.Warn("sitemap discovery failed", "url", seed, "found", len(urls), "err", err)
	}

	var added int
	for _, u := range urls {
		if !spider.InScopeOf(scoper, u, domain) {
			continue
		}
		key, err := spider.Canonicalize(u)
		if err != nil {
			continue
		}
		if frontier.Push(key) {
			added++
		}
	}
	logger.Debug("sitemap seeded", "url", seed, "found", len(urls), "added", added)
}

// startCheckpoints saves frontier snapshots every CheckpointInterval until the
// returned function is called. The returned function blocks until the
// checkpoint goroutine has exited so saves never overlap.
func (c *Crawler) startCheckpoints(ctx context.Context, frontier *Frontier, logger *slog.Logger) func() {
	if c.Store == nil || c.CheckpointInterval <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(c.CheckpointInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Store.Save(ctx, c.project(), frontier.Snapshot()); err != nil {
					logger.Warn("checkpoint failed", "project", c.project(), "err", err)
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}

func (c *Crawler) scoper() spider.DomainScoper {
	if c.Scoper != nil {
		return c.Scoper
	}
	return spider.LabelScoper{}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c *Crawler) project() string {
	if c.Project != "" {
		return c.Project
	}
	return DefaultProject
}

func (c *Crawler) idleTimeout() time.Duration {
	if c.IdleTimeout > 0 {
		return c.IdleTimeout
	}
	return DefaultIdleTimeout
}

func (c *Crawler) progress(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

// run holds the state of one Start call shared by its workers.
type run struct {
	crawler  *Crawler
	frontier *Frontier
	scoper   spider.DomainScoper
	domain   string
	logger   *slog.Logger

	fetched    atomic.Int64
	failed     atomic.Int64
	duplicates atomic.Int64
	bytes      atomic.Int64

	mu     sync.Mutex
	hashes map[uint64]struct{}
}

func (r *run) work(ctx context.Context) {
	idle := r.crawler.idleTimeout()
	for {
		key, ok := r.frontier.Next(ctx, idle)
		if !ok {
			waiting, visited := r.frontier.Len()
			r.logger.Debug("worker stopped", "waiting", waiting, "visited", visited)
			return
		}
		r.process(ctx, key)
		r.frontier.Done()
	}
}

// process crawls a single key popped from the frontier.
func (r *run) process(ctx context.Context, key string) {
	target, err := spider.Canonicalize(key)
	if err != nil {
		r.logger.Debug("dropping invalid url", "url", key, "err", err)
		r.frontier.Drop(key)
		return
	}
	if !r.frontier.Claim(key, target) {
		return
	}

	fetch := func(ctx context.Context, url string) (*spider.Response, error) {
		return r.crawler.Fetcher.Fetch(ctx, url)
	}
	resp, err := FetchWithRetryDelays(ctx, target, fetch, r.logger, r.crawler.RetryDelays)
	if err != nil {
		r.failed.Add(1)
		r.logger.Warn("fetch failed", "url", target, "err", err)
		r.report(ProgressEvent{Type: ProgressFailed, URL: target, Error: err})
		return
	}

	r.fetched.Add(1)
	r.bytes.Add(int64(len(resp.Body)))
	if r.isDuplicate(resp.Body) {
		r.duplicates.Add(1)
	}

	if !resp.IsHTML() {
		r.logger.Debug("skipping non-html", "url", target, "content_type", resp.ContentType)
		r.report(ProgressEvent{Type: ProgressCompleted, URL: target})
		return
	}

	links, err := r.crawler.Extractor.ExtractLinks(target, string(resp.Body))
	if err != nil {
		r.logger.Warn("extracting links failed", "url", target, "err", err)
		r.report(ProgressEvent{Type: ProgressCompleted, URL: target})
		return
	}

	var added int
	for _, link := range links {
		if !spider.InScopeOf(r.scoper, link, r.domain) {
			continue
		}
		next, err := spider.Canonicalize(link)
		if err != nil {
			continue
		}
		if r.frontier.Push(next) {
			added++
		}
	}
	r.report(ProgressEvent{Type: ProgressCompleted, URL: target, Links: added})
}

// isDuplicate records the body hash and reports whether it was seen before.
func (r *run) isDuplicate(body []byte) bool {
	h := xxhash.Sum64(body)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hashes[h]; ok {
		return true
	}
	r.hashes[h] = struct{}{}
	return false
}

func (r *run) report(event ProgressEvent) {
	if r.crawler.Progress == nil {
		return
	}
	event.Waiting, event.Visited = r.frontier.Len()
	r.crawler.Progress(event)
}

func (r *run) result() *spider.CrawlResult {
	waiting, visited := r.frontier.Len()
	return &spider.CrawlResult{
		Visited:    visited,
		Waiting:    waiting,
		Fetched:    int(r.fetched.Load()),
		Failed:     int(r.failed.Load()),
		Duplicates: int(r.duplicates.Load()),
		Bytes:      r.bytes.Load(),
	}
}
