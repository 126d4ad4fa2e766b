package spider

import "context"

// CrawlResult reports the outcome of a crawl.
type CrawlResult struct {
	// Visited and Waiting are the sizes of the frontier sets at completion.
	Visited int
	Waiting int

	// Fetched counts successful fetches during this run; Failed counts
	// fetch errors.
	Fetched int
	Failed  int

	// Duplicates counts fetched bodies identical to one fetched earlier
	// in the run under a different URL.
	Duplicates int

	// Bytes is the total size of fetched bodies.
	Bytes int64
}

// Coordinator runs a crawl over one domain.
type Coordinator interface {
	// Start crawls from seedURL until the frontier drains, using workers
	// concurrent workers. Links are followed only when they belong to
	// domain; an empty domain is derived from seedURL.
	Start(ctx context.Context, seedURL, domain string, workers int) (*CrawlResult, error)
}
