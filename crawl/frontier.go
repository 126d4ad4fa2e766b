package crawl

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/bloom"
)

// Bloom filter sizing for frontier deduplication.
const (
	// frontierExpectedURLs is the minimum number of URLs the filter is sized for.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the target false positive rate of the filter.
	frontierFalsePositiveRate = 0.01
)

// Frontier holds the waiting and visited sets of a crawl.
// It is safe for concurrent use by multiple goroutines; every membership
// change happens under a single mutex so the two sets stay disjoint.
//
// Workers take keys with Next, claim them with Claim and report completion
// with Done. Keys stay in the waiting set until claimed so a snapshot taken
// mid-crawl never loses in-flight URLs.
type Frontier struct {
	mu      sync.Mutex
	seen    *bloom.Filter
	waiting map[string]struct{}
	visited map[string]struct{}
	queue   []string
	active  int

	// ready is closed and replaced whenever blocked workers should re-check
	// the frontier: a key was pushed or the last active task finished.
	ready chan struct{}
}

// NewFrontier creates a Frontier seeded from state, which may be nil.
// Waiting keys that are already visited are dropped.
func NewFrontier(state *spider.FrontierState) *Frontier {
	if state == nil {
		state = &spider.FrontierState{}
	}

	n := uint(2 * (len(state.Waiting) + len(state.Visited)))
	if n < frontierExpectedURLs {
		n = frontierExpectedURLs
	}

	f := &Frontier{
		seen:    bloom.NewFilter(n, frontierFalsePositiveRate),
		waiting: make(map[string]struct{}, len(state.Waiting)),
		visited: make(map[string]struct{}, len(state.Visited)),
		ready:   make(chan struct{}),
	}
	for _, key := range state.Visited {
		if key == "" {
			continue
		}
		f.visited[key] = struct{}{}
		f.seen.Add(key)
	}

	// Sorted so resumed crawls start in a reproducible order.
	waiting := append([]string(nil), state.Waiting...)
	sort.Strings(waiting)
	for _, key := range waiting {
		f.pushLocked(key)
	}
	return f
}

// Push adds key to the waiting set.
// Returns false if key is empty, already waiting or already visited.
func (f *Frontier) Push(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.pushLocked(key) {
		return false
	}
	f.wakeLocked()
	return true
}

func (f *Frontier) pushLocked(key string) bool {
	if key == "" {
		return false
	}

	// A negative filter answer proves the key is new without map lookups.
	if f.seen.TestAndAdd(key) {
		if _, ok := f.visited[key]; ok {
			return false
		}
		if _, ok := f.waiting[key]; ok {
			return false
		}
	}

	f.waiting[key] = struct{}{}
	f.queue = append(f.queue, key)
	return true
}

// Next blocks until a waiting key is available and returns it, counting the
// caller as active until it calls Done.
//
// The bool result is false when the frontier has drained (no waiting keys and
// no active tasks), when ctx is done, or when no key arrived within idle. An
// idle expiry retires only the caller: keys are pushed by active tasks, and
// those callers return to Next before the frontier can drain, so no waiting
// key is left without a worker. An idle of zero waits without bound.
func (f *Frontier) Next(ctx context.Context, idle time.Duration) (string, bool) {
	var timer *time.Timer
	var timeout <-chan time.Time
	if idle > 0 {
		timer = time.NewTimer(idle)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		if ctx.Err() != nil {
			return "", false
		}
		key, ready, ok := f.tryNext()
		if ok {
			return key, true
		}
		if ready == nil {
			return "", false
		}

		select {
		case <-ctx.Done():
			return "", false
		case <-ready:
		case <-timeout:
			return "", false
		}
	}
}

// tryNext pops a key if one is available. Otherwise it returns the channel to
// wait on, or nil if the frontier has drained.
func (f *Frontier) tryNext() (key string, ready <-chan struct{}, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.queue) > 0 {
		key = f.queue[0]
		f.queue[0] = ""
		f.queue = f.queue[1:]

		// Entries claimed under another spelling are stale.
		if _, waiting := f.waiting[key]; waiting {
			f.active++
			return key, nil, true
		}
	}

	if f.active == 0 {
		return "", nil, false
	}
	return "", f.ready, false
}

// Claim marks canonical as visited so no other worker fetches it.
// popped is the key returned by Next; it is removed from the waiting set
// together with canonical. Returns false, with no other effect, if canonical
// was already visited.
func (f *Frontier) Claim(popped, canonical string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.waiting, popped)
	if f.seen.MayContain(canonical) {
		if _, ok := f.visited[canonical]; ok {
			return false
		}
	}
	delete(f.waiting, canonical)
	f.visited[canonical] = struct{}{}
	f.seen.Add(canonical)
	return true
}

// Drop removes a key that cannot be crawled from the waiting set.
func (f *Frontier) Drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.waiting, key)
}

// Done reports that the task started by the last Next has finished.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.active--
	if f.active == 0 {
		f.wakeLocked()
	}
}

func (f *Frontier) wakeLocked() {
	close(f.ready)
	f.ready = make(chan struct{})
}

// IsVisited returns true if key has been claimed.
func (f *Frontier) IsVisited(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[key]
	return ok
}

// IsWaiting returns true if key is waiting to be visited.
func (f *Frontier) IsWaiting(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.waiting[key]
	return ok
}

// Seen returns the approximate number of distinct keys the frontier has
// recorded, waiting or visited.
func (f *Frontier) Seen() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.EstimatedCount()
}

// Len returns the sizes of the waiting and visited sets.
func (f *Frontier) Len() (waiting, visited int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiting), len(f.visited)
}

// Snapshot returns a sorted copy of both sets.
func (f *Frontier) Snapshot() *spider.FrontierState {
	f.mu.Lock()
	state := &spider.FrontierState{
		Waiting: make([]string, 0, len(f.waiting)),
		Visited: make([]string, 0, len(f.visited)),
	}
	for key := range f.waiting {
		state.Waiting = append(state.Waiting, key)
	}
	for key := range f.visited {
		state.Visited = append(state.Visited, key)
	}
	f.mu.Unlock()

	state.Sort()
	return state
}
