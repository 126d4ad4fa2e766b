package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/spider"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the number of pages a browser renders before it is
// replaced.
const DefaultMaxPages = 75

// BrowserManager shares a headless Chrome between concurrent crawl workers and
// replaces it after a fixed number of pages, since Chrome's memory use only
// grows over a long crawl. A replaced browser stays open until the pages
// still rendering on it are released.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	current  *browserInstance
	retired  map[*browserInstance]struct{}
	maxPages int64
	closed   bool
}

// browserInstance is one launched Chrome process.
type browserInstance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int64
	inflight int
	retired  bool
	stopped  bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser renders before it is replaced.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager launches a headless Chrome.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		retired:  make(map[*browserInstance]struct{}),
	}
	for _, opt := range opts {
		opt(bm)
	}

	inst, err := launchBrowser()
	if err != nil {
		return nil, err
	}
	bm.current = inst
	return bm, nil
}

// Acquire returns the browser to render the next page on, together with a
// release func the caller must invoke once the page is closed. Release is
// safe to call more than once.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, spider.Errorf(spider.EINVALID, "browser is closed")
	}

	if bm.maxPages > 0 && bm.current.pages >= bm.maxPages {
		bm.replace()
	}

	inst := bm.current
	inst.pages++
	inst.inflight++

	var once sync.Once
	release := func() {
		once.Do(func() {
			bm.mu.Lock()
			defer bm.mu.Unlock()
			inst.inflight--
			if inst.retired && inst.inflight == 0 {
				delete(bm.retired, inst)
				_ = inst.stop()
			}
		})
	}
	return inst.browser, release, nil
}

// Close stops every browser, including retired ones with pages in flight.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	err := bm.current.stop()
	for inst := range bm.retired {
		_ = inst.stop()
		delete(bm.retired, inst)
	}
	return err
}

// LauncherPID returns the process ID of the current browser launcher.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil || bm.current.launcher == nil {
		return 0
	}
	return bm.current.launcher.PID()
}

// replace launches a fresh browser and retires the current one. If the launch
// fails the current browser keeps serving pages.
// Must be called with mu held.
func (bm *BrowserManager) replace() {
	next, err := launchBrowser()
	if err != nil {
		return
	}

	old := bm.current
	bm.current = next
	old.retired = true
	if old.inflight == 0 {
		_ = old.stop()
		return
	}
	bm.retired[old] = struct{}{}
}

// launchBrowser starts a headless Chrome with flags that keep background tabs
// rendering at full speed.
func launchBrowser() (*browserInstance, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &browserInstance{browser: browser, launcher: l}, nil
}

// stop closes the browser and kills its process.
func (inst *browserInstance) stop() error {
	if inst.stopped {
		return nil
	}
	inst.stopped = true

	err := inst.browser.Close()
	inst.launcher.Kill()
	return err
}
