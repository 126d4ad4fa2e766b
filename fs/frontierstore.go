// Package fs provides file-based persistence of crawl frontiers.
package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/spider"
)

// File names of the persisted collections.
const (
	WaitingFile = "waiting.txt"
	VisitedFile = "crawled.txt"
)

// Ensure FrontierStore implements spider.FrontierStore at compile time.
var _ spider.FrontierStore = (*FrontierStore)(nil)

// FrontierStore persists each frontier as two newline-delimited files under
// baseDir/name: one URL per line, sorted, ending in a single newline.
type FrontierStore struct {
	baseDir string
}

// NewFrontierStore creates a new FrontierStore rooted at baseDir.
func NewFrontierStore(baseDir string) *FrontierStore {
	return &FrontierStore{baseDir: baseDir}
}

// Dir returns the directory holding the named frontier.
func (s *FrontierStore) Dir(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, name), nil
}

// Load reads the named frontier. Missing files yield empty sets.
// A file that cannot be read yields an empty set for that collection and an
// error; the collections that were read are still returned.
func (s *FrontierStore) Load(ctx context.Context, name string) (*spider.FrontierState, error) {
	dir, err := s.Dir(name)
	if err != nil {
		return nil, err
	}

	state := &spider.FrontierState{}
	var errs []error
	if state.Waiting, err = readSet(filepath.Join(dir, WaitingFile)); err != nil {
		errs = append(errs, err)
	}
	if state.Visited, err = readSet(filepath.Join(dir, VisitedFile)); err != nil {
		errs = append(errs, err)
	}
	return state, errors.Join(errs...)
}

// Save overwrites both files of the named frontier.
// Each file is written to a temporary file, fsynced and renamed into place,
// then the directory is fsynced so the renames survive a crash.
func (s *FrontierStore) Save(ctx context.Context, name string, state *spider.FrontierState) error {
	dir, err := s.Dir(name)
	if err != nil {
		return err
	}
	if state == nil {
		state = &spider.FrontierState{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating frontier directory: %w", err)
	}
	if err := writeSet(filepath.Join(dir, WaitingFile), state.Waiting); err != nil {
		return err
	}
	if err := writeSet(filepath.Join(dir, VisitedFile), state.Visited); err != nil {
		return err
	}
	return syncDir(dir)
}

// ValidateName returns an error if name cannot be used as a single path element.
func ValidateName(name string) error {
	if name == "" {
		return spider.Errorf(spider.EINVALID, "frontier name required")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return spider.Errorf(spider.EINVALID, "invalid frontier name %q", name)
	}
	return nil
}

// readSet reads one URL per line, skipping blank lines.
// A missing file is an empty set.
func readSet(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return []string{}, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	urls := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return []string{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return urls, nil
}

// writeSet atomically replaces path with the sorted, deduplicated urls.
func writeSet(path string, urls []string) error {
	sorted := append([]string(nil), urls...)
	sort.Strings(sorted)

	var b strings.Builder
	var prev string
	for i, u := range sorted {
		if u == "" || (i > 0 && u == prev) {
			continue
		}
		prev = u
		b.WriteString(u)
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", dir, err)
	}
	return nil
}
