// Package bloom provides a probabilistic membership test for canonical URLs.
// It never reports a stored key as absent, so callers use it to skip exact
// lookups for keys that were definitely never seen.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter keyed by canonical URL.
// Filter is not safe for concurrent use; callers serialize access.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records key in the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// MayContain returns false if key was definitely never added.
// A true result may be a false positive.
func (f *Filter) MayContain(key string) bool {
	return f.f.TestString(key)
}

// TestAndAdd adds key and reports whether it may have been present before.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
