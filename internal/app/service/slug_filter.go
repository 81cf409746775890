package service

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shortyhq/shorty/internal/app/repository"
)

const (
	slugFilterCapacity = 1_000_000
	slugFilterFPRate   = 0.001
)

// SlugFilter is an advisory bloom filter over known slugs. A negative
// answer means the slug is definitely free, which lets availability checks
// and generated-slug retries skip a store round-trip. Positives fall
// through to the store; the unique constraint stays authoritative.
type SlugFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewSlugFilter returns an empty filter sized for the expected link volume.
func NewSlugFilter() *SlugFilter {
	return &SlugFilter{
		filter: bloom.NewWithEstimates(slugFilterCapacity, slugFilterFPRate),
	}
}

// Seed loads every existing slug from the store into the filter.
func (f *SlugFilter) Seed(ctx context.Context, links repository.LinkRepository) error {
	slugs, err := links.AllSlugs(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range slugs {
		f.filter.AddString(s)
	}
	return nil
}

// Add records a newly created slug.
func (f *SlugFilter) Add(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(slug)
}

// MightContain reports whether the slug may exist. False is definitive.
func (f *SlugFilter) MightContain(slug string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(slug)
}
