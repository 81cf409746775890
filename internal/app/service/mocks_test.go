package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shortyhq/shorty/internal/app/model"
	"github.com/shortyhq/shorty/internal/app/repository"
)

type mockLinkRepository struct {
	createFn          func(ctx context.Context, link *model.Link) error
	findBySlugFn      func(ctx context.Context, slug string) (*model.Link, error)
	findActiveFn      func(ctx context.Context, slug string) (*model.Link, error)
	slugExistsFn      func(ctx context.Context, slug string) (bool, error)
	incrementClicksFn func(ctx context.Context, id string) (*model.Link, error)
	updateScopedFn    func(ctx context.Context, id string, ownerID *string, fields map[string]interface{}) (*model.Link, error)
	deleteScopedFn    func(ctx context.Context, id string, ownerID *string) error
	listFn            func(ctx context.Context, filter repository.ListFilter) ([]model.Link, error)
	allSlugsFn        func(ctx context.Context) ([]string, error)
	aggregateFn       func(ctx context.Context, ownerID string) (*repository.LinkAggregate, error)
}

func (m *mockLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	if m.findBySlugFn != nil {
		return m.findBySlugFn(ctx, slug)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.Link, error) {
	if m.findActiveFn != nil {
		return m.findActiveFn(ctx, slug)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, slug)
	}
	return false, nil
}

func (m *mockLinkRepository) IncrementClicks(ctx context.Context, id string) (*model.Link, error) {
	if m.incrementClicksFn != nil {
		return m.incrementClicksFn(ctx, id)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) UpdateScoped(ctx context.Context, id string, ownerID *string, fields map[string]interface{}) (*model.Link, error) {
	if m.updateScopedFn != nil {
		return m.updateScopedFn(ctx, id, ownerID, fields)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) DeleteScoped(ctx context.Context, id string, ownerID *string) error {
	if m.deleteScopedFn != nil {
		return m.deleteScopedFn(ctx, id, ownerID)
	}
	return repository.ErrLinkNotFound
}

func (m *mockLinkRepository) List(ctx context.Context, filter repository.ListFilter) ([]model.Link, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockLinkRepository) AllSlugs(ctx context.Context) ([]string, error) {
	if m.allSlugsFn != nil {
		return m.allSlugsFn(ctx)
	}
	return nil, nil
}

func (m *mockLinkRepository) Aggregate(ctx context.Context, ownerID string) (*repository.LinkAggregate, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, ownerID)
	}
	return &repository.LinkAggregate{}, nil
}

type mockAuditRepository struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	listFn  func(ctx context.Context, actorID string, limit int) ([]model.AuditEntry, error)
}

func (m *mockAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepository) List(ctx context.Context, actorID string, limit int) ([]model.AuditEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, actorID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditEntry(nil), m.entries...), nil
}

func (m *mockAuditRepository) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type mockClickRepository struct {
	countSinceFn   func(ctx context.Context, ownerID string, since time.Time) (int64, error)
	topReferrersFn func(ctx context.Context, ownerID string, since time.Time, limit int) ([]repository.ReferrerCount, error)
}

func (m *mockClickRepository) Create(ctx context.Context, event *model.ClickEvent) error {
	return nil
}

func (m *mockClickRepository) CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	if m.countSinceFn != nil {
		return m.countSinceFn(ctx, ownerID, since)
	}
	return 0, nil
}

func (m *mockClickRepository) TopReferrers(ctx context.Context, ownerID string, since time.Time, limit int) ([]repository.ReferrerCount, error) {
	if m.topReferrersFn != nil {
		return m.topReferrersFn(ctx, ownerID, since, limit)
	}
	return nil, nil
}

// memoryCounterStore is an in-process CounterStore for limiter tests. The
// mutex stands in for redis INCR's atomicity.
type memoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	keys   []string
	err    error
}

func newMemoryCounterStore() *memoryCounterStore {
	return &memoryCounterStore{counts: make(map[string]int64)}
}

func (s *memoryCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	s.keys = append(s.keys, key)
	return s.counts[key], nil
}

var errStoreDown = errors.New("store unavailable")
