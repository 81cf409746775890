package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shortyhq/shorty/internal/app/model"
	"github.com/shortyhq/shorty/internal/app/repository"
	"github.com/shortyhq/shorty/internal/app/service"
	"github.com/shortyhq/shorty/internal/auth"
)

type stubLinkRepository struct {
	createFn          func(ctx context.Context, link *model.Link) error
	findActiveFn      func(ctx context.Context, slug string) (*model.Link, error)
	slugExistsFn      func(ctx context.Context, slug string) (bool, error)
	incrementClicksFn func(ctx context.Context, id string) (*model.Link, error)
	listFn            func(ctx context.Context, filter repository.ListFilter) ([]model.Link, error)
}

func (s *stubLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if s.createFn != nil {
		return s.createFn(ctx, link)
	}
	return nil
}

func (s *stubLinkRepository) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	return nil, repository.ErrLinkNotFound
}

func (s *stubLinkRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.Link, error) {
	if s.findActiveFn != nil {
		return s.findActiveFn(ctx, slug)
	}
	return nil, repository.ErrLinkNotFound
}

func (s *stubLinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	if s.slugExistsFn != nil {
		return s.slugExistsFn(ctx, slug)
	}
	return false, nil
}

func (s *stubLinkRepository) IncrementClicks(ctx context.Context, id string) (*model.Link, error) {
	if s.incrementClicksFn != nil {
		return s.incrementClicksFn(ctx, id)
	}
	return nil, repository.ErrLinkNotFound
}

func (s *stubLinkRepository) UpdateScoped(ctx context.Context, id string, ownerID *string, fields map[string]interface{}) (*model.Link, error) {
	return nil, repository.ErrLinkNotFound
}

func (s *stubLinkRepository) DeleteScoped(ctx context.Context, id string, ownerID *string) error {
	return repository.ErrLinkNotFound
}

func (s *stubLinkRepository) List(ctx context.Context, filter repository.ListFilter) ([]model.Link, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubLinkRepository) AllSlugs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubLinkRepository) Aggregate(ctx context.Context, ownerID string) (*repository.LinkAggregate, error) {
	return &repository.LinkAggregate{}, nil
}

type stubAuditRepository struct{}

func (s *stubAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return nil
}

func (s *stubAuditRepository) List(ctx context.Context, actorID string, limit int) ([]model.AuditEntry, error) {
	return nil, nil
}

type stubClickRepository struct{}

func (s *stubClickRepository) Create(ctx context.Context, event *model.ClickEvent) error {
	return nil
}

func (s *stubClickRepository) CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	return 0, nil
}

func (s *stubClickRepository) TopReferrers(ctx context.Context, ownerID string, since time.Time, limit int) ([]repository.ReferrerCount, error) {
	return nil, nil
}

// openCounter never rate-limits.
type openCounter struct{}

func (openCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 1, nil
}

func newHandlerService(links repository.LinkRepository) *service.LinkService {
	return service.NewLinkService(service.LinkServiceDeps{
		Links:      links,
		Audits:     &stubAuditRepository{},
		Clicks:     &stubClickRepository{},
		Limiter:    service.NewLimiter(openCounter{}, service.LimiterConfig{Window: time.Minute, ActorMax: 100, AddrMax: 100}, nil),
		Screener:   service.NewScreener(service.ScreenerOpts{}, nil),
		SlugFilter: service.NewSlugFilter(),
	})
}

// passthroughAuth stands in for the optional auth middleware, injecting a
// fixed identity (nil means anonymous).
func passthroughAuth(identity *auth.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity != nil {
			c.Locals("identity", identity)
		}
		return c.Next()
	}
}
