package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shortyhq/shorty/internal/app/model"
	"github.com/shortyhq/shorty/internal/app/repository"
	"github.com/shortyhq/shorty/internal/app/slug"
	"github.com/shortyhq/shorty/internal/auth"
	infraprom "github.com/shortyhq/shorty/internal/infra/prometheus"
	"go.uber.org/zap"
)

const defaultSlugRetries = 5

// LinkServiceDeps bundles everything the link service needs. All external
// clients are injected; the service holds no process-wide state of its own.
type LinkServiceDeps struct {
	Logger     *zap.Logger
	Links      repository.LinkRepository
	Audits     repository.AuditRepository
	Clicks     repository.ClickEventRepository
	Limiter    *Limiter
	Screener   *Screener
	SlugFilter *SlugFilter
	Metrics    *infraprom.Metrics

	AnonListLimit int
	ListLimit     int
	SlugRetries   int
}

// LinkService implements creation, listing and mutation of short links
// under the access policy.
type LinkService struct {
	logger     *zap.Logger
	links      repository.LinkRepository
	audits     repository.AuditRepository
	clicks     repository.ClickEventRepository
	limiter    *Limiter
	screener   *Screener
	slugFilter *SlugFilter
	metrics    *infraprom.Metrics

	anonListLimit int
	listLimit     int
	slugRetries   int
}

// NewLinkService returns a service wired from deps.
func NewLinkService(deps LinkServiceDeps) *LinkService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := deps.SlugRetries
	if retries <= 0 {
		retries = defaultSlugRetries
	}
	anonLimit := deps.AnonListLimit
	if anonLimit <= 0 {
		anonLimit = 20
	}
	listLimit := deps.ListLimit
	if listLimit <= 0 {
		listLimit = 100
	}
	return &LinkService{
		logger:        logger,
		links:         deps.Links,
		audits:        deps.Audits,
		clicks:        deps.Clicks,
		limiter:       deps.Limiter,
		screener:      deps.Screener,
		slugFilter:    deps.SlugFilter,
		metrics:       deps.Metrics,
		anonListLimit: anonLimit,
		listLimit:     listLimit,
		slugRetries:   retries,
	}
}

// CreateLinkInput captures a creation request.
type CreateLinkInput struct {
	TargetURL string
	// Slug is the caller-chosen slug; empty means "generate one".
	Slug       string
	ExpiresAt  *time.Time
	ClickLimit *int64
	// Addr is the raw client network address, used (hashed) for the
	// per-address limiter.
	Addr string
}

// CreateLink validates, rate-limits and screens a creation request, then
// inserts the link and records an audit entry. Anyone may create; anonymous
// links are owned by the public sentinel.
func (s *LinkService) CreateLink(ctx context.Context, identity *auth.Identity, input CreateLinkInput) (*model.Link, error) {
	if err := slug.ValidateURL(input.TargetURL); err != nil {
		return nil, err
	}
	if input.Slug != "" {
		if err := slug.ValidateSlug(input.Slug); err != nil {
			return nil, err
		}
	}
	if input.ClickLimit != nil && *input.ClickLimit <= 0 {
		return nil, ErrInvalidClickLimit
	}

	ownerID := model.PublicOwnerID
	if identity != nil {
		ownerID = identity.UserID
	}

	if !s.limiter.AllowActor(ctx, ownerID) {
		if s.metrics != nil {
			s.metrics.RateLimited.WithLabelValues("actor").Inc()
		}
		return nil, ErrRateLimited
	}
	if !s.limiter.AllowAddr(ctx, input.Addr) {
		if s.metrics != nil {
			s.metrics.RateLimited.WithLabelValues("addr").Inc()
		}
		return nil, ErrRateLimited
	}

	if !s.screener.Screen(ctx, input.TargetURL) {
		if s.metrics != nil {
			s.metrics.ScreenerBlocked.Inc()
		}
		return nil, ErrUnsafeURL
	}

	link, err := s.insertLink(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}

	s.slugFilter.Add(link.Slug)
	if s.metrics != nil {
		s.metrics.LinksCreated.Inc()
	}
	s.audit(ctx, link.ID, ownerID, model.AuditActionCreate)

	s.logger.Info("link created",
		zap.String("id", link.ID),
		zap.String("slug", link.Slug),
		zap.String("owner_id", ownerID))
	return link, nil
}

// insertLink performs the actual insert. Custom slugs get a single attempt;
// generated slugs are retried a bounded number of times on collision. The
// store's unique constraint is the only collision arbiter.
func (s *LinkService) insertLink(ctx context.Context, ownerID string, input CreateLinkInput) (*model.Link, error) {
	newLink := func(slugValue string) *model.Link {
		return &model.Link{
			ID:         uuid.New().String(),
			Slug:       slugValue,
			TargetURL:  input.TargetURL,
			OwnerID:    ownerID,
			Active:     true,
			ExpiresAt:  input.ExpiresAt,
			ClickLimit: input.ClickLimit,
		}
	}

	if input.Slug != "" {
		link := newLink(input.Slug)
		if err := s.links.Create(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	for attempt := 0; attempt < s.slugRetries; attempt++ {
		generated, err := slug.Generate()
		if err != nil {
			return nil, err
		}
		// Definitely-taken slugs never reach the store.
		if s.slugFilter.MightContain(generated) {
			continue
		}

		link := newLink(generated)
		err = s.links.Create(ctx, link)
		if errors.Is(err, repository.ErrSlugConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	return nil, fmt.Errorf("allocate slug after %d attempts: %w", s.slugRetries, repository.ErrSlugConflict)
}

// CheckAvailability reports whether a slug is free. Unauthenticated by
// design: only a boolean ever leaves, never record contents.
func (s *LinkService) CheckAvailability(ctx context.Context, candidate string) (bool, error) {
	if err := slug.ValidateSlug(candidate); err != nil {
		return false, err
	}
	if !s.slugFilter.MightContain(candidate) {
		return true, nil
	}
	exists, err := s.links.SlugExists(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check slug availability: %w", err)
	}
	return !exists, nil
}

// ListLinks returns links visible to the caller under the access policy.
func (s *LinkService) ListLinks(ctx context.Context, identity *auth.Identity, status, search string) ([]model.Link, error) {
	filter := listFilter(identity, status, search, s.anonListLimit, s.listLimit)
	links, err := s.links.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// UpdateLinkInput captures the mutable fields of a link.
type UpdateLinkInput struct {
	Active *bool
}

// UpdateLink toggles a link's fields. The caller must be authenticated;
// non-admins can only touch their own records and cannot tell a foreign
// record from a missing one.
func (s *LinkService) UpdateLink(ctx context.Context, identity *auth.Identity, id string, input UpdateLinkInput) (*model.Link, error) {
	fields := map[string]interface{}{}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	link, err := s.links.UpdateScoped(ctx, id, mutationScope(identity), fields)
	if err != nil {
		return nil, err
	}

	action := model.AuditActionUpdate
	if input.Active != nil {
		if *input.Active {
			action = model.AuditActionActivate
		} else {
			action = model.AuditActionDeactivate
		}
	}
	s.audit(ctx, link.ID, identity.UserID, action)

	return link, nil
}

// DeleteLink removes a link. Hard delete; there is no undelete.
func (s *LinkService) DeleteLink(ctx context.Context, identity *auth.Identity, id string) error {
	if err := s.links.DeleteScoped(ctx, id, mutationScope(identity)); err != nil {
		return err
	}
	s.audit(ctx, id, identity.UserID, model.AuditActionDelete)
	return nil
}

// AuditLog returns the latest audit entries visible to the caller.
func (s *LinkService) AuditLog(ctx context.Context, identity *auth.Identity) ([]model.AuditEntry, error) {
	actorID := ""
	if !identity.IsAdmin() {
		actorID = identity.UserID
	}
	entries, err := s.audits.List(ctx, actorID, 50)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Stats summarizes link and click activity for the caller.
type Stats struct {
	TotalLinks   int64                      `json:"total_links"`
	ActiveLinks  int64                      `json:"active_links"`
	TotalClicks  int64                      `json:"total_clicks"`
	ClicksLast7  int64                      `json:"clicks_last_7d"`
	ClicksLast30 int64                      `json:"clicks_last_30d"`
	TopReferrers []repository.ReferrerCount `json:"top_referrers"`
	RangeDays    int                        `json:"range_days"`
}

// LinkStats aggregates per-owner (admin: global) analytics over the given
// range. Days are clamped to [7, 90].
func (s *LinkService) LinkStats(ctx context.Context, identity *auth.Identity, days int) (*Stats, error) {
	if days < 7 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	scope := statsScope(identity)
	now := time.Now().UTC()

	agg, err := s.links.Aggregate(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("aggregate links: %w", err)
	}

	last7, err := s.clicks.CountSince(ctx, scope, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	last30, err := s.clicks.CountSince(ctx, scope, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}

	referrers, err := s.clicks.TopReferrers(ctx, scope, now.AddDate(0, 0, -days), 10)
	if err != nil {
		return nil, fmt.Errorf("top referrers: %w", err)
	}

	return &Stats{
		TotalLinks:   agg.TotalLinks,
		ActiveLinks:  agg.ActiveLinks,
		TotalClicks:  agg.TotalClicks,
		ClicksLast7:  last7,
		ClicksLast30: last30,
		TopReferrers: referrers,
		RangeDays:    days,
	}, nil
}

// audit appends an entry to the append-only log. Audit failures are logged
// and do not fail the mutation they describe.
func (s *LinkService) audit(ctx context.Context, linkID, actorID, action string) {
	entry := &model.AuditEntry{
		LinkID:  linkID,
		ActorID: actorID,
		Action:  action,
	}
	if err := s.audits.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append audit entry",
			zap.String("link_id", linkID),
			zap.String("action", action),
			zap.Error(err))
	}
}
