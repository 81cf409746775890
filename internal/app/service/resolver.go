package service

import (
	"context"
	"errors"
	"time"

	"github.com/shortyhq/shorty/internal/app/model"
	"github.com/shortyhq/shorty/internal/app/repository"
	infraprom "github.com/shortyhq/shorty/internal/infra/prometheus"
	"go.uber.org/zap"
)

// Resolver turns a slug into a redirect target, enforcing liveness and
// accounting the click. Every outcome is terminal; there is no retry here.
type Resolver struct {
	logger    *zap.Logger
	links     repository.LinkRepository
	publisher *ClickPublisher
	metrics   *infraprom.Metrics
}

// ResolverDeps bundles the resolver's dependencies.
type ResolverDeps struct {
	Logger    *zap.Logger
	Links     repository.LinkRepository
	Publisher *ClickPublisher
	Metrics   *infraprom.Metrics
}

// NewResolver builds a resolver from deps.
func NewResolver(deps ResolverDeps) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:    logger,
		links:     deps.Links,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
	}
}

// Resolve walks the redirect state machine:
//
//  1. active lookup by slug (inactive reads as missing)
//  2. expiry check
//  3. click-limit check, independent of active
//  4. atomic counter increment, which must complete before the caller may
//     emit the response, so the click is accounted even if the client never
//     receives it (at-least-once, never exactly-once)
//  5. best-effort click event publish; failure is logged, never propagated
//
// The post-increment record is returned so the caller redirects to the
// current target.
func (r *Resolver) Resolve(ctx context.Context, slugValue string, meta ClickMeta) (*model.Link, error) {
	link, err := r.links.FindActiveBySlug(ctx, slugValue)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			r.outcome("not_found")
			return nil, err
		}
		r.outcome("error")
		return nil, err
	}

	if link.Expired(time.Now()) {
		r.outcome("expired")
		return nil, ErrLinkExpired
	}
	if link.LimitReached() {
		r.outcome("limit_exceeded")
		return nil, ErrClickLimitReached
	}

	updated, err := r.links.IncrementClicks(ctx, link.ID)
	if err != nil {
		// Losing the increment means losing the operation's durability
		// guarantee; surface it instead of redirecting uncounted.
		r.outcome("error")
		return nil, err
	}

	if r.publisher != nil {
		go r.publish(updated.ID, meta)
	}

	r.outcome("ok")
	return updated, nil
}

func (r *Resolver) publish(linkID string, meta ClickMeta) {
	if err := r.publisher.Publish(linkID, meta); err != nil {
		r.logger.Error("failed to publish click event",
			zap.String("link_id", linkID), zap.Error(err))
	}
}

func (r *Resolver) outcome(label string) {
	if r.metrics != nil {
		r.metrics.Redirects.WithLabelValues(label).Inc()
	}
}
