package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shortyhq/shorty/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	// Scoped updates and deletes also return it when the caller does not own
	// the row, so non-owners cannot probe for existence.
	ErrLinkNotFound = errors.New("link not found")
	// ErrSlugConflict signals that the slug is already taken.
	ErrSlugConflict = errors.New("slug already exists")
)

const pgUniqueViolation = "23505"

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	// Status is "active", "inactive" or empty.
	Status string
	// OwnerID limits results to one owner.
	OwnerID string
	// ActiveOnly is the anonymous-caller restriction, independent of Status.
	ActiveOnly bool
	// Search is a case-insensitive substring match over slug and target URL.
	Search string
	Limit  int
}

// LinkRepository is the durable slug -> link mapping. Slug uniqueness and
// click counting are enforced inside the database, never by application-side
// check-then-act.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	FindBySlug(ctx context.Context, slug string) (*model.Link, error)
	FindActiveBySlug(ctx context.Context, slug string) (*model.Link, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// IncrementClicks bumps click_count by exactly one inside the database
	// and returns the post-increment record.
	IncrementClicks(ctx context.Context, id string) (*model.Link, error)
	// UpdateScoped applies fields to the link with the given id. A non-nil
	// ownerID additionally scopes the update to rows owned by that caller.
	UpdateScoped(ctx context.Context, id string, ownerID *string, fields map[string]interface{}) (*model.Link, error)
	// DeleteScoped removes the link. Owner scoping as in UpdateScoped.
	DeleteScoped(ctx context.Context, id string, ownerID *string) error
	List(ctx context.Context, filter ListFilter) ([]model.Link, error)
	AllSlugs(ctx context.Context) ([]string, error)
	// Aggregate totals link counts and accumulated clicks, optionally
	// scoped to one owner.
	Aggregate(ctx context.Context, ownerID string) (*LinkAggregate, error)
}

// LinkAggregate is the per-owner (or global) link summary used by stats.
type LinkAggregate struct {
	TotalLinks  int64 `json:"total_links"`
	ActiveLinks int64 `json:"active_links"`
	TotalClicks int64 `json:"total_clicks"`
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		// The unique index on slug is the authoritative collision check; a
		// concurrent insert of the same slug loses here, not at lookup time.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrSlugConflict
		}
		return err
	}
	return nil
}

func (r *linkRepository) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *linkRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.Link, error) {
	return r.findOne(ctx, "slug = ? AND active = ?", slug, true)
}

func (r *linkRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where(query, args...).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepository) IncrementClicks(ctx context.Context, id string) (*model.Link, error) {
	link := model.Link{ID: id}
	result := r.db.WithContext(ctx).
		Model(&link).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1"))

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}
	return &link, nil
}

func (r *linkRepository) UpdateScoped(ctx context.Context, id string, ownerID *string, fields map[string]interface{}) (*model.Link, error) {
	link := model.Link{ID: id}
	tx := r.db.WithContext(ctx).
		Model(&link).
		Clauses(clause.Returning{}).
		Where("id = ?", id)
	if ownerID != nil {
		tx = tx.Where("owner_id = ?", *ownerID)
	}

	result := tx.Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}
	return &link, nil
}

func (r *linkRepository) DeleteScoped(ctx context.Context, id string, ownerID *string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id)
	if ownerID != nil {
		tx = tx.Where("owner_id = ?", *ownerID)
	}

	result := tx.Delete(&model.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) List(ctx context.Context, filter ListFilter) ([]model.Link, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&model.Link{})

	switch filter.Status {
	case "active":
		tx = tx.Where("active = ?", true)
	case "inactive":
		tx = tx.Where("active = ?", false)
	}
	if filter.ActiveOnly {
		tx = tx.Where("active = ?", true)
	}
	if filter.OwnerID != "" {
		tx = tx.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		tx = tx.Where("slug ILIKE ? OR target_url ILIKE ?", pattern, pattern)
	}

	var result []model.Link
	if err := tx.Order("created_at DESC").Limit(limit).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *linkRepository) Aggregate(ctx context.Context, ownerID string) (*LinkAggregate, error) {
	tx := r.db.WithContext(ctx).Model(&model.Link{})
	if ownerID != "" {
		tx = tx.Where("owner_id = ?", ownerID)
	}

	var agg LinkAggregate
	err := tx.Select(
		"COUNT(*) AS total_links, " +
			"COUNT(*) FILTER (WHERE active) AS active_links, " +
			"COALESCE(SUM(click_count), 0) AS total_clicks",
	).Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *linkRepository) AllSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}
