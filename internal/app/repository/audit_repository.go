package repository

import (
	"context"

	"github.com/shortyhq/shorty/internal/app/model"
	"gorm.io/gorm"
)

// AuditRepository is the append-only log of link mutations. Entries are
// never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	// List returns the most recent entries, newest first. A non-empty
	// actorID scopes the listing to that actor.
	List(ctx context.Context, actorID string, limit int) ([]model.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository returns a GORM-backed AuditRepository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, actorID string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	tx := r.db.WithContext(ctx).Model(&model.AuditEntry{})
	if actorID != "" {
		tx = tx.Where("actor_id = ?", actorID)
	}

	var entries []model.AuditEntry
	if err := tx.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
