package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shortyhq/shorty/internal/app/model"
)

// ReferrerCount is one row of the top-referrer aggregation.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

// ClickEventRepository stores and aggregates click events. Inserts run on
// the pgx pool directly; events are hot-path writes and never touched again.
type ClickEventRepository interface {
	Create(ctx context.Context, event *model.ClickEvent) error
	// CountSince counts events after the cutoff. An empty ownerID counts
	// globally; otherwise only events on links owned by that caller.
	CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
	TopReferrers(ctx context.Context, ownerID string, since time.Time, limit int) ([]ReferrerCount, error)
}

type clickEventRepository struct {
	pool *pgxpool.Pool
}

// NewClickEventRepository returns a pgx-backed ClickEventRepository.
func NewClickEventRepository(pool *pgxpool.Pool) ClickEventRepository {
	return &clickEventRepository{pool: pool}
}

func (r *clickEventRepository) Create(ctx context.Context, event *model.ClickEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO click_events (id, link_id, referrer, user_agent, country, addr_hash, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.LinkID, event.Referrer, event.UserAgent,
		event.Country, event.AddrHash, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert click event: %w", err)
	}
	return nil
}

func (r *clickEventRepository) CountSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM click_events e WHERE e.occurred_at >= $1`
	args := []interface{}{since}
	if ownerID != "" {
		query = `SELECT COUNT(*) FROM click_events e
		         JOIN links l ON l.id = e.link_id
		         WHERE e.occurred_at >= $1 AND l.owner_id = $2`
		args = append(args, ownerID)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count click events: %w", err)
	}
	return count, nil
}

func (r *clickEventRepository) TopReferrers(ctx context.Context, ownerID string, since time.Time, limit int) ([]ReferrerCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT e.referrer, COUNT(*) AS hits FROM click_events e
	          WHERE e.occurred_at >= $1 AND e.referrer <> ''
	          GROUP BY e.referrer ORDER BY hits DESC LIMIT $2`
	args := []interface{}{since, limit}
	if ownerID != "" {
		query = `SELECT e.referrer, COUNT(*) AS hits FROM click_events e
		         JOIN links l ON l.id = e.link_id
		         WHERE e.occurred_at >= $1 AND e.referrer <> '' AND l.owner_id = $3
		         GROUP BY e.referrer ORDER BY hits DESC LIMIT $2`
		args = append(args, ownerID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top referrers: %w", err)
	}
	defer rows.Close()

	var result []ReferrerCount
	for rows.Next() {
		var rc ReferrerCount
		if err := rows.Scan(&rc.Referrer, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan referrer row: %w", err)
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}
