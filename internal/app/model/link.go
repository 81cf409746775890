package model

import "time"

// PublicOwnerID is the sentinel owner for links created anonymously.
const PublicOwnerID = "00000000-0000-0000-0000-000000000000"

// Link describes the core short-link entity stored in Postgres.
// Slug is immutable after creation; ClickCount only ever grows.
type Link struct {
	ID         string     `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Slug       string     `json:"slug" db:"slug" gorm:"size:32;not null;uniqueIndex"`
	TargetURL  string     `json:"target_url" db:"target_url" gorm:"type:text;not null"`
	OwnerID    string     `json:"owner_id" db:"owner_id" gorm:"type:uuid;not null;index"`
	Active     bool       `json:"active" db:"active" gorm:"not null;default:true"`
	ExpiresAt  *time.Time `json:"expires_at" db:"expires_at" gorm:"index"`
	ClickLimit *int64     `json:"click_limit" db:"click_limit"`
	ClickCount int64      `json:"click_count" db:"click_count" gorm:"not null;default:0"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// Expired reports whether the link's expiry, if any, has passed.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// LimitReached reports whether the configured click limit, if any, is used up.
// Independent of Active: a capped link stays capped even when re-enabled.
func (l *Link) LimitReached() bool {
	return l.ClickLimit != nil && *l.ClickLimit > 0 && l.ClickCount >= *l.ClickLimit
}
