package model

import "time"

// ClickEvent is one resolution of a link, recorded for analytics.
// Write-only: events are never updated after insert. AddrHash is a short
// hash prefix of the client address, never the raw address.
type ClickEvent struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	LinkID     string    `json:"link_id" gorm:"type:uuid;not null;index"`
	Referrer   string    `json:"referrer" gorm:"type:text"`
	UserAgent  string    `json:"user_agent" gorm:"type:text"`
	Country    string    `json:"country" gorm:"size:8"`
	AddrHash   string    `json:"addr_hash" gorm:"size:16"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-recorder"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
