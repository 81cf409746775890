package model

import "time"

// Audit actions recorded for link mutations.
const (
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionActivate   = "activate"
	AuditActionDeactivate = "deactivate"
	AuditActionDelete     = "delete"
)

// AuditEntry is an append-only record of a link mutation.
type AuditEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LinkID    string    `json:"link_id" gorm:"type:uuid;not null;index"`
	ActorID   string    `json:"actor_id" gorm:"type:uuid;not null;index"`
	Action    string    `json:"action" gorm:"size:16;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
