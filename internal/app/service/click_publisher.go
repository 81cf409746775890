package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shortyhq/shorty/internal/app/model"
)

// ClickMeta is the request-scoped context of one resolution. Addr is the
// raw client address; it is hashed before the event leaves this process.
type ClickMeta struct {
	Referrer  string
	UserAgent string
	Country   string
	Addr      string
}

// ClickPublisher publishes click events to NATS JetStream. Publishing is
// best-effort relative to the redirect: failures are logged by the caller
// and never abort the response.
type ClickPublisher struct {
	js nats.JetStreamContext
}

// NewClickPublisher creates a new click event publisher.
func NewClickPublisher(js nats.JetStreamContext) *ClickPublisher {
	return &ClickPublisher{js: js}
}

// Publish emits a click event for the given link.
func (p *ClickPublisher) Publish(linkID string, meta ClickMeta) error {
	event := model.ClickEvent{
		ID:         uuid.New().String(),
		LinkID:     linkID,
		Referrer:   meta.Referrer,
		UserAgent:  meta.UserAgent,
		Country:    meta.Country,
		AddrHash:   hashAddr(meta.Addr, addrHashLenClick),
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ClickStreamSubject, data)
	return err
}
