package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shortyhq/shorty/internal/app/model"
	"github.com/shortyhq/shorty/internal/app/repository"
	infraprom "github.com/shortyhq/shorty/internal/infra/prometheus"
	"go.uber.org/zap"
)

// ClickConsumer drains click events from NATS JetStream into Postgres.
type ClickConsumer struct {
	js      nats.JetStreamContext
	logger  *zap.Logger
	repo    repository.ClickEventRepository
	metrics *infraprom.Metrics
}

// NewClickConsumer creates a new click event consumer.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, repo repository.ClickEventRepository, metrics *infraprom.Metrics) *ClickConsumer {
	return &ClickConsumer{js: js, logger: logger, repo: repo, metrics: metrics}
}

// Start ensures the stream and durable consumer exist, then begins
// consuming in the background.
func (c *ClickConsumer) Start() error {
	if _, err := c.js.StreamInfo(model.ClickStreamName); err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	if _, err := c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName); err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch click events", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ClickEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal click event", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.Create(ctx, &event); err != nil {
				c.logger.Error("failed to store click event",
					zap.String("id", event.ID),
					zap.String("link_id", event.LinkID),
					zap.Error(err))
				msg.Nak()
				continue
			}

			if c.metrics != nil {
				c.metrics.ClicksRecorded.Inc()
			}

			c.logger.Debug("click event stored",
				zap.String("id", event.ID),
				zap.String("link_id", event.LinkID),
				zap.Time("occurred_at", event.OccurredAt),
			)

			msg.Ack()
		}
	}
}
