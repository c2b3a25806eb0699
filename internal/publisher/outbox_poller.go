package publisher

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/orders"
)

// EventSource is the outbox side of orders.Repository.
type EventSource interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*orders.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type OutboxPoller struct {
	eventTick time.Duration
	batch     int
	source    EventSource
	publisher Publisher
	log       logrus.FieldLogger
}

func NewOutboxPoller(source EventSource, publisher Publisher, log logrus.FieldLogger) *OutboxPoller {
	return &OutboxPoller{
		eventTick: time.Second,
		batch:     100,
		source:    source,
		publisher: publisher,
		log:       log,
	}
}

// Run publishes pending events every tick until ctx is done.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.eventTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.source.GetUnprocessedEvents(ctx, p.batch)
	if err != nil {
		p.log.WithError(err).Warn("failed to fetch outbox events")
		return
	}

	for _, event := range events {
		log := p.log.WithFields(logrus.Fields{"event_id": event.ID, "order_id": event.AggregateID})
		if err := p.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).Warn("failed to publish event")
			continue
		}
		if err := p.source.MarkEventAsProcessed(ctx, event.ID); err != nil {
			log.WithError(err).Warn("failed to mark event as processed")
			continue
		}
		log.Debug("event published")
	}
}
