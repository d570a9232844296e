package broker

import (
	"context"
	"time"

	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/logging"
	"loginetl/pkg/metrics"
	"loginetl/pkg/models"
)

// RejectPublisher forwards reject events to a topic on a best-effort basis.
// Each publish is bounded by timeout so a dead broker cannot stall the run.
// A nil *RejectPublisher is valid and drops every event.
type RejectPublisher struct {
	producer Producer
	topic    string
	timeout  time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func NewRejectPublisherWithProducer(producer Producer, topic string, timeout time.Duration, log logger.Logger) *RejectPublisher {
	if timeout <= 0 {
		timeout = constants.DefaultPublishTimeout
	}
	return &RejectPublisher{
		producer: producer,
		topic:    topic,
		timeout:  timeout,
		logger:   log,
		now:      time.Now,
	}
}

func (p *RejectPublisher) Reject(ctx context.Context, event models.RejectEvent) {
	if p == nil {
		return
	}

	if event.RunID == "" {
		event.RunID = logging.GetRunID(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.producer.Publish(ctx, p.topic, event); err != nil {
		metrics.IncRejectPublished(event.Stage, "error")
		p.logger.WarnwCtx(ctx, "Failed to publish reject event",
			"error", err,
			"topic", p.topic,
			"message_id", event.MessageID,
		)
		return
	}
	metrics.IncRejectPublished(event.Stage, "ok")
}

func (p *RejectPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
