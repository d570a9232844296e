package broker

import (
	"context"

	"loginetl/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, event models.RejectEvent) error
	Close() error
}

// Rejecter receives records that did not reach the table. Implementations
// must not fail the caller.
type Rejecter interface {
	Reject(ctx context.Context, event models.RejectEvent)
}
