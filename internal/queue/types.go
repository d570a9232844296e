package queue

import (
	"context"

	"loginetl/pkg/models"
)

// Client is a one-shot batch reader. Fetch never acknowledges or deletes
// what it returns.
type Client interface {
	Fetch(ctx context.Context, maxMessages, waitTimeSeconds int) ([]models.RawMessage, error)
	Ping(ctx context.Context) error
	Close() error
}
