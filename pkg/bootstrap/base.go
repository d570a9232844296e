package bootstrap

import (
	"context"
	"fmt"

	"loginetl/internal/broker"
	"loginetl/internal/config"
	"loginetl/internal/logger"
	"loginetl/internal/queue"
)

type Base struct {
	Config  *config.Config
	Logger  logger.Logger
	Queue   queue.Client
	Rejects *broker.RejectPublisher
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

func (b *Base) InitQueue(ctx context.Context) error {
	client, err := queue.NewClient(ctx, b.Config.Queue, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create queue client: %w", err)
	}
	b.Queue = client
	return nil
}

// InitBroker sets up the reject publisher. Rejects stays nil when no broker
// is configured.
func (b *Base) InitBroker() error {
	publisher, err := broker.NewRejectPublisher(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create reject publisher: %w", err)
	}
	b.Rejects = publisher
	return nil
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	var errs []error

	if b.Rejects != nil {
		if err := b.Rejects.Close(); err != nil {
			errs = append(errs, fmt.Errorf("reject publisher close error: %w", err))
		}
	}

	if b.Queue != nil {
		if err := b.Queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("queue close error: %w", err))
		}
	}

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Debug("Resources released")
	return nil
}
