package queue

import (
	"context"
	"fmt"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
)

func NewClient(ctx context.Context, cfg config.QueueConfig, log logger.Logger) (Client, error) {
	switch cfg.Type {
	case constants.QueueTypeSQS, "":
		return NewSQSClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown queue type: %s", cfg.Type)
	}
}
