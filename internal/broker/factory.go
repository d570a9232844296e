package broker

import (
	"fmt"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
)

// NewProducer returns nil and no error when no broker is configured.
func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case constants.BrokerTypeNone:
		return nil, nil
	case constants.BrokerTypeKafka:
		return NewKafkaProducer(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}

func NewRejectPublisher(cfg config.BrokerConfig, log logger.Logger) (*RejectPublisher, error) {
	producer, err := NewProducer(cfg, log)
	if err != nil {
		return nil, err
	}
	if producer == nil {
		return nil, nil
	}
	return NewRejectPublisherWithProducer(producer, cfg.Kafka.RejectTopic, cfg.Kafka.PublishTimeout, log), nil
}
