package config

import (
	"fmt"
	"net/url"
	"strings"

	"loginetl/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	errors = append(errors, validateQueue(cfg.Queue)...)
	errors = append(errors, validateDatabase(cfg.Database)...)

	if err := validateMasking(cfg.Masking); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateCircuitBreaker(cfg.CircuitBreaker); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

// ValidateDatabase checks only the database section; the migrate command does
// not need a queue.
func ValidateDatabase(cfg DatabaseConfig) error {
	if errs := validateDatabase(cfg); len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}

func validateQueue(cfg QueueConfig) []error {
	var errs []error

	if cfg.Type != constants.QueueTypeSQS {
		errs = append(errs, &ValidationError{
			Field:   "queue.type",
			Message: fmt.Sprintf("unknown queue type: %s (supported: sqs)", cfg.Type),
		})
	}

	if cfg.EndpointURL == "" {
		errs = append(errs, &ValidationError{
			Field:   "queue.endpoint_url",
			Message: "endpoint URL is required",
		})
	} else if u, err := url.Parse(cfg.EndpointURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, &ValidationError{
			Field:   "queue.endpoint_url",
			Message: fmt.Sprintf("endpoint URL must be absolute, got %q", cfg.EndpointURL),
		})
	}

	if cfg.QueueName == "" {
		errs = append(errs, &ValidationError{
			Field:   "queue.queue_name",
			Message: "queue name is required",
		})
	}

	if cfg.MaxMessages < 1 || cfg.MaxMessages > constants.MaxSQSMessages {
		errs = append(errs, &ValidationError{
			Field:   "queue.max_messages",
			Message: fmt.Sprintf("max messages must be between 1 and %d, got %d", constants.MaxSQSMessages, cfg.MaxMessages),
		})
	}

	if cfg.WaitTimeSeconds < 0 || cfg.WaitTimeSeconds > constants.MaxSQSWaitTimeSeconds {
		errs = append(errs, &ValidationError{
			Field:   "queue.wait_time_seconds",
			Message: fmt.Sprintf("wait time must be between 0 and %d seconds, got %d", constants.MaxSQSWaitTimeSeconds, cfg.WaitTimeSeconds),
		})
	}

	if cfg.RequestSlack < 0 {
		errs = append(errs, &ValidationError{
			Field:   "queue.request_slack",
			Message: "request slack must be non-negative",
		})
	}

	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		errs = append(errs, &ValidationError{
			Field:   "queue.access_key_id",
			Message: "access_key_id and secret_access_key must be set together",
		})
	}

	return errs
}

func validateDatabase(cfg DatabaseConfig) []error {
	var errs []error

	required := []struct {
		field string
		value string
	}{
		{"database.username", cfg.Username},
		{"database.password", cfg.Password},
		{"database.host", cfg.Host},
		{"database.database", cfg.Database},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, &ValidationError{
				Field:   r.field,
				Message: "value is required",
			})
		}
	}

	switch cfg.Driver {
	case constants.DriverPostgres, constants.DriverMySQL:
	default:
		errs = append(errs, &ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unknown driver: %s (supported: postgres, mysql)", cfg.Driver),
		})
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, &ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		})
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.Driver == constants.DriverPostgres && cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		errs = append(errs, &ValidationError{
			Field:   "database.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		})
	}

	if cfg.ConnectTimeout <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "database.connect_timeout",
			Message: "connect timeout must be positive",
		})
	}

	if cfg.QueryTimeout <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "database.query_timeout",
			Message: "query timeout must be positive",
		})
	}

	if cfg.MaxInsertsPerSecond < 0 {
		errs = append(errs, &ValidationError{
			Field:   "database.max_inserts_per_second",
			Message: "must be non-negative (0 disables throttling)",
		})
	}

	if err := validateRetry(cfg.Retry); err != nil {
		errs = append(errs, err)
	}

	return errs
}

func validateRetry(cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "database.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.InitialInterval < 0 {
		return &ValidationError{
			Field:   "database.retry.initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.MaxInterval < 0 {
		return &ValidationError{
			Field:   "database.retry.max_interval",
			Message: "max_interval must be non-negative",
		}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   "database.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier <= 0 {
		return &ValidationError{
			Field:   "database.retry.multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateMasking(cfg MaskingConfig) error {
	validAlgorithms := map[string]bool{
		constants.HashSHA256: true, constants.HashSHA512: true,
	}
	if !validAlgorithms[strings.ToLower(cfg.HashAlgorithm)] {
		return &ValidationError{
			Field:   "masking.hash_algorithm",
			Message: fmt.Sprintf("invalid hash algorithm: %s (valid: sha256, sha512)", cfg.HashAlgorithm),
		}
	}
	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case constants.BrokerTypeNone:
		return nil
	case constants.BrokerTypeKafka:
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka, or empty to disable)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.RejectTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.reject_topic",
			Message: "reject topic is required when the kafka broker is enabled",
		}
	}

	return nil
}

func validateCircuitBreaker(cfg CircuitBreakerConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.FailureRatio < 0 || cfg.FailureRatio > 1 {
		return &ValidationError{
			Field:   "circuit_breaker.failure_ratio",
			Message: fmt.Sprintf("failure ratio must be between 0 and 1, got %v", cfg.FailureRatio),
		}
	}
	return nil
}
