package config

import (
	"time"
)

type Config struct {
	Queue          QueueConfig          `mapstructure:"queue"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Masking        MaskingConfig        `mapstructure:"masking"`
	Transform      TransformConfig      `mapstructure:"transform"`
	Broker         BrokerConfig         `mapstructure:"broker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type QueueConfig struct {
	Type            string        `mapstructure:"type"`
	EndpointURL     string        `mapstructure:"endpoint_url"`
	QueueName       string        `mapstructure:"queue_name"`
	Region          string        `mapstructure:"region"`
	WaitTimeSeconds int           `mapstructure:"wait_time_seconds"`
	MaxMessages     int           `mapstructure:"max_messages"`
	RequestSlack    time.Duration `mapstructure:"request_slack"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
}

// QueueURL is the address every receive call is issued against.
func (c QueueConfig) QueueURL() string {
	return c.EndpointURL + "/" + c.QueueName
}

type DatabaseConfig struct {
	Driver              string        `mapstructure:"driver"`
	Username            string        `mapstructure:"username"`
	Password            string        `mapstructure:"password"`
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	Database            string        `mapstructure:"database"`
	SSLMode             string        `mapstructure:"sslmode"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout        time.Duration `mapstructure:"query_timeout"`
	MaxInsertsPerSecond float64       `mapstructure:"max_inserts_per_second"`
	RunMigrations       bool          `mapstructure:"run_migrations"`
	Retry               RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type MaskingConfig struct {
	HashAlgorithm string `mapstructure:"hash_algorithm"`
}

type TransformConfig struct {
	DefaultLocale string `mapstructure:"default_locale"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	RejectTopic    string        `mapstructure:"reject_topic"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}
