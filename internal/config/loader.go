package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"loginetl/internal/constants"
)

// FlagKeys maps command-line flag names onto config keys. Flags win over the
// file and the environment when set explicitly.
var FlagKeys = map[string]string{
	"endpoint-url": "queue.endpoint_url",
	"queue-name":   "queue.queue_name",
	"wait-time":    "queue.wait_time_seconds",
	"max-messages": "queue.max_messages",
	"log-level":    "logging.level",
}

// Load reads configFile once and returns the immutable run configuration.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	return load(configFile, flags, ValidateStatic)
}

// LoadDatabaseOnly is Load for commands that never touch the queue.
func LoadDatabaseOnly(configFile string, flags *pflag.FlagSet) (*Config, error) {
	return load(configFile, flags, func(cfg *Config) error {
		return ValidateDatabase(cfg.Database)
	})
}

func load(configFile string, flags *pflag.FlagSet, validate func(*Config) error) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)
	applyDriverDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("queue.type", constants.QueueTypeSQS)
	v.SetDefault("queue.region", constants.DefaultAWSRegion)
	v.SetDefault("queue.wait_time_seconds", constants.DefaultWaitTimeSeconds)
	v.SetDefault("queue.max_messages", constants.DefaultMaxMessages)
	v.SetDefault("queue.request_slack", constants.DefaultRequestSlack)

	v.SetDefault("database.driver", constants.DriverPostgres)
	v.SetDefault("database.connect_timeout", constants.DefaultConnectTimeout)
	v.SetDefault("database.query_timeout", constants.DefaultQueryTimeout)
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.initial_interval", "1s")
	v.SetDefault("database.retry.max_interval", "10s")
	v.SetDefault("database.retry.multiplier", 2.0)

	v.SetDefault("masking.hash_algorithm", constants.HashSHA256)
	v.SetDefault("transform.default_locale", constants.DefaultLocale)

	v.SetDefault("broker.kafka.publish_timeout", constants.DefaultPublishTimeout)

	v.SetDefault("metrics.job", constants.DefaultMetricsJob)
	v.SetDefault("logging.level", "info")
	v.SetDefault("tracing.service_name", constants.ServiceName)
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("queue.endpoint_url", "QUEUE_ENDPOINT_URL")
	v.BindEnv("queue.queue_name", "QUEUE_QUEUE_NAME")
	v.BindEnv("queue.region", "QUEUE_REGION", "AWS_REGION")
	v.BindEnv("queue.access_key_id", "QUEUE_ACCESS_KEY_ID")
	v.BindEnv("queue.secret_access_key", "QUEUE_SECRET_ACCESS_KEY")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.username", "DATABASE_USERNAME")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.database", "DATABASE_DATABASE")
	v.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	v.BindEnv("broker.type", "BROKER_TYPE")
	v.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	v.BindEnv("broker.kafka.reject_topic", "BROKER_KAFKA_REJECT_TOPIC")

	v.BindEnv("metrics.pushgateway_url", "METRICS_PUSHGATEWAY_URL")

	v.BindEnv("logging.level", "LOGGING_LEVEL")

	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	v.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if brokersEnv := v.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}

func applyDriverDefaults(cfg *Config) {
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.Port == 0 {
		switch cfg.Database.Driver {
		case constants.DriverMySQL:
			cfg.Database.Port = constants.DefaultMySQLPort
		default:
			cfg.Database.Port = constants.DefaultPostgresPort
		}
	}
	if cfg.Database.Driver == constants.DriverPostgres && cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	cfg.Queue.EndpointURL = strings.TrimRight(cfg.Queue.EndpointURL, "/")
	cfg.Masking.HashAlgorithm = strings.ToLower(cfg.Masking.HashAlgorithm)
}
