package constants

import "time"

const (
	ServiceName = "loginetl"
)

const (
	QueueTypeSQS           = "sqs"
	DefaultWaitTimeSeconds = 10
	DefaultMaxMessages     = 10
	MaxSQSMessages         = 10
	MaxSQSWaitTimeSeconds  = 20
	DefaultRequestSlack    = 5 * time.Second
	DefaultAWSRegion       = "us-east-1"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	DefaultPostgresPort   = 5432
	DefaultMySQLPort      = 3306
	DefaultConnectTimeout = 10 * time.Second
	DefaultQueryTimeout   = 5 * time.Second
)

const (
	TargetTable = "user_logins"
	DateLayout  = "2006-01-02"
)

const (
	HashSHA256 = "sha256"
	HashSHA512 = "sha512"
)

// DefaultLocale is written when an event carries no locale.
const DefaultLocale = "None"

const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

const (
	BrokerTypeNone  = ""
	BrokerTypeKafka = "kafka"

	KafkaBatchTimeout     = 10 * time.Millisecond
	KafkaWriteTimeout     = 10 * time.Second
	DefaultPublishTimeout = 2 * time.Second
)

const (
	DefaultMetricsJob = "loginetl"
	PushTimeout       = 5 * time.Second
	ShutdownTimeout   = 5 * time.Second
	HealthTimeout     = 5 * time.Second
)
