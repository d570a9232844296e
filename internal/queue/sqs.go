package queue

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/errors"
	"loginetl/pkg/metrics"
	"loginetl/pkg/models"
)

// ReceiveAPI is the subset of the SQS client used here.
type ReceiveAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

type SQSClient struct {
	api      ReceiveAPI
	queueURL string
	slack    time.Duration
	logger   logger.Logger
}

func NewSQSClient(ctx context.Context, cfg config.QueueConfig, log logger.Logger) (*SQSClient, error) {
	region := cfg.Region
	if region == "" {
		region = constants.DefaultAWSRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.ErrExtract.WithCause(err).WithMessage("failed to load aws configuration")
	}

	api := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		// Fetch is a single receive; a failed poll is reported, not replayed.
		o.Retryer = aws.NopRetryer{}
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})

	return NewSQSClientWithAPI(api, cfg, log), nil
}

func NewSQSClientWithAPI(api ReceiveAPI, cfg config.QueueConfig, log logger.Logger) *SQSClient {
	slack := cfg.RequestSlack
	if slack <= 0 {
		slack = constants.DefaultRequestSlack
	}
	return &SQSClient{
		api:      api,
		queueURL: cfg.QueueURL(),
		slack:    slack,
		logger:   log,
	}
}

// Fetch issues exactly one ReceiveMessage call. The call is bounded by the
// long-poll wait plus the configured slack.
func (c *SQSClient) Fetch(ctx context.Context, maxMessages, waitTimeSeconds int) ([]models.RawMessage, error) {
	if maxMessages <= 0 {
		return nil, errors.ErrExtract.WithMessage("max messages must be positive")
	}
	if waitTimeSeconds < 0 {
		return nil, errors.ErrExtract.WithMessage("wait time must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(waitTimeSeconds)*time.Second+c.slack)
	defer cancel()

	start := time.Now()
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitTimeSeconds),
	})
	if err != nil {
		return nil, errors.ErrExtract.WithCause(err).WithDetail("queue_url", c.queueURL)
	}

	messages := make([]models.RawMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, models.RawMessage{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}

	metrics.MessagesExtractedTotal.Add(float64(len(messages)))
	c.logger.DebugwCtx(ctx, "Received messages",
		"queue_url", c.queueURL,
		"count", len(messages),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return messages, nil
}

func (c *SQSClient) Ping(ctx context.Context) error {
	_, err := c.api.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(c.queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return errors.ErrExtract.WithCause(err).WithDetail("queue_url", c.queueURL)
	}
	return nil
}

func (c *SQSClient) Close() error {
	return nil
}
