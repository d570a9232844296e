package logging

import (
	"context"
)

const (
	RunIDKey       = "run_id"
	MessageIDKey   = "message_id"
	StageKey       = "stage"
	ServiceNameKey = "service_name"
)

type ctxKey string

func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ctxKey(RunIDKey), runID)
}

func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, ctxKey(MessageIDKey), messageID)
}

func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKey(StageKey), stage)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ctxKey(ServiceNameKey), serviceName)
}

func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

func GetMessageID(ctx context.Context) string {
	return getString(ctx, MessageIDKey)
}

func GetStage(ctx context.Context) string {
	return getString(ctx, StageKey)
}

func GetServiceName(ctx context.Context) string {
	return getString(ctx, ServiceNameKey)
}

func getString(ctx context.Context, key string) string {
	if v, ok := ctx.Value(ctxKey(key)).(string); ok {
		return v
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, RunIDKey, runID)
	}

	if stage := GetStage(ctx); stage != "" {
		fields = append(fields, StageKey, stage)
	}

	if messageID := GetMessageID(ctx); messageID != "" {
		fields = append(fields, MessageIDKey, messageID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, ServiceNameKey, serviceName)
	}

	return fields
}
