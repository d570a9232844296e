package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"loginetl/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestSugaredLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)
	log.SetServiceName("loginetl")

	ctx := logging.WithRunID(context.Background(), "run-42")
	ctx = logging.WithMessageID(ctx, "m-1")
	log.WarnwCtx(ctx, "Skipping message", "reason", "missing ip")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-42", fields["run_id"])
	assert.Equal(t, "m-1", fields["message_id"])
	assert.Equal(t, "loginetl", fields["service_name"])
	assert.Equal(t, "missing ip", fields["reason"])
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.InfowCtx(context.Background(), "nothing")
	assert.NoError(t, log.Sync())
}
