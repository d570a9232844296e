package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrExtract.WithCause(cause).WithDetail("queue_url", "http://localhost:4566/q")

	assert.True(t, errors.Is(err, ErrExtract))
	assert.False(t, errors.Is(err, ErrEmptyBatch))
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("extract stage: %w", err)
	assert.True(t, errors.Is(wrapped, ErrExtract))
	assert.Equal(t, "EXTRACT_ERROR", Code(wrapped))
}

func TestError_FatalFlags(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "extract", err: ErrExtract, fatal: true},
		{name: "empty batch", err: ErrEmptyBatch.WithMessage("no records"), fatal: true},
		{name: "skipped record", err: ErrSkippedRecord, fatal: false},
		{name: "insert", err: ErrInsert.WithCause(errors.New("not null")), fatal: false},
		{name: "partial load", err: ErrPartialLoad, fatal: false},
		{name: "plain error", err: errors.New("boom"), fatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrInsert.WithDetail("row", 2)
	assert.Empty(t, ErrInsert.Details)
}

func TestError_MessageOverride(t *testing.T) {
	err := ErrSkippedRecord.WithMessage("missing ip or device_id")
	assert.Equal(t, "SKIPPED_RECORD: missing ip or device_id", err.Error())
}

func TestToExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ToExitCode(nil))
	assert.Equal(t, ExitPartial, ToExitCode(fmt.Errorf("run: %w", ErrPartialLoad)))
	assert.Equal(t, ExitFatal, ToExitCode(ErrEmptyBatch))
	assert.Equal(t, ExitFatal, ToExitCode(errors.New("unknown")))
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil, ErrSkippedRecord))

	err := RecoverPanic("index out of range", ErrSkippedRecord)
	require.Error(t, err)
	assert.True(t, IsSkipped(err))
	assert.False(t, IsFatal(err))

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, true, appErr.Details["panic"])
	assert.NotEmpty(t, appErr.Details["stack_trace"])

	fatal := RecoverPanic(errors.New("boom"), nil)
	assert.True(t, IsFatal(fatal))
}

func TestToErrorFields(t *testing.T) {
	fields := ToErrorFields(ErrInsert.WithCause(errors.New("dup")).WithDetail("row", 2))
	assert.Contains(t, fields, "error_code")
	assert.Contains(t, fields, "INSERT_ERROR")
	assert.Contains(t, fields, "row")

	plain := ToErrorFields(errors.New("x"))
	assert.Len(t, plain, 2)
}
