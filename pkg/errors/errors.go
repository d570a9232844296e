package errors

import (
	"errors"
	"fmt"
)

const (
	ExitOK      = 0
	ExitFatal   = 1
	ExitPartial = 2
)

var (
	ErrExtract       = NewError("EXTRACT_ERROR", "failed to receive messages from queue").AsFatal()
	ErrEmptyBatch    = NewError("EMPTY_BATCH", "batch is empty").AsFatal()
	ErrSkippedRecord = NewError("SKIPPED_RECORD", "record skipped")
	ErrInsert        = NewError("INSERT_ERROR", "failed to insert row")
	ErrPartialLoad   = NewError("PARTIAL_LOAD", "one or more rows failed to load")
	ErrConfig        = NewError("CONFIG_ERROR", "invalid configuration").AsFatal()
	ErrConnect       = NewError("CONNECT_ERROR", "failed to connect to database").AsFatal()
)

type FatalError interface {
	error
	IsFatal() bool
}

type Error struct {
	Code    string
	Message string
	Details map[string]interface{}
	Cause   error
	fatal   *bool
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that errors.Is(err, ErrEmptyBatch) holds for any
// copy produced by WithCause or WithDetail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) IsFatal() bool {
	if e.fatal != nil {
		return *e.fatal
	}

	if e.Cause != nil {
		var fatalErr FatalError
		if errors.As(e.Cause, &fatalErr) {
			return fatalErr.IsFatal()
		}
	}

	return false
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	err.Details = details
	return &err
}

func (e *Error) WithMessage(message string) *Error {
	return e.WithDetail("message", message)
}

func (e *Error) AsFatal() *Error {
	err := *e
	fatal := true
	err.fatal = &fatal
	return &err
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func IsFatal(err error) bool {
	var fatalErr FatalError
	if errors.As(err, &fatalErr) {
		return fatalErr.IsFatal()
	}
	return false
}

func IsEmptyBatch(err error) bool {
	return errors.Is(err, ErrEmptyBatch)
}

func IsSkipped(err error) bool {
	return errors.Is(err, ErrSkippedRecord)
}

func IsPartialLoad(err error) bool {
	return errors.Is(err, ErrPartialLoad)
}

// Code returns the code of the first *Error in the chain, or "" when err
// carries none.
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func ToExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsPartialLoad(err) {
		return ExitPartial
	}
	return ExitFatal
}

func ToErrorFields(err error) []interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return []interface{}{"error", err}
	}

	fields := []interface{}{
		"error", appErr.Error(),
		"error_code", appErr.Code,
		"fatal", appErr.IsFatal(),
	}
	for k, v := range appErr.Details {
		if k == "message" || k == "stack_trace" {
			continue
		}
		fields = append(fields, k, v)
	}
	return fields
}
