package models

import "github.com/pkg/errors"

// ErrorKind is the stable, wire-visible error taxonomy from §7. Values are
// carried verbatim in HTTP/WS payloads, never translated to free text.
type ErrorKind string

const (
	ErrValidation           ErrorKind = "VALIDATION_ERROR"
	ErrUnauthorized         ErrorKind = "UNAUTHORIZED"
	ErrGateFail             ErrorKind = "GATE_FAIL"
	ErrMapperFailed         ErrorKind = "MAPPER_FAILED"
	ErrProviderFailed       ErrorKind = "PROVIDER_FAILED"
	ErrSearchFailed         ErrorKind = "SEARCH_FAILED"
	ErrStaleRunning         ErrorKind = "STALE_RUNNING"
	ErrResultMissing        ErrorKind = "RESULT_MISSING"
	ErrWSTicketRedisUnavail ErrorKind = "WS_TICKET_REDIS_UNAVAILABLE"
)

// StageError is the sum-type stage result: a typed error carrying its Kind
// so callers use errors.Is/errors.As instead of string matching, and a
// Retriable flag set by the stage that produced it.
type StageError struct {
	Kind      ErrorKind
	Message   string
	Route     string
	Retriable bool
	cause     error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains.
func (e *StageError) Unwrap() error { return e.cause }

// NewStageError builds a StageError wrapping cause with github.com/pkg/errors
// so stack traces survive across stage boundaries.
func NewStageError(kind ErrorKind, message string, cause error) *StageError {
	var wrapped error
	if cause != nil {
		wrapped = errors.Wrap(cause, message)
	}
	return &StageError{Kind: kind, Message: message, cause: wrapped}
}

// AsStageError extracts a *StageError from an error chain, synthesising a
// SEARCH_FAILED wrapper when the error carries no more specific kind.
func AsStageError(err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{Kind: ErrSearchFailed, Message: err.Error(), cause: err}
}
