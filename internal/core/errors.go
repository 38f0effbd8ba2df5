package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeValidation   = "validation_error"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodePersistence  = "persistence_error"
	ErrCodeBadRequest   = "bad_request"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failed")
)

// CoreError wraps a code and human-readable message.
// Message is safe to show to clients; Err carries the taxonomy sentinel.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func coreError(code, msg string, err error) *CoreError {
	return &CoreError{Code: code, Message: msg, Err: err}
}

func validationError(msg string) *CoreError {
	return coreError(ErrCodeValidation, msg, ErrValidation)
}

func rateLimitError(msg string) *CoreError {
	return coreError(ErrCodeRateLimited, msg, ErrRateLimited)
}

// authorizationError is the single response for a wrong token and an
// unconfigured secret, so callers cannot tell the two apart.
func authorizationError() *CoreError {
	return coreError(ErrCodeUnauthorized, "Unauthorized.", ErrUnauthorized)
}

func persistenceError(msg string, cause error) *CoreError {
	return coreError(ErrCodePersistence, msg, errors.Join(ErrPersistence, cause))
}
