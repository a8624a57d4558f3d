package study

import "errors"

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorIO           ErrorCode = "io"
)

// ServiceError is a kind-coded error for the non-validation failure
// categories: rejected participant codes and sink write failures.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

// NewIOError wraps a sink failure so callers can tell it apart from
// participant mistakes while keeping the cause reachable with errors.Is.
func NewIOError(msg string, err error) error {
	return &ServiceError{Code: ErrorIO, Message: msg, Err: err}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
