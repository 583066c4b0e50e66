package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// PermanentError is a failure that retrying cannot fix: misconfiguration,
// unsupported proof type, rejected credentials, malformed requests or an
// unusable response body.
type PermanentError struct {
	Message string
	Cause   error
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error { return e.Cause }

// TransientError is a failure that may succeed on a later attempt: timeouts,
// connection failures, rate limiting and server-side errors.
type TransientError struct {
	Message string
	Cause   error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error { return e.Cause }

func Permanent(message string, cause error) error {
	return &PermanentError{Message: message, Cause: cause}
}

func Permanentf(format string, args ...any) error {
	return &PermanentError{Message: fmt.Sprintf(format, args...)}
}

func Transient(message string, cause error) error {
	return &TransientError{Message: message, Cause: cause}
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// HTTPStatus maps an error to the status code surfaced by the web layer.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsPermanent(err), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case IsTransient(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToStatus converts an error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case IsPermanent(err), errors.Is(err, ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case IsTransient(err):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}
