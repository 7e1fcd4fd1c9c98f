package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies every failure the pipeline can report.
type Kind string

const (
	KindInputNotFound        Kind = "INPUT_NOT_FOUND"
	KindUnsupportedFormat    Kind = "UNSUPPORTED_FORMAT"
	KindMissingDependency    Kind = "MISSING_DEPENDENCY"
	KindArtifactMissing      Kind = "ARTIFACT_MISSING"
	KindCriticalMissingValue Kind = "CRITICAL_MISSING_VALUE"
	KindGenericFailure       Kind = "GENERIC_FAILURE"
)

// AppError represents application-specific errors
type AppError struct {
	Code    Kind
	Message string
	// Field names the feature involved, when there is one.
	Field string
	Cause error
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

// Is matches any AppError of the same kind, so the sentinels below work with
// errors.Is regardless of message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// Kind sentinels for errors.Is.
var (
	ErrInputNotFound        = &AppError{Code: KindInputNotFound}
	ErrUnsupportedFormat    = &AppError{Code: KindUnsupportedFormat}
	ErrMissingDependency    = &AppError{Code: KindMissingDependency}
	ErrArtifactMissing      = &AppError{Code: KindArtifactMissing}
	ErrCriticalMissingValue = &AppError{Code: KindCriticalMissingValue}
	ErrGenericFailure       = &AppError{Code: KindGenericFailure}
)

// Error constructors
func NewAppError(code Kind, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// MissingValueError reports a feature that could neither be extracted nor imputed.
func MissingValueError(feature string) *AppError {
	return &AppError{
		Code:    KindCriticalMissingValue,
		Message: fmt.Sprintf("Critical missing value for '%s' and no median available in dataset.", feature),
		Field:   feature,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf returns the kind of the outermost AppError in err's chain.
// Errors that carry no kind are generic failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return KindGenericFailure
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		if ae.Cause != nil && ae.Code == KindGenericFailure {
			return fmt.Sprintf("%s: %v", ae.Message, ae.Cause)
		}
		return ae.Message
	}
	return err.Error()
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

// StatusFromError maps a pipeline error to a gRPC status.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	msg := MessageOf(err)
	switch KindOf(err) {
	case KindInputNotFound:
		return status.Error(codes.NotFound, msg)
	case KindUnsupportedFormat:
		return status.Error(codes.InvalidArgument, msg)
	case KindMissingDependency, KindArtifactMissing:
		return status.Error(codes.Unavailable, msg)
	case KindCriticalMissingValue:
		return status.Error(codes.FailedPrecondition, msg)
	default:
		return InternalError(msg)
	}
}
