package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a classification could not produce a verdict.
type ErrorKind string

const (
	// ErrorKindSchemaMismatch means the feature vector does not fit the schema.
	ErrorKindSchemaMismatch ErrorKind = "SCHEMA_MISMATCH"

	// ErrorKindInferenceFailure means the model could not score the vector.
	ErrorKindInferenceFailure ErrorKind = "INFERENCE_FAILURE"

	// ErrorKindStartupFailure means the classifier could not be made ready.
	ErrorKindStartupFailure ErrorKind = "STARTUP_FAILURE"
)

// Sentinels for errors.Is checks against a *ClassificationError.
var (
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrInferenceFailure = errors.New("inference failure")
	ErrStartupFailure   = errors.New("startup failure")
)

func (k ErrorKind) String() string { return string(k) }

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrorKindSchemaMismatch:
		return ErrSchemaMismatch
	case ErrorKindInferenceFailure:
		return ErrInferenceFailure
	default:
		return ErrStartupFailure
	}
}

// ClassificationError is the structured error returned by the classifier.
// Expected and Actual are only meaningful for ErrorKindSchemaMismatch.
type ClassificationError struct {
	Kind     ErrorKind
	Expected int
	Actual   int
	Cause    string
	Err      error
}

// NewSchemaMismatch reports a feature vector of the wrong length.
func NewSchemaMismatch(expected, actual int) *ClassificationError {
	return &ClassificationError{
		Kind:     ErrorKindSchemaMismatch,
		Expected: expected,
		Actual:   actual,
		Cause:    fmt.Sprintf("expected %d features, got %d", expected, actual),
	}
}

// NewInferenceFailure wraps an error raised while invoking the model.
func NewInferenceFailure(err error) *ClassificationError {
	return &ClassificationError{
		Kind:  ErrorKindInferenceFailure,
		Cause: causeOf(err),
		Err:   err,
	}
}

// NewStartupFailure wraps an error that prevents the classifier from becoming ready.
func NewStartupFailure(err error) *ClassificationError {
	return &ClassificationError{
		Kind:  ErrorKindStartupFailure,
		Cause: causeOf(err),
		Err:   err,
	}
}

func causeOf(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func (e *ClassificationError) Error() string {
	switch e.Kind {
	case ErrorKindSchemaMismatch:
		return "schema mismatch: " + e.Cause
	case ErrorKindInferenceFailure:
		return "inference failure: " + e.Cause
	default:
		return "startup failure: " + e.Cause
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ClassificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the ErrorKind of err, or "" if err is not a ClassificationError.
func KindOf(err error) ErrorKind {
	var ce *ClassificationError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsClientError reports whether err originates from the caller's input.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case ErrorKindSchemaMismatch, ErrorKindInferenceFailure:
		return true
	default:
		return false
	}
}
