// Package mlerror defines the error taxonomy shared by the inference engine,
// the anomaly detector and the boundary layers that surface them.
package mlerror

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable is returned when inference is requested before a model
// bundle has been loaded. Callers should treat it as retryable.
var ErrServiceUnavailable = errors.New("model not loaded")

// ModelLoadError represents a failure to load or validate a model artifact.
// It is fatal at startup.
type ModelLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load model from %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load model from %s: %s", e.Path, e.Reason)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// InvalidInputError represents a malformed batch. The caller must fix the
// request before resending it.
type InvalidInputError struct {
	Index  int // offending record, -1 when the batch as a whole is invalid
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid input at index %d: field '%s' %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input at index %d: %s", e.Index, e.Reason)
}

// PredictionFailedError wraps an unexpected failure inside vectorization or
// classification.
type PredictionFailedError struct {
	Stage string
	Err   error
}

func (e *PredictionFailedError) Error() string {
	return fmt.Sprintf("prediction failed during %s: %v", e.Stage, e.Err)
}

func (e *PredictionFailedError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request that violates the boundary schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// IsRetryable reports whether err describes a transient condition the caller
// may retry unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsInvalidInput reports whether err is caused by a malformed request.
func IsInvalidInput(err error) bool {
	var invalid *InvalidInputError
	var validation *ValidationError
	return errors.As(err, &invalid) || errors.As(err, &validation)
}
