package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a skuloc error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrInputUnavailable ErrorCode = "INPUT_UNAVAILABLE" // 404
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrInternal         ErrorCode = "INTERNAL"          // 500
	ErrSinkWriteFailed  ErrorCode = "SINK_WRITE_FAILED" // 502
)

// SkulocError represents a structured error with code, status, and details.
type SkulocError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SkulocError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SkulocError {
	return &SkulocError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a SKU with no stored location.
func NewNotFound(sku string) *SkulocError {
	return &SkulocError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("sku not found: %s", sku),
		Details: map[string]any{"sku": sku},
	}
}

// NewInputUnavailable creates a 404 error for an input file that does not
// exist or cannot be opened. No extraction happens after this error.
func NewInputUnavailable(path string, cause error) *SkulocError {
	msg := fmt.Sprintf("input unavailable: %s", path)
	if cause != nil {
		msg = fmt.Sprintf("input unavailable: %s: %v", path, cause)
	}
	return &SkulocError{
		Code:    ErrInputUnavailable,
		Status:  404,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewSinkWriteFailed creates a 502 error for a failed write to an output sink.
func NewSinkWriteFailed(sink, target string, cause error) *SkulocError {
	msg := fmt.Sprintf("%s sink write failed", sink)
	if cause != nil {
		msg = fmt.Sprintf("%s sink write failed: %v", sink, cause)
	}
	return &SkulocError{
		Code:    ErrSinkWriteFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"sink": sink, "target": target},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled via context.
func NewCancelled(op string) *SkulocError {
	return &SkulocError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SkulocError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SkulocError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a SkulocError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SkulocError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// As is errors.As from the standard library, re-exported so callers need
// only this package.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
