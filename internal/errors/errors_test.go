package errors

import (
	"fmt"
	"testing"
)

func TestSkulocError_Error(t *testing.T) {
	err := &SkulocError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "sku not found",
	}

	expected := "NOT_FOUND: sku not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("sku is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "sku is required" {
		t.Errorf("Message = %q, want %q", err.Message, "sku is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("SKU12345")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["sku"] != "SKU12345" {
		t.Errorf("Details[sku] = %v, want %q", err.Details["sku"], "SKU12345")
	}
}

func TestNewInputUnavailable(t *testing.T) {
	err := NewInputUnavailable("/tmp/chat.txt", fmt.Errorf("no such file"))

	if err.Code != ErrInputUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrInputUnavailable)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Message != "input unavailable: /tmp/chat.txt: no such file" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["path"] != "/tmp/chat.txt" {
		t.Errorf("Details[path] = %v, want %q", err.Details["path"], "/tmp/chat.txt")
	}
}

func TestNewInputUnavailable_NilCause(t *testing.T) {
	err := NewInputUnavailable("chat.txt", nil)
	if err.Message != "input unavailable: chat.txt" {
		t.Errorf("Message = %q, want %q", err.Message, "input unavailable: chat.txt")
	}
}

func TestNewSinkWriteFailed(t *testing.T) {
	err := NewSinkWriteFailed("csv", "/tmp/out.csv", fmt.Errorf("disk full"))

	if err.Code != ErrSinkWriteFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrSinkWriteFailed)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Details["sink"] != "csv" || err.Details["target"] != "/tmp/out.csv" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("export")

	if err.Code != ErrCancelled {
		t.Errorf("Code = %q, want %q", err.Code, ErrCancelled)
	}
	if err.Status != 499 {
		t.Errorf("Status = %d, want 499", err.Status)
	}
	if err.Message != "export cancelled" {
		t.Errorf("Message = %q, want %q", err.Message, "export cancelled")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("database connection failed"))

	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "database connection failed" {
		t.Errorf("Message = %q, want %q", err.Message, "database connection failed")
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     ErrorCode
		expected bool
	}{
		{
			name:     "matching code",
			err:      NewNotFound("X"),
			code:     ErrNotFound,
			expected: true,
		},
		{
			name:     "different code",
			err:      NewNotFound("X"),
			code:     ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("lookup: %w", NewNotFound("X")),
			code:     ErrNotFound,
			expected: true,
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("boom"),
			code:     ErrInternal,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}
