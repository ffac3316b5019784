// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/arthur-debert/shard/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "shard not found",
			wantStr: "[NOT_FOUND] shard not found",
		},
		{
			name:    "protected_error",
			code:    errors.ErrProtected,
			message: "shard system is protected",
			wantStr: "[PROTECTED] shard system is protected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrInvalidName, "invalid shard name %q", "bad name")
	if err.Message != `invalid shard name "bad name"` {
		t.Errorf("Newf() message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("exit status 1")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrActuator, "brew install failed")

		if err.Code != errors.ErrActuator {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrActuator)
		}

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[ACTUATOR] brew install failed: exit status 1"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrInternal, "internal error")
		if err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "not found").
		WithDetail("shard", "work").
		WithDetail("suggestions", []string{"works"})

	if err.Details["shard"] != "work" {
		t.Errorf("WithDetail() shard = %v, want %v", err.Details["shard"], "work")
	}
	if _, ok := err.Details["suggestions"]; !ok {
		t.Error("WithDetail() suggestions missing")
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotFound, "error 1")
	err2 := errors.New(errors.ErrNotFound, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	if !err1.Is(err2) {
		t.Error("Is() should return true for same code")
	}
	if err1.Is(err3) {
		t.Error("Is() should return false for different codes")
	}
	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should work with ShardError")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrBackup, "backup"), errors.ErrBackup, true},
		{"different_code", errors.New(errors.ErrNotFound, "not found"), errors.ErrInternal, false},
		{"wrapped_error", errors.Wrap(stderrors.New("base"), errors.ErrFilesystem, "denied"), errors.ErrFilesystem, true},
		{"non_shard_error", stderrors.New("standard error"), errors.ErrNotFound, false},
		{"nil_error", nil, errors.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrManifestParse, "bad toml")); got != errors.ErrManifestParse {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v, want UNKNOWN", got)
	}
	if got := errors.GetErrorDetails(stderrors.New("plain")); got != nil {
		t.Errorf("GetErrorDetails() = %v, want nil", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Run("no_failures", func(t *testing.T) {
		if err := errors.Summarize(errors.ErrActuator, "operations", nil); err != nil {
			t.Errorf("Summarize(nil) = %v, want nil", err)
		}
	})

	t.Run("counts_and_items", func(t *testing.T) {
		cause := stderrors.New("exit status 1")
		err := errors.Summarize(errors.ErrActuator, "operations", []errors.ItemError{
			{Item: "wget", Op: "install", Err: cause},
			{Item: "homebrew/cask-fonts", Op: "tap", Err: cause},
		})

		if err.Code != errors.ErrActuator {
			t.Errorf("code = %v", err.Code)
		}
		if err.Details["count"] != 2 {
			t.Errorf("count = %v, want 2", err.Details["count"])
		}
		if !strings.Contains(err.Error(), "2 operations failed") {
			t.Errorf("message = %q", err.Error())
		}
		if !strings.Contains(err.Error(), "install wget") {
			t.Errorf("missing per-item message in %q", err.Error())
		}
		if !stderrors.Is(err, cause) {
			t.Error("the cause should be reachable with errors.Is")
		}
	})
}
