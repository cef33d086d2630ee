package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestValidationError(t *testing.T) {
	t.Run("formats field and value", func(t *testing.T) {
		err := NewValidationError("unknown sort key").WithField("primary_key").WithValue("color")
		want := "validation error [field=primary_key, value=color]: unknown sort key"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("formats without context", func(t *testing.T) {
		err := NewValidationError("bad input")
		if err.Error() != "validation error: bad input" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("matches its cause and ErrInvalidInput", func(t *testing.T) {
		err := NewValidationError("unknown sort key").WithCause(ErrInvalidSortKey)
		if !Is(err, ErrInvalidSortKey) {
			t.Error("expected errors.Is(err, ErrInvalidSortKey)")
		}
		if !Is(err, ErrInvalidInput) {
			t.Error("expected errors.Is(err, ErrInvalidInput)")
		}
		if Is(err, ErrUnsupportedFormat) {
			t.Error("did not expect errors.Is(err, ErrUnsupportedFormat)")
		}
	})

	t.Run("survives wrapping", func(t *testing.T) {
		inner := NewValidationError("bad format").WithCause(ErrUnsupportedFormat)
		wrapped := fmt.Errorf("export failed: %w", inner)

		var ve *ValidationError
		if !As(wrapped, &ve) {
			t.Fatal("expected errors.As to find ValidationError")
		}
		if !Is(wrapped, ErrUnsupportedFormat) {
			t.Error("expected wrapped error to match ErrUnsupportedFormat")
		}
	})

	t.Run("severity is warning", func(t *testing.T) {
		if got := NewValidationError("x").Severity(); got != SeverityWarning {
			t.Errorf("Severity() = %v, want %v", got, SeverityWarning)
		}
	})
}

// -----------------------------------------------------------------------------
// HandlerError Tests
// -----------------------------------------------------------------------------

func TestHandlerError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewHandlerError("file", cause)

	if err.Error() != "handler error [handler=file]: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !Is(err, ErrHandlerFailed) {
		t.Error("expected errors.Is(err, ErrHandlerFailed)")
	}
	if !Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if GetSeverity(err) != SeverityError {
		t.Errorf("GetSeverity() = %v, want %v", GetSeverity(err), SeverityError)
	}
	if IsUsageError(err) {
		t.Error("handler errors are not usage errors")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsUsageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"invalid sort key", ErrInvalidSortKey, true},
		{"wrapped unsupported format", fmt.Errorf("export: %w", ErrUnsupportedFormat), true},
		{"invalid level", ErrInvalidLevel, true},
		{"validation error", NewValidationError("x"), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUsageError(tt.err); got != tt.want {
				t.Errorf("IsUsageError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want %v", got, SeverityDebug)
	}
	if got := GetSeverity(errors.New("plain")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want %v", got, SeverityError)
	}
	wrapped := fmt.Errorf("ctx: %w", NewValidationError("x"))
	if got := GetSeverity(wrapped); got != SeverityWarning {
		t.Errorf("GetSeverity(wrapped validation) = %v, want %v", got, SeverityWarning)
	}
}
