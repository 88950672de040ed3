package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NewConfigurationError("area_m2", "panel %q has non-positive area", "X")
	wrapped := fmt.Errorf("load catalog: %w", err)

	if !stderrors.Is(wrapped, ErrConfiguration) {
		t.Fatal("expected wrapped error to match ErrConfiguration")
	}
	if stderrors.Is(wrapped, ErrInputOutOfRange) {
		t.Fatal("configuration error must not match ErrInputOutOfRange")
	}
}

func TestErrorMessageIncludesFieldAndCause(t *testing.T) {
	cause := stderrors.New("timeout")
	err := NewExternalDataUnavailableError("PVGIS", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected Unwrap to expose the cause")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("missing cause in message: %s", err.Error())
	}

	in := NewInputOutOfRangeError("roof_area_m2", "must be between %d and %d", 10, 500)
	if !strings.Contains(in.Error(), "field: roof_area_m2") {
		t.Fatalf("missing field in message: %s", in.Error())
	}
	if in.Severity != SeverityError {
		t.Fatalf("severity = %s, want error", in.Severity)
	}
}

func TestSeverityMarshalText(t *testing.T) {
	b, _ := SeverityWarning.MarshalText()
	if string(b) != "warning" {
		t.Fatalf("got %q", b)
	}
}
