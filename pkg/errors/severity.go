// Package errors provides severity-aware error types.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SolarError is a structured error with context.
type SolarError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field,omitempty"`
	Recoverable bool     `json:"recoverable"`
	Err         error    `json:"-"`
}

func (e *SolarError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SolarError) Unwrap() error { return e.Err }

// Is matches on error code so sentinels work with errors.Is.
func (e *SolarError) Is(target error) bool {
	t, ok := target.(*SolarError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Error codes
const (
	ErrCodeConfiguration           = "CONFIGURATION_ERROR"
	ErrCodeExternalDataUnavailable = "EXTERNAL_DATA_UNAVAILABLE"
	ErrCodeInputOutOfRange         = "INPUT_OUT_OF_RANGE"
	ErrCodeDegenerateProjection    = "DEGENERATE_PROJECTION"
)

// Sentinels for errors.Is checks.
var (
	ErrConfiguration           = &SolarError{Code: ErrCodeConfiguration}
	ErrExternalDataUnavailable = &SolarError{Code: ErrCodeExternalDataUnavailable}
	ErrInputOutOfRange         = &SolarError{Code: ErrCodeInputOutOfRange}
	ErrDegenerateProjection    = &SolarError{Code: ErrCodeDegenerateProjection}
)

// NewConfigurationError reports a deployment data bug such as an invalid catalog entry.
func NewConfigurationError(field, format string, args ...any) *SolarError {
	return &SolarError{
		Code:        ErrCodeConfiguration,
		Message:     fmt.Sprintf(format, args...),
		Severity:    SeverityFatal,
		Field:       field,
		Recoverable: false,
	}
}

// NewExternalDataUnavailableError wraps a failed irradiance lookup.
func NewExternalDataUnavailableError(source string, cause error) *SolarError {
	return &SolarError{
		Code:        ErrCodeExternalDataUnavailable,
		Message:     fmt.Sprintf("%s lookup failed", source),
		Severity:    SeverityInfo,
		Recoverable: true,
		Err:         cause,
	}
}

// NewInputOutOfRangeError rejects a user parameter at the boundary.
func NewInputOutOfRangeError(field, format string, args ...any) *SolarError {
	return &SolarError{
		Code:        ErrCodeInputOutOfRange,
		Message:     fmt.Sprintf(format, args...),
		Severity:    SeverityError,
		Field:       field,
		Recoverable: false,
	}
}

// NewDegenerateProjectionError flags production reaching the zero floor.
func NewDegenerateProjectionError(year int, rate float64) *SolarError {
	return &SolarError{
		Code:        ErrCodeDegenerateProjection,
		Message:     fmt.Sprintf("degradation rate %.4f drives production to zero in year %d", rate, year),
		Severity:    SeverityWarning,
		Field:       "degradation_rate",
		Recoverable: true,
	}
}
