// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"

	"github.com/invowk/capgate/pkg/types"
)

const (
	// SeverityWarning indicates a recoverable probe problem.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a probe that could not run at all (for example
	// an invalid capability name). It still never aborts resolution.
	SeverityError Severity = "error"
)

const (
	// CodeProbeIOError marks a stat or directory listing that failed for a
	// reason other than the path not existing.
	CodeProbeIOError DiagnosticCode = "probe_io_error"
	// CodeInvalidName marks a capability name that cannot be probed safely.
	CodeInvalidName DiagnosticCode = "invalid_capability_name"
)

var (
	// ErrInvalidSeverity is the sentinel error wrapped by InvalidSeverityError.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrInvalidDiagnosticCode is the sentinel error wrapped by InvalidDiagnosticCodeError.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// InvalidSeverityError is returned when a Severity value is not recognized.
	InvalidSeverityError struct {
		Value Severity
	}

	// InvalidDiagnosticCodeError is returned when a DiagnosticCode value is not recognized.
	InvalidDiagnosticCodeError struct {
		Value DiagnosticCode
	}

	// Diagnostic is a structured, non-fatal discovery problem returned to the
	// caller instead of being raised, so the CLI layer decides how to render it.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "probe_io_error").
		Code DiagnosticCode
		// Message is the human-readable description.
		Message string
		// Path is the filesystem path associated with this diagnostic (optional).
		Path types.FilesystemPath
		// Strategy is the strategy that was running when the problem occurred.
		Strategy Strategy
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid diagnostic severity %q (valid: warning, error)", e.Value)
}

// Unwrap returns ErrInvalidSeverity for errors.Is() compatibility.
func (e *InvalidSeverityError) Unwrap() error { return ErrInvalidSeverity }

// Error implements the error interface.
func (e *InvalidDiagnosticCodeError) Error() string {
	return fmt.Sprintf("invalid diagnostic code %q", e.Value)
}

// Unwrap returns ErrInvalidDiagnosticCode for errors.Is() compatibility.
func (e *InvalidDiagnosticCodeError) Unwrap() error { return ErrInvalidDiagnosticCode }

// IsValid returns whether the Severity is one of the defined severities,
// and a list of validation errors if it is not.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{&InvalidSeverityError{Value: s}}
	}
}

// String returns the code as a plain string.
func (c DiagnosticCode) String() string { return string(c) }

// IsValid returns whether the DiagnosticCode is one of the defined codes,
// and a list of validation errors if it is not.
func (c DiagnosticCode) IsValid() (bool, []error) {
	switch c {
	case CodeProbeIOError, CodeInvalidName:
		return true, nil
	default:
		return false, []error{&InvalidDiagnosticCodeError{Value: c}}
	}
}

// NewDiagnostic creates a diagnostic without path or cause.
func NewDiagnostic(severity Severity, code DiagnosticCode, message string) Diagnostic {
	return Diagnostic{Severity: severity, Code: code, Message: message}
}

// NewDiagnosticWithCause creates a diagnostic tied to a probed path and the
// error that produced it.
func NewDiagnosticWithCause(severity Severity, code DiagnosticCode, message string, path types.FilesystemPath, strategy Strategy, cause error) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		Path:     path,
		Strategy: strategy,
		Cause:    cause,
	}
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	if d.Path.IsZero() {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s (%s)", d.Severity, d.Code, d.Message, d.Path)
}
