// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestSeverity_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     bool
		wantErr  bool
	}{
		{SeverityWarning, true, false},
		{SeverityError, true, false},
		{"", false, true},
		{"invalid", false, true},
		{"WARNING", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.severity.IsValid()
			if isValid != tt.want {
				t.Errorf("Severity(%q).IsValid() = %v, want %v", tt.severity, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("Severity(%q).IsValid() returned no errors, want error", tt.severity)
				}
				if !errors.Is(errs[0], ErrInvalidSeverity) {
					t.Errorf("error should wrap ErrInvalidSeverity, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("Severity(%q).IsValid() returned unexpected errors: %v", tt.severity, errs)
			}
		})
	}
}

func TestDiagnosticCode_IsValid(t *testing.T) {
	t.Parallel()

	for _, code := range []DiagnosticCode{CodeProbeIOError, CodeInvalidName} {
		if ok, errs := code.IsValid(); !ok || len(errs) != 0 {
			t.Errorf("DiagnosticCode(%q).IsValid() = %v, %v", code, ok, errs)
		}
	}

	ok, errs := DiagnosticCode("command_not_found").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidDiagnosticCode) {
		t.Errorf("unknown code IsValid() = %v, %v", ok, errs)
	}
}

func TestNewDiagnosticWithCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	d := NewDiagnosticWithCause(SeverityWarning, CodeProbeIOError, "stat failed", "/plugins/ImGui", StrategyDirect, cause)

	if d.Severity != SeverityWarning || d.Code != CodeProbeIOError {
		t.Errorf("Severity/Code = %q/%q", d.Severity, d.Code)
	}
	if d.Path != "/plugins/ImGui" || d.Strategy != StrategyDirect {
		t.Errorf("Path/Strategy = %q/%q", d.Path, d.Strategy)
	}
	if !errors.Is(d.Cause, cause) {
		t.Errorf("Cause = %v, want %v", d.Cause, cause)
	}
	if s := d.String(); !strings.Contains(s, "probe_io_error") || !strings.Contains(s, "/plugins/ImGui") {
		t.Errorf("String() = %q", s)
	}
}

func TestNewDiagnostic(t *testing.T) {
	t.Parallel()

	d := NewDiagnostic(SeverityError, CodeInvalidName, "bad name")
	if !d.Path.IsZero() || d.Cause != nil || d.Strategy != "" {
		t.Errorf("NewDiagnostic() = %+v, want no path, strategy or cause", d)
	}
	if got, want := d.String(), "error [invalid_capability_name] bad name"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
