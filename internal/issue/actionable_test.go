// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "select module"}, "failed to select module"},
		{
			"with resource",
			&ActionableError{Operation: "load configuration", Resource: "./capgate.cue"},
			"failed to load configuration: ./capgate.cue",
		},
		{
			"with cause",
			&ActionableError{Operation: "start watcher", Cause: errors.New("nothing to watch")},
			"failed to start watcher: nothing to watch",
		},
		{
			"full context",
			&ActionableError{
				Operation: "provision fallback directory",
				Resource:  "Plugins/InEditorCpp/ThirdParty",
				Cause:     fs.ErrPermission,
			},
			"failed to provision fallback directory: Plugins/InEditorCpp/ThirdParty: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("stat ThirdParty: %w", fs.ErrPermission)
	err := &ActionableError{
		Operation:   "provision fallback directory",
		Resource:    "ThirdParty",
		Suggestions: []string{"Make sure the component directory is writable", "Remove the file in the way"},
		Cause:       inner,
	}

	plain := err.Format(false)
	if !strings.HasPrefix(plain, err.Error()) {
		t.Errorf("Format(false) should start with Error(): %q", plain)
	}
	if strings.Count(plain, "\n  • ") != 2 {
		t.Errorf("Format(false) should list two suggestions: %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. stat ThirdParty: permission denied", "2. permission denied"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) lacks %q:\n%s", want, verbose)
		}
	}

	bare := &ActionableError{Operation: "select module"}
	if bare.Format(true) != "failed to select module" || bare.HasSuggestions() {
		t.Errorf("bare Format(true) = %q", bare.Format(true))
	}
}

func TestErrorContext_BuildError(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}

	ctx := NewErrorContext().
		WithOperation("load configuration").
		WithResource("capgate.cue").
		WithSuggestion("Check the CUE syntax")
	first := ctx.BuildError()
	second := ctx.WithSuggestion("Run 'capgate config dump --schema'").BuildError()

	ae, ok := AsActionable(first)
	if !ok {
		t.Fatalf("BuildError() = %T, want *ActionableError", first)
	}
	if len(ae.Suggestions) != 1 {
		t.Errorf("earlier error changed after reuse: %v", ae.Suggestions)
	}
	if ae2, _ := AsActionable(second); len(ae2.Suggestions) != 2 || ae2.Resource != "capgate.cue" {
		t.Errorf("second error = %+v", ae2)
	}
}

func TestErrorContext_WithIssue(t *testing.T) {
	t.Parallel()

	cause := errors.New("mkdir ThirdParty: permission denied")
	err := NewErrorContext().
		WithOperation("provision fallback directory").
		WithIssue(ProvisionFailedId).
		Wrap(cause).
		BuildError()

	ae, ok := AsActionable(fmt.Errorf("configure InEditorCpp: %w", err))
	if !ok {
		t.Fatal("AsActionable() should find the wrapped ActionableError")
	}
	if ae.Issue != ProvisionFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, ProvisionFailedId)
	}
	if page := ae.Page(); page == nil || page.Id() != ProvisionFailedId {
		t.Errorf("Page() = %v, want provision issue", page)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestActionableError_PageWithoutIssue(t *testing.T) {
	t.Parallel()

	if page := (&ActionableError{Operation: "load configuration"}).Page(); page != nil {
		t.Errorf("Page() = %v, want nil", page)
	}
	if _, ok := AsActionable(errors.New("plain")); ok {
		t.Error("AsActionable() on a plain error should report false")
	}
}
