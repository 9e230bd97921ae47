// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		ConfigLoadFailedId,
		ConfigNotFoundId,
		ModuleNotFoundId,
		ProvisionFailedId,
		CapabilityNotFoundId,
		PlatformNotSupportedId,
		PermissionDeniedId,
		InvalidLayoutId,
		WatchFailedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil, every Id needs an issue page", id)
		}
	}

	if ConfigLoadFailedId != 1 {
		t.Errorf("ConfigLoadFailedId = %d, want 1", ConfigLoadFailedId)
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(ProvisionFailedId)
	if issue == nil {
		t.Fatal("Get(ProvisionFailedId) returned nil")
	}

	if issue.Id() != ProvisionFailedId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), ProvisionFailedId)
	}
}

func TestIssue_ExtLinks(t *testing.T) {
	issue := Get(WatchFailedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("WatchFailed issue should carry an external link")
	}

	links[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
	if issue.DocLinks() != nil {
		t.Errorf("DocLinks() = %v, want nil", issue.DocLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	rendered, err := Get(WatchFailedId).Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "auto" {
		t.Errorf("style = %q, want auto", gotStyle)
	}
	if !strings.Contains(rendered, "Failed to watch") {
		t.Error("Render() output should contain the issue text")
	}
	if !strings.Contains(rendered, "## See also\n- <https://github.com/fsnotify/fsnotify#faq>") {
		t.Errorf("Render() output should list links:\n%s", rendered)
	}

	rendered, _ = Get(ConfigLoadFailedId).Render("dark")
	if gotStyle != "dark" || strings.Contains(rendered, "See also") {
		t.Errorf("Render(dark) style = %q, output has links section = %v", gotStyle, strings.Contains(rendered, "See also"))
	}
}

func TestIssue_RenderGlamour(t *testing.T) {
	out, err := Get(CapabilityNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Capability not found") {
		t.Errorf("rendered page missing title:\n%s", out)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{ConfigNotFoundId, false, "No configuration file found"},
		{ModuleNotFoundId, false, "Module not found"},
		{ProvisionFailedId, false, "Failed to provision"},
		{CapabilityNotFoundId, false, "Capability not found"},
		{PlatformNotSupportedId, false, "Platform not supported"},
		{PermissionDeniedId, false, "Permission denied"},
		{InvalidLayoutId, false, "Invalid host layout"},
		{WatchFailedId, false, "Failed to watch"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != len(Values()) || len(issues) != 9 {
		t.Fatalf("Values() returned %d issues, want 9", len(issues))
	}
	for i, issue := range issues {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), i+1)
		}
	}
}
