// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/invowk/capgate/internal/testutil"
	"github.com/invowk/capgate/pkg/types"
)

// symlinkOrSkip links name to target, skipping where the OS or privileges
// do not allow symlinks (unprivileged Windows).
func symlinkOrSkip(t *testing.T, target, name string) {
	t.Helper()
	if err := os.Symlink(target, name); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestResolve_FuzzyFollowsSymlinkedPlugins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		src          string // created outside the project, then linked in
		link         string
		layout       func(dir string) Layout
		wantStrategy Strategy
		wantPath     string
		wantMatched  string
	}{
		{
			name: "project fuzzy substring",
			src:  "src/CoolImGuiFork",
			link: "Project/Plugins/CoolImGuiFork",
			layout: func(dir string) Layout {
				return Layout{ProjectDir: types.FilesystemPath(filepath.Join(dir, "Project"))}
			},
			wantStrategy: StrategyProjectFuzzy,
			wantPath:     "Project/Plugins/CoolImGuiFork",
			wantMatched:  "CoolImGuiFork",
		},
		{
			name: "project fuzzy source dir",
			src:  "src/EditorKit/Source/ImGui",
			link: "Project/Plugins/EditorKit",
			layout: func(dir string) Layout {
				return Layout{ProjectDir: types.FilesystemPath(filepath.Join(dir, "Project"))}
			},
			wantStrategy: StrategyProjectFuzzy,
			wantPath:     "Project/Plugins/EditorKit/Source/ImGui",
			wantMatched:  "EditorKit",
		},
		{
			name: "sibling fuzzy",
			src:  "src/ImGuiSupport",
			link: "Marketplace/ImGuiSupport",
			layout: func(dir string) Layout {
				return Layout{ComponentDir: types.FilesystemPath(filepath.Join(dir, "Marketplace", "InEditorCpp"))}
			},
			wantStrategy: StrategySiblingFuzzy,
			wantPath:     "Marketplace/ImGuiSupport",
			wantMatched:  "ImGuiSupport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			testutil.MustMkdirs(t, dir, tt.src, "Project/Plugins/InEditorCpp", "Marketplace/InEditorCpp")
			// The link points at the plugin root, not at the Source subtree.
			target := filepath.Join(dir, "src", filepath.Base(filepath.FromSlash(tt.link)))
			symlinkOrSkip(t, target, filepath.Join(dir, filepath.FromSlash(tt.link)))

			res := newTestResolver(afero.NewOsFs()).Resolve("ImGui", tt.layout(dir).Candidates())
			if !res.Found {
				t.Fatalf("Resolve() = %+v, want a match through the symlink", res)
			}
			if res.Strategy != tt.wantStrategy {
				t.Errorf("Strategy = %q, want %q", res.Strategy, tt.wantStrategy)
			}
			if want := types.FilesystemPath(filepath.Join(dir, filepath.FromSlash(tt.wantPath))); res.Path != want {
				t.Errorf("Path = %q, want %q", res.Path, want)
			}
			if res.MatchedName != tt.wantMatched {
				t.Errorf("MatchedName = %q, want %q", res.MatchedName, tt.wantMatched)
			}
			if len(res.Diagnostics) != 0 {
				t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
			}
		})
	}
}

func TestResolve_FuzzySkipsSymlinksToFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustMkdirs(t, dir, "Project/Plugins")
	testutil.MustWriteFile(t, filepath.Join(dir, "ImGui.txt"), []byte("not a plugin"))
	symlinkOrSkip(t, filepath.Join(dir, "ImGui.txt"), filepath.Join(dir, "Project", "Plugins", "ImGuiNotes"))

	layout := Layout{ProjectDir: types.FilesystemPath(filepath.Join(dir, "Project"))}
	res := newTestResolver(afero.NewOsFs()).Resolve("ImGui", layout.Candidates())
	if res.Found || len(res.Diagnostics) != 0 {
		t.Errorf("Resolve() = %+v, want a silent miss", res)
	}
}

func TestResolve_DanglingSymlinkIsAMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustMkdirs(t, dir, "Project/Plugins")
	symlinkOrSkip(t, filepath.Join(dir, "gone"), filepath.Join(dir, "Project", "Plugins", "ImGuiGone"))

	layout := Layout{ProjectDir: types.FilesystemPath(filepath.Join(dir, "Project"))}
	res := newTestResolver(afero.NewOsFs()).Resolve("ImGui", layout.Candidates())
	if res.Found || len(res.Diagnostics) != 0 {
		t.Errorf("Resolve() = %+v, want a silent miss for a dangling link", res)
	}
}
