// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustMkdirs creates each path (relative to root) as a directory tree and
// returns root, so a test layout can be declared in one call:
//
//	root := testutil.MustMkdirs(t, t.TempDir(), "Plugins/ImGui", "Engine/Plugins")
func MustMkdirs(t testing.TB, root string, rels ...string) string {
	t.Helper()
	for _, rel := range rels {
		MustMkdirAll(t, filepath.Join(root, filepath.FromSlash(rel)), 0o755)
	}
	return root
}

// MustWriteFile writes data to path, creating parent directories as needed.
func MustWriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirsFs is MustMkdirs for an afero filesystem.
func MustMkdirsFs(t testing.TB, fsys afero.Fs, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(path, 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", path, err)
		}
	}
}
