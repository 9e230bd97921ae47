// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/capgate/internal/testutil"
	"github.com/invowk/capgate/pkg/types"
)

// workRoot is the root of the in-memory test layout:
//
//	/work/Extra                      additional plugin dir
//	/work/Engine/Plugins             engine plugins
//	/work/Project/Plugins/InEditorCpp component being configured
const workRoot = "/work"

func p(rel string) types.FilesystemPath {
	return types.FilesystemPath(filepath.Join(workRoot, filepath.FromSlash(rel)))
}

func testLayout() Layout {
	return Layout{
		PluginDirs:   []types.FilesystemPath{p("Extra")},
		EngineDir:    p("Engine"),
		ProjectDir:   p("Project"),
		ComponentDir: p("Project/Plugins/InEditorCpp"),
	}
}

// newTestFs creates an in-memory filesystem with the base layout plus the
// given extra directories (relative to workRoot).
func newTestFs(t *testing.T, rels ...string) *testutil.CountingFs {
	t.Helper()
	base := afero.NewMemMapFs()
	testutil.MustMkdirsFs(t, base, workRoot, "Extra", "Engine/Plugins", "Project/Plugins/InEditorCpp")
	testutil.MustMkdirsFs(t, base, workRoot, rels...)
	return testutil.NewCountingFs(base)
}

func newTestResolver(fsys afero.Fs) *Resolver {
	return NewResolver(WithFs(fsys), WithLogger(log.New(io.Discard)))
}
