// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/testutil"
	"github.com/invowk/capgate/pkg/types"
)

// fixture lays out a project with an InEditorCpp component and the given
// plugins, and writes a config describing it.
type fixture struct {
	dir       string
	component string
	config    string
}

func newFixture(t *testing.T, target string, plugins ...string) fixture {
	t.Helper()

	dir := t.TempDir()
	component := filepath.Join(dir, "Project", "Plugins", "InEditorCpp")
	testutil.MustMkdirs(t, dir, "Project/Plugins/InEditorCpp")
	for _, p := range plugins {
		testutil.MustMkdirs(t, dir, "Project/Plugins/"+p)
	}

	cue := `host: target: "` + target + `"
modules: [{
	name:          "InEditorCpp"
	component_dir: "` + filepath.ToSlash(component) + `"
	public_dependencies: ["Core"]
	platforms: ["Win64"]
	capabilities: [{
		flag: "WITH_IMGUI"
		aliases: [{name: "ImGui"}, {name: "mGui"}]
	}]
	platform_flags: ["WITH_CLANGD_SERVICE"]
	fallback: visibility: "public"
}, {
	name:          "InEditorCppTests"
	component_dir: "` + filepath.ToSlash(component) + `"
	private_dependencies: ["ImGui"]
}]
`
	config := filepath.Join(dir, "capgate.cue")
	testutil.MustWriteFile(t, config, []byte(cue))
	return fixture{dir: dir, component: component, config: config}
}

// run executes the command tree with args and captured output.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCommand(NewApp(Dependencies{Stdout: &out, Stderr: &errOut}))
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func decodeDocument(t *testing.T, data string) descriptor.Document {
	t.Helper()
	var doc descriptor.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, data)
	}
	return doc
}

func TestConfigure_JSON(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64", "ImGui")
	stdout, stderr, err := run(t, "configure", "--config", fx.config, "--format", "json")
	if err != nil {
		t.Fatalf("configure failed: %v\nstderr: %s", err, stderr)
	}

	doc := decodeDocument(t, stdout)
	if len(doc.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(doc.Modules))
	}

	editor := doc.Modules[0]
	if editor.Module != "InEditorCpp" {
		t.Errorf("first module = %q", editor.Module)
	}
	if !slices.Contains(editor.PrivateDependencies, "ImGui") {
		t.Errorf("private dependencies %v lack ImGui", editor.PrivateDependencies)
	}
	for _, def := range []string{"WITH_IMGUI=1", "WITH_CLANGD_SERVICE=1"} {
		if !slices.Contains(editor.Definitions, def) {
			t.Errorf("definitions %v lack %s", editor.Definitions, def)
		}
	}
	if len(editor.PublicIncludePaths) != 1 {
		t.Fatalf("public include paths = %v, want the fallback", editor.PublicIncludePaths)
	}

	fallback := filepath.Join(fx.component, "ThirdParty", "ImGuiColorTextEdit")
	if info, err := os.Stat(fallback); err != nil || !info.IsDir() {
		t.Errorf("fallback directory %s not created (err=%v)", fallback, err)
	}

	tests := doc.Modules[1]
	if tests.Module != "InEditorCppTests" || len(tests.Definitions) != 0 {
		t.Errorf("tests module = %+v", tests)
	}
}

func TestConfigure_GateClosed(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64", "ImGui")
	stdout, stderr, err := run(t, "configure", "InEditorCpp",
		"--config", fx.config, "--format", "json", "--target", "Linux")
	if err != nil {
		t.Fatalf("configure failed: %v\nstderr: %s", err, stderr)
	}

	doc := decodeDocument(t, stdout)
	if len(doc.Modules) != 1 {
		t.Fatalf("got %d modules, want 1", len(doc.Modules))
	}
	m := doc.Modules[0]
	if slices.Contains(m.PrivateDependencies, "ImGui") {
		t.Error("ImGui registered although the gate is closed")
	}
	for _, def := range []string{"WITH_IMGUI=0", "WITH_CLANGD_SERVICE=0"} {
		if !slices.Contains(m.Definitions, def) {
			t.Errorf("definitions %v lack %s", m.Definitions, def)
		}
	}
}

func TestConfigure_Text(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64")
	stdout, _, err := run(t, "configure", "InEditorCpp", "--config", fx.config)
	if err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	for _, want := range []string{"InEditorCpp", "WITH_IMGUI=0", "none of ImGui, mGui found", "fallback"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestConfigure_Errors(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64")

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"unknown module", []string{"configure", "Nope", "--config", fx.config}, `module "Nope" is not configured`},
		{"bad target", []string{"configure", "--config", fx.config, "--target", "Amiga"}, "--target"},
		{"missing config", []string{"configure", "--config", filepath.Join(fx.dir, "absent.cue")}, "absent.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, stderr, err := run(t, tt.args...)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != types.ExitFailure {
				t.Fatalf("err = %v, want ExitError with code %d", err, types.ExitFailure)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr lacks %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

func TestConfigure_InvalidFormat(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64")
	_, _, err := run(t, "configure", "--config", fx.config, "--format", "xml")
	if !errors.Is(err, descriptor.ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64", "mGui")

	stdout, _, err := run(t, "probe", "mGui", "--config", fx.config)
	if err != nil {
		t.Fatalf("probe mGui failed: %v", err)
	}
	if !strings.Contains(stdout, "project-direct") {
		t.Errorf("probe output lacks the strategy:\n%s", stdout)
	}

	stdout, _, err = run(t, "probe", "mGui", "ImGui", "--config", fx.config)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitNotFound {
		t.Fatalf("err = %v, want ExitError with code %d", err, types.ExitNotFound)
	}
	if !strings.Contains(stdout, "ImGui not found") {
		t.Errorf("probe output lacks the miss:\n%s", stdout)
	}
}

func TestProbe_PluginDirFirst(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64", "ImGui")
	extra := filepath.Join(fx.dir, "Extra")
	testutil.MustMkdirs(t, extra, "ImGui")

	stdout, _, err := run(t, "probe", "ImGui", "--config", fx.config, "--plugin-dir", extra)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !strings.Contains(stdout, "direct") || !strings.Contains(stdout, "Extra") {
		t.Errorf("expected a direct match in the plugin dir:\n%s", stdout)
	}
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64")

	t.Run("dump", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, "config", "dump", "--config", fx.config)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{`target: "Win64"`, `name: "InEditorCppTests"`, `flag: "WITH_IMGUI"`} {
			if !strings.Contains(stdout, want) {
				t.Errorf("dump lacks %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("schema", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, "config", "dump", "--schema")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "#Config") {
			t.Errorf("schema output lacks #Config:\n%s", stdout)
		}
	})

	t.Run("show", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := run(t, "config", "show", "--config", fx.config)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{fx.config, "Win64", "WITH_IMGUI", "ImGui > mGui"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("show lacks %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("init", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "capgate.cue")

		stdout, _, err := run(t, "config", "init", path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "Created") {
			t.Errorf("init output = %q", stdout)
		}

		stdout, _, err = run(t, "config", "init", path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "already exists") {
			t.Errorf("second init output = %q", stdout)
		}
	})
}

func TestWatchRoots(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "Win64")
	s, err := NewApp(Dependencies{}).open(t.Context(), &rootFlagValues{configPath: fx.config})
	if err != nil {
		t.Fatal(err)
	}

	roots := watchRoots(s.host, s.cfg.Modules)
	want := types.FilesystemPath(filepath.ToSlash(filepath.Join(fx.dir, "Project", "Plugins")))
	if len(roots) != 1 || filepath.ToSlash(string(roots[0])) != string(want) {
		t.Errorf("watchRoots() = %v, want [%s]", roots, want)
	}

	s.host.Target = "Linux"
	if roots := watchRoots(s.host, s.cfg.Modules); len(roots) != 0 {
		t.Errorf("watchRoots() on a closed gate = %v, want none", roots)
	}
}
