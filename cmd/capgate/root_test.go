// SPDX-License-Identifier: MPL-2.0

package cmd

import "testing"

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	tests := []struct {
		name                     string
		version, commit, builtAt string
		want                     string
	}{
		{
			name:    "ldflags version",
			version: "v0.3.0", commit: "abc1234", builtAt: "2026-01-05T10:00:00Z",
			want: "v0.3.0 (commit: abc1234, built: 2026-01-05T10:00:00Z)",
		},
		{
			name:    "dev build",
			version: "dev", commit: "unknown", builtAt: "unknown",
			want: "dev (built from source)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
			t.Cleanup(func() {
				Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
			})
			Version, Commit, BuildDate = tt.version, tt.commit, tt.builtAt

			if got := getVersionString(); got != tt.want {
				t.Errorf("getVersionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{}))
	for _, name := range []string{"configure", "probe", "watch", "config"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered (err=%v)", name, err)
		}
	}
	for _, flag := range []string{"verbose", "config", "target", "engine-dir", "project-dir", "plugin-dir"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
}
