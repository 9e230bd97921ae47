// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/capgate/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every command.
type rootFlagValues struct {
	verbose    bool
	configPath string
	target     string
	engineDir  string
	projectDir string
	pluginDirs []string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "capgate",
		Short: "Probe optional build capabilities and emit build descriptors",
		Long: TitleStyle.Render("capgate") + SubtitleStyle.Render(" - probe optional build capabilities") + `

capgate decides, during a build's configuration pass, whether optional
plugins such as ImGui are installed, and turns the answer into dependency
lists, KEY=0|1 definitions and include paths. It also guarantees that each
module's fallback third-party directory exists.

` + SubtitleStyle.Render("Examples:") + `
  capgate configure                     Configure every module
  capgate configure InEditorCpp -f json Emit one module's descriptor as JSON
  capgate probe ImGui mGui              Show where capabilities resolve
  capgate watch                         Re-configure when plugins change
  capgate config init                   Create a configuration file`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is <config dir>/config.cue, then ./capgate.cue)")
	pf.StringVar(&flags.target, "target", "", "target platform (Win64, Linux, LinuxArm64, Mac, Android, IOS)")
	pf.StringVar(&flags.engineDir, "engine-dir", "", "engine installation root")
	pf.StringVar(&flags.projectDir, "project-dir", "", "project root (default: two levels above each component)")
	pf.StringSliceVar(&flags.pluginDirs, "plugin-dir", nil, "additional plugin directory, probed first (repeatable)")

	rootCmd.AddCommand(
		newConfigureCommand(app, flags),
		newProbeCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}
