// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/capgate/internal/config"
)

// newConfigCommand creates the `capgate config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage capgate configuration",
		Long: `Manage capgate configuration.

The configuration file is looked up in this order:
  1. the --config flag
  2. <config dir>/config.cue
       $CAPGATE_CONFIG_DIR, or by platform:
       Linux: ~/.config/capgate   macOS: ~/Library/Application Support/capgate
       Windows: %APPDATA%\capgate
  3. ./capgate.cue
Without a file the built-in defaults are used. CAPGATE_* environment
variables (for example CAPGATE_HOST_TARGET) override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags)
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "")
			}
			showConfig(app.stdout, s)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a configuration file with the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				p, err := config.DefaultConfigPath("")
				if err != nil {
					return err
				}
				path = p
			}
			written, err := config.CreateDefaultConfig(path, force)
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprintf(app.stdout, "%s %s already exists (use --force to overwrite)\n", iconWarning, path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", iconFound, path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			p, err := config.DefaultConfigPath("")
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", p)
			fmt.Fprintf(app.stdout, "Project file: ./%s\n", config.LocalConfigFileName)
			return nil
		},
	})

	var schema bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema {
				fmt.Fprint(app.stdout, config.Schema())
				return nil
			}
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "")
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	}
	dumpCmd.Flags().BoolVar(&schema, "schema", false, "print the configuration schema instead")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(w io.Writer, s *session) {
	key := KeyStyle.Render
	val := SuccessStyle.Render
	none := SubtitleStyle.Render("(none)")

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", key("Config file"), sourceLabel(s.source))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", key("host"))
	fmt.Fprintf(w, "  target: %s\n", val(string(s.host.Target)))
	if len(s.host.PluginDirs) == 0 {
		fmt.Fprintf(w, "  plugin_dirs: %s\n", none)
	} else {
		fmt.Fprintln(w, "  plugin_dirs:")
		for _, d := range s.host.PluginDirs {
			fmt.Fprintf(w, "    - %s\n", val(d.String()))
		}
	}
	fmt.Fprintf(w, "  engine_dir: %s\n", orNone(s.host.EngineDir.String(), none))
	fmt.Fprintf(w, "  project_dir: %s\n", orNone(s.host.ProjectDir.String(), SubtitleStyle.Render("(two levels above each component)")))

	for _, m := range s.cfg.Modules {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", key("module"), TitleStyle.Render(string(m.Name)))
		fmt.Fprintf(w, "  component_dir: %s\n", val(m.ComponentDir.String()))
		platforms := make([]string, 0, len(m.Platforms))
		for _, p := range m.Platforms {
			platforms = append(platforms, string(p))
		}
		fmt.Fprintf(w, "  platforms: %s\n", orNone(strings.Join(platforms, ", "), none))
		for _, c := range m.Capabilities {
			aliases := make([]string, 0, len(c.Aliases))
			for _, a := range c.Aliases {
				aliases = append(aliases, string(a.Name))
			}
			fmt.Fprintf(w, "  capability %s: %s\n", val(string(c.Flag)), strings.Join(aliases, " > "))
		}
		if m.Fallback != nil {
			fc := m.Fallback.ProvisionConfig()
			fmt.Fprintf(w, "  fallback: %s/%s\n", val(fc.ThirdPartyDir), val(fc.Leaf))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", val(string(s.cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", val(fmt.Sprintf("%v", s.cfg.UI.Verbose)))
}

func orNone(s, none string) string {
	if s == "" {
		return none
	}
	return SuccessStyle.Render(s)
}
