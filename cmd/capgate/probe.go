// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/capgate/internal/discovery"
	"github.com/invowk/capgate/pkg/types"
)

func newProbeCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var module string

	cmd := &cobra.Command{
		Use:   "probe <name>...",
		Short: "Resolve capability names against the host layout",
		Long: `Resolve capability names against the host layout.

The candidate roots are built from the host configuration and the component
directory of --module (the first configured module by default). The
platform gate is not consulted. Exits with status 2 when any name is not
found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags)
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "")
			}

			var names []string
			if module != "" {
				names = []string{module}
			}
			modules, err := selectModules(s.cfg, names)
			if err != nil {
				return app.fail(cmd, err, s.verbose, s.colorStyle)
			}
			var component types.FilesystemPath
			if len(modules) > 0 {
				component = modules[0].ComponentDir
			}

			roots := s.host.Layout(component).Candidates()
			resolver := discovery.NewResolver(discovery.WithLogger(s.logger))

			missing := 0
			for _, name := range args {
				res := resolver.Resolve(types.ModuleName(name), roots)
				fmt.Fprintln(app.stdout, probeLine(res))
				renderDiagnostics(app.stderr, res.Diagnostics)
				if !res.Found {
					missing++
				}
			}

			if missing > 0 {
				cmd.SilenceErrors = true
				return &ExitError{Code: types.ExitNotFound}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&module, "module", "m", "", "module whose component directory anchors the sibling search")
	return cmd
}

func probeLine(res discovery.Result) string {
	if !res.Found {
		return fmt.Sprintf("%s %s %s", iconMissing, res.Name, WarningStyle.Render("not found"))
	}
	line := fmt.Sprintf("%s %s %s %s", iconFound, res.Name, KeyStyle.Render(string(res.Strategy)), res.Path)
	if res.Strategy.IsFuzzy() && res.MatchedName != string(res.Name) {
		line += " " + SubtitleStyle.Render("(fuzzy match: "+res.MatchedName+")")
	}
	return line
}
