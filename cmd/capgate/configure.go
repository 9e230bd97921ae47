// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/rules"
)

func newConfigureCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "configure [module...]",
		Short: "Configure modules and print their build descriptors",
		Long: `Configure modules and print their build descriptors.

Each module is configured independently: its base dependencies are seeded,
its capabilities are probed when the target platform allows it, its
platform flags are set, and its fallback directory is created and
registered. With no arguments every configured module is processed.`,
		ValidArgsFunction: app.completeModules(flags),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := descriptor.ParseFormat(format)
			if err != nil {
				return err
			}

			s, err := app.open(cmd.Context(), flags)
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "")
			}
			modules, err := selectModules(s.cfg, args)
			if err != nil {
				return app.fail(cmd, err, s.verbose, s.colorStyle)
			}
			reports, err := app.configureModules(s, modules)
			if err != nil {
				return app.fail(cmd, err, s.verbose, s.colorStyle)
			}
			return writeReports(app, f, reports)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(descriptor.FormatText),
		fmt.Sprintf("output format (%s)", strings.Join(descriptor.FormatNames(), ", ")))
	return cmd
}

// writeReports prints the descriptors in format and the probe diagnostics.
func writeReports(app *App, format descriptor.Format, reports []*rules.Report) error {
	for _, r := range reports {
		renderDiagnostics(app.stderr, r.Diagnostics())
	}

	if format == descriptor.FormatText {
		return renderReports(app.stdout, reports)
	}
	doc := descriptor.Document{Modules: make([]descriptor.Output, 0, len(reports))}
	for _, r := range reports {
		doc.Modules = append(doc.Modules, r.Descriptor.Snapshot())
	}
	return descriptor.Encode(app.stdout, format, doc)
}
