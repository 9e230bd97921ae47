// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/capgate/internal/config"
	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/issue"
	"github.com/invowk/capgate/internal/rules"
	"github.com/invowk/capgate/internal/watch"
	"github.com/invowk/capgate/pkg/types"
)

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		format string
		ignore []string
	)

	cmd := &cobra.Command{
		Use:   "watch [module...]",
		Short: "Re-configure modules when candidate roots or the config file change",
		Long: `Re-configure modules when candidate roots or the config file change.

The modules are configured once immediately. Afterwards every batch of
changes below the candidate roots, or to the configuration file, triggers
a fresh, independent pass with the configuration reloaded. The set of
watched roots is fixed at startup. Stop with Ctrl+C.`,
		ValidArgsFunction: app.completeModules(flags),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := descriptor.ParseFormat(format)
			if err != nil {
				return err
			}
			return runWatch(cmd, app, flags, f, ignore, args)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(descriptor.FormatText),
		fmt.Sprintf("output format (%s)", strings.Join(descriptor.FormatNames(), ", ")))
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "additional glob patterns to ignore, relative to each root")
	return cmd
}

func runWatch(cmd *cobra.Command, app *App, flags *rootFlagValues, format descriptor.Format, ignore, names []string) error {
	s, err := app.open(cmd.Context(), flags)
	if err != nil {
		return app.fail(cmd, err, flags.verbose, "")
	}
	modules, err := selectModules(s.cfg, names)
	if err != nil {
		return app.fail(cmd, err, s.verbose, s.colorStyle)
	}

	pass := func(ctx context.Context) error {
		current, err := app.open(ctx, flags)
		if err != nil {
			return err
		}
		selected, err := selectModules(current.cfg, names)
		if err != nil {
			return err
		}
		reports, err := app.configureModules(current, selected)
		if err != nil {
			return err
		}
		return writeReports(app, format, reports)
	}

	if err := pass(cmd.Context()); err != nil {
		fmt.Fprintf(app.stderr, "%s initial pass failed: %v\n", iconWarning, err)
	}

	cfg := watch.Config{
		Roots:  watchRoots(s.host, modules),
		Depth:  watch.DefaultDepth,
		Ignore: ignore,
		Logger: s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stderr, "%s %d change(s), re-configuring\n", iconArrow, len(changed))
			if err := pass(ctx); err != nil {
				fmt.Fprintf(app.stderr, "%s pass failed: %v\n", iconWarning, err)
			}
			return nil
		},
	}
	if s.source != "" {
		cfg.Files = []types.FilesystemPath{types.FilesystemPath(s.source)}
	}

	w, err := watch.New(cfg)
	if err != nil {
		return app.fail(cmd, watchError(err), s.verbose, s.colorStyle)
	}
	fmt.Fprintf(app.stderr, "\n%s watching %d root(s) for changes (Ctrl+C to stop)\n", iconArrow, len(cfg.Roots))
	return w.Run(cmd.Context())
}

// watchRoots collects the distinct candidate root directories of every module
// whose platform gate is open.
func watchRoots(host rules.Host, modules []config.ModuleConfig) []types.FilesystemPath {
	var roots []types.FilesystemPath
	for _, m := range modules {
		if !rules.NewGate(m.Platforms...).Allows(host.Target) {
			continue
		}
		for _, root := range host.Layout(m.ComponentDir).Candidates() {
			if !slices.Contains(roots, root.Dir) {
				roots = append(roots, root.Dir)
			}
		}
	}
	return roots
}

func watchError(err error) error {
	return issue.NewErrorContext().
		WithOperation("start watcher").
		WithSuggestion("Check that the engine, project or plugin directories exist").
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
