// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/invowk/capgate/internal/config"
	"github.com/invowk/capgate/internal/issue"
	"github.com/invowk/capgate/internal/rules"
	"github.com/invowk/capgate/pkg/platform"
	"github.com/invowk/capgate/pkg/types"
)

type (
	// App wires the CLI's services. Command handlers receive it instead of
	// reaching for package-level state.
	App struct {
		Config          config.Provider
		NewConfigurator func(logger *log.Logger) *rules.Configurator
		stdout          io.Writer
		stderr          io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config          config.Provider
		NewConfigurator func(logger *log.Logger) *rules.Configurator
		Stdout          io.Writer
		Stderr          io.Writer
	}

	// session is the state one command invocation works with.
	session struct {
		cfg        *config.Config
		source     string
		host       rules.Host
		logger     *log.Logger
		verbose    bool
		colorStyle string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewConfigurator == nil {
		deps.NewConfigurator = func(logger *log.Logger) *rules.Configurator {
			return rules.NewConfigurator(rules.WithLogger(logger))
		}
	}
	return &App{
		Config:          deps.Config,
		NewConfigurator: deps.NewConfigurator,
		stdout:          deps.Stdout,
		stderr:          deps.Stderr,
	}
}

// newLogger returns the CLI logger: warnings and errors by default, every
// probe decision with --verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "capgate", Level: level})
}

// open loads the configuration and applies flag overrides.
func (a *App) open(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, source, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:        cfg,
		source:     source,
		verbose:    flags.verbose || cfg.UI.Verbose,
		colorStyle: string(cfg.UI.ColorScheme),
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
	s.logger = newLogger(a.stderr, s.verbose)

	if err := flags.applyHost(&cfg.Host); err != nil {
		return nil, err
	}
	s.host = rules.HostFromConfig(cfg.Host)
	s.logger.Debug("configuration loaded", "source", sourceLabel(source), "target", s.host.Target)
	return s, nil
}

// applyHost overrides the configured host layout with explicit flags.
func (f *rootFlagValues) applyHost(h *config.HostConfig) error {
	if f.target != "" {
		t, err := platform.ParseTarget(f.target)
		if err != nil {
			return fmt.Errorf("--target: %w", err)
		}
		h.Target = t
	}
	if f.engineDir != "" {
		h.EngineDir = types.FilesystemPath(f.engineDir)
	}
	if f.projectDir != "" {
		h.ProjectDir = types.FilesystemPath(f.projectDir)
	}
	if len(f.pluginDirs) > 0 {
		h.PluginDirs = h.PluginDirs[:0:0]
		for _, d := range f.pluginDirs {
			h.PluginDirs = append(h.PluginDirs, types.FilesystemPath(d))
		}
	}
	return nil
}

// selectModules returns the named modules in the order given, or every module
// when names is empty.
func selectModules(cfg *config.Config, names []string) ([]config.ModuleConfig, error) {
	if len(names) == 0 {
		return cfg.Modules, nil
	}
	selected := make([]config.ModuleConfig, 0, len(names))
	for _, name := range names {
		m, ok := cfg.Module(types.ModuleName(name))
		if !ok {
			known := make([]string, 0, len(cfg.Modules))
			for _, n := range cfg.ModuleNames() {
				known = append(known, string(n))
			}
			slices.Sort(known)
			return nil, issue.NewErrorContext().
				WithOperation("select module").
				WithResource(name).
				WithSuggestion(fmt.Sprintf("Configured modules: %v", known)).
				WithSuggestion("Run 'capgate config show' to inspect the configuration").
				WithIssue(issue.ModuleNotFoundId).
				Wrap(fmt.Errorf("module %q is not configured", name)).
				BuildError()
		}
		selected = append(selected, *m)
	}
	return selected, nil
}

// configureModules runs one pass per module with a shared configurator.
func (a *App) configureModules(s *session, modules []config.ModuleConfig) ([]*rules.Report, error) {
	configurator := a.NewConfigurator(s.logger)
	reports := make([]*rules.Report, 0, len(modules))
	for _, m := range modules {
		spec, err := rules.ModuleFromConfig(m)
		if err != nil {
			return nil, err
		}
		report, err := configurator.Configure(s.host, spec)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func sourceLabel(source string) string {
	if source == "" {
		return "(defaults)"
	}
	return source
}

// completeModules offers the configured module names as positional arguments.
func (a *App) completeModules(flags *rootFlagValues) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		cfg, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []cobra.Completion
		for _, n := range cfg.ModuleNames() {
			if !slices.Contains(args, string(n)) {
				names = append(names, string(n))
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
