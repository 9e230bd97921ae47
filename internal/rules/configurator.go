// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/discovery"
	"github.com/invowk/capgate/internal/issue"
	"github.com/invowk/capgate/internal/provision"
	"github.com/invowk/capgate/pkg/fspath"
	"github.com/invowk/capgate/pkg/platform"
	"github.com/invowk/capgate/pkg/types"
)

var (
	// ErrInvalidModule is returned when a ModuleSpec cannot be configured.
	ErrInvalidModule = errors.New("invalid module")
	// ErrDuplicateFlag is returned when two capabilities, or a capability and
	// a platform flag, share a key. Each key has exactly one condition.
	ErrDuplicateFlag = errors.New("flag declared more than once")
)

type (
	// Host is what the host build system tells capgate about the build.
	Host struct {
		Target     platform.Target
		PluginDirs []types.FilesystemPath
		EngineDir  types.FilesystemPath
		// ProjectDir empty means two levels above the component directory.
		ProjectDir types.FilesystemPath
	}

	// Fallback names the directory provisioned for a module on every pass.
	Fallback struct {
		Config     *provision.Config
		Visibility descriptor.Visibility
	}

	// ModuleSpec is one module's build rules.
	ModuleSpec struct {
		Name                types.ModuleName
		ComponentDir        types.FilesystemPath
		PublicDependencies  []types.ModuleName
		PrivateDependencies []types.ModuleName
		Gate                Gate
		Capabilities        []Capability
		// PlatformFlags are set to 1 when the gate passes and 0 otherwise.
		PlatformFlags []types.DefinitionKey
		Fallback      *Fallback
	}

	// Report is the result of configuring one module.
	Report struct {
		Module  types.ModuleName
		Target  platform.Target
		Allowed bool
		// Roots are the candidate roots probed (empty when the gate closed).
		Roots    []discovery.CandidateRoot
		Outcomes []Outcome
		// Fallback is nil when the module has no fallback directory.
		Fallback   *provision.Result
		Descriptor *descriptor.Descriptor
	}

	// Configurator runs configuration passes.
	Configurator struct {
		fs             afero.Fs
		logger         *log.Logger
		prober         Prober
		newProvisioner func(*provision.Config) provision.Provisioner
	}

	// Option configures a Configurator.
	Option func(*Configurator)
)

// WithFs sets the filesystem used by the default prober and provisioner.
func WithFs(fsys afero.Fs) Option {
	return func(c *Configurator) {
		c.fs = fsys
	}
}

// WithLogger sets the logger shared with the default prober and provisioner.
func WithLogger(logger *log.Logger) Option {
	return func(c *Configurator) {
		c.logger = logger
	}
}

// WithProber replaces the default discovery resolver.
func WithProber(p Prober) Option {
	return func(c *Configurator) {
		c.prober = p
	}
}

// WithProvisioner replaces the provisioner built for each module's fallback.
func WithProvisioner(newProvisioner func(*provision.Config) provision.Provisioner) Option {
	return func(c *Configurator) {
		c.newProvisioner = newProvisioner
	}
}

// NewConfigurator creates a Configurator on the OS filesystem.
func NewConfigurator(opts ...Option) *Configurator {
	c := &Configurator{
		fs:     afero.NewOsFs(),
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "configure"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prober == nil {
		c.prober = discovery.NewResolver(discovery.WithFs(c.fs), discovery.WithLogger(c.logger))
	}
	if c.newProvisioner == nil {
		c.newProvisioner = func(cfg *provision.Config) provision.Provisioner {
			return provision.NewDirProvisioner(cfg, provision.WithFs(c.fs), provision.WithLogger(c.logger))
		}
	}
	return c
}

// Layout expands the host directories for a component.
func (h Host) Layout(componentDir types.FilesystemPath) discovery.Layout {
	project := h.ProjectDir
	if project.IsZero() && !componentDir.IsZero() {
		project = fspath.Dir(fspath.Dir(fspath.Clean(componentDir)))
	}
	return discovery.Layout{
		PluginDirs:   h.PluginDirs,
		EngineDir:    h.EngineDir,
		ProjectDir:   project,
		ComponentDir: componentDir,
	}
}

// Validate checks everything Configure relies on before touching the filesystem.
func (m ModuleSpec) Validate() error {
	var errs []error
	if err := m.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := m.ComponentDir.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("component dir: %w", err))
	}
	seen := make(map[types.DefinitionKey]bool, len(m.Capabilities)+len(m.PlatformFlags))
	claim := func(key types.DefinitionKey) {
		if seen[key] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateFlag, key))
		}
		seen[key] = true
	}
	for _, c := range m.Capabilities {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
		claim(c.Flag)
	}
	for _, f := range m.PlatformFlags {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
		claim(f)
	}
	if m.Fallback != nil && m.Fallback.Config != nil {
		if err := m.Fallback.Config.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %w", ErrInvalidModule, m.Name, errors.Join(errs...))
	}
	return nil
}

// Diagnostics returns every probe diagnostic of the pass, in order.
func (r *Report) Diagnostics() []discovery.Diagnostic {
	var diags []discovery.Diagnostic
	for _, o := range r.Outcomes {
		diags = append(diags, o.Diagnostics()...)
	}
	return diags
}

// Configure runs one pass for spec and returns the sealed descriptor in a
// Report. A provisioning failure aborts the pass with an actionable error.
func (c *Configurator) Configure(host Host, spec ModuleSpec) (*Report, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	d := descriptor.New(spec.Name)
	report := &Report{Module: spec.Name, Target: host.Target, Descriptor: d}

	if err := d.AddDependencies(descriptor.VisibilityPublic, spec.PublicDependencies...); err != nil {
		return nil, fmt.Errorf("module %s: %w", spec.Name, err)
	}
	if err := d.AddDependencies(descriptor.VisibilityPrivate, spec.PrivateDependencies...); err != nil {
		return nil, fmt.Errorf("module %s: %w", spec.Name, err)
	}

	report.Allowed = spec.Gate.Allows(host.Target)
	if report.Allowed {
		report.Roots = host.Layout(spec.ComponentDir).Candidates()
	} else if len(spec.Capabilities) > 0 {
		c.logger.Info("platform not allowed, skipping capability probes",
			"module", spec.Name, "target", host.Target, "allowed", spec.Gate.Targets())
	}

	for _, capability := range spec.Capabilities {
		outcome := SkippedOutcome(capability)
		if report.Allowed {
			outcome = ResolveCapability(c.prober, capability, report.Roots)
		}
		if err := Apply(d, outcome); err != nil {
			return nil, fmt.Errorf("module %s: %w", spec.Name, err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	for _, flag := range spec.PlatformFlags {
		if err := d.SetFlag(flag, report.Allowed); err != nil {
			return nil, fmt.Errorf("module %s: %w", spec.Name, err)
		}
	}

	if spec.Fallback != nil {
		res, err := c.provisionFallback(spec, d)
		if err != nil {
			return nil, err
		}
		report.Fallback = res
	}

	d.Seal()
	return report, nil
}

// provisionFallback creates the fallback directory and registers it whether or
// not any capability was found.
func (c *Configurator) provisionFallback(spec ModuleSpec, d *descriptor.Descriptor) (*provision.Result, error) {
	cfg := spec.Fallback.Config
	if cfg == nil {
		cfg = provision.DefaultConfig()
	}
	res, err := c.newProvisioner(cfg).Provision(spec.ComponentDir)
	if err != nil {
		resource := fspath.JoinStr(spec.ComponentDir, cfg.ThirdPartyDir, cfg.Leaf).String()
		var perr *provision.Error
		if errors.As(err, &perr) {
			resource = perr.Path.String()
		}
		return nil, issue.NewErrorContext().
			WithOperation("provision fallback directory").
			WithResource(resource).
			WithSuggestion("Check that the component directory is writable").
			WithSuggestion("Remove any file that occupies the fallback directory path").
			WithIssue(issue.ProvisionFailedId).
			Wrap(err).
			BuildError()
	}

	vis := spec.Fallback.Visibility
	if vis == "" {
		vis = descriptor.VisibilityPublic
	}
	if _, err := d.AddIncludePath(vis, res.Path); err != nil {
		return nil, fmt.Errorf("module %s: %w", spec.Name, err)
	}
	return res, nil
}
