// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/provision"
	"github.com/invowk/capgate/pkg/platform"
	"github.com/invowk/capgate/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidModuleConfig is the sentinel error wrapped by InvalidModuleConfigError.
	ErrInvalidModuleConfig = errors.New("invalid module config")
	// ErrInvalidCapabilityConfig is the sentinel error wrapped by InvalidCapabilityConfigError.
	ErrInvalidCapabilityConfig = errors.New("invalid capability config")
	// ErrDuplicateModule is returned when two modules share a name.
	ErrDuplicateModule = errors.New("duplicate module name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidModuleConfigError is returned when a ModuleConfig has invalid fields.
	// It wraps ErrInvalidModuleConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidModuleConfigError struct {
		Module      types.ModuleName
		FieldErrors []error
	}

	// InvalidCapabilityConfigError is returned when a CapabilityConfig has invalid fields.
	InvalidCapabilityConfigError struct {
		Flag        types.DefinitionKey
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Host describes the build host's directory layout and target.
		Host HostConfig `json:"host" mapstructure:"host"`
		// Modules are configured independently, in order.
		Modules []ModuleConfig `json:"modules" mapstructure:"modules"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// HostConfig holds the inputs the host build system supplies.
	HostConfig struct {
		// Target is the platform being built for. Empty means the platform
		// capgate runs on.
		Target platform.Target `json:"target" mapstructure:"target"`
		// PluginDirs are additional plugin directories, probed first.
		PluginDirs []types.FilesystemPath `json:"plugin_dirs" mapstructure:"plugin_dirs"`
		// EngineDir is the engine installation root.
		EngineDir types.FilesystemPath `json:"engine_dir" mapstructure:"engine_dir"`
		// ProjectDir is the project root. Empty means two levels above each
		// module's component directory.
		ProjectDir types.FilesystemPath `json:"project_dir" mapstructure:"project_dir"`
	}

	// ModuleConfig declares one module's build rules.
	ModuleConfig struct {
		Name         types.ModuleName     `json:"name" mapstructure:"name"`
		ComponentDir types.FilesystemPath `json:"component_dir" mapstructure:"component_dir"`
		// PublicDependencies and PrivateDependencies are seeded before any probing.
		PublicDependencies  []types.ModuleName `json:"public_dependencies" mapstructure:"public_dependencies"`
		PrivateDependencies []types.ModuleName `json:"private_dependencies" mapstructure:"private_dependencies"`
		// Platforms is the allow-list for capability probing. Empty allows nothing.
		Platforms     []platform.Target     `json:"platforms" mapstructure:"platforms"`
		Capabilities  []CapabilityConfig    `json:"capabilities" mapstructure:"capabilities"`
		PlatformFlags []types.DefinitionKey `json:"platform_flags" mapstructure:"platform_flags"`
		// Fallback, when set, is provisioned and registered on every pass.
		Fallback *FallbackConfig `json:"fallback,omitempty" mapstructure:"fallback"`
	}

	// CapabilityConfig declares an optional capability and its ranked aliases.
	CapabilityConfig struct {
		Name       string                `json:"name" mapstructure:"name"`
		Flag       types.DefinitionKey   `json:"flag" mapstructure:"flag"`
		Visibility descriptor.Visibility `json:"visibility" mapstructure:"visibility"`
		Aliases    []AliasConfig         `json:"aliases" mapstructure:"aliases"`
	}

	// AliasConfig is one directory name to probe. Dependency defaults to Name.
	AliasConfig struct {
		Name       types.ModuleName `json:"name" mapstructure:"name"`
		Dependency types.ModuleName `json:"dependency,omitempty" mapstructure:"dependency"`
	}

	// FallbackConfig configures the guaranteed fallback directory.
	FallbackConfig struct {
		ThirdPartyDir string                `json:"third_party_dir" mapstructure:"third_party_dir"`
		Leaf          string                `json:"leaf" mapstructure:"leaf"`
		Visibility    descriptor.Visibility `json:"visibility" mapstructure:"visibility"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Module returns the module named name.
func (c *Config) Module(name types.ModuleName) (*ModuleConfig, bool) {
	for i := range c.Modules {
		if c.Modules[i].Name == name {
			return &c.Modules[i], true
		}
	}
	return nil, false
}

// ModuleNames returns the configured module names in order.
func (c *Config) ModuleNames() []types.ModuleName {
	names := make([]types.ModuleName, 0, len(c.Modules))
	for _, m := range c.Modules {
		names = append(names, m.Name)
	}
	return names
}

// IsValid returns whether the Config has valid fields.
// It delegates to UI.IsValid(), the host target and each module's IsValid(),
// and rejects duplicate module names.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.Host.Target != "" {
		if err := c.Host.Target.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for i, dir := range c.Host.PluginDirs {
		if err := dir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("host.plugin_dirs[%d]: %w", i, err))
		}
	}
	seen := make(map[types.ModuleName]int, len(c.Modules))
	for i, m := range c.Modules {
		if first, ok := seen[m.Name]; ok {
			errs = append(errs, fmt.Errorf("modules[%d]: %w %q (same as modules[%d])", i, ErrDuplicateModule, m.Name, first))
			continue
		}
		seen[m.Name] = i
		if valid, fieldErrs := m.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid returns whether the ModuleConfig has valid fields.
func (m ModuleConfig) IsValid() (bool, []error) {
	var errs []error
	if err := m.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := m.ComponentDir.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("component_dir: %w", err))
	}
	for _, dep := range slices.Concat(m.PublicDependencies, m.PrivateDependencies) {
		if err := dep.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range m.Platforms {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	flags := make(map[types.DefinitionKey]bool)
	for _, c := range m.Capabilities {
		if valid, fieldErrs := c.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if flags[c.Flag] {
			errs = append(errs, fmt.Errorf("flag %q is declared more than once", c.Flag))
		}
		flags[c.Flag] = true
	}
	for _, f := range m.PlatformFlags {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
		if flags[f] {
			errs = append(errs, fmt.Errorf("flag %q is declared more than once", f))
		}
		flags[f] = true
	}
	if m.Fallback != nil {
		if err := m.Fallback.ProvisionConfig().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("fallback: %w", err))
		}
		if _, err := descriptor.ParseVisibility(string(m.Fallback.Visibility), descriptor.VisibilityPublic); err != nil {
			errs = append(errs, fmt.Errorf("fallback: %w", err))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidModuleConfigError{Module: m.Name, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModuleConfigError.
func (e *InvalidModuleConfigError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidModuleConfig and the field errors.
func (e *InvalidModuleConfigError) Unwrap() []error {
	return append([]error{ErrInvalidModuleConfig}, e.FieldErrors...)
}

// IsValid returns whether the CapabilityConfig has valid fields.
func (c CapabilityConfig) IsValid() (bool, []error) {
	var errs []error
	if err := c.Flag.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := descriptor.ParseVisibility(string(c.Visibility), descriptor.VisibilityPrivate); err != nil {
		errs = append(errs, err)
	}
	if len(c.Aliases) == 0 {
		errs = append(errs, errors.New("at least one alias is required"))
	}
	for _, a := range c.Aliases {
		if err := a.Name.Validate(); err != nil {
			errs = append(errs, err)
		}
		if a.Dependency != "" {
			if err := a.Dependency.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidCapabilityConfigError{Flag: c.Flag, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCapabilityConfigError.
func (e *InvalidCapabilityConfigError) Error() string {
	return fmt.Sprintf("capability %q: %v", e.Flag, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidCapabilityConfig and the field errors.
func (e *InvalidCapabilityConfigError) Unwrap() []error {
	return append([]error{ErrInvalidCapabilityConfig}, e.FieldErrors...)
}

// ProvisionConfig converts the fallback block into a provisioner config,
// filling in defaults for empty names.
func (f FallbackConfig) ProvisionConfig() *provision.Config {
	cfg := provision.DefaultConfig()
	if f.ThirdPartyDir != "" {
		cfg.Apply(provision.WithThirdPartyDir(f.ThirdPartyDir))
	}
	if f.Leaf != "" {
		cfg.Apply(provision.WithLeaf(f.Leaf))
	}
	return cfg
}

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, fieldErrs
	}
	return true, nil
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration: the InEditorCpp editor
// module, which probes for ImGui (then mGui) on Win64 only, and its test
// module.
func DefaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			Target:     "",
			PluginDirs: []types.FilesystemPath{},
		},
		Modules: []ModuleConfig{
			{
				Name:         "InEditorCpp",
				ComponentDir: "Plugins/InEditorCpp",
				PublicDependencies: []types.ModuleName{
					"Core", "CoreUObject", "Engine", "Slate", "SlateCore", "ApplicationCore", "InputCore",
				},
				PrivateDependencies: []types.ModuleName{
					"UnrealEd", "LevelEditor", "EditorStyle", "Projects", "DesktopPlatform",
					"Json", "JsonUtilities", "ToolMenus", "WorkspaceMenuStructure",
				},
				Platforms: []platform.Target{platform.TargetWin64},
				Capabilities: []CapabilityConfig{
					{
						Name:       "imgui",
						Flag:       "WITH_IMGUI",
						Visibility: descriptor.VisibilityPrivate,
						Aliases:    []AliasConfig{{Name: "ImGui"}, {Name: "mGui"}},
					},
				},
				PlatformFlags: []types.DefinitionKey{"WITH_CLANGD_SERVICE"},
				Fallback: &FallbackConfig{
					ThirdPartyDir: provision.DefaultThirdPartyDir,
					Leaf:          provision.DefaultLeaf,
					Visibility:    descriptor.VisibilityPublic,
				},
			},
			{
				Name:         "InEditorCppTests",
				ComponentDir: "Plugins/InEditorCpp",
				PublicDependencies: []types.ModuleName{
					"Core", "CoreUObject", "Engine", "InputCore", "Slate", "SlateCore", "InEditorCpp",
				},
				PrivateDependencies: []types.ModuleName{
					"ImGui", "Projects", "DesktopPlatform", "AutomationController", "FunctionalTesting",
				},
				Platforms: []platform.Target{},
			},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
