// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/invowk/capgate/internal/issue"
	"github.com/invowk/capgate/pkg/cueutil"
	"github.com/invowk/capgate/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "capgate"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory when the
	// config directory has no config file.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment variable overrides (CAPGATE_HOST_TARGET).
	EnvPrefix = "CAPGATE"
	// ConfigDirEnv, when set, replaces the platform configuration directory.
	ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"
)

//go:embed config_schema.cue
var configSchema string

// Schema returns the embedded CUE schema.
func Schema() string { return configSchema }

// ConfigDir returns the capgate configuration directory: $CAPGATE_CONFIG_DIR
// when set, otherwise the platform convention. Windows uses %APPDATA%, macOS
// uses ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns <config dir>/config.cue.
func DefaultConfigPath(configDirPath string) (string, error) {
	cfgDir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the loaded config and the path of the file
// it came from ("" when only defaults and environment were used).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	setDefaults(v, defaults)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", loadError(resolvedPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", loadError(resolvedPath, fmt.Errorf("failed to parse config: %w", err))
	}
	// Modules are a list of structs and are replaced as a whole, so they are
	// not registered as a viper default.
	if !v.IsSet("modules") {
		cfg.Modules = defaults.Modules
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := ExpandPaths(&cfg, lookup); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("expand configured paths").
			WithResource(resolvedPath).
			WithSuggestion("Set the environment variables referenced by host and module paths").
			WithIssue(issue.InvalidLayoutId).
			Wrap(err).
			BuildError()
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Module names and flags must be unique").
			WithSuggestion("Each capability needs a flag and at least one alias").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every scalar key with viper so AutomaticEnv can
// override it.
func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("host.target", defaults.Host.Target)
	v.SetDefault("host.plugin_dirs", defaults.Host.PluginDirs)
	v.SetDefault("host.engine_dir", defaults.Host.EngineDir)
	v.SetDefault("host.project_dir", defaults.Host.ProjectDir)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// resolveConfigFile picks the config file to load: the explicit path
// exclusively, else <config dir>/config.cue, else ./capgate.cue. An empty
// result means defaults only.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'capgate config init' to create a configuration file").
				WithIssue(issue.ConfigNotFoundId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cuePath, err := DefaultConfigPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(cuePath) {
		return cuePath, nil
	}

	localPath := LocalConfigFileName
	if opts.WorkDir != "" {
		localPath = filepath.Join(opts.WorkDir, LocalConfigFileName)
	}
	if fileExists(localPath) {
		return localPath, nil
	}
	return "", nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'capgate config dump' for the schema").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := parseCUE(data, path)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// compiledSchema compiles the embedded #Config once per process.
var compiledSchema = sync.OnceValues(func() (*cueutil.Schema, error) {
	return cueutil.Compile([]byte(configSchema), "#Config")
})

// parseCUE validates data against #Config and decodes it into a map.
// Concrete(false) because every config field is optional.
func parseCUE(data []byte, path string) (*map[string]any, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	m, err := cueutil.Decode[map[string]any](schema, data,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ValidateCUE checks data against the schema without loading it.
func ValidateCUE(data []byte, path string) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	return schema.Check(data, cueutil.WithFilename(path), cueutil.WithConcrete(false))
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config to path unless a file is
// already there (or force is set). It reports whether a file was written.
func CreateDefaultConfig(path string, force bool) (bool, error) {
	if !force && fileExists(path) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// capgate configuration file\n")
	sb.WriteString("// Paths may reference environment variables ($ENGINE_ROOT) and ~.\n\n")

	sb.WriteString("host: {\n")
	fmt.Fprintf(&sb, "\ttarget: %q\n", cfg.Host.Target)
	sb.WriteString("\tplugin_dirs: [")
	for i, dir := range cfg.Host.PluginDirs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", dir)
	}
	sb.WriteString("]\n")
	if cfg.Host.EngineDir != "" {
		fmt.Fprintf(&sb, "\tengine_dir: %q\n", cfg.Host.EngineDir)
	}
	if cfg.Host.ProjectDir != "" {
		fmt.Fprintf(&sb, "\tproject_dir: %q\n", cfg.Host.ProjectDir)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nmodules: [\n")
	for _, m := range cfg.Modules {
		writeModuleCUE(&sb, m)
	}
	sb.WriteString("]\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeModuleCUE(sb *strings.Builder, m ModuleConfig) {
	sb.WriteString("\t{\n")
	fmt.Fprintf(sb, "\t\tname: %q\n", m.Name)
	fmt.Fprintf(sb, "\t\tcomponent_dir: %q\n", m.ComponentDir)
	writeStringList(sb, "public_dependencies", m.PublicDependencies)
	writeStringList(sb, "private_dependencies", m.PrivateDependencies)
	writeStringList(sb, "platforms", m.Platforms)
	if len(m.Capabilities) > 0 {
		sb.WriteString("\t\tcapabilities: [\n")
		for _, c := range m.Capabilities {
			sb.WriteString("\t\t\t{\n")
			if c.Name != "" {
				fmt.Fprintf(sb, "\t\t\t\tname: %q\n", c.Name)
			}
			fmt.Fprintf(sb, "\t\t\t\tflag: %q\n", c.Flag)
			if c.Visibility != "" {
				fmt.Fprintf(sb, "\t\t\t\tvisibility: %q\n", c.Visibility)
			}
			sb.WriteString("\t\t\t\taliases: [")
			for i, a := range c.Aliases {
				if i > 0 {
					sb.WriteString(", ")
				}
				if a.Dependency != "" {
					fmt.Fprintf(sb, "{name: %q, dependency: %q}", a.Name, a.Dependency)
				} else {
					fmt.Fprintf(sb, "{name: %q}", a.Name)
				}
			}
			sb.WriteString("]\n")
			sb.WriteString("\t\t\t},\n")
		}
		sb.WriteString("\t\t]\n")
	}
	writeStringList(sb, "platform_flags", m.PlatformFlags)
	if f := m.Fallback; f != nil {
		sb.WriteString("\t\tfallback: {\n")
		if f.ThirdPartyDir != "" {
			fmt.Fprintf(sb, "\t\t\tthird_party_dir: %q\n", f.ThirdPartyDir)
		}
		if f.Leaf != "" {
			fmt.Fprintf(sb, "\t\t\tleaf: %q\n", f.Leaf)
		}
		if f.Visibility != "" {
			fmt.Fprintf(sb, "\t\t\tvisibility: %q\n", f.Visibility)
		}
		sb.WriteString("\t\t}\n")
	}
	sb.WriteString("\t},\n")
}

func writeStringList[S ~string](sb *strings.Builder, key string, values []S) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "\t\t%s: [", key)
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", string(v))
	}
	sb.WriteString("]\n")
}
