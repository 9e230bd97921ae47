// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/invowk/capgate/pkg/platform"
)

const (
	// DefaultThirdPartyDir is the intermediate directory under the component.
	DefaultThirdPartyDir = "ThirdParty"
	// DefaultLeaf is the fallback directory created under DefaultThirdPartyDir.
	DefaultLeaf = "ImGuiColorTextEdit"
	// DefaultDirPerm is the permission used for created directories.
	DefaultDirPerm fs.FileMode = 0o755
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid provision config")

type (
	// Config holds the fallback directory layout.
	Config struct {
		// ThirdPartyDir is the directory created directly under the component.
		// Default: ThirdParty
		ThirdPartyDir string

		// Leaf is the directory created under ThirdPartyDir and registered as
		// an include path.
		// Default: ImGuiColorTextEdit
		Leaf string

		// DirPerm is the permission for created directories (before umask).
		// Default: 0755
		DirPerm fs.FileMode
	}

	// Option is a functional option for configuring a Config.
	Option func(*Config)

	// InvalidConfigError is returned when a directory name cannot be used.
	InvalidConfigError struct {
		Field  string
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ThirdPartyDir: DefaultThirdPartyDir,
		Leaf:          DefaultLeaf,
		DirPerm:       DefaultDirPerm,
	}
}

// WithThirdPartyDir returns an Option that sets ThirdPartyDir on the config.
func WithThirdPartyDir(name string) Option {
	return func(c *Config) {
		c.ThirdPartyDir = name
	}
}

// WithLeaf returns an Option that sets Leaf on the config.
func WithLeaf(name string) Option {
	return func(c *Config) {
		c.Leaf = name
	}
}

// WithDirPerm returns an Option that sets DirPerm on the config.
func WithDirPerm(perm fs.FileMode) Option {
	return func(c *Config) {
		c.DirPerm = perm
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that both directory names are single, portable path
// segments. Windows reserved device names are rejected on every platform so a
// configuration stays valid when the host builds for Windows.
func (c *Config) Validate() error {
	if err := validateDirName("third_party_dir", c.ThirdPartyDir); err != nil {
		return err
	}
	if err := validateDirName("leaf", c.Leaf); err != nil {
		return err
	}
	if c.DirPerm&fs.ModePerm == 0 {
		return &InvalidConfigError{Field: "dir_perm", Value: c.DirPerm.String(), Reason: "must grant some permission"}
	}
	return nil
}

func validateDirName(field, name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidConfigError{Field: field, Value: name, Reason: "must be non-empty"}
	case name == "." || name == "..":
		return &InvalidConfigError{Field: field, Value: name, Reason: "must not be a relative reference"}
	case strings.ContainsAny(name, `/\`):
		return &InvalidConfigError{Field: field, Value: name, Reason: "must not contain path separators"}
	case platform.IsWindowsReservedName(name):
		return &InvalidConfigError{Field: field, Value: name, Reason: "is a reserved device name on Windows"}
	}
	return nil
}
