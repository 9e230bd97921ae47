// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invowk/capgate/pkg/types"
)

// ErrSealed is returned by every mutator once the descriptor has been sealed.
var ErrSealed = errors.New("descriptor is sealed")

type (
	// Flag is one feature definition. It is always rendered with an explicit
	// value: KEY=1 or KEY=0.
	Flag struct {
		Key     types.DefinitionKey
		Enabled bool
	}

	// Descriptor accumulates the build settings of a single module during one
	// configuration pass. The zero value is not usable; call New.
	Descriptor struct {
		module types.ModuleName

		publicDeps  []types.ModuleName
		privateDeps []types.ModuleName
		deps        map[types.ModuleName]Visibility

		flags     []Flag
		flagIndex map[types.DefinitionKey]int

		publicIncludes  []types.FilesystemPath
		privateIncludes []types.FilesystemPath
		includes        map[types.FilesystemPath]Visibility

		sealed bool
	}
)

// Value returns "1" or "0".
func (f Flag) Value() string {
	if f.Enabled {
		return "1"
	}
	return "0"
}

// Definition returns the flag as KEY=V.
func (f Flag) Definition() string {
	return string(f.Key) + "=" + f.Value()
}

// New creates an empty descriptor for module.
func New(module types.ModuleName) *Descriptor {
	return &Descriptor{
		module:    module,
		deps:      make(map[types.ModuleName]Visibility),
		flagIndex: make(map[types.DefinitionKey]int),
		includes:  make(map[types.FilesystemPath]Visibility),
	}
}

// Module returns the name of the module this descriptor configures.
func (d *Descriptor) Module() types.ModuleName { return d.module }

// AddDependency appends name to the dependency list of the given visibility.
// It reports false without error when name is already present with either
// visibility.
func (d *Descriptor) AddDependency(vis Visibility, name types.ModuleName) (bool, error) {
	if d.sealed {
		return false, fmt.Errorf("%w: cannot add dependency %q to %q", ErrSealed, name, d.module)
	}
	if err := vis.Validate(); err != nil {
		return false, err
	}
	if err := name.Validate(); err != nil {
		return false, err
	}
	if _, ok := d.deps[name]; ok {
		return false, nil
	}

	d.deps[name] = vis
	if vis == VisibilityPublic {
		d.publicDeps = append(d.publicDeps, name)
	} else {
		d.privateDeps = append(d.privateDeps, name)
	}
	return true, nil
}

// AddDependencies adds names in order with the given visibility.
func (d *Descriptor) AddDependencies(vis Visibility, names ...types.ModuleName) error {
	for _, name := range names {
		if _, err := d.AddDependency(vis, name); err != nil {
			return err
		}
	}
	return nil
}

// Dependency reports the visibility of name, if present.
func (d *Descriptor) Dependency(name types.ModuleName) (Visibility, bool) {
	vis, ok := d.deps[name]
	return vis, ok
}

// Dependencies returns a copy of the dependency list of the given visibility.
func (d *Descriptor) Dependencies(vis Visibility) []types.ModuleName {
	if vis == VisibilityPublic {
		return slices.Clone(d.publicDeps)
	}
	return slices.Clone(d.privateDeps)
}

// SetFlag sets key to 1 or 0. Setting an existing key changes its value in
// place, keeping its original position.
func (d *Descriptor) SetFlag(key types.DefinitionKey, enabled bool) error {
	if d.sealed {
		return fmt.Errorf("%w: cannot set flag %q on %q", ErrSealed, key, d.module)
	}
	if err := key.Validate(); err != nil {
		return err
	}

	if i, ok := d.flagIndex[key]; ok {
		d.flags[i].Enabled = enabled
		return nil
	}
	d.flagIndex[key] = len(d.flags)
	d.flags = append(d.flags, Flag{Key: key, Enabled: enabled})
	return nil
}

// Flag returns the flag stored under key.
func (d *Descriptor) Flag(key types.DefinitionKey) (Flag, bool) {
	i, ok := d.flagIndex[key]
	if !ok {
		return Flag{}, false
	}
	return d.flags[i], true
}

// Flags returns a copy of all flags in insertion order.
func (d *Descriptor) Flags() []Flag {
	return slices.Clone(d.flags)
}

// AddIncludePath registers path with the given visibility. It reports false
// without error when path is already registered.
func (d *Descriptor) AddIncludePath(vis Visibility, path types.FilesystemPath) (bool, error) {
	if d.sealed {
		return false, fmt.Errorf("%w: cannot add include path %q to %q", ErrSealed, path, d.module)
	}
	if err := vis.Validate(); err != nil {
		return false, err
	}
	if err := path.Validate(); err != nil {
		return false, err
	}
	if _, ok := d.includes[path]; ok {
		return false, nil
	}

	d.includes[path] = vis
	if vis == VisibilityPublic {
		d.publicIncludes = append(d.publicIncludes, path)
	} else {
		d.privateIncludes = append(d.privateIncludes, path)
	}
	return true, nil
}

// IncludePaths returns a copy of the include paths of the given visibility.
func (d *Descriptor) IncludePaths(vis Visibility) []types.FilesystemPath {
	if vis == VisibilityPublic {
		return slices.Clone(d.publicIncludes)
	}
	return slices.Clone(d.privateIncludes)
}

// Seal freezes the descriptor. Sealing twice is a no-op.
func (d *Descriptor) Seal() { d.sealed = true }

// Sealed reports whether Seal has been called.
func (d *Descriptor) Sealed() bool { return d.sealed }
