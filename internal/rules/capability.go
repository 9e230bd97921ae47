// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"errors"
	"fmt"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/pkg/types"
)

// ErrInvalidCapability is the sentinel error wrapped by InvalidCapabilityError.
var ErrInvalidCapability = errors.New("invalid capability")

type (
	// Alias is one directory name a capability may be installed under.
	Alias struct {
		// Name is the directory name probed on disk.
		Name types.ModuleName
		// Dependency is the module added to the descriptor when Name is found.
		// Empty means Name.
		Dependency types.ModuleName
	}

	// Capability is an optional feature with ranked aliases, most preferred
	// first, and the flag that records whether it was found.
	Capability struct {
		Name       string
		Flag       types.DefinitionKey
		Visibility descriptor.Visibility
		Aliases    []Alias
	}

	// InvalidCapabilityError is returned when a Capability cannot be applied.
	InvalidCapabilityError struct {
		Flag   types.DefinitionKey
		Reason error
	}
)

// DependencyName returns the module to register when the alias is found.
func (a Alias) DependencyName() types.ModuleName {
	if a.Dependency == "" {
		return a.Name
	}
	return a.Dependency
}

// Label returns Name, falling back to the flag.
func (c Capability) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.Flag)
}

// Validate checks the flag, the visibility and every alias.
func (c Capability) Validate() error {
	if err := c.Flag.Validate(); err != nil {
		return &InvalidCapabilityError{Flag: c.Flag, Reason: err}
	}
	if c.Visibility != "" {
		if err := c.Visibility.Validate(); err != nil {
			return &InvalidCapabilityError{Flag: c.Flag, Reason: err}
		}
	}
	if len(c.Aliases) == 0 {
		return &InvalidCapabilityError{Flag: c.Flag, Reason: errors.New("no aliases")}
	}
	for _, a := range c.Aliases {
		if err := a.Name.Validate(); err != nil {
			return &InvalidCapabilityError{Flag: c.Flag, Reason: err}
		}
		if err := a.DependencyName().Validate(); err != nil {
			return &InvalidCapabilityError{Flag: c.Flag, Reason: err}
		}
	}
	return nil
}

// visibility returns the capability's visibility, private when unset.
func (c Capability) visibility() descriptor.Visibility {
	if c.Visibility == "" {
		return descriptor.VisibilityPrivate
	}
	return c.Visibility
}

// Error implements the error interface.
func (e *InvalidCapabilityError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidCapability, e.Flag, e.Reason)
}

// Unwrap returns ErrInvalidCapability and the reason.
func (e *InvalidCapabilityError) Unwrap() []error {
	return []error{ErrInvalidCapability, e.Reason}
}
