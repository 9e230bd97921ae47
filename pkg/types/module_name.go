// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
var ErrInvalidModuleName = errors.New("invalid module name")

type (
	// ModuleName names a build module: a capability alias being probed, a
	// dependency added to a descriptor, or the module being configured.
	// Module names are single path segments, so they can be joined onto a
	// candidate root without escaping it.
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName is empty, contains
	// whitespace, or contains a path separator or dot segment.
	InvalidModuleNameError struct {
		Value  ModuleName
		Reason string
	}
)

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// Validate returns an error if the name cannot be used as a single path segment.
func (n ModuleName) Validate() error {
	s := string(n)
	switch {
	case s == "":
		return &InvalidModuleNameError{Value: n, Reason: "must be non-empty"}
	case strings.TrimSpace(s) != s || strings.ContainsAny(s, " \t\r\n"):
		return &InvalidModuleNameError{Value: n, Reason: "must not contain whitespace"}
	case strings.ContainsAny(s, `/\`):
		return &InvalidModuleNameError{Value: n, Reason: "must not contain path separators"}
	case s == "." || s == "..":
		return &InvalidModuleNameError{Value: n, Reason: "must not be a dot segment"}
	}
	return nil
}

// Error implements the error interface for InvalidModuleNameError.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidModuleName for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }
