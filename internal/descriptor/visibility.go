// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// VisibilityPublic exposes the entry to dependents of the module.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate keeps the entry internal to the module.
	VisibilityPrivate Visibility = "private"
)

// ErrInvalidVisibility is the sentinel error wrapped by InvalidVisibilityError.
var ErrInvalidVisibility = errors.New("invalid visibility")

type (
	// Visibility selects which half of a dependency or include-path set an
	// entry belongs to.
	Visibility string

	// InvalidVisibilityError is returned when a visibility name is not recognized.
	InvalidVisibilityError struct {
		Value Visibility
	}
)

// Error implements the error interface.
func (e *InvalidVisibilityError) Error() string {
	return fmt.Sprintf("invalid visibility %q (valid: public, private)", e.Value)
}

// Unwrap returns ErrInvalidVisibility for errors.Is() compatibility.
func (e *InvalidVisibilityError) Unwrap() error { return ErrInvalidVisibility }

// ParseVisibility parses a case-insensitive visibility name. The empty string
// yields def.
func ParseVisibility(s string, def Visibility) (Visibility, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	v := Visibility(strings.ToLower(strings.TrimSpace(s)))
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

// String returns the visibility name.
func (v Visibility) String() string { return string(v) }

// Validate returns an error if v is neither public nor private.
func (v Visibility) Validate() error {
	switch v {
	case VisibilityPublic, VisibilityPrivate:
		return nil
	default:
		return &InvalidVisibilityError{Value: v}
	}
}
