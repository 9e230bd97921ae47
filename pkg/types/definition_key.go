// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinitionKey is the sentinel error wrapped by InvalidDefinitionKeyError.
var ErrInvalidDefinitionKey = errors.New("invalid definition key")

type (
	// DefinitionKey is the name of a preprocessor-style feature flag such as
	// "WITH_IMGUI". Keys follow C identifier rules: a letter or underscore
	// followed by letters, digits or underscores.
	DefinitionKey string

	// InvalidDefinitionKeyError is returned when a DefinitionKey is not a
	// valid C identifier.
	InvalidDefinitionKeyError struct {
		Value DefinitionKey
	}
)

// String returns the string representation of the DefinitionKey.
func (k DefinitionKey) String() string { return string(k) }

// Validate returns an error if the key is not a valid C identifier.
func (k DefinitionKey) Validate() error {
	if k == "" {
		return &InvalidDefinitionKeyError{Value: k}
	}
	for i, c := range string(k) {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if !isAlpha && (i == 0 || !isDigit) {
			return &InvalidDefinitionKeyError{Value: k}
		}
	}
	return nil
}

// Error implements the error interface for InvalidDefinitionKeyError.
func (e *InvalidDefinitionKeyError) Error() string {
	return fmt.Sprintf("invalid definition key %q: must be a C identifier", e.Value)
}

// Unwrap returns ErrInvalidDefinitionKey for errors.Is() compatibility.
func (e *InvalidDefinitionKeyError) Unwrap() error { return ErrInvalidDefinitionKey }
