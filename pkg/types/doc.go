// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the discovery, descriptor
// and rules packages. Each type carries its own validation and a typed error
// that wraps a package-level sentinel for errors.Is checks.
//
// This package is a leaf dependency: it imports only the standard library.
package types
