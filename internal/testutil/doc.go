// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* helpers for directory layouts, it provides
// afero filesystem wrappers: CountingFs records every path a component reads,
// and FaultFs injects errors for chosen paths.
package testutil
