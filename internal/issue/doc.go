// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions, and may link to a catalog Issue whose Markdown page is rendered
// with glamour by the CLI for configuration and provisioning failures.
package issue
