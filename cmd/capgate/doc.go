// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the capgate CLI commands.
//
// Every command handler receives an *App, the composition root that owns the
// config provider, the output writers and the configurator factory. Commands
// load configuration through the provider, apply host overrides from flags and
// delegate to internal/rules; rendering stays in this package.
package cmd
