// SPDX-License-Identifier: MPL-2.0

// Package provision guarantees that a component's fallback third-party
// directory exists on disk.
//
// The main entry point is the Provisioner interface, implemented by DirProvisioner:
//
//	provisioner := provision.NewDirProvisioner(provision.DefaultConfig())
//	result, err := provisioner.Provision(componentDir)
//	// result.Path is <componentDir>/ThirdParty/ImGuiColorTextEdit
//
// Provisioning is idempotent: existing directories are reused and only the
// missing levels are created. A path component that exists as something other
// than a directory is an error.
package provision
