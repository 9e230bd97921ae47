// SPDX-License-Identifier: MPL-2.0

// Package descriptor holds the build descriptor a configuration pass produces
// for one module: dependency lists, KEY=0|1 feature flags and include paths.
//
// All collections keep insertion order and reject duplicates. Dependencies are
// unique across public and private visibility, so a module can never be both.
// Once Seal is called, every mutator returns ErrSealed.
package descriptor
