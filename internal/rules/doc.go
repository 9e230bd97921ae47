// SPDX-License-Identifier: MPL-2.0

// Package rules turns a module's build rules into a sealed build descriptor.
//
// One configuration pass per module runs synchronously and in this order:
// seed the base dependencies, consult the platform Gate, resolve each
// capability's aliases through a Prober, apply the outcome to the descriptor,
// set the platform flags, provision and register the fallback directory, and
// seal. Passes share no state, so running the same pass twice over an
// unchanged filesystem yields equal descriptors.
package rules
