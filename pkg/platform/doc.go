// SPDX-License-Identifier: MPL-2.0

// Package platform models build target platforms and host operating systems.
//
// A Target is the platform a component is being built for ("Win64", "Linux",
// "Mac", ...). It is independent of the host the configuration pass runs on,
// which is described by the GOOS constants. The package also knows about
// Windows reserved file names, since directories created for a Win64 build
// must be representable on Windows.
package platform
