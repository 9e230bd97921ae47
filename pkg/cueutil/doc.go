// SPDX-License-Identifier: MPL-2.0

// Package cueutil checks capgate configuration documents against an embedded
// CUE schema. The schema is compiled once with Compile; each document is then
// unified with the selected definition, validated and decoded with Decode.
//
// Errors are reported with JSON-path prefixes (modules[0].capabilities[1].flag)
// so users can find the offending field quickly.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	s, err := cueutil.Compile(schema, "#Config")
//	...
//	m, err := cueutil.Decode[map[string]any](s, data,
//	    cueutil.WithFilename("capgate.cue"),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
