// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so probe and provisioning code can
// stay typed from host input to descriptor output.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/invowk/capgate/pkg/types"
)

// Join wraps filepath.Join for typed path elements.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// JoinStr joins a typed base path with raw segments, such as literal layout
// constants ("Plugins", "Source") or names read from a directory listing.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// JoinName joins module names onto a typed base path.
func JoinName(base types.FilesystemPath, names ...types.ModuleName) types.FilesystemPath {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return JoinStr(base, parts...)
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Base wraps filepath.Base for FilesystemPath.
func Base(p types.FilesystemPath) string {
	return filepath.Base(string(p))
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Parent returns the absolute, cleaned parent of p. Unlike Dir, a trailing
// separator or a relative "." input still yields the real parent directory.
func Parent(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := Abs(p)
	if err != nil {
		return "", err
	}
	return Dir(Clean(abs)), nil
}
