// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/afero"
)

type (
	// CountingFs wraps an afero.Fs and records the path of every Stat,
	// LstatIfPossible, Open and OpenFile call. Directory listings go through
	// Open, so they are counted as well.
	CountingFs struct {
		afero.Fs

		mu    sync.Mutex
		paths []string
	}

	// FaultFs wraps an afero.Fs and fails Stat and Open for selected paths
	// with a fixed error.
	FaultFs struct {
		afero.Fs

		faults map[string]error
	}
)

// NewCountingFs wraps base.
func NewCountingFs(base afero.Fs) *CountingFs {
	return &CountingFs{Fs: base}
}

// Calls returns how many read operations have been made.
func (c *CountingFs) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

// Paths returns the recorded paths in call order.
func (c *CountingFs) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.paths)
}

// Touched reports whether any recorded path equals path.
func (c *CountingFs) Touched(path string) bool {
	return slices.Contains(c.Paths(), filepath.Clean(path))
}

func (c *CountingFs) record(name string) {
	c.mu.Lock()
	c.paths = append(c.paths, filepath.Clean(name))
	c.mu.Unlock()
}

// Stat records name and delegates.
func (c *CountingFs) Stat(name string) (os.FileInfo, error) {
	c.record(name)
	return c.Fs.Stat(name)
}

// Open records name and delegates.
func (c *CountingFs) Open(name string) (afero.File, error) {
	c.record(name)
	return c.Fs.Open(name)
}

// LstatIfPossible records name and delegates when the base filesystem
// supports Lstat. Otherwise it falls back to Stat and reports false.
func (c *CountingFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	c.record(name)
	if l, ok := c.Fs.(afero.Lstater); ok {
		return l.LstatIfPossible(name)
	}
	info, err := c.Fs.Stat(name)
	return info, false, err
}

// OpenFile records name and delegates.
func (c *CountingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.record(name)
	return c.Fs.OpenFile(name, flag, perm)
}

// NewFaultFs wraps base, failing operations on the given paths.
func NewFaultFs(base afero.Fs, faults map[string]error) *FaultFs {
	cleaned := make(map[string]error, len(faults))
	for p, err := range faults {
		cleaned[filepath.Clean(p)] = err
	}
	return &FaultFs{Fs: base, faults: cleaned}
}

func (f *FaultFs) fault(op, name string) error {
	if err, ok := f.faults[filepath.Clean(name)]; ok {
		return &os.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

// Stat fails for faulted paths and delegates otherwise.
func (f *FaultFs) Stat(name string) (os.FileInfo, error) {
	if err := f.fault("stat", name); err != nil {
		return nil, err
	}
	return f.Fs.Stat(name)
}

// Open fails for faulted paths and delegates otherwise.
func (f *FaultFs) Open(name string) (afero.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, err
	}
	return f.Fs.Open(name)
}

// Mkdir fails for faulted paths and delegates otherwise.
func (f *FaultFs) Mkdir(name string, perm os.FileMode) error {
	if err := f.fault("mkdir", name); err != nil {
		return err
	}
	return f.Fs.Mkdir(name, perm)
}
