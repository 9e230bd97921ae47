// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/capgate/pkg/fspath"
	"github.com/invowk/capgate/pkg/types"
)

// ErrProvisionFailed is the sentinel error wrapped by Error.
var ErrProvisionFailed = errors.New("failed to provision fallback directory")

type (
	// Provisioner guarantees that a component's fallback directory exists.
	Provisioner interface {
		// Provision ensures <componentDir>/<third-party>/<leaf> exists and
		// returns its path.
		Provision(componentDir types.FilesystemPath) (*Result, error)
	}

	// Result contains the output of a provisioning operation.
	Result struct {
		// Path is the fallback leaf directory.
		Path types.FilesystemPath

		// Created lists the directories this call created, outermost first.
		// Empty when everything already existed.
		Created []types.FilesystemPath
	}

	// Error reports the path that could not be provisioned.
	Error struct {
		Path types.FilesystemPath
		Err  error
	}

	// DirProvisioner creates fallback directories on an afero filesystem.
	DirProvisioner struct {
		config *Config
		fs     afero.Fs
		logger *log.Logger
	}

	// ProvisionerOption configures a DirProvisioner.
	ProvisionerOption func(*DirProvisioner)
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrProvisionFailed.Error(), e.Path, e.Err)
}

// Unwrap returns both ErrProvisionFailed and the underlying cause.
func (e *Error) Unwrap() []error { return []error{ErrProvisionFailed, e.Err} }

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) ProvisionerOption {
	return func(p *DirProvisioner) {
		p.fs = fsys
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ProvisionerOption {
	return func(p *DirProvisioner) {
		p.logger = logger
	}
}

// NewDirProvisioner creates a DirProvisioner. A nil config uses DefaultConfig.
func NewDirProvisioner(cfg *Config, opts ...ProvisionerOption) *DirProvisioner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p := &DirProvisioner{
		config: cfg,
		fs:     afero.NewOsFs(),
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "provision"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the provisioner's configuration.
func (p *DirProvisioner) Config() *Config { return p.config }

// Path returns the fallback leaf for componentDir without touching the disk.
func (p *DirProvisioner) Path(componentDir types.FilesystemPath) types.FilesystemPath {
	return fspath.JoinStr(componentDir, p.config.ThirdPartyDir, p.config.Leaf)
}

// Provision ensures the fallback leaf exists, creating every missing level
// (including the component directory itself) one directory at a time.
func (p *DirProvisioner) Provision(componentDir types.FilesystemPath) (*Result, error) {
	if err := componentDir.Validate(); err != nil {
		return nil, &Error{Path: componentDir, Err: err}
	}
	if err := p.config.Validate(); err != nil {
		return nil, &Error{Path: componentDir, Err: err}
	}

	leaf := fspath.Clean(p.Path(componentDir))

	missing, err := p.missingLevels(leaf)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: leaf}
	for _, dir := range missing {
		created, err := p.mkdir(dir)
		if err != nil {
			return nil, err
		}
		if created {
			result.Created = append(result.Created, dir)
			p.logger.Info("created directory", "path", dir)
		}
	}

	if len(result.Created) == 0 {
		p.logger.Info("using existing fallback directory", "path", leaf)
	}
	return result, nil
}

// missingLevels walks up from leaf until it finds an existing directory and
// returns the missing levels outermost first.
func (p *DirProvisioner) missingLevels(leaf types.FilesystemPath) ([]types.FilesystemPath, error) {
	var missing []types.FilesystemPath
	for dir := leaf; ; {
		info, err := p.fs.Stat(string(dir))
		switch {
		case err == nil && info.IsDir():
			slices.Reverse(missing)
			return missing, nil
		case err == nil:
			return nil, &Error{Path: dir, Err: fmt.Errorf("exists and is not a directory")}
		case !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR):
			return nil, &Error{Path: dir, Err: err}
		}

		missing = append(missing, dir)
		parent := fspath.Dir(dir)
		if parent == dir {
			slices.Reverse(missing)
			return missing, nil
		}
		dir = parent
	}
}

// mkdir creates a single directory. A directory created concurrently by
// someone else is accepted.
func (p *DirProvisioner) mkdir(dir types.FilesystemPath) (bool, error) {
	err := p.fs.Mkdir(string(dir), p.config.DirPerm)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := p.fs.Stat(string(dir)); statErr == nil && info.IsDir() {
			return false, nil
		}
	}
	return false, &Error{Path: dir, Err: err}
}
