// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/invowk/capgate/pkg/types"
)

// DefaultDepth registers each root and two levels below it, which covers every
// path a capability probe inspects (<root>/<name>/Source/ThirdParty and
// <root>/<subdir>/Source/<name>).
const DefaultDepth = 2

// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are directories watched Depth levels deep. Roots that do not
		// exist are skipped.
		Roots []types.FilesystemPath

		// Files are individual files to watch, such as the configuration
		// file. Other entries of their directories are ignored.
		Files []types.FilesystemPath

		// Depth is the number of directory levels registered below each root.
		// Zero watches only the roots' direct entries.
		Depth int

		// Ignore are additional doublestar patterns, relative to the root an
		// event belongs to, that never trigger callbacks. They are merged
		// with the built-in default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the sorted,
		// deduplicated absolute paths that changed. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger defaults to a stderr logger prefixed "watch".
		Logger *log.Logger
	}

	// InvalidWatchConfigError collects every problem found in a Config.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

// Validate checks paths, depth and glob syntax.
func (c Config) Validate() error {
	var errs []error
	for i, root := range c.Roots {
		if err := root.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("roots[%d]: %w", i, err))
		}
	}
	for i, file := range c.Files {
		if err := file.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("files[%d]: %w", i, err))
		}
	}
	if c.Depth < 0 {
		errs = append(errs, fmt.Errorf("depth %d: must not be negative", c.Depth))
	}
	for _, pat := range c.Ignore {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid ignore pattern %q", pat))
		}
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("%s: %v", ErrInvalidWatchConfig, e.FieldErrors[0])
	}
	return fmt.Sprintf("%s: %d field errors: %v", ErrInvalidWatchConfig, len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }
