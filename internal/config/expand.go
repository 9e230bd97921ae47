// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/invowk/capgate/pkg/types"
)

// ErrUnsetVariable is returned when a path references an unset variable.
var ErrUnsetVariable = errors.New("unset variable in path")

// ExpandPaths expands $VAR, ${VAR} and a leading ~ in every host and module
// path of cfg. Referencing an unset variable is an error rather than an
// empty substitution, which would silently point at the filesystem root.
func ExpandPaths(cfg *Config, lookup func(string) (string, bool)) error {
	expand := func(field string, p *types.FilesystemPath) error {
		out, err := ExpandPath(string(*p), lookup)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*p = types.FilesystemPath(out)
		return nil
	}

	for i := range cfg.Host.PluginDirs {
		if err := expand(fmt.Sprintf("host.plugin_dirs[%d]", i), &cfg.Host.PluginDirs[i]); err != nil {
			return err
		}
	}
	if err := expand("host.engine_dir", &cfg.Host.EngineDir); err != nil {
		return err
	}
	if err := expand("host.project_dir", &cfg.Host.ProjectDir); err != nil {
		return err
	}
	for i := range cfg.Modules {
		if err := expand(fmt.Sprintf("modules[%d].component_dir", i), &cfg.Modules[i].ComponentDir); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath expands a single path string. See ExpandPaths.
func ExpandPath(p string, lookup func(string) (string, bool)) (string, error) {
	if p == "" {
		return "", nil
	}

	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, ok := lookup("HOME")
		if !ok || home == "" {
			home, ok = lookup("USERPROFILE")
		}
		if !ok || home == "" {
			return "", fmt.Errorf("%w: %q needs HOME", ErrUnsetVariable, p)
		}
		p = filepath.Join(home, p[1:])
	}

	if !strings.ContainsRune(p, '$') {
		return p, nil
	}

	var missing []string
	out, err := shell.Expand(p, func(name string) string {
		v, ok := lookup(name)
		// The expander also queries internals such as IFS; only report
		// variables the path itself references.
		if !ok && references(p, name) {
			missing = append(missing, name)
		}
		return v
	})
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", p, err)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %q references %s", ErrUnsetVariable, p, strings.Join(missing, ", "))
	}
	return out, nil
}

func references(p, name string) bool {
	return strings.Contains(p, "${"+name) || strings.Contains(p, "$"+name)
}
