// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"fmt"

	"github.com/invowk/capgate/internal/config"
	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/pkg/platform"
)

// HostFromConfig builds a Host from the configuration. An empty target means
// the platform capgate runs on.
func HostFromConfig(h config.HostConfig) Host {
	target := h.Target
	if target == "" {
		target = platform.Current()
	}
	return Host{
		Target:     target,
		PluginDirs: h.PluginDirs,
		EngineDir:  h.EngineDir,
		ProjectDir: h.ProjectDir,
	}
}

// ModuleFromConfig builds a ModuleSpec from a module's configuration.
func ModuleFromConfig(m config.ModuleConfig) (ModuleSpec, error) {
	spec := ModuleSpec{
		Name:                m.Name,
		ComponentDir:        m.ComponentDir,
		PublicDependencies:  m.PublicDependencies,
		PrivateDependencies: m.PrivateDependencies,
		Gate:                NewGate(m.Platforms...),
		PlatformFlags:       m.PlatformFlags,
	}

	for _, c := range m.Capabilities {
		vis, err := descriptor.ParseVisibility(string(c.Visibility), descriptor.VisibilityPrivate)
		if err != nil {
			return ModuleSpec{}, fmt.Errorf("module %s: capability %s: %w", m.Name, c.Flag, err)
		}
		capability := Capability{Name: c.Name, Flag: c.Flag, Visibility: vis}
		for _, a := range c.Aliases {
			capability.Aliases = append(capability.Aliases, Alias{Name: a.Name, Dependency: a.Dependency})
		}
		spec.Capabilities = append(spec.Capabilities, capability)
	}

	if m.Fallback != nil {
		vis, err := descriptor.ParseVisibility(string(m.Fallback.Visibility), descriptor.VisibilityPublic)
		if err != nil {
			return ModuleSpec{}, fmt.Errorf("module %s: fallback: %w", m.Name, err)
		}
		spec.Fallback = &Fallback{Config: m.Fallback.ProvisionConfig(), Visibility: vis}
	}

	if err := spec.Validate(); err != nil {
		return ModuleSpec{}, err
	}
	return spec, nil
}
