// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"github.com/invowk/capgate/pkg/fspath"
	"github.com/invowk/capgate/pkg/types"
)

// Well-known directory names in a host build layout.
const (
	PluginsDirName    = "Plugins"
	SourceDirName     = "Source"
	ThirdPartyDirName = "ThirdParty"
)

type (
	// CandidateRoot is a directory to probe together with the strategy that
	// decides how it is probed.
	CandidateRoot struct {
		Dir      types.FilesystemPath
		Strategy Strategy
	}

	// Layout describes the directories the host knows about. Zero-valued
	// fields are skipped when expanding candidates.
	Layout struct {
		// PluginDirs are additional plugin directories, probed first and in order.
		PluginDirs []types.FilesystemPath
		// EngineDir is the engine installation root; its Plugins directory is probed.
		EngineDir types.FilesystemPath
		// ProjectDir is the project root; its Plugins directory is probed directly and fuzzily.
		ProjectDir types.FilesystemPath
		// ComponentDir is the directory of the component being configured; its
		// siblings are probed fuzzily.
		ComponentDir types.FilesystemPath
	}
)

// Candidates expands the layout into candidate roots in precedence order.
// Each plugin directory contributes a direct root immediately followed by a
// nested root.
func (l Layout) Candidates() []CandidateRoot {
	roots := make([]CandidateRoot, 0, 2*len(l.PluginDirs)+4)

	for _, dir := range l.PluginDirs {
		if dir.IsZero() {
			continue
		}
		roots = append(roots,
			CandidateRoot{Dir: dir, Strategy: StrategyDirect},
			CandidateRoot{Dir: dir, Strategy: StrategyNested},
		)
	}

	if !l.EngineDir.IsZero() {
		roots = append(roots, CandidateRoot{
			Dir:      fspath.JoinStr(l.EngineDir, PluginsDirName),
			Strategy: StrategyEngine,
		})
	}

	if !l.ProjectDir.IsZero() {
		projectPlugins := fspath.JoinStr(l.ProjectDir, PluginsDirName)
		roots = append(roots,
			CandidateRoot{Dir: projectPlugins, Strategy: StrategyProjectDirect},
			CandidateRoot{Dir: projectPlugins, Strategy: StrategyProjectFuzzy},
		)
	}

	if !l.ComponentDir.IsZero() {
		parent, err := fspath.Parent(l.ComponentDir)
		if err != nil {
			parent = fspath.Dir(fspath.Clean(l.ComponentDir))
		}
		roots = append(roots, CandidateRoot{Dir: parent, Strategy: StrategySiblingFuzzy})
	}

	return roots
}
