// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"slices"

	"github.com/invowk/capgate/pkg/platform"
)

// Gate decides whether capability probing runs for a target platform.
// The zero Gate allows nothing.
type Gate struct {
	allowed platform.Set
}

// NewGate returns a Gate allowing exactly the given targets.
func NewGate(targets ...platform.Target) Gate {
	set := make(platform.Set, 0, len(targets))
	for _, t := range targets {
		if !set.Contains(t) {
			set = append(set, t)
		}
	}
	return Gate{allowed: set}
}

// Allows reports whether probing runs for target.
func (g Gate) Allows(target platform.Target) bool {
	return g.allowed.Contains(target)
}

// Targets returns the allowed targets in declaration order.
func (g Gate) Targets() []platform.Target {
	return slices.Clone(g.allowed)
}
