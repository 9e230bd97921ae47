// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"fmt"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/discovery"
	"github.com/invowk/capgate/pkg/types"
)

type (
	// Prober resolves a capability name against candidate roots.
	// *discovery.Resolver implements it.
	Prober interface {
		Resolve(name types.ModuleName, roots []discovery.CandidateRoot) discovery.Result
	}

	// Outcome is the decision reached for one capability.
	Outcome struct {
		Capability Capability
		// Found is true when one of the aliases resolved.
		Found bool
		// Alias is the alias that resolved. Zero when Found is false.
		Alias Alias
		// Attempts holds one result per alias probed, in probe order. Aliases
		// after the winning one are never probed.
		Attempts []discovery.Result
		// Skipped is true when the platform gate prevented probing.
		Skipped bool
	}
)

// Match returns the successful result, if any.
func (o Outcome) Match() (discovery.Result, bool) {
	if !o.Found || len(o.Attempts) == 0 {
		return discovery.Result{}, false
	}
	return o.Attempts[len(o.Attempts)-1], true
}

// Diagnostics returns the diagnostics of every attempt, in order.
func (o Outcome) Diagnostics() []discovery.Diagnostic {
	var diags []discovery.Diagnostic
	for _, a := range o.Attempts {
		diags = append(diags, a.Diagnostics...)
	}
	return diags
}

// ResolveCapability probes the capability's aliases in order and stops at the
// first one found anywhere.
func ResolveCapability(prober Prober, c Capability, roots []discovery.CandidateRoot) Outcome {
	out := Outcome{Capability: c}
	for _, alias := range c.Aliases {
		res := prober.Resolve(alias.Name, roots)
		out.Attempts = append(out.Attempts, res)
		if res.Found {
			out.Found = true
			out.Alias = alias
			return out
		}
	}
	return out
}

// SkippedOutcome is the outcome for a capability on a platform the gate rejects.
func SkippedOutcome(c Capability) Outcome {
	return Outcome{Capability: c, Skipped: true}
}

// Apply records the outcome in d. A found capability adds its dependency with
// the capability's visibility and sets the flag to 1; anything else sets the
// flag to 0 and adds nothing.
func Apply(d *descriptor.Descriptor, o Outcome) error {
	c := o.Capability
	if !o.Found {
		if err := d.SetFlag(c.Flag, false); err != nil {
			return fmt.Errorf("capability %s: %w", c.Label(), err)
		}
		return nil
	}
	if _, err := d.AddDependency(c.visibility(), o.Alias.DependencyName()); err != nil {
		return fmt.Errorf("capability %s: %w", c.Label(), err)
	}
	if err := d.SetFlag(c.Flag, true); err != nil {
		return fmt.Errorf("capability %s: %w", c.Label(), err)
	}
	return nil
}
