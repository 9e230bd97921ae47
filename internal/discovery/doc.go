// SPDX-License-Identifier: MPL-2.0

// Package discovery resolves optional build capabilities against the
// directories a host build system knows about.
//
// A Layout (plugin directories, engine, project and component directories)
// expands into an ordered list of CandidateRoot values. Each root carries a
// Strategy, and Resolver.Resolve walks the roots in order and stops at the
// first one that contains the capability:
//
//	direct          <pluginDir>/<name>
//	nested          <pluginDir>/<name>/Source/ThirdParty
//	engine          <engineDir>/Plugins/<name>
//	project-direct  <projectDir>/Plugins/<name>
//	project-fuzzy   any <projectDir>/Plugins/<sub> whose name contains <name>,
//	                or that has <sub>/Source/<name>
//	sibling-fuzzy   any sibling of the component directory whose name
//	                contains <name>
//
// A missing directory is a miss, never an error. Unexpected filesystem errors
// are logged, returned as warning Diagnostics on the Result and treated as a
// miss for that root only. Resolve never returns an error.
//
// The fuzzy strategies match on plain substring containment, so a plugin named
// "NotImGuiAtAll" satisfies a probe for "ImGui". Callers that need an exact
// match can check Result.Strategy.IsFuzzy.
package discovery
