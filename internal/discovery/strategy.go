// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"slices"
)

// Strategies in precedence order.
const (
	StrategyDirect        Strategy = "direct"
	StrategyNested        Strategy = "nested"
	StrategyEngine        Strategy = "engine"
	StrategyProjectDirect Strategy = "project-direct"
	StrategyProjectFuzzy  Strategy = "project-fuzzy"
	StrategySiblingFuzzy  Strategy = "sibling-fuzzy"
)

// Matching kinds.
const (
	// KindDirectChild matches <root>/<name>.
	KindDirectChild MatchKind = "direct-child"
	// KindNestedSource matches <root>/<name>/Source/ThirdParty.
	KindNestedSource MatchKind = "nested-source"
	// KindSubstringFuzzy matches any subdirectory of <root> whose name
	// contains <name>.
	KindSubstringFuzzy MatchKind = "substring-fuzzy"
)

// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
var ErrInvalidStrategy = errors.New("invalid probe strategy")

var strategyOrder = []Strategy{
	StrategyDirect,
	StrategyNested,
	StrategyEngine,
	StrategyProjectDirect,
	StrategyProjectFuzzy,
	StrategySiblingFuzzy,
}

type (
	// Strategy names the rule that produced a candidate root. It is reported
	// back on a successful Result.
	Strategy string

	// MatchKind is how a candidate root is probed for a name.
	MatchKind string

	// InvalidStrategyError is returned for an unknown strategy name.
	InvalidStrategyError struct {
		Value Strategy
	}
)

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid probe strategy %q", e.Value)
}

// Unwrap returns ErrInvalidStrategy for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// Strategies returns all strategies in precedence order.
func Strategies() []Strategy {
	return slices.Clone(strategyOrder)
}

// String returns the strategy name.
func (s Strategy) String() string { return string(s) }

// Validate returns an error if s is not a known strategy.
func (s Strategy) Validate() error {
	if !slices.Contains(strategyOrder, s) {
		return &InvalidStrategyError{Value: s}
	}
	return nil
}

// Rank returns the precedence of s, lowest first. Unknown strategies rank last.
func (s Strategy) Rank() int {
	if i := slices.Index(strategyOrder, s); i >= 0 {
		return i
	}
	return len(strategyOrder)
}

// Kind returns how roots produced by s are probed.
func (s Strategy) Kind() MatchKind {
	switch s {
	case StrategyNested:
		return KindNestedSource
	case StrategyProjectFuzzy, StrategySiblingFuzzy:
		return KindSubstringFuzzy
	default:
		return KindDirectChild
	}
}

// IsFuzzy reports whether a match under s may be a substring false positive.
func (s Strategy) IsFuzzy() bool {
	return s.Kind() == KindSubstringFuzzy
}

// checksSourceDir reports whether fuzzy enumeration also accepts
// <subdir>/Source/<name> for subdirectories whose name does not match.
func (s Strategy) checksSourceDir() bool {
	return s == StrategyProjectFuzzy
}
