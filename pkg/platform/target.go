// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Known build target platforms.
const (
	TargetWin64      Target = "Win64"
	TargetLinux      Target = "Linux"
	TargetLinuxArm64 Target = "LinuxArm64"
	TargetMac        Target = "Mac"
	TargetAndroid    Target = "Android"
	TargetIOS        Target = "IOS"
)

// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
var ErrInvalidTarget = errors.New("invalid target platform")

var knownTargets = []Target{
	TargetWin64, TargetLinux, TargetLinuxArm64, TargetMac, TargetAndroid, TargetIOS,
}

type (
	// Target identifies the platform a component is built for.
	Target string

	// Set is an ordered collection of targets, used as a platform allow-list.
	Set []Target

	// InvalidTargetError is returned when a target name is not recognized.
	InvalidTargetError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	names := make([]string, len(knownTargets))
	for i, t := range knownTargets {
		names[i] = string(t)
	}
	return fmt.Sprintf("invalid target platform %q (known: %s)", e.Value, strings.Join(names, ", "))
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// String returns the target name.
func (t Target) String() string { return string(t) }

// Validate returns an error if the target is not one of the known platforms.
func (t Target) Validate() error {
	if !slices.Contains(knownTargets, t) {
		return &InvalidTargetError{Value: string(t)}
	}
	return nil
}

// ParseTarget resolves a target name case-insensitively ("win64" -> Win64).
func ParseTarget(s string) (Target, error) {
	for _, t := range knownTargets {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", &InvalidTargetError{Value: s}
}

// ParseSet parses every name in names. The first invalid name aborts parsing.
func ParseSet(names []string) (Set, error) {
	set := make(Set, 0, len(names))
	for _, n := range names {
		t, err := ParseTarget(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(set, t) {
			set = append(set, t)
		}
	}
	return set, nil
}

// Contains reports whether t is a member of the set.
func (s Set) Contains(t Target) bool {
	return slices.Contains(s, t)
}

// Current returns the target that corresponds to the host this process runs on.
func Current() Target {
	return targetFor(runtime.GOOS, runtime.GOARCH)
}

func targetFor(goos, goarch string) Target {
	switch goos {
	case Windows:
		return TargetWin64
	case Darwin:
		return TargetMac
	case Linux:
		if goarch == "arm64" {
			return TargetLinuxArm64
		}
		return TargetLinux
	case "android":
		return TargetAndroid
	case "ios":
		return TargetIOS
	default:
		return TargetLinux
	}
}
