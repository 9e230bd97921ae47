// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Target
		wantErr bool
	}{
		{"Win64", TargetWin64, false},
		{"win64", TargetWin64, false},
		{" Linux ", TargetLinux, false},
		{"mac", TargetMac, false},
		{"Win32", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Fatalf("ParseTarget(%q) error = %v, want ErrInvalidTarget", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSet(t *testing.T) {
	t.Parallel()

	set, err := ParseSet([]string{"win64", "Win64", "Linux"})
	if err != nil {
		t.Fatalf("ParseSet() error: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("ParseSet() = %v, want 2 unique targets", set)
	}
	if !set.Contains(TargetWin64) || !set.Contains(TargetLinux) {
		t.Errorf("ParseSet() = %v, want Win64 and Linux", set)
	}
	if set.Contains(TargetMac) {
		t.Error("set should not contain Mac")
	}

	if _, err := ParseSet([]string{"Win64", "Amiga"}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("ParseSet() with unknown target error = %v, want ErrInvalidTarget", err)
	}
}

func TestEmptySetContainsNothing(t *testing.T) {
	t.Parallel()

	var set Set
	if set.Contains(TargetWin64) {
		t.Error("empty set should not contain any target")
	}
}

func TestTargetFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, goarch string
		want         Target
	}{
		{Windows, "amd64", TargetWin64},
		{Darwin, "arm64", TargetMac},
		{Linux, "amd64", TargetLinux},
		{Linux, "arm64", TargetLinuxArm64},
	}

	for _, tt := range tests {
		if got := targetFor(tt.goos, tt.goarch); got != tt.want {
			t.Errorf("targetFor(%q, %q) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}

	if err := Current().Validate(); err != nil {
		t.Errorf("Current() returned an unknown target: %v", err)
	}
}
