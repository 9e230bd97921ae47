// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "capgate.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		original := errors.New("disk on fire")
		err := FormatError(original, "capgate.cue")
		if !strings.Contains(err.Error(), "capgate.cue") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
		if !errors.Is(err, original) {
			t.Errorf("error should wrap the original error, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{"empty path", []string{}, ""},
		{"single element", []string{"host"}, "host"},
		{"nested path", []string{"host", "engine_dir"}, "host.engine_dir"},
		{"array index", []string{"modules", "0", "name"}, "modules[0].name"},
		{
			"nested arrays",
			[]string{"modules", "1", "capabilities", "0", "aliases", "2"},
			"modules[1].capabilities[0].aliases[2]",
		},
		{"leading number is a field", []string{"0", "name"}, "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "capgate.cue"); err != nil {
		t.Errorf("data at exact limit: expected nil, got %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "capgate.cue")
	if err == nil {
		t.Fatal("expected error for oversized data")
	}
	for _, want := range []string{"capgate.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should contain %q, got: %v", want, err)
		}
	}
}
