// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/invowk/capgate/internal/provision"
	"github.com/invowk/capgate/pkg/platform"
	"github.com/invowk/capgate/pkg/types"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   ColorScheme
		want    bool
		wantErr bool
	}{
		{ColorSchemeAuto, true, false},
		{ColorSchemeDark, true, false},
		{ColorSchemeLight, true, false},
		{"", false, true},
		{"blue", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.value.IsValid()
			if isValid != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.value, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorScheme) {
					t.Errorf("ColorScheme(%q).IsValid() errors = %v, want ErrInvalidColorScheme", tt.value, errs)
				}
			} else if len(errs) > 0 {
				t.Errorf("ColorScheme(%q).IsValid() returned unexpected errors: %v", tt.value, errs)
			}
		})
	}
}

func validModule() ModuleConfig {
	return ModuleConfig{
		Name:         "M",
		ComponentDir: "/m",
		Platforms:    []platform.Target{platform.TargetWin64},
		Capabilities: []CapabilityConfig{{Flag: "WITH_GUI", Aliases: []AliasConfig{{Name: "ImGui"}}}},
	}
}

func TestModuleConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ModuleConfig)
		want   error
	}{
		{"valid", func(*ModuleConfig) {}, nil},
		{"empty name", func(m *ModuleConfig) { m.Name = "" }, types.ErrInvalidModuleName},
		{"blank component", func(m *ModuleConfig) { m.ComponentDir = " " }, types.ErrInvalidFilesystemPath},
		{"bad dependency", func(m *ModuleConfig) { m.PrivateDependencies = []types.ModuleName{"../x"} }, types.ErrInvalidModuleName},
		{"bad target", func(m *ModuleConfig) { m.Platforms = []platform.Target{"Amiga"} }, platform.ErrInvalidTarget},
		{"no aliases", func(m *ModuleConfig) { m.Capabilities[0].Aliases = nil }, ErrInvalidCapabilityConfig},
		{"bad visibility", func(m *ModuleConfig) { m.Capabilities[0].Visibility = "protected" }, ErrInvalidCapabilityConfig},
		{"flag clash", func(m *ModuleConfig) { m.PlatformFlags = []types.DefinitionKey{"WITH_GUI"} }, ErrInvalidModuleConfig},
		{"reserved fallback", func(m *ModuleConfig) { m.Fallback = &FallbackConfig{Leaf: "NUL"} }, provision.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := validModule()
			tt.mutate(&m)
			valid, errs := m.IsValid()
			if tt.want == nil {
				if !valid {
					t.Errorf("IsValid() = false, %v", errs)
				}
				return
			}
			if valid || len(errs) == 0 {
				t.Fatal("IsValid() = true, want false")
			}
			if !errors.Is(errs[0], ErrInvalidModuleConfig) || !errors.Is(errs[0], tt.want) {
				t.Errorf("IsValid() error = %v, want %v", errs[0], tt.want)
			}
		})
	}
}

func TestFallbackConfig_ProvisionConfig(t *testing.T) {
	t.Parallel()

	cfg := FallbackConfig{Leaf: "Editor"}.ProvisionConfig()
	if cfg.ThirdPartyDir != provision.DefaultThirdPartyDir || cfg.Leaf != "Editor" {
		t.Errorf("ProvisionConfig() = %+v", cfg)
	}
}
