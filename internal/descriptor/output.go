// SPDX-License-Identifier: MPL-2.0

package descriptor

type (
	// Output is the serializable view of a descriptor handed to the host.
	// Slices are never nil so every encoder renders empty lists explicitly.
	Output struct {
		Module              string       `json:"module" toml:"module" yaml:"module"`
		PublicDependencies  []string     `json:"public_dependencies" toml:"public_dependencies" yaml:"public_dependencies"`
		PrivateDependencies []string     `json:"private_dependencies" toml:"private_dependencies" yaml:"private_dependencies"`
		Definitions         []string     `json:"definitions" toml:"definitions" yaml:"definitions"`
		Flags               []FlagOutput `json:"flags" toml:"flags" yaml:"flags"`
		PublicIncludePaths  []string     `json:"public_include_paths" toml:"public_include_paths" yaml:"public_include_paths"`
		PrivateIncludePaths []string     `json:"private_include_paths" toml:"private_include_paths" yaml:"private_include_paths"`
	}

	// FlagOutput is one flag in Output.
	FlagOutput struct {
		Key   string `json:"key" toml:"key" yaml:"key"`
		Value string `json:"value" toml:"value" yaml:"value"`
	}

	// Document groups the outputs of every module configured in one pass.
	Document struct {
		Modules []Output `json:"modules" toml:"modules" yaml:"modules"`
	}
)

// Snapshot returns the serializable view of d. It may be called before or
// after sealing.
func (d *Descriptor) Snapshot() Output {
	out := Output{
		Module:              string(d.module),
		PublicDependencies:  make([]string, 0, len(d.publicDeps)),
		PrivateDependencies: make([]string, 0, len(d.privateDeps)),
		Definitions:         make([]string, 0, len(d.flags)),
		Flags:               make([]FlagOutput, 0, len(d.flags)),
		PublicIncludePaths:  make([]string, 0, len(d.publicIncludes)),
		PrivateIncludePaths: make([]string, 0, len(d.privateIncludes)),
	}
	for _, dep := range d.publicDeps {
		out.PublicDependencies = append(out.PublicDependencies, string(dep))
	}
	for _, dep := range d.privateDeps {
		out.PrivateDependencies = append(out.PrivateDependencies, string(dep))
	}
	for _, f := range d.flags {
		out.Definitions = append(out.Definitions, f.Definition())
		out.Flags = append(out.Flags, FlagOutput{Key: string(f.Key), Value: f.Value()})
	}
	for _, p := range d.publicIncludes {
		out.PublicIncludePaths = append(out.PublicIncludePaths, string(p))
	}
	for _, p := range d.privateIncludes {
		out.PrivateIncludePaths = append(out.PrivateIncludePaths, string(p))
	}
	return out
}
