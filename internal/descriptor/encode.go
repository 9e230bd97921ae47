// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid output format")

type (
	// Format names a descriptor encoding.
	Format string

	// InvalidFormatError is returned for an unknown format name.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: %s)", e.Value, strings.Join(FormatNames(), ", "))
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// FormatNames returns the names of all supported formats.
func FormatNames() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatTOML), string(FormatYAML)}
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatTOML, FormatYAML:
		return f, nil
	default:
		return "", &InvalidFormatError{Value: Format(s)}
	}
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, format Format, doc Document) error {
	if doc.Modules == nil {
		doc.Modules = []Output{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		return encodeText(w, doc)
	default:
		return &InvalidFormatError{Value: format}
	}
}

// encodeText writes a plain, line-oriented rendering suitable for logs and
// pipes. Interactive output is styled by the CLI instead.
func encodeText(w io.Writer, doc Document) error {
	var sb strings.Builder
	for i, out := range doc.Modules {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s]\n", out.Module)
		writeList(&sb, "public_dependencies", out.PublicDependencies)
		writeList(&sb, "private_dependencies", out.PrivateDependencies)
		writeList(&sb, "definitions", out.Definitions)
		writeList(&sb, "public_include_paths", out.PublicIncludePaths)
		writeList(&sb, "private_include_paths", out.PrivateIncludePaths)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeList(sb *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(sb, "%s: (none)\n", label)
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	for _, v := range values {
		fmt.Fprintf(sb, "  %s\n", v)
	}
}
