// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema is one definition of an embedded CUE schema, compiled once and
// reused for every document checked against it. `capgate watch` reloads the
// config on each pass, so the schema is not recompiled per load.
//
// A cue.Context is not safe for concurrent use; Schema serializes access.
type Schema struct {
	mu         sync.Mutex
	ctx        *cue.Context
	def        cue.Value
	definition string
}

// Compile compiles src and selects definition (for example "#Config").
// Errors here are programming errors in the embedded schema, not user input.
func Compile(src []byte, definition string) (*Schema, error) {
	ctx := cuecontext.New()

	root := ctx.CompileBytes(src)
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := root.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("schema has no %s: %w", definition, err)
	}

	return &Schema{ctx: ctx, def: def, definition: definition}, nil
}

// Definition returns the selected definition name.
func (s *Schema) Definition() string {
	return s.definition
}

// Check validates data against the schema without decoding it.
func (s *Schema) Check(data []byte, opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.unify(data, resolveOptions(opts))
	return err
}

// Decode validates data against s and decodes the unified value into T.
// Every user-facing error carries the configured filename and the JSON path
// of the offending field.
func Decode[T any](s *Schema, data []byte, opts ...Option) (T, error) {
	var out T
	o := resolveOptions(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.unify(data, o)
	if err != nil {
		return out, err
	}
	if err := v.Decode(&out); err != nil {
		return out, FormatError(err, o.filename)
	}
	return out, nil
}

// unify compiles data, unifies it with the definition and validates the
// result. The caller holds s.mu.
func (s *Schema) unify(data []byte, o parseOptions) (cue.Value, error) {
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return cue.Value{}, err
	}

	doc := s.ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}

	v := s.def.Unify(doc)
	if err := v.Validate(cue.Concrete(o.concrete)); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}
	return v, nil
}
