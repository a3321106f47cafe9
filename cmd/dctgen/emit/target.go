// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package emit renders IR modules as source code for a target language.
// Only this package knows target syntax; the IR and its builders are
// language neutral.
package emit

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/mod/module"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// Emitter renders a module as one source file.
type Emitter interface {
	Emit(m *ir.Module) ([]byte, error)
}

// Config holds the output options shared by all targets.
type Config struct {
	// Package is the Go package clause of the generated file.
	Package string

	// SimdImport is the import path of the SIMD contract: a Go package path,
	// or a Rust module path for the Rust target. Empty selects the target default.
	SimdImport string
}

// Target describes one output language.
type Target struct {
	Name              string               // "go", "rust"
	Ext               string               // file extension of generated files
	DefaultSimdImport string               // used when Config.SimdImport is empty
	OpMap             map[ir.OpCode]OpInfo // arithmetic op -> target spelling
	new               func(Config, Target) Emitter
}

// OpInfo describes how an arithmetic record is spelled on a target.
type OpInfo struct {
	Name     string // descriptor method, e.g. "MulAdd" or "mul_add"
	Operator string // infix operator used instead of a method, e.g. "+"
}

// GoTarget returns the Go target, written against package simd.
func GoTarget() Target {
	return Target{
		Name:              "go",
		Ext:               ".go",
		DefaultSimdImport: "github.com/ajroetker/hwydct/simd",
		OpMap: map[ir.OpCode]OpInfo{
			ir.OpAdd:       {Name: "Add"},
			ir.OpSub:       {Name: "Sub"},
			ir.OpScaleAdd:  {Name: "Mul"},
			ir.OpMulAdd:    {Name: "MulAdd"},
			ir.OpNegMulAdd: {Name: "NegMulAdd"},
		},
		new: newGoEmitter,
	}
}

// RustTarget returns the Rust target, written against a SimdDescriptor trait.
func RustTarget() Target {
	return Target{
		Name:              "rust",
		Ext:               ".rs",
		DefaultSimdImport: "crate::simd",
		OpMap: map[ir.OpCode]OpInfo{
			ir.OpAdd:       {Operator: "+"},
			ir.OpSub:       {Operator: "-"},
			ir.OpScaleAdd:  {Operator: "*"},
			ir.OpMulAdd:    {Name: "mul_add"},
			ir.OpNegMulAdd: {Name: "neg_mul_add"},
		},
		new: newRustEmitter,
	}
}

// AvailableTargets lists the target names accepted by GetTarget.
func AvailableTargets() []string {
	return []string{"go", "rust"}
}

// GetTarget returns the target with the given name.
func GetTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "go", "golang":
		return GoTarget(), nil
	case "rust", "rs":
		return RustTarget(), nil
	default:
		return Target{}, fmt.Errorf("unknown target: %s (valid: %s)", name, strings.Join(AvailableTargets(), ", "))
	}
}

// New validates cfg and returns an emitter for the target.
func (t Target) New(cfg Config) (Emitter, error) {
	if cfg.SimdImport == "" {
		cfg.SimdImport = t.DefaultSimdImport
	}
	if err := t.validate(cfg); err != nil {
		return nil, err
	}
	return t.new(cfg, t), nil
}

func (t Target) validate(cfg Config) error {
	switch t.Name {
	case "go":
		if !token.IsIdentifier(cfg.Package) {
			return fmt.Errorf("invalid Go package name %q", cfg.Package)
		}
		if err := module.CheckImportPath(cfg.SimdImport); err != nil {
			return fmt.Errorf("invalid SIMD import: %w", err)
		}
	case "rust":
		for _, seg := range strings.Split(cfg.SimdImport, "::") {
			if seg == "" || !token.IsIdentifier(seg) {
				return fmt.Errorf("invalid Rust module path %q", cfg.SimdImport)
			}
		}
	default:
		return errors.New("target has no emitter")
	}
	return nil
}
