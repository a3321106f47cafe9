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

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/ajroetker/hwydct/cmd/dctgen/dct"
	"github.com/ajroetker/hwydct/cmd/dctgen/emit"
	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
	"github.com/ajroetker/hwydct/internal/cpuinfo"
)

// verifyTrials is the number of random inputs each kernel is checked on.
const verifyTrials = 8

// Generator builds kernels and writes the generated source.
type Generator struct {
	Lang              string // Output language: "go" or "rust"
	Package           string // Package clause of generated Go code
	SimdImport        string // Import path of the SIMD contract
	MaxWidth          string // "all", "host" or a width name
	MaxReinterpreting int    // Largest reinterpreting DCT size
	Output            string // Output file or directory; empty writes to stdout
	Verbose           bool   // Print per-kernel statistics

	stdout  io.Writer
	stderr  io.Writer
	target  emit.Target
	emitter emit.Emitter
	opts    []dct.Option
}

// Init validates the options. Nothing is built or written on error.
func (g *Generator) Init() error {
	if g.stdout == nil {
		g.stdout = os.Stdout
	}
	if g.stderr == nil {
		g.stderr = os.Stderr
	}
	var err error
	g.target, err = emit.GetTarget(g.Lang)
	if err != nil {
		return err
	}
	g.emitter, err = g.target.New(emit.Config{Package: g.Package, SimdImport: g.SimdImport})
	if err != nil {
		return err
	}
	width, err := g.maxWidth()
	if err != nil {
		return err
	}
	g.opts = []dct.Option{
		dct.WithMaxWidth(width),
		dct.WithMaxReinterpretingSize(g.MaxReinterpreting),
	}
	return dct.CheckOptions(g.opts...)
}

func (g *Generator) maxWidth() (ir.Width, error) {
	switch g.MaxWidth {
	case "", "all":
		return ir.WidthFull, nil
	case "host":
		return ir.WidthForLanes(cpuinfo.Detect().Lanes())
	default:
		return ir.ParseWidth(g.MaxWidth)
	}
}

// Generate1D writes the kernel, wrapper and variants of one 1D size.
func (g *Generator) Generate1D(dir ir.Direction, n int) error {
	m, err := dct.Build1D(dir, n, g.opts...)
	if err != nil {
		return err
	}
	return g.emit(m, fmt.Sprintf("%s_%d", dir, n))
}

// Generate2D writes the wrappers and kernels of the whole 2D table.
func (g *Generator) Generate2D(ctx context.Context, dir ir.Direction) error {
	m, err := dct.BuildTable(ctx, dir, g.opts...)
	if err != nil {
		return err
	}
	return g.emit(m, fmt.Sprintf("%s_2d", dir))
}

// emit renders m. When Output names an existing directory the source is
// written to base plus the target extension inside it.
func (g *Generator) emit(m *ir.Module, base string) error {
	g.report(m)
	src, err := g.emitter.Emit(m)
	if err != nil {
		return err
	}
	if g.Output == "" {
		_, err := g.stdout.Write(src)
		return err
	}
	path := g.Output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, base+g.target.Ext)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(g.stderr, "Wrote %s (%d bytes)\n", path, len(src))
	return nil
}

func (g *Generator) report(m *ir.Module) {
	if !g.Verbose {
		return
	}
	for _, fn := range m.Functions() {
		s := fn.Stats()
		arith := s[ir.OpAdd] + s[ir.OpSub] + s[ir.OpScaleAdd] + s[ir.OpMulAdd] + s[ir.OpNegMulAdd]
		fmt.Fprintf(g.stderr, "%-32s %5d ops: %4d loads %4d stores %5d arith %4d transposes %4d swaps, %5d registers\n",
			emit.GoKernelName(fn), len(fn.Ops), s[ir.OpLoad], s[ir.OpStore], arith,
			s[ir.OpTransposeBlock], s[ir.OpSwapBlocks], fn.Registers)
	}
}

// Verify builds every supported kernel of both families and checks it
// against the dense reference transforms with the IR interpreter.
func (g *Generator) Verify(ctx context.Context) error {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, dir := range []ir.Direction{ir.DirectionIDCT, ir.DirectionReinterpretingDCT} {
		sizes, err := dct.Sizes(dir, g.opts...)
		if err != nil {
			return err
		}
		var kernels []*ir.Function
		for _, n := range sizes {
			m, err := dct.Build1D(dir, n, g.opts...)
			if err != nil {
				return err
			}
			kernels = append(kernels, m.Functions()...)
		}
		if err := g.check(fmt.Sprintf("%s 1D", dir), kernels, rng); err != nil {
			return err
		}

		table, err := dct.BuildTable(ctx, dir, g.opts...)
		if err != nil {
			return err
		}
		if err := g.check(fmt.Sprintf("%s 2D", dir), table.Functions(), rng); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) check(label string, kernels []*ir.Function, rng *rand.Rand) error {
	worst := 0.0
	for _, fn := range kernels {
		e, err := dct.Check(fn, verifyTrials, rng)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", label, emit.GoKernelName(fn), err)
		}
		if g.Verbose {
			fmt.Fprintf(g.stderr, "%-32s max relative error %.2g\n", emit.GoKernelName(fn), e)
		}
		worst = max(worst, e)
	}
	fmt.Fprintf(g.stdout, "%s: %d kernels OK, max relative error %.2g\n", label, len(kernels), worst)
	return nil
}

// Host prints the detected SIMD unit and its width class.
func (g *Generator) Host() error {
	info := cpuinfo.Detect()
	width, err := ir.WidthForLanes(info.Lanes())
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout, "GOARCH: %s\n", info.GOARCH)
	fmt.Fprintf(g.stdout, "SIMD: %s (%d bytes, %d float32 lanes)\n", info.Name, info.Bytes, info.Lanes())
	fmt.Fprintf(g.stdout, "Width class: %s\n", width)
	return nil
}
