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

package emit

import (
	"bytes"
	"fmt"
	"path"

	"golang.org/x/tools/imports"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// generatedHeader starts every generated file.
const generatedHeader = "// Code generated by dctgen. DO NOT EDIT.\n"

type goEmitter struct {
	cfg    Config
	target Target
}

func newGoEmitter(cfg Config, t Target) Emitter {
	return &goEmitter{cfg: cfg, target: t}
}

// Emit renders the module as a gofmt-formatted Go file.
func (g *goEmitter) Emit(m *ir.Module) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprint(&buf, generatedHeader)
	fmt.Fprintf(&buf, "\npackage %s\n\n", g.cfg.Package)
	if path.Base(g.cfg.SimdImport) == "simd" {
		fmt.Fprintf(&buf, "import %q\n", g.cfg.SimdImport)
	} else {
		fmt.Fprintf(&buf, "import simd %q\n", g.cfg.SimdImport)
	}

	for _, e := range m.Entries {
		if err := g.entry(&buf, e); err != nil {
			return nil, err
		}
		for _, fn := range e.Kernels {
			if err := g.kernel(&buf, fn); err != nil {
				return nil, err
			}
		}
	}
	for _, fn := range m.Variants {
		if err := g.kernel(&buf, fn); err != nil {
			return nil, err
		}
	}
	formatted, err := imports.Process(g.cfg.Package+"_gen.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated Go: %w", err)
	}
	return formatted, nil
}

// entry writes the exported dispatch wrapper of e.
func (g *goEmitter) entry(buf *bytes.Buffer, e *ir.Entry) error {
	if len(e.Kernels) == 0 {
		return fmt.Errorf("entry %s has no kernels", GoEntryName(e))
	}
	name := GoEntryName(e)
	if e.Is2D() {
		return g.entry2D(buf, name, e)
	}
	kernel := GoKernelName(e.Kernels[0])
	fmt.Fprintf(buf, "\n// %s computes the %d-point %s of each of the first columns columns of\n", name, e.Rows, describe(e.Direction))
	fmt.Fprintf(buf, "// data, whose %d rows are stride elements apart.\n", e.Rows)
	fmt.Fprintf(buf, "func %s(d simd.Descriptor, data []float32, stride, columns int) {\n", name)
	if e.Width == ir.WidthScalar {
		fmt.Fprintf(buf, "\ts := simd.Scalar()\n")
		fmt.Fprintf(buf, "\tfor c := 0; c < columns; c++ {\n\t\t%s(s, data[c:], stride)\n\t}\n}\n", kernel)
		return nil
	}
	g.downgrade(buf, e.Width)
	fmt.Fprintf(buf, "\tc := 0\n")
	fmt.Fprintf(buf, "\tfor ; c+d.Len() <= columns; c += d.Len() {\n\t\t%s(d, data[c:], stride)\n\t}\n", kernel)
	fmt.Fprintf(buf, "\ts := simd.Scalar()\n")
	fmt.Fprintf(buf, "\tfor ; c < columns; c++ {\n\t\t%s(s, data[c:], stride)\n\t}\n}\n", kernel)
	return nil
}

func (g *goEmitter) entry2D(buf *bytes.Buffer, name string, e *ir.Entry) error {
	fmt.Fprintf(buf, "\n// %s computes the 2D %s of a %dx%d row-major tile in place.\n", name, describe(e.Direction), e.Rows, e.Cols)
	fmt.Fprintf(buf, "// The result is left transposed: coefficient (r, c) ends up at data[c*%d+r].\n", e.Rows)
	fmt.Fprintf(buf, "func %s(d simd.Descriptor, data []float32) {\n", name)

	var fallback *ir.Function
	var vector []*ir.Function
	for _, fn := range e.Kernels {
		if fn.Lanes == 1 {
			fallback = fn
		} else {
			vector = append(vector, fn)
		}
	}
	if fallback == nil {
		return fmt.Errorf("entry %s has no one-lane kernel", name)
	}
	if len(vector) == 0 {
		fmt.Fprintf(buf, "\t%s(simd.Scalar(), data)\n}\n", GoKernelName(fallback))
		return nil
	}
	g.downgrade(buf, e.Width)
	fmt.Fprintf(buf, "\tswitch d.Len() {\n")
	for _, fn := range vector {
		fmt.Fprintf(buf, "\tcase %d:\n\t\t%s(d, data)\n", fn.Lanes, GoKernelName(fn))
	}
	fmt.Fprintf(buf, "\tdefault:\n\t\t%s(simd.Scalar(), data)\n\t}\n}\n", GoKernelName(fallback))
	return nil
}

func (g *goEmitter) downgrade(buf *bytes.Buffer, w ir.Width) {
	switch w {
	case ir.Width128:
		fmt.Fprintf(buf, "\td = d.MaybeDowngrade128bit()\n")
	case ir.Width256:
		fmt.Fprintf(buf, "\td = d.MaybeDowngrade256bit()\n")
	}
}

// kernel writes fn as a straight-line function.
func (g *goEmitter) kernel(buf *bytes.Buffer, fn *ir.Function) error {
	name := GoKernelName(fn)
	fmt.Fprintf(buf, "\n// %s %s.\n", name, kernelDoc(fn))
	if fn.Lanes > 1 {
		fmt.Fprintf(buf, "// d.Len() must be %d.\n", fn.Lanes)
	}
	if fn.UsesRuntimeStride() {
		fmt.Fprintf(buf, "func %s(d simd.Descriptor, data []float32, stride int) {\n", name)
	} else {
		fmt.Fprintf(buf, "func %s(d simd.Descriptor, data []float32) {\n", name)
	}

	f := analyze(fn)
	for i, c := range f.consts {
		fmt.Fprintf(buf, "\tk%d := d.Splat(%s)\n", i, formatFloat32(c))
	}
	for i := range fn.Ops {
		if !f.live[i] {
			continue
		}
		if err := g.op(buf, f, &fn.Ops[i]); err != nil {
			return fmt.Errorf("%s: op %d: %w", name, i, err)
		}
	}
	fmt.Fprintf(buf, "}\n")
	return nil
}

func (g *goEmitter) op(buf *bytes.Buffer, f *flow, op *ir.Op) error {
	slice := func(row, col int) string {
		off := offsetExpr(row, col, op.Stride, "stride", "*")
		if off == "0" {
			return "data"
		}
		return fmt.Sprintf("data[%s:]", off)
	}
	switch op.Code {
	case ir.OpLoad:
		fmt.Fprintf(buf, "\t%s := d.LoadArray(%s)\n", op.Out, slice(op.Row, op.Col))
	case ir.OpStore:
		fmt.Fprintf(buf, "\td.StoreArray(%s, %s)\n", slice(op.Row, op.Col), f.reg(op.A))
	case ir.OpAdd, ir.OpSub:
		fmt.Fprintf(buf, "\t%s := d.%s(%s, %s)\n", op.Out, g.target.OpMap[op.Code].Name, f.reg(op.A), f.reg(op.B))
	case ir.OpScaleAdd:
		fmt.Fprintf(buf, "\t%s := d.%s(%s, %s)\n", op.Out, g.target.OpMap[op.Code].Name, f.reg(op.A), f.constName(op.Const))
	case ir.OpMulAdd, ir.OpNegMulAdd:
		fmt.Fprintf(buf, "\t%s := d.%s(%s, %s, %s)\n", op.Out, g.target.OpMap[op.Code].Name,
			f.reg(op.A), f.constName(op.Const), f.reg(op.B))
	case ir.OpTransposeBlock:
		fmt.Fprintf(buf, "\td.TransposeSquare(%s, %s)\n", slice(op.Row, op.Col), strideExpr(op.Stride, "stride"))
	case ir.OpSwapBlocks:
		fmt.Fprintf(buf, "\tsimd.SwapBlocks(d, data, %s, %s, %s)\n",
			offsetExpr(op.Row, op.Col, op.Stride, "stride", "*"),
			offsetExpr(op.Row2, op.Col2, op.Stride, "stride", "*"),
			strideExpr(op.Stride, "stride"))
	default:
		return fmt.Errorf("no Go rendering for %s", op.Code)
	}
	return nil
}

// describe returns the prose name of a direction.
func describe(dir ir.Direction) string {
	switch dir {
	case ir.DirectionReinterpretingDCT:
		return "reinterpreting DCT"
	default:
		return "inverse DCT"
	}
}
