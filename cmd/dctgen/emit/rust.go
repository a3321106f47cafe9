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

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

type rustEmitter struct {
	cfg    Config
	target Target
}

func newRustEmitter(cfg Config, t Target) Emitter {
	return &rustEmitter{cfg: cfg, target: t}
}

// Emit renders the module as Rust source. There is no formatter pass; the
// output is written in rustfmt style directly.
func (r *rustEmitter) Emit(m *ir.Module) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprint(&buf, generatedHeader)
	if m.UsesSwapBlocks() {
		fmt.Fprintf(&buf, "\nuse %s::{swap_blocks, ScalarDescriptor, SimdDescriptor};\n", r.cfg.SimdImport)
	} else {
		fmt.Fprintf(&buf, "\nuse %s::{ScalarDescriptor, SimdDescriptor};\n", r.cfg.SimdImport)
	}

	for _, e := range m.Entries {
		if err := r.entry(&buf, e); err != nil {
			return nil, err
		}
		for _, fn := range e.Kernels {
			if err := r.kernel(&buf, fn, false); err != nil {
				return nil, err
			}
		}
	}
	for _, fn := range m.Variants {
		if err := r.kernel(&buf, fn, true); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (r *rustEmitter) entry(buf *bytes.Buffer, e *ir.Entry) error {
	name := RustEntryName(e)
	if len(e.Kernels) == 0 {
		return fmt.Errorf("entry %s has no kernels", name)
	}
	if e.Is2D() {
		return r.entry2D(buf, name, e)
	}
	kernel := RustKernelName(e.Kernels[0])
	fmt.Fprintf(buf, "\n/// %d-point %s of the first `columns` columns of `data`.\n", e.Rows, describe(e.Direction))
	fmt.Fprintf(buf, "pub fn %s<D: SimdDescriptor>(%s: D, data: &mut [f32], stride: usize, columns: usize) {\n",
		name, r.descriptorParam(e.Width))
	fmt.Fprintf(buf, "    fn run<E: SimdDescriptor>(d: E, data: &mut [f32], stride: usize, columns: usize) {\n")
	fmt.Fprintf(buf, "        let mut c = 0;\n")
	fmt.Fprintf(buf, "        while c + E::LEN <= columns {\n")
	fmt.Fprintf(buf, "            %s(d, &mut data[c..], stride);\n", kernel)
	fmt.Fprintf(buf, "            c += E::LEN;\n")
	fmt.Fprintf(buf, "        }\n")
	fmt.Fprintf(buf, "        while c < columns {\n")
	fmt.Fprintf(buf, "            %s(ScalarDescriptor::new(), &mut data[c..], stride);\n", kernel)
	fmt.Fprintf(buf, "            c += 1;\n")
	fmt.Fprintf(buf, "        }\n")
	fmt.Fprintf(buf, "    }\n")
	fmt.Fprintf(buf, "    run(%s, data, stride, columns)\n}\n", r.downgraded(e.Width))
	return nil
}

func (r *rustEmitter) entry2D(buf *bytes.Buffer, name string, e *ir.Entry) error {
	fmt.Fprintf(buf, "\n/// 2D %s of a %dx%d row-major tile, in place.\n", describe(e.Direction), e.Rows, e.Cols)
	fmt.Fprintf(buf, "/// The result is left transposed: coefficient (r, c) ends up at `data[c * %d + r]`.\n", e.Rows)
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
		fmt.Fprintf(buf, "pub fn %s<D: SimdDescriptor>(_d: D, data: &mut [f32]) {\n", name)
		fmt.Fprintf(buf, "    %s(ScalarDescriptor::new(), data)\n}\n", RustKernelName(fallback))
		return nil
	}
	fmt.Fprintf(buf, "pub fn %s<D: SimdDescriptor>(%s: D, data: &mut [f32]) {\n", name, r.descriptorParam(e.Width))
	fmt.Fprintf(buf, "    fn run<E: SimdDescriptor>(d: E, data: &mut [f32]) {\n")
	fmt.Fprintf(buf, "        match E::LEN {\n")
	for _, fn := range vector {
		fmt.Fprintf(buf, "            %d => %s(d, data),\n", fn.Lanes, RustKernelName(fn))
	}
	fmt.Fprintf(buf, "            _ => %s(ScalarDescriptor::new(), data),\n", RustKernelName(fallback))
	fmt.Fprintf(buf, "        }\n")
	fmt.Fprintf(buf, "    }\n")
	fmt.Fprintf(buf, "    run(%s, data)\n}\n", r.downgraded(e.Width))
	return nil
}

// descriptorParam names the wrapper's descriptor argument. Scalar-class
// wrappers never read it.
func (r *rustEmitter) descriptorParam(w ir.Width) string {
	if w == ir.WidthScalar {
		return "_d"
	}
	return "d"
}

func (r *rustEmitter) downgraded(w ir.Width) string {
	switch w {
	case ir.WidthScalar:
		return "ScalarDescriptor::new()"
	case ir.Width128:
		return "d.maybe_downgrade_128bit()"
	case ir.Width256:
		return "d.maybe_downgrade_256bit()"
	default:
		return "d"
	}
}

func (r *rustEmitter) kernel(buf *bytes.Buffer, fn *ir.Function, public bool) error {
	name := RustKernelName(fn)
	fmt.Fprintf(buf, "\n/// %s.\n", kernelDoc(fn))
	if fn.Lanes > 1 {
		fmt.Fprintf(buf, "/// `D::LEN` must be %d.\n", fn.Lanes)
	}
	fmt.Fprintf(buf, "#[inline(always)]\n")
	vis := ""
	if public {
		vis = "pub "
	}
	if fn.UsesRuntimeStride() {
		fmt.Fprintf(buf, "%sfn %s<D: SimdDescriptor>(d: D, data: &mut [f32], stride: usize) {\n", vis, name)
	} else {
		fmt.Fprintf(buf, "%sfn %s<D: SimdDescriptor>(d: D, data: &mut [f32]) {\n", vis, name)
	}

	f := analyze(fn)
	for i, c := range f.consts {
		fmt.Fprintf(buf, "    let k%d = d.splat(%sf32);\n", i, formatFloat32(c))
	}
	for i := range fn.Ops {
		if !f.live[i] {
			continue
		}
		if err := r.op(buf, f, &fn.Ops[i]); err != nil {
			return fmt.Errorf("%s: op %d: %w", name, i, err)
		}
	}
	fmt.Fprintf(buf, "}\n")
	return nil
}

func (r *rustEmitter) op(buf *bytes.Buffer, f *flow, op *ir.Op) error {
	off := func(row, col int) string {
		return offsetExpr(row, col, op.Stride, "stride", " * ")
	}
	info := r.target.OpMap[op.Code]
	switch op.Code {
	case ir.OpLoad:
		fmt.Fprintf(buf, "    let %s = d.load_array(&data[%s..]);\n", op.Out, off(op.Row, op.Col))
	case ir.OpStore:
		fmt.Fprintf(buf, "    d.store_array(&mut data[%s..], %s);\n", off(op.Row, op.Col), f.reg(op.A))
	case ir.OpAdd, ir.OpSub:
		fmt.Fprintf(buf, "    let %s = %s %s %s;\n", op.Out, f.reg(op.A), info.Operator, f.reg(op.B))
	case ir.OpScaleAdd:
		fmt.Fprintf(buf, "    let %s = %s %s %s;\n", op.Out, f.reg(op.A), info.Operator, f.constName(op.Const))
	case ir.OpMulAdd, ir.OpNegMulAdd:
		fmt.Fprintf(buf, "    let %s = d.%s(%s, %s, %s);\n", op.Out, info.Name, f.reg(op.A), f.constName(op.Const), f.reg(op.B))
	case ir.OpTransposeBlock:
		fmt.Fprintf(buf, "    d.transpose_square(&mut data[%s..], %s);\n", off(op.Row, op.Col), strideExpr(op.Stride, "stride"))
	case ir.OpSwapBlocks:
		fmt.Fprintf(buf, "    swap_blocks(d, data, %s, %s, %s);\n", off(op.Row, op.Col), off(op.Row2, op.Col2),
			strideExpr(op.Stride, "stride"))
	default:
		return fmt.Errorf("no Rust rendering for %s", op.Code)
	}
	return nil
}
