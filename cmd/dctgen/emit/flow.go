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
	"fmt"
	"strconv"
	"strings"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// flow is the per-kernel analysis shared by all targets. Permute records
// emit no code: their outputs are aliases of their inputs. Values that no
// store depends on are dropped, and constants are hoisted in order of
// first use.
type flow struct {
	alias  map[ir.Register]ir.Register
	live   []bool // indexed by op
	consts []float32
	index  map[float32]int
}

func analyze(fn *ir.Function) *flow {
	f := &flow{
		alias: make(map[ir.Register]ir.Register),
		live:  make([]bool, len(fn.Ops)),
		index: make(map[float32]int),
	}
	for i := range fn.Ops {
		op := &fn.Ops[i]
		if op.Code != ir.OpPermute {
			continue
		}
		for j, out := range op.Outs {
			f.alias[out] = f.reg(op.Ins[op.Perm[j]])
		}
	}

	needed := make(map[ir.Register]bool)
	for i := len(fn.Ops) - 1; i >= 0; i-- {
		op := &fn.Ops[i]
		switch op.Code {
		case ir.OpPermute:
			continue
		case ir.OpStore, ir.OpTransposeBlock, ir.OpSwapBlocks:
			f.live[i] = true
		default:
			f.live[i] = needed[op.Out]
		}
		if f.live[i] {
			for _, r := range op.Uses() {
				needed[f.reg(r)] = true
			}
		}
	}

	for i := range fn.Ops {
		op := &fn.Ops[i]
		if !f.live[i] || !hasConst(op.Code) {
			continue
		}
		c := float32(op.Const)
		if _, ok := f.index[c]; !ok {
			f.index[c] = len(f.consts)
			f.consts = append(f.consts, c)
		}
	}
	return f
}

// reg resolves a register through Permute aliases.
func (f *flow) reg(r ir.Register) ir.Register {
	if a, ok := f.alias[r]; ok {
		return a
	}
	return r
}

// constName returns the name of the hoisted splat of c.
func (f *flow) constName(c float64) string {
	return fmt.Sprintf("k%d", f.index[float32(c)])
}

func hasConst(c ir.OpCode) bool {
	return c == ir.OpScaleAdd || c == ir.OpMulAdd || c == ir.OpNegMulAdd
}

// formatFloat32 renders c rounded to float32 with the shortest exact digits.
func formatFloat32(c float32) string {
	return strconv.FormatFloat(float64(c), 'g', -1, 32)
}

// offsetExpr renders the element offset row*stride + col. A zero stride
// refers to the variable named strideVar.
func offsetExpr(row, col, stride int, strideVar, mul string) string {
	if stride != 0 {
		return strconv.Itoa(row*stride + col)
	}
	var terms []string
	switch row {
	case 0:
	case 1:
		terms = append(terms, strideVar)
	default:
		terms = append(terms, fmt.Sprintf("%d%s%s", row, mul, strideVar))
	}
	if col != 0 || len(terms) == 0 {
		terms = append(terms, strconv.Itoa(col))
	}
	return strings.Join(terms, " + ")
}

// strideExpr renders the stride argument of a block op.
func strideExpr(stride int, strideVar string) string {
	if stride == 0 {
		return strideVar
	}
	return strconv.Itoa(stride)
}

// kernelDoc is the one-line description of a kernel.
func kernelDoc(fn *ir.Function) string {
	switch fn.Variant {
	case ir.VariantPlain:
		return fmt.Sprintf("transforms %d rows of d.Len() columns, stride elements apart", fn.Rows)
	case ir.VariantRowBlock:
		return fmt.Sprintf("transforms the %d-element rows of a %d-row block whose %dx%d blocks are transposed",
			fn.Rows, fn.Lanes, fn.Lanes, fn.Lanes)
	case ir.VariantTransposed:
		return fmt.Sprintf("transforms the columns of a %dx%d tile and stores the result transposed (%dx%d)",
			fn.Rows, fn.Cols, fn.Cols, fn.Rows)
	default:
		return fmt.Sprintf("computes the 2D transform of a %dx%d tile with %d lanes", fn.Rows, fn.Cols, fn.Lanes)
	}
}
