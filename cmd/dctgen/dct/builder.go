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

package dct

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// builder appends operation records for one Function. It owns the
// function's register allocator, so two builders never share names.
type builder struct {
	dir   ir.Direction
	alloc *ir.Allocator
	ops   []ir.Op

	// lanes is the vector width of block transposes; 0 for lane-agnostic kernels.
	lanes int
}

func newBuilder(dir ir.Direction, lanes int) *builder {
	return &builder{
		dir:   dir,
		alloc: ir.NewAllocator(),
		lanes: lanes,
	}
}

// finish moves the recorded ops into fn and validates the result.
func (b *builder) finish(fn *ir.Function) (*ir.Function, error) {
	fn.Direction = b.dir
	fn.Lanes = b.lanes
	fn.Ops = b.ops
	fn.Registers = b.alloc.Count()
	if err := ir.Validate(fn); err != nil {
		return nil, err
	}
	return fn, nil
}

// guard turns an invariant panic raised while building into an error.
func guard(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, ir.ErrInvariant) {
		*err = e
		return
	}
	panic(r)
}

func (b *builder) fresh() ir.Register {
	return b.alloc.Fresh()
}

func (b *builder) add(x, y ir.Register) ir.Register {
	out := b.fresh()
	b.ops = append(b.ops, ir.Op{Code: ir.OpAdd, Out: out, A: x, B: y})
	return out
}

func (b *builder) sub(x, y ir.Register) ir.Register {
	out := b.fresh()
	b.ops = append(b.ops, ir.Op{Code: ir.OpSub, Out: out, A: x, B: y})
	return out
}

// scale returns x * c.
func (b *builder) scale(x ir.Register, c float64) ir.Register {
	out := b.fresh()
	b.ops = append(b.ops, ir.Op{Code: ir.OpScaleAdd, Out: out, A: x, Const: c})
	return out
}

// mulAdd returns x * c + y.
func (b *builder) mulAdd(x ir.Register, c float64, y ir.Register) ir.Register {
	out := b.fresh()
	b.ops = append(b.ops, ir.Op{Code: ir.OpMulAdd, Out: out, A: x, Const: c, B: y})
	return out
}

// negMulAdd returns y - x * c.
func (b *builder) negMulAdd(x ir.Register, c float64, y ir.Register) ir.Register {
	out := b.fresh()
	b.ops = append(b.ops, ir.Op{Code: ir.OpNegMulAdd, Out: out, A: x, Const: c, B: y})
	return out
}

// permute returns fresh registers holding in[perm[i]]. The record keeps
// its own copies of the slices, so callers may reuse theirs.
func (b *builder) permute(in []ir.Register, perm []int) []ir.Register {
	if len(perm) != len(in) {
		panic(fmt.Errorf("%w: permutation of %d over %d registers", ir.ErrInvariant, len(perm), len(in)))
	}
	outs := b.alloc.FreshN(len(in))
	b.ops = append(b.ops, ir.Op{
		Code: ir.OpPermute,
		Outs: slices.Clone(outs),
		Ins:  slices.Clone(in),
		Perm: slices.Clone(perm),
	})
	return outs
}

func (b *builder) load(row, col, stride int) ir.Register {
	out := b.fresh()
	b.ops = append(b.ops, ir.Op{Code: ir.OpLoad, Out: out, Row: row, Col: col, Stride: stride})
	return out
}

func (b *builder) store(x ir.Register, row, col, stride int) {
	b.ops = append(b.ops, ir.Op{Code: ir.OpStore, A: x, Row: row, Col: col, Stride: stride})
}

// transposeBlock records an in-place transpose of the block at (row, col).
// A one-lane block is its own transpose and records nothing.
func (b *builder) transposeBlock(row, col, stride int) {
	if b.lanes <= 1 {
		return
	}
	b.ops = append(b.ops, ir.Op{Code: ir.OpTransposeBlock, Row: row, Col: col, Stride: stride})
}

func (b *builder) swapBlocks(row, col, row2, col2, stride int) {
	b.ops = append(b.ops, ir.Op{Code: ir.OpSwapBlocks, Row: row, Col: col, Row2: row2, Col2: col2, Stride: stride})
}

// transform runs the 1D butterfly network of the builder's direction.
func (b *builder) transform(in []ir.Register) []ir.Register {
	n := len(in)
	if n < MinSize || !IsPowerOfTwo(n) {
		panic(fmt.Errorf("%w: butterfly over %d registers", ir.ErrInvariant, n))
	}
	switch b.dir {
	case ir.DirectionIDCT:
		return b.idct(in)
	case ir.DirectionReinterpretingDCT:
		return b.reinterpretingDCT(in)
	default:
		panic(fmt.Errorf("%w: unknown direction %s", ir.ErrInvariant, b.dir))
	}
}
