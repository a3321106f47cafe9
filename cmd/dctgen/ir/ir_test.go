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

package ir

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// TestOpCodeString verifies the OpCode names used in dumps and errors.
func TestOpCodeString(t *testing.T) {
	tests := []struct {
		code OpCode
		want string
	}{
		{OpLoad, "Load"},
		{OpStore, "Store"},
		{OpAdd, "Add"},
		{OpSub, "Sub"},
		{OpScaleAdd, "ScaleAdd"},
		{OpMulAdd, "MulAdd"},
		{OpNegMulAdd, "NegMulAdd"},
		{OpPermute, "Permute"},
		{OpTransposeBlock, "TransposeBlock"},
		{OpSwapBlocks, "SwapBlocks"},
		{OpCode(99), "OpCode(99)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("OpCode(%d).String() = %q, want %q", int(tt.code), got, tt.want)
		}
	}
}

func TestDefsUses(t *testing.T) {
	tests := []struct {
		op       Op
		wantDefs []Register
		wantUses []Register
	}{
		{Op{Code: OpLoad, Out: 3}, []Register{3}, nil},
		{Op{Code: OpStore, A: 2}, nil, []Register{2}},
		{Op{Code: OpAdd, Out: 5, A: 1, B: 2}, []Register{5}, []Register{1, 2}},
		{Op{Code: OpScaleAdd, Out: 5, A: 1, Const: 2}, []Register{5}, []Register{1}},
		{Op{Code: OpNegMulAdd, Out: 4, A: 1, B: 0, Const: 2}, []Register{4}, []Register{1, 0}},
		{Op{Code: OpPermute, Outs: []Register{4, 5}, Ins: []Register{1, 2}, Perm: []int{1, 0}},
			[]Register{4, 5}, []Register{1, 2}},
		{Op{Code: OpTransposeBlock}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.op.Code.String(), func(t *testing.T) {
			if got := tt.op.Defs(); !equalRegs(got, tt.wantDefs) {
				t.Errorf("Defs() = %v, want %v", got, tt.wantDefs)
			}
			if got := tt.op.Uses(); !equalRegs(got, tt.wantUses) {
				t.Errorf("Uses() = %v, want %v", got, tt.wantUses)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	op := Op{Code: OpLoad, Row: 3, Col: 4, Row2: 1, Col2: 2}
	if got := op.Offset(10); got != 34 {
		t.Errorf("Offset(10) with runtime stride = %d, want 34", got)
	}
	op.Stride = 8
	if got := op.Offset(10); got != 28 {
		t.Errorf("Offset(10) with stride 8 = %d, want 28", got)
	}
	if got := op.Offset2(10); got != 10 {
		t.Errorf("Offset2(10) with stride 8 = %d, want 10", got)
	}
}

func TestAllocator(t *testing.T) {
	a := NewAllocator()
	seen := make(map[Register]bool)
	for range 100 {
		r := a.Fresh()
		if seen[r] {
			t.Fatalf("Fresh() returned %s twice", r)
		}
		seen[r] = true
	}
	regs := a.FreshN(3)
	if len(regs) != 3 || regs[0] != 100 || regs[2] != 102 {
		t.Errorf("FreshN(3) = %v, want [v100 v101 v102]", regs)
	}
	if a.Count() != 103 {
		t.Errorf("Count() = %d, want 103", a.Count())
	}
}

func TestAllocatorIndependent(t *testing.T) {
	a, b := NewAllocator(), NewAllocator()
	a.FreshN(10)
	if r := b.Fresh(); r != 0 {
		t.Errorf("second allocator started at %s, want v0", r)
	}
}

func TestAllocatorExhausted(t *testing.T) {
	a := &Allocator{limit: 2}
	a.Fresh()
	a.Fresh()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvariant) {
			t.Errorf("exhausted Fresh() panicked with %v, want ErrInvariant", r)
		}
	}()
	a.Fresh()
	t.Error("Fresh() past the limit did not panic")
}

// butterfly is a valid two-point kernel over one column group.
func butterfly() *Function {
	return &Function{
		Variant: VariantPlain,
		Rows:    2,
		Ops: []Op{
			{Code: OpLoad, Out: 0, Row: 0},
			{Code: OpLoad, Out: 1, Row: 1},
			{Code: OpAdd, Out: 2, A: 0, B: 1},
			{Code: OpSub, Out: 3, A: 0, B: 1},
			{Code: OpPermute, Outs: []Register{4, 5}, Ins: []Register{2, 3}, Perm: []int{1, 0}},
			{Code: OpStore, A: 4, Row: 0},
			{Code: OpStore, A: 5, Row: 1},
		},
		Registers: 6,
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(butterfly()); err != nil {
		t.Fatalf("Validate(butterfly) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(fn *Function)
		want   string
	}{
		{"double definition", func(fn *Function) { fn.Ops[3].Out = 2 }, "defined twice"},
		{"use before definition", func(fn *Function) { fn.Ops[2].B = 3 }, "undefined register v3"},
		{"unissued register", func(fn *Function) { fn.Registers = 5 }, "not issued"},
		{"count mismatch", func(fn *Function) { fn.Registers = 7 }, "7 registers issued but 6 defined"},
		{"bad permutation", func(fn *Function) { fn.Ops[4].Perm = []int{0, 0} }, "not a permutation"},
		{"permute arity", func(fn *Function) { fn.Ops[4].Perm = []int{0} }, "arity"},
		{"non-finite constant", func(fn *Function) {
			fn.Ops[3] = Op{Code: OpScaleAdd, Out: 3, A: 0, Const: math.Inf(1)}
		}, "non-finite"},
		{"block op without lanes", func(fn *Function) {
			fn.Ops = append(fn.Ops, Op{Code: OpTransposeBlock})
		}, "fixed lane count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := butterfly()
			tt.mutate(fn)
			err := Validate(fn)
			if !errors.Is(err, ErrInvariant) {
				t.Fatalf("Validate() = %v, want ErrInvariant", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateBounds(t *testing.T) {
	// A 4x4 tile with 4 lanes.
	fn := &Function{
		Variant: VariantTransposed, Rows: 4, Cols: 4, Lanes: 4,
		Ops: []Op{
			{Code: OpLoad, Out: 0, Row: 3, Col: 0, Stride: 4},
			{Code: OpStore, A: 0, Row: 3, Col: 0, Stride: 4},
			{Code: OpTransposeBlock, Row: 0, Col: 0, Stride: 4},
		},
		Registers: 1,
	}
	if err := Validate(fn); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	tests := []struct {
		name string
		op   Op
		want string
	}{
		{"past the tile", Op{Code: OpStore, A: 0, Row: 4, Stride: 4}, "beyond"},
		{"runtime stride", Op{Code: OpStore, A: 0, Row: 0}, "runtime stride"},
		{"negative", Op{Code: OpSwapBlocks, Row: 0, Col: -4, Stride: 4}, "negative"},
		{"misaligned block", Op{Code: OpTransposeBlock, Row: 0, Col: 2, Stride: 8}, "not aligned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := *fn
			bad.Ops = append(append([]Op(nil), fn.Ops...), tt.op)
			if tt.name == "misaligned block" {
				bad.Cols = 8
			}
			err := Validate(&bad)
			if !errors.Is(err, ErrInvariant) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want ErrInvariant mentioning %q", err, tt.want)
			}
		})
	}
}

func TestIsPermutation(t *testing.T) {
	tests := []struct {
		perm []int
		want bool
	}{
		{nil, true},
		{[]int{0}, true},
		{[]int{2, 0, 1}, true},
		{[]int{1, 1}, false},
		{[]int{0, 2}, false},
		{[]int{-1, 0}, false},
	}
	for _, tt := range tests {
		if got := IsPermutation(tt.perm); got != tt.want {
			t.Errorf("IsPermutation(%v) = %v, want %v", tt.perm, got, tt.want)
		}
	}
}

func TestEval(t *testing.T) {
	fn := butterfly()
	// Two rows, two columns, stride 2.
	data := []float64{1, 10, 3, 30}
	if err := Eval(fn, data, 2, 2); err != nil {
		t.Fatalf("Eval() = %v", err)
	}
	// Row 0 gets x0-x1, row 1 gets x0+x1 (the permute swaps them).
	want := []float64{-2, -20, 4, 40}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("data = %v, want %v", data, want)
			break
		}
	}
}

func TestEvalArithmetic(t *testing.T) {
	fn := &Function{
		Variant: VariantPlain,
		Ops: []Op{
			{Code: OpLoad, Out: 0, Row: 0},
			{Code: OpLoad, Out: 1, Row: 1},
			{Code: OpScaleAdd, Out: 2, A: 0, Const: 3},
			{Code: OpMulAdd, Out: 3, A: 0, Const: 2, B: 1},
			{Code: OpNegMulAdd, Out: 4, A: 0, Const: 2, B: 1},
			{Code: OpStore, A: 2, Row: 0},
			{Code: OpStore, A: 3, Row: 1},
			{Code: OpStore, A: 4, Row: 2},
		},
		Registers: 5,
	}
	data := []float64{5, 7, 0}
	if err := Eval(fn, data, 1, 1); err != nil {
		t.Fatalf("Eval() = %v", err)
	}
	want := []float64{15, 17, -3}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("data[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestEvalBlocks(t *testing.T) {
	// A 2x4 matrix with 2 lanes: transpose the left block, then swap it
	// with the right one.
	fn := &Function{
		Variant: VariantTransposed, Rows: 2, Cols: 4, Lanes: 2,
		Ops: []Op{
			{Code: OpTransposeBlock, Row: 0, Col: 0, Stride: 4},
			{Code: OpSwapBlocks, Row: 0, Col: 0, Row2: 0, Col2: 2, Stride: 4},
		},
	}
	data := []float64{
		0, 1, 2, 3,
		4, 5, 6, 7,
	}
	if err := Eval(fn, data, 2, 0); err != nil {
		t.Fatalf("Eval() = %v", err)
	}
	want := []float64{
		2, 3, 0, 4,
		6, 7, 1, 5,
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("data = %v, want %v", data, want)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	fn := butterfly()
	if err := Eval(fn, make([]float64, 4), 4, 2); err == nil {
		t.Error("Eval() past the end of the buffer succeeded")
	}
	if err := Eval(fn, make([]float64, 4), 0, 2); err == nil {
		t.Error("Eval() with zero lanes succeeded")
	}
	fn.Lanes = 4
	if err := Eval(fn, make([]float64, 16), 2, 2); err == nil {
		t.Error("Eval() with the wrong lane count succeeded")
	}

	bad := butterfly()
	bad.Ops[2].B = 3
	err := Eval(bad, make([]float64, 4), 2, 2)
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("Eval() reading an undefined register = %v, want ErrInvariant", err)
	}
}

func TestFunctionHelpers(t *testing.T) {
	fn := butterfly()
	if !fn.UsesRuntimeStride() {
		t.Error("UsesRuntimeStride() = false for a plain kernel")
	}
	if fn.Extent() != 0 {
		t.Errorf("Extent() = %d, want 0 for a plain kernel", fn.Extent())
	}
	stats := fn.Stats()
	if stats[OpLoad] != 2 || stats[OpStore] != 2 || stats[OpPermute] != 1 {
		t.Errorf("Stats() = %v", stats)
	}

	tile := &Function{Variant: Variant2D, Rows: 4, Cols: 8}
	if tile.Extent() != 32 {
		t.Errorf("Extent() = %d, want 32", tile.Extent())
	}

	m := &Module{
		Entries:  []*Entry{{Rows: 2, Kernels: []*Function{fn}}},
		Variants: []*Function{tile},
	}
	if got := len(m.Functions()); got != 2 {
		t.Errorf("Functions() returned %d kernels, want 2", got)
	}
	if m.UsesSwapBlocks() {
		t.Error("UsesSwapBlocks() = true without any SwapBlocks")
	}
	tile.Ops = append(tile.Ops, Op{Code: OpSwapBlocks})
	if !m.UsesSwapBlocks() {
		t.Error("UsesSwapBlocks() = false")
	}
}

func equalRegs(a, b []Register) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
