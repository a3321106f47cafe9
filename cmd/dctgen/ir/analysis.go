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
	"fmt"
	"math"
	"slices"
)

// Validate checks the structural invariants of a Function:
//   - every register is defined exactly once, before any use
//   - every register was issued by the function's allocator
//   - every Permute carries a true permutation of its inputs
//   - constants are finite
//   - fixed-layout kernels stay inside their Rows x Cols tile
//
// Any violation is a builder bug and is reported wrapping ErrInvariant.
func Validate(fn *Function) error {
	defined := make([]bool, fn.Registers)
	for i := range fn.Ops {
		op := &fn.Ops[i]
		for _, r := range op.Uses() {
			if int(r) < 0 || int(r) >= fn.Registers || !defined[r] {
				return invariantf(i, op, "use of undefined register %s", r)
			}
		}
		for _, r := range op.Defs() {
			if int(r) < 0 || int(r) >= fn.Registers {
				return invariantf(i, op, "register %s was not issued by the allocator (%d issued)", r, fn.Registers)
			}
			if defined[r] {
				return invariantf(i, op, "register %s defined twice", r)
			}
			defined[r] = true
		}
		if err := checkOp(fn, i, op); err != nil {
			return err
		}
	}
	if n := countTrue(defined); n != fn.Registers {
		return fmt.Errorf("%w: %d registers issued but %d defined", ErrInvariant, fn.Registers, n)
	}
	return nil
}

// checkOp validates op-specific operands.
func checkOp(fn *Function, i int, op *Op) error {
	switch op.Code {
	case OpScaleAdd, OpMulAdd, OpNegMulAdd:
		if math.IsNaN(op.Const) || math.IsInf(op.Const, 0) {
			return invariantf(i, op, "non-finite constant")
		}
	case OpPermute:
		if len(op.Outs) != len(op.Ins) || len(op.Perm) != len(op.Ins) {
			return invariantf(i, op, "permute arity mismatch")
		}
		if !IsPermutation(op.Perm) {
			return invariantf(i, op, "%v is not a permutation", op.Perm)
		}
	case OpTransposeBlock, OpSwapBlocks:
		if fn.Lanes <= 0 {
			return invariantf(i, op, "block op in a kernel without a fixed lane count")
		}
	}
	if op.Code.IsMemory() {
		return checkBounds(fn, i, op)
	}
	return nil
}

// checkBounds verifies that a memory op of a fixed-layout kernel stays
// inside the tile. Kernels addressed through the runtime stride cannot be
// checked statically.
func checkBounds(fn *Function, i int, op *Op) error {
	extent := fn.Extent()
	if extent == 0 {
		return nil
	}
	if op.Stride <= 0 {
		return invariantf(i, op, "fixed-layout kernel uses the runtime stride")
	}
	lanes := fn.Lanes
	var last []int
	switch op.Code {
	case OpLoad, OpStore:
		last = []int{op.Offset(0) + lanes - 1}
	case OpTransposeBlock:
		last = []int{op.Offset(0) + (lanes-1)*op.Stride + lanes - 1}
	case OpSwapBlocks:
		last = []int{
			op.Offset(0) + (lanes-1)*op.Stride + lanes - 1,
			op.Offset2(0) + (lanes-1)*op.Stride + lanes - 1,
		}
	}
	if op.Row < 0 || op.Col < 0 || op.Row2 < 0 || op.Col2 < 0 {
		return invariantf(i, op, "negative address")
	}
	if slices.Max(last) >= extent {
		return invariantf(i, op, "access beyond %d-element tile", extent)
	}
	if op.Col%lanes != 0 && op.Code != OpLoad && op.Code != OpStore {
		return invariantf(i, op, "block column %d not aligned to %d lanes", op.Col, lanes)
	}
	return nil
}

// IsPermutation reports whether perm contains each index 0..len-1 once.
func IsPermutation(perm []int) bool {
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func invariantf(i int, op *Op, format string, args ...any) error {
	return fmt.Errorf("%w: op %d (%s): %s", ErrInvariant, i, op, fmt.Sprintf(format, args...))
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
