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

// Package ir provides the intermediate representation of a generated
// transform kernel: an ordered list of operation records over symbolic
// vector registers. Builders produce it, emitters render it, and the
// interpreter in eval.go executes it for testing.
package ir

import (
	"errors"
	"fmt"
)

// ErrInvariant reports a bug in a builder: the IR it produced is malformed.
var ErrInvariant = errors.New("internal invariant violated")

// Register is a symbolic SSA vector value. It is assigned exactly once.
type Register int

// String returns the register's name as it appears in generated code.
func (r Register) String() string {
	return fmt.Sprintf("v%d", int(r))
}

// OpCode identifies the kind of an operation record.
type OpCode int

const (
	// OpLoad reads one vector from memory into Out.
	OpLoad OpCode = iota

	// OpStore writes register A to memory.
	OpStore

	// OpAdd computes Out = A + B.
	OpAdd

	// OpSub computes Out = A - B.
	OpSub

	// OpScaleAdd computes Out = A * Const.
	OpScaleAdd

	// OpMulAdd computes Out = A * Const + B.
	OpMulAdd

	// OpNegMulAdd computes Out = B - A * Const.
	OpNegMulAdd

	// OpPermute renames Ins into Outs: Outs[i] = Ins[Perm[i]].
	OpPermute

	// OpTransposeBlock transposes the lanes x lanes block at (Row, Col) in place.
	OpTransposeBlock

	// OpSwapBlocks exchanges the lanes x lanes blocks at (Row, Col) and (Row2, Col2).
	OpSwapBlocks
)

// String returns a human-readable name for the OpCode.
func (c OpCode) String() string {
	switch c {
	case OpLoad:
		return "Load"
	case OpStore:
		return "Store"
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpScaleAdd:
		return "ScaleAdd"
	case OpMulAdd:
		return "MulAdd"
	case OpNegMulAdd:
		return "NegMulAdd"
	case OpPermute:
		return "Permute"
	case OpTransposeBlock:
		return "TransposeBlock"
	case OpSwapBlocks:
		return "SwapBlocks"
	default:
		return fmt.Sprintf("OpCode(%d)", c)
	}
}

// IsMemory reports whether the op reads or writes the data buffer.
func (c OpCode) IsMemory() bool {
	switch c {
	case OpLoad, OpStore, OpTransposeBlock, OpSwapBlocks:
		return true
	default:
		return false
	}
}

// Op is one operation record. Which fields are meaningful depends on Code.
type Op struct {
	Code OpCode

	// Out is the register defined by arithmetic ops and Load.
	Out Register

	// A and B are the operands. Store reads A.
	A, B Register

	// Const is the multiplier of ScaleAdd, MulAdd and NegMulAdd.
	Const float64

	// Outs, Ins and Perm describe a Permute.
	Outs []Register
	Ins  []Register
	Perm []int

	// Row and Col address the first element of a vector or block:
	// element (Row, Col) lives at Row*stride + Col.
	Row, Col int

	// Row2 and Col2 address the second block of a SwapBlocks.
	Row2, Col2 int

	// Stride is the row stride in elements. Zero selects the kernel's
	// runtime stride argument.
	Stride int
}

// Defs returns the registers this op defines.
func (op *Op) Defs() []Register {
	switch op.Code {
	case OpLoad, OpAdd, OpSub, OpScaleAdd, OpMulAdd, OpNegMulAdd:
		return []Register{op.Out}
	case OpPermute:
		return op.Outs
	default:
		return nil
	}
}

// Uses returns the registers this op reads.
func (op *Op) Uses() []Register {
	switch op.Code {
	case OpStore, OpScaleAdd:
		return []Register{op.A}
	case OpAdd, OpSub, OpMulAdd, OpNegMulAdd:
		return []Register{op.A, op.B}
	case OpPermute:
		return op.Ins
	default:
		return nil
	}
}

// Offset returns the element offset of (Row, Col) given the runtime stride.
func (op *Op) Offset(runtimeStride int) int {
	return op.Row*op.stride(runtimeStride) + op.Col
}

// Offset2 returns the element offset of (Row2, Col2) given the runtime stride.
func (op *Op) Offset2(runtimeStride int) int {
	return op.Row2*op.stride(runtimeStride) + op.Col2
}

func (op *Op) stride(runtimeStride int) int {
	if op.Stride == 0 {
		return runtimeStride
	}
	return op.Stride
}

// String renders the op in a compact assembly-like form, used in test
// failures and verbose output.
func (op *Op) String() string {
	switch op.Code {
	case OpLoad:
		return fmt.Sprintf("%s = Load(%d, %d, %d)", op.Out, op.Row, op.Col, op.Stride)
	case OpStore:
		return fmt.Sprintf("Store(%s, %d, %d, %d)", op.A, op.Row, op.Col, op.Stride)
	case OpAdd, OpSub:
		return fmt.Sprintf("%s = %s(%s, %s)", op.Out, op.Code, op.A, op.B)
	case OpScaleAdd:
		return fmt.Sprintf("%s = ScaleAdd(%s, %v)", op.Out, op.A, op.Const)
	case OpMulAdd, OpNegMulAdd:
		return fmt.Sprintf("%s = %s(%s, %v, %s)", op.Out, op.Code, op.A, op.Const, op.B)
	case OpPermute:
		return fmt.Sprintf("%v = Permute(%v, %v)", op.Outs, op.Ins, op.Perm)
	case OpTransposeBlock:
		return fmt.Sprintf("TransposeBlock(%d, %d, %d)", op.Row, op.Col, op.Stride)
	case OpSwapBlocks:
		return fmt.Sprintf("SwapBlocks(%d, %d, %d, %d, %d)", op.Row, op.Col, op.Row2, op.Col2, op.Stride)
	default:
		return op.Code.String()
	}
}

// Direction selects the transform family.
type Direction int

const (
	// DirectionIDCT is the inverse DCT.
	DirectionIDCT Direction = iota

	// DirectionReinterpretingDCT is the rescaled forward DCT used to
	// resample coefficients to a different block size.
	DirectionReinterpretingDCT
)

// String returns the snake_case name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionIDCT:
		return "idct"
	case DirectionReinterpretingDCT:
		return "reinterpreting_dct"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// Variant describes how a kernel maps transform elements to memory.
type Variant int

const (
	// VariantPlain transforms the columns of a Rows-row block with a runtime stride.
	VariantPlain Variant = iota

	// VariantRowBlock transforms the rows of a Lanes-row block whose
	// lanes x lanes sub-blocks have been transposed by the caller.
	VariantRowBlock

	// VariantTransposed transforms the columns of a Rows x Cols tile and
	// leaves the result transposed (Cols x Rows).
	VariantTransposed

	// Variant2D is a full separable 2D transform.
	Variant2D
)

// String returns a human-readable name for the Variant.
func (v Variant) String() string {
	switch v {
	case VariantPlain:
		return "plain"
	case VariantRowBlock:
		return "rowblock"
	case VariantTransposed:
		return "transposed"
	case Variant2D:
		return "2d"
	default:
		return fmt.Sprintf("Variant(%d)", v)
	}
}

// Function is a transform descriptor: the complete ordered op list for one
// generated kernel, tagged with what it computes.
type Function struct {
	Direction Direction
	Variant   Variant

	// Rows is the transform size of a 1D kernel, or the tile height of a
	// transposed or 2D kernel. Cols is zero for 1D kernels.
	Rows, Cols int

	// Lanes is the vector width the kernel was specialized for. Zero means
	// the kernel works with any width.
	Lanes int

	// Width is the SIMD width class chosen for this kernel's size.
	Width Width

	Ops []Op

	// Registers is the number of registers issued by the allocator.
	Registers int
}

// UsesRuntimeStride reports whether any memory op takes the stride argument.
func (fn *Function) UsesRuntimeStride() bool {
	for i := range fn.Ops {
		if fn.Ops[i].Code.IsMemory() && fn.Ops[i].Stride == 0 {
			return true
		}
	}
	return false
}

// Extent returns the number of elements a fixed-layout kernel touches, or
// zero for kernels addressed through the runtime stride.
func (fn *Function) Extent() int {
	if fn.Variant == VariantPlain || fn.Variant == VariantRowBlock {
		return 0
	}
	return fn.Rows * fn.Cols
}

// Stats counts ops by kind.
func (fn *Function) Stats() map[OpCode]int {
	stats := make(map[OpCode]int)
	for i := range fn.Ops {
		stats[fn.Ops[i].Code]++
	}
	return stats
}

// Entry is one public dispatch wrapper together with the kernels it may
// call, ordered widest first.
type Entry struct {
	Direction Direction

	// Rows and Cols give the size; Cols is zero for a 1D entry.
	Rows, Cols int

	// Width is the widest class the wrapper lets through.
	Width Width

	Kernels []*Function
}

// Is2D reports whether the entry is a 2D transform.
func (e *Entry) Is2D() bool {
	return e.Cols != 0
}

// Module groups everything emitted into one source file.
type Module struct {
	Direction Direction
	Entries   []*Entry

	// Variants are standalone kernels emitted next to the entries.
	Variants []*Function
}

// Functions returns every kernel of the module in emission order.
func (m *Module) Functions() []*Function {
	var fns []*Function
	for _, e := range m.Entries {
		fns = append(fns, e.Kernels...)
	}
	return append(fns, m.Variants...)
}

// UsesSwapBlocks reports whether any kernel of the module swaps blocks.
func (m *Module) UsesSwapBlocks() bool {
	for _, fn := range m.Functions() {
		for i := range fn.Ops {
			if fn.Ops[i].Code == OpSwapBlocks {
				return true
			}
		}
	}
	return false
}
