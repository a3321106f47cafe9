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
	"slices"
)

// Eval executes fn over data, simulating vectors of the given lane count
// in float64. Lane-specialized kernels must be run with their own lane
// count. stride is the value of the kernel's runtime stride argument.
func Eval(fn *Function, data []float64, lanes, stride int) error {
	if lanes <= 0 {
		return fmt.Errorf("eval: invalid lane count %d", lanes)
	}
	if fn.Lanes != 0 && fn.Lanes != lanes {
		return fmt.Errorf("eval: kernel specialized for %d lanes, got %d", fn.Lanes, lanes)
	}
	m := &machine{data: data, lanes: lanes, stride: stride, regs: make([][]float64, fn.Registers)}
	for i := range fn.Ops {
		if err := m.step(&fn.Ops[i]); err != nil {
			return fmt.Errorf("eval: op %d (%s): %w", i, &fn.Ops[i], err)
		}
	}
	return nil
}

// machine is the interpreter state: memory plus the register file.
type machine struct {
	data   []float64
	lanes  int
	stride int
	regs   [][]float64
}

func (m *machine) step(op *Op) error {
	switch op.Code {
	case OpLoad:
		off := op.Offset(m.stride)
		if err := m.checkRange(off, off+m.lanes); err != nil {
			return err
		}
		m.regs[op.Out] = slices.Clone(m.data[off : off+m.lanes])
	case OpStore:
		a, err := m.reg(op.A)
		if err != nil {
			return err
		}
		off := op.Offset(m.stride)
		if err := m.checkRange(off, off+m.lanes); err != nil {
			return err
		}
		copy(m.data[off:off+m.lanes], a)
	case OpAdd, OpSub, OpMulAdd, OpNegMulAdd:
		a, err := m.reg(op.A)
		if err != nil {
			return err
		}
		b, err := m.reg(op.B)
		if err != nil {
			return err
		}
		out := make([]float64, m.lanes)
		for l := range out {
			switch op.Code {
			case OpAdd:
				out[l] = a[l] + b[l]
			case OpSub:
				out[l] = a[l] - b[l]
			case OpMulAdd:
				out[l] = a[l]*op.Const + b[l]
			case OpNegMulAdd:
				out[l] = b[l] - a[l]*op.Const
			}
		}
		m.regs[op.Out] = out
	case OpScaleAdd:
		a, err := m.reg(op.A)
		if err != nil {
			return err
		}
		out := make([]float64, m.lanes)
		for l := range out {
			out[l] = a[l] * op.Const
		}
		m.regs[op.Out] = out
	case OpPermute:
		for j, out := range op.Outs {
			in, err := m.reg(op.Ins[op.Perm[j]])
			if err != nil {
				return err
			}
			m.regs[out] = in
		}
	case OpTransposeBlock:
		base, stride := op.Offset(m.stride), op.stride(m.stride)
		if err := m.checkBlock(base, stride); err != nil {
			return err
		}
		for i := 0; i < m.lanes; i++ {
			for j := i + 1; j < m.lanes; j++ {
				a, b := base+i*stride+j, base+j*stride+i
				m.data[a], m.data[b] = m.data[b], m.data[a]
			}
		}
	case OpSwapBlocks:
		a, b, stride := op.Offset(m.stride), op.Offset2(m.stride), op.stride(m.stride)
		if err := m.checkBlock(a, stride); err != nil {
			return err
		}
		if err := m.checkBlock(b, stride); err != nil {
			return err
		}
		for i := 0; i < m.lanes; i++ {
			for j := 0; j < m.lanes; j++ {
				x, y := a+i*stride+j, b+i*stride+j
				m.data[x], m.data[y] = m.data[y], m.data[x]
			}
		}
	default:
		return fmt.Errorf("unknown op code %s", op.Code)
	}
	return nil
}

func (m *machine) reg(r Register) ([]float64, error) {
	if int(r) < 0 || int(r) >= len(m.regs) || m.regs[r] == nil {
		return nil, fmt.Errorf("%w: read of undefined register %s", ErrInvariant, r)
	}
	return m.regs[r], nil
}

func (m *machine) checkRange(lo, hi int) error {
	if lo < 0 || hi > len(m.data) {
		return fmt.Errorf("access [%d, %d) outside %d-element buffer", lo, hi, len(m.data))
	}
	return nil
}

func (m *machine) checkBlock(base, stride int) error {
	return m.checkRange(base, base+(m.lanes-1)*stride+m.lanes)
}
