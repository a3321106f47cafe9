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

package simd

import "fmt"

// EmulatedDescriptor implements a vector width in portable Go, one lane at
// a time. It lets generated kernels run, and be tested, on any host.
type EmulatedDescriptor struct {
	lanes int
}

// Emulated returns a portable descriptor with the given lane count, which
// must be 1, 4, 8 or 16.
func Emulated(lanes int) Descriptor {
	switch lanes {
	case 1:
		return ScalarDescriptor{}
	case 4, 8, 16:
		return EmulatedDescriptor{lanes: lanes}
	default:
		panic(fmt.Sprintf("simd: unsupported lane count %d", lanes))
	}
}

func (e EmulatedDescriptor) Len() int { return e.lanes }

func (e EmulatedDescriptor) Splat(x float32) Vec {
	v := make([]float32, e.lanes)
	for i := range v {
		v[i] = x
	}
	return v
}

func (e EmulatedDescriptor) LoadArray(src []float32) Vec {
	v := make([]float32, e.lanes)
	copy(v, src[:e.lanes])
	return v
}

func (e EmulatedDescriptor) StoreArray(dst []float32, v Vec) {
	copy(dst[:e.lanes], v.([]float32))
}

func (e EmulatedDescriptor) Add(a, b Vec) Vec {
	return e.zip(a, b, func(x, y float32) float32 { return x + y })
}

func (e EmulatedDescriptor) Sub(a, b Vec) Vec {
	return e.zip(a, b, func(x, y float32) float32 { return x - y })
}

func (e EmulatedDescriptor) Mul(a, b Vec) Vec {
	return e.zip(a, b, func(x, y float32) float32 { return x * y })
}

func (e EmulatedDescriptor) MulAdd(a, b, c Vec) Vec {
	return e.Add(e.Mul(a, b), c)
}

func (e EmulatedDescriptor) NegMulAdd(a, b, c Vec) Vec {
	return e.Sub(c, e.Mul(a, b))
}

func (e EmulatedDescriptor) TransposeSquare(data []float32, stride int) {
	for i := 0; i < e.lanes; i++ {
		for j := i + 1; j < e.lanes; j++ {
			data[i*stride+j], data[j*stride+i] = data[j*stride+i], data[i*stride+j]
		}
	}
}

func (e EmulatedDescriptor) MaybeDowngrade128bit() Descriptor {
	return EmulatedDescriptor{lanes: min(e.lanes, 4)}
}

func (e EmulatedDescriptor) MaybeDowngrade256bit() Descriptor {
	return EmulatedDescriptor{lanes: min(e.lanes, 8)}
}

func (e EmulatedDescriptor) zip(a, b Vec, f func(x, y float32) float32) Vec {
	x, y := a.([]float32), b.([]float32)
	out := make([]float32, e.lanes)
	for i := range out {
		out[i] = f(x[i], y[i])
	}
	return out
}
