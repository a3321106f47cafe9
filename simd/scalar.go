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

// ScalarDescriptor is the one-lane Descriptor. Generated wrappers fall
// back on it for sizes and tails too small for any vector width.
type ScalarDescriptor struct{}

// Scalar returns the one-lane descriptor.
func Scalar() Descriptor {
	return ScalarDescriptor{}
}

func (ScalarDescriptor) Len() int { return 1 }

func (ScalarDescriptor) Splat(x float32) Vec { return x }

func (ScalarDescriptor) LoadArray(src []float32) Vec { return src[0] }

func (ScalarDescriptor) StoreArray(dst []float32, v Vec) { dst[0] = v.(float32) }

func (ScalarDescriptor) Add(a, b Vec) Vec { return a.(float32) + b.(float32) }

func (ScalarDescriptor) Sub(a, b Vec) Vec { return a.(float32) - b.(float32) }

func (ScalarDescriptor) Mul(a, b Vec) Vec { return a.(float32) * b.(float32) }

func (ScalarDescriptor) MulAdd(a, b, c Vec) Vec {
	return a.(float32)*b.(float32) + c.(float32)
}

func (ScalarDescriptor) NegMulAdd(a, b, c Vec) Vec {
	return c.(float32) - a.(float32)*b.(float32)
}

// TransposeSquare is a no-op: a 1x1 block is its own transpose.
func (ScalarDescriptor) TransposeSquare([]float32, int) {}

func (s ScalarDescriptor) MaybeDowngrade128bit() Descriptor { return s }

func (s ScalarDescriptor) MaybeDowngrade256bit() Descriptor { return s }
