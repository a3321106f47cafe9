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

// Package simd defines the vector contract that kernels generated by
// dctgen are written against. Generated code never touches hardware
// intrinsics; it only calls a Descriptor.
//
// A Descriptor stands for one vector width. Its vectors hold Len() float32
// lanes. Loads and stores read or write Len() consecutive elements starting
// at the beginning of the given slice.
package simd

// Vec is an opaque vector value produced by a Descriptor. Vectors must
// only be passed back to the Descriptor that produced them.
type Vec any

// Descriptor is the operation set of one vector width.
type Descriptor interface {
	// Len returns the number of float32 lanes.
	Len() int

	// Splat returns a vector with every lane set to x.
	Splat(x float32) Vec

	// LoadArray loads Len() elements from the start of src.
	LoadArray(src []float32) Vec

	// StoreArray stores v into the first Len() elements of dst.
	StoreArray(dst []float32, v Vec)

	Add(a, b Vec) Vec
	Sub(a, b Vec) Vec
	Mul(a, b Vec) Vec

	// MulAdd returns a*b + c.
	MulAdd(a, b, c Vec) Vec

	// NegMulAdd returns c - a*b.
	NegMulAdd(a, b, c Vec) Vec

	// TransposeSquare transposes, in place, the Len() x Len() block whose
	// rows start at data[0], data[stride], ...
	TransposeSquare(data []float32, stride int)

	// MaybeDowngrade128bit returns a descriptor of at most 128 bits.
	MaybeDowngrade128bit() Descriptor

	// MaybeDowngrade256bit returns a descriptor of at most 256 bits.
	MaybeDowngrade256bit() Descriptor
}

// SwapBlocks exchanges the d.Len() x d.Len() blocks that start at data[a]
// and data[b]. Rows of both blocks are stride elements apart.
func SwapBlocks(d Descriptor, data []float32, a, b, stride int) {
	for i := 0; i < d.Len(); i++ {
		va := d.LoadArray(data[a+i*stride:])
		vb := d.LoadArray(data[b+i*stride:])
		d.StoreArray(data[a+i*stride:], vb)
		d.StoreArray(data[b+i*stride:], va)
	}
}
