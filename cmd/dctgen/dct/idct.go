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
	"math"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// idct records an n-point inverse DCT of in and returns the output
// registers in natural order. Output k equals
//
//	in[0] + sqrt2 * sum_{j>=1} in[j] * cos((2k+1) j pi / 2n)
//
// n must be a power of two >= 2.
func (b *builder) idct(in []ir.Register) []ir.Register {
	n := len(in)
	if n == 2 {
		return []ir.Register{b.add(in[0], in[1]), b.sub(in[0], in[1])}
	}
	half := n / 2
	split := b.permute(in, EvenOddPermutation(n))
	first := b.idct(split[:half])
	second := b.idct(b.bTranspose(split[half:]))

	out := make([]ir.Register, n)
	for i := range half {
		m := Multiplier(i, n)
		out[i] = b.mulAdd(second[i], m, first[i])
		out[n-1-i] = b.negMulAdd(second[i], m, first[i])
	}
	return out
}

// bTranspose folds the odd coefficients into a half-size IDCT input: each
// element is summed with its predecessor, and the first one, which has no
// predecessor, carries the DC normalization of sqrt2 instead.
func (b *builder) bTranspose(odd []ir.Register) []ir.Register {
	out := make([]ir.Register, len(odd))
	out[0] = b.scale(odd[0], math.Sqrt2)
	for i := 1; i < len(odd); i++ {
		out[i] = b.add(odd[i], odd[i-1])
	}
	return out
}
