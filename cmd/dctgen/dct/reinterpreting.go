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

// reinterpretingDCT records the forward DCT of in followed by the
// per-frequency rescale that turns it into the low-frequency coefficients
// of a block eight times larger.
func (b *builder) reinterpretingDCT(in []ir.Register) []ir.Register {
	n := len(in)
	coeffs := b.dct(in)
	out := make([]ir.Register, n)
	for i, c := range coeffs {
		out[i] = b.scale(c, 1/ResamplingScale(i, n))
	}
	return out
}

// dct records an unnormalized n-point forward DCT. Output k equals
//
//	c_k * sum_j in[j] * cos((2j+1) k pi / 2n),  c_0 = 1, c_k = sqrt2
func (b *builder) dct(in []ir.Register) []ir.Register {
	n := len(in)
	if n == 2 {
		return []ir.Register{b.add(in[0], in[1]), b.sub(in[0], in[1])}
	}
	half := n / 2
	sums := make([]ir.Register, half)
	diffs := make([]ir.Register, half)
	for i := range half {
		sums[i] = b.add(in[i], in[n-1-i])
	}
	for i := range half {
		diffs[i] = b.scale(b.sub(in[i], in[n-1-i]), Multiplier(i, n))
	}
	first := b.dct(sums)
	second := b.bCombine(b.dct(diffs))
	return b.permute(append(first, second...), InverseEvenOddPermutation(n))
}

// bCombine turns the half-size DCT of the scaled differences into the odd
// outputs: adjacent terms are summed, the first one weighted by sqrt2, and
// the last one passes through unchanged.
func (b *builder) bCombine(c []ir.Register) []ir.Register {
	out := make([]ir.Register, len(c))
	out[0] = b.mulAdd(c[0], math.Sqrt2, c[1])
	for i := 1; i+1 < len(c); i++ {
		out[i] = b.add(c[i], c[i+1])
	}
	out[len(c)-1] = c[len(c)-1]
	return out
}
