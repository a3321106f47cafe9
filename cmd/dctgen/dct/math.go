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
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// Multiplier returns the butterfly weight 1 / (2 cos((i+0.5) pi / n)) that
// joins the two half-size transforms at output pair (i, n-1-i).
// Defined for 0 <= i < n/2.
func Multiplier(i, n int) float64 {
	return 1 / (2 * math.Cos((float64(i)+0.5)*math.Pi/float64(n)))
}

// ResamplingScale returns n cos(i pi/16n) cos(i pi/8n) cos(i pi/4n): the gain
// that averaging eight neighbouring samples applies to frequency i of an
// n-point block. The reinterpreting transform divides it back out.
func ResamplingScale(i, n int) float64 {
	x := float64(i) * math.Pi
	fn := float64(n)
	return fn * math.Cos(x/(16*fn)) * math.Cos(x/(8*fn)) * math.Cos(x/(4*fn))
}

// EvenOddSplit returns the elements at even and at odd positions.
func EvenOddSplit[T any](s []T) (evens, odds []T) {
	evens = lo.Filter(s, func(_ T, i int) bool { return i%2 == 0 })
	odds = lo.Filter(s, func(_ T, i int) bool { return i%2 == 1 })
	return evens, odds
}

// Interleave is the inverse of EvenOddSplit. It panics with
// ir.ErrInvariant when the halves differ in length.
func Interleave[T any](evens, odds []T) []T {
	if len(evens) != len(odds) {
		panic(fmt.Errorf("%w: interleave of %d evens with %d odds", ir.ErrInvariant, len(evens), len(odds)))
	}
	out := make([]T, 0, 2*len(evens))
	for i := range evens {
		out = append(out, evens[i], odds[i])
	}
	return out
}

// EvenOddPermutation returns perm with out[i] = in[perm[i]] gathering even
// positions first, then odd positions.
func EvenOddPermutation(n int) []int {
	evens, odds := EvenOddSplit(lo.Range(n))
	return append(evens, odds...)
}

// InverseEvenOddPermutation undoes EvenOddPermutation: the first half of
// the input lands on even positions, the second half on odd positions.
func InverseEvenOddPermutation(n int) []int {
	idx := lo.Range(n)
	return Interleave(idx[:n/2], idx[n/2:])
}
