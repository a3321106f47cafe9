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
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
	"github.com/ajroetker/hwydct/internal/reference"
)

// Tolerance is the largest relative error Check accepts.
const Tolerance = 1e-6

// ErrMismatch reports a kernel whose output disagrees with the reference.
var ErrMismatch = errors.New("kernel disagrees with the reference transform")

// Check runs fn through the IR interpreter on trials random inputs and
// compares every output with the dense reference transform, taking the
// kernel's memory layout into account. It returns the largest relative
// error seen.
func Check(fn *ir.Function, trials int, rng *rand.Rand) (float64, error) {
	ref := referenceFor(fn.Direction)
	worst := 0.0
	for range trials {
		got, want, err := runOnce(fn, ref, rng)
		if err != nil {
			return worst, err
		}
		e := reference.MaxRelativeError(got, want)
		worst = max(worst, e)
		if e > Tolerance {
			return worst, fmt.Errorf("%w: %s %s %dx%d lanes %d: relative error %.3g",
				ErrMismatch, fn.Direction, fn.Variant, fn.Rows, fn.Cols, fn.Lanes, e)
		}
	}
	return worst, nil
}

func referenceFor(dir ir.Direction) reference.Transform {
	if dir == ir.DirectionReinterpretingDCT {
		return reference.ReinterpretingDCT
	}
	return reference.IDCT
}

// runOnce evaluates fn on one random input and returns its output next to
// the expected one, both in the kernel's output layout.
func runOnce(fn *ir.Function, ref reference.Transform, rng *rand.Rand) (got, want []float64, err error) {
	lanes := max(fn.Lanes, 1)
	switch fn.Variant {
	case ir.VariantPlain:
		// n rows of four columns.
		const cols = 4
		n := fn.Rows
		x := randomMatrix(rng, n, cols)
		want = reference.Transpose(rowsOf(ref, reference.Transpose(x, n, cols), cols, n), cols, n)
		got = x
		err = ir.Eval(fn, got, cols, cols)

	case ir.VariantRowBlock:
		n := fn.Rows
		x := randomMatrix(rng, lanes, n)
		want = rowsOf(ref, x, lanes, n)
		got = transposeBlocks(x, lanes, n, lanes)
		if err = ir.Eval(fn, got, lanes, n); err == nil {
			got = transposeBlocks(got, lanes, n, lanes)
		}

	case ir.VariantTransposed:
		n, m := fn.Rows, fn.Cols
		x := randomMatrix(rng, n, m)
		// Columns of x are rows of x^T; the kernel leaves (T x)^T.
		want = rowsOf(ref, reference.Transpose(x, n, m), m, n)
		got = x
		err = ir.Eval(fn, got, lanes, 0)

	case ir.Variant2D:
		rows, cols := fn.Rows, fn.Cols
		x := randomMatrix(rng, rows, cols)
		want = reference.Transpose(reference.Separable(ref, x, rows, cols), rows, cols)
		got = x
		err = ir.Eval(fn, got, lanes, 0)

	default:
		return nil, nil, fmt.Errorf("check: unknown variant %s", fn.Variant)
	}
	return got, want, err
}

func randomMatrix(rng *rand.Rand, rows, cols int) []float64 {
	x := make([]float64, rows*cols)
	for i := range x {
		x[i] = 2*rng.Float64() - 1
	}
	return x
}

// rowsOf applies t to each row of a rows x cols matrix.
func rowsOf(t reference.Transform, x []float64, rows, cols int) []float64 {
	out := make([]float64, 0, len(x))
	for r := range rows {
		out = append(out, t(x[r*cols:(r+1)*cols])...)
	}
	return out
}

// transposeBlocks returns x with each lanes x lanes block transposed in place.
func transposeBlocks(x []float64, rows, cols, lanes int) []float64 {
	out := make([]float64, len(x))
	for r := range rows {
		for c := range cols {
			r0, c0 := r/lanes*lanes, c/lanes*lanes
			out[(r0+c-c0)*cols+c0+r-r0] = x[r*cols+c]
		}
	}
	return out
}
