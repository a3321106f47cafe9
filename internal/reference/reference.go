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

// Package reference implements the transforms produced by dctgen directly
// from their O(N^2) definitions. It is the ground truth the generated
// operation lists are checked against.
package reference

import "math"

// Transform is a dense 1D transform.
type Transform func(x []float64) []float64

// IDCT returns out[k] = x[0] + sqrt2 * sum_{n>=1} x[n] cos((2k+1) n pi / 2N).
func IDCT(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for k := range out {
		sum := x[0]
		for j := 1; j < n; j++ {
			sum += math.Sqrt2 * x[j] * math.Cos(float64((2*k+1)*j)*math.Pi/float64(2*n))
		}
		out[k] = sum
	}
	return out
}

// DCT returns the forward transform matching IDCT up to a factor of N:
// out[k] = c_k sum_n x[n] cos((2n+1) k pi / 2N), with c_0 = 1, c_k = sqrt2.
func DCT(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for k := range out {
		sum := 0.0
		for j, v := range x {
			sum += v * math.Cos(float64((2*j+1)*k)*math.Pi/float64(2*n))
		}
		if k > 0 {
			sum *= math.Sqrt2
		}
		out[k] = sum
	}
	return out
}

// ReinterpretingDCT returns DCT(x)[k] / (N cos(k pi/16N) cos(k pi/8N) cos(k pi/4N)).
func ReinterpretingDCT(x []float64) []float64 {
	n := float64(len(x))
	out := DCT(x)
	for k := range out {
		a := float64(k) * math.Pi
		out[k] /= n * math.Cos(a/(16*n)) * math.Cos(a/(8*n)) * math.Cos(a/(4*n))
	}
	return out
}

// Separable applies t to every row and then to every column of the
// rows x cols row-major matrix x. The result is rows x cols row-major.
func Separable(t Transform, x []float64, rows, cols int) []float64 {
	y := make([]float64, rows*cols)
	for r := range rows {
		copy(y[r*cols:], t(x[r*cols:(r+1)*cols]))
	}
	col := make([]float64, rows)
	for c := range cols {
		for r := range rows {
			col[r] = y[r*cols+c]
		}
		for r, v := range t(col) {
			y[r*cols+c] = v
		}
	}
	return y
}

// Transpose returns the cols x rows transpose of a rows x cols matrix.
func Transpose(x []float64, rows, cols int) []float64 {
	out := make([]float64, len(x))
	for r := range rows {
		for c := range cols {
			out[c*rows+r] = x[r*cols+c]
		}
	}
	return out
}

// MaxRelativeError returns max |got[i] - want[i]| / max(1, max |want|).
func MaxRelativeError(got, want []float64) float64 {
	scale := 1.0
	for _, w := range want {
		scale = max(scale, math.Abs(w))
	}
	worst := 0.0
	for i := range want {
		worst = max(worst, math.Abs(got[i]-want[i])/scale)
	}
	return worst
}
