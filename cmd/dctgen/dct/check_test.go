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
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
	"github.com/ajroetker/hwydct/internal/reference"
)

func checkAll(t *testing.T, fns []*ir.Function, trials int, rng *rand.Rand) {
	t.Helper()
	for _, fn := range fns {
		e, err := Check(fn, trials, rng)
		require.NoError(t, err, "%s %s %dx%d lanes %d", fn.Direction, fn.Variant, fn.Rows, fn.Cols, fn.Lanes)
		assert.LessOrEqual(t, e, Tolerance)
	}
}

func TestIDCT1D(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 1))
	for n := MinSize; n <= MaxSize; n *= 2 {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			m, err := Build1D(ir.DirectionIDCT, n)
			require.NoError(t, err)
			checkAll(t, m.Functions(), 2, rng)
		})
	}
}

func TestReinterpretingDCT1D(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 2))
	for n := MinSize; n <= DefaultMaxReinterpretingSize; n *= 2 {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			m, err := Build1D(ir.DirectionReinterpretingDCT, n)
			require.NoError(t, err)
			checkAll(t, m.Functions(), 3, rng)
		})
	}
}

func TestReinterpretingDCTRaisedLimit(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 3))
	fn, err := BuildKernel(ir.DirectionReinterpretingDCT, 128, WithMaxReinterpretingSize(128))
	require.NoError(t, err)
	checkAll(t, []*ir.Function{fn}, 2, rng)
}

func TestTable2D(t *testing.T) {
	for _, dir := range []ir.Direction{ir.DirectionIDCT, ir.DirectionReinterpretingDCT} {
		t.Run(dir.String(), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(11, uint64(dir)))
			m, err := BuildTable(context.Background(), dir)
			require.NoError(t, err)
			for _, e := range m.Entries {
				checkAll(t, e.Kernels, 2, rng)
			}
		})
	}
}

func TestTallAndWide2D(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 1))
	tests := []struct{ rows, cols, lanes int }{
		{64, 16, 16},
		{16, 64, 8},
		{64, 64, 16},
		{128, 32, 4},
	}
	for _, tt := range tests {
		fn, err := Build2D(ir.DirectionIDCT, tt.rows, tt.cols, tt.lanes)
		require.NoError(t, err)
		checkAll(t, []*ir.Function{fn}, 1, rng)
	}
}

// TestIDCTInvertsDCT runs the forward reference through the generated
// inverse: the pair is the identity up to a factor of n.
func TestIDCTInvertsDCT(t *testing.T) {
	const n = 16
	fn, err := BuildKernel(ir.DirectionIDCT, n)
	require.NoError(t, err)

	x := []float64{3, -1, 4, 1, -5, 9, 2, -6, 5, 3, -5, 8, 9, -7, 9, 3}
	data := reference.DCT(x)
	require.NoError(t, ir.Eval(fn, data, 1, 1))
	for i := range x {
		assert.InDelta(t, float64(n)*x[i], data[i], 1e-9, "element %d", i)
	}
}

func TestCheckDetectsMismatch(t *testing.T) {
	fn, err := BuildKernel(ir.DirectionIDCT, 8)
	require.NoError(t, err)
	for i := range fn.Ops {
		if fn.Ops[i].Code == ir.OpMulAdd {
			fn.Ops[i].Const += 0.25
			break
		}
	}
	_, err = Check(fn, 4, rand.New(rand.NewPCG(1, 1)))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestCheckRejectsUnknownVariant(t *testing.T) {
	fn := &ir.Function{Variant: ir.Variant(42), Rows: 4}
	_, err := Check(fn, 1, rand.New(rand.NewPCG(1, 1)))
	assert.Error(t, err)
}

func TestTransposeBlocks(t *testing.T) {
	x := []float64{
		0, 1, 2, 3,
		4, 5, 6, 7,
	}
	want := []float64{
		0, 4, 2, 6,
		1, 5, 3, 7,
	}
	got := transposeBlocks(x, 2, 4, 2)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transposeBlocks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(x, transposeBlocks(got, 2, 4, 2)); diff != "" {
		t.Errorf("transposeBlocks is not an involution (-want +got):\n%s", diff)
	}
}
