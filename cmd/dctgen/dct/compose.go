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

// compose2D records the separable transform Y = T_rows X T_cols^T of the
// rows x cols row-major tile X. Memory ends up holding Y^T as a
// cols x rows row-major matrix.
func (b *builder) compose2D(rows, cols int) {
	switch {
	case rows < cols:
		b.composeWide(rows, cols)
	case rows == cols:
		b.composeSquare(rows)
	default:
		b.composeTall(rows, cols)
	}
}

// composeWide transforms every row in place through transposed row
// blocks, then runs the column transform with a transposed store.
func (b *builder) composeWide(rows, cols int) {
	lanes := b.lanes
	for r0 := 0; r0 < rows; r0 += lanes {
		for q := 0; q < cols; q += lanes {
			b.transposeBlock(r0, q, cols)
		}
		b.rowBlock(cols, r0, cols)
		for q := 0; q < cols; q += lanes {
			b.transposeBlock(r0, q, cols)
		}
	}
	b.transposed(rows, cols)
}

// composeSquare runs the column transform, transposes the tile block by
// block and transforms each block column as soon as it is complete.
func (b *builder) composeSquare(n int) {
	lanes := b.lanes
	for c := 0; c < n; c += lanes {
		b.columns(n, c, n)
	}
	for i := 0; i < n; i += lanes {
		for j := i; j < n; j += lanes {
			if i == j {
				b.transposeBlock(i, i, n)
				continue
			}
			b.transposeBlock(i, j, n)
			b.transposeBlock(j, i, n)
			b.swapBlocks(i, j, j, i, n)
		}
		b.columns(n, i, n)
	}
}

// composeTall folds the transpose into the first pass with the
// transposed-store column transform; the second pass transforms the
// columns of the resulting cols x rows matrix.
func (b *builder) composeTall(rows, cols int) {
	b.transposed(rows, cols)
	for c := 0; c < rows; c += b.lanes {
		b.columns(cols, c, rows)
	}
}
