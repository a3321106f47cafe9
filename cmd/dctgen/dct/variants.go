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

import "github.com/ajroetker/hwydct/cmd/dctgen/ir"

// layout maps logical transform element i to the (row, col) of the vector
// holding it.
type layout func(i int) (row, col int)

// columnAt places element i at (row0+i, col): one column group.
func columnAt(row0, col int) layout {
	return func(i int) (int, int) {
		return row0 + i, col
	}
}

// rowBlockAt places element i at (row0 + i mod lanes, col0 + (i/lanes)*lanes).
// After every lanes x lanes block of a row block has been transposed, the
// vector there holds element i of each of the block's rows.
func rowBlockAt(row0, col0, lanes int) layout {
	return func(i int) (int, int) {
		return row0 + i%lanes, col0 + (i/lanes)*lanes
	}
}

func (b *builder) loadAll(n int, at layout, stride int) []ir.Register {
	regs := make([]ir.Register, n)
	for i := range regs {
		row, col := at(i)
		regs[i] = b.load(row, col, stride)
	}
	return regs
}

func (b *builder) storeAll(regs []ir.Register, at layout, stride int) {
	for i, r := range regs {
		row, col := at(i)
		b.store(r, row, col, stride)
	}
}

// plain transforms the n-row column group at the data pointer, addressed
// through the runtime stride.
func (b *builder) plain(n int) {
	at := columnAt(0, 0)
	b.storeAll(b.transform(b.loadAll(n, at, 0)), at, 0)
}

// rowBlock transforms the rows of the lanes-row block starting at row0.
// The caller transposes each lanes x lanes block before and after.
func (b *builder) rowBlock(n, row0, stride int) {
	at := rowBlockAt(row0, 0, b.lanes)
	b.storeAll(b.transform(b.loadAll(n, at, stride)), at, stride)
}

// columns transforms the n-row column group at col of a tile with the
// given stride, in place.
func (b *builder) columns(n, col, stride int) {
	at := columnAt(0, col)
	b.storeAll(b.transform(b.loadAll(n, at, stride)), at, stride)
}

// transposed transforms every column of the n x m tile X and leaves
// (T X)^T behind as an m x n row-major matrix. All column groups are loaded
// before the first store since the output overwrites the input.
func (b *builder) transposed(n, m int) {
	lanes := b.lanes
	groups := make([][]ir.Register, m/lanes)
	for g := range groups {
		groups[g] = b.loadAll(n, columnAt(0, g*lanes), m)
	}
	for g, in := range groups {
		b.storeAll(b.transform(in), rowBlockAt(g*lanes, 0, lanes), n)
	}
	for g := range groups {
		for q := 0; q < n/lanes; q++ {
			b.transposeBlock(g*lanes, q*lanes, n)
		}
	}
}
