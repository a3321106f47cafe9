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

// Package dct builds the operation records of fast DCT kernels: the 1D
// inverse and reinterpreting butterfly networks, their memory layouts,
// and the fused 2D composition.
//
// Every exported builder validates its sizes first and returns one of the
// precondition errors of this package before recording anything. Builders
// own their register allocator, so independent builds may run in parallel.
package dct

import (
	"context"
	"fmt"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// vectorLanes are the lane counts of the vector width classes, widest first.
var vectorLanes = []int{16, 8, 4}

// BuildKernel builds the plain n-point kernel: it transforms a column
// group of n rows addressed through the runtime stride and works with
// any vector width.
func BuildKernel(dir ir.Direction, n int, opts ...Option) (fn *ir.Function, err error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.validateSize(dir, n); err != nil {
		return nil, err
	}
	defer guard(&err)
	b := newBuilder(dir, 0)
	b.plain(n)
	return b.finish(&ir.Function{Variant: ir.VariantPlain, Rows: n, Width: ir.Narrowest(ir.WidthFor(n), c.maxWidth)})
}

// BuildRowBlock builds the row-block kernel of an n-point transform for
// the given lane count.
func BuildRowBlock(dir ir.Direction, n, lanes int, opts ...Option) (fn *ir.Function, err error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.validateSize(dir, n); err != nil {
		return nil, err
	}
	width, err := laneWidth(n, lanes)
	if err != nil {
		return nil, err
	}
	defer guard(&err)
	b := newBuilder(dir, lanes)
	b.rowBlock(n, 0, 0)
	return b.finish(&ir.Function{Variant: ir.VariantRowBlock, Rows: n, Width: width})
}

// BuildTransposed builds the transposed-store kernel of an n-point
// transform over an n x m tile. It leaves (T X)^T as an m x n matrix.
func BuildTransposed(dir ir.Direction, n, m, lanes int, opts ...Option) (fn *ir.Function, err error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.validateSize(dir, n); err != nil {
		return nil, err
	}
	if m < 1 || m > n || !IsPowerOfTwo(m) {
		return nil, fmt.Errorf("%w: %s tile %dx%d", ErrSizeOutOfRange, dir, n, m)
	}
	if err := checkLanes(n, m, lanes); err != nil {
		return nil, err
	}
	width, err := laneWidth(n, lanes)
	if err != nil {
		return nil, err
	}
	defer guard(&err)
	b := newBuilder(dir, lanes)
	b.transposed(n, m)
	return b.finish(&ir.Function{Variant: ir.VariantTransposed, Rows: n, Cols: m, Width: width})
}

// Build1D builds everything emitted for one 1D size: the dispatch entry
// over the plain kernel, and the row-block and transposed-store variants
// ("trh" over n x n/2, "trq" over n x n/4) for each vector lane count the
// size class allows. A transposed-store variant unrolls one transform per
// column group, so it is only built while n times the number of groups
// stays within MaxTransposedUnroll.
func Build1D(dir ir.Direction, n int, opts ...Option) (*ir.Module, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.validateSize(dir, n); err != nil {
		return nil, err
	}
	kernel, err := BuildKernel(dir, n, opts...)
	if err != nil {
		return nil, err
	}
	m := &ir.Module{
		Direction: dir,
		Entries:   []*ir.Entry{{Direction: dir, Rows: n, Width: kernel.Width, Kernels: []*ir.Function{kernel}}},
	}
	for _, lanes := range c.lanesFor(kernel.Width) {
		fn, err := BuildRowBlock(dir, n, lanes, opts...)
		if err != nil {
			return nil, err
		}
		m.Variants = append(m.Variants, fn)
		for _, k := range []int{2, 4} {
			cols := n / k
			if cols < lanes || n*(cols/lanes) > MaxTransposedUnroll {
				continue
			}
			fn, err := BuildTransposed(dir, n, cols, lanes, opts...)
			if err != nil {
				return nil, err
			}
			m.Variants = append(m.Variants, fn)
		}
	}
	return m, nil
}

// Build2D builds the fused 2D kernel of a rows x cols tile for one lane
// count. The kernel leaves the transform of the tile in transposed layout:
// element (r, c) of the result is stored at c*rows + r.
func Build2D(dir ir.Direction, rows, cols, lanes int, opts ...Option) (fn *ir.Function, err error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.validate2D(dir, rows, cols); err != nil {
		return nil, err
	}
	if err := checkLanes(rows, cols, lanes); err != nil {
		return nil, err
	}
	width, err := ir.WidthForLanes(lanes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLanes, err)
	}
	defer guard(&err)
	b := newBuilder(dir, lanes)
	b.compose2D(rows, cols)
	return b.finish(&ir.Function{Variant: ir.Variant2D, Rows: rows, Cols: cols, Width: width})
}

// BuildEntry2D builds the dispatch entry of a rows x cols tile: one kernel
// per vector lane count allowed by the class of the smaller dimension,
// widest first, followed by the one-lane fallback.
func BuildEntry2D(dir ir.Direction, rows, cols int, opts ...Option) (*ir.Entry, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.validate2D(dir, rows, cols); err != nil {
		return nil, err
	}
	width := ir.Narrowest(ir.WidthFor(min(rows, cols)), c.maxWidth)
	e := &ir.Entry{Direction: dir, Rows: rows, Cols: cols, Width: width}
	for _, lanes := range append(c.lanesFor(width), 1) {
		fn, err := Build2D(dir, rows, cols, lanes, opts...)
		if err != nil {
			return nil, err
		}
		e.Kernels = append(e.Kernels, fn)
	}
	return e, nil
}

// BuildTable builds the entries of every pair in Table within the size
// limit of the family. Entries are built concurrently and returned in
// table order.
func BuildTable(ctx context.Context, dir ir.Direction, opts ...Option) (*ir.Module, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	pairs := lo.Filter(Table(), func(p [2]int, _ int) bool {
		return max(p[0], p[1]) <= c.maxSize(dir)
	})
	entries := make([]*ir.Entry, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := BuildEntry2D(dir, p[0], p[1], opts...)
			if err != nil {
				return fmt.Errorf("%dx%d: %w", p[0], p[1], err)
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ir.Module{Direction: dir, Entries: entries}, nil
}

// lanesFor returns the vector lane counts up to width, widest first.
func (c *config) lanesFor(width ir.Width) []int {
	var lanes []int
	for _, l := range vectorLanes {
		if l <= width.Lanes() && l <= c.maxWidth.Lanes() {
			lanes = append(lanes, l)
		}
	}
	return lanes
}

// laneWidth returns the width class of a kernel over n elements per lane
// group.
func laneWidth(n, lanes int) (ir.Width, error) {
	if lanes <= 0 || n%lanes != 0 {
		return 0, fmt.Errorf("%w: size %d with %d lanes", ErrLanes, n, lanes)
	}
	w, err := ir.WidthForLanes(lanes)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLanes, err)
	}
	return w, nil
}
