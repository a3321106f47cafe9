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

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

const (
	// MinSize is the smallest transform size.
	MinSize = 2

	// MaxSize bounds both families and every dimension of a 2D tile.
	MaxSize = 256

	// DefaultMaxReinterpretingSize is the largest reinterpreting transform
	// callers need; WithMaxReinterpretingSize raises it up to MaxSize.
	DefaultMaxReinterpretingSize = 32

	// MaxTableSize is the largest dimension in the 2D table.
	MaxTableSize = 32

	// MaxTransposedUnroll bounds n * (m / lanes) for the n x m
	// transposed-store variants of Build1D.
	MaxTransposedUnroll = 512
)

// Precondition errors. They are reported before any op is built.
var (
	ErrSizeOutOfRange = errors.New("size out of range")
	ErrNotPowerOfTwo  = errors.New("size is not a power of two")
	ErrAspectRatio    = errors.New("unsupported aspect ratio")
	ErrLanes          = errors.New("dimension is not a multiple of the lane count")
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Option configures a build.
type Option func(*config)

type config struct {
	maxWidth              ir.Width
	maxReinterpretingSize int
}

// WithMaxWidth limits the widest SIMD class kernels are generated for.
func WithMaxWidth(w ir.Width) Option {
	return func(c *config) {
		c.maxWidth = w
	}
}

// WithMaxReinterpretingSize sets the size limit of the reinterpreting family.
func WithMaxReinterpretingSize(n int) Option {
	return func(c *config) {
		c.maxReinterpretingSize = n
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		maxWidth:              ir.WidthFull,
		maxReinterpretingSize: DefaultMaxReinterpretingSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	n := c.maxReinterpretingSize
	if n < MinSize || n > MaxSize || !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: reinterpreting size limit %d must be a power of two in [%d, %d]",
			ErrSizeOutOfRange, n, MinSize, MaxSize)
	}
	if c.maxWidth < ir.WidthScalar || c.maxWidth > ir.WidthFull {
		return nil, fmt.Errorf("invalid SIMD width %d", c.maxWidth)
	}
	return c, nil
}

// CheckOptions reports whether opts are valid, without building anything.
func CheckOptions(opts ...Option) error {
	_, err := newConfig(opts)
	return err
}

// Sizes returns every supported 1D size of the family under opts, smallest
// first.
func Sizes(dir ir.Direction, opts ...Option) ([]int, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	var sizes []int
	for n := MinSize; n <= c.maxSize(dir); n *= 2 {
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// maxSize returns the largest transform size of the family.
func (c *config) maxSize(dir ir.Direction) int {
	if dir == ir.DirectionReinterpretingDCT {
		return c.maxReinterpretingSize
	}
	return MaxSize
}

func (c *config) validateSize(dir ir.Direction, n int) error {
	if err := c.checkRange(dir, n); err != nil {
		return err
	}
	if !IsPowerOfTwo(n) {
		return fmt.Errorf("%w: %s size %d", ErrNotPowerOfTwo, dir, n)
	}
	return nil
}

func (c *config) checkRange(dir ir.Direction, n int) error {
	if n < MinSize || n > c.maxSize(dir) {
		return fmt.Errorf("%w: %s size %d must be in [%d, %d]", ErrSizeOutOfRange, dir, n, MinSize, c.maxSize(dir))
	}
	return nil
}

// validate2D checks both dimensions and their ratio. The ratio is checked
// before the power-of-two rule so that e.g. 12x4 reports its ratio of 3.
func (c *config) validate2D(dir ir.Direction, rows, cols int) error {
	if err := c.checkRange(dir, rows); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	if err := c.checkRange(dir, cols); err != nil {
		return fmt.Errorf("cols: %w", err)
	}
	hi, lo := max(rows, cols), min(rows, cols)
	if ratio := hi / lo; hi%lo != 0 || (ratio != 1 && ratio != 2 && ratio != 4) {
		return fmt.Errorf("%w: %dx%d (supported ratios: 1, 2, 4)", ErrAspectRatio, rows, cols)
	}
	if err := c.validateSize(dir, rows); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	if err := c.validateSize(dir, cols); err != nil {
		return fmt.Errorf("cols: %w", err)
	}
	return nil
}

func checkLanes(rows, cols, lanes int) error {
	if lanes <= 0 || !IsPowerOfTwo(lanes) {
		return fmt.Errorf("%w: invalid lane count %d", ErrLanes, lanes)
	}
	if rows%lanes != 0 || cols%lanes != 0 {
		return fmt.Errorf("%w: %dx%d with %d lanes", ErrLanes, rows, cols, lanes)
	}
	return nil
}

// Table returns the (rows, cols) pairs generated by the 2D commands: every
// pair of sizes up to MaxTableSize whose aspect ratio is supported, in
// row-major order.
func Table() [][2]int {
	var pairs [][2]int
	for rows := MinSize; rows <= MaxTableSize; rows *= 2 {
		for cols := MinSize; cols <= MaxTableSize; cols *= 2 {
			if max(rows, cols)/min(rows, cols) <= 4 {
				pairs = append(pairs, [2]int{rows, cols})
			}
		}
	}
	return pairs
}
