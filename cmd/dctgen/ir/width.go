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

package ir

import (
	"fmt"
	"strings"
)

// Width is a SIMD width class. Generated kernels operate on float32, so
// the lane count is the width in bytes divided by four.
type Width int

const (
	// WidthScalar is the one-lane descriptor.
	WidthScalar Width = iota

	// Width128 covers SSE4 and NEON (4 lanes).
	Width128

	// Width256 covers AVX2 (8 lanes).
	Width256

	// WidthFull is the widest descriptor, AVX-512 (16 lanes).
	WidthFull
)

// Widths lists every class, narrowest first.
var Widths = []Width{WidthScalar, Width128, Width256, WidthFull}

// String returns the flag spelling of the class.
func (w Width) String() string {
	switch w {
	case WidthScalar:
		return "scalar"
	case Width128:
		return "128"
	case Width256:
		return "256"
	case WidthFull:
		return "512"
	default:
		return fmt.Sprintf("Width(%d)", w)
	}
}

// Bytes returns the vector width in bytes.
func (w Width) Bytes() int {
	switch w {
	case Width128:
		return 16
	case Width256:
		return 32
	case WidthFull:
		return 64
	default:
		return 4
	}
}

// Lanes returns the number of float32 lanes.
func (w Width) Lanes() int {
	return w.Bytes() / 4
}

// WidthFor picks the widest class worth using for a transform of the
// given size: a vector never spans more lanes than the block has columns.
func WidthFor(size int) Width {
	switch {
	case size < 4:
		return WidthScalar
	case size < 8:
		return Width128
	case size < 16:
		return Width256
	default:
		return WidthFull
	}
}

// WidthForLanes returns the class with the given lane count.
func WidthForLanes(lanes int) (Width, error) {
	for _, w := range Widths {
		if w.Lanes() == lanes {
			return w, nil
		}
	}
	return 0, fmt.Errorf("no SIMD width with %d lanes", lanes)
}

// ParseWidth parses a class name as accepted by the --max-width flag.
func ParseWidth(s string) (Width, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar", "1":
		return WidthScalar, nil
	case "128", "128bit", "sse4", "neon":
		return Width128, nil
	case "256", "256bit", "avx2":
		return Width256, nil
	case "512", "512bit", "full", "avx512":
		return WidthFull, nil
	default:
		return 0, fmt.Errorf("unknown SIMD width: %s (valid: scalar, 128, 256, 512)", s)
	}
}

// Narrowest returns the smaller of two classes.
func Narrowest(a, b Width) Width {
	return min(a, b)
}
