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

package emit

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

// acronyms keep their all-caps spelling in Go identifiers.
var acronyms = map[string]string{
	"dct":  "DCT",
	"idct": "IDCT",
}

// exportedBase returns the Go spelling of a direction, e.g.
// "reinterpreting_dct" -> "ReinterpretingDCT".
func exportedBase(dir ir.Direction) string {
	caser := cases.Title(language.English)
	var sb strings.Builder
	for _, w := range strings.Split(dir.String(), "_") {
		if a, ok := acronyms[w]; ok {
			sb.WriteString(a)
			continue
		}
		sb.WriteString(caser.String(w))
	}
	return sb.String()
}

// unexportedBase lowercases the first word of exportedBase.
func unexportedBase(dir ir.Direction) string {
	first, rest, _ := strings.Cut(dir.String(), "_")
	if rest == "" {
		return first
	}
	caser := cases.Title(language.English)
	var sb strings.Builder
	sb.WriteString(first)
	for _, w := range strings.Split(rest, "_") {
		if a, ok := acronyms[w]; ok {
			sb.WriteString(a)
			continue
		}
		sb.WriteString(caser.String(w))
	}
	return sb.String()
}

// transposedSuffix names a transposed-store kernel by its tile shape:
// "trh" for n x n/2, "trq" for n x n/4.
func transposedSuffix(fn *ir.Function) string {
	switch fn.Rows / fn.Cols {
	case 2:
		return "trh"
	case 4:
		return "trq"
	default:
		return fmt.Sprintf("x%d_transposed", fn.Cols)
	}
}

// GoEntryName returns the exported wrapper name of an entry, e.g. IDCT8 or
// IDCT2D8x16.
func GoEntryName(e *ir.Entry) string {
	if e.Is2D() {
		return fmt.Sprintf("%s2D%dx%d", exportedBase(e.Direction), e.Rows, e.Cols)
	}
	return fmt.Sprintf("%s%d", exportedBase(e.Direction), e.Rows)
}

// GoKernelName returns the Go function name of a kernel. Variant kernels
// are exported; kernels behind an entry are not.
func GoKernelName(fn *ir.Function) string {
	switch fn.Variant {
	case ir.VariantPlain:
		return fmt.Sprintf("%s%d", unexportedBase(fn.Direction), fn.Rows)
	case ir.VariantRowBlock:
		return fmt.Sprintf("%s%dRowBlock%d", exportedBase(fn.Direction), fn.Rows, fn.Lanes)
	case ir.VariantTransposed:
		suffix := fmt.Sprintf("X%dTransposed", fn.Cols)
		if r := fn.Rows / fn.Cols; r == 2 || r == 4 {
			suffix = cases.Title(language.English).String(transposedSuffix(fn))
		}
		return fmt.Sprintf("%s%d%s%d", exportedBase(fn.Direction), fn.Rows, suffix, fn.Lanes)
	default:
		return fmt.Sprintf("%s2D%dx%dLanes%d", unexportedBase(fn.Direction), fn.Rows, fn.Cols, fn.Lanes)
	}
}

// RustEntryName returns the snake_case wrapper name of an entry.
func RustEntryName(e *ir.Entry) string {
	if e.Is2D() {
		return fmt.Sprintf("%s_2d_%dx%d", e.Direction, e.Rows, e.Cols)
	}
	return fmt.Sprintf("%s_%d", e.Direction, e.Rows)
}

// RustKernelName returns the snake_case name of a kernel.
func RustKernelName(fn *ir.Function) string {
	switch fn.Variant {
	case ir.VariantPlain:
		return fmt.Sprintf("%s_%d_kernel", fn.Direction, fn.Rows)
	case ir.VariantRowBlock:
		return fmt.Sprintf("%s_%d_rowblock_%d", fn.Direction, fn.Rows, fn.Lanes)
	case ir.VariantTransposed:
		return fmt.Sprintf("%s_%d_%s_%d", fn.Direction, fn.Rows, transposedSuffix(fn), fn.Lanes)
	default:
		return fmt.Sprintf("%s_2d_%dx%d_lanes%d", fn.Direction, fn.Rows, fn.Cols, fn.Lanes)
	}
}
