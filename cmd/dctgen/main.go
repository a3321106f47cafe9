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

// Command dctgen generates fast DCT kernels written against a SIMD
// abstraction.
//
// Usage:
//
//	dctgen generate-idct 8 > idct8.gen.go
//	dctgen generate-reinterpreting-dct 16 --package jxl
//	dctgen generate-idct-2d --output idct2d.gen.go
//	dctgen generate-reinterpreting-dct-2d --lang rust --output reinterpreting.rs
//	dctgen verify
//	dctgen host
//
// Or via go:generate:
//
//	//go:generate dctgen generate-idct-2d --package jxl --output idct2d.gen.go
//
// The 1D commands emit a dispatch wrapper over a width-agnostic kernel plus
// the row-block and transposed-store variants for every vector width the
// size allows. The 2D commands emit one wrapper per (rows, cols) pair of
// sizes up to 32x32 with an aspect ratio of at most 4.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ajroetker/hwydct/cmd/dctgen/dct"
	"github.com/ajroetker/hwydct/cmd/dctgen/ir"
)

func main() {
	if err := newRootCmd(&Generator{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(g *Generator) *cobra.Command {
	root := &cobra.Command{
		Use:           "dctgen",
		Short:         "Generate fast DCT kernels for a SIMD abstraction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			g.stdout = cmd.OutOrStdout()
			g.stderr = cmd.ErrOrStderr()
			return g.Init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.Lang, "lang", "go", "Output language (go, rust)")
	flags.StringVar(&g.Package, "package", "dct", "Package name of generated Go code")
	flags.StringVar(&g.SimdImport, "simd-import", "", "Import path of the SIMD contract (default depends on --lang)")
	flags.StringVar(&g.MaxWidth, "max-width", "all", "Widest SIMD class to generate: all, host, scalar, 128, 256 or 512")
	flags.IntVar(&g.MaxReinterpreting, "max-reinterpreting", dct.DefaultMaxReinterpretingSize,
		"Largest size of the reinterpreting DCT")
	flags.StringVarP(&g.Output, "output", "o", "", "Output file, or directory to write <family>_<size> files into (default: standard output)")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "Print kernel statistics to standard error")

	root.AddCommand(
		newGenerate1DCmd(g, "generate-idct", ir.DirectionIDCT),
		newGenerate1DCmd(g, "generate-reinterpreting-dct", ir.DirectionReinterpretingDCT),
		newGenerate2DCmd(g, "generate-idct-2d", ir.DirectionIDCT),
		newGenerate2DCmd(g, "generate-reinterpreting-dct-2d", ir.DirectionReinterpretingDCT),
		newVerifyCmd(g),
		newHostCmd(g),
	)
	return root
}

func newGenerate1DCmd(g *Generator, use string, dir ir.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <N>",
		Short: fmt.Sprintf("Generate the N-point %s kernel, its wrapper and variants", dir),
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[0], err)
			}
			return g.Generate1D(dir, n)
		},
	}
}

func newGenerate2DCmd(g *Generator, use string, dir ir.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Generate the 2D %s kernels of every table size", dir),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.Generate2D(cmd.Context(), dir)
		},
	}
}

func newVerifyCmd(g *Generator) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every supported kernel against the dense reference transforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.Verify(cmd.Context())
		},
	}
}

func newHostCmd(g *Generator) *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Print the SIMD width class of this machine",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return g.Host()
		},
	}
}
