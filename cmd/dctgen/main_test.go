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

package main

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ajroetker/hwydct/cmd/dctgen/dct"
)

// run executes dctgen with args and returns what it wrote to stdout and
// stderr.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&Generator{})
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerateIDCT(t *testing.T) {
	stdout, _, err := run(t, "generate-idct", "8")
	if err != nil {
		t.Fatalf("generate-idct 8: %v", err)
	}
	if !strings.HasPrefix(stdout, "// Code generated by dctgen. DO NOT EDIT.") {
		t.Errorf("missing generated header:\n%s", stdout[:min(len(stdout), 200)])
	}
	f, err := parser.ParseFile(token.NewFileSet(), "idct8.go", stdout, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	if f.Name.Name != "dct" {
		t.Errorf("package = %s, want dct", f.Name.Name)
	}
	for _, want := range []string{"func IDCT8(", "func idct8(", "func IDCT8RowBlock8(", "func IDCT8Trh4("} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output lacks %q", want)
		}
	}
}

func TestGenerateFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "package",
			args: []string{"generate-reinterpreting-dct", "16", "--package", "jxl"},
			want: []string{"package jxl", "func ReinterpretingDCT16("},
		},
		{
			name:    "max width",
			args:    []string{"generate-idct", "32", "--max-width", "128"},
			want:    []string{"func IDCT32RowBlock4(", "MaybeDowngrade128bit"},
			notWant: []string{"RowBlock8", "RowBlock16"},
		},
		{
			name:    "scalar",
			args:    []string{"generate-idct", "16", "--max-width", "scalar"},
			want:    []string{"func IDCT16(", "simd.Scalar()"},
			notWant: []string{"RowBlock", "TransposeSquare"},
		},
		{
			name: "rust",
			args: []string{"generate-idct", "4", "--lang", "rust"},
			want: []string{"pub fn idct_4<D: SimdDescriptor>", "use crate::simd::"},
		},
		{
			name: "2d",
			args: []string{"generate-idct-2d"},
			want: []string{"func IDCT2D2x2(", "func IDCT2D32x32(", "func IDCT2D8x32(", "simd.SwapBlocks("},
		},
		{
			name:    "2d reinterpreting limit",
			args:    []string{"generate-reinterpreting-dct-2d", "--max-reinterpreting", "8"},
			want:    []string{"func ReinterpretingDCT2D8x8("},
			notWant: []string{"ReinterpretingDCT2D16x16", "ReinterpretingDCT2D4x16"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(stdout, w) {
					t.Errorf("output lacks %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(stdout, w) {
					t.Errorf("output contains %q", w)
				}
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"not a power of two", []string{"generate-idct", "3"}, dct.ErrNotPowerOfTwo},
		{"too large", []string{"generate-idct", "512"}, dct.ErrSizeOutOfRange},
		{"zero", []string{"generate-idct", "0"}, dct.ErrSizeOutOfRange},
		{"reinterpreting limit", []string{"generate-reinterpreting-dct", "64"}, dct.ErrSizeOutOfRange},
		{"bad limit", []string{"generate-idct", "8", "--max-reinterpreting", "24"}, dct.ErrSizeOutOfRange},
		{"not a number", []string{"generate-idct", "abc"}, nil},
		{"missing size", []string{"generate-idct"}, nil},
		{"unknown lang", []string{"generate-idct", "8", "--lang", "c"}, nil},
		{"bad package", []string{"generate-idct", "8", "--package", "my-pkg"}, nil},
		{"bad import", []string{"generate-idct", "8", "--simd-import", "not a path"}, nil},
		{"bad width", []string{"generate-idct", "8", "--max-width", "1024"}, nil},
		{"2d args", []string{"generate-idct-2d", "8"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatalf("%v succeeded", tt.args)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("%v: error = %v, want %v", tt.args, err, tt.want)
			}
			if stdout != "" {
				t.Errorf("%v: wrote %d bytes to stdout on error", tt.args, len(stdout))
			}
		})
	}
}

func TestGenerateOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idct16.gen.go")
	stdout, stderr, err := run(t, "generate-idct", "16", "-o", path, "-v")
	if err != nil {
		t.Fatalf("generate-idct: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "Wrote "+path) {
		t.Errorf("stderr lacks write report:\n%s", stderr)
	}
	if !strings.Contains(stderr, "idct16") || !strings.Contains(stderr, "registers") {
		t.Errorf("verbose statistics missing:\n%s", stderr)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("func IDCT16(")) {
		t.Errorf("output file lacks the wrapper")
	}
}

func TestGenerateOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		args []string
		file string
		want string
	}{
		{[]string{"generate-idct", "8"}, "idct_8.go", "func IDCT8("},
		{[]string{"generate-reinterpreting-dct", "4", "--lang", "rust"}, "reinterpreting_dct_4.rs", "pub fn reinterpreting_dct_4<"},
		{[]string{"generate-idct-2d", "--max-width", "128"}, "idct_2d.go", "func IDCT2D8x8("},
	}
	for _, tt := range tests {
		_, stderr, err := run(t, append(tt.args, "-o", dir)...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		path := filepath.Join(dir, tt.file)
		if !strings.Contains(stderr, "Wrote "+path) {
			t.Errorf("%v: stderr lacks write report for %s:\n%s", tt.args, path, stderr)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if !bytes.Contains(data, []byte(tt.want)) {
			t.Errorf("%s lacks %q", tt.file, tt.want)
		}
	}
}

func TestVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("checks every kernel")
	}
	stdout, _, err := run(t, "verify", "--max-width", "128", "--max-reinterpreting", "16")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	for _, want := range []string{"idct 1D:", "idct 2D:", "reinterpreting_dct 1D:", "reinterpreting_dct 2D:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("verify output lacks %q:\n%s", want, stdout)
		}
	}
	if got := strings.Count(stdout, "kernels OK"); got != 4 {
		t.Errorf("verify reported %d passing groups, want 4:\n%s", got, stdout)
	}
}

func TestHost(t *testing.T) {
	stdout, _, err := run(t, "host")
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	for _, want := range []string{"GOARCH:", "SIMD:", "Width class:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("host output lacks %q:\n%s", want, stdout)
		}
	}
}
