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

// Package cpuinfo reports the widest float32 vector the host can run.
package cpuinfo

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// NoSimdEnv disables SIMD detection when set to a non-empty value.
const NoSimdEnv = "DCTGEN_NO_SIMD"

// Info describes the detected vector unit.
type Info struct {
	GOARCH string

	// Name is the instruction set, e.g. "avx512", "avx2", "neon" or "scalar".
	Name string

	// Bytes is the vector width in bytes; 4 for scalar.
	Bytes int
}

// Lanes returns the number of float32 lanes of the vector unit.
func (i Info) Lanes() int {
	return i.Bytes / 4
}

// Detect inspects the host CPU.
func Detect() Info {
	return detect(runtime.GOARCH, os.Getenv(NoSimdEnv) != "")
}

func detect(goarch string, noSimd bool) Info {
	info := Info{GOARCH: goarch, Name: "scalar", Bytes: 4}
	if noSimd {
		return info
	}
	switch goarch {
	case "amd64":
		switch {
		case cpu.X86.HasAVX512F && cpu.X86.HasAVX512VL:
			info.Name, info.Bytes = "avx512", 64
		case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
			info.Name, info.Bytes = "avx2", 32
		case cpu.X86.HasSSE41:
			info.Name, info.Bytes = "sse4", 16
		}
	case "arm64":
		// ASIMD is part of the ARMv8-A baseline.
		if cpu.ARM64.HasASIMD {
			info.Name, info.Bytes = "neon", 16
		}
	}
	return info
}
