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
	"math"
)

// Allocator issues register names for one Function. Names are never
// reused; create a new Allocator for every Function.
type Allocator struct {
	next  int
	limit int
}

// NewAllocator returns an allocator starting at v0.
func NewAllocator() *Allocator {
	return &Allocator{limit: math.MaxInt32}
}

// Fresh returns a register that has never been returned before.
// It panics with ErrInvariant when the name space is exhausted.
func (a *Allocator) Fresh() Register {
	if a.next >= a.limit {
		panic(fmt.Errorf("%w: register allocator exhausted after %d names", ErrInvariant, a.next))
	}
	r := Register(a.next)
	a.next++
	return r
}

// FreshN returns n fresh registers in allocation order.
func (a *Allocator) FreshN(n int) []Register {
	regs := make([]Register, n)
	for i := range regs {
		regs[i] = a.Fresh()
	}
	return regs
}

// Count returns how many registers have been issued.
func (a *Allocator) Count() int {
	return a.next
}
