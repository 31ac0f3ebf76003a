// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package bpmn

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// IDAllocator hands out identifiers for newly created elements. It is
// an explicit value owned by the caller: one allocator per editing
// session, shared between decode and subsequent construction. It is not
// safe for concurrent decodes without external synchronization.
type IDAllocator struct {
	counter atomic.Int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Generate produces "<CanonicalTypeName>_<6 uppercase hex>" for the
// given variant, e.g. "ExclusiveGateway_1F03A2".
func (a *IDAllocator) Generate(kind Kind) string {
	return a.GenerateName(kind.CanonicalName())
}

// GenerateName produces "<prefix>_<6 uppercase hex>" for elements that
// sit outside the variant set (collaboration, process, diagram records).
func (a *IDAllocator) GenerateName(prefix string) string {
	u := uuid.New()
	return prefix + "_" + strings.ToUpper(hex.EncodeToString(u[:3]))
}

// Next increments and returns the legacy numeric counter. The hex
// scheme above does not consume it; it only backs sequential fallback
// ids such as plane or laneSet numbering.
func (a *IDAllocator) Next() int64 {
	return a.counter.Inc()
}

// Sequential produces "<prefix>_<n>" from the legacy counter.
func (a *IDAllocator) Sequential(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, a.Next())
}

// Reseed raises the legacy counter to at least n, so elements created
// after a decode never collide with imported numeric suffixes.
func (a *IDAllocator) Reseed(n int64) {
	for {
		cur := a.counter.Load()
		if cur >= n {
			return
		}
		if a.counter.CAS(cur, n) {
			return
		}
	}
}

var numericSuffix = regexp.MustCompile(`_([0-9]+)$`)

// Observe inspects an imported id and reseeds the counter above any
// trailing numeric suffix.
func (a *IDAllocator) Observe(id string) {
	m := numericSuffix.FindStringSubmatch(id)
	if m == nil {
		return
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return
	}
	a.Reseed(n)
}
