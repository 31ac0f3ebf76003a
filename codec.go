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

// Package bpmn is a lossless bidirectional transform between BPMN 2.0
// XML documents and the directed-graph model an interactive process
// editor works on. Unknown attributes and child content survive a
// decode→edit→encode round trip verbatim; diagram layout is replayed
// where recorded and derived where not.
package bpmn

import (
	"go.uber.org/zap"
)

// Codec holds the per-session transform state: the id allocator shared
// between decode and interactive construction, the warning logger, and
// the anomaly policy. Decode and Encode are synchronous; a Codec must
// not run concurrent decodes without external synchronization because
// the allocator reseeds per pass.
type Codec struct {
	alloc  *IDAllocator
	log    *zap.Logger
	strict bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithAllocator supplies the caller-owned id allocator. The default
// codec owns a fresh one.
func WithAllocator(a *IDAllocator) Option {
	return func(c *Codec) { c.alloc = a }
}

// WithLogger routes non-fatal anomaly warnings. The default is a nop
// logger; warnings remain inspectable on the decoded graph either way.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) { c.log = l }
}

// WithStrict turns recoverable anomalies (duplicate ids, dangling
// references, cross-participant sequence flows) into decode errors
// instead of warn-and-skip.
func WithStrict(strict bool) Option {
	return func(c *Codec) { c.strict = strict }
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		alloc: NewIDAllocator(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.alloc == nil {
		c.alloc = NewIDAllocator()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Allocator exposes the codec's id allocator so the editor can mint
// ids for interactively created elements.
func (c *Codec) Allocator() *IDAllocator { return c.alloc }

// Decode parses a document with a one-shot default codec.
func Decode(text string) (*Graph, error) {
	return NewCodec().Decode(text)
}

// Encode serializes a graph with a one-shot default codec.
func Encode(g *Graph) (string, error) {
	return NewCodec().Encode(g)
}
