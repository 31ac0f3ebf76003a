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

// GraphBuilder assembles a graph the way the interactive editor does:
// the builder pattern is used to separate the construction of the
// graph from its representation. Appended nodes chain onto the current
// cursor with an auto-classified flow; ids come from the allocator the
// editor session owns.
type GraphBuilder struct {
	g     *Graph
	alloc *IDAllocator

	cur  string
	pool string
	// simple left-to-right placement cursor, one column per append
	col map[string]int

	err error
}

func NewGraphBuilder(opts ...Option) *GraphBuilder {
	c := NewCodec(opts...)
	return &GraphBuilder{
		g:     NewGraph(),
		alloc: c.alloc,
		col:   map[string]int{},
	}
}

// Participant opens a new pool; nodes appended afterwards belong to
// it. The cursor resets, so the next node starts a fresh chain.
func (b *GraphBuilder) Participant(name string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	p := &FlowNode{
		Id:   b.alloc.Generate(KindParticipant),
		Kind: KindParticipant,
		Name: name,
	}
	p.Width, p.Height = defaultSize(KindParticipant)
	p.X = 160
	p.Y = 80 + float64(len(b.g.Participants()))*(p.Height+40)
	if err := b.g.AddNode(p); err != nil {
		b.err = err
		return b
	}
	b.pool = p.Id
	b.cur = ""
	return b
}

// Start appends a start event and makes it the cursor.
func (b *GraphBuilder) Start() *GraphBuilder {
	return b.node(KindStartEvent, "")
}

// Append adds a node of the given variant after the cursor, connected
// by a sequence flow.
func (b *GraphBuilder) Append(kind Kind, name string) *GraphBuilder {
	return b.node(kind, name)
}

// Task is shorthand for Append(KindTask, name).
func (b *GraphBuilder) Task(name string) *GraphBuilder {
	return b.node(KindTask, name)
}

// End appends an end event.
func (b *GraphBuilder) End() *GraphBuilder {
	return b.node(KindEndEvent, "")
}

func (b *GraphBuilder) node(kind Kind, name string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	n := &FlowNode{
		Id:          b.alloc.Generate(kind),
		Kind:        kind,
		Name:        name,
		Participant: b.pool,
	}
	n.Width, n.Height = defaultSize(kind)
	slot := b.col[b.pool]
	n.X = MinRelativeX + float64(slot)*150
	n.Y = MinRelativeY + 60
	if b.pool == "" {
		n.X = 180 + float64(slot)*150
		n.Y = 120
	}
	b.col[b.pool] = slot + 1

	if err := b.g.AddNode(n); err != nil {
		b.err = err
		return b
	}
	if b.cur != "" {
		if _, err := b.g.Connect(b.alloc.GenerateName("Flow"), b.cur, n.Id); err != nil {
			b.err = err
			return b
		}
	}
	b.cur = n.Id
	return b
}

// Seek moves the cursor onto an existing node, so branches can fork
// from it.
func (b *GraphBuilder) Seek(id string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	if _, ok := b.g.Node(id); ok {
		b.cur = id
	}
	return b
}

// Link connects two existing nodes directly. The flow classifies
// itself: same pool means sequence, different pools means message.
func (b *GraphBuilder) Link(from, to string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	if _, err := b.g.Connect(b.alloc.GenerateName("Flow"), from, to); err != nil {
		b.err = err
	}
	return b
}

// Current returns the cursor node id, useful for a later Seek or Link.
func (b *GraphBuilder) Current() string {
	return b.cur
}

// Build validates and returns the assembled graph.
func (b *GraphBuilder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}
