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
	"fmt"

	"github.com/tidwall/btree"
)

// Graph is the editor's in-memory model: typed nodes (flow nodes,
// participants, lanes) and typed edges (sequence and message flows).
// Node order follows document/creation order; an ordered index backs
// id lookup.
type Graph struct {
	nodes []*FlowNode
	edges []*FlowEdge
	index btree.Map[string, *FlowNode]

	// meta preserves the definitions root: its attributes (namespace
	// declarations included) and root-level children the model does
	// not understand (message, signal and error definitions, ...).
	meta *Extras
	// collab preserves the collaboration wrapper when one was decoded.
	collab *Extras

	warnings []error
}

func NewGraph() *Graph {
	return &Graph{}
}

// Nodes returns the node list in document/creation order. The slice is
// shared; callers mutate nodes in place.
func (g *Graph) Nodes() []*FlowNode { return g.nodes }

// Edges returns the edge list in document/creation order.
func (g *Graph) Edges() []*FlowEdge { return g.edges }

// Node looks a node up by id.
func (g *Graph) Node(id string) (*FlowNode, bool) {
	return g.index.Get(id)
}

// Edge looks an edge up by id.
func (g *Graph) Edge(id string) (*FlowEdge, bool) {
	for _, e := range g.edges {
		if e.Id == id {
			return e, true
		}
	}
	return nil, false
}

// AddNode appends a node. A second node with an already-present id is
// rejected with a DuplicateIdentifierError.
func (g *Graph) AddNode(n *FlowNode) error {
	if n.Id == "" {
		return fmt.Errorf("node has no id")
	}
	if _, ok := g.index.Get(n.Id); ok {
		return &DuplicateIdentifierError{Id: n.Id, Section: "element"}
	}
	if _, ok := g.Edge(n.Id); ok {
		return &DuplicateIdentifierError{Id: n.Id, Section: "element"}
	}
	g.nodes = append(g.nodes, n)
	g.index.Set(n.Id, n)
	return nil
}

// AddEdge appends an edge after resolving both endpoints. A declared
// classification that contradicts the endpoints' participant ownership
// is corrected in place rather than rejected: interactive construction
// re-classifies, it does not drop.
func (g *Graph) AddEdge(e *FlowEdge) error {
	if e.Id == "" {
		return fmt.Errorf("edge has no id")
	}
	if _, ok := g.Edge(e.Id); ok {
		return &DuplicateIdentifierError{Id: e.Id, Section: "element"}
	}
	if _, ok := g.index.Get(e.Id); ok {
		return &DuplicateIdentifierError{Id: e.Id, Section: "element"}
	}
	if _, ok := g.index.Get(e.Source); !ok {
		return &UnresolvedReferenceError{Element: e.Id, Ref: e.Source}
	}
	if _, ok := g.index.Get(e.Target); !ok {
		return &UnresolvedReferenceError{Element: e.Id, Ref: e.Target}
	}
	e.Message = g.ownerOf(e.Source) != g.ownerOf(e.Target)
	g.edges = append(g.edges, e)
	return nil
}

// Connect creates an edge between two existing nodes, classifying it as
// a message flow exactly when the endpoints belong to different
// participants (a participant-less endpoint counts as its own side).
func (g *Graph) Connect(id, source, target string) (*FlowEdge, error) {
	e := &FlowEdge{Id: id, Source: source, Target: target}
	if err := g.AddEdge(e); err != nil {
		return nil, err
	}
	return e, nil
}

// RemoveNode deletes a node and every edge referencing it.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.index.Get(id); !ok {
		return
	}
	g.index.Delete(id)
	nodes := g.nodes[:0]
	for _, n := range g.nodes {
		if n.Id != id {
			nodes = append(nodes, n)
		}
	}
	g.nodes = nodes

	edges := g.edges[:0]
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			continue
		}
		edges = append(edges, e)
	}
	g.edges = edges
}

// RemoveEdge deletes an edge by id.
func (g *Graph) RemoveEdge(id string) {
	edges := g.edges[:0]
	for _, e := range g.edges {
		if e.Id != id {
			edges = append(edges, e)
		}
	}
	g.edges = edges
}

// ownerOf resolves the participant an endpoint belongs to: participants
// own themselves, contained nodes report their pool, top-level nodes
// report "".
func (g *Graph) ownerOf(id string) string {
	n, ok := g.index.Get(id)
	if !ok {
		return ""
	}
	if n.Kind == KindParticipant {
		return n.Id
	}
	return n.Participant
}

// Participants returns the participant nodes in order.
func (g *Graph) Participants() []*FlowNode {
	var out []*FlowNode
	for _, n := range g.nodes {
		if n.Kind == KindParticipant {
			out = append(out, n)
		}
	}
	return out
}

// Lanes returns the lane nodes of a participant in order.
func (g *Graph) Lanes(participant string) []*FlowNode {
	var out []*FlowNode
	for _, n := range g.nodes {
		if n.Kind == KindLane && n.Participant == participant {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks every node and edge plus cross references. It returns
// the first violation found.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("node %s: %w", n.Id, err)
		}
		if n.Participant != "" {
			p, ok := g.index.Get(n.Participant)
			if !ok || p.Kind != KindParticipant {
				return &UnresolvedReferenceError{Element: n.Id, Ref: n.Participant}
			}
		}
	}
	for _, e := range g.edges {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("edge %s: %w", e.Id, err)
		}
		if _, ok := g.index.Get(e.Source); !ok {
			return &UnresolvedReferenceError{Element: e.Id, Ref: e.Source}
		}
		if _, ok := g.index.Get(e.Target); !ok {
			return &UnresolvedReferenceError{Element: e.Id, Ref: e.Target}
		}
		if !e.Message && g.ownerOf(e.Source) != g.ownerOf(e.Target) {
			return &CrossBoundaryFlowError{Flow: e.Id, Source: e.Source, Target: e.Target}
		}
	}
	return nil
}

// Warnings returns the non-fatal anomalies recorded while this graph
// was decoded: dropped duplicates, dangling references, misclassified
// flows.
func (g *Graph) Warnings() []error {
	return g.warnings
}

func (g *Graph) warn(err error) {
	g.warnings = append(g.warnings, err)
}
