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

	json "github.com/json-iterator/go"
)

// The canvas layer persists and exchanges graphs as JSON. Preservation
// records travel along so an exported-and-reimported graph still
// round-trips its source document.

type graphJSON struct {
	Nodes  []*FlowNode `json:"nodes"`
	Edges  []*FlowEdge `json:"edges"`
	Meta   *Extras     `json:"meta,omitempty"`
	Collab *Extras     `json:"collab,omitempty"`
}

// MarshalJSON renders the graph as {"nodes": [...], "edges": [...]}.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(&graphJSON{
		Nodes:  g.nodes,
		Edges:  g.edges,
		Meta:   g.meta,
		Collab: g.collab,
	})
}

// UnmarshalJSON restores a graph, rebuilding the id index and
// rejecting duplicate ids.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	restored := NewGraph()
	restored.meta = raw.Meta
	restored.collab = raw.Collab
	for _, n := range raw.Nodes {
		if err := restored.AddNode(n); err != nil {
			return err
		}
	}
	for _, e := range raw.Edges {
		if _, ok := restored.index.Get(e.Source); !ok {
			return &UnresolvedReferenceError{Element: e.Id, Ref: e.Source}
		}
		if _, ok := restored.index.Get(e.Target); !ok {
			return &UnresolvedReferenceError{Element: e.Id, Ref: e.Target}
		}
		restored.edges = append(restored.edges, e)
	}
	*g = *restored
	return nil
}

// MarshalJSON renders the variant name, e.g. "exclusiveGateway".
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	kind, ok := kindsByName[name]
	if !ok {
		return fmt.Errorf("unknown node kind %q", name)
	}
	*k = kind
	return nil
}
