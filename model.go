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
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Point is a 2D coordinate on the diagram plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an axis-aligned box on the diagram plane.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the top-left corner of the box.
func (b Bounds) Origin() Point {
	return Point{X: b.X, Y: b.Y}
}

// FlowNode is a single diagram element: a flow node proper (event, task,
// gateway, data element, annotation) or a container (participant pool,
// lane). The variant is carried in Kind.
//
// X and Y are relative to the owning participant's origin when
// Participant is set, and document-absolute otherwise. Participants keep
// absolute coordinates; lanes keep coordinates relative to their pool.
type FlowNode struct {
	Id   string `json:"id"`
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Participant is the id of the owning pool, empty for top-level
	// nodes and for participants themselves.
	Participant string `json:"participant,omitempty"`
	// Lane is the id of the owning lane, derived from the lane's member
	// list during decode. Grouping only, no semantic weight.
	Lane string `json:"lane,omitempty"`

	// ProcessRef links a participant to its process element.
	ProcessRef string `json:"processRef,omitempty"`
	// NodeRefs lists the flow node ids a lane groups.
	NodeRefs []string `json:"nodeRefs,omitempty"`

	FillColor   string `json:"fillColor,omitempty"`
	StrokeColor string `json:"strokeColor,omitempty"`

	Documentation string `json:"documentation,omitempty"`

	// Extras replays everything the graph model does not understand:
	// original tag, foreign attributes, raw child fragments, recorded
	// diagram geometry. Nil for interactively created nodes.
	Extras *Extras `json:"extras,omitempty"`

	// ProcExtras carries the preservation record of the enclosing
	// process element. It is attached to the owning participant, or to
	// the first decoded node when the document has no collaboration.
	ProcExtras *Extras `json:"procExtras,omitempty"`
}

// Validate checks the structural minimum the encoder relies on.
func (n *FlowNode) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.Id, validation.Required),
		validation.Field(&n.Kind, validation.Required),
		validation.Field(&n.Width, validation.Min(0.0)),
		validation.Field(&n.Height, validation.Min(0.0)),
	)
}

// Position returns the node's stored (possibly relative) coordinates.
func (n *FlowNode) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// Size returns the node's size, falling back to the per-variant default
// when the node carries none.
func (n *FlowNode) Size() (w, h float64) {
	if n.Width > 0 && n.Height > 0 {
		return n.Width, n.Height
	}
	return defaultSize(n.Kind)
}

// FlowEdge is a directed connection between two nodes. Message records
// the sequence-flow vs message-flow classification, decided once when
// the edge is created (or decoded) and trusted from then on.
type FlowEdge struct {
	Id     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`

	// Message is true for flows between different participants.
	Message bool `json:"message,omitempty"`

	Documentation string `json:"documentation,omitempty"`

	Extras *Extras `json:"extras,omitempty"`
}

// Validate checks the structural minimum the encoder relies on.
func (e *FlowEdge) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Id, validation.Required),
		validation.Field(&e.Source, validation.Required),
		validation.Field(&e.Target, validation.Required),
	)
}
