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
	"strings"

	"github.com/beevik/etree"
)

// ColorScheme records how an element's styling was expressed in the
// source document, so the encoder can re-emit it the same way.
type ColorScheme int32

const (
	// ColorNone means the element carried no styling.
	ColorNone ColorScheme = iota
	// ColorAttr is the simple scheme: fillColor/strokeColor attributes
	// on the semantic element.
	ColorAttr
	// ColorElement is the structured scheme: an <editor:style> child
	// element. Default for newly colored elements.
	ColorElement
)

// Attr is one preserved attribute. A slice keeps the original order,
// which a map would lose.
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Extras is the preservation record attached to a decoded element. It
// captures everything the graph model does not understand natively so a
// decode→edit→encode round trip loses nothing. The content is opaque:
// it is replayed on encode, never interpreted.
type Extras struct {
	// ElementType is the original full tag, prefix included, e.g.
	// "bpmn:userTask". It wins over the variant's default tag on
	// encode so ambiguous internal mappings re-expand faithfully.
	ElementType string `json:"elementType,omitempty"`

	// Attrs holds every attribute not explicitly modeled, in document
	// order.
	Attrs []Attr `json:"attrs,omitempty"`

	// Docs holds the text of documentation children beyond the first
	// (the first becomes the node's Documentation field).
	Docs []string `json:"docs,omitempty"`

	// Fragments holds the serialized form of every child element that
	// is not structurally understood, in document order. Replayed as
	// raw markup, never as escaped text.
	Fragments []string `json:"fragments,omitempty"`

	// Recorded diagram geometry, replayed when still valid so an edit
	// that did not touch an element keeps its drawn appearance stable.
	Bounds      *Bounds `json:"bounds,omitempty"`
	LabelBounds *Bounds `json:"labelBounds,omitempty"`
	Waypoints   []Point `json:"waypoints,omitempty"`

	// ShapeAttrs holds unmodeled attributes of the BPMNShape or
	// BPMNEdge record (isHorizontal, isExpanded, vendor styling, ...).
	ShapeAttrs []Attr `json:"shapeAttrs,omitempty"`

	// ContainerAttrs holds the attributes of the intermediate wrapper
	// the element was declared in: the laneSet around a lane.
	ContainerAttrs []Attr `json:"containerAttrs,omitempty"`

	Colors ColorScheme `json:"colors,omitempty"`
}

func (e *Extras) attr(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// captureExtras records every attribute of el that is not in modeled,
// plus the serialized form of every child whose local tag is not in
// known. Documentation children are collected separately.
func captureExtras(el *etree.Element, modeled map[string]bool, known map[string]bool) (*Extras, []string) {
	ex := &Extras{ElementType: el.FullTag()}
	for _, attr := range el.Attr {
		if modeled[attr.FullKey()] {
			continue
		}
		ex.Attrs = append(ex.Attrs, Attr{Key: attr.FullKey(), Value: attr.Value})
	}

	var docs []string
	for _, child := range el.ChildElements() {
		switch {
		case child.Tag == "documentation":
			docs = append(docs, child.Text())
		case known[child.Tag]:
			// structurally understood, decoded elsewhere
		default:
			ex.Fragments = append(ex.Fragments, serializeFragment(child))
		}
	}
	return ex, docs
}

// serializeFragment renders a child element back to markup exactly as
// parsed (modulo whitespace).
func serializeFragment(el *etree.Element) string {
	doc := etree.NewDocument()
	doc.AddChild(el.Copy())
	out, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// replayFragment re-parses a preserved fragment and attaches it to
// parent as raw markup. Unparseable fragments are silently skipped;
// they can only arise from hand-edited graph state.
func replayFragment(parent *etree.Element, fragment string) {
	if strings.TrimSpace(fragment) == "" {
		return
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(fragment); err != nil {
		return
	}
	if root := doc.Root(); root != nil {
		parent.AddChild(root.Copy())
	}
}

// replayAttrs writes preserved attributes back onto el, skipping any
// key the encoder has already written.
func replayAttrs(el *etree.Element, attrs []Attr) {
	for _, a := range attrs {
		if el.SelectAttr(a.Key) != nil {
			continue
		}
		el.CreateAttr(a.Key, a.Value)
	}
}
