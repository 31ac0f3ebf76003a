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
	"strconv"

	"github.com/beevik/etree"
)

func getAttr(attrs []etree.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.FullKey() == name {
			return attr.Value, true
		}
	}
	return "", false
}

// findChild returns the first child whose local tag matches, prefix
// ignored.
func findChild(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func childrenOf(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatCoord renders a coordinate with the shortest representation
// that round-trips, so "156.5" stays "156.5" and "80" stays "80".
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// boundsOf reads the dc:Bounds child of a shape or label record.
func boundsOf(el *etree.Element) *Bounds {
	child := findChild(el, "Bounds")
	if child == nil {
		return nil
	}
	b := &Bounds{}
	for _, attr := range child.Attr {
		switch attr.FullKey() {
		case "x":
			b.X = parseCoord(attr.Value)
		case "y":
			b.Y = parseCoord(attr.Value)
		case "width":
			b.Width = parseCoord(attr.Value)
		case "height":
			b.Height = parseCoord(attr.Value)
		}
	}
	return b
}

// labelBoundsOf reads the label box of a BPMNShape or BPMNEdge record.
func labelBoundsOf(el *etree.Element) *Bounds {
	label := findChild(el, "BPMNLabel")
	if label == nil {
		return nil
	}
	return boundsOf(label)
}

// waypointsOf reads the di:waypoint children of a BPMNEdge record.
func waypointsOf(el *etree.Element) []Point {
	var out []Point
	for _, child := range el.ChildElements() {
		if child.Tag != "waypoint" {
			continue
		}
		x, _ := getAttr(child.Attr, "x")
		y, _ := getAttr(child.Attr, "y")
		out = append(out, Point{X: parseCoord(x), Y: parseCoord(y)})
	}
	return out
}

// recordAttrs collects the unmodeled attributes of a BPMNShape or
// BPMNEdge record so vendor styling on the diagram layer survives.
func recordAttrs(el *etree.Element) []Attr {
	var out []Attr
	for _, attr := range el.Attr {
		key := attr.FullKey()
		if key == "id" || key == "bpmnElement" {
			continue
		}
		out = append(out, Attr{Key: key, Value: attr.Value})
	}
	return out
}
