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

// Minimum participant-relative coordinates for a contained flow node.
// The pool header band occupies the first 30 units of width and lane
// chrome the first rows, so nodes are floored away from both.
const (
	MinRelativeX float64 = 80
	MinRelativeY float64 = 30
)

// ToRelative converts a document-absolute point into coordinates
// relative to a participant's origin, flooring the result at the
// minimum padding. Not applied to nodes outside any participant.
func ToRelative(p, origin Point) Point {
	r := Point{X: p.X - origin.X, Y: p.Y - origin.Y}
	if r.X < MinRelativeX {
		r.X = MinRelativeX
	}
	if r.Y < MinRelativeY {
		r.Y = MinRelativeY
	}
	return r
}

// ToAbsolute is the inverse of ToRelative for points that respect the
// padding floor.
func ToAbsolute(p, origin Point) Point {
	return Point{X: p.X + origin.X, Y: p.Y + origin.Y}
}
