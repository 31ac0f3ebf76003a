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

// defaultSize is the per-variant shape size used whenever a node
// carries no recorded geometry.
func defaultSize(k Kind) (w, h float64) {
	switch k {
	case KindStartEvent, KindEndEvent, KindIntermediateEvent, KindBoundaryEvent:
		return 36, 36
	case KindTask, KindSubProcess, KindCallActivity:
		return 100, 80
	case KindExclusiveGateway, KindInclusiveGateway, KindParallelGateway,
		KindEventBasedGateway, KindComplexGateway:
		return 50, 50
	case KindDataObject:
		return 36, 50
	case KindDataStore:
		return 50, 50
	case KindGroup:
		return 300, 300
	case KindTextAnnotation:
		return 100, 30
	case KindParticipant:
		return 600, 250
	case KindLane:
		return 570, 250
	case KindUnknown:
		return 100, 80
	}
	return 100, 80
}

// hasExternalLabel reports whether the variant draws its name outside
// the shape, which is when a synthesized label box is needed.
func hasExternalLabel(k Kind) bool {
	if k.IsEvent() || k.IsGateway() {
		return true
	}
	return k == KindDataObject || k == KindDataStore
}

// deriveWaypoints computes a straight connection between two shape
// borders at mid height (mid width when the shapes are stacked
// vertically).
func deriveWaypoints(a, b Bounds) []Point {
	ay := a.Y + a.Height/2
	by := b.Y + b.Height/2
	switch {
	case b.X >= a.X+a.Width:
		return []Point{{X: a.X + a.Width, Y: ay}, {X: b.X, Y: by}}
	case b.X+b.Width <= a.X:
		return []Point{{X: a.X, Y: ay}, {X: b.X + b.Width, Y: by}}
	case b.Y >= a.Y+a.Height:
		return []Point{{X: a.X + a.Width/2, Y: a.Y + a.Height}, {X: b.X + b.Width/2, Y: b.Y}}
	case b.Y+b.Height <= a.Y:
		return []Point{{X: a.X + a.Width/2, Y: a.Y}, {X: b.X + b.Width/2, Y: b.Y + b.Height}}
	default:
		// overlapping shapes, connect the centers
		return []Point{{X: a.X + a.Width/2, Y: ay}, {X: b.X + b.Width/2, Y: by}}
	}
}

// labelBox places a name box centered below a shape.
func labelBox(b Bounds) *Bounds {
	return &Bounds{
		X:      b.X + b.Width/2 - 40,
		Y:      b.Y + b.Height + 6,
		Width:  80,
		Height: 14,
	}
}

// edgeLabelBox centers a name box on the midpoint of a connection.
func edgeLabelBox(wps []Point) *Bounds {
	if len(wps) == 0 {
		return nil
	}
	first, last := wps[0], wps[len(wps)-1]
	return &Bounds{
		X:      (first.X+last.X)/2 - 40,
		Y:      (first.Y+last.Y)/2 - 7,
		Width:  80,
		Height: 14,
	}
}
