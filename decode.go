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

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Attribute and child sets the decoder understands structurally;
// everything outside them is captured by the preservation layer.
var (
	flowNodeAttrs = map[string]bool{
		"id": true, "name": true, "fillColor": true, "strokeColor": true,
	}
	flowNodeChildren = map[string]bool{
		"incoming": true, "outgoing": true, "style": true,
	}
	participantAttrs = map[string]bool{
		"id": true, "name": true, "processRef": true,
		"fillColor": true, "strokeColor": true,
	}
	participantChildren = map[string]bool{
		"style": true,
	}
	laneAttrs = map[string]bool{
		"id": true, "name": true, "fillColor": true, "strokeColor": true,
	}
	laneChildren = map[string]bool{
		"flowNodeRef": true, "style": true,
	}
	flowAttrs = map[string]bool{
		"id": true, "name": true, "sourceRef": true, "targetRef": true,
	}
)

// processChildren lists the process children decoded structurally: the
// lane sets, every flow node tag, and sequence flows.
var processChildren = func() map[string]bool {
	m := map[string]bool{
		"laneSet":      true,
		"sequenceFlow": true,
	}
	for tag := range kindByTag {
		m[tag] = true
	}
	return m
}()

type decoder struct {
	c *Codec
	g *Graph

	// diagram records indexed by the semantic id they annotate, first
	// occurrence wins.
	shapes map[string]*etree.Element
	edges  map[string]*etree.Element

	// ids decoded in this pass, nodes and edges together.
	seen map[string]bool
}

// Decode parses a BPMN document into the graph model. Unparseable
// input fails with a MalformedDocumentError; every other anomaly is
// dropped with a warning (or, in strict mode, surfaced as an error).
func (c *Codec) Decode(text string) (*Graph, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	root := doc.Root()
	if root == nil || root.Tag != "definitions" {
		return nil, &MalformedDocumentError{Err: fmt.Errorf("document has no definitions root")}
	}

	d := &decoder{
		c:      c,
		g:      NewGraph(),
		shapes: map[string]*etree.Element{},
		edges:  map[string]*etree.Element{},
		seen:   map[string]bool{},
	}

	if err := d.indexDiagram(root); err != nil {
		return nil, err
	}
	d.captureDefinitions(root)

	collab := findChild(root, "collaboration")
	if collab != nil {
		if err := d.decodeCollaboration(collab); err != nil {
			return nil, err
		}
	}
	for _, proc := range childrenOf(root, "process") {
		if err := d.decodeProcessNodes(proc); err != nil {
			return nil, err
		}
	}
	for _, proc := range childrenOf(root, "process") {
		if err := d.decodeSequenceFlows(proc); err != nil {
			return nil, err
		}
	}
	if collab != nil {
		if err := d.decodeMessageFlows(collab); err != nil {
			return nil, err
		}
	}

	// Fresh elements created after this import must not collide with
	// imported numeric suffixes.
	for _, n := range d.g.nodes {
		c.alloc.Observe(n.Id)
	}
	for _, e := range d.g.edges {
		c.alloc.Observe(e.Id)
	}

	return d.g, nil
}

// anomaly records a recoverable defect. In lenient mode it is logged
// and kept on the graph; in strict mode it aborts the decode.
func (d *decoder) anomaly(err error) error {
	if d.c.strict {
		return err
	}
	d.c.log.Warn("document anomaly", zap.Error(err))
	d.g.warn(err)
	return nil
}

// indexDiagram collects BPMNShape and BPMNEdge records by the semantic
// element they annotate. Only the first record per id is kept.
func (d *decoder) indexDiagram(root *etree.Element) error {
	for _, dia := range childrenOf(root, "BPMNDiagram") {
		for _, plane := range childrenOf(dia, "BPMNPlane") {
			for _, child := range plane.ChildElements() {
				ref, _ := getAttr(child.Attr, "bpmnElement")
				if ref == "" {
					continue
				}
				switch child.Tag {
				case "BPMNShape":
					if _, dup := d.shapes[ref]; dup {
						if err := d.anomaly(&DuplicateIdentifierError{Id: ref, Section: "shape"}); err != nil {
							return err
						}
						continue
					}
					d.shapes[ref] = child
				case "BPMNEdge":
					if _, dup := d.edges[ref]; dup {
						if err := d.anomaly(&DuplicateIdentifierError{Id: ref, Section: "edge"}); err != nil {
							return err
						}
						continue
					}
					d.edges[ref] = child
				}
			}
		}
	}
	return nil
}

// captureDefinitions preserves the definitions root: every attribute
// (namespace declarations included) and every root child the model
// does not decode, such as message or error definitions.
func (d *decoder) captureDefinitions(root *etree.Element) {
	meta := &Extras{ElementType: root.FullTag()}
	for _, attr := range root.Attr {
		meta.Attrs = append(meta.Attrs, Attr{Key: attr.FullKey(), Value: attr.Value})
	}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "process", "collaboration", "BPMNDiagram":
		case "documentation":
			meta.Docs = append(meta.Docs, child.Text())
		default:
			meta.Fragments = append(meta.Fragments, serializeFragment(child))
		}
	}
	d.g.meta = meta
}

func (d *decoder) decodeCollaboration(collab *etree.Element) error {
	ex := &Extras{ElementType: collab.FullTag()}
	for _, attr := range collab.Attr {
		ex.Attrs = append(ex.Attrs, Attr{Key: attr.FullKey(), Value: attr.Value})
	}
	for _, child := range collab.ChildElements() {
		switch child.Tag {
		case "participant", "messageFlow":
		case "documentation":
			ex.Docs = append(ex.Docs, child.Text())
		default:
			ex.Fragments = append(ex.Fragments, serializeFragment(child))
		}
	}
	d.g.collab = ex

	stacked := 0
	for _, el := range childrenOf(collab, "participant") {
		id, _ := getAttr(el.Attr, "id")
		if id == "" {
			id = d.c.alloc.Generate(KindParticipant)
		}
		if d.seen[id] {
			if err := d.anomaly(&DuplicateIdentifierError{Id: id, Section: "element"}); err != nil {
				return err
			}
			continue
		}

		n := &FlowNode{Id: id, Kind: KindParticipant}
		n.Name, _ = getAttr(el.Attr, "name")
		n.ProcessRef, _ = getAttr(el.Attr, "processRef")
		var scheme ColorScheme
		n.FillColor, n.StrokeColor, scheme = decodeColors(el)

		extras, docs := captureExtras(el, participantAttrs, participantChildren)
		extras.Colors = scheme
		if len(docs) > 0 {
			n.Documentation = docs[0]
			extras.Docs = docs[1:]
		}
		n.Extras = extras

		if sh := d.shapes[id]; sh != nil {
			if b := boundsOf(sh); b != nil {
				n.X, n.Y, n.Width, n.Height = b.X, b.Y, b.Width, b.Height
				extras.Bounds = b
			}
			extras.LabelBounds = labelBoundsOf(sh)
			extras.ShapeAttrs = recordAttrs(sh)
		} else {
			w, h := defaultSize(KindParticipant)
			n.X = 160
			n.Y = 80 + float64(stacked)*(h+40)
			n.Width, n.Height = w, h
		}

		if err := d.g.AddNode(n); err != nil {
			if err = d.anomaly(err); err != nil {
				return err
			}
			continue
		}
		d.seen[id] = true
		stacked++
	}

	return nil
}

// decodeProcessNodes decodes one process element's lanes and flow
// nodes. Sequence flows come in a later pass so forward references and
// cross-process targets resolve uniformly.
func (d *decoder) decodeProcessNodes(proc *etree.Element) error {
	procID, _ := getAttr(proc.Attr, "id")
	owner := d.participantFor(procID)

	procEx := &Extras{ElementType: proc.FullTag()}
	for _, attr := range proc.Attr {
		if owner != nil && attr.FullKey() == "id" {
			// modeled through the participant's processRef
			continue
		}
		procEx.Attrs = append(procEx.Attrs, Attr{Key: attr.FullKey(), Value: attr.Value})
	}
	for _, child := range proc.ChildElements() {
		switch {
		case processChildren[child.Tag]:
		case child.Tag == "documentation":
			procEx.Docs = append(procEx.Docs, child.Text())
		default:
			procEx.Fragments = append(procEx.Fragments, serializeFragment(child))
		}
	}

	// lane membership decides visual grouping of the nodes below
	laneOwner := map[string]string{}
	for _, laneSet := range childrenOf(proc, "laneSet") {
		var setAttrs []Attr
		for _, attr := range laneSet.Attr {
			setAttrs = append(setAttrs, Attr{Key: attr.FullKey(), Value: attr.Value})
		}
		for _, el := range childrenOf(laneSet, "lane") {
			lane, err := d.decodeLane(el, owner, laneOwner)
			if err != nil {
				return err
			}
			if lane != nil && lane.Extras != nil {
				lane.Extras.ContainerAttrs = setAttrs
			}
		}
	}

	var first *FlowNode
	for _, child := range proc.ChildElements() {
		kind, ok := kindByTag[child.Tag]
		if !ok {
			continue
		}
		n, err := d.decodeFlowNode(child, kind, owner, laneOwner)
		if err != nil {
			return err
		}
		if n != nil && first == nil {
			first = n
		}
	}

	// the enclosing process tag must be reproducible on export
	switch {
	case owner != nil:
		owner.ProcExtras = procEx
	case first != nil:
		first.ProcExtras = procEx
	}
	return nil
}

func (d *decoder) decodeLane(el *etree.Element, owner *FlowNode, laneOwner map[string]string) (*FlowNode, error) {
	id, _ := getAttr(el.Attr, "id")
	if id == "" {
		id = d.c.alloc.Generate(KindLane)
	}
	if d.seen[id] {
		if err := d.anomaly(&DuplicateIdentifierError{Id: id, Section: "element"}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	n := &FlowNode{Id: id, Kind: KindLane}
	n.Name, _ = getAttr(el.Attr, "name")
	if owner != nil {
		n.Participant = owner.Id
	}
	var scheme ColorScheme
	n.FillColor, n.StrokeColor, scheme = decodeColors(el)

	for _, ref := range childrenOf(el, "flowNodeRef") {
		member := ref.Text()
		if member == "" {
			continue
		}
		n.NodeRefs = append(n.NodeRefs, member)
		if _, taken := laneOwner[member]; !taken {
			laneOwner[member] = id
		}
	}

	extras, docs := captureExtras(el, laneAttrs, laneChildren)
	extras.Colors = scheme
	if len(docs) > 0 {
		n.Documentation = docs[0]
		extras.Docs = docs[1:]
	}
	n.Extras = extras

	if sh := d.shapes[id]; sh != nil {
		if b := boundsOf(sh); b != nil {
			extras.Bounds = b
			n.Width, n.Height = b.Width, b.Height
			if owner != nil {
				// lanes hug the pool chrome, so no padding floor here
				n.X, n.Y = b.X-owner.X, b.Y-owner.Y
			} else {
				n.X, n.Y = b.X, b.Y
			}
		}
		extras.LabelBounds = labelBoundsOf(sh)
		extras.ShapeAttrs = recordAttrs(sh)
	}

	if err := d.g.AddNode(n); err != nil {
		if err = d.anomaly(err); err != nil {
			return nil, err
		}
		return nil, nil
	}
	d.seen[id] = true
	return n, nil
}

func (d *decoder) decodeFlowNode(el *etree.Element, kind Kind, owner *FlowNode, laneOwner map[string]string) (*FlowNode, error) {
	id, _ := getAttr(el.Attr, "id")
	if id == "" {
		id = d.c.alloc.Generate(kind)
	}
	if d.seen[id] {
		if err := d.anomaly(&DuplicateIdentifierError{Id: id, Section: "element"}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	n := &FlowNode{Id: id, Kind: kind}
	n.Name, _ = getAttr(el.Attr, "name")
	if owner != nil {
		n.Participant = owner.Id
	}
	n.Lane = laneOwner[id]
	var scheme ColorScheme
	n.FillColor, n.StrokeColor, scheme = decodeColors(el)

	extras, docs := captureExtras(el, flowNodeAttrs, flowNodeChildren)
	extras.Colors = scheme
	if len(docs) > 0 {
		n.Documentation = docs[0]
		extras.Docs = docs[1:]
	}
	n.Extras = extras

	if sh := d.shapes[id]; sh != nil {
		if b := boundsOf(sh); b != nil {
			extras.Bounds = b
			n.Width, n.Height = b.Width, b.Height
			if owner != nil {
				rel := ToRelative(b.Origin(), owner.Position())
				n.X, n.Y = rel.X, rel.Y
			} else {
				n.X, n.Y = b.X, b.Y
			}
		}
		extras.LabelBounds = labelBoundsOf(sh)
		extras.ShapeAttrs = recordAttrs(sh)
	} else {
		n.Width, n.Height = defaultSize(kind)
		if owner != nil {
			n.X, n.Y = MinRelativeX, MinRelativeY
		}
	}

	if err := d.g.AddNode(n); err != nil {
		if err = d.anomaly(err); err != nil {
			return nil, err
		}
		return nil, nil
	}
	d.seen[id] = true
	return n, nil
}

func (d *decoder) decodeSequenceFlows(proc *etree.Element) error {
	for _, el := range childrenOf(proc, "sequenceFlow") {
		id, _ := getAttr(el.Attr, "id")
		if id == "" {
			id = d.c.alloc.GenerateName("Flow")
		}
		if d.seen[id] {
			if err := d.anomaly(&DuplicateIdentifierError{Id: id, Section: "element"}); err != nil {
				return err
			}
			continue
		}

		src, _ := getAttr(el.Attr, "sourceRef")
		tgt, _ := getAttr(el.Attr, "targetRef")
		if _, ok := d.g.Node(src); !ok {
			if err := d.anomaly(&UnresolvedReferenceError{Element: id, Ref: src}); err != nil {
				return err
			}
			continue
		}
		if _, ok := d.g.Node(tgt); !ok {
			if err := d.anomaly(&UnresolvedReferenceError{Element: id, Ref: tgt}); err != nil {
				return err
			}
			continue
		}
		if d.g.ownerOf(src) != d.g.ownerOf(tgt) {
			if err := d.anomaly(&CrossBoundaryFlowError{Flow: id, Source: src, Target: tgt}); err != nil {
				return err
			}
			continue
		}

		e := &FlowEdge{Id: id, Source: src, Target: tgt}
		e.Name, _ = getAttr(el.Attr, "name")
		d.decodeEdgeCommon(el, e)
		d.g.edges = append(d.g.edges, e)
		d.seen[id] = true
	}
	return nil
}

func (d *decoder) decodeMessageFlows(collab *etree.Element) error {
	for _, el := range childrenOf(collab, "messageFlow") {
		id, _ := getAttr(el.Attr, "id")
		if id == "" {
			id = d.c.alloc.GenerateName("MessageFlow")
		}
		if d.seen[id] {
			if err := d.anomaly(&DuplicateIdentifierError{Id: id, Section: "element"}); err != nil {
				return err
			}
			continue
		}

		src, _ := getAttr(el.Attr, "sourceRef")
		tgt, _ := getAttr(el.Attr, "targetRef")
		if _, ok := d.g.Node(src); !ok {
			if err := d.anomaly(&UnresolvedReferenceError{Element: id, Ref: src}); err != nil {
				return err
			}
			continue
		}
		if _, ok := d.g.Node(tgt); !ok {
			if err := d.anomaly(&UnresolvedReferenceError{Element: id, Ref: tgt}); err != nil {
				return err
			}
			continue
		}
		if d.g.ownerOf(src) == d.g.ownerOf(tgt) {
			// message flows only make sense across participants
			if err := d.anomaly(&CrossBoundaryFlowError{Flow: id, Source: src, Target: tgt}); err != nil {
				return err
			}
			continue
		}

		e := &FlowEdge{Id: id, Source: src, Target: tgt, Message: true}
		e.Name, _ = getAttr(el.Attr, "name")
		d.decodeEdgeCommon(el, e)
		d.g.edges = append(d.g.edges, e)
		d.seen[id] = true
	}
	return nil
}

// decodeEdgeCommon captures an edge's preservation record and its
// recorded diagram geometry.
func (d *decoder) decodeEdgeCommon(el *etree.Element, e *FlowEdge) {
	extras, docs := captureExtras(el, flowAttrs, nil)
	if len(docs) > 0 {
		e.Documentation = docs[0]
		extras.Docs = docs[1:]
	}
	if rec := d.edges[e.Id]; rec != nil {
		extras.Waypoints = waypointsOf(rec)
		extras.LabelBounds = labelBoundsOf(rec)
		extras.ShapeAttrs = recordAttrs(rec)
	}
	e.Extras = extras
}

// participantFor finds the decoded participant owning a process id.
func (d *decoder) participantFor(processID string) *FlowNode {
	if processID == "" {
		return nil
	}
	for _, n := range d.g.nodes {
		if n.Kind == KindParticipant && n.ProcessRef == processID {
			return n
		}
	}
	return nil
}

// decodeColors reads an element's styling. The simple attribute scheme
// wins; the structured style child is only consulted when both
// attributes are absent.
func decodeColors(el *etree.Element) (fill, stroke string, scheme ColorScheme) {
	fill, fok := getAttr(el.Attr, "fillColor")
	stroke, sok := getAttr(el.Attr, "strokeColor")
	if fok || sok {
		return fill, stroke, ColorAttr
	}
	if style := findChild(el, "style"); style != nil {
		fill, _ = getAttr(style.Attr, "fill")
		stroke, _ = getAttr(style.Attr, "stroke")
		return fill, stroke, ColorElement
	}
	return "", "", ColorNone
}
