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
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const (
	bpmnNS   = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	bpmndiNS = "http://www.omg.org/spec/BPMN/20100524/DI"
	dcNS     = "http://www.omg.org/spec/DD/20100524/DC"
	diNS     = "http://www.omg.org/spec/DD/20100524/DI"
	xsiNS    = "http://www.w3.org/2001/XMLSchema-instance"
	editorNS = "http://procflow.io/schema/editor"
)

type encoder struct {
	c *Codec
	g *Graph

	// edges dropped because an endpoint no longer resolves
	dangling map[string]bool
}

// Encode serializes a graph back into a complete document: XML
// declaration, namespace declarations, semantic sections and the
// diagram layout section. It does not fail on well-formed graphs;
// edges with dangling references are skipped with a warning.
func (c *Codec) Encode(g *Graph) (string, error) {
	e := &encoder{c: c, g: g, dangling: map[string]bool{}}
	for _, edge := range g.edges {
		if _, ok := g.Node(edge.Source); !ok {
			c.log.Warn("skipping edge with dangling reference",
				zap.String("edge", edge.Id), zap.String("ref", edge.Source))
			e.dangling[edge.Id] = true
			continue
		}
		if _, ok := g.Node(edge.Target); !ok {
			c.log.Warn("skipping edge with dangling reference",
				zap.String("edge", edge.Id), zap.String("ref", edge.Target))
			e.dangling[edge.Id] = true
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(tagOr(g.meta, "bpmn:definitions"))
	e.writeDefinitionsAttrs(root)

	participants := g.Participants()
	planeRef := ""
	if len(participants) > 0 {
		planeRef = e.writeCollaboration(root, participants)
		for _, p := range participants {
			e.writeProcess(root, p)
		}
		// nodes outside every pool still need a semantic home
		if e.hasFreeNodes() {
			e.writeImplicitProcess(root)
		}
	} else {
		planeRef = e.writeImplicitProcess(root)
	}

	if g.meta != nil {
		for _, f := range g.meta.Fragments {
			replayFragment(root, f)
		}
		writeDocs(root, "", g.meta.Docs)
	}

	e.writeDiagram(root, planeRef)

	doc.Indent(2)
	return doc.WriteToString()
}

// tagOr returns the preserved element tag when one was recorded.
func tagOr(ex *Extras, fallback string) string {
	if ex != nil && ex.ElementType != "" {
		return ex.ElementType
	}
	return fallback
}

// childTag prefixes a local tag with its parent's namespace prefix, so
// children follow whatever prefix the original document used.
func childTag(parent *etree.Element, local string) string {
	if parent.Space != "" {
		return parent.Space + ":" + local
	}
	return local
}

func (e *encoder) writeDefinitionsAttrs(root *etree.Element) {
	if e.g.meta != nil && len(e.g.meta.Attrs) > 0 {
		for _, a := range e.g.meta.Attrs {
			root.CreateAttr(a.Key, a.Value)
		}
	} else {
		root.CreateAttr("xmlns:bpmn", bpmnNS)
		root.CreateAttr("xmlns:bpmndi", bpmndiNS)
		root.CreateAttr("xmlns:dc", dcNS)
		root.CreateAttr("xmlns:di", diNS)
		root.CreateAttr("xmlns:xsi", xsiNS)
		root.CreateAttr("id", e.c.alloc.GenerateName("Definitions"))
		root.CreateAttr("targetNamespace", "http://procflow.io/schema/bpmn")
	}
	if e.needsEditorNS() && root.SelectAttr("xmlns:editor") == nil {
		root.CreateAttr("xmlns:editor", editorNS)
	}
}

// needsEditorNS reports whether any element will emit the structured
// style child, which requires the editor namespace declaration.
func (e *encoder) needsEditorNS() bool {
	for _, n := range e.g.nodes {
		if n.FillColor == "" && n.StrokeColor == "" {
			continue
		}
		if resolveColorScheme(n.Extras) == ColorElement {
			return true
		}
	}
	return false
}

// resolveColorScheme picks the emission scheme: whatever the original
// document used when detectable, the structured child otherwise.
func resolveColorScheme(ex *Extras) ColorScheme {
	if ex != nil && ex.Colors != ColorNone {
		return ex.Colors
	}
	return ColorElement
}

func (e *encoder) writeCollaboration(root *etree.Element, participants []*FlowNode) string {
	collab := root.CreateElement(tagOr(e.g.collab, "bpmn:collaboration"))
	id, ok := e.g.collab.attr("id")
	if !ok || id == "" {
		id = e.c.alloc.GenerateName("Collaboration")
	}
	collab.CreateAttr("id", id)
	if e.g.collab != nil {
		replayAttrs(collab, e.g.collab.Attrs)
	}

	for _, p := range participants {
		e.writeParticipant(collab, p)
	}
	for _, edge := range e.g.edges {
		if edge.Message && !e.dangling[edge.Id] {
			e.writeEdgeElement(collab, edge, childTag(collab, "messageFlow"))
		}
	}
	if e.g.collab != nil {
		for _, f := range e.g.collab.Fragments {
			replayFragment(collab, f)
		}
		writeDocs(collab, "", e.g.collab.Docs)
	}
	return id
}

func (e *encoder) writeParticipant(collab *etree.Element, p *FlowNode) {
	if p.ProcessRef == "" {
		p.ProcessRef = e.c.alloc.GenerateName("Process")
	}
	el := collab.CreateElement(tagOr(p.Extras, "bpmn:participant"))
	el.CreateAttr("id", p.Id)
	if p.Name != "" {
		el.CreateAttr("name", p.Name)
	}
	el.CreateAttr("processRef", p.ProcessRef)
	styled := e.writeColorAttrs(el, p)
	if p.Extras != nil {
		replayAttrs(el, p.Extras.Attrs)
		for _, f := range p.Extras.Fragments {
			replayFragment(el, f)
		}
	}
	if styled {
		writeStyleChild(el, p)
	}
	writeDocs(el, p.Documentation, extraDocs(p.Extras))
}

func (e *encoder) writeProcess(root *etree.Element, p *FlowNode) {
	procEl := root.CreateElement(tagOr(p.ProcExtras, "bpmn:process"))
	procEl.CreateAttr("id", p.ProcessRef)
	if p.ProcExtras != nil {
		replayAttrs(procEl, p.ProcExtras.Attrs)
	}
	e.writeProcessBody(procEl, p.Id, p.ProcExtras)
}

// hasFreeNodes reports whether any non-container node sits outside
// every participant.
func (e *encoder) hasFreeNodes() bool {
	for _, n := range e.g.nodes {
		if n.Kind != KindParticipant && n.Participant == "" {
			return true
		}
	}
	return false
}

func (e *encoder) writeImplicitProcess(root *etree.Element) string {
	var procEx *Extras
	for _, n := range e.g.nodes {
		// participants carry the record of their own process
		if n.Kind != KindParticipant && n.Participant == "" && n.ProcExtras != nil {
			procEx = n.ProcExtras
			break
		}
	}
	procEl := root.CreateElement(tagOr(procEx, "bpmn:process"))
	id, ok := procEx.attr("id")
	if !ok || id == "" {
		id = e.c.alloc.GenerateName("Process")
	}
	procEl.CreateAttr("id", id)
	if procEx != nil {
		replayAttrs(procEl, procEx.Attrs)
	}
	e.writeProcessBody(procEl, "", procEx)
	return id
}

// writeProcessBody emits a process's lanes, flow nodes and sequence
// flows, then the preserved process-level content.
func (e *encoder) writeProcessBody(procEl *etree.Element, owner string, procEx *Extras) {
	lanes := e.g.Lanes(owner)
	if len(lanes) > 0 {
		laneSet := procEl.CreateElement(childTag(procEl, "laneSet"))
		if lanes[0].Extras != nil && len(lanes[0].Extras.ContainerAttrs) > 0 {
			replayAttrs(laneSet, lanes[0].Extras.ContainerAttrs)
		}
		if laneSet.SelectAttr("id") == nil {
			laneSet.CreateAttr("id", e.c.alloc.Sequential("LaneSet"))
		}
		for _, lane := range lanes {
			e.writeLane(laneSet, lane)
		}
	}

	for _, n := range e.g.nodes {
		if n.Kind == KindParticipant || n.Kind == KindLane {
			continue
		}
		if n.Participant != owner {
			continue
		}
		e.writeFlowNode(procEl, n)
	}

	for _, edge := range e.g.edges {
		if edge.Message || e.dangling[edge.Id] {
			continue
		}
		if e.g.ownerOf(edge.Source) != owner {
			continue
		}
		e.writeEdgeElement(procEl, edge, childTag(procEl, "sequenceFlow"))
	}

	if procEx != nil {
		for _, f := range procEx.Fragments {
			replayFragment(procEl, f)
		}
		writeDocs(procEl, "", procEx.Docs)
	}
}

func (e *encoder) writeLane(laneSet *etree.Element, lane *FlowNode) {
	el := laneSet.CreateElement(tagOr(lane.Extras, childTag(laneSet, "lane")))
	el.CreateAttr("id", lane.Id)
	if lane.Name != "" {
		el.CreateAttr("name", lane.Name)
	}
	styled := e.writeColorAttrs(el, lane)
	if lane.Extras != nil {
		replayAttrs(el, lane.Extras.Attrs)
	}
	// membership derived fresh from the nodes' lane assignment, never
	// from the stale decoded list
	for _, n := range e.g.nodes {
		if n.Lane != lane.Id || n.Kind == KindParticipant || n.Kind == KindLane {
			continue
		}
		ref := el.CreateElement(childTag(el, "flowNodeRef"))
		ref.SetText(n.Id)
	}
	if lane.Extras != nil {
		for _, f := range lane.Extras.Fragments {
			replayFragment(el, f)
		}
	}
	if styled {
		writeStyleChild(el, lane)
	}
	writeDocs(el, lane.Documentation, extraDocs(lane.Extras))
}

// writeFlowNode dispatches on the variant to pick the element tag,
// preferring the originally recorded tag so ambiguous internal
// mappings (every task flavour) re-expand to their source form.
func (e *encoder) writeFlowNode(parent *etree.Element, n *FlowNode) {
	el := parent.CreateElement(tagOr(n.Extras, n.Kind.DefaultTag()))
	el.CreateAttr("id", n.Id)
	if n.Name != "" {
		el.CreateAttr("name", n.Name)
	}
	styled := e.writeColorAttrs(el, n)
	if n.Extras != nil {
		replayAttrs(el, n.Extras.Attrs)
	}

	if n.Kind.connectable() {
		// incoming/outgoing derived fresh from the current edge set
		for _, edge := range e.g.edges {
			if edge.Message || e.dangling[edge.Id] || edge.Target != n.Id {
				continue
			}
			el.CreateElement(childTag(el, "incoming")).SetText(edge.Id)
		}
		for _, edge := range e.g.edges {
			if edge.Message || e.dangling[edge.Id] || edge.Source != n.Id {
				continue
			}
			el.CreateElement(childTag(el, "outgoing")).SetText(edge.Id)
		}
	}

	if n.Extras != nil {
		for _, f := range n.Extras.Fragments {
			replayFragment(el, f)
		}
	}
	if styled {
		writeStyleChild(el, n)
	}
	writeDocs(el, n.Documentation, extraDocs(n.Extras))
}

func (e *encoder) writeEdgeElement(parent *etree.Element, edge *FlowEdge, fallbackTag string) {
	el := parent.CreateElement(tagOr(edge.Extras, fallbackTag))
	el.CreateAttr("id", edge.Id)
	if edge.Name != "" {
		el.CreateAttr("name", edge.Name)
	}
	el.CreateAttr("sourceRef", edge.Source)
	el.CreateAttr("targetRef", edge.Target)
	if edge.Extras != nil {
		replayAttrs(el, edge.Extras.Attrs)
		for _, f := range edge.Extras.Fragments {
			replayFragment(el, f)
		}
	}
	writeDocs(el, edge.Documentation, extraDocs(edge.Extras))
}

// writeColorAttrs emits the simple attribute scheme when that is what
// the original used. It reports true when the structured style child
// still has to be written.
func (e *encoder) writeColorAttrs(el *etree.Element, n *FlowNode) bool {
	if n.FillColor == "" && n.StrokeColor == "" {
		return false
	}
	if resolveColorScheme(n.Extras) == ColorAttr {
		if n.FillColor != "" {
			el.CreateAttr("fillColor", n.FillColor)
		}
		if n.StrokeColor != "" {
			el.CreateAttr("strokeColor", n.StrokeColor)
		}
		return false
	}
	return true
}

func writeStyleChild(el *etree.Element, n *FlowNode) {
	style := el.CreateElement("editor:style")
	if n.FillColor != "" {
		style.CreateAttr("fill", n.FillColor)
	}
	if n.StrokeColor != "" {
		style.CreateAttr("stroke", n.StrokeColor)
	}
}

func writeDocs(el *etree.Element, primary string, extra []string) {
	if primary != "" {
		el.CreateElement(childTag(el, "documentation")).SetText(primary)
	}
	for _, text := range extra {
		el.CreateElement(childTag(el, "documentation")).SetText(text)
	}
}

func extraDocs(ex *Extras) []string {
	if ex == nil {
		return nil
	}
	return ex.Docs
}

// writeDiagram emits the layout section, replaying recorded geometry
// where present and deriving it where not.
func (e *encoder) writeDiagram(root *etree.Element, planeRef string) {
	dia := root.CreateElement("bpmndi:BPMNDiagram")
	dia.CreateAttr("id", "BPMNDiagram_1")
	plane := dia.CreateElement("bpmndi:BPMNPlane")
	plane.CreateAttr("id", "BPMNPlane_1")
	plane.CreateAttr("bpmnElement", planeRef)

	for _, n := range e.g.nodes {
		e.writeShape(plane, n)
	}
	for _, edge := range e.g.edges {
		if e.dangling[edge.Id] {
			continue
		}
		e.writeDiagramEdge(plane, edge)
	}
}

// absBounds computes a node's document-absolute box, adding the owning
// participant's origin back to contained coordinates.
func (e *encoder) absBounds(n *FlowNode) Bounds {
	w, h := n.Size()
	p := n.Position()
	if n.Participant != "" && n.Kind != KindParticipant {
		if owner, ok := e.g.Node(n.Participant); ok {
			p = ToAbsolute(p, owner.Position())
		}
	}
	return Bounds{X: p.X, Y: p.Y, Width: w, Height: h}
}

func (e *encoder) writeShape(plane *etree.Element, n *FlowNode) {
	sh := plane.CreateElement("bpmndi:BPMNShape")
	sh.CreateAttr("id", n.Id+"_di")
	sh.CreateAttr("bpmnElement", n.Id)
	if n.Extras != nil && len(n.Extras.ShapeAttrs) > 0 {
		replayAttrs(sh, n.Extras.ShapeAttrs)
	} else if n.Kind == KindParticipant || n.Kind == KindLane {
		sh.CreateAttr("isHorizontal", "true")
	}

	b := e.absBounds(n)
	writeBounds(sh, b)

	var lb *Bounds
	if n.Extras != nil {
		lb = n.Extras.LabelBounds
	}
	if lb == nil && n.Name != "" && hasExternalLabel(n.Kind) {
		lb = labelBox(b)
	}
	if lb != nil {
		label := sh.CreateElement("bpmndi:BPMNLabel")
		writeBounds(label, *lb)
	}
}

func (e *encoder) writeDiagramEdge(plane *etree.Element, edge *FlowEdge) {
	el := plane.CreateElement("bpmndi:BPMNEdge")
	el.CreateAttr("id", edge.Id+"_di")
	el.CreateAttr("bpmnElement", edge.Id)
	if edge.Extras != nil {
		replayAttrs(el, edge.Extras.ShapeAttrs)
	}

	var wps []Point
	if edge.Extras != nil && len(edge.Extras.Waypoints) >= 2 {
		// keep the previously drawn path stable across unrelated edits
		wps = edge.Extras.Waypoints
	} else {
		src, _ := e.g.Node(edge.Source)
		tgt, _ := e.g.Node(edge.Target)
		wps = deriveWaypoints(e.absBounds(src), e.absBounds(tgt))
	}
	for _, wp := range wps {
		w := el.CreateElement("di:waypoint")
		w.CreateAttr("x", formatCoord(wp.X))
		w.CreateAttr("y", formatCoord(wp.Y))
	}

	var lb *Bounds
	if edge.Extras != nil {
		lb = edge.Extras.LabelBounds
	}
	if lb == nil && edge.Name != "" {
		lb = edgeLabelBox(wps)
	}
	if lb != nil {
		label := el.CreateElement("bpmndi:BPMNLabel")
		writeBounds(label, *lb)
	}
}

func writeBounds(el *etree.Element, b Bounds) {
	bounds := el.CreateElement("dc:Bounds")
	bounds.CreateAttr("x", formatCoord(b.X))
	bounds.CreateAttr("y", formatCoord(b.Y))
	bounds.CreateAttr("width", formatCoord(b.Width))
	bounds.CreateAttr("height", formatCoord(b.Height))
}
