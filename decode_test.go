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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const simpleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:bpmndi="http://www.omg.org/spec/BPMN/20100524/DI" xmlns:dc="http://www.omg.org/spec/DD/20100524/DC" xmlns:di="http://www.omg.org/spec/DD/20100524/DI" xmlns:camunda="http://camunda.org/schema/1.0/bpmn" id="Definitions_1" targetNamespace="http://example.com/bpmn">
  <bpmn:process id="Process_1" isExecutable="true">
    <bpmn:startEvent id="StartEvent_1" name="Begin">
      <bpmn:outgoing>Flow_1</bpmn:outgoing>
    </bpmn:startEvent>
    <bpmn:userTask id="Activity_1" name="Review" camunda:assignee="kermit">
      <bpmn:extensionElements>
        <camunda:formKey>review-form</camunda:formKey>
      </bpmn:extensionElements>
      <bpmn:incoming>Flow_1</bpmn:incoming>
    </bpmn:userTask>
    <bpmn:sequenceFlow id="Flow_1" sourceRef="StartEvent_1" targetRef="Activity_1"/>
  </bpmn:process>
  <bpmndi:BPMNDiagram id="BPMNDiagram_1">
    <bpmndi:BPMNPlane id="BPMNPlane_1" bpmnElement="Process_1">
      <bpmndi:BPMNShape id="StartEvent_1_di" bpmnElement="StartEvent_1">
        <dc:Bounds x="179" y="99" width="36" height="36"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNShape id="Activity_1_di" bpmnElement="Activity_1">
        <dc:Bounds x="270" y="77" width="100" height="80"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNEdge id="Flow_1_di" bpmnElement="Flow_1">
        <di:waypoint x="215" y="117"/>
        <di:waypoint x="270" y="117"/>
      </bpmndi:BPMNEdge>
    </bpmndi:BPMNPlane>
  </bpmndi:BPMNDiagram>
</bpmn:definitions>`

const collabDoc = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:bpmndi="http://www.omg.org/spec/BPMN/20100524/DI" xmlns:dc="http://www.omg.org/spec/DD/20100524/DC" xmlns:di="http://www.omg.org/spec/DD/20100524/DI" id="Definitions_2" targetNamespace="http://example.com/bpmn">
  <bpmn:collaboration id="Collaboration_1">
    <bpmn:participant id="Participant_A" name="Customer" processRef="Process_A"/>
    <bpmn:participant id="Participant_B" name="Supplier" processRef="Process_B"/>
    <bpmn:messageFlow id="MessageFlow_1" sourceRef="Task_A" targetRef="Task_B"/>
  </bpmn:collaboration>
  <bpmn:process id="Process_A">
    <bpmn:laneSet id="LaneSet_A">
      <bpmn:lane id="Lane_A1" name="Front">
        <bpmn:flowNodeRef>Task_A</bpmn:flowNodeRef>
      </bpmn:lane>
    </bpmn:laneSet>
    <bpmn:task id="Task_A" name="Order" fillColor="#ffcc00"/>
    <bpmn:sequenceFlow id="Flow_X" sourceRef="Task_A" targetRef="Task_B"/>
  </bpmn:process>
  <bpmn:process id="Process_B">
    <bpmn:task id="Task_B" name="Ship"/>
  </bpmn:process>
  <bpmndi:BPMNDiagram id="BPMNDiagram_1">
    <bpmndi:BPMNPlane id="BPMNPlane_1" bpmnElement="Collaboration_1">
      <bpmndi:BPMNShape id="Participant_A_di" bpmnElement="Participant_A" isHorizontal="true">
        <dc:Bounds x="160" y="80" width="600" height="250"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNShape id="Lane_A1_di" bpmnElement="Lane_A1" isHorizontal="true">
        <dc:Bounds x="190" y="80" width="570" height="250"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNShape id="Task_A_di" bpmnElement="Task_A">
        <dc:Bounds x="300" y="180" width="100" height="80"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNShape id="Participant_B_di" bpmnElement="Participant_B" isHorizontal="true">
        <dc:Bounds x="160" y="370" width="600" height="250"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNShape id="Task_B_di" bpmnElement="Task_B">
        <dc:Bounds x="300" y="450" width="100" height="80"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNEdge id="MessageFlow_1_di" bpmnElement="MessageFlow_1">
        <di:waypoint x="350" y="260"/>
        <di:waypoint x="350" y="450"/>
      </bpmndi:BPMNEdge>
    </bpmndi:BPMNPlane>
  </bpmndi:BPMNDiagram>
</bpmn:definitions>`

func TestDecodeSimpleProcess(t *testing.T) {
	g, err := Decode(simpleDoc)
	assert.NoError(t, err)

	assert.Len(t, g.Nodes(), 2, "two flow nodes")
	assert.Len(t, g.Edges(), 1, "one sequence flow")
	assert.Empty(t, g.Participants())
	assert.Empty(t, g.Warnings())

	start, ok := g.Node("StartEvent_1")
	assert.True(t, ok)
	assert.Equal(t, KindStartEvent, start.Kind)
	assert.Equal(t, "Begin", start.Name)
	assert.Equal(t, 179.0, start.X, "top-level nodes keep absolute coordinates")
	assert.Equal(t, 99.0, start.Y)
	assert.Equal(t, 36.0, start.Width)

	task, ok := g.Node("Activity_1")
	assert.True(t, ok)
	assert.Equal(t, KindTask, task.Kind, "every task flavour collapses to the task variant")
	assert.Equal(t, "bpmn:userTask", task.Extras.ElementType)
	assignee, ok := task.Extras.attr("camunda:assignee")
	assert.True(t, ok, "vendor attribute preserved")
	assert.Equal(t, "kermit", assignee)
	assert.Len(t, task.Extras.Fragments, 1, "extension elements preserved verbatim")
	assert.Contains(t, task.Extras.Fragments[0], "camunda:formKey")

	edge, ok := g.Edge("Flow_1")
	assert.True(t, ok)
	assert.False(t, edge.Message)
	assert.Equal(t, "StartEvent_1", edge.Source)
	assert.Equal(t, "Activity_1", edge.Target)
	assert.Len(t, edge.Extras.Waypoints, 2)
	assert.Equal(t, Point{X: 215, Y: 117}, edge.Extras.Waypoints[0])
}

func TestDecodeCollaboration(t *testing.T) {
	c := NewCodec()
	g, err := c.Decode(collabDoc)
	assert.NoError(t, err)

	assert.Len(t, g.Participants(), 2)
	assert.Len(t, g.Lanes("Participant_A"), 1)

	pa, _ := g.Node("Participant_A")
	assert.Equal(t, "Customer", pa.Name)
	assert.Equal(t, "Process_A", pa.ProcessRef)
	assert.Equal(t, 160.0, pa.X, "participants keep absolute coordinates")

	task, ok := g.Node("Task_A")
	assert.True(t, ok)
	assert.Equal(t, "Participant_A", task.Participant)
	assert.Equal(t, "Lane_A1", task.Lane)
	assert.Equal(t, 140.0, task.X, "contained nodes become pool-relative")
	assert.Equal(t, 100.0, task.Y)
	assert.Equal(t, "#ffcc00", task.FillColor)
	assert.Equal(t, ColorAttr, task.Extras.Colors)

	lane, _ := g.Node("Lane_A1")
	assert.Equal(t, 30.0, lane.X, "lanes subtract the pool origin without flooring")
	assert.Equal(t, 0.0, lane.Y)
	assert.Equal(t, []string{"Task_A"}, lane.NodeRefs)

	// the cross-pool sequence flow is dropped, the message flow kept
	assert.Len(t, g.Edges(), 1)
	msg, ok := g.Edge("MessageFlow_1")
	assert.True(t, ok)
	assert.True(t, msg.Message)
	_, ok = g.Edge("Flow_X")
	assert.False(t, ok)

	assert.Len(t, g.Warnings(), 1)
	var cross *CrossBoundaryFlowError
	assert.True(t, errors.As(g.Warnings()[0], &cross))
	assert.Equal(t, "Flow_X", cross.Flow)
}

func TestDecodeMalformed(t *testing.T) {
	for _, text := range []string{
		"not xml at all <",
		"<bpmn:unclosed>",
		`<?xml version="1.0"?><other:root xmlns:other="urn:x"/>`,
	} {
		_, err := Decode(text)
		var malformed *MalformedDocumentError
		assert.True(t, errors.As(err, &malformed), "input %q", text)
	}
}

func TestDecodeDuplicateIds(t *testing.T) {
	doc := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="P">
    <bpmn:task id="T" name="first"/>
    <bpmn:task id="T" name="second"/>
  </bpmn:process>
</bpmn:definitions>`

	g, err := Decode(doc)
	assert.NoError(t, err)
	assert.Len(t, g.Nodes(), 1, "first occurrence wins")
	n, _ := g.Node("T")
	assert.Equal(t, "first", n.Name)
	assert.Len(t, g.Warnings(), 1)
	var dup *DuplicateIdentifierError
	assert.True(t, errors.As(g.Warnings()[0], &dup))

	_, err = NewCodec(WithStrict(true)).Decode(doc)
	assert.Error(t, err, "strict mode refuses the duplicate")
	assert.True(t, errors.As(err, &dup))
}

func TestDecodeDuplicateShapeRecords(t *testing.T) {
	doc := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:bpmndi="http://www.omg.org/spec/BPMN/20100524/DI" xmlns:dc="http://www.omg.org/spec/DD/20100524/DC">
  <bpmn:process id="P">
    <bpmn:task id="T"/>
  </bpmn:process>
  <bpmndi:BPMNDiagram id="BPMNDiagram_1">
    <bpmndi:BPMNPlane id="BPMNPlane_1" bpmnElement="P">
      <bpmndi:BPMNShape id="T_di" bpmnElement="T">
        <dc:Bounds x="100" y="100" width="100" height="80"/>
      </bpmndi:BPMNShape>
      <bpmndi:BPMNShape id="T_di2" bpmnElement="T">
        <dc:Bounds x="999" y="999" width="10" height="10"/>
      </bpmndi:BPMNShape>
    </bpmndi:BPMNPlane>
  </bpmndi:BPMNDiagram>
</bpmn:definitions>`

	g, err := Decode(doc)
	assert.NoError(t, err, "a duplicate shape record is never fatal")
	n, _ := g.Node("T")
	assert.Equal(t, 100.0, n.X, "the first record wins")
	assert.Equal(t, 100.0, n.Width)

	assert.Len(t, g.Warnings(), 1)
	var dup *DuplicateIdentifierError
	assert.True(t, errors.As(g.Warnings()[0], &dup))
	assert.Equal(t, "shape", dup.Section)
	assert.Equal(t, "T", dup.Id)
}

func TestDecodeUnresolvedFlow(t *testing.T) {
	doc := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="P">
    <bpmn:task id="T"/>
    <bpmn:sequenceFlow id="F" sourceRef="T" targetRef="Ghost"/>
  </bpmn:process>
</bpmn:definitions>`

	g, err := Decode(doc)
	assert.NoError(t, err)
	assert.Empty(t, g.Edges())
	assert.Len(t, g.Warnings(), 1)
	var unresolved *UnresolvedReferenceError
	assert.True(t, errors.As(g.Warnings()[0], &unresolved))
	assert.Equal(t, "Ghost", unresolved.Ref)

	_, err = NewCodec(WithStrict(true)).Decode(doc)
	assert.Error(t, err)
}

func TestDecodeStyleElement(t *testing.T) {
	doc := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:editor="http://procflow.io/schema/editor">
  <bpmn:process id="P">
    <bpmn:task id="T">
      <editor:style fill="#00ff00" stroke="#003300"/>
    </bpmn:task>
  </bpmn:process>
</bpmn:definitions>`

	g, err := Decode(doc)
	assert.NoError(t, err)
	n, _ := g.Node("T")
	assert.Equal(t, "#00ff00", n.FillColor)
	assert.Equal(t, "#003300", n.StrokeColor)
	assert.Equal(t, ColorElement, n.Extras.Colors)
	assert.Empty(t, n.Extras.Fragments, "the style child is modeled, not preserved")
}

func TestDecodeMissingGeometry(t *testing.T) {
	doc := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="P">
    <bpmn:exclusiveGateway id="G"/>
  </bpmn:process>
</bpmn:definitions>`

	g, err := Decode(doc)
	assert.NoError(t, err)
	n, _ := g.Node("G")
	w, h := n.Size()
	assert.Equal(t, 50.0, w, "gateway picks up the variant default size")
	assert.Equal(t, 50.0, h)
	assert.Nil(t, n.Extras.Bounds)
}

func TestDecodeReseedsAllocator(t *testing.T) {
	c := NewCodec()
	_, err := c.Decode(simpleDoc)
	assert.NoError(t, err)
	assert.Equal(t, "LaneSet_2", c.Allocator().Sequential("LaneSet"),
		"imported numeric suffixes push the counter forward")
}

func TestDecodePreservesDefinitionsRoot(t *testing.T) {
	doc := strings.Replace(simpleDoc,
		"<bpmn:process",
		`<bpmn:message id="Message_1" name="order"/>
  <bpmn:process`, 1)

	g, err := Decode(doc)
	assert.NoError(t, err)
	assert.NotNil(t, g.meta)
	assert.Equal(t, "bpmn:definitions", g.meta.ElementType)
	assert.Len(t, g.meta.Fragments, 1)
	assert.Contains(t, g.meta.Fragments[0], "Message_1")

	ns, ok := g.meta.attr("xmlns:camunda")
	assert.True(t, ok, "namespace declarations survive as plain attributes")
	assert.Equal(t, "http://camunda.org/schema/1.0/bpmn", ns)
}
