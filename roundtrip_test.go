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
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestRoundTripSimpleProcess(t *testing.T) {
	g, err := Decode(simpleDoc)
	assert.NoError(t, err)

	out, err := Encode(g)
	assert.NoError(t, err)

	// everything the model does not understand comes back verbatim
	assert.Contains(t, out, "<bpmn:userTask", "ambiguous task flavour re-expands to its source tag")
	assert.Contains(t, out, `camunda:assignee="kermit"`)
	assert.Contains(t, out, "<camunda:formKey>review-form</camunda:formKey>")
	assert.Contains(t, out, `<bpmn:process id="Process_1" isExecutable="true">`)
	assert.Contains(t, out, `xmlns:camunda="http://camunda.org/schema/1.0/bpmn"`)

	g2, err := Decode(out)
	assert.NoError(t, err)
	assert.Empty(t, g2.Warnings())

	// whitespace inside preserved fragments shifts with re-indentation,
	// the modeled structure must not
	ignore := cmpopts.IgnoreFields(FlowNode{}, "Extras", "ProcExtras")
	if diff := cmp.Diff(g.Nodes(), g2.Nodes(), ignore); diff != "" {
		t.Errorf("nodes changed across a round trip:\n%s", diff)
	}
	ignoreEdge := cmpopts.IgnoreFields(FlowEdge{}, "Extras")
	if diff := cmp.Diff(g.Edges(), g2.Edges(), ignoreEdge); diff != "" {
		t.Errorf("edges changed across a round trip:\n%s", diff)
	}

	t1, _ := g.Node("Activity_1")
	t2, _ := g2.Node("Activity_1")
	assert.Equal(t, t1.Extras.ElementType, t2.Extras.ElementType)
	assert.Equal(t, t1.Extras.Attrs, t2.Extras.Attrs)
	assert.Len(t, t2.Extras.Fragments, 1)
}

func TestRoundTripCollaboration(t *testing.T) {
	g, err := Decode(collabDoc)
	assert.NoError(t, err)

	out, err := Encode(g)
	assert.NoError(t, err)

	assert.Contains(t, out, `<bpmn:collaboration id="Collaboration_1">`)
	assert.Contains(t, out, `processRef="Process_A"`)
	assert.Contains(t, out, `<bpmn:laneSet id="LaneSet_A">`)
	assert.Contains(t, out, "<bpmn:flowNodeRef>Task_A</bpmn:flowNodeRef>")
	assert.Contains(t, out, `fillColor="#ffcc00"`, "attribute styling keeps its scheme")
	assert.Contains(t, out, `isHorizontal="true"`, "recorded shape attributes replay")
	assert.Contains(t, out, `bpmnElement="Collaboration_1"`, "the plane points at the collaboration")
	assert.NotContains(t, out, `id="Flow_X"`, "the dropped cross-pool flow stays dropped")

	g2, err := Decode(out)
	assert.NoError(t, err)
	assert.Empty(t, g2.Warnings())

	ignore := cmpopts.IgnoreFields(FlowNode{}, "Extras", "ProcExtras")
	if diff := cmp.Diff(g.Nodes(), g2.Nodes(), ignore); diff != "" {
		t.Errorf("nodes changed across a round trip:\n%s", diff)
	}

	msg, ok := g2.Edge("MessageFlow_1")
	assert.True(t, ok)
	assert.True(t, msg.Message)
	assert.Equal(t, []Point{{X: 350, Y: 260}, {X: 350, Y: 450}}, msg.Extras.Waypoints,
		"the drawn path survives untouched")
}

func TestRoundTripSurvivesEdit(t *testing.T) {
	c := NewCodec()
	g, err := c.Decode(simpleDoc)
	assert.NoError(t, err)

	// an ordinary editing session: rename, append, rewire
	task, _ := g.Node("Activity_1")
	task.Name = "Review order"

	end := &FlowNode{
		Id:   c.Allocator().Generate(KindEndEvent),
		Kind: KindEndEvent,
		X:    430, Y: 99,
	}
	assert.NoError(t, g.AddNode(end))
	_, err = g.Connect(c.Allocator().GenerateName("Flow"), "Activity_1", end.Id)
	assert.NoError(t, err)

	out, err := c.Encode(g)
	assert.NoError(t, err)

	assert.Contains(t, out, `name="Review order"`)
	assert.Contains(t, out, `camunda:assignee="kermit"`, "edits elsewhere do not disturb preserved content")
	assert.Contains(t, out, "<bpmn:endEvent")

	g2, err := Decode(out)
	assert.NoError(t, err)
	assert.Len(t, g2.Nodes(), 3)
	assert.Len(t, g2.Edges(), 2)
	_, ok := g2.Node(end.Id)
	assert.True(t, ok)
}

func TestRoundTripFreeStandingNodes(t *testing.T) {
	g := NewGraph()
	assert.NoError(t, g.AddNode(&FlowNode{Id: "Pool_A", Kind: KindParticipant, Name: "A", X: 160, Y: 80, Width: 600, Height: 250}))
	assert.NoError(t, g.AddNode(&FlowNode{Id: "Task_A", Kind: KindTask, Participant: "Pool_A", X: 140, Y: 100}))
	assert.NoError(t, g.AddNode(&FlowNode{Id: "Free_1", Kind: KindTask, Name: "outside", X: 900, Y: 100}))
	assert.NoError(t, g.AddNode(&FlowNode{Id: "Free_2", Kind: KindEndEvent, X: 1100, Y: 120}))
	mf, err := g.Connect("MF_1", "Task_A", "Free_1")
	assert.NoError(t, err)
	assert.True(t, mf.Message, "a pool-less endpoint is its own side")
	seq, err := g.Connect("Flow_1", "Free_1", "Free_2")
	assert.NoError(t, err)
	assert.False(t, seq.Message)

	out, err := Encode(g)
	assert.NoError(t, err)

	doc := etree.NewDocument()
	assert.NoError(t, doc.ReadFromString(out))
	root := doc.Root()

	procs := root.SelectElements("bpmn:process")
	assert.Len(t, procs, 2, "pool-less nodes get a process of their own")
	implicit := procs[1]
	assert.NotNil(t, implicit.SelectElement("bpmn:task"),
		"free nodes keep a semantic element, not just a shape")
	assert.NotNil(t, implicit.SelectElement("bpmn:endEvent"))
	assert.Len(t, implicit.SelectElements("bpmn:sequenceFlow"), 1)
	collab := root.SelectElement("bpmn:collaboration")
	assert.Len(t, collab.SelectElements("bpmn:messageFlow"), 1)

	g2, err := Decode(out)
	assert.NoError(t, err)
	assert.Empty(t, g2.Warnings())
	assert.Len(t, g2.Nodes(), len(g.Nodes()))
	assert.Len(t, g2.Edges(), len(g.Edges()))

	free, ok := g2.Node("Free_1")
	assert.True(t, ok)
	assert.Empty(t, free.Participant)
	assert.Equal(t, 900.0, free.X, "free nodes stay document-absolute")
	mf2, ok := g2.Edge("MF_1")
	assert.True(t, ok)
	assert.True(t, mf2.Message)
}

func TestRoundTripDocumentation(t *testing.T) {
	doc := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="P">
    <bpmn:task id="T">
      <bpmn:documentation>first note</bpmn:documentation>
      <bpmn:documentation>second note</bpmn:documentation>
    </bpmn:task>
  </bpmn:process>
</bpmn:definitions>`

	g, err := Decode(doc)
	assert.NoError(t, err)
	n, _ := g.Node("T")
	assert.Equal(t, "first note", n.Documentation)
	assert.Equal(t, []string{"second note"}, n.Extras.Docs)

	out, err := Encode(g)
	assert.NoError(t, err)
	assert.Contains(t, out, "<bpmn:documentation>first note</bpmn:documentation>")
	assert.Contains(t, out, "<bpmn:documentation>second note</bpmn:documentation>")
}
