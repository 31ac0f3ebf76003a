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

// Kind identifies the variant of a FlowNode. The set is closed: the
// decoder and encoder both switch exhaustively over it, so adding a
// variant is a compile-visible change in every dispatch site.
type Kind int32

const (
	KindUnknown Kind = iota
	KindStartEvent
	KindEndEvent
	KindIntermediateEvent
	KindBoundaryEvent
	// KindTask covers every task flavour (plain, service, user, script,
	// business rule, send, receive, manual). The original element tag is
	// kept in Extras so a round trip re-expands to the exact source tag.
	KindTask
	KindSubProcess
	KindCallActivity
	KindExclusiveGateway
	KindInclusiveGateway
	KindParallelGateway
	KindEventBasedGateway
	KindComplexGateway
	KindDataObject
	KindDataStore
	KindGroup
	KindTextAnnotation
	KindParticipant
	KindLane
)

// kindByTag maps the local element tag (prefix stripped) to the internal
// variant. Decoding matches on the local tag so bpmn:, bpmn2: and
// un-prefixed dialects all resolve to the same variant.
var kindByTag = map[string]Kind{
	"startEvent":             KindStartEvent,
	"endEvent":               KindEndEvent,
	"intermediateCatchEvent": KindIntermediateEvent,
	"intermediateThrowEvent": KindIntermediateEvent,
	"boundaryEvent":          KindBoundaryEvent,
	"task":                   KindTask,
	"serviceTask":            KindTask,
	"userTask":               KindTask,
	"scriptTask":             KindTask,
	"businessRuleTask":       KindTask,
	"sendTask":               KindTask,
	"receiveTask":            KindTask,
	"manualTask":             KindTask,
	"subProcess":             KindSubProcess,
	"callActivity":           KindCallActivity,
	"exclusiveGateway":       KindExclusiveGateway,
	"inclusiveGateway":       KindInclusiveGateway,
	"parallelGateway":        KindParallelGateway,
	"eventBasedGateway":      KindEventBasedGateway,
	"complexGateway":         KindComplexGateway,
	"dataObject":             KindDataObject,
	"dataObjectReference":    KindDataObject,
	"dataStore":              KindDataStore,
	"dataStoreReference":     KindDataStore,
	"group":                  KindGroup,
	"textAnnotation":         KindTextAnnotation,
}

// DefaultTag returns the element tag emitted for a variant when no
// original tag was preserved.
func (k Kind) DefaultTag() string {
	switch k {
	case KindStartEvent:
		return "bpmn:startEvent"
	case KindEndEvent:
		return "bpmn:endEvent"
	case KindIntermediateEvent:
		return "bpmn:intermediateCatchEvent"
	case KindBoundaryEvent:
		return "bpmn:boundaryEvent"
	case KindTask:
		return "bpmn:task"
	case KindSubProcess:
		return "bpmn:subProcess"
	case KindCallActivity:
		return "bpmn:callActivity"
	case KindExclusiveGateway:
		return "bpmn:exclusiveGateway"
	case KindInclusiveGateway:
		return "bpmn:inclusiveGateway"
	case KindParallelGateway:
		return "bpmn:parallelGateway"
	case KindEventBasedGateway:
		return "bpmn:eventBasedGateway"
	case KindComplexGateway:
		return "bpmn:complexGateway"
	case KindDataObject:
		return "bpmn:dataObjectReference"
	case KindDataStore:
		return "bpmn:dataStoreReference"
	case KindGroup:
		return "bpmn:group"
	case KindTextAnnotation:
		return "bpmn:textAnnotation"
	case KindParticipant:
		return "bpmn:participant"
	case KindLane:
		return "bpmn:lane"
	case KindUnknown:
		return "bpmn:task"
	}
	return "bpmn:task"
}

// CanonicalName returns the type name used as the id prefix for freshly
// created elements of this variant, e.g. KindExclusiveGateway maps to
// "ExclusiveGateway". Unknown variants fall back to "Element".
func (k Kind) CanonicalName() string {
	switch k {
	case KindStartEvent:
		return "StartEvent"
	case KindEndEvent:
		return "EndEvent"
	case KindIntermediateEvent:
		return "IntermediateEvent"
	case KindBoundaryEvent:
		return "BoundaryEvent"
	case KindTask:
		return "Task"
	case KindSubProcess:
		return "SubProcess"
	case KindCallActivity:
		return "CallActivity"
	case KindExclusiveGateway:
		return "ExclusiveGateway"
	case KindInclusiveGateway:
		return "InclusiveGateway"
	case KindParallelGateway:
		return "ParallelGateway"
	case KindEventBasedGateway:
		return "EventBasedGateway"
	case KindComplexGateway:
		return "ComplexGateway"
	case KindDataObject:
		return "DataObject"
	case KindDataStore:
		return "DataStore"
	case KindGroup:
		return "Group"
	case KindTextAnnotation:
		return "TextAnnotation"
	case KindParticipant:
		return "Participant"
	case KindLane:
		return "Lane"
	case KindUnknown:
		return "Element"
	}
	return "Element"
}

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindStartEvent:        "startEvent",
	KindEndEvent:          "endEvent",
	KindIntermediateEvent: "intermediateEvent",
	KindBoundaryEvent:     "boundaryEvent",
	KindTask:              "task",
	KindSubProcess:        "subProcess",
	KindCallActivity:      "callActivity",
	KindExclusiveGateway:  "exclusiveGateway",
	KindInclusiveGateway:  "inclusiveGateway",
	KindParallelGateway:   "parallelGateway",
	KindEventBasedGateway: "eventBasedGateway",
	KindComplexGateway:    "complexGateway",
	KindDataObject:        "dataObject",
	KindDataStore:         "dataStore",
	KindGroup:             "group",
	KindTextAnnotation:    "textAnnotation",
	KindParticipant:       "participant",
	KindLane:              "lane",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf resolves a variant name produced by Kind.String. Unrecognized
// names yield KindUnknown.
func KindOf(name string) Kind {
	return kindsByName[name]
}

// IsGateway reports whether the variant is one of the gateway kinds.
func (k Kind) IsGateway() bool {
	switch k {
	case KindExclusiveGateway, KindInclusiveGateway, KindParallelGateway,
		KindEventBasedGateway, KindComplexGateway:
		return true
	default:
		return false
	}
}

// IsEvent reports whether the variant is one of the event kinds.
func (k Kind) IsEvent() bool {
	switch k {
	case KindStartEvent, KindEndEvent, KindIntermediateEvent, KindBoundaryEvent:
		return true
	default:
		return false
	}
}

// IsActivity reports whether the variant renders as a rounded activity box.
func (k Kind) IsActivity() bool {
	switch k {
	case KindTask, KindSubProcess, KindCallActivity:
		return true
	default:
		return false
	}
}

// connectable reports whether sequence flows may attach to the variant.
func (k Kind) connectable() bool {
	switch k {
	case KindParticipant, KindLane, KindUnknown:
		return false
	default:
		return true
	}
}
