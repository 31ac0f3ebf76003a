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

import "fmt"

// MalformedDocumentError is the only fatal decode failure: the input is
// not well-formed XML or lacks a definitions root. It wraps the
// underlying parser diagnostic.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// UnresolvedReferenceError reports an edge whose source or target does
// not resolve to a decoded node. The edge is dropped; processing of the
// remaining document continues.
type UnresolvedReferenceError struct {
	Element string
	Ref     string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("element %s references missing node %s", e.Element, e.Ref)
}

// DuplicateIdentifierError reports a second occurrence of an id within
// one decode pass. The first occurrence wins; the duplicate is dropped.
type DuplicateIdentifierError struct {
	Id      string
	Section string // "element", "shape" or "edge"
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate %s identifier %s", e.Section, e.Id)
}

// CrossBoundaryFlowError reports a flow whose declared classification
// contradicts its endpoints' participant ownership: a sequence flow
// spanning two participants, or a message flow confined to one. During
// decode the flow is dropped; during interactive construction the
// connection is re-classified instead.
type CrossBoundaryFlowError struct {
	Flow   string
	Source string
	Target string
}

func (e *CrossBoundaryFlowError) Error() string {
	return fmt.Sprintf("flow %s between %s and %s crosses a participant boundary", e.Flow, e.Source, e.Target)
}
