// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"github.com/DataDog/batchtrace-go/internal/log"
	"github.com/DataDog/batchtrace-go/internal/queue"
)

// spawnPlaceholderEvent names the zero-duration bridge span pushed when a
// scope is spawned off the current goroutine.
const spawnPlaceholderEvent = "<spawn>"

// spanHandle refers to a started span by its stable queue index.
type spanHandle struct {
	index int
}

// spanQueue records the begin and end of nested spans on a single goroutine.
// The cursor tracks the currently open span so that the parent of the next
// started span is inferred from lexical nesting alone.
type spanQueue struct {
	q      *queue.FixedIndexQueue[Span]
	cursor SpanID // parent id for the next started span; 0 at top level
}

func newSpanQueue() *spanQueue {
	return &spanQueue{q: queue.New[Span]()}
}

func (sq *spanQueue) startSpan(event string) spanHandle {
	s := beginSpan(newSpanID(), sq.cursor, nowCycle(), event)
	sq.cursor = s.ID
	return spanHandle{index: sq.q.PushBack(s)}
}

func (sq *spanQueue) finishSpan(h spanHandle) {
	if !sq.q.Valid(h.index) {
		// the handle outlived its segment; the listeners that owned it
		// are gone and there is nothing left to record into
		log.Debug("tracer: finish of an evicted span handle (index %d)", h.index)
		return
	}
	descendantCount := sq.q.NextIndex() - h.index - 1
	s := sq.q.At(h.index)
	s.endWith(nowCycle(), descendantCount)
	sq.cursor = s.ParentID
}

func (sq *spanQueue) addProperty(h spanHandle, key, value string) {
	if !sq.q.Valid(h.index) {
		log.Debug("tracer: property added to an evicted span handle (index %d)", h.index)
		return
	}
	s := sq.q.At(h.index)
	s.Properties = append(s.Properties, Property{Key: key, Value: value})
}

func (sq *spanQueue) addProperties(h spanHandle, props []Property) {
	if !sq.q.Valid(h.index) {
		log.Debug("tracer: properties added to an evicted span handle (index %d)", h.index)
		return
	}
	s := sq.q.At(h.index)
	s.Properties = append(s.Properties, props...)
}

// startExternalSpan pushes a zero-duration spawn-bridge span under the
// current cursor and returns an external span parented to the bridge. The
// bridge lets a parent trace reference work recorded on another goroutine
// before that work has finished; collection collapses the indirection.
func (sq *spanQueue) startExternalSpan(event string) externalSpan {
	now := nowCycle()
	bridge := beginSpan(newSpanID(), sq.cursor, now, spawnPlaceholderEvent)
	bridge.EndCycle = now
	bridge.spawnBridge = true
	sq.q.PushBack(bridge)

	return externalSpan{
		id:         newSpanID(),
		parentID:   bridge.ID,
		beginCycle: now,
		event:      event,
	}
}

// newRootExternalSpan creates an external span with no parent. No bridge is
// pushed; a root scope does not belong to any existing trace.
func newRootExternalSpan(event string) externalSpan {
	return externalSpan{
		id:         newSpanID(),
		beginCycle: nowCycle(),
		event:      event,
	}
}

func (sq *spanQueue) nextIndex() int {
	return sq.q.NextIndex()
}

func (sq *spanQueue) removeBefore(i int) {
	sq.q.RemoveBefore(i)
}

// from returns the recorded spans with queue indices at or after i. The
// result aliases the queue.
func (sq *spanQueue) from(i int) []Span {
	return sq.q.From(i)
}

// reset drops every recorded span and returns the cursor to top level.
func (sq *spanQueue) reset() {
	sq.q.Reset()
	sq.cursor = 0
}
