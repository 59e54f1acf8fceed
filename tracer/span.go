// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// Property is a key/value annotation attached to a span. Order of attachment
// is preserved.
type Property struct {
	Key   string
	Value string
}

// Span is a completed or in-progress timed interval as recorded on one
// goroutine. Collected batches expose this shape to external reporters,
// together with CycleToRealtime for timestamp conversion.
type Span struct {
	ID         SpanID
	ParentID   SpanID
	BeginCycle Cycle
	EndCycle   Cycle // 0 until finished
	Event      string
	Properties []Property

	// DescendantCount is the number of spans recorded between this span's
	// start and finish on the same goroutine. 0 until finished.
	DescendantCount int

	// spawnBridge marks the zero-duration placeholder linking a parent
	// trace to work recorded elsewhere. Bridges never survive collection.
	spawnBridge bool
}

func beginSpan(id, parentID SpanID, beginCycle Cycle, event string) Span {
	return Span{
		ID:         id,
		ParentID:   parentID,
		BeginCycle: beginCycle,
		Event:      event,
	}
}

func (s *Span) endWith(endCycle Cycle, descendantCount int) {
	s.EndCycle = endCycle
	s.DescendantCount = descendantCount
}

func (s *Span) finished() bool {
	return s.EndCycle != 0
}

func (s *Span) isRoot() bool {
	return s.ParentID == 0
}

// externalSpan is a span whose end is determined by releasing a cross-
// goroutine handle rather than by leaving a stack frame.
type externalSpan struct {
	id         SpanID
	parentID   SpanID
	beginCycle Cycle
	event      string
}

// toSpan completes the external span at endCycle. Non-mutating: completion
// may happen on a different goroutine than creation.
func (es externalSpan) toSpan(endCycle Cycle) Span {
	return Span{
		ID:         es.id,
		ParentID:   es.parentID,
		BeginCycle: es.beginCycle,
		EndCycle:   endCycle,
		Event:      es.event,
	}
}
