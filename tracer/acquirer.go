// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "sync/atomic"

// acquirer is one collector endpoint subscribed to receive span batches. The
// closed flag is a permanent tombstone: once the collector has collected,
// new scopes stop fanning out to it.
type acquirer struct {
	ch     *spanChannel
	closed *atomic.Bool
}

func (a acquirer) submit(spans []Span) {
	a.ch.send(spans)
}

func (a acquirer) shutdown() bool {
	return a.closed.Load()
}

// acquirerGroup multiplexes one span stream to every interested acquirer and
// carries the task span bridging this stream into the owning trace(s). The
// group is shared between the Scope that introduced it and the span line
// slots it is registered into; the last release finishes and emits the task
// span, which is how a scope's lifetime becomes visible in the trace.
type acquirerGroup struct {
	taskSpan  externalSpan
	acquirers []acquirer
	refs      atomic.Int32
}

// newAcquirerGroup pairs a task span with a non-empty set of acquirers. The
// caller holds the initial reference.
func newAcquirerGroup(taskSpan externalSpan, acquirers []acquirer) *acquirerGroup {
	if len(acquirers) == 0 {
		panic("tracer: acquirer group constructed without acquirers")
	}
	g := &acquirerGroup{taskSpan: taskSpan, acquirers: acquirers}
	g.refs.Store(1)
	return g
}

func (g *acquirerGroup) retain() {
	g.refs.Add(1)
}

// release drops one reference. Dropping the last one completes the task span
// at the current cycle and submits it to every acquirer.
func (g *acquirerGroup) release() {
	if g.refs.Add(-1) != 0 {
		return
	}
	g.submitTaskSpan(g.taskSpan.toSpan(nowCycle()))
}

// submit re-parents the batch roots onto the task span and fans the batch
// out. The original slice goes to the first acquirer; only the remaining
// n-1 sends pay for a copy.
func (g *acquirerGroup) submit(spans []Span) {
	for i := range spans {
		if spans[i].isRoot() {
			spans[i].ParentID = g.taskSpan.id
		}
	}
	for _, acq := range g.acquirers[1:] {
		cloned := make([]Span, len(spans))
		copy(cloned, spans)
		acq.submit(cloned)
	}
	g.acquirers[0].submit(spans)
}

func (g *acquirerGroup) submitTaskSpan(s Span) {
	for _, acq := range g.acquirers {
		acq.submit([]Span{s})
	}
}

// liveAcquirers appends the group's non-tombstoned acquirers to dst.
func (g *acquirerGroup) liveAcquirers(dst []acquirer) []acquirer {
	for _, acq := range g.acquirers {
		if !acq.shutdown() {
			dst = append(dst, acq)
		}
	}
	return dst
}
