// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync/atomic"

	"github.com/DataDog/batchtrace-go/internal/log"
	"github.com/petermattis/goid"
)

// Scope is a transport-safe handle representing the interest of one or more
// collectors in the spans of whatever goroutine it gets attached to. A Scope
// built on one goroutine may be handed to another and started there; that is
// how a trace follows work across goroutines.
type Scope struct {
	group    *acquirerGroup
	released atomic.Bool
}

func newRootScope(event string, ch *spanChannel, closed *atomic.Bool) *Scope {
	g := newAcquirerGroup(newRootExternalSpan(event), []acquirer{{ch: ch, closed: closed}})
	return &Scope{group: g}
}

func newSpawnScope(event string) *Scope {
	sl := currentSpanLine()
	if sl == nil {
		return &Scope{}
	}
	return &Scope{group: sl.registeredAcquirerGroup(event)}
}

// StartScope attaches the scope to the calling goroutine and returns the
// guard that detaches it. Spans started on this goroutine are reported to
// the scope's collectors until the guard finishes. An inert scope (built
// while nothing was being traced, or already released) returns an inert
// guard.
func (s *Scope) StartScope() *ScopeGuard {
	if s == nil || s.group == nil || s.released.Load() {
		return &ScopeGuard{}
	}
	sl := attachSpanLine()
	s.group.retain()
	return &ScopeGuard{
		line:     sl,
		listener: sl.registerNow(s.group),
		gid:      goid.Get(),
		attached: true,
	}
}

// Release drops the scope's reference to its collectors. Once every guard
// started from the scope has finished and Release has been called, the
// scope's task span is completed and submitted, marking the end of this
// segment in the trace. Release is idempotent.
func (s *Scope) Release() {
	if s == nil || s.group == nil {
		return
	}
	if !s.released.Swap(true) {
		s.group.release()
	}
}

// ScopeGuard represents one active attachment of a Scope to a goroutine. It
// must be finished on the goroutine that started it, exactly once; the usual
// form is
//
//	g := scope.StartScope()
//	defer g.Finish()
type ScopeGuard struct {
	line     *spanLine
	listener listener
	gid      int64
	attached bool
}

// Finish detaches the scope from the goroutine, collects the span segment
// recorded while it was attached and submits it to the scope's collectors.
// Finishing an inert or already-finished guard is a no-op.
func (g *ScopeGuard) Finish() {
	if g == nil || !g.attached {
		return
	}
	g.attached = false
	if cur := goid.Get(); cur != g.gid {
		log.Error("tracer: scope guard finished on goroutine %d, started on %d; dropping segment", cur, g.gid)
		return
	}
	acg, spans := g.line.unregisterAndCollect(g.listener)
	if g.line.registry.empty() {
		detachSpanLine(g.line)
	}
	if len(spans) > 0 {
		acg.submit(spans)
	}
	acg.release()
}
