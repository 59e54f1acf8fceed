// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package tracer records nested timed events (spans) with sub-microsecond
// overhead and forwards completed traces, in batches, to one or more
// collectors.
//
// A trace begins with a root scope:
//
//	scope, collector := tracer.RootScope("request")
//	g := scope.StartScope()
//	// ... traced work, see StartSpan ...
//	g.Finish()
//	scope.Release()
//	spans := collector.Collect()
//
// While a scope is attached to a goroutine, StartSpan records spans whose
// parent/child structure is inferred from nesting alone. When no scope is
// attached, StartSpan returns an inert guard without allocating: untraced
// code pays almost nothing.
//
// Work handed to another goroutine keeps reporting to the same collectors
// through SpawnScope, which snapshots the current goroutine's interest set
// into a new Scope that the other goroutine starts on arrival.
package tracer

import "sync/atomic"

// RootScope builds a fresh trace: a Scope to attach wherever the traced work
// runs, and the Collector that will receive every span of the trace. event
// names the root task span covering the scope's whole lifetime.
func RootScope(event string) (*Scope, *Collector) {
	ch := &spanChannel{}
	closed := &atomic.Bool{}
	scope := newRootScope(event, ch, closed)
	return scope, &Collector{ch: ch, closed: closed}
}

// SpawnScope snapshots the calling goroutine's current interest set into a
// new Scope, so that work moved to another goroutine continues to be
// reported to the same collectors as the originating trace. If nothing is
// being traced right now the returned Scope is inert.
func SpawnScope(event string) *Scope {
	return newSpawnScope(event)
}

// StartSpan starts a nested span on the calling goroutine. The returned
// guard must be finished on the same goroutine; use defer.
func StartSpan(event string) SpanGuard {
	return startSpan(event)
}
