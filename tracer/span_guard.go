// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// SpanGuard is the token for one open span on the calling goroutine. It is
// a plain value so that the untraced path allocates nothing; keep it on the
// stack and finish it on the goroutine that started it:
//
//	g := tracer.StartSpan("load-index")
//	defer g.Finish()
//
// A guard obtained while no scope was active is inert and all its methods
// are no-ops.
type SpanGuard struct {
	line   *spanLine
	handle spanHandle
	active bool
}

func startSpan(event string) SpanGuard {
	sl := currentSpanLine()
	if sl == nil {
		return SpanGuard{}
	}
	h, ok := sl.startSpan(event)
	if !ok {
		return SpanGuard{}
	}
	return SpanGuard{line: sl, handle: h, active: true}
}

// WithProperty attaches a key/value annotation to the open span and returns
// the guard for chaining.
func (g SpanGuard) WithProperty(key, value string) SpanGuard {
	if g.active {
		g.line.addProperty(g.handle, key, value)
	}
	return g
}

// WithProperties attaches several annotations at once, preserving order.
func (g SpanGuard) WithProperties(props ...Property) SpanGuard {
	if g.active {
		g.line.addProperties(g.handle, props)
	}
	return g
}

// Finish closes the span at the current cycle. Finishing twice, or finishing
// an inert guard, is a no-op.
func (g *SpanGuard) Finish() {
	if !g.active {
		return
	}
	g.active = false
	g.line.finishSpan(g.handle)
}
