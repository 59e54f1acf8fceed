// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// spanLine couples one goroutine's span queue with the registry of listeners
// interested in it. It is the single mutation point for that goroutine: all
// access happens from the owning goroutine, so no operation takes a lock.
type spanLine struct {
	queue    *spanQueue
	registry registry
	groups   groupSlab
}

func newSpanLine() *spanLine {
	return &spanLine{queue: newSpanQueue()}
}

// startSpan starts a span, or reports false when no listener is attached.
// The empty-registry check comes before any clock read or allocation; this
// is the hot path when tracing is off.
func (sl *spanLine) startSpan(event string) (spanHandle, bool) {
	if sl.registry.empty() {
		return spanHandle{}, false
	}
	return sl.queue.startSpan(event), true
}

func (sl *spanLine) finishSpan(h spanHandle) {
	sl.queue.finishSpan(h)
}

func (sl *spanLine) addProperty(h spanHandle, key, value string) {
	sl.queue.addProperty(h, key, value)
}

func (sl *spanLine) addProperties(h spanHandle, props []Property) {
	sl.queue.addProperties(h, props)
}

// registerNow attaches g to this span line. The listener owns every span
// recorded from the current queue position on.
func (sl *spanLine) registerNow(g *acquirerGroup) listener {
	slot := sl.groups.insert(g)
	l := listener{queueIndex: sl.queue.nextIndex(), slot: slot}
	sl.registry.register(l)
	return l
}

// unregisterAndCollect detaches the listener and returns its acquirer group
// together with the finished spans of its queue window, filtered and
// re-rooted for submission. The queue is garbage collected down to the
// earliest remaining listener, or truncated entirely when none remains.
func (sl *spanLine) unregisterAndCollect(l listener) (*acquirerGroup, []Span) {
	spans := collectFinished(sl.queue.from(l.queueIndex))
	g := sl.groups.remove(l.slot)
	sl.registry.unregister(l)
	sl.gc()
	return g, spans
}

// registeredAcquirerGroup snapshots the goroutine's current interest set: a
// new group whose acquirers are the union of every live acquirer registered
// here and whose task span hangs off a freshly pushed spawn bridge. Returns
// nil when nobody is listening, which makes the resulting scope inert.
func (sl *spanLine) registeredAcquirerGroup(event string) *acquirerGroup {
	if sl.registry.empty() {
		return nil
	}
	var acquirers []acquirer
	for _, g := range sl.groups.slots {
		if g != nil {
			acquirers = g.liveAcquirers(acquirers)
		}
	}
	if len(acquirers) == 0 {
		// every collector is gone already; don't leave an orphan bridge
		return nil
	}
	es := sl.queue.startExternalSpan(event)
	return newAcquirerGroup(es, acquirers)
}

func (sl *spanLine) gc() {
	if l, ok := sl.registry.earliest(); ok {
		sl.queue.removeBefore(l.queueIndex)
		return
	}
	sl.queue.reset()
}

// collectFinished walks a queue window in order and keeps the spans that may
// travel: unfinished spans (the still-open outer frames) are skipped, every
// finished span is emitted re-rooted (parent 0, to be re-parented onto the
// collecting group's task span) followed by exactly its recorded subtree.
func collectFinished(window []Span) []Span {
	var out []Span
	for i := 0; i < len(window); i++ {
		s := window[i]
		if !s.finished() {
			continue
		}
		s.ParentID = 0
		out = append(out, s)
		n := s.DescendantCount
		for j := 1; j <= n && i+j < len(window); j++ {
			out = append(out, window[i+j])
		}
		i += n
	}
	return out
}

// groupSlab stores the acquirer groups attached to a span line. Slots are
// reused so listener slots stay small and stable.
type groupSlab struct {
	slots []*acquirerGroup
	free  []int
}

func (s *groupSlab) insert(g *acquirerGroup) int {
	if n := len(s.free); n > 0 {
		slot := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[slot] = g
		return slot
	}
	s.slots = append(s.slots, g)
	return len(s.slots) - 1
}

func (s *groupSlab) remove(slot int) *acquirerGroup {
	g := s.slots[slot]
	s.slots[slot] = nil
	s.free = append(s.free, slot)
	return g
}
