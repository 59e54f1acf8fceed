// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanQueueInfersParentFromNesting(t *testing.T) {
	assert := assert.New(t)

	sq := newSpanQueue()
	outer := sq.startSpan("outer")
	inner := sq.startSpan("inner")
	sq.finishSpan(inner)
	sq.finishSpan(outer)

	o := *sq.q.At(outer.index)
	i := *sq.q.At(inner.index)
	assert.Equal(SpanID(0), o.ParentID)
	assert.Equal(o.ID, i.ParentID)
	assert.True(o.finished())
	assert.True(i.finished())
	assert.GreaterOrEqual(o.EndCycle, o.BeginCycle)
	assert.GreaterOrEqual(i.BeginCycle, o.BeginCycle)
	assert.LessOrEqual(i.EndCycle, o.EndCycle)
}

func TestSpanQueueCursorRestoredAcrossSiblings(t *testing.T) {
	assert := assert.New(t)

	sq := newSpanQueue()
	a := sq.startSpan("a")
	sq.finishSpan(a)
	b := sq.startSpan("b")
	sq.finishSpan(b)

	sa := *sq.q.At(a.index)
	sb := *sq.q.At(b.index)
	assert.Equal(SpanID(0), sa.ParentID)
	assert.Equal(SpanID(0), sb.ParentID, "finishing a span must restore its parent as cursor")
	assert.NotEqual(sa.ID, sb.ID)
}

func TestSpanQueueDescendantCount(t *testing.T) {
	assert := assert.New(t)

	sq := newSpanQueue()
	root := sq.startSpan("root")
	for i := 0; i < 3; i++ {
		child := sq.startSpan("child")
		grand := sq.startSpan("grand")
		sq.finishSpan(grand)
		sq.finishSpan(child)
	}
	sq.finishSpan(root)

	r := *sq.q.At(root.index)
	assert.Equal(6, r.DescendantCount)
}

func TestSpanQueueProperties(t *testing.T) {
	assert := assert.New(t)

	sq := newSpanQueue()
	h := sq.startSpan("op")
	sq.addProperty(h, "k1", "v1")
	sq.addProperties(h, []Property{{"k2", "v2"}, {"k3", "v3"}})
	sq.addProperty(h, "k1", "v4") // duplicate keys allowed, order preserved
	sq.finishSpan(h)

	s := *sq.q.At(h.index)
	assert.Equal([]Property{{"k1", "v1"}, {"k2", "v2"}, {"k3", "v3"}, {"k1", "v4"}}, s.Properties)
}

func TestSpanQueueFinishEvictedHandle(t *testing.T) {
	assert := assert.New(t)

	sq := newSpanQueue()
	h := sq.startSpan("op")
	sq.removeBefore(sq.nextIndex())

	// must not panic; the evicted finish changes nothing (the cursor stays
	// where the start left it) and later spans still record
	sq.finishSpan(h)
	sq.addProperty(h, "k", "v")

	h2 := sq.startSpan("later")
	sq.finishSpan(h2)
	assert.True(sq.q.Valid(h2.index))
}

func TestStartExternalSpanPushesBridge(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sq := newSpanQueue()
	parent := sq.startSpan("parent")
	es := sq.startExternalSpan("task")

	require.Equal(2, sq.q.Len())
	bridge := *sq.q.At(parent.index + 1)
	p := *sq.q.At(parent.index)

	assert.True(bridge.spawnBridge)
	assert.Equal(spawnPlaceholderEvent, bridge.Event)
	assert.Equal(p.ID, bridge.ParentID)
	assert.Equal(bridge.BeginCycle, bridge.EndCycle, "bridges have zero duration")
	assert.Equal(bridge.ID, es.parentID)
	assert.Equal(bridge.BeginCycle, es.beginCycle)
	assert.NotEqual(bridge.ID, es.id)

	// the bridge does not shift the cursor
	child := sq.startSpan("child")
	sq.finishSpan(child)
	assert.Equal(p.ID, sq.q.At(child.index).ParentID)
	sq.finishSpan(parent)
}

func TestRootExternalSpan(t *testing.T) {
	assert := assert.New(t)

	es := newRootExternalSpan("root-task")
	assert.Equal(SpanID(0), es.parentID)
	assert.NotZero(es.id)
	assert.NotZero(es.beginCycle)

	s := es.toSpan(nowCycle())
	assert.Equal(es.id, s.ID)
	assert.True(s.isRoot())
	assert.True(s.finished())
	assert.GreaterOrEqual(s.EndCycle, s.BeginCycle)
	assert.Equal("root-task", s.Event)
}
