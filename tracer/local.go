// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync"

	"github.com/petermattis/goid"
)

// Span lines are goroutine-affine: each goroutine that has at least one
// registered listener owns exactly one spanLine, found through a sharded map
// keyed by goroutine id. Goroutines without an entry are not being traced and
// take the miss path: one shard read, no allocation, no clock access.
//
// Entries are inserted when the first scope attaches and removed as soon as
// the goroutine's registry empties, so idle goroutines cost nothing and a
// finished goroutine leaves nothing behind.

const spanLineShards = 128

type spanLineShard struct {
	mu    sync.RWMutex
	lines map[int64]*spanLine
}

var spanLines [spanLineShards]spanLineShard

func lineShard(gid int64) *spanLineShard {
	return &spanLines[uint64(gid)%spanLineShards]
}

// currentSpanLine returns the calling goroutine's span line, or nil if the
// goroutine is not being traced.
func currentSpanLine() *spanLine {
	gid := goid.Get()
	shard := lineShard(gid)
	shard.mu.RLock()
	sl := shard.lines[gid]
	shard.mu.RUnlock()
	return sl
}

// attachSpanLine returns the calling goroutine's span line, creating it if
// the goroutine was not being traced yet.
func attachSpanLine() *spanLine {
	gid := goid.Get()
	shard := lineShard(gid)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if sl, ok := shard.lines[gid]; ok {
		return sl
	}
	if shard.lines == nil {
		shard.lines = make(map[int64]*spanLine)
	}
	sl := newSpanLine()
	shard.lines[gid] = sl
	return sl
}

// detachSpanLine removes the calling goroutine's span line once its registry
// has emptied. A later attach starts from a fresh line.
func detachSpanLine(sl *spanLine) {
	gid := goid.Get()
	shard := lineShard(gid)
	shard.mu.Lock()
	if shard.lines[gid] == sl {
		delete(shard.lines, gid)
	}
	shard.mu.Unlock()
}
