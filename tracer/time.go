// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"math/bits"
	"sync"
	"time"
)

// Cycle is a reading of the process monotonic cycle counter. The zero value
// is reserved to mean "unfinished" and is never produced by nowCycle.
type Cycle uint64

// Realtime is a wall-clock timestamp in nanoseconds since the Unix epoch.
type Realtime uint64

// cycleEpoch is the monotonic reference that cycle readings count from. It is
// initialized on the first reading, before the wall-clock anchor exists, so
// spans recorded early still carry valid cycles.
var (
	cycleOnce  sync.Once
	cycleEpoch time.Time
)

// nowCycle returns the current cycle. Readings are monotonic and nonzero.
func nowCycle() Cycle {
	cycleOnce.Do(func() {
		cycleEpoch = time.Now()
	})
	return Cycle(time.Since(cycleEpoch)) + 1
}

// anchor is the one-shot calibration sample tying the cycle counter to the
// wall clock. Immutable after initialization.
type anchor struct {
	realtimeNS      uint64
	cycle           Cycle
	cyclesPerSecond uint64
}

var (
	anchorOnce sync.Once
	timeAnchor anchor
)

func getAnchor() anchor {
	anchorOnce.Do(func() {
		cycle := nowCycle()
		wall := time.Now().UnixNano()
		if wall <= 0 {
			panic("tracer: wall clock unavailable at anchor initialization")
		}
		timeAnchor = anchor{
			realtimeNS:      uint64(wall),
			cycle:           cycle,
			cyclesPerSecond: uint64(time.Second / time.Nanosecond),
		}
	})
	return timeAnchor
}

// CycleToRealtime converts a cycle reading to a wall-clock timestamp using
// the process anchor. Cycles recorded before the anchor was sampled map
// backwards from it; a conversion that would land before the epoch saturates
// to 0 instead of wrapping.
func CycleToRealtime(cycle Cycle) Realtime {
	a := getAnchor()
	if cycle >= a.cycle {
		return Realtime(a.realtimeNS + mulDiv(uint64(cycle-a.cycle), 1e9, a.cyclesPerSecond))
	}
	backward := mulDiv(uint64(a.cycle-cycle), 1e9, a.cyclesPerSecond)
	if backward > a.realtimeNS {
		return 0
	}
	return Realtime(a.realtimeNS - backward)
}

// mulDiv computes a*b/c with a 128-bit intermediate so that large cycle
// deltas cannot overflow.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}
