// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowCycleIsMonotonicAndNonzero(t *testing.T) {
	assert := assert.New(t)

	prev := nowCycle()
	assert.NotZero(prev)
	for i := 0; i < 1000; i++ {
		c := nowCycle()
		assert.GreaterOrEqual(c, prev)
		prev = c
	}
}

func TestCycleToRealtimeIsMonotone(t *testing.T) {
	assert := assert.New(t)

	c1 := nowCycle()
	time.Sleep(time.Millisecond)
	c2 := nowCycle()

	r1 := CycleToRealtime(c1)
	r2 := CycleToRealtime(c2)
	assert.Less(r1, r2)

	// the affine map preserves deltas at nanosecond resolution
	assert.Equal(uint64(c2-c1), uint64(r2-r1))
}

func TestCycleToRealtimeTracksWallClock(t *testing.T) {
	assert := assert.New(t)

	now := uint64(time.Now().UnixNano())
	got := uint64(CycleToRealtime(nowCycle()))
	diff := int64(got) - int64(now)
	if diff < 0 {
		diff = -diff
	}
	assert.Less(diff, int64(time.Second), "conversion should land within a second of the wall clock")
}

func TestCycleBeforeAnchorMapsBackwards(t *testing.T) {
	assert := assert.New(t)

	// cycle 1 is the very first instant of the cycle epoch, which predates
	// the anchor sample; the conversion must subtract, not wrap
	early := CycleToRealtime(1)
	late := CycleToRealtime(nowCycle())
	assert.NotZero(late)
	assert.LessOrEqual(early, late)
}

func TestMulDiv(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0), mulDiv(0, 1e9, 1e9))
	assert.Equal(uint64(42), mulDiv(42, 1e9, 1e9))
	// a*b overflows 64 bits; the 128-bit intermediate must not
	big := uint64(1) << 40
	assert.Equal(big, mulDiv(big, 1e9, 1e9))
	assert.Equal(uint64(500), mulDiv(1, 1e9, 2e6))
}
