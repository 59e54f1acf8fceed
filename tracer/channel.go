// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "sync"

// spanChannel is an unbounded multi-producer, single-consumer channel of span
// batches. Producers never block; the consumer drains whatever has been sent
// so far. Tracing must not perturb the traced application, so there is no
// back-pressure and no send error.
type spanChannel struct {
	mu      sync.Mutex
	batches [][]Span
}

func (c *spanChannel) send(batch []Span) {
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
}

// drain removes and returns every batch sent before the call. Batches sent
// concurrently with drain may be left behind for a later drain, or dropped on
// the floor if no drain follows.
func (c *spanChannel) drain() [][]Span {
	c.mu.Lock()
	batches := c.batches
	c.batches = nil
	c.mu.Unlock()
	return batches
}
