// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync/atomic"
	"time"

	"github.com/DataDog/batchtrace-go/internal/log"
)

// Collector is the single consumer end of a root scope: it drains the span
// batches submitted by every segment of the trace and normalizes them.
type Collector struct {
	ch        *spanChannel
	closed    *atomic.Bool
	collected atomic.Bool
}

type collectConfig struct {
	durationThreshold time.Duration
	hasThreshold      bool
}

// CollectOption configures a call to Collect.
type CollectOption func(*collectConfig)

// WithDurationThreshold makes Collect return only the root span when the
// root's wall-clock duration stayed below d. Short traces keep their
// existence visible without paying for full materialization.
func WithDurationThreshold(d time.Duration) CollectOption {
	return func(cfg *collectConfig) {
		cfg.durationThreshold = d
		cfg.hasThreshold = true
	}
}

// Collect drains every batch submitted so far, closes the collector to
// future scope fan-out and returns the reconciled span set. Collect consumes
// the collector: a second call returns nil. Batches submitted concurrently
// with or after Collect are dropped.
func (c *Collector) Collect(opts ...CollectOption) []Span {
	if c.collected.Swap(true) {
		log.Warn("tracer: Collect called more than once on the same Collector")
		return nil
	}
	var cfg collectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	batches := c.ch.drain()
	c.closed.Store(true)

	var spans []Span
	for _, b := range batches {
		spans = append(spans, b...)
	}

	if cfg.hasThreshold {
		if root, ok := findRoot(spans); ok && spanDuration(root) < cfg.durationThreshold {
			return []Span{root}
		}
	}
	return reconcileSpawnBridges(spans)
}

func findRoot(spans []Span) (Span, bool) {
	for _, s := range spans {
		if s.isRoot() {
			return s, true
		}
	}
	return Span{}, false
}

func spanDuration(s Span) time.Duration {
	begin := CycleToRealtime(s.BeginCycle)
	end := CycleToRealtime(s.EndCycle)
	if end < begin {
		return 0
	}
	return time.Duration(end - begin)
}

// reconcileSpawnBridges collapses the two-hop indirection connecting a parent
// on one goroutine to spans recorded on another: children of a bridge are
// re-parented onto the bridge's own parent and the bridges themselves are
// dropped. Running it on already-reconciled input is a no-op.
func reconcileSpawnBridges(spans []Span) []Span {
	var bridges map[SpanID]SpanID
	for _, s := range spans {
		if s.spawnBridge {
			if bridges == nil {
				bridges = make(map[SpanID]SpanID)
			}
			bridges[s.ID] = s.ParentID
		}
	}
	if bridges == nil {
		return spans
	}
	out := make([]Span, 0, len(spans)-len(bridges))
	for _, s := range spans {
		if s.spawnBridge {
			continue
		}
		if parent, ok := bridges[s.ParentID]; ok {
			s.ParentID = parent
		}
		out = append(out, s)
	}
	return out
}
