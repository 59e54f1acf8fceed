// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "sync/atomic"

// SpanID identifies a span within the process. 0 is reserved to mean
// "no parent": a span with ParentID 0 is a root.
type SpanID uint64

// firstSpanID is where the process-wide counter starts. Nonzero so that the
// reserved id is never handed out.
const firstSpanID = 100

var nextSpanID atomic.Uint64

func init() {
	nextSpanID.Store(firstSpanID)
}

// newSpanID returns a fresh process-unique span id.
func newSpanID() SpanID {
	return SpanID(nextSpanID.Add(1) - 1)
}

// SetIDPrefix rebases the span id counter so that ids produced from now on
// carry prefix in their upper 32 bits. Useful to keep ids from several
// processes distinguishable in one trace store. Ids allocated before the
// rebase are not rewritten.
func SetIDPrefix(prefix uint32) {
	nextSpanID.Store(uint64(prefix)<<32 | 1)
}
