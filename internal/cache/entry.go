// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// Entry is the on-disk form of a cached value. The TTL travels with the entry
// so files written under a different TTL setting stay self-describing.
type Entry struct {
	// Timestamp is the creation time in seconds since the epoch.
	Timestamp uint64 `json:"timestamp"`
	// TTLSeconds is the validity window measured from Timestamp.
	TTLSeconds uint64 `json:"ttl_seconds"`
	// Data is the cached JSON document, kept raw so that nesting and object
	// key order survive a round trip.
	Data json.RawMessage `json:"data"`
}

// IsValid reports whether the entry is still inside its validity window.
func (e *Entry) IsValid(now time.Time) bool {
	return epoch(now) < e.expiresAt()
}

// AgeSeconds is the time since the entry was written, clamped at zero for
// timestamps in the future.
func (e *Entry) AgeSeconds(now time.Time) uint64 {
	n := epoch(now)
	if n <= e.Timestamp {
		return 0
	}
	return n - e.Timestamp
}

// RemainingTTL is the time left before the entry expires, clamped at zero.
func (e *Entry) RemainingTTL(now time.Time) uint64 {
	n := epoch(now)
	exp := e.expiresAt()
	if exp <= n {
		return 0
	}
	return exp - n
}

// ItemCount is the length of Data when it is an array, else the length of a
// nested "nodes" array, else 1.
func (e *Entry) ItemCount() int {
	data := gjson.ParseBytes(e.Data)
	if data.IsArray() {
		return len(data.Array())
	}
	if nodes := data.Get("nodes"); nodes.IsArray() {
		return len(nodes.Array())
	}
	return 1
}

func (e *Entry) expiresAt() uint64 {
	if e.TTLSeconds > math.MaxUint64-e.Timestamp {
		return math.MaxUint64
	}
	return e.Timestamp + e.TTLSeconds
}

// epoch converts now to whole seconds since the epoch. Clocks before 1970
// count as zero.
func epoch(now time.Time) uint64 {
	s := now.Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}
