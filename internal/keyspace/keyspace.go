// Copyright 2025 The Keydb Authors
// This file is part of Keydb.
//
// Keydb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Keydb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Keydb. If not, see <http://www.gnu.org/licenses/>.

package keyspace

import (
	"strconv"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/erigontech/keydb/internal/resp"
	"github.com/erigontech/keydb/internal/stream"
)

// ErrWrongType is returned (never panics) when a command targets a key
// bound to a different Kind. It carries the wire message verbatim.
var ErrWrongType = resp.NewWireError("WRONGTYPE Operation against a key holding the wrong kind of value")

// ErrNotInteger mirrors the wire "not an integer" error for INCR-family
// commands against non-numeric string payloads.
var ErrNotInteger = resp.NewWireError("ERR value is not an integer or out of range")

// Keyspace is the single logical store behind every command. Per spec.md
// section 5 it is treated as one global lock: callers (the dispatcher, or
// the transaction controller running a queued EXEC) take Lock/Unlock for
// the duration of a whole command so that every command is atomic with
// respect to every other connection. Keyspace's own methods never lock
// internally — that would make the EXEC-is-one-atomic-block guarantee
// impossible without reentrant locking.
type Keyspace struct {
	mu sync.Mutex

	data      map[string]*Record
	expirable map[string]struct{}

	// versions survive key deletion (including implicit expiry/trim
	// deletes) so WATCH can detect "deleted and possibly recreated"
	// as a version bump, not just a presence change.
	versions map[string]uint64
}

func New() *Keyspace {
	return &Keyspace{
		data:      make(map[string]*Record),
		expirable: make(map[string]struct{}),
		versions:  make(map[string]uint64),
	}
}

func (ks *Keyspace) Lock()   { ks.mu.Lock() }
func (ks *Keyspace) Unlock() { ks.mu.Unlock() }

// Version returns the current write-version of key (0 if never written).
func (ks *Keyspace) Version(key string) uint64 { return ks.versions[key] }

// bump increments key's version counter; called on every write-shaped
// mutation, including implicit deletes from expiry/trim.
func (ks *Keyspace) bump(key string) {
	ks.versions[key]++
}

// reapIfExpired removes key if it has expired as of nowMs. Every read path
// calls this first. Reap is holistic: payload, stream groups/PEL and the
// expirable index entry are all removed together, never a partial payload.
func (ks *Keyspace) reapIfExpired(key string, nowMs int64) {
	rec, ok := ks.data[key]
	if !ok {
		return
	}
	if rec.ExpiresAt == 0 || nowMs < rec.ExpiresAt {
		return
	}
	delete(ks.data, key)
	delete(ks.expirable, key)
	ks.bump(key)
}

// ReapExpiredNow is reapIfExpired exported for the background reaper
// sweep, which samples keys from the expirable index directly.
func (ks *Keyspace) ReapExpiredNow(key string, nowMs int64) (removed bool) {
	before := len(ks.data)
	ks.reapIfExpired(key, nowMs)
	return len(ks.data) < before
}

// SampleExpirable returns up to n keys from the expirable index; Go's
// randomized map iteration order makes this an adequate random sample
// without a secondary structure.
func (ks *Keyspace) SampleExpirable(n int) []string {
	out := make([]string, 0, n)
	for k := range ks.expirable {
		out = append(out, k)
		if len(out) >= n {
			break
		}
	}
	return out
}

func (ks *Keyspace) ExpirableCount() int { return len(ks.expirable) }

// GetKind returns the Kind bound to key (KindNone if absent/expired).
func (ks *Keyspace) GetKind(key string, nowMs int64) Kind {
	ks.reapIfExpired(key, nowMs)
	rec, ok := ks.data[key]
	if !ok {
		return KindNone
	}
	return rec.Kind
}

// Get returns the live record for key, after reaping, or nil if absent.
func (ks *Keyspace) Get(key string, nowMs int64) *Record {
	ks.reapIfExpired(key, nowMs)
	return ks.data[key]
}

// GetTyped returns key's record, enforcing that it is either absent or of
// the given kind; ErrWrongType otherwise. Read-only: never mutates.
func (ks *Keyspace) GetTyped(key string, kind Kind, nowMs int64) (*Record, error) {
	rec := ks.Get(key, nowMs)
	if rec == nil {
		return nil, nil
	}
	if rec.Kind != kind {
		return nil, ErrWrongType
	}
	return rec, nil
}

// GetOrCreate returns key's record if it already has the given kind,
// creating an empty one lazily otherwise. ErrWrongType if bound to a
// different kind.
func (ks *Keyspace) GetOrCreate(key string, kind Kind, nowMs int64) (*Record, error) {
	rec := ks.Get(key, nowMs)
	if rec != nil {
		if rec.Kind != kind {
			return nil, ErrWrongType
		}
		return rec, nil
	}
	rec = &Record{Kind: kind}
	switch kind {
	case KindHash:
		rec.Hash = NewHash()
	case KindList:
		rec.List = NewList()
	case KindSet:
		rec.Set = mapset.NewThreadUnsafeSet[string]()
	case KindZSet:
		rec.ZSet = NewZSet()
	case KindStream:
		rec.Stream = stream.New()
	}
	ks.data[key] = rec
	ks.bump(key)
	return rec, nil
}

// Set replaces key's entire record (used by SET/MSET/XADD-on-new/etc.),
// clearing any prior expiry unless expiresAt is explicitly non-zero.
func (ks *Keyspace) Set(key string, rec *Record) {
	ks.data[key] = rec
	if rec.ExpiresAt != 0 {
		ks.expirable[key] = struct{}{}
	} else {
		delete(ks.expirable, key)
	}
	ks.bump(key)
}

// DeleteIfEmpty removes key if its container kind has become empty, per the
// lifecycle rule in spec.md 3.3.
func (ks *Keyspace) DeleteIfEmpty(key string, rec *Record) {
	if rec.Empty() {
		ks.Delete(key)
	}
}

// Delete removes keys, returning the count actually present.
func (ks *Keyspace) Delete(keys ...string) int {
	n := 0
	for _, k := range keys {
		if _, ok := ks.data[k]; ok {
			delete(ks.data, k)
			delete(ks.expirable, k)
			ks.bump(k)
			n++
		}
	}
	return n
}

// KeysByKind returns every live key bound to kind, reaping expired keys as it
// scans. Used by VSEARCH's prefix scan over vector keys.
func (ks *Keyspace) KeysByKind(kind Kind, nowMs int64) []string {
	var out []string
	for k := range ks.data {
		ks.reapIfExpired(k, nowMs)
		if rec, ok := ks.data[k]; ok && rec.Kind == kind {
			out = append(out, k)
		}
	}
	return out
}

// Exists counts how many of keys are currently present (post-reap).
func (ks *Keyspace) Exists(nowMs int64, keys ...string) int {
	n := 0
	for _, k := range keys {
		ks.reapIfExpired(k, nowMs)
		if _, ok := ks.data[k]; ok {
			n++
		}
	}
	return n
}

// Expire sets key's absolute expiry to atMs; returns false if key is
// absent.
func (ks *Keyspace) Expire(key string, atMs int64, nowMs int64) bool {
	ks.reapIfExpired(key, nowMs)
	rec, ok := ks.data[key]
	if !ok {
		return false
	}
	rec.ExpiresAt = atMs
	ks.expirable[key] = struct{}{}
	ks.bump(key)
	return true
}

// TTLMillis returns: -2 if missing, -1 if no expiry, else milliseconds remaining.
func (ks *Keyspace) TTLMillis(key string, nowMs int64) int64 {
	ks.reapIfExpired(key, nowMs)
	rec, ok := ks.data[key]
	if !ok {
		return -2
	}
	if rec.ExpiresAt == 0 {
		return -1
	}
	remaining := rec.ExpiresAt - nowMs
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// IncrBy applies delta to the integer value of a String key (creating it
// at 0 if absent), returning the new value or ErrNotInteger/ErrWrongType.
func (ks *Keyspace) IncrBy(key string, delta int64, nowMs int64) (int64, error) {
	rec, err := ks.GetTyped(key, KindString, nowMs)
	if err != nil {
		return 0, err
	}
	var cur int64
	if rec != nil {
		s := string(rec.Str)
		v, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return 0, ErrNotInteger
		}
		cur = v
	}
	next := cur + delta
	if rec == nil {
		rec = &Record{Kind: KindString}
		ks.data[key] = rec
	}
	rec.Str = []byte(strconv.FormatInt(next, 10))
	ks.bump(key)
	return next, nil
}
