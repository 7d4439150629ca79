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

// Package keyspace holds the tagged value store: one key maps to exactly
// one Kind, enforced structurally by Record rather than by a runtime type
// scan.
package keyspace

// Kind identifies the value shape currently bound to a key. A key is bound
// to exactly one Kind at any instant (the type-exclusivity invariant);
// write-shaped commands against the wrong Kind fail WRONGTYPE and never
// convert.
type Kind int

const (
	KindNone Kind = iota

	// KindString holds an arbitrary byte sequence. Integer-valued strings
	// participate in the INCR family. The HyperLogLog encoding (magic
	// "DHLL") also lives here — it is detected by shape, not by a
	// separate Kind, per the on-wire stability note in the HLL section.
	KindString

	// KindHash holds an ordered field -> bytes mapping (HSET/HGET/...).
	KindHash

	// KindList holds an ordered sequence of byte strings with O(1)
	// head/tail push and pop (LPUSH/RPUSH/...).
	KindList

	// KindSet holds a set of byte strings (SADD/SREM/...).
	KindSet

	// KindZSet holds members keyed by bytes, ordered by (score asc,
	// member lex asc), with a secondary index by member for O(log n)
	// score lookup (ZADD/ZRANGE/...).
	KindZSet

	// KindStream holds an append-ordered sequence of (id, fields) entries
	// plus zero or more consumer groups (XADD/XREAD/...).
	KindStream

	// KindBloom holds one or more Bloom filters (BF.*).
	KindBloom

	// KindCuckoo holds a cuckoo filter with per-item counts (CF.*).
	KindCuckoo

	// KindTDigest holds a compression-bounded centroid list (TDIGEST.*).
	KindTDigest

	// KindTopK holds a count-min sketch plus a heavy-hitter table
	// (TOPK.*).
	KindTopK

	// KindTimeSeries holds a sorted timestamp -> value series (TS.*).
	KindTimeSeries

	// KindVector holds a fixed-dimension dense float64 array (V*).
	KindVector
)

// Name returns the lower-case WRONGTYPE-message-friendly name of a Kind.
func (k Kind) Name() string {
	switch k {
	case KindString:
		return "string"
	case KindHash:
		return "hash"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindZSet:
		return "zset"
	case KindStream:
		return "stream"
	case KindBloom:
		return "bloom filter"
	case KindCuckoo:
		return "cuckoo filter"
	case KindTDigest:
		return "t-digest"
	case KindTopK:
		return "top-k"
	case KindTimeSeries:
		return "time series"
	case KindVector:
		return "vector"
	default:
		return "none"
	}
}
