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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/erigontech/keydb/internal/prob"
	"github.com/erigontech/keydb/internal/stream"
	"github.com/erigontech/keydb/internal/tseries"
	"github.com/erigontech/keydb/internal/vec"
)

// Record is the value record bound to a key: (kind, payload, expires_at?).
// It is a discriminated union implemented as direct ownership of one
// payload per Kind rather than an interface{} dictionary scan — exactly one
// of the payload fields is meaningful, selected by Kind.
type Record struct {
	Kind Kind

	// ExpiresAt is an absolute unix-millisecond instant; zero means no
	// expiry.
	ExpiresAt int64

	Str    []byte
	Hash   *Hash
	List   *List
	Set    mapset.Set[string]
	ZSet   *ZSet
	Stream *stream.Stream

	Bloom      *prob.Bloom
	Cuckoo     *prob.Cuckoo
	TDigest    *prob.TDigest
	TopK       *prob.TopK
	TimeSeries *tseries.Series
	Vector     *vec.Vector
}

// Empty reports whether the container for the record's kind has become
// empty, which per the lifecycle rules (spec.md 3.3) means the key should
// be removed entirely.
func (r *Record) Empty() bool {
	switch r.Kind {
	case KindHash:
		return r.Hash == nil || r.Hash.Len() == 0
	case KindList:
		return r.List == nil || r.List.Len() == 0
	case KindSet:
		return r.Set == nil || r.Set.Cardinality() == 0
	case KindZSet:
		return r.ZSet == nil || r.ZSet.Len() == 0
	case KindStream:
		return r.Stream == nil || (r.Stream.Len() == 0 && len(r.Stream.GroupNames()) == 0)
	default:
		return false
	}
}
