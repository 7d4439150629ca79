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

package prob

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
)

type bucket struct {
	fingerprint uint16
	count       uint32
}

// TopK is a heavy-hitters sketch: a decaying count-min-style table (a
// Heavy-Keeper variant, so collisions probabilistically evict the loser
// instead of only ever growing) backing an approximate count, plus a
// bounded table of the current best-known top K items and their counts.
type TopK struct {
	K     int
	Width uint32
	Depth uint32
	Decay float64

	table   [][]bucket
	hitters *lru.LRU[string, uint32]
}

func NewTopK(k int, width, depth uint32, decay float64) *TopK {
	t := make([][]bucket, depth)
	for i := range t {
		t[i] = make([]bucket, width)
	}
	hitters, _ := lru.NewLRU[string, uint32](k, nil)
	return &TopK{K: k, Width: width, Depth: depth, Decay: decay, table: t, hitters: hitters}
}

func (t *TopK) rowHash(row uint32, item string) uint32 {
	h := xxhash.Sum64String(item) ^ (uint64(row+1) * 0x9E3779B97F4A7C15)
	return uint32(h % uint64(t.Width))
}

func fingerprintOf(item string) uint16 {
	return uint16(xxhash.Sum64String(item) & 0xFFFF)
}

// observe updates the count-min-with-decay table and returns the best
// (max-confidence) estimated count across rows.
func (t *TopK) observe(item string, incr uint32) uint32 {
	fp := fingerprintOf(item)
	var best uint32
	for row := uint32(0); row < t.Depth; row++ {
		idx := t.rowHash(row, item)
		b := &t.table[row][idx]
		switch {
		case b.count == 0:
			b.fingerprint = fp
			b.count = incr
		case b.fingerprint == fp:
			b.count += incr
		default:
			for i := uint32(0); i < incr; i++ {
				if rand.Float64() < decayProbability(t.Decay, b.count) {
					b.count--
					if b.count == 0 {
						b.fingerprint = fp
						b.count = 1
					}
				}
			}
		}
		if b.fingerprint == fp && b.count > best {
			best = b.count
		}
	}
	return best
}

func decayProbability(decay float64, count uint32) float64 {
	p := 1.0
	for i := uint32(0); i < count; i++ {
		p *= decay
	}
	return p
}

// Add increments item by incr, returning the item evicted from the top-K
// table (if any) and whether an eviction occurred.
func (t *TopK) Add(item string, incr uint32) (evicted string, didEvict bool) {
	est := t.observe(item, incr)
	if _, ok := t.hitters.Get(item); ok {
		t.hitters.Add(item, est)
		return "", false
	}
	if t.hitters.Len() < t.K {
		t.hitters.Add(item, est)
		return "", false
	}
	minItem, minCount := t.smallest()
	if est > minCount {
		t.hitters.Remove(minItem)
		t.hitters.Add(item, est)
		return minItem, true
	}
	return "", false
}

func (t *TopK) smallest() (string, uint32) {
	var minItem string
	minCount := ^uint32(0)
	for _, k := range t.hitters.Keys() {
		v, _ := t.hitters.Peek(k)
		if v < minCount {
			minCount = v
			minItem = k
		}
	}
	return minItem, minCount
}

func (t *TopK) Query(item string) bool {
	_, ok := t.hitters.Get(item)
	return ok
}

// Count returns the best available count estimate: exact-ish tracked count
// if item is currently a tracked heavy hitter, else the sketch estimate.
func (t *TopK) Count(item string) uint32 {
	if v, ok := t.hitters.Peek(item); ok {
		return v
	}
	fp := fingerprintOf(item)
	var best uint32
	for row := uint32(0); row < t.Depth; row++ {
		idx := t.rowHash(row, item)
		b := t.table[row][idx]
		if b.fingerprint == fp && b.count > best {
			best = b.count
		}
	}
	return best
}

// List returns the tracked top-K items, descending by count.
func (t *TopK) List() []struct {
	Item  string
	Count uint32
} {
	out := make([]struct {
		Item  string
		Count uint32
	}, 0, t.hitters.Len())
	for _, k := range t.hitters.Keys() {
		v, _ := t.hitters.Peek(k)
		out = append(out, struct {
			Item  string
			Count uint32
		}{k, v})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Count > out[i].Count {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}
