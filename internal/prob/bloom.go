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
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/spaolacci/murmur3"
)

// bloomFilter is one generation of a scalable Bloom filter: a dense bit
// array sized for (errorRate, capacity) plus the two base hashes used for
// Kirsch-Mitzenmacher double hashing (h_i = h1 + i*h2).
type bloomFilter struct {
	bits     *bitset.BitSet
	m        uint
	k        uint
	capacity uint64
	count    uint64
}

func newBloomFilter(errorRate float64, capacity uint64) *bloomFilter {
	m := uint(math.Ceil(-float64(capacity) * math.Log(errorRate) / (math.Ln2 * math.Ln2)))
	if m < 8 {
		m = 8
	}
	k := uint(math.Round(float64(m) / float64(capacity) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return &bloomFilter{bits: bitset.New(m), m: m, k: k, capacity: capacity}
}

func (f *bloomFilter) hashes(item []byte) (uint64, uint64) {
	h1, h2 := murmur3.Sum128(item)
	return h1, h2
}

func (f *bloomFilter) add(item []byte) {
	h1, h2 := f.hashes(item)
	for i := uint(0); i < f.k; i++ {
		idx := (h1 + uint64(i)*h2) % uint64(f.m)
		f.bits.Set(uint(idx))
	}
	f.count++
}

func (f *bloomFilter) has(item []byte) bool {
	h1, h2 := f.hashes(item)
	for i := uint(0); i < f.k; i++ {
		idx := (h1 + uint64(i)*h2) % uint64(f.m)
		if !f.bits.Test(uint(idx)) {
			return false
		}
	}
	return true
}

// Bloom is a scalable Bloom filter: BF.RESERVE creates the first
// generation; once it saturates (count >= capacity), BF.ADD grows by
// appending a new, larger generation rather than raising the false
// positive rate of the existing one.
type Bloom struct {
	ErrorRate float64
	Filters   []*bloomFilter
}

func NewBloom(errorRate float64, capacity uint64) *Bloom {
	return &Bloom{
		ErrorRate: errorRate,
		Filters:   []*bloomFilter{newBloomFilter(errorRate, capacity)},
	}
}

// Add inserts item, returning true if it was not already (probably)
// present in any generation.
func (b *Bloom) Add(item []byte) bool {
	if b.Exists(item) {
		return false
	}
	last := b.Filters[len(b.Filters)-1]
	if last.count >= last.capacity {
		last = newBloomFilter(b.ErrorRate, last.capacity*2)
		b.Filters = append(b.Filters, last)
	}
	last.add(item)
	return true
}

func (b *Bloom) Exists(item []byte) bool {
	for _, f := range b.Filters {
		if f.has(item) {
			return true
		}
	}
	return false
}

func (b *Bloom) Capacity() uint64 {
	var total uint64
	for _, f := range b.Filters {
		total += f.capacity
	}
	return total
}

func (b *Bloom) Size() uint {
	var total uint
	for _, f := range b.Filters {
		total += f.m
	}
	return total
}

func (b *Bloom) NumFilters() int { return len(b.Filters) }
