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
	"github.com/spaolacci/murmur3"
)

const cuckooBucketSize = 4
const cuckooMaxKicks = 500

// Cuckoo is a bucketed cuckoo filter. Unlike a Bloom filter it supports
// deletion and, because a bucket may legitimately hold the same
// fingerprint more than once, an approximate per-item count.
type Cuckoo struct {
	buckets    [][cuckooBucketSize]byte
	numBuckets uint64
	count      uint64
	capacity   uint64
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

func NewCuckoo(capacity uint64) *Cuckoo {
	nb := nextPow2((capacity + cuckooBucketSize - 1) / cuckooBucketSize)
	if nb < 2 {
		nb = 2
	}
	return &Cuckoo{
		buckets:    make([][cuckooBucketSize]byte, nb),
		numBuckets: nb,
		capacity:   capacity,
	}
}

func (c *Cuckoo) fingerprint(item []byte) byte {
	h := murmur3.Sum32(item)
	fp := byte(h)
	if fp == 0 {
		fp = 1
	}
	return fp
}

func (c *Cuckoo) index1(item []byte) uint64 {
	return xxhash.Sum64(item) & (c.numBuckets - 1)
}

func (c *Cuckoo) index2(i1 uint64, fp byte) uint64 {
	fh := xxhash.Sum64([]byte{fp})
	return (i1 ^ fh) & (c.numBuckets - 1)
}

func (c *Cuckoo) bucketHasSlot(b uint64) (int, bool) {
	for i, v := range c.buckets[b] {
		if v == 0 {
			return i, true
		}
	}
	return -1, false
}

func (c *Cuckoo) insertFP(fp byte, i1, i2 uint64) bool {
	if slot, ok := c.bucketHasSlot(i1); ok {
		c.buckets[i1][slot] = fp
		return true
	}
	if slot, ok := c.bucketHasSlot(i2); ok {
		c.buckets[i2][slot] = fp
		return true
	}
	// Relocate: kick a random occupant from i2 and keep hopping.
	i := i2
	for n := 0; n < cuckooMaxKicks; n++ {
		slot := rand.Intn(cuckooBucketSize)
		fp, c.buckets[i][slot] = c.buckets[i][slot], fp
		i = c.index2(i, fp)
		if slot2, ok := c.bucketHasSlot(i); ok {
			c.buckets[i][slot2] = fp
			return true
		}
	}
	return false
}

// Add inserts item, growing is not performed automatically (CF.RESERVE
// fixes capacity up front per the spec's command surface); returns false
// if the filter is full.
func (c *Cuckoo) Add(item []byte) bool {
	fp := c.fingerprint(item)
	i1 := c.index1(item)
	i2 := c.index2(i1, fp)
	if c.insertFP(fp, i1, i2) {
		c.count++
		return true
	}
	return false
}

// AddNX inserts item only if not already present.
func (c *Cuckoo) AddNX(item []byte) bool {
	if c.Exists(item) {
		return false
	}
	return c.Add(item)
}

func (c *Cuckoo) Exists(item []byte) bool {
	fp := c.fingerprint(item)
	i1 := c.index1(item)
	i2 := c.index2(i1, fp)
	for _, v := range c.buckets[i1] {
		if v == fp {
			return true
		}
	}
	for _, v := range c.buckets[i2] {
		if v == fp {
			return true
		}
	}
	return false
}

// Count returns the number of fingerprint occurrences across both
// candidate buckets, the cuckoo filter's native approximate-count.
func (c *Cuckoo) Count(item []byte) int {
	fp := c.fingerprint(item)
	i1 := c.index1(item)
	i2 := c.index2(i1, fp)
	n := 0
	for _, v := range c.buckets[i1] {
		if v == fp {
			n++
		}
	}
	if i2 != i1 {
		for _, v := range c.buckets[i2] {
			if v == fp {
				n++
			}
		}
	}
	return n
}

// Del removes one occurrence of item's fingerprint, returning whether one
// was found.
func (c *Cuckoo) Del(item []byte) bool {
	fp := c.fingerprint(item)
	i1 := c.index1(item)
	i2 := c.index2(i1, fp)
	for i, v := range c.buckets[i1] {
		if v == fp {
			c.buckets[i1][i] = 0
			c.count--
			return true
		}
	}
	for i, v := range c.buckets[i2] {
		if v == fp {
			c.buckets[i2][i] = 0
			c.count--
			return true
		}
	}
	return false
}

func (c *Cuckoo) Size() uint64     { return c.numBuckets * cuckooBucketSize }
func (c *Cuckoo) Inserted() uint64 { return c.count }
