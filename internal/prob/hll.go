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

// Package prob holds the probabilistic/sketch value kinds: HyperLogLog,
// Bloom filter, Cuckoo filter, t-digest and Top-K.
package prob

import (
	"math"

	"github.com/spaolacci/murmur3"
)

const (
	hllMagic     = "DHLL"
	hllVersion   = 0x01
	hllPrecision = 0x0E // 14 -> 2^14 registers
	hllHeaderLen = 7    // 4 magic + version + precision + reserved
	hllRegisters = 1 << hllPrecision
	hllMaxRank   = 50
)

// IsHLL reports whether buf carries the DHLL magic header, the shape test
// PF* commands use instead of a dedicated Kind (spec.md 3.1/6).
func IsHLL(buf []byte) bool {
	return len(buf) >= hllHeaderLen && string(buf[:4]) == hllMagic
}

// NewHLL returns a freshly initialized, all-zero-register encoding.
func NewHLL() []byte {
	buf := make([]byte, hllHeaderLen+hllRegisters)
	copy(buf[:4], hllMagic)
	buf[4] = hllVersion
	buf[5] = hllPrecision
	buf[6] = 0
	return buf
}

func hllRegisterOf(buf []byte, i int) byte { return buf[hllHeaderLen+i] }
func hllSetRegister(buf []byte, i int, v byte) {
	if v > buf[hllHeaderLen+i] {
		buf[hllHeaderLen+i] = v
	}
}

// HLLAdd hashes item and updates the target register if the observed run
// length is larger than what is already stored there. Returns whether the
// sketch changed (PFADD's return value semantics).
func HLLAdd(buf []byte, item []byte) (out []byte, changed bool) {
	if !IsHLL(buf) {
		buf = NewHLL()
	}
	h := murmur3.Sum64(item)
	idx := h & (hllRegisters - 1)
	rest := h >> hllPrecision
	rank := byte(1)
	for rest != 0 && rank <= hllMaxRank {
		if rest&1 != 0 {
			break
		}
		rest >>= 1
		rank++
	}
	if rank > hllMaxRank {
		rank = hllMaxRank
	}
	before := hllRegisterOf(buf, int(idx))
	if rank > before {
		hllSetRegister(buf, int(idx), rank)
		changed = true
	}
	return buf, changed
}

// HLLCount estimates cardinality from the registers using the standard
// HyperLogLog estimator with small/large range corrections.
func HLLCount(buf []byte) uint64 {
	if !IsHLL(buf) {
		return 0
	}
	m := float64(hllRegisters)
	sum := 0.0
	zeros := 0
	for i := 0; i < hllRegisters; i++ {
		r := hllRegisterOf(buf, i)
		sum += 1.0 / math.Pow(2, float64(r))
		if r == 0 {
			zeros++
		}
	}
	alpha := 0.7213 / (1 + 1.079/m)
	estimate := alpha * m * m / sum

	if estimate <= 2.5*m && zeros != 0 {
		return uint64(m * math.Log(m/float64(zeros)))
	}
	if estimate > (1.0/30.0)*4294967296.0 {
		return uint64(-4294967296.0 * math.Log(1-estimate/4294967296.0))
	}
	return uint64(estimate)
}

// HLLMerge folds sources into dst register-wise (max of each register),
// creating dst if it is not already a valid HLL encoding.
func HLLMerge(dst []byte, sources [][]byte) []byte {
	if !IsHLL(dst) {
		dst = NewHLL()
	}
	for _, src := range sources {
		if !IsHLL(src) {
			continue
		}
		for i := 0; i < hllRegisters; i++ {
			hllSetRegister(dst, i, hllRegisterOf(src, i))
		}
	}
	return dst
}
