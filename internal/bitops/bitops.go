// Copyright 2017 The go-ethereum Authors
// (original work: overflow-checked integer arithmetic)
// Copyright 2025 The Keydb Authors
// (modifications: bit-field get/set/incr over an arbitrary-width signed or
// unsigned field within a byte string, generalizing the original's
// fixed-width overflow helpers)
//
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

// Package bitops implements the bit-string primitives behind
// SETBIT/GETBIT/BITCOUNT/BITOP/BITPOS/BITFIELD: plain byte-array bit
// indexing plus overflow-checked fixed-width signed/unsigned arithmetic.
package bitops

import (
	"math/big"
	"math/bits"
)

// Overflow policy for BITFIELD INCRBY, sticky across subsequent ops within
// one BITFIELD call.
type Overflow int

const (
	OverflowWrap Overflow = iota
	OverflowSat
	OverflowFail
)

// CeilDiv is adapted from erigon-lib/common/math.CeilDiv.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

// GetBit returns the bit at absolute bit offset pos (MSB of byte 0 = bit 0),
// 0 if pos is beyond the string.
func GetBit(buf []byte, pos int) int {
	byteIdx := pos / 8
	if byteIdx >= len(buf) {
		return 0
	}
	bitIdx := uint(7 - pos%8)
	return int((buf[byteIdx] >> bitIdx) & 1)
}

// SetBit sets the bit at absolute bit offset pos to val (0 or 1), growing
// buf with zero bytes if needed, and returns the previous value plus the
// (possibly reallocated) buffer.
func SetBit(buf []byte, pos int, val int) (prev int, out []byte) {
	byteIdx := pos / 8
	if byteIdx >= len(buf) {
		grown := make([]byte, byteIdx+1)
		copy(grown, buf)
		buf = grown
	}
	bitIdx := uint(7 - pos%8)
	prev = int((buf[byteIdx] >> bitIdx) & 1)
	if val != 0 {
		buf[byteIdx] |= 1 << bitIdx
	} else {
		buf[byteIdx] &^= 1 << bitIdx
	}
	return prev, buf
}

// CountBits counts set bits in buf[start:end] inclusive (byte range, both
// clamped and already resolved from Redis-style negative indices).
func CountBits(buf []byte, start, end int) int {
	if start < 0 {
		start = 0
	}
	if end >= len(buf) {
		end = len(buf) - 1
	}
	if start > end || len(buf) == 0 {
		return 0
	}
	n := 0
	for i := start; i <= end; i++ {
		n += bits.OnesCount8(buf[i])
	}
	return n
}

// FieldWidth describes a BITFIELD type token, e.g. "u8" or "i64".
type FieldWidth struct {
	Signed bool
	Bits   int
}

// GetField reads a Bits-wide field at absolute bit offset from buf.
func GetField(buf []byte, offsetBits int, w FieldWidth) int64 {
	var raw uint64
	for i := 0; i < w.Bits; i++ {
		raw = raw<<1 | uint64(GetBit(buf, offsetBits+i))
	}
	if !w.Signed {
		return int64(raw)
	}
	signBit := uint64(1) << (w.Bits - 1)
	if raw&signBit != 0 {
		return int64(raw) - int64(signBit<<1)
	}
	return int64(raw)
}

// SetField writes value (already wrapped/clamped to width) into buf at
// offsetBits, returning the updated buffer.
func SetField(buf []byte, offsetBits int, w FieldWidth, value int64) []byte {
	raw := uint64(value)
	if w.Bits < 64 {
		raw &= (uint64(1) << w.Bits) - 1
	}
	for i := 0; i < w.Bits; i++ {
		bitVal := int((raw >> uint(w.Bits-1-i)) & 1)
		_, buf = SetBit(buf, offsetBits+i, bitVal)
	}
	return buf
}

// bounds returns [min,max] representable by w.
func bounds(w FieldWidth) (min, max int64) {
	if !w.Signed {
		if w.Bits >= 64 {
			return 0, 1<<63 - 1 // u64 isn't offered by BITFIELD (max u63); defensive clamp
		}
		return 0, int64(uint64(1)<<w.Bits - 1)
	}
	if w.Bits >= 64 {
		return -1 << 63, 1<<63 - 1
	}
	return -(int64(1) << (w.Bits - 1)), int64(1)<<(w.Bits-1) - 1
}

// IncrWithOverflow adds delta to current per the given width and overflow
// policy. ok is false only under OverflowFail when the result would not
// fit, in which case result equals current (unmodified per BITFIELD
// semantics: the offending op replies null and leaves the field alone).
//
// The addition runs in big.Int, not int64: for i64/u64-width fields, current
// and delta can each already sit near the int64 boundary, so a plain int64
// add can wrap before the min/max check ever sees it.
func IncrWithOverflow(current, delta int64, w FieldWidth, policy Overflow) (result int64, ok bool) {
	min, max := bounds(w)
	bmin, bmax := big.NewInt(min), big.NewInt(max)
	sum := new(big.Int).Add(big.NewInt(current), big.NewInt(delta))
	if sum.Cmp(bmin) >= 0 && sum.Cmp(bmax) <= 0 {
		return sum.Int64(), true
	}
	switch policy {
	case OverflowSat:
		if sum.Cmp(bmax) > 0 {
			return max, true
		}
		return min, true
	case OverflowFail:
		return current, false
	default: // OverflowWrap
		span := new(big.Int).Sub(bmax, bmin)
		span.Add(span, big.NewInt(1))
		wrapped := new(big.Int).Sub(sum, bmin)
		wrapped.Mod(wrapped, span) // big.Int.Mod is Euclidean: always in [0, span)
		wrapped.Add(wrapped, bmin)
		return wrapped.Int64(), true
	}
}
