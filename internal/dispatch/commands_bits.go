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

package dispatch

import (
	"strconv"
	"strings"

	"github.com/erigontech/keydb/internal/bitops"
	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/resp"
)

func registerBitCommands(e *Engine) {
	e.register("SETBIT", 4, 4, cmdSetBit)
	e.register("GETBIT", 3, 3, cmdGetBit)
	e.register("BITCOUNT", 2, 5, cmdBitCount)
	e.register("BITOP", 4, -1, cmdBitOp)
	e.register("BITPOS", 3, 6, cmdBitPos)
	e.register("BITFIELD", 2, -1, cmdBitField)
}

func getStringBuf(e *Engine, key string) ([]byte, error) {
	rec, err := e.ks.GetTyped(key, keyspace.KindString, nowMs())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec.Str, nil
}

func setStringBuf(e *Engine, key string, buf []byte) {
	rec, _ := e.ks.GetOrCreate(key, keyspace.KindString, nowMs())
	rec.Str = buf
}

func cmdSetBit(e *Engine, c Conn, args [][]byte) resp.Value {
	pos, err := parseInt(args[1])
	if err != nil || pos < 0 {
		return resp.AsError(errNotInt)
	}
	val, err := parseInt(args[2])
	if err != nil || (val != 0 && val != 1) {
		return resp.AsError(errNotInt)
	}
	buf, err := getStringBuf(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	prev, out := bitops.SetBit(buf, int(pos), int(val))
	setStringBuf(e, string(args[0]), out)
	return resp.Int(int64(prev))
}

func cmdGetBit(e *Engine, c Conn, args [][]byte) resp.Value {
	pos, err := parseInt(args[1])
	if err != nil || pos < 0 {
		return resp.AsError(errNotInt)
	}
	buf, err := getStringBuf(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	return resp.Int(int64(bitops.GetBit(buf, int(pos))))
}

func cmdBitCount(e *Engine, c Conn, args [][]byte) resp.Value {
	buf, err := getStringBuf(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	if len(args) == 1 {
		return resp.Int(int64(bitops.CountBits(buf, 0, len(buf)-1)))
	}
	if len(args) != 3 && len(args) != 4 {
		return resp.AsError(errSyntax)
	}
	start, err := parseInt(args[1])
	if err != nil {
		return resp.AsError(err)
	}
	end, err := parseInt(args[2])
	if err != nil {
		return resp.AsError(err)
	}
	useBits := false
	if len(args) == 4 {
		switch strings.ToUpper(string(args[3])) {
		case "BYTE":
		case "BIT":
			useBits = true
		default:
			return resp.AsError(errSyntax)
		}
	}
	if useBits {
		total := len(buf) * 8
		s, en := resolveRange(int(start), int(end), total)
		if s > en {
			return resp.Int(0)
		}
		n := 0
		for i := s; i <= en; i++ {
			n += bitops.GetBit(buf, i)
		}
		return resp.Int(int64(n))
	}
	s, en := resolveRange(int(start), int(end), len(buf))
	return resp.Int(int64(bitops.CountBits(buf, s, en)))
}

func resolveRange(start, end, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	return start, end
}

func cmdBitOp(e *Engine, c Conn, args [][]byte) resp.Value {
	op := strings.ToUpper(string(args[0]))
	dst := string(args[1])
	srcKeys := args[2:]
	if op == "NOT" && len(srcKeys) != 1 {
		return resp.AsError(errSyntax)
	}
	srcs := make([][]byte, len(srcKeys))
	maxLen := 0
	for i, k := range srcKeys {
		buf, err := getStringBuf(e, string(k))
		if err != nil {
			return wrongType()
		}
		srcs[i] = buf
		if len(buf) > maxLen {
			maxLen = len(buf)
		}
	}
	out := make([]byte, maxLen)
	switch op {
	case "AND":
		for i := range out {
			v := byte(0xFF)
			for _, s := range srcs {
				v &= byteAt(s, i)
			}
			out[i] = v
		}
	case "OR":
		for i := range out {
			var v byte
			for _, s := range srcs {
				v |= byteAt(s, i)
			}
			out[i] = v
		}
	case "XOR":
		for i := range out {
			var v byte
			for _, s := range srcs {
				v ^= byteAt(s, i)
			}
			out[i] = v
		}
	case "NOT":
		for i := range out {
			out[i] = ^byteAt(srcs[0], i)
		}
	default:
		return resp.AsError(errSyntax)
	}
	if len(out) == 0 {
		e.ks.Delete(dst)
		return resp.Int(0)
	}
	setStringBuf(e, dst, out)
	return resp.Int(int64(len(out)))
}

func byteAt(b []byte, i int) byte {
	if i >= len(b) {
		return 0
	}
	return b[i]
}

func cmdBitPos(e *Engine, c Conn, args [][]byte) resp.Value {
	bit, err := parseInt(args[1])
	if err != nil || (bit != 0 && bit != 1) {
		return resp.AsError(errNotInt)
	}
	buf, err := getStringBuf(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	if len(buf) == 0 {
		if bit == 0 {
			return resp.Int(0)
		}
		return resp.Int(-1)
	}
	hasRange := len(args) >= 3
	start, end := 0, len(buf)-1
	useBits := false
	if len(args) >= 3 {
		s, serr := parseInt(args[2])
		if serr != nil {
			return resp.AsError(serr)
		}
		start = int(s)
		if len(args) >= 4 {
			en, eerr := parseInt(args[3])
			if eerr != nil {
				return resp.AsError(eerr)
			}
			end = int(en)
		}
		if len(args) == 5 {
			switch strings.ToUpper(string(args[4])) {
			case "BYTE":
			case "BIT":
				useBits = true
			default:
				return resp.AsError(errSyntax)
			}
		}
	}

	var lo, hi int
	if useBits {
		lo, hi = resolveRange(start, end, len(buf)*8)
	} else {
		bs, be := resolveRange(start, end, len(buf))
		lo, hi = bs*8, be*8+7
	}
	for i := lo; i <= hi; i++ {
		if bitops.GetBit(buf, i) == int(bit) {
			return resp.Int(int64(i))
		}
	}
	if bit == 0 && !hasRange {
		return resp.Int(int64(len(buf) * 8))
	}
	return resp.Int(-1)
}

func cmdBitField(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	buf, err := getStringBuf(e, key)
	if err != nil {
		return wrongType()
	}
	dirty := false
	overflow := bitops.OverflowWrap
	var out []resp.Value

	rest := args[1:]
	for i := 0; i < len(rest); {
		op := strings.ToUpper(string(rest[i]))
		switch op {
		case "OVERFLOW":
			if i+1 >= len(rest) {
				return resp.AsError(errSyntax)
			}
			switch strings.ToUpper(string(rest[i+1])) {
			case "WRAP":
				overflow = bitops.OverflowWrap
			case "SAT":
				overflow = bitops.OverflowSat
			case "FAIL":
				overflow = bitops.OverflowFail
			default:
				return resp.AsError(errSyntax)
			}
			i += 2
		case "GET":
			if i+2 >= len(rest) {
				return resp.AsError(errSyntax)
			}
			w, werr := parseFieldWidth(rest[i+1])
			if werr != nil {
				return resp.AsError(werr)
			}
			off, oerr := parseFieldOffset(rest[i+2], w)
			if oerr != nil {
				return resp.AsError(oerr)
			}
			out = append(out, resp.Int(bitops.GetField(buf, off, w)))
			i += 3
		case "SET":
			if i+3 >= len(rest) {
				return resp.AsError(errSyntax)
			}
			w, werr := parseFieldWidth(rest[i+1])
			if werr != nil {
				return resp.AsError(werr)
			}
			off, oerr := parseFieldOffset(rest[i+2], w)
			if oerr != nil {
				return resp.AsError(oerr)
			}
			val, verr := parseInt(rest[i+3])
			if verr != nil {
				return resp.AsError(verr)
			}
			old := bitops.GetField(buf, off, w)
			buf = growFor(buf, off, w)
			buf = bitops.SetField(buf, off, w, val)
			dirty = true
			out = append(out, resp.Int(old))
			i += 4
		case "INCRBY":
			if i+3 >= len(rest) {
				return resp.AsError(errSyntax)
			}
			w, werr := parseFieldWidth(rest[i+1])
			if werr != nil {
				return resp.AsError(werr)
			}
			off, oerr := parseFieldOffset(rest[i+2], w)
			if oerr != nil {
				return resp.AsError(oerr)
			}
			delta, derr := parseInt(rest[i+3])
			if derr != nil {
				return resp.AsError(derr)
			}
			buf = growFor(buf, off, w)
			cur := bitops.GetField(buf, off, w)
			next, ok := bitops.IncrWithOverflow(cur, delta, w, overflow)
			if !ok {
				out = append(out, resp.NullBulk())
			} else {
				buf = bitops.SetField(buf, off, w, next)
				dirty = true
				out = append(out, resp.Int(next))
			}
			i += 4
		default:
			return resp.AsError(errSyntax)
		}
	}
	if dirty {
		setStringBuf(e, key, buf)
	}
	return resp.ArraySlice(out)
}

func growFor(buf []byte, offsetBits int, w bitops.FieldWidth) []byte {
	need := bitops.CeilDiv(offsetBits+w.Bits, 8)
	if len(buf) >= need {
		return buf
	}
	grown := make([]byte, need)
	copy(grown, buf)
	return grown
}

func parseFieldWidth(b []byte) (bitops.FieldWidth, error) {
	s := string(b)
	if len(s) < 2 {
		return bitops.FieldWidth{}, errSyntax
	}
	signed := s[0] == 'i'
	if !signed && s[0] != 'u' {
		return bitops.FieldWidth{}, errSyntax
	}
	bits, err := strconv.Atoi(s[1:])
	if err != nil || bits < 1 || bits > 64 || (!signed && bits > 63) {
		return bitops.FieldWidth{}, errSyntax
	}
	return bitops.FieldWidth{Signed: signed, Bits: bits}, nil
}

// parseFieldOffset parses a plain bit offset, or "#N" meaning N*width bits.
func parseFieldOffset(b []byte, w bitops.FieldWidth) (int, error) {
	s := string(b)
	if strings.HasPrefix(s, "#") {
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return 0, errSyntax
		}
		return n * w.Bits, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errSyntax
	}
	return n, nil
}
