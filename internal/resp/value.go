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

// Package resp implements the RESP2 value model and wire codec. The rest of
// the engine is deliberately unaware of wire bytes; handlers build and
// consume Value trees.
package resp

import "strconv"

// Kind tags the shape of a Value per the RESP2 grammar.
type Kind byte

const (
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulk         Kind = '$'
	KindArray        Kind = '*'
)

// Value is a RESP2 reply or request element. Null bulk strings and null
// arrays are both representable (Null=true); Array/Bulk are nil in that
// case.
type Value struct {
	Kind  Kind
	Str   string  // SimpleString payload, or Error message (without the leading error code being special-cased)
	Int   int64   // Integer payload
	Bulk  []byte  // Bulk payload, nil means RESP null bulk when Kind==KindBulk
	Array []Value // Array elements; a null array is marked by Null, a nil slice is written as an empty array
	Null  bool    // explicit null marker, distinguishes "" / empty array from null
}

func OK() Value                   { return Value{Kind: KindSimpleString, Str: "OK"} }
func Simple(s string) Value       { return Value{Kind: KindSimpleString, Str: s} }
func Err(msg string) Value        { return Value{Kind: KindError, Str: msg} }
func Int(n int64) Value           { return Value{Kind: KindInteger, Int: n} }
func Bulk(b []byte) Value         { return Value{Kind: KindBulk, Bulk: b} }
func BulkString(s string) Value   { return Value{Kind: KindBulk, Bulk: []byte(s)} }
func NullBulk() Value             { return Value{Kind: KindBulk, Null: true} }
func NullArray() Value            { return Value{Kind: KindArray, Null: true} }
func Array_(items ...Value) Value { return Value{Kind: KindArray, Array: items} }
func ArraySlice(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Array: items}
}

// BulkOrNull returns a null bulk when present is false, else a bulk string
// of b.
func BulkOrNull(b []byte, present bool) Value {
	if !present {
		return NullBulk()
	}
	return Bulk(b)
}

// IsError reports whether v is a RESP error reply.
func (v Value) IsError() bool { return v.Kind == KindError }

// IsZero reports whether v is the unset zero Value, used by handlers that
// push every reply frame themselves (SUBSCRIBE and friends) as a signal
// that the caller should write nothing further for this command.
func (v Value) IsZero() bool { return v.Kind == 0 }

// String renders a bulk/simple value as a Go string, for tests and internal
// plumbing that shells out to the dispatcher with literal arguments.
func (v Value) String() string {
	switch v.Kind {
	case KindBulk:
		return string(v.Bulk)
	case KindSimpleString, KindError:
		return v.Str
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	default:
		return ""
	}
}
