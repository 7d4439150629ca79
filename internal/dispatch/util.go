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

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/resp"
)

var errSyntax = resp.NewWireError("ERR syntax error")
var errNotInt = resp.NewWireError("ERR value is not an integer or out of range")
var errNotFloat = resp.NewWireError("ERR value is not a valid float")
var errIndexRange = resp.NewWireError("ERR index out of range")

// parseInt requires an exact decimal integer, no surrounding whitespace,
// mirroring the dispatcher's integer-argument contract.
func parseInt(b []byte) (int64, error) {
	s := string(b)
	if s == "" || strings.TrimSpace(s) != s {
		return 0, errNotInt
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotInt
	}
	return n, nil
}

func parseFloat(b []byte) (float64, error) {
	s := string(b)
	if s == "" || strings.TrimSpace(s) != s {
		return 0, errNotFloat
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotFloat
	}
	return f, nil
}

// formatFloat renders a double the way scores/TS/TDIGEST/vector output do:
// the shortest decimal that round-trips, with no exponent and no trailing
// ".0" for integral values.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bs(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

func eqFold(b []byte, s string) bool {
	return strings.EqualFold(string(b), s)
}

func wrongType() resp.Value { return resp.AsError(keyspace.ErrWrongType) }
