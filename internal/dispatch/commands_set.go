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
	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/resp"
)

func registerSetCommands(e *Engine) {
	e.register("SADD", 3, -1, cmdSAdd)
	e.register("SREM", 3, -1, cmdSRem)
	e.register("SMEMBERS", 2, 2, cmdSMembers)
	e.register("SCARD", 2, 2, cmdSCard)
}

func cmdSAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindSet, nowMs())
	if err != nil {
		return wrongType()
	}
	n := 0
	for _, m := range args[1:] {
		if rec.Set.Add(string(m)) {
			n++
		}
	}
	return resp.Int(int64(n))
}

func cmdSRem(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	n := 0
	for _, m := range args[1:] {
		if rec.Set.Contains(string(m)) {
			rec.Set.Remove(string(m))
			n++
		}
	}
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	return resp.Int(int64(n))
}

func cmdSMembers(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.ArraySlice(nil)
	}
	members := rec.Set.ToSlice()
	out := make([]resp.Value, len(members))
	for i, m := range members {
		out[i] = resp.BulkString(m)
	}
	return resp.ArraySlice(out)
}

func cmdSCard(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.Set.Cardinality()))
}
