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

func registerHashCommands(e *Engine) {
	e.register("HSET", 4, -1, cmdHSet)
	e.register("HGET", 3, 3, cmdHGet)
	e.register("HDEL", 3, -1, cmdHDel)
	e.register("HGETALL", 2, 2, cmdHGetAll)
}

func cmdHSet(e *Engine, c Conn, args [][]byte) resp.Value {
	if len(args[1:])%2 != 0 {
		return resp.AsError(errSyntax)
	}
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindHash, nowMs())
	if err != nil {
		return wrongType()
	}
	created := 0
	fv := args[1:]
	for i := 0; i < len(fv); i += 2 {
		if rec.Hash.Set(string(fv[i]), append([]byte(nil), fv[i+1]...)) {
			created++
		}
	}
	return resp.Int(int64(created))
}

func cmdHGet(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindHash, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	v, ok := rec.Hash.Get(string(args[1]))
	if !ok {
		return resp.NullBulk()
	}
	return resp.Bulk(v)
}

func cmdHDel(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindHash, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	n := 0
	for _, f := range args[1:] {
		if rec.Hash.Del(string(f)) {
			n++
		}
	}
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	return resp.Int(int64(n))
}

func cmdHGetAll(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindHash, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.ArraySlice(nil)
	}
	var out []resp.Value
	for _, f := range rec.Hash.All() {
		out = append(out, resp.BulkString(f), resp.Bulk(rec.Hash.Value(f)))
	}
	return resp.ArraySlice(out)
}
