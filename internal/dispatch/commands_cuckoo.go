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
	"strings"

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/prob"
	"github.com/erigontech/keydb/internal/resp"
)

var errCuckooExists = resp.NewWireError("ERR item exists")
var errCuckooFull = resp.NewWireError("ERR filter is full")

func registerCuckooCommands(e *Engine) {
	e.register("CF.RESERVE", 3, 3, cmdCFReserve)
	e.register("CF.ADD", 3, 3, cmdCFAdd)
	e.register("CF.ADDNX", 3, 3, cmdCFAddNX)
	e.register("CF.INSERT", 3, -1, cmdCFInsert)
	e.register("CF.EXISTS", 3, 3, cmdCFExists)
	e.register("CF.DEL", 3, 3, cmdCFDel)
	e.register("CF.COUNT", 3, 3, cmdCFCount)
	e.register("CF.INFO", 2, 2, cmdCFInfo)
}

func cmdCFReserve(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	if rec := e.ks.Get(key, nowMs()); rec != nil {
		return resp.AsError(errCuckooExists)
	}
	capacity, cerr := parseInt(args[1])
	if cerr != nil {
		return resp.AsError(cerr)
	}
	rec := &keyspace.Record{Kind: keyspace.KindCuckoo, Cuckoo: prob.NewCuckoo(uint64(capacity))}
	e.ks.Set(key, rec)
	return resp.OK()
}

func cuckooOrCreate(e *Engine, key string) (*keyspace.Record, error) {
	rec, err := e.ks.GetTyped(key, keyspace.KindCuckoo, nowMs())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindCuckoo, Cuckoo: prob.NewCuckoo(1024)}
		e.ks.Set(key, rec)
	}
	return rec, nil
}

func cmdCFAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := cuckooOrCreate(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	if !rec.Cuckoo.Add(args[1]) {
		return resp.AsError(errCuckooFull)
	}
	return resp.Int(1)
}

func cmdCFAddNX(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := cuckooOrCreate(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	if rec.Cuckoo.Exists(args[1]) {
		return resp.Int(0)
	}
	if !rec.Cuckoo.Add(args[1]) {
		return resp.AsError(errCuckooFull)
	}
	return resp.Int(1)
}

func cmdCFInsert(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	i := 1
	capacity := int64(1024)
	if i+1 < len(args) && strings.EqualFold(string(args[i]), "CAPACITY") {
		n, cerr := parseInt(args[i+1])
		if cerr != nil {
			return resp.AsError(cerr)
		}
		capacity = n
		i += 2
	}
	if i >= len(args) || !strings.EqualFold(string(args[i]), "ITEMS") {
		return resp.AsError(errSyntax)
	}
	items := args[i+1:]
	if len(items) == 0 {
		return resp.AsError(errSyntax)
	}
	rec, err := e.ks.GetTyped(key, keyspace.KindCuckoo, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindCuckoo, Cuckoo: prob.NewCuckoo(uint64(capacity))}
		e.ks.Set(key, rec)
	}
	out := make([]resp.Value, 0, len(items))
	for _, item := range items {
		if rec.Cuckoo.Add(item) {
			out = append(out, resp.Int(1))
		} else {
			out = append(out, resp.AsError(errCuckooFull))
		}
	}
	return resp.ArraySlice(out)
}

func cmdCFExists(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindCuckoo, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(boolInt(rec.Cuckoo.Exists(args[1])))
}

func cmdCFDel(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindCuckoo, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(boolInt(rec.Cuckoo.Del(args[1])))
}

func cmdCFCount(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindCuckoo, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.Cuckoo.Count(args[1])))
}

func cmdCFInfo(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindCuckoo, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(resp.NewWireError("ERR not found"))
	}
	return resp.Array_(
		resp.BulkString("Size"), resp.Int(int64(rec.Cuckoo.Size())),
		resp.BulkString("Number of items inserted"), resp.Int(int64(rec.Cuckoo.Inserted())),
	)
}
