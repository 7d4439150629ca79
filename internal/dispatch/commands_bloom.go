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
	"github.com/erigontech/keydb/internal/prob"
	"github.com/erigontech/keydb/internal/resp"
)

var errBloomExists = resp.NewWireError("ERR item exists")

func registerBloomCommands(e *Engine) {
	e.register("BF.RESERVE", 4, 4, cmdBFReserve)
	e.register("BF.ADD", 3, 3, cmdBFAdd)
	e.register("BF.MADD", 3, -1, cmdBFMAdd)
	e.register("BF.EXISTS", 3, 3, cmdBFExists)
	e.register("BF.MEXISTS", 3, -1, cmdBFMExists)
	e.register("BF.INFO", 2, 2, cmdBFInfo)
}

func cmdBFReserve(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	if rec := e.ks.Get(key, nowMs()); rec != nil {
		return resp.AsError(errBloomExists)
	}
	errRate, eerr := parseFloat(args[1])
	if eerr != nil {
		return resp.AsError(eerr)
	}
	capacity, cerr := parseInt(args[2])
	if cerr != nil {
		return resp.AsError(cerr)
	}
	rec := &keyspace.Record{Kind: keyspace.KindBloom, Bloom: prob.NewBloom(errRate, uint64(capacity))}
	e.ks.Set(key, rec)
	return resp.OK()
}

func cmdBFAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := bloomOrCreate(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	return resp.Int(boolInt(rec.Bloom.Add(args[1])))
}

func cmdBFMAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := bloomOrCreate(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	out := make([]resp.Value, 0, len(args[1:]))
	for _, item := range args[1:] {
		out = append(out, resp.Int(boolInt(rec.Bloom.Add(item))))
	}
	return resp.ArraySlice(out)
}

func bloomOrCreate(e *Engine, key string) (*keyspace.Record, error) {
	rec, err := e.ks.GetTyped(key, keyspace.KindBloom, nowMs())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindBloom, Bloom: prob.NewBloom(0.01, 1024)}
		e.ks.Set(key, rec)
	}
	return rec, nil
}

func cmdBFExists(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindBloom, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(boolInt(rec.Bloom.Exists(args[1])))
}

func cmdBFMExists(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindBloom, nowMs())
	if err != nil {
		return wrongType()
	}
	out := make([]resp.Value, 0, len(args[1:]))
	for _, item := range args[1:] {
		if rec == nil {
			out = append(out, resp.Int(0))
			continue
		}
		out = append(out, resp.Int(boolInt(rec.Bloom.Exists(item))))
	}
	return resp.ArraySlice(out)
}

func cmdBFInfo(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindBloom, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(resp.NewWireError("ERR not found"))
	}
	return resp.Array_(
		resp.BulkString("Capacity"), resp.Int(int64(rec.Bloom.Capacity())),
		resp.BulkString("Size"), resp.Int(int64(rec.Bloom.Size())),
		resp.BulkString("Number of filters"), resp.Int(int64(rec.Bloom.NumFilters())),
		resp.BulkString("Expansion rate"), resp.Int(2),
	)
}
