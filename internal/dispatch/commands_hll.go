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

var errNotHLL = resp.NewWireError("WRONGTYPE Key is not a valid HyperLogLog string value.")

func registerHLLCommands(e *Engine) {
	e.register("PFADD", 2, -1, cmdPFAdd)
	e.register("PFCOUNT", 2, -1, cmdPFCount)
	e.register("PFMERGE", 2, -1, cmdPFMerge)
}

func cmdPFAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	rec, err := e.ks.GetTyped(key, keyspace.KindString, nowMs())
	if err != nil {
		return wrongType()
	}
	var buf []byte
	if rec != nil {
		if !prob.IsHLL(rec.Str) {
			return resp.AsError(errNotHLL)
		}
		buf = rec.Str
	}
	changed := false
	for _, item := range args[1:] {
		var c2 bool
		buf, c2 = prob.HLLAdd(buf, item)
		changed = changed || c2
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindString}
	}
	rec.Str = buf
	e.ks.Set(key, rec)
	return resp.Int(boolInt(changed))
}

func cmdPFCount(e *Engine, c Conn, args [][]byte) resp.Value {
	if len(args) == 1 {
		rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindString, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			return resp.Int(0)
		}
		if !prob.IsHLL(rec.Str) {
			return resp.AsError(errNotHLL)
		}
		return resp.Int(int64(prob.HLLCount(rec.Str)))
	}
	var sources [][]byte
	for _, a := range args {
		rec, err := e.ks.GetTyped(string(a), keyspace.KindString, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			continue
		}
		if !prob.IsHLL(rec.Str) {
			return resp.AsError(errNotHLL)
		}
		sources = append(sources, rec.Str)
	}
	merged := prob.HLLMerge(prob.NewHLL(), sources)
	return resp.Int(int64(prob.HLLCount(merged)))
}

func cmdPFMerge(e *Engine, c Conn, args [][]byte) resp.Value {
	dstKey := string(args[0])
	var sources [][]byte
	for _, a := range args[1:] {
		rec, err := e.ks.GetTyped(string(a), keyspace.KindString, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			continue
		}
		if !prob.IsHLL(rec.Str) {
			return resp.AsError(errNotHLL)
		}
		sources = append(sources, rec.Str)
	}
	dstRec, err := e.ks.GetTyped(dstKey, keyspace.KindString, nowMs())
	if err != nil {
		return wrongType()
	}
	var dstBuf []byte
	if dstRec != nil {
		if !prob.IsHLL(dstRec.Str) {
			return resp.AsError(errNotHLL)
		}
		dstBuf = dstRec.Str
	}
	merged := prob.HLLMerge(dstBuf, sources)
	if dstRec == nil {
		dstRec = &keyspace.Record{Kind: keyspace.KindString}
	}
	dstRec.Str = merged
	e.ks.Set(dstKey, dstRec)
	return resp.OK()
}
