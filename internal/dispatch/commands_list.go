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

func registerListCommands(e *Engine) {
	e.register("LPUSH", 3, -1, cmdLPush)
	e.register("RPUSH", 3, -1, cmdRPush)
	e.register("LPOP", 2, 2, cmdLPop)
	e.register("RPOP", 2, 2, cmdRPop)
	e.register("LRANGE", 4, 4, cmdLRange)
	e.register("LLEN", 2, 2, cmdLLen)
	e.register("LINDEX", 3, 3, cmdLIndex)
	e.register("LSET", 4, 4, cmdLSet)
	e.register("LTRIM", 4, 4, cmdLTrim)
}

func cmdLPush(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	for _, v := range args[1:] {
		rec.List.PushLeft(append([]byte(nil), v...))
	}
	return resp.Int(int64(rec.List.Len()))
}

func cmdRPush(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	for _, v := range args[1:] {
		rec.List.PushRight(append([]byte(nil), v...))
	}
	return resp.Int(int64(rec.List.Len()))
}

func cmdLPop(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	v, ok := rec.List.PopLeft()
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	if !ok {
		return resp.NullBulk()
	}
	return resp.Bulk(v)
}

func cmdRPop(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	v, ok := rec.List.PopRight()
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	if !ok {
		return resp.NullBulk()
	}
	return resp.Bulk(v)
}

func cmdLRange(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.ArraySlice(nil)
	}
	start, serr := parseInt(args[1])
	if serr != nil {
		return resp.AsError(serr)
	}
	stop, eerr := parseInt(args[2])
	if eerr != nil {
		return resp.AsError(eerr)
	}
	items := rec.List.Range(int(start), int(stop))
	out := make([]resp.Value, len(items))
	for i, v := range items {
		out[i] = resp.Bulk(v)
	}
	return resp.ArraySlice(out)
}

func cmdLLen(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.List.Len()))
}

func cmdLIndex(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	idx, ierr := parseInt(args[1])
	if ierr != nil {
		return resp.AsError(ierr)
	}
	v, ok := rec.List.Index(int(idx))
	if !ok {
		return resp.NullBulk()
	}
	return resp.Bulk(v)
}

func cmdLSet(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(errIndexRange)
	}
	idx, ierr := parseInt(args[1])
	if ierr != nil {
		return resp.AsError(ierr)
	}
	if !rec.List.SetIndex(int(idx), append([]byte(nil), args[2]...)) {
		return resp.AsError(errIndexRange)
	}
	return resp.OK()
}

func cmdLTrim(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindList, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.OK()
	}
	start, serr := parseInt(args[1])
	if serr != nil {
		return resp.AsError(serr)
	}
	stop, eerr := parseInt(args[2])
	if eerr != nil {
		return resp.AsError(eerr)
	}
	rec.List.Trim(int(start), int(stop))
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	return resp.OK()
}
