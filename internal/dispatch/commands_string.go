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
	"github.com/erigontech/keydb/internal/resp"
)

func registerStringCommands(e *Engine) {
	e.register("GET", 2, 2, cmdGet)
	e.register("SET", 3, -1, cmdSet)
	e.register("MGET", 2, -1, cmdMGet)
	e.register("MSET", 3, -1, cmdMSet)
	e.register("INCR", 2, 2, cmdIncr)
	e.register("DECR", 2, 2, cmdDecr)
	e.register("INCRBY", 3, 3, cmdIncrBy)
}

func cmdGet(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindString, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	return resp.Bulk(rec.Str)
}

// SET k v [NX|XX] [EX s|PX ms]. A failed NX/XX leaves the existing key and
// its TTL completely untouched; a successful SET clears any prior TTL
// unless EX/PX is given.
func cmdSet(e *Engine, c Conn, args [][]byte) resp.Value {
	key, val := string(args[0]), args[1]
	var nx, xx bool
	var expiresAt int64
	now := nowMs()
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(string(rest[i])) {
		case "NX":
			if xx {
				return resp.AsError(errSyntax)
			}
			nx = true
		case "XX":
			if nx {
				return resp.AsError(errSyntax)
			}
			xx = true
		case "EX":
			if i+1 >= len(rest) || expiresAt != 0 {
				return resp.AsError(errSyntax)
			}
			secs, err := parseInt(rest[i+1])
			if err != nil {
				return resp.AsError(err)
			}
			expiresAt = now + secs*1000
			i++
		case "PX":
			if i+1 >= len(rest) || expiresAt != 0 {
				return resp.AsError(errSyntax)
			}
			ms, err := parseInt(rest[i+1])
			if err != nil {
				return resp.AsError(err)
			}
			expiresAt = now + ms
			i++
		default:
			return resp.AsError(errSyntax)
		}
	}

	existed := e.ks.GetKind(key, now) != keyspace.KindNone
	if nx && existed {
		return resp.NullBulk()
	}
	if xx && !existed {
		return resp.NullBulk()
	}
	e.ks.Set(key, &keyspace.Record{Kind: keyspace.KindString, Str: append([]byte(nil), val...), ExpiresAt: expiresAt})
	return resp.OK()
}

func cmdMGet(e *Engine, c Conn, args [][]byte) resp.Value {
	now := nowMs()
	out := make([]resp.Value, len(args))
	for i, k := range args {
		rec, err := e.ks.GetTyped(string(k), keyspace.KindString, now)
		if err != nil || rec == nil {
			out[i] = resp.NullBulk()
			continue
		}
		out[i] = resp.Bulk(rec.Str)
	}
	return resp.ArraySlice(out)
}

func cmdMSet(e *Engine, c Conn, args [][]byte) resp.Value {
	if len(args)%2 != 0 {
		return resp.AsError(errSyntax)
	}
	for i := 0; i < len(args); i += 2 {
		e.ks.Set(string(args[i]), &keyspace.Record{Kind: keyspace.KindString, Str: append([]byte(nil), args[i+1]...)})
	}
	return resp.OK()
}

func cmdIncr(e *Engine, c Conn, args [][]byte) resp.Value {
	return incrByN(e, string(args[0]), 1)
}

func cmdDecr(e *Engine, c Conn, args [][]byte) resp.Value {
	return incrByN(e, string(args[0]), -1)
}

func cmdIncrBy(e *Engine, c Conn, args [][]byte) resp.Value {
	delta, err := parseInt(args[1])
	if err != nil {
		return resp.AsError(err)
	}
	return incrByN(e, string(args[0]), delta)
}

func incrByN(e *Engine, key string, delta int64) resp.Value {
	v, err := e.ks.IncrBy(key, delta, nowMs())
	if err != nil {
		return resp.AsError(err)
	}
	return resp.Int(v)
}
