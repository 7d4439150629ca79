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

var errTopKExists = resp.NewWireError("ERR key already exists")

func registerTopKCommands(e *Engine) {
	e.register("TOPK.RESERVE", 2, 6, cmdTopKReserve)
	e.register("TOPK.ADD", 3, -1, cmdTopKAdd)
	e.register("TOPK.INCRBY", 4, -1, cmdTopKIncrBy)
	e.register("TOPK.QUERY", 3, -1, cmdTopKQuery)
	e.register("TOPK.COUNT", 3, -1, cmdTopKCount)
	e.register("TOPK.LIST", 2, 3, cmdTopKList)
	e.register("TOPK.INFO", 2, 2, cmdTopKInfo)
}

func cmdTopKReserve(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	if rec := e.ks.Get(key, nowMs()); rec != nil {
		return resp.AsError(errTopKExists)
	}
	k, kerr := parseInt(args[1])
	if kerr != nil {
		return resp.AsError(kerr)
	}
	width, depth := int64(8), int64(7)
	decay := 0.9
	if len(args) == 5 {
		w, werr := parseInt(args[2])
		if werr != nil {
			return resp.AsError(werr)
		}
		d, derr := parseInt(args[3])
		if derr != nil {
			return resp.AsError(derr)
		}
		dec, decErr := parseFloat(args[4])
		if decErr != nil {
			return resp.AsError(decErr)
		}
		width, depth, decay = w, d, dec
	} else if len(args) != 2 {
		return resp.AsError(errSyntax)
	}
	rec := &keyspace.Record{Kind: keyspace.KindTopK, TopK: prob.NewTopK(int(k), uint32(width), uint32(depth), decay)}
	e.ks.Set(key, rec)
	return resp.OK()
}

func topkExisting(e *Engine, key string) (*keyspace.Record, resp.Value, bool) {
	rec, err := e.ks.GetTyped(key, keyspace.KindTopK, nowMs())
	if err != nil {
		return nil, wrongType(), false
	}
	if rec == nil {
		return nil, resp.AsError(resp.NewWireError("ERR key does not exist")), false
	}
	return rec, resp.Value{}, true
}

func cmdTopKAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := topkExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	out := make([]resp.Value, 0, len(args[1:]))
	for _, item := range args[1:] {
		evicted, didEvict := rec.TopK.Add(string(item), 1)
		if didEvict {
			out = append(out, resp.BulkString(evicted))
		} else {
			out = append(out, resp.NullBulk())
		}
	}
	return resp.ArraySlice(out)
}

func cmdTopKIncrBy(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := topkExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	pairs := args[1:]
	if len(pairs)%2 != 0 {
		return resp.AsError(errSyntax)
	}
	out := make([]resp.Value, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		incr, ierr := parseInt(pairs[i+1])
		if ierr != nil {
			return resp.AsError(ierr)
		}
		evicted, didEvict := rec.TopK.Add(string(pairs[i]), uint32(incr))
		if didEvict {
			out = append(out, resp.BulkString(evicted))
		} else {
			out = append(out, resp.NullBulk())
		}
	}
	return resp.ArraySlice(out)
}

func cmdTopKQuery(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := topkExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	out := make([]resp.Value, 0, len(args[1:]))
	for _, item := range args[1:] {
		out = append(out, resp.Int(boolInt(rec.TopK.Query(string(item)))))
	}
	return resp.ArraySlice(out)
}

func cmdTopKCount(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := topkExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	out := make([]resp.Value, 0, len(args[1:]))
	for _, item := range args[1:] {
		out = append(out, resp.Int(int64(rec.TopK.Count(string(item)))))
	}
	return resp.ArraySlice(out)
}

func cmdTopKList(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := topkExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	withCount := len(args) == 2 && eqFold(args[1], "WITHCOUNT")
	if len(args) == 2 && !withCount {
		return resp.AsError(errSyntax)
	}
	items := rec.TopK.List()
	out := make([]resp.Value, 0, len(items)*2)
	for _, it := range items {
		out = append(out, resp.BulkString(it.Item))
		if withCount {
			out = append(out, resp.Int(int64(it.Count)))
		}
	}
	return resp.ArraySlice(out)
}

func cmdTopKInfo(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := topkExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	return resp.Array_(
		resp.BulkString("k"), resp.Int(int64(rec.TopK.K)),
		resp.BulkString("width"), resp.Int(int64(rec.TopK.Width)),
		resp.BulkString("depth"), resp.Int(int64(rec.TopK.Depth)),
		resp.BulkString("decay"), resp.BulkString(formatFloat(rec.TopK.Decay)),
	)
}
