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

var errTDigestExists = resp.NewWireError("ERR key already exists")

func registerTDigestCommands(e *Engine) {
	e.register("TDIGEST.CREATE", 2, 4, cmdTDigestCreate)
	e.register("TDIGEST.RESET", 2, 2, cmdTDigestReset)
	e.register("TDIGEST.ADD", 3, -1, cmdTDigestAdd)
	e.register("TDIGEST.QUANTILE", 3, -1, cmdTDigestQuantile)
	e.register("TDIGEST.CDF", 3, -1, cmdTDigestCDF)
	e.register("TDIGEST.RANK", 3, -1, cmdTDigestRank)
	e.register("TDIGEST.REVRANK", 3, -1, cmdTDigestRevRank)
	e.register("TDIGEST.BYRANK", 3, -1, cmdTDigestByRank)
	e.register("TDIGEST.BYREVRANK", 3, -1, cmdTDigestByRevRank)
	e.register("TDIGEST.TRIMMED_MEAN", 4, 4, cmdTDigestTrimmedMean)
	e.register("TDIGEST.MIN", 2, 2, cmdTDigestMin)
	e.register("TDIGEST.MAX", 2, 2, cmdTDigestMax)
	e.register("TDIGEST.INFO", 2, 2, cmdTDigestInfo)
}

func cmdTDigestCreate(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	if rec := e.ks.Get(key, nowMs()); rec != nil {
		return resp.AsError(errTDigestExists)
	}
	compression := 100.0
	if len(args) == 3 {
		if !eqFold(args[1], "COMPRESSION") {
			return resp.AsError(errSyntax)
		}
		n, perr := parseFloat(args[2])
		if perr != nil {
			return resp.AsError(perr)
		}
		compression = n
	} else if len(args) != 1 {
		return resp.AsError(errSyntax)
	}
	rec := &keyspace.Record{Kind: keyspace.KindTDigest, TDigest: prob.NewTDigest(compression)}
	e.ks.Set(key, rec)
	return resp.OK()
}

func cmdTDigestReset(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindTDigest, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(resp.NewWireError("ERR key does not exist"))
	}
	rec.TDigest.Reset()
	return resp.OK()
}

func tdigestOrCreate(e *Engine, key string) (*keyspace.Record, error) {
	rec, err := e.ks.GetTyped(key, keyspace.KindTDigest, nowMs())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindTDigest, TDigest: prob.NewTDigest(100)}
		e.ks.Set(key, rec)
	}
	return rec, nil
}

func cmdTDigestAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := tdigestOrCreate(e, string(args[0]))
	if err != nil {
		return wrongType()
	}
	for _, a := range args[1:] {
		v, verr := parseFloat(a)
		if verr != nil {
			return resp.AsError(verr)
		}
		rec.TDigest.Add(v)
	}
	return resp.OK()
}

func tdigestExisting(e *Engine, key string) (*keyspace.Record, resp.Value, bool) {
	rec, err := e.ks.GetTyped(key, keyspace.KindTDigest, nowMs())
	if err != nil {
		return nil, wrongType(), false
	}
	if rec == nil {
		return nil, resp.AsError(resp.NewWireError("ERR key does not exist")), false
	}
	return rec, resp.Value{}, true
}

func tdigestMapped(e *Engine, args [][]byte, fn func(*prob.TDigest, float64) float64) resp.Value {
	rec, errVal, ok := tdigestExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	out := make([]resp.Value, 0, len(args[1:]))
	for _, a := range args[1:] {
		v, verr := parseFloat(a)
		if verr != nil {
			return resp.AsError(verr)
		}
		out = append(out, resp.BulkString(formatFloat(fn(rec.TDigest, v))))
	}
	return resp.ArraySlice(out)
}

func cmdTDigestQuantile(e *Engine, c Conn, args [][]byte) resp.Value {
	return tdigestMapped(e, args, (*prob.TDigest).Quantile)
}

func cmdTDigestCDF(e *Engine, c Conn, args [][]byte) resp.Value {
	return tdigestMapped(e, args, (*prob.TDigest).CDF)
}

func cmdTDigestRank(e *Engine, c Conn, args [][]byte) resp.Value {
	return tdigestMapped(e, args, (*prob.TDigest).Rank)
}

func cmdTDigestRevRank(e *Engine, c Conn, args [][]byte) resp.Value {
	return tdigestMapped(e, args, (*prob.TDigest).RevRank)
}

func cmdTDigestByRank(e *Engine, c Conn, args [][]byte) resp.Value {
	return tdigestMapped(e, args, (*prob.TDigest).ByRank)
}

func cmdTDigestByRevRank(e *Engine, c Conn, args [][]byte) resp.Value {
	return tdigestMapped(e, args, (*prob.TDigest).ByRevRank)
}

func cmdTDigestTrimmedMean(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := tdigestExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	lo, lerr := parseFloat(args[1])
	if lerr != nil {
		return resp.AsError(lerr)
	}
	hi, herr := parseFloat(args[2])
	if herr != nil {
		return resp.AsError(herr)
	}
	return resp.BulkString(formatFloat(rec.TDigest.TrimmedMean(lo, hi)))
}

func cmdTDigestMin(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := tdigestExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	return resp.BulkString(formatFloat(rec.TDigest.Min()))
}

func cmdTDigestMax(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := tdigestExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	return resp.BulkString(formatFloat(rec.TDigest.Max()))
}

func cmdTDigestInfo(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := tdigestExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	return resp.Array_(
		resp.BulkString("Compression"), resp.BulkString(formatFloat(rec.TDigest.Compression)),
		resp.BulkString("Merged weight"), resp.BulkString(formatFloat(rec.TDigest.Count())),
	)
}
