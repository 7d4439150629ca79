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
	"github.com/erigontech/keydb/internal/tseries"
)

var errTSExists = resp.NewWireError("ERR TSDB: key already exists")
var errTSMissing = resp.NewWireError("ERR key does not exist")
var errTSInvalidArgs = resp.NewWireError("ERR invalid arguments")

func registerTimeSeriesCommands(e *Engine) {
	e.register("TS.CREATE", 2, 4, cmdTSCreate)
	e.register("TS.ADD", 4, 4, cmdTSAdd)
	e.register("TS.INCRBY", 3, 5, cmdTSIncrBy)
	e.register("TS.DECRBY", 3, 5, cmdTSDecrBy)
	e.register("TS.GET", 2, 2, cmdTSGet)
	e.register("TS.RANGE", 4, 9, cmdTSRange)
	e.register("TS.REVRANGE", 4, 9, cmdTSRevRange)
	e.register("TS.DEL", 4, 4, cmdTSDel)
	e.register("TS.INFO", 2, 2, cmdTSInfo)
}

func cmdTSCreate(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	if rec := e.ks.Get(key, nowMs()); rec != nil {
		return resp.AsError(errTSExists)
	}
	var retention int64
	if len(args) == 3 {
		if !eqFold(args[1], "RETENTION") {
			return resp.AsError(errSyntax)
		}
		n, rerr := parseInt(args[2])
		if rerr != nil {
			return resp.AsError(rerr)
		}
		retention = n
	} else if len(args) != 1 {
		return resp.AsError(errSyntax)
	}
	rec := &keyspace.Record{Kind: keyspace.KindTimeSeries, TimeSeries: tseries.New(retention)}
	e.ks.Set(key, rec)
	return resp.OK()
}

func tsExisting(e *Engine, key string) (*keyspace.Record, resp.Value, bool) {
	rec, err := e.ks.GetTyped(key, keyspace.KindTimeSeries, nowMs())
	if err != nil {
		return nil, wrongType(), false
	}
	if rec == nil {
		return nil, resp.AsError(errTSMissing), false
	}
	return rec, resp.Value{}, true
}

func cmdTSAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindTimeSeries, nowMs())
	if err != nil {
		return wrongType()
	}
	ts, v, perr := parseTSValue(args[1], args[2])
	if perr != nil {
		return resp.AsError(perr)
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindTimeSeries, TimeSeries: tseries.New(0)}
		e.ks.Set(string(args[0]), rec)
	}
	rec.TimeSeries.Add(ts, v)
	return resp.Int(ts)
}

func parseTSValue(tsTok, valTok []byte) (int64, float64, error) {
	var ts int64
	if string(tsTok) == "*" {
		ts = nowMs()
	} else {
		n, err := parseInt(tsTok)
		if err != nil {
			return 0, 0, err
		}
		ts = n
	}
	v, err := parseFloat(valTok)
	if err != nil {
		return 0, 0, err
	}
	return ts, v, nil
}

func tsIncrDecr(e *Engine, args [][]byte, sign float64) resp.Value {
	delta, derr := parseFloat(args[1])
	if derr != nil {
		return resp.AsError(derr)
	}
	ts := nowMs()
	if len(args) == 4 {
		if !eqFold(args[2], "TIMESTAMP") {
			return resp.AsError(errSyntax)
		}
		if string(args[3]) != "*" {
			n, perr := parseInt(args[3])
			if perr != nil {
				return resp.AsError(perr)
			}
			ts = n
		}
	} else if len(args) != 2 {
		return resp.AsError(errSyntax)
	}
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindTimeSeries, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindTimeSeries, TimeSeries: tseries.New(0)}
		e.ks.Set(string(args[0]), rec)
	}
	cur := 0.0
	if last, ok := rec.TimeSeries.Last(); ok {
		cur = last.Val
	}
	next := cur + sign*delta
	rec.TimeSeries.Add(ts, next)
	return resp.Int(ts)
}

func cmdTSIncrBy(e *Engine, c Conn, args [][]byte) resp.Value {
	return tsIncrDecr(e, args, 1)
}

func cmdTSDecrBy(e *Engine, c Conn, args [][]byte) resp.Value {
	return tsIncrDecr(e, args, -1)
}

func cmdTSGet(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := tsExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	p, present := rec.TimeSeries.Last()
	if !present {
		return resp.ArraySlice(nil)
	}
	return resp.Array_(resp.Int(p.TS), resp.BulkString(formatFloat(p.Val)))
}

func pointsToValue(pts []tseries.Point) resp.Value {
	out := make([]resp.Value, len(pts))
	for i, p := range pts {
		out[i] = resp.Array_(resp.Int(p.TS), resp.BulkString(formatFloat(p.Val)))
	}
	return resp.ArraySlice(out)
}

func tsRangeImpl(e *Engine, args [][]byte, rev bool) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindTimeSeries, nowMs())
	if err != nil {
		return wrongType()
	}
	from, ferr := parseInt(args[1])
	if ferr != nil {
		return resp.AsError(ferr)
	}
	to, terr := parseInt(args[2])
	if terr != nil {
		return resp.AsError(terr)
	}
	var agg tseries.Aggregator
	var bucket int64
	haveAgg := false
	count := 0
	i := 3
	for i < len(args) {
		switch {
		case eqFold(args[i], "AGGREGATION"):
			if i+2 >= len(args) {
				return resp.AsError(errTSInvalidArgs)
			}
			agg = tseries.Aggregator(strings.ToLower(string(args[i+1])))
			n, berr := parseInt(args[i+2])
			if berr != nil {
				return resp.AsError(errTSInvalidArgs)
			}
			bucket = n
			haveAgg = true
			i += 3
		case eqFold(args[i], "COUNT"):
			n, cerr := parseInt(args[i+1])
			if cerr != nil {
				return resp.AsError(cerr)
			}
			count = int(n)
			i += 2
		default:
			return resp.AsError(errSyntax)
		}
	}
	if rec == nil {
		return resp.ArraySlice(nil)
	}
	var pts []tseries.Point
	if rev {
		pts = rec.TimeSeries.RevRange(from, to)
	} else {
		pts = rec.TimeSeries.Range(from, to)
	}
	if haveAgg {
		pts = tseries.Aggregate(pts, agg, bucket)
	}
	if count > 0 && len(pts) > count {
		pts = pts[:count]
	}
	return pointsToValue(pts)
}

func cmdTSRange(e *Engine, c Conn, args [][]byte) resp.Value {
	return tsRangeImpl(e, args, false)
}

func cmdTSRevRange(e *Engine, c Conn, args [][]byte) resp.Value {
	return tsRangeImpl(e, args, true)
}

func cmdTSDel(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindTimeSeries, nowMs())
	if err != nil {
		return wrongType()
	}
	from, ferr := parseInt(args[1])
	if ferr != nil {
		return resp.AsError(ferr)
	}
	to, terr := parseInt(args[2])
	if terr != nil {
		return resp.AsError(terr)
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.TimeSeries.Del(from, to)))
}

func cmdTSInfo(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, errVal, ok := tsExisting(e, string(args[0]))
	if !ok {
		return errVal
	}
	return resp.Array_(
		resp.BulkString("totalSamples"), resp.Int(int64(rec.TimeSeries.Len())),
		resp.BulkString("retentionTime"), resp.Int(rec.TimeSeries.RetentionMs),
	)
}
