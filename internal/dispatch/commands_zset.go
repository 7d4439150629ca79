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
	"math"
	"strings"

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/resp"
)

func registerZSetCommands(e *Engine) {
	e.register("ZADD", 4, -1, cmdZAdd)
	e.register("ZREM", 3, -1, cmdZRem)
	e.register("ZRANGE", 4, 5, cmdZRange)
	e.register("ZRANGEBYSCORE", 4, 5, cmdZRangeByScore)
	e.register("ZSCORE", 3, 3, cmdZScore)
	e.register("ZINCRBY", 4, 4, cmdZIncrBy)
	e.register("ZCARD", 2, 2, cmdZCard)
	e.register("ZCOUNT", 4, 4, cmdZCount)
	e.register("ZRANK", 3, 3, cmdZRank)
	e.register("ZREVRANK", 3, 3, cmdZRevRank)
	e.register("ZREMRANGEBYSCORE", 4, 4, cmdZRemRangeByScore)
}

func cmdZAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	if len(args[1:])%2 != 0 {
		return resp.AsError(errSyntax)
	}
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	added := 0
	sm := args[1:]
	for i := 0; i < len(sm); i += 2 {
		score, serr := parseFloat(sm[i])
		if serr != nil {
			return resp.AsError(serr)
		}
		if rec.ZSet.Add(string(sm[i+1]), score) {
			added++
		}
	}
	return resp.Int(int64(added))
}

func cmdZRem(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	n := 0
	for _, m := range args[1:] {
		if rec.ZSet.Remove(string(m)) {
			n++
		}
	}
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	return resp.Int(int64(n))
}

func cmdZRange(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	withScores := false
	if len(args) == 4 {
		if !eqFold(args[3], "WITHSCORES") {
			return resp.AsError(errSyntax)
		}
		withScores = true
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
	items := rec.ZSet.Ordered()
	n := len(items)
	lo := clampListIndex(int(start), n)
	hi := clampListIndex(int(stop), n)
	if hi >= n {
		hi = n - 1
	}
	var out []resp.Value
	if lo <= hi && n > 0 {
		for i := lo; i <= hi; i++ {
			out = append(out, resp.BulkString(items[i].Member))
			if withScores {
				out = append(out, resp.BulkString(formatFloat(items[i].Score)))
			}
		}
	}
	return resp.ArraySlice(out)
}

func clampListIndex(idx, n int) int {
	if idx < 0 {
		idx += n
		if idx < 0 {
			idx = 0
		}
	}
	return idx
}

func cmdZRangeByScore(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	withScores := false
	if len(args) == 4 {
		if !eqFold(args[3], "WITHSCORES") {
			return resp.AsError(errSyntax)
		}
		withScores = true
	}
	min, max, perr := parseScoreRange(args[1], args[2])
	if perr != nil {
		return resp.AsError(perr)
	}
	if rec == nil {
		return resp.ArraySlice(nil)
	}
	items := rec.ZSet.RangeByScore(min, max)
	var out []resp.Value
	for _, it := range items {
		out = append(out, resp.BulkString(it.Member))
		if withScores {
			out = append(out, resp.BulkString(formatFloat(it.Score)))
		}
	}
	return resp.ArraySlice(out)
}

func parseScoreRange(minB, maxB []byte) (float64, float64, error) {
	min, err := parseScoreBound(minB)
	if err != nil {
		return 0, 0, err
	}
	max, err := parseScoreBound(maxB)
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func parseScoreBound(b []byte) (float64, error) {
	s := strings.TrimSpace(string(b))
	switch s {
	case "-inf":
		return math.Inf(-1), nil
	case "+inf", "inf":
		return math.Inf(1), nil
	}
	return parseFloat(b)
}

func cmdZScore(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	s, ok := rec.ZSet.Score(string(args[1]))
	if !ok {
		return resp.NullBulk()
	}
	return resp.BulkString(formatFloat(s))
}

func cmdZIncrBy(e *Engine, c Conn, args [][]byte) resp.Value {
	delta, derr := parseFloat(args[1])
	if derr != nil {
		return resp.AsError(derr)
	}
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	next := rec.ZSet.IncrBy(string(args[2]), delta)
	return resp.BulkString(formatFloat(next))
}

func cmdZCard(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.ZSet.Len()))
}

func cmdZCount(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	min, max, perr := parseScoreRange(args[1], args[2])
	if perr != nil {
		return resp.AsError(perr)
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.ZSet.CountByScore(min, max)))
}

func cmdZRank(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	r := rec.ZSet.Rank(string(args[1]))
	if r < 0 {
		return resp.NullBulk()
	}
	return resp.Int(int64(r))
}

func cmdZRevRank(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	r := rec.ZSet.Rank(string(args[1]))
	if r < 0 {
		return resp.NullBulk()
	}
	return resp.Int(int64(rec.ZSet.Len() - 1 - r))
}

func cmdZRemRangeByScore(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindZSet, nowMs())
	if err != nil {
		return wrongType()
	}
	min, max, perr := parseScoreRange(args[1], args[2])
	if perr != nil {
		return resp.AsError(perr)
	}
	if rec == nil {
		return resp.Int(0)
	}
	n := rec.ZSet.RemoveRangeByScore(min, max)
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	return resp.Int(int64(n))
}
