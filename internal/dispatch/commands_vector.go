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
	"sort"
	"strings"

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/resp"
	"github.com/erigontech/keydb/internal/vec"
)

var errVecOp = resp.NewWireError("ERR invalid vector operation")
var errLimitRequired = resp.NewWireError("ERR LIMIT is required")

func registerVectorCommands(e *Engine) {
	e.register("VSET", 3, -1, cmdVSet)
	e.register("VGET", 2, 2, cmdVGet)
	e.register("VDIM", 2, 2, cmdVDim)
	e.register("VDEL", 2, 2, cmdVDel)
	e.register("VSIM", 3, 4, cmdVSim)
	e.register("VSEARCH", 3, -1, cmdVSearch)
}

func parseFloats(args [][]byte) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := parseFloat(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func cmdVSet(e *Engine, c Conn, args [][]byte) resp.Value {
	values, perr := parseFloats(args[1:])
	if perr != nil {
		return resp.AsError(perr)
	}
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindVector, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		rec = &keyspace.Record{Kind: keyspace.KindVector}
	}
	rec.Vector = vec.New(values)
	e.ks.Set(string(args[0]), rec)
	return resp.OK()
}

func cmdVGet(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindVector, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullArray()
	}
	out := make([]resp.Value, len(rec.Vector.Values))
	for i, v := range rec.Vector.Values {
		out[i] = resp.BulkString(formatFloat(v))
	}
	return resp.ArraySlice(out)
}

func cmdVDim(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindVector, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.NullBulk()
	}
	return resp.Int(int64(rec.Vector.Dim()))
}

func cmdVDel(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindVector, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(e.ks.Delete(string(args[0]))))
}

func parseMetric(tok []byte) (vec.Metric, error) {
	switch strings.ToUpper(string(tok)) {
	case "COSINE":
		return vec.MetricCosine, nil
	case "DOT":
		return vec.MetricDot, nil
	case "L2":
		return vec.MetricL2, nil
	default:
		return "", errSyntax
	}
}

func cmdVSim(e *Engine, c Conn, args [][]byte) resp.Value {
	metric := vec.MetricCosine
	if len(args) == 3 {
		m, merr := parseMetric(args[2])
		if merr != nil {
			return resp.AsError(merr)
		}
		metric = m
	}
	recA, errA := e.ks.GetTyped(string(args[0]), keyspace.KindVector, nowMs())
	if errA != nil {
		return wrongType()
	}
	recB, errB := e.ks.GetTyped(string(args[1]), keyspace.KindVector, nowMs())
	if errB != nil {
		return wrongType()
	}
	if recA == nil || recB == nil {
		return resp.AsError(errVecOp)
	}
	score, serr := vec.Similarity(recA.Vector.Values, recB.Vector.Values, metric)
	if serr != nil {
		return resp.AsError(errVecOp)
	}
	return resp.BulkString(formatFloat(score))
}

type vsearchHit struct {
	key   string
	score float64
}

func cmdVSearch(e *Engine, c Conn, args [][]byte) resp.Value {
	prefix := string(args[0])
	rest := args[1:]

	var metric vec.Metric = vec.MetricCosine
	var topK int
	offset := 0
	var qvecStart int

	// The count-spec is a fixed-position prefix: either a bare integer
	// (positional topK) or the keyword form "LIMIT off count". An optional
	// metric token follows immediately, then everything else is qvec.
	// Mixing the two forms, or anything else in that leading position, is
	// a plain syntax error — the same rule the rest of the table applies
	// to misplaced/duplicate flags.
	if len(rest) == 0 {
		return resp.AsError(errLimitRequired)
	}
	switch {
	case eqFold(rest[0], "LIMIT"):
		if len(rest) < 3 {
			return resp.AsError(errSyntax)
		}
		off, offErr := parseInt(rest[1])
		if offErr != nil {
			return resp.AsError(offErr)
		}
		cnt, cntErr := parseInt(rest[2])
		if cntErr != nil {
			return resp.AsError(cntErr)
		}
		offset, topK = int(off), int(cnt)
		i := 3
		if i < len(rest) && isMetricToken(rest[i]) {
			m, merr := parseMetric(rest[i])
			if merr != nil {
				return resp.AsError(merr)
			}
			metric = m
			i++
		}
		if i < len(rest) && eqFold(rest[i], "LIMIT") {
			return resp.AsError(errSyntax)
		}
		qvecStart = i
	default:
		n, terr := parseInt(rest[0])
		if terr != nil {
			return resp.AsError(errSyntax)
		}
		topK = int(n)
		i := 1
		if i < len(rest) && isMetricToken(rest[i]) {
			m, merr := parseMetric(rest[i])
			if merr != nil {
				return resp.AsError(merr)
			}
			metric = m
			i++
		}
		if i < len(rest) && eqFold(rest[i], "LIMIT") {
			return resp.AsError(errSyntax)
		}
		qvecStart = i
	}
	qvec, qerr := parseFloats(rest[qvecStart:])
	if qerr != nil {
		return resp.AsError(qerr)
	}

	var hits []vsearchHit
	for _, key := range e.ks.KeysByKind(keyspace.KindVector, nowMs()) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rec := e.ks.Get(key, nowMs())
		if rec == nil {
			continue
		}
		score, serr := vec.Similarity(rec.Vector.Values, qvec, metric)
		if serr != nil {
			continue
		}
		hits = append(hits, vsearchHit{key: key, score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score == hits[j].score {
			return hits[i].key < hits[j].key
		}
		return vec.Better(metric, hits[i].score, hits[j].score)
	})
	if offset > len(hits) {
		offset = len(hits)
	}
	hits = hits[offset:]
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]resp.Value, 0, len(hits)*2)
	for _, h := range hits {
		out = append(out, resp.BulkString(h.key), resp.BulkString(formatFloat(h.score)))
	}
	return resp.ArraySlice(out)
}

func isMetricToken(b []byte) bool {
	switch strings.ToUpper(string(b)) {
	case "COSINE", "DOT", "L2":
		return true
	default:
		return false
	}
}
