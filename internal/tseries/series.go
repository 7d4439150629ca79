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

// Package tseries implements the TimeSeries value kind: a sorted
// timestamp->value series with optional retention.
package tseries

import "sort"

type Point struct {
	TS  int64
	Val float64
}

// Series is a sorted mapping timestamp_ms -> f64 with an optional
// retention window.
type Series struct {
	RetentionMs int64
	points      []Point
}

func New(retentionMs int64) *Series {
	return &Series{RetentionMs: retentionMs}
}

func (s *Series) search(ts int64) int {
	return sort.Search(len(s.points), func(i int) bool { return s.points[i].TS >= ts })
}

// Add upserts (ts, val), keeping points sorted, then applies retention.
func (s *Series) Add(ts int64, val float64) {
	i := s.search(ts)
	if i < len(s.points) && s.points[i].TS == ts {
		s.points[i].Val = val
	} else {
		s.points = append(s.points, Point{})
		copy(s.points[i+1:], s.points[i:])
		s.points[i] = Point{TS: ts, Val: val}
	}
	s.applyRetention()
}

func (s *Series) applyRetention() {
	if s.RetentionMs <= 0 || len(s.points) == 0 {
		return
	}
	last := s.points[len(s.points)-1].TS
	cutoff := last - s.RetentionMs
	i := s.search(cutoff)
	if i > 0 {
		s.points = s.points[i:]
	}
}

func (s *Series) Len() int { return len(s.points) }

// Last returns the most recent point.
func (s *Series) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Range returns points with from <= ts <= to, ascending.
func (s *Series) Range(from, to int64) []Point {
	start := s.search(from)
	var out []Point
	for i := start; i < len(s.points) && s.points[i].TS <= to; i++ {
		out = append(out, s.points[i])
	}
	return out
}

// RevRange returns the same span as Range but newest-first.
func (s *Series) RevRange(from, to int64) []Point {
	fwd := s.Range(from, to)
	out := make([]Point, len(fwd))
	for i, p := range fwd {
		out[len(fwd)-1-i] = p
	}
	return out
}

// Del removes points in [from, to], returning the removed count.
func (s *Series) Del(from, to int64) int {
	kept := make([]Point, 0, len(s.points))
	removed := 0
	for _, p := range s.points {
		if p.TS >= from && p.TS <= to {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.points = kept
	return removed
}

// Aggregator names the TS.RANGE AGGREGATION function.
type Aggregator string

const (
	AggAvg   Aggregator = "avg"
	AggSum   Aggregator = "sum"
	AggMin   Aggregator = "min"
	AggMax   Aggregator = "max"
	AggCount Aggregator = "count"
)

// Aggregate buckets pts into fixed-width windows of bucketMs starting at
// each point's floor(ts/bucketMs)*bucketMs, applying agg to each bucket.
func Aggregate(pts []Point, agg Aggregator, bucketMs int64) []Point {
	if bucketMs <= 0 || len(pts) == 0 {
		return pts
	}
	type acc struct {
		sum, min, max float64
		count         int
	}
	buckets := map[int64]*acc{}
	var order []int64
	for _, p := range pts {
		b := (p.TS / bucketMs) * bucketMs
		a, ok := buckets[b]
		if !ok {
			a = &acc{min: p.Val, max: p.Val}
			buckets[b] = a
			order = append(order, b)
		}
		a.sum += p.Val
		a.count++
		if p.Val < a.min {
			a.min = p.Val
		}
		if p.Val > a.max {
			a.max = p.Val
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]Point, 0, len(order))
	for _, b := range order {
		a := buckets[b]
		var v float64
		switch agg {
		case AggSum:
			v = a.sum
		case AggMin:
			v = a.min
		case AggMax:
			v = a.max
		case AggCount:
			v = float64(a.count)
		default:
			v = a.sum / float64(a.count)
		}
		out = append(out, Point{TS: b, Val: v})
	}
	return out
}
