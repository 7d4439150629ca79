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

package prob

import "sort"

type centroid struct {
	mean   float64
	weight float64
}

// TDigest is a compression-bounded centroid list producing approximate
// quantile/rank/cdf/min/max/trimmed_mean over a stream of values, without
// retaining every observation.
type TDigest struct {
	Compression float64
	centroids   []centroid
	totalWeight float64
	min, max    float64
	haveData    bool
	sinceMerge  int
}

func NewTDigest(compression float64) *TDigest {
	if compression <= 0 {
		compression = 100
	}
	return &TDigest{Compression: compression}
}

func (t *TDigest) Reset() {
	t.centroids = nil
	t.totalWeight = 0
	t.haveData = false
	t.sinceMerge = 0
}

func (t *TDigest) Add(v float64) {
	if !t.haveData {
		t.min, t.max = v, v
		t.haveData = true
	} else {
		if v < t.min {
			t.min = v
		}
		if v > t.max {
			t.max = v
		}
	}
	t.centroids = append(t.centroids, centroid{mean: v, weight: 1})
	t.totalWeight++
	t.sinceMerge++
	if t.sinceMerge > int(t.Compression)*2 {
		t.compress()
	}
}

// compress sorts and greedily merges adjacent centroids, bounding the
// number of centroids to roughly Compression.
func (t *TDigest) compress() {
	sort.Slice(t.centroids, func(i, j int) bool { return t.centroids[i].mean < t.centroids[j].mean })
	if len(t.centroids) == 0 {
		return
	}
	maxPerCentroid := t.totalWeight / t.Compression
	if maxPerCentroid < 1 {
		maxPerCentroid = 1
	}
	merged := make([]centroid, 0, len(t.centroids))
	cur := t.centroids[0]
	for _, c := range t.centroids[1:] {
		if cur.weight+c.weight <= maxPerCentroid {
			cur.mean = (cur.mean*cur.weight + c.mean*c.weight) / (cur.weight + c.weight)
			cur.weight += c.weight
		} else {
			merged = append(merged, cur)
			cur = c
		}
	}
	merged = append(merged, cur)
	t.centroids = merged
	t.sinceMerge = 0
}

func (t *TDigest) ready() []centroid {
	t.compress()
	return t.centroids
}

func (t *TDigest) Count() float64 { return t.totalWeight }
func (t *TDigest) Min() float64   { return t.min }
func (t *TDigest) Max() float64   { return t.max }

// Quantile returns the value at quantile q in [0,1].
func (t *TDigest) Quantile(q float64) float64 {
	cs := t.ready()
	if len(cs) == 0 {
		return 0
	}
	if q <= 0 {
		return t.min
	}
	if q >= 1 {
		return t.max
	}
	target := q * t.totalWeight
	cum := 0.0
	for i, c := range cs {
		next := cum + c.weight
		if target <= next || i == len(cs)-1 {
			// Centroids carry no intra-cluster spread, so the mean is the
			// best representative value for any target falling inside it.
			return c.mean
		}
		cum = next
	}
	return cs[len(cs)-1].mean
}

// CDF returns the fraction of observations <= v.
func (t *TDigest) CDF(v float64) float64 {
	cs := t.ready()
	if len(cs) == 0 || t.totalWeight == 0 {
		return 0
	}
	if v < t.min {
		return 0
	}
	if v >= t.max {
		return 1
	}
	cum := 0.0
	for _, c := range cs {
		if c.mean <= v {
			cum += c.weight
		}
	}
	return cum / t.totalWeight
}

// Rank returns the approximate count of observations <= v.
func (t *TDigest) Rank(v float64) float64 {
	return t.CDF(v) * t.totalWeight
}

// ByRank returns the value at the given rank (0-based count of
// observations strictly below it).
func (t *TDigest) ByRank(rank float64) float64 {
	if t.totalWeight == 0 {
		return 0
	}
	return t.Quantile(rank / t.totalWeight)
}

// RevRank returns the approximate count of observations >= v.
func (t *TDigest) RevRank(v float64) float64 {
	return t.totalWeight - t.Rank(v)
}

// ByRevRank returns the value at the given rank counted from the top.
func (t *TDigest) ByRevRank(rank float64) float64 {
	if t.totalWeight == 0 {
		return 0
	}
	return t.ByRank(t.totalWeight - 1 - rank)
}

// TrimmedMean averages the weighted centroid means whose quantile position
// falls within [loQ, hiQ].
func (t *TDigest) TrimmedMean(loQ, hiQ float64) float64 {
	cs := t.ready()
	if len(cs) == 0 {
		return 0
	}
	lo := loQ * t.totalWeight
	hi := hiQ * t.totalWeight
	cum := 0.0
	sum := 0.0
	weight := 0.0
	for _, c := range cs {
		next := cum + c.weight
		if next >= lo && cum <= hi {
			w := c.weight
			sum += c.mean * w
			weight += w
		}
		cum = next
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
