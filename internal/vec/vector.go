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

// Package vec implements the Vector value kind and its similarity metrics.
package vec

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDimMismatch is returned whenever two vectors compared by a metric do
// not share the same dimension.
var ErrDimMismatch = errors.New("ERR invalid vector operation")

type Vector struct {
	Values []float64
}

func New(values []float64) *Vector { return &Vector{Values: values} }

func (v *Vector) Dim() int { return len(v.Values) }

type Metric string

const (
	MetricCosine Metric = "COSINE"
	MetricDot    Metric = "DOT"
	MetricL2     Metric = "L2"
)

// Similarity computes metric(a, b); for COSINE and DOT higher is more
// similar, for L2 lower is more similar (it is a distance).
func Similarity(a, b []float64, metric Metric) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimMismatch
	}
	switch metric {
	case MetricDot:
		return dot(a, b), nil
	case MetricL2:
		return l2(a, b), nil
	case MetricCosine:
		na, nb := norm(a), norm(b)
		if na == 0 || nb == 0 {
			return 0, nil
		}
		return dot(a, b) / (na * nb), nil
	default:
		return 0, errors.Wrap(ErrDimMismatch, "unknown metric")
	}
}

// Better reports whether score x ranks ahead of score y under metric (for
// top-K search ordering).
func Better(metric Metric, x, y float64) bool {
	if metric == MetricL2 {
		return x < y
	}
	return x > y
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func l2(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}
