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

package keyspace

import "container/list"

// List is an ordered sequence of byte strings with O(1) head/tail push and
// pop, backed by a doubly linked list.
type List struct {
	l *list.List
}

func NewList() *List { return &List{l: list.New()} }

func (q *List) Len() int { return q.l.Len() }

func (q *List) PushLeft(v []byte)  { q.l.PushFront(v) }
func (q *List) PushRight(v []byte) { q.l.PushBack(v) }

func (q *List) PopLeft() ([]byte, bool) {
	e := q.l.Front()
	if e == nil {
		return nil, false
	}
	q.l.Remove(e)
	return e.Value.([]byte), true
}

func (q *List) PopRight() ([]byte, bool) {
	e := q.l.Back()
	if e == nil {
		return nil, false
	}
	q.l.Remove(e)
	return e.Value.([]byte), true
}

// at resolves a possibly-negative Redis-style index to an element, or
// nil if out of range.
func (q *List) at(idx int) *list.Element {
	n := q.l.Len()
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil
	}
	e := q.l.Front()
	for i := 0; i < idx; i++ {
		e = e.Next()
	}
	return e
}

func (q *List) Index(idx int) ([]byte, bool) {
	e := q.at(idx)
	if e == nil {
		return nil, false
	}
	return e.Value.([]byte), true
}

func (q *List) SetIndex(idx int, v []byte) bool {
	e := q.at(idx)
	if e == nil {
		return false
	}
	e.Value = v
	return true
}

// Range returns elements [start, stop] inclusive, Redis-style negative
// indices resolved and clamped; out-of-range yields an empty slice.
func (q *List) Range(start, stop int) [][]byte {
	n := q.l.Len()
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return [][]byte{}
	}
	out := make([][]byte, 0, stop-start+1)
	e := q.l.Front()
	for i := 0; i < start; i++ {
		e = e.Next()
	}
	for i := start; i <= stop; i++ {
		out = append(out, e.Value.([]byte))
		e = e.Next()
	}
	return out
}

// Trim keeps only [start, stop] inclusive, Redis-style indices.
func (q *List) Trim(start, stop int) {
	kept := q.Range(start, stop)
	q.l = list.New()
	for _, v := range kept {
		q.l.PushBack(v)
	}
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		idx += n
		if idx < 0 {
			idx = 0
		}
	}
	return idx
}
