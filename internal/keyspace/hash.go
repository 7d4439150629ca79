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

// Hash is an ordered field -> bytes mapping; iteration order is stable
// within a key's lifetime (insertion order, fields never reordered on
// update).
type Hash struct {
	fields map[string][]byte
	order  []string
}

func NewHash() *Hash {
	return &Hash{fields: make(map[string][]byte)}
}

func (h *Hash) Len() int { return len(h.fields) }

func (h *Hash) Get(field string) ([]byte, bool) {
	v, ok := h.fields[field]
	return v, ok
}

// Set stores field=value, returning true if the field was newly created.
func (h *Hash) Set(field string, value []byte) (created bool) {
	_, existed := h.fields[field]
	h.fields[field] = value
	if !existed {
		h.order = append(h.order, field)
	}
	return !existed
}

func (h *Hash) Del(field string) (removed bool) {
	if _, ok := h.fields[field]; !ok {
		return false
	}
	delete(h.fields, field)
	for i, f := range h.order {
		if f == field {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the field names in insertion order.
func (h *Hash) All() []string {
	return h.order
}

func (h *Hash) Value(field string) []byte {
	return h.fields[field]
}
