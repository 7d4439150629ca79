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

package stream

import (
	"sort"

	"github.com/tidwall/btree"
)

// Field is one (name, value) pair of a stream entry.
type Field struct {
	Name  []byte
	Value []byte
}

type Entry struct {
	ID     ID
	Fields []Field
}

func entryLess(a, b Entry) bool { return a.ID.Less(b.ID) }

// Stream is a single ordered container keyed by (ms, seq), plus its
// consumer groups. entries is backed by a balanced tree so XRANGE/
// XREVRANGE are range scans rather than full-table filters.
type Stream struct {
	entries         *btree.BTreeG[Entry]
	lastGeneratedID ID
	maxDeletedID    ID
	entriesAdded    uint64
	groups          map[string]*Group

	notify chan struct{}
}

func New() *Stream {
	return &Stream{
		entries: btree.NewBTreeG(entryLess),
		groups:  make(map[string]*Group),
		notify:  make(chan struct{}),
	}
}

func (s *Stream) Len() int { return s.entries.Len() }

func (s *Stream) LastGeneratedID() ID { return s.lastGeneratedID }

func (s *Stream) EntriesAdded() uint64 { return s.entriesAdded }

func (s *Stream) MaxDeletedID() ID { return s.maxDeletedID }

// WaitChan returns the current notification channel; callers should read
// it before releasing the global lock, then select on it (with a timeout)
// after releasing the lock, and re-evaluate state holding the lock again
// on wake.
func (s *Stream) WaitChan() <-chan struct{} { return s.notify }

// Broadcast wakes every current waiter. Called after XADD and after any
// XGROUP operation that could make previously-blocked XREAD(GROUP) calls
// progress.
func (s *Stream) Broadcast() {
	close(s.notify)
	s.notify = make(chan struct{})
}

// Append inserts entry at id. The caller is responsible for checking id is
// strictly greater than LastGeneratedID() first (XADD's monotonicity
// contract); Append itself only records the new tail and wakes waiters.
func (s *Stream) Append(id ID, fields []Field) {
	s.entries.Set(Entry{ID: id, Fields: fields})
	s.lastGeneratedID = id
	s.entriesAdded++
	s.Broadcast()
}

// SetLastID implements XSETID: forces last_generated_id forward (or to an
// arbitrary value), independent of existing entries.
func (s *Stream) SetLastID(id ID) {
	s.lastGeneratedID = id
}

func (s *Stream) Get(id ID) (Entry, bool) {
	return s.entries.Get(Entry{ID: id})
}

// Range returns entries with from <= id <= to, ascending, up to count (0 =
// unlimited).
func (s *Stream) Range(from, to ID, count int) []Entry {
	var out []Entry
	s.entries.Ascend(Entry{ID: from}, func(e Entry) bool {
		if to.Less(e.ID) {
			return false
		}
		out = append(out, e)
		return count == 0 || len(out) < count
	})
	return out
}

// RevRange returns the same span, newest-first.
func (s *Stream) RevRange(from, to ID, count int) []Entry {
	var out []Entry
	s.entries.Descend(Entry{ID: to}, func(e Entry) bool {
		if e.ID.Less(from) {
			return false
		}
		out = append(out, e)
		return count == 0 || len(out) < count
	})
	return out
}

// All returns every entry ascending; no command path calls it.
func (s *Stream) All() []Entry {
	return s.Range(MinID, MaxID, 0)
}

// Del removes ids, returning the count actually present. Deleting also
// drops their PEL references across every group.
func (s *Stream) Del(ids ...ID) int {
	n := 0
	for _, id := range ids {
		if _, ok := s.entries.Delete(Entry{ID: id}); ok {
			n++
			if s.maxDeletedID.Less(id) {
				s.maxDeletedID = id
			}
			for _, g := range s.groups {
				delete(g.PEL, id)
			}
		}
	}
	return n
}

// TrimMaxLen keeps only the newest maxLen entries, returning removed count.
func (s *Stream) TrimMaxLen(maxLen int) int {
	n := s.entries.Len() - maxLen
	if n <= 0 {
		return 0
	}
	var victims []ID
	s.entries.Scan(func(e Entry) bool {
		victims = append(victims, e.ID)
		return len(victims) < n
	})
	return s.Del(victims...)
}

// TrimMinID drops entries with id < minID, returning removed count.
func (s *Stream) TrimMinID(minID ID) int {
	var victims []ID
	s.entries.Ascend(Entry{ID: MinID}, func(e Entry) bool {
		if minID.Less(e.ID) || minID.Equal(e.ID) {
			return false
		}
		victims = append(victims, e.ID)
		return true
	})
	return s.Del(victims...)
}

func (s *Stream) GroupNames() []string {
	names := make([]string, 0, len(s.groups))
	for n := range s.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Stream) Group(name string) (*Group, bool) {
	g, ok := s.groups[name]
	return g, ok
}

func (s *Stream) DeleteGroup(name string) bool {
	if _, ok := s.groups[name]; !ok {
		return false
	}
	delete(s.groups, name)
	return true
}
