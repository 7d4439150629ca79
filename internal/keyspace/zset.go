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

import (
	"github.com/google/btree"
)

// Item is one (member, score) pair of a ZSet, in the order ZRANGE et al.
// iterate.
type Item struct {
	Member string
	Score  float64
}

func zsetLess(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

// ZSet orders members by (score asc, member lex asc) using an in-memory
// B-tree, with a secondary hash index by member for O(log n) score lookup
// and O(log n) removal/reinsertion on score change.
type ZSet struct {
	tree   *btree.BTreeG[Item]
	scores map[string]float64
}

func NewZSet() *ZSet {
	return &ZSet{
		tree:   btree.NewG(32, zsetLess),
		scores: make(map[string]float64),
	}
}

func (z *ZSet) Len() int { return len(z.scores) }

func (z *ZSet) Score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

// Add sets member's score, returning true if member did not already exist.
func (z *ZSet) Add(member string, score float64) bool {
	if old, ok := z.scores[member]; ok {
		z.tree.Delete(Item{member, old})
		z.tree.ReplaceOrInsert(Item{member, score})
		z.scores[member] = score
		return false
	}
	z.tree.ReplaceOrInsert(Item{member, score})
	z.scores[member] = score
	return true
}

func (z *ZSet) IncrBy(member string, delta float64) float64 {
	old, ok := z.scores[member]
	if !ok {
		z.Add(member, delta)
		return delta
	}
	newScore := old + delta
	z.tree.Delete(Item{member, old})
	z.tree.ReplaceOrInsert(Item{member, newScore})
	z.scores[member] = newScore
	return newScore
}

func (z *ZSet) Remove(member string) bool {
	score, ok := z.scores[member]
	if !ok {
		return false
	}
	delete(z.scores, member)
	z.tree.Delete(Item{member, score})
	return true
}

// Ordered returns all (member, score) pairs in ascending order.
func (z *ZSet) Ordered() []Item {
	out := make([]Item, 0, z.tree.Len())
	z.tree.Ascend(func(it Item) bool {
		out = append(out, it)
		return true
	})
	return out
}

// Rank returns the zero-based ascending rank of member, or -1 if absent.
func (z *ZSet) Rank(member string) int {
	score, ok := z.scores[member]
	if !ok {
		return -1
	}
	rank := 0
	found := false
	z.tree.Ascend(func(it Item) bool {
		if it.Member == member && it.Score == score {
			found = true
			return false
		}
		rank++
		return true
	})
	if !found {
		return -1
	}
	return rank
}

// RangeByScore returns members with min <= score <= max, ascending. It scans
// from the first item whose score >= min and stops past max; the tree keeps
// this to the matching span plus O(log n) descent, not a full scan.
func (z *ZSet) RangeByScore(min, max float64) []Item {
	out := []Item{}
	z.tree.AscendGreaterOrEqual(Item{Member: "", Score: min}, func(it Item) bool {
		if it.Score > max {
			return false
		}
		if it.Score >= min {
			out = append(out, it)
		}
		return true
	})
	return out
}

func (z *ZSet) CountByScore(min, max float64) int {
	return len(z.RangeByScore(min, max))
}

// RemoveRangeByScore deletes members with min <= score <= max and returns
// the removed count.
func (z *ZSet) RemoveRangeByScore(min, max float64) int {
	victims := z.RangeByScore(min, max)
	for _, it := range victims {
		z.Remove(it.Member)
	}
	return len(victims)
}
