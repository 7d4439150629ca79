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

import "sort"

// PendingEntry is one row of a group's Pending Entries List.
type PendingEntry struct {
	Consumer      string
	DeliveryTime  int64 // unix ms
	DeliveryCount int64
}

// Group is a named checkpoint + PEL over a stream, enabling at-least-once
// fan-out across consumers.
type Group struct {
	LastDeliveredID ID
	PEL             map[ID]*PendingEntry
	consumerSeen    map[string]int64 // consumer -> last activity, unix ms
}

func NewGroup(start ID) *Group {
	return &Group{
		LastDeliveredID: start,
		PEL:             make(map[ID]*PendingEntry),
		consumerSeen:    make(map[string]int64),
	}
}

func (g *Group) touch(consumer string, nowMs int64) {
	g.consumerSeen[consumer] = nowMs
}

// CreateGroup registers a new consumer group on s starting at start (which
// the caller resolves from "-"/"$"/an explicit id), or returns false if one
// already exists (BUSYGROUP).
func (s *Stream) CreateGroup(name string, start ID) (*Group, bool) {
	if _, exists := s.groups[name]; exists {
		return nil, false
	}
	g := NewGroup(start)
	s.groups[name] = g
	s.Broadcast()
	return g, true
}

// Deliver implements "XREADGROUP ... >": every undelivered entry with
// id > g.LastDeliveredID is handed to consumer and inserted into the PEL.
func (g *Group) Deliver(s *Stream, consumer string, count int, nowMs int64) []Entry {
	entries := s.Range(nextAfter(g.LastDeliveredID), MaxID, count)
	if len(entries) == 0 {
		return nil
	}
	g.touch(consumer, nowMs)
	for _, e := range entries {
		pe, existed := g.PEL[e.ID]
		if !existed {
			pe = &PendingEntry{}
			g.PEL[e.ID] = pe
		}
		pe.Consumer = consumer
		pe.DeliveryTime = nowMs
		pe.DeliveryCount++
		if g.LastDeliveredID.Less(e.ID) {
			g.LastDeliveredID = e.ID
		}
	}
	return entries
}

func nextAfter(id ID) ID {
	if id.Seq == ^uint64(0) {
		return ID{Ms: id.Ms + 1, Seq: 0}
	}
	return ID{Ms: id.Ms, Seq: id.Seq + 1}
}

// ReadPending implements "XREADGROUP ... <explicit-id>": returns the
// intersection of [from id onward] with entries already pending for
// consumer, without mutating the PEL.
func (g *Group) ReadPending(s *Stream, consumer string, from ID, count int) []Entry {
	var ids []ID
	for id, pe := range g.PEL {
		if pe.Consumer != consumer {
			continue
		}
		if id.Less(from) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	if count > 0 && len(ids) > count {
		ids = ids[:count]
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Ack removes id from the PEL, returning whether it was pending.
func (g *Group) Ack(id ID) bool {
	if _, ok := g.PEL[id]; !ok {
		return false
	}
	delete(g.PEL, id)
	return true
}

// Idle returns how long (ms) id has sat in the PEL without redelivery.
func (g *Group) Idle(id ID, nowMs int64) (int64, bool) {
	pe, ok := g.PEL[id]
	if !ok {
		return 0, false
	}
	return nowMs - pe.DeliveryTime, true
}

// Claim reassigns id to consumer if it is pending and idle long enough (or
// force is set), bumping delivery metadata per XCLAIM's options.
func (g *Group) Claim(id ID, consumer string, nowMs int64, minIdle int64, force bool, deliveryTime int64, deliveryCount int64, bumpCount bool) (*PendingEntry, bool) {
	pe, ok := g.PEL[id]
	if !ok {
		if !force {
			return nil, false
		}
		pe = &PendingEntry{}
		g.PEL[id] = pe
	} else if nowMs-pe.DeliveryTime < minIdle {
		return nil, false
	}
	pe.Consumer = consumer
	if deliveryTime > 0 {
		pe.DeliveryTime = deliveryTime
	} else {
		pe.DeliveryTime = nowMs
	}
	if deliveryCount >= 0 {
		pe.DeliveryCount = deliveryCount
	} else if bumpCount {
		pe.DeliveryCount++
	}
	g.touch(consumer, nowMs)
	return pe, true
}

// DelConsumer removes every PEL entry owned by consumer, returning the
// count removed.
func (g *Group) DelConsumer(consumer string) int {
	n := 0
	for id, pe := range g.PEL {
		if pe.Consumer == consumer {
			delete(g.PEL, id)
			n++
		}
	}
	delete(g.consumerSeen, consumer)
	return n
}

// ConsumerNames lists every consumer name the group has ever seen (derived
// from PEL ownership and delivery history), for XINFO CONSUMERS.
func (g *Group) ConsumerNames() []string {
	seen := map[string]struct{}{}
	for c := range g.consumerSeen {
		seen[c] = struct{}{}
	}
	for _, pe := range g.PEL {
		seen[pe.Consumer] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for c := range seen {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

func (g *Group) ConsumerPendingCount(consumer string) int {
	n := 0
	for _, pe := range g.PEL {
		if pe.Consumer == consumer {
			n++
		}
	}
	return n
}

func (g *Group) ConsumerLastSeen(consumer string) int64 {
	return g.consumerSeen[consumer]
}

// PendingByConsumer summarizes the group's PEL for XPENDING's summary
// form: total count plus a (consumer, count) list.
func (g *Group) PendingByConsumer() (total int, perConsumer map[string]int) {
	perConsumer = map[string]int{}
	for _, pe := range g.PEL {
		perConsumer[pe.Consumer]++
		total++
	}
	return total, perConsumer
}

// PendingIDsSorted returns every pending id in ascending order, for
// XPENDING's min/max and the extended range form.
func (g *Group) PendingIDsSorted() []ID {
	ids := make([]ID, 0, len(g.PEL))
	for id := range g.PEL {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}
