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

// Package pubsub implements channel and pattern subscriptions and PUBLISH
// fan-out, independent of the keyspace (Pub/Sub messages are never stored).
package pubsub

import (
	"sort"
	"sync"
)

// Subscriber is anything that can receive a published message; session.go
// implements this over a connection's outbound writer.
type Subscriber interface {
	ID() string
	Deliver(channel string, payload []byte)
	DeliverPattern(pattern, channel string, payload []byte)
}

// Hub is the process-wide subscription registry. It has its own mutex,
// independent of the keyspace lock: PUBLISH never touches keyed data.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[string]Subscriber
	patterns map[string]map[string]Subscriber
}

func New() *Hub {
	return &Hub{
		channels: make(map[string]map[string]Subscriber),
		patterns: make(map[string]map[string]Subscriber),
	}
}

// Subscribe adds sub to channel's set, returning false if already a member.
func (h *Hub) Subscribe(sub Subscriber, channel string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.channels[channel]
	if !ok {
		set = make(map[string]Subscriber)
		h.channels[channel] = set
	}
	if _, already := set[sub.ID()]; already {
		return false
	}
	set[sub.ID()] = sub
	return true
}

func (h *Hub) Unsubscribe(sub Subscriber, channel string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.channels[channel]
	if !ok {
		return false
	}
	if _, member := set[sub.ID()]; !member {
		return false
	}
	delete(set, sub.ID())
	if len(set) == 0 {
		delete(h.channels, channel)
	}
	return true
}

func (h *Hub) PSubscribe(sub Subscriber, pattern string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.patterns[pattern]
	if !ok {
		set = make(map[string]Subscriber)
		h.patterns[pattern] = set
	}
	if _, already := set[sub.ID()]; already {
		return false
	}
	set[sub.ID()] = sub
	return true
}

func (h *Hub) PUnsubscribe(sub Subscriber, pattern string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.patterns[pattern]
	if !ok {
		return false
	}
	if _, member := set[sub.ID()]; !member {
		return false
	}
	delete(set, sub.ID())
	if len(set) == 0 {
		delete(h.patterns, pattern)
	}
	return true
}

// UnsubscribeAll removes sub from every channel and pattern it belongs to,
// called when a connection closes.
func (h *Hub) UnsubscribeAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, set := range h.channels {
		if _, ok := set[sub.ID()]; ok {
			delete(set, sub.ID())
			if len(set) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	for pat, set := range h.patterns {
		if _, ok := set[sub.ID()]; ok {
			delete(set, sub.ID())
			if len(set) == 0 {
				delete(h.patterns, pat)
			}
		}
	}
}

// Publish delivers payload to every exact-channel subscriber and every
// pattern subscriber whose pattern matches channel, returning the total
// number of deliveries (duplicates across an exact match and a pattern
// match both count, per PUBLISH's reply contract).
func (h *Hub) Publish(channel string, payload []byte) int {
	h.mu.Lock()
	var exact []Subscriber
	if set, ok := h.channels[channel]; ok {
		exact = make([]Subscriber, 0, len(set))
		for _, s := range set {
			exact = append(exact, s)
		}
	}
	type match struct {
		pattern string
		sub     Subscriber
	}
	var matches []match
	for pat, set := range h.patterns {
		if !Match(pat, channel) {
			continue
		}
		for _, s := range set {
			matches = append(matches, match{pattern: pat, sub: s})
		}
	}
	h.mu.Unlock()

	for _, s := range exact {
		s.Deliver(channel, payload)
	}
	for _, m := range matches {
		m.sub.DeliverPattern(m.pattern, channel, payload)
	}
	return len(exact) + len(matches)
}

// Channels lists currently-subscribed channel names, optionally filtered by
// pattern (PUBSUB CHANNELS [pattern]).
func (h *Hub) Channels(pattern string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.channels))
	for ch := range h.channels {
		if pattern == "" || Match(pattern, ch) {
			out = append(out, ch)
		}
	}
	sort.Strings(out)
	return out
}

// NumSub returns the subscriber count for each of channels, in order
// (PUBSUB NUMSUB).
func (h *Hub) NumSub(channels []string) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(channels))
	for i, ch := range channels {
		out[i] = len(h.channels[ch])
	}
	return out
}

// NumPat returns the total number of distinct active patterns (PUBSUB
// NUMPAT).
func (h *Hub) NumPat() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.patterns)
}
