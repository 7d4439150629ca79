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

package pubsub

// Subscriptions tracks the channel/pattern names one connection has joined,
// purely for replying with per-connection subscription counts and deciding
// whether a connection is in subscribed mode; the Hub holds the actual
// fan-out registry.
type Subscriptions struct {
	channels map[string]bool
	patterns map[string]bool
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{channels: make(map[string]bool), patterns: make(map[string]bool)}
}

func (s *Subscriptions) AddChannel(ch string)    { s.channels[ch] = true }
func (s *Subscriptions) RemoveChannel(ch string) { delete(s.channels, ch) }
func (s *Subscriptions) AddPattern(p string)     { s.patterns[p] = true }
func (s *Subscriptions) RemovePattern(p string)  { delete(s.patterns, p) }

func (s *Subscriptions) Channels() []string {
	out := make([]string, 0, len(s.channels))
	for c := range s.channels {
		out = append(out, c)
	}
	return out
}

func (s *Subscriptions) Patterns() []string {
	out := make([]string, 0, len(s.patterns))
	for p := range s.patterns {
		out = append(out, p)
	}
	return out
}

// Count is the total subscription count reported after each (un)subscribe
// reply and used to decide whether the connection is in subscribed mode.
func (s *Subscriptions) Count() int { return len(s.channels) + len(s.patterns) }
