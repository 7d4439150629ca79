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

// Package txn implements the per-connection MULTI/EXEC/DISCARD/WATCH state
// machine layered on top of the keyspace's version counters.
package txn

import (
	"github.com/erigontech/keydb/internal/resp"
)

// QueuedCommand is one command queued between MULTI and EXEC.
type QueuedCommand struct {
	Name string
	Args [][]byte
}

// watchedKey pairs a key with the version it had when WATCH was issued.
type watchedKey struct {
	key     string
	version uint64
}

// State is one connection's transaction context. It holds no reference to
// the keyspace: version numbers are snapshotted at WATCH time and compared
// again at EXEC time by whoever owns the lock.
type State struct {
	inMulti bool
	dirty   bool // set once a queued command fails arity/shape validation
	queue   []QueuedCommand
	watched []watchedKey
}

func New() *State { return &State{} }

func (s *State) InMulti() bool { return s.inMulti }

func (s *State) Watching() bool { return len(s.watched) > 0 }

// Multi begins queuing. Returns an error if a transaction is already open.
func (s *State) Multi() error {
	if s.inMulti {
		return errNestedMulti
	}
	s.inMulti = true
	s.dirty = false
	s.queue = nil
	return nil
}

// Watch records key's current version for later comparison by CheckWatched. It is
// only valid outside MULTI.
func (s *State) Watch(key string, version uint64) error {
	if s.inMulti {
		return errWatchInsideMulti
	}
	s.watched = append(s.watched, watchedKey{key: key, version: version})
	return nil
}

// Unwatch forgets every watched key; called by UNWATCH and after EXEC/DISCARD.
func (s *State) Unwatch() {
	s.watched = nil
}

// Queue appends name/args to the open transaction, or reports dirty=true if
// name/arity is invalid (EXECABORT on the eventual EXEC). valid is
// supplied by the dispatcher so txn need not know the command table.
func (s *State) Queue(name string, args [][]byte, valid bool) error {
	if !s.inMulti {
		return errNoMulti
	}
	if !valid {
		s.dirty = true
		return errBadQueued
	}
	s.queue = append(s.queue, QueuedCommand{Name: name, Args: args})
	return nil
}

// Dirty reports whether a queued command already failed validation.
func (s *State) Dirty() bool { return s.dirty }

// CheckWatched reports whether every watched key still matches its
// snapshotted version. versionOf is called under the keyspace lock.
func (s *State) CheckWatched(versionOf func(key string) uint64) bool {
	for _, w := range s.watched {
		if versionOf(w.key) != w.version {
			return false
		}
	}
	return true
}

// Exec drains the queue (leaving the transaction closed) and clears watches.
// It does not execute anything itself: the dispatcher calls this to obtain
// the command list, runs each one holding the keyspace lock, and builds the
// *resp.Value array reply. If a queued command previously failed validation,
// Exec reports errExecAbort instead of draining the queue for execution.
func (s *State) Exec() ([]QueuedCommand, error) {
	if !s.inMulti {
		return nil, errNoMulti
	}
	if s.dirty {
		s.reset()
		return nil, errExecAbort
	}
	q := s.queue
	s.reset()
	return q, nil
}

// Discard drops the queue and any watches without executing anything.
func (s *State) Discard() error {
	if !s.inMulti {
		return errNoMultiDiscard
	}
	s.reset()
	return nil
}

func (s *State) reset() {
	s.inMulti = false
	s.dirty = false
	s.queue = nil
	s.watched = nil
}

var (
	errNestedMulti      = resp.NewWireError("ERR MULTI calls can not be nested")
	errWatchInsideMulti = resp.NewWireError("ERR WATCH inside MULTI is not allowed")
	errNoMulti          = resp.NewWireError("ERR EXEC without MULTI")
	errNoMultiDiscard   = resp.NewWireError("ERR DISCARD without MULTI")
	errBadQueued        = resp.NewWireError("ERR wrong number of arguments for queued command")
	errExecAbort        = resp.NewWireError("EXECABORT Transaction discarded because of previous errors.")
)
