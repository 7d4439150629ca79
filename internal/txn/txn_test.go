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

package txn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiQueueExec(t *testing.T) {
	s := New()
	require.NoError(t, s.Multi())
	require.Error(t, s.Multi(), "nested MULTI must fail")

	require.NoError(t, s.Queue("SET", [][]byte{[]byte("k"), []byte("v")}, true))
	queued, err := s.Exec()
	require.NoError(t, err)
	require.Len(t, queued, 1)
	require.False(t, s.InMulti(), "EXEC must close the transaction")
}

func TestExecAbortsOnDirtyQueue(t *testing.T) {
	s := New()
	require.NoError(t, s.Multi())
	require.NoError(t, s.Queue("SET", nil, true))
	require.Error(t, s.Queue("NOTACOMMAND", nil, false))

	_, err := s.Exec()
	require.ErrorContains(t, err, "EXECABORT")
	require.False(t, s.InMulti())
}

func TestExecWithoutMulti(t *testing.T) {
	s := New()
	_, err := s.Exec()
	require.ErrorContains(t, err, "EXEC without MULTI")
}

func TestDiscardWithoutMulti(t *testing.T) {
	s := New()
	require.ErrorContains(t, s.Discard(), "DISCARD without MULTI")
}

func TestWatchInsideMultiRejected(t *testing.T) {
	s := New()
	require.NoError(t, s.Multi())
	require.Error(t, s.Watch("k", 1))
}

func TestCheckWatchedDetectsStaleVersion(t *testing.T) {
	s := New()
	require.NoError(t, s.Watch("k", 1))
	require.True(t, s.CheckWatched(func(string) uint64 { return 1 }))
	require.False(t, s.CheckWatched(func(string) uint64 { return 2 }))
}
