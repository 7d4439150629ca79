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

package dispatch

import (
	"github.com/erigontech/keydb/internal/resp"
)

func registerTxnCommands(e *Engine) {
	e.register("MULTI", 1, 1, cmdMulti)
	e.register("EXEC", 1, 1, cmdExec)
	e.register("DISCARD", 1, 1, cmdDiscard)
	e.register("WATCH", 2, -1, cmdWatch)
	e.register("UNWATCH", 1, 1, cmdUnwatch)
}

func cmdMulti(e *Engine, c Conn, args [][]byte) resp.Value {
	if err := c.Txn().Multi(); err != nil {
		return resp.AsError(err)
	}
	return resp.OK()
}

// cmdExec runs every queued command under the keyspace lock already held by
// Execute, checking watched keys first. A failed watch or a dirty queue
// (a command that failed validation at queue time) both abort without
// running anything queued.
func cmdExec(e *Engine, c Conn, args [][]byte) resp.Value {
	watchOK := c.Txn().CheckWatched(e.ks.Version)
	queued, err := c.Txn().Exec()
	if err != nil {
		return resp.AsError(err)
	}
	if !watchOK {
		return resp.NullBulk()
	}
	out := make([]resp.Value, len(queued))
	for i, qc := range queued {
		out[i] = e.invoke(c, qc.Name, qc.Args)
	}
	return resp.ArraySlice(out)
}

func cmdDiscard(e *Engine, c Conn, args [][]byte) resp.Value {
	if err := c.Txn().Discard(); err != nil {
		return resp.AsError(err)
	}
	return resp.OK()
}

func cmdWatch(e *Engine, c Conn, args [][]byte) resp.Value {
	for _, a := range args {
		key := string(a)
		if err := c.Txn().Watch(key, e.ks.Version(key)); err != nil {
			return resp.AsError(err)
		}
	}
	return resp.OK()
}

func cmdUnwatch(e *Engine, c Conn, args [][]byte) resp.Value {
	c.Txn().Unwatch()
	return resp.OK()
}
