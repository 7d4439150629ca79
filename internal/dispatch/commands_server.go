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

import "github.com/erigontech/keydb/internal/resp"

func registerServerCommands(e *Engine) {
	e.register("PING", 1, 2, cmdPing)
	e.register("ECHO", 2, 2, cmdEcho)
	e.register("QUIT", 1, 1, cmdQuit)
}

func cmdPing(e *Engine, c Conn, args [][]byte) resp.Value {
	if len(args) == 1 {
		return resp.Bulk(args[0])
	}
	return resp.Simple("PONG")
}

func cmdEcho(e *Engine, c Conn, args [][]byte) resp.Value {
	return resp.Bulk(args[0])
}

func cmdQuit(e *Engine, c Conn, args [][]byte) resp.Value {
	return resp.OK()
}
