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

func registerGenericCommands(e *Engine) {
	e.register("DEL", 2, -1, cmdDel)
	e.register("EXISTS", 2, -1, cmdExists)
	e.register("EXPIRE", 3, 3, cmdExpire)
	e.register("PEXPIRE", 3, 3, cmdPexpire)
	e.register("TTL", 2, 2, cmdTTL)
	e.register("PTTL", 2, 2, cmdPTTL)
}

func cmdDel(e *Engine, c Conn, args [][]byte) resp.Value {
	keys := bs(args)
	return resp.Int(int64(e.ks.Delete(keys...)))
}

func cmdExists(e *Engine, c Conn, args [][]byte) resp.Value {
	keys := bs(args)
	return resp.Int(int64(e.ks.Exists(nowMs(), keys...)))
}

func cmdExpire(e *Engine, c Conn, args [][]byte) resp.Value {
	secs, err := parseInt(args[1])
	if err != nil {
		return resp.AsError(err)
	}
	now := nowMs()
	ok := e.ks.Expire(string(args[0]), now+secs*1000, now)
	return resp.Int(boolInt(ok))
}

func cmdPexpire(e *Engine, c Conn, args [][]byte) resp.Value {
	ms, err := parseInt(args[1])
	if err != nil {
		return resp.AsError(err)
	}
	now := nowMs()
	ok := e.ks.Expire(string(args[0]), now+ms, now)
	return resp.Int(boolInt(ok))
}

func cmdTTL(e *Engine, c Conn, args [][]byte) resp.Value {
	ms := e.ks.TTLMillis(string(args[0]), nowMs())
	if ms < 0 {
		return resp.Int(ms)
	}
	return resp.Int(ms / 1000)
}

func cmdPTTL(e *Engine, c Conn, args [][]byte) resp.Value {
	return resp.Int(e.ks.TTLMillis(string(args[0]), nowMs()))
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
