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

func registerPubSubCommands(e *Engine) {
	e.register("PUBLISH", 3, 3, cmdPublish)
	e.register("SUBSCRIBE", 2, -1, cmdSubscribe)
	e.register("UNSUBSCRIBE", 1, -1, cmdUnsubscribe)
	e.register("PSUBSCRIBE", 2, -1, cmdPSubscribe)
	e.register("PUNSUBSCRIBE", 1, -1, cmdPUnsubscribe)
	e.register("PUBSUB", 2, -1, cmdPubSub)
}

func cmdPublish(e *Engine, c Conn, args [][]byte) resp.Value {
	n := e.hub.Publish(string(args[0]), args[1])
	return resp.Int(int64(n))
}

// subscribeReply builds one ["subscribe"/"psubscribe", name, total] frame.
func subscribeReply(kind, name string, total int) resp.Value {
	return resp.Array_(resp.BulkString(kind), resp.BulkString(name), resp.Int(int64(total)))
}

func cmdSubscribe(e *Engine, c Conn, args [][]byte) resp.Value {
	for _, a := range args {
		ch := string(a)
		e.hub.Subscribe(c, ch)
		c.Subs().AddChannel(ch)
		c.Push(subscribeReply("subscribe", ch, c.Subs().Count()))
	}
	return resp.Value{}
}

func cmdUnsubscribe(e *Engine, c Conn, args [][]byte) resp.Value {
	channels := args
	if len(channels) == 0 {
		channels = make([][]byte, 0, len(c.Subs().Channels()))
		for _, ch := range c.Subs().Channels() {
			channels = append(channels, []byte(ch))
		}
	}
	if len(channels) == 0 {
		c.Push(subscribeReply("unsubscribe", "", c.Subs().Count()))
		return resp.Value{}
	}
	for _, a := range channels {
		ch := string(a)
		e.hub.Unsubscribe(c, ch)
		c.Subs().RemoveChannel(ch)
		c.Push(subscribeReply("unsubscribe", ch, c.Subs().Count()))
	}
	return resp.Value{}
}

func cmdPSubscribe(e *Engine, c Conn, args [][]byte) resp.Value {
	for _, a := range args {
		pat := string(a)
		e.hub.PSubscribe(c, pat)
		c.Subs().AddPattern(pat)
		c.Push(subscribeReply("psubscribe", pat, c.Subs().Count()))
	}
	return resp.Value{}
}

func cmdPUnsubscribe(e *Engine, c Conn, args [][]byte) resp.Value {
	patterns := args
	if len(patterns) == 0 {
		patterns = make([][]byte, 0, len(c.Subs().Patterns()))
		for _, p := range c.Subs().Patterns() {
			patterns = append(patterns, []byte(p))
		}
	}
	if len(patterns) == 0 {
		c.Push(subscribeReply("punsubscribe", "", c.Subs().Count()))
		return resp.Value{}
	}
	for _, a := range patterns {
		pat := string(a)
		e.hub.PUnsubscribe(c, pat)
		c.Subs().RemovePattern(pat)
		c.Push(subscribeReply("punsubscribe", pat, c.Subs().Count()))
	}
	return resp.Value{}
}

func cmdPubSub(e *Engine, c Conn, args [][]byte) resp.Value {
	switch {
	case eqFold(args[0], "CHANNELS"):
		pattern := ""
		if len(args) == 2 {
			pattern = string(args[1])
		}
		chans := e.hub.Channels(pattern)
		out := make([]resp.Value, len(chans))
		for i, ch := range chans {
			out[i] = resp.BulkString(ch)
		}
		return resp.ArraySlice(out)
	case eqFold(args[0], "NUMSUB"):
		names := args[1:]
		counts := e.hub.NumSub(bs(names))
		out := make([]resp.Value, 0, len(names)*2)
		for i, n := range names {
			out = append(out, resp.BulkString(string(n)), resp.Int(int64(counts[i])))
		}
		return resp.ArraySlice(out)
	case eqFold(args[0], "NUMPAT"):
		return resp.Int(int64(e.hub.NumPat()))
	default:
		return resp.AsError(errSyntax)
	}
}
