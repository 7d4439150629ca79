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

// Package dispatch holds the command table and every command handler: name
// resolution, arity/type/expiry preflight, and the per-category execution
// logic that reads and mutates the keyspace, stream engine, pub/sub bus and
// transaction controller.
package dispatch

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/pubsub"
	"github.com/erigontech/keydb/internal/resp"
	"github.com/erigontech/keydb/internal/txn"
)

// Conn is what the dispatcher needs from a connection; internal/session
// implements it over the real network connection.
type Conn interface {
	ID() string
	Txn() *txn.State
	Subs() *pubsub.Subscriptions
	// Push writes an extra reply frame to this connection immediately,
	// outside the handler's own return value. SUBSCRIBE and friends use it
	// to emit one confirmation frame per channel/pattern; a handler that
	// pushes every frame itself returns the zero Value, which the session
	// write loop recognizes as "nothing further to write."
	Push(v resp.Value)
	pubsub.Subscriber
}

// handlerFunc executes one command. It assumes the engine's keyspace lock
// is already held by the caller (Execute for a standalone command, or the
// EXEC handler for a queued batch) — handlers never lock on entry, mirroring
// Keyspace's own never-self-lock contract so that EXEC can run an entire
// queue as one atomic block.
type handlerFunc func(e *Engine, c Conn, args [][]byte) resp.Value

type commandSpec struct {
	name    string
	minArgs int // total argv length including the command name itself
	maxArgs int // -1 = unbounded
	handler handlerFunc
}

// subscribedModeAllowed lists the commands a connection holding at least
// one pub/sub subscription may still issue.
var subscribedModeAllowed = map[string]bool{
	"SUBSCRIBE": true, "UNSUBSCRIBE": true,
	"PSUBSCRIBE": true, "PUNSUBSCRIBE": true,
	"PING": true, "QUIT": true,
}

// Engine is the shared, process-wide command execution context.
type Engine struct {
	ks  *keyspace.Keyspace
	hub *pubsub.Hub
	log *zap.SugaredLogger

	table map[string]*commandSpec
}

func New(ks *keyspace.Keyspace, hub *pubsub.Hub, log *zap.SugaredLogger) *Engine {
	e := &Engine{ks: ks, hub: hub, log: log, table: make(map[string]*commandSpec)}
	e.registerAll()
	return e
}

func (e *Engine) Keyspace() *keyspace.Keyspace { return e.ks }
func (e *Engine) Hub() *pubsub.Hub             { return e.hub }

func (e *Engine) register(name string, minArgs, maxArgs int, h handlerFunc) {
	e.table[name] = &commandSpec{name: name, minArgs: minArgs, maxArgs: maxArgs, handler: h}
}

// registerAll wires every command category into the table. Order has no
// runtime effect; it mirrors the grouping the rest of the package is split
// into, one file per category.
func (e *Engine) registerAll() {
	registerServerCommands(e)
	registerGenericCommands(e)
	registerStringCommands(e)
	registerBitCommands(e)
	registerHashCommands(e)
	registerListCommands(e)
	registerSetCommands(e)
	registerZSetCommands(e)
	registerStreamCommands(e)
	registerHLLCommands(e)
	registerBloomCommands(e)
	registerCuckooCommands(e)
	registerTDigestCommands(e)
	registerTopKCommands(e)
	registerTimeSeriesCommands(e)
	registerVectorCommands(e)
	registerPubSubCommands(e)
	registerTxnCommands(e)
}

func nowMs() int64 { return time.Now().UnixMilli() }

func arityOK(spec *commandSpec, argc int) bool {
	if argc < spec.minArgs {
		return false
	}
	if spec.maxArgs >= 0 && argc > spec.maxArgs {
		return false
	}
	return true
}

// validate reports whether name/args would be accepted by the dispatcher —
// used by MULTI's queueing path to decide QUEUED vs. an immediate error
// without running anything.
func (e *Engine) validate(name string, args [][]byte) (*commandSpec, error) {
	spec, ok := e.table[strings.ToUpper(name)]
	if !ok {
		return nil, resp.NewWireError("ERR unknown command '" + name + "'")
	}
	if !arityOK(spec, len(args)+1) {
		return nil, resp.NewWireError("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
	}
	return spec, nil
}

// invoke runs name/args assuming the keyspace lock is already held. It is
// the path EXEC uses for each queued command, and the path Execute uses for
// a single standalone command after taking the lock.
func (e *Engine) invoke(c Conn, name string, args [][]byte) resp.Value {
	spec, err := e.validate(name, args)
	if err != nil {
		return resp.AsError(err)
	}
	return spec.handler(e, c, args)
}

// Execute is the top-level entry point: one command arrives from the wire,
// already split into name + args by the caller. It handles subscribed-mode
// restriction and MULTI queueing before taking the keyspace lock for actual
// execution.
func (e *Engine) Execute(c Conn, name string, args [][]byte) resp.Value {
	upper := strings.ToUpper(name)

	if c.Subs().Count() > 0 && !subscribedModeAllowed[upper] {
		return resp.Err("ERR Can't execute '" + strings.ToLower(name) + "': only (P)SUBSCRIBE / (P)UNSUBSCRIBE / PING / QUIT are allowed in this context")
	}

	if c.Txn().InMulti() {
		switch upper {
		case "EXEC", "DISCARD", "MULTI", "WATCH":
			// fall through to normal dispatch below
		default:
			_, verr := e.validate(name, args)
			if qerr := c.Txn().Queue(upper, args, verr == nil); qerr != nil {
				if verr != nil {
					return resp.AsError(verr)
				}
				return resp.AsError(qerr)
			}
			return resp.Simple("QUEUED")
		}
	}

	e.ks.Lock()
	defer e.ks.Unlock()
	return e.invoke(c, upper, args)
}
