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

// Package session implements the per-connection state machine: RESP framing
// over one net.Conn, the command read loop, and the outbound delivery path
// shared between synchronous command replies and asynchronous pub/sub
// pushes.
package session

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erigontech/keydb/internal/dispatch"
	"github.com/erigontech/keydb/internal/pubsub"
	"github.com/erigontech/keydb/internal/resp"
	"github.com/erigontech/keydb/internal/txn"
)

// outboundQueueDepth bounds the per-connection pub/sub delivery queue. A
// connection that can't drain it is treated as slow and dropped rather than
// stalling whichever connection is publishing.
const outboundQueueDepth = 128

// Session is one client connection. It implements dispatch.Conn.
type Session struct {
	id   string
	conn net.Conn
	log  *zap.SugaredLogger

	reader *bufio.Reader

	txnState *txn.State
	subs     *pubsub.Subscriptions

	out       chan resp.Value
	done      chan struct{}
	closeOnce sync.Once
}

func New(conn net.Conn, log *zap.SugaredLogger) *Session {
	return &Session{
		id:       uuid.NewString(),
		conn:     conn,
		log:      log,
		reader:   bufio.NewReader(conn),
		txnState: txn.New(),
		subs:     pubsub.NewSubscriptions(),
		out:      make(chan resp.Value, outboundQueueDepth),
		done:     make(chan struct{}),
	}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Txn() *txn.State             { return s.txnState }
func (s *Session) Subs() *pubsub.Subscriptions { return s.subs }

// Push enqueues a reply frame, blocking until there's room. Only the
// session's own command loop calls this (directly, or via a dispatch
// handler running synchronously on that loop's goroutine), so it can never
// be starved by another connection's traffic.
func (s *Session) Push(v resp.Value) {
	select {
	case s.out <- v:
	case <-s.done:
	}
}

// Deliver implements pubsub.Subscriber for an exact channel match.
func (s *Session) Deliver(channel string, payload []byte) {
	s.pushOrDrop(resp.Array_(resp.BulkString("message"), resp.BulkString(channel), resp.Bulk(payload)))
}

// DeliverPattern implements pubsub.Subscriber for a pattern match.
func (s *Session) DeliverPattern(pattern, channel string, payload []byte) {
	s.pushOrDrop(resp.Array_(resp.BulkString("pmessage"), resp.BulkString(pattern), resp.BulkString(channel), resp.Bulk(payload)))
}

// pushOrDrop never blocks: a full queue means this connection isn't
// draining its pub/sub feed, so it is closed rather than made to stall the
// publisher.
func (s *Session) pushOrDrop(v resp.Value) {
	select {
	case s.out <- v:
	default:
		s.Close()
	}
}

// Close terminates the connection and unblocks the write loop and any
// pending Push. Safe to call more than once and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Run drives one connection to completion: the write loop runs on its own
// goroutine for the lifetime of the session, while this goroutine reads and
// dispatches commands until the connection closes or ctx is canceled.
func (s *Session) Run(ctx context.Context, engine *dispatch.Engine, hub *pubsub.Hub) {
	defer s.Close()
	defer hub.UnsubscribeAll(s)

	go s.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	for {
		args, err := resp.ReadCommand(s.reader)
		if err != nil {
			return
		}
		if len(args) == 0 {
			continue
		}
		name := string(args[0])
		reply := engine.Execute(s, name, args[1:])
		if !reply.IsZero() {
			s.Push(reply)
		}
		if strings.EqualFold(name, "QUIT") {
			return
		}
	}
}

// writeLoop is the sole writer of the connection's bufio.Writer, draining
// s.out and coalescing whatever has queued up before each flush.
func (s *Session) writeLoop() {
	w := bufio.NewWriter(s.conn)
	for {
		select {
		case v := <-s.out:
			if err := s.drainAndWrite(w, v); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) drainAndWrite(w *bufio.Writer, first resp.Value) error {
	if err := resp.WriteValue(w, first); err != nil {
		return err
	}
	for {
		select {
		case v := <-s.out:
			if err := resp.WriteValue(w, v); err != nil {
				return err
			}
			continue
		default:
		}
		break
	}
	return w.Flush()
}
