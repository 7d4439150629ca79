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

// Package server wires the keyspace, dispatcher, pub/sub hub and reaper
// together behind a TCP accept loop, and supervises their goroutines so one
// failure tears the whole process down cleanly.
package server

import (
	"context"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/keydb/internal/dispatch"
	"github.com/erigontech/keydb/internal/expiry"
	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/pubsub"
	"github.com/erigontech/keydb/internal/session"
)

// Config holds the knobs main.go exposes as CLI flags.
type Config struct {
	Addr           string
	Port           int
	ReaperInterval time.Duration
	ReaperSampleN  int
}

// Server owns the listener and the shared engine state for its lifetime.
type Server struct {
	cfg    Config
	log    *zap.SugaredLogger
	ks     *keyspace.Keyspace
	hub    *pubsub.Hub
	engine *dispatch.Engine
	reaper *expiry.Reaper
}

func New(cfg Config, log *zap.SugaredLogger) *Server {
	ks := keyspace.New()
	hub := pubsub.New()
	return &Server{
		cfg:    cfg,
		log:    log,
		ks:     ks,
		hub:    hub,
		engine: dispatch.New(ks, hub, log),
		reaper: expiry.New(ks, log, cfg.ReaperSampleN, cfg.ReaperInterval),
	}
}

// Run listens and serves until ctx is canceled, then waits for the accept
// loop and the reaper to stop before returning. Connection goroutines are
// not waited for; each closes itself when it sees ctx canceled.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Addr, strconv.Itoa(s.cfg.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	s.log.Infow("listening", "addr", addr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.reaper.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		return s.acceptLoop(gctx, ln)
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		sess := session.New(conn, s.log)
		s.log.Debugw("connection accepted", "conn_id", sess.ID(), "remote", conn.RemoteAddr())
		go sess.Run(ctx, s.engine, s.hub)
	}
}
