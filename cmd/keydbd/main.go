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

// Command keydbd runs the in-memory RESP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erigontech/keydb/internal/obslog"
	"github.com/erigontech/keydb/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr           string
		port           int
		logLevel       string
		devLog         bool
		reaperInterval time.Duration
		reaperSample   int
	)

	cmd := &cobra.Command{
		Use:   "keydbd",
		Short: "keydbd is an in-memory RESP key-value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := obslog.New(logLevel, devLog)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			srv := server.New(server.Config{
				Addr:           addr,
				Port:           port,
				ReaperInterval: reaperInterval,
				ReaperSampleN:  reaperSample,
			}, log)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return srv.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1", "bind address")
	flags.IntVar(&port, "port", 6399, "listen port")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&devLog, "dev", false, "use human-readable development logging")
	flags.DurationVar(&reaperInterval, "reaper-interval", 100*time.Millisecond, "base interval between active expiry sweeps")
	flags.IntVar(&reaperSample, "reaper-sample", 20, "keys sampled per active expiry sweep")

	return cmd
}
