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

// Package expiry implements the background active-expiry sweep. Passive
// expiry (reap-on-access) lives directly in internal/keyspace; this package
// is purely the periodic sampler described in spec.md 4.I.
package expiry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/erigontech/keydb/internal/keyspace"
)

// activeExpiredThreshold mirrors the standard "more than a quarter of the
// sample was already expired" trigger: above it the server is treated as
// busy expiring and the reaper keeps sweeping without backing off.
const activeExpiredThreshold = 0.25

// busyRateLimit caps how often sweepOnce can run back-to-back while busy,
// so an expiry storm can't pin a CPU core sampling the same small keyspace.
const busyRateLimit = rate.Limit(200)

// Reaper periodically samples keys with a non-null expiry and removes the
// ones that have passed it, adapting its own pace to the fraction it finds
// expired each round.
type Reaper struct {
	ks      *keyspace.Keyspace
	log     *zap.SugaredLogger
	sampleN int

	// baseInterval seeds the idle backoff curve: the first gap after a sweep
	// that expires less than activeExpiredThreshold of its sample, doubling
	// on each further such sweep up to 32 times baseInterval.
	baseInterval time.Duration
}

func New(ks *keyspace.Keyspace, log *zap.SugaredLogger, sampleN int, baseInterval time.Duration) *Reaper {
	return &Reaper{ks: ks, log: log, sampleN: sampleN, baseInterval: baseInterval}
}

// Run sweeps until ctx is canceled, returning nil on cooperative shutdown.
func (r *Reaper) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(busyRateLimit, 1)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.baseInterval
	bo.Multiplier = 2
	bo.MaxInterval = r.baseInterval * 32
	bo.MaxElapsedTime = 0

	wait := bo.NextBackOff()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		if frac := r.sweepOnce(); frac >= activeExpiredThreshold {
			bo.Reset()
			wait = 0
			continue
		}
		wait = bo.NextBackOff()
	}
}

// sweepOnce samples up to sampleN expirable keys and reaps the expired
// ones, returning the fraction of the sample that was removed.
func (r *Reaper) sweepOnce() float64 {
	r.ks.Lock()
	defer r.ks.Unlock()

	keys := r.ks.SampleExpirable(r.sampleN)
	if len(keys) == 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	removed := 0
	for _, k := range keys {
		if r.ks.ReapExpiredNow(k, now) {
			removed++
		}
	}
	if removed > 0 {
		r.log.Debugw("expiry sweep", "sampled", len(keys), "removed", removed)
	}
	return float64(removed) / float64(len(keys))
}
