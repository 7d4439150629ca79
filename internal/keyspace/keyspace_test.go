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

package keyspace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetExpiresPassively(t *testing.T) {
	ks := New()
	ks.Set("k", &Record{Kind: KindString, Str: []byte("v"), ExpiresAt: 100})
	require.Nil(t, ks.Get("k", 200), "key past its ExpiresAt must read as absent")
	require.Equal(t, 0, ks.ExpirableCount(), "passive expiry must drop the expirable entry too")
}

func TestGetTypedWrongType(t *testing.T) {
	ks := New()
	ks.Set("k", &Record{Kind: KindString, Str: []byte("v")})
	_, err := ks.GetTyped("k", KindList, 0)
	require.ErrorIs(t, err, ErrWrongType)
}

func TestVersionBumpsOnWrite(t *testing.T) {
	ks := New()
	v0 := ks.Version("k")
	ks.Set("k", &Record{Kind: KindString, Str: []byte("v")})
	require.Greater(t, ks.Version("k"), v0)

	v1 := ks.Version("k")
	ks.Delete("k")
	require.Greater(t, ks.Version("k"), v1, "delete must bump the version even though the key is now absent")
}

func TestExpireAndTTLMillis(t *testing.T) {
	ks := New()
	ks.Set("k", &Record{Kind: KindString, Str: []byte("v")})
	require.True(t, ks.Expire("k", 1000, 0))
	require.Equal(t, int64(1000), ks.TTLMillis("k", 0))
	require.Equal(t, int64(-2), ks.TTLMillis("missing", 0))
}

func TestSampleExpirableOnlyReturnsKeysWithTTL(t *testing.T) {
	ks := New()
	ks.Set("no-ttl", &Record{Kind: KindString, Str: []byte("v")})
	ks.Set("with-ttl", &Record{Kind: KindString, Str: []byte("v"), ExpiresAt: 100})
	require.Equal(t, 1, ks.ExpirableCount())
	sample := ks.SampleExpirable(10)
	require.Equal(t, []string{"with-ttl"}, sample)
}
