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

package resp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCommandArray(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
	args, err := ReadCommand(r)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("GET"), []byte("foo")}, args)
}

func TestReadCommandInline(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("PING\r\n"))
	args, err := ReadCommand(r)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("PING")}, args)
}

func TestWriteValueRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, WriteValue(w, Array_(Int(1), BulkString("hi"), NullBulk())))
	require.NoError(t, w.Flush())
	require.Equal(t, "*3\r\n:1\r\n$2\r\nhi\r\n$-1\r\n", buf.String())
}

func TestWireErrorRendering(t *testing.T) {
	we := NewWireError("ERR custom message")
	require.Equal(t, "ERR custom message", AsError(we).String())
	require.Equal(t, "ERR boom", AsError(errPlain("boom")).String())
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
