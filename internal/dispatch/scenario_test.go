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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/pubsub"
	"github.com/erigontech/keydb/internal/resp"
	"github.com/erigontech/keydb/internal/txn"
)

// scenarioFile holds one JSON fixture of named scenarios, each a fixed
// sequence of commands run in order against one fresh engine. A scenario
// plays out like a MULTI/EXEC block without the transaction framing: each
// step's reply is checked before the next step runs, the way a state test's
// pre/post pair is checked per subtest rather than all at once.
type scenarioFile struct {
	Scenarios []scenario `json:"scenarios"`
}

type scenario struct {
	Name  string         `json:"name"`
	Steps []scenarioStep `json:"steps"`
}

type scenarioStep struct {
	// Conn names which connection issues this step, for scenarios that need
	// more than one (e.g. WATCH invalidated by a write from elsewhere).
	// Steps that omit it share one default connection.
	Conn string `json:"conn"`
	// Command is the full argv, command name included, e.g. ["SET", "k", "v"].
	Command []string `json:"command"`
	// Want, if non-nil, is the exact rendered reply expected for this step
	// (see renderReply). Omit it for steps whose reply is non-deterministic
	// (e.g. an XADD with an auto-generated id) or uninteresting, and only
	// assert on a later step instead.
	Want *string `json:"want"`
	// WantErr, if set, is a substring the error reply must contain.
	WantErr string `json:"wantErr"`
}

// fakeConn is the minimal dispatch.Conn a scenario needs: no real network
// connection, no pub/sub delivery, just enough bookkeeping for MULTI/WATCH
// and SUBSCRIBE reply counting to work the same as a real session.
type fakeConn struct {
	id     string
	txn    *txn.State
	subs   *pubsub.Subscriptions
	pushed []resp.Value
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, txn: txn.New(), subs: pubsub.NewSubscriptions()}
}

func (f *fakeConn) ID() string                  { return f.id }
func (f *fakeConn) Txn() *txn.State             { return f.txn }
func (f *fakeConn) Subs() *pubsub.Subscriptions { return f.subs }
func (f *fakeConn) Push(v resp.Value)           { f.pushed = append(f.pushed, v) }
func (f *fakeConn) Deliver(string, []byte)       {}
func (f *fakeConn) DeliverPattern(string, string, []byte) {}

// renderReply flattens a reply into a single comparable string: scalars via
// Value.String, arrays as bracketed comma-joined elements, and the two
// distinct RESP null shapes as distinguishable markers — a test asserting
// "<nil-bulk>" must fail if the handler under test starts replying with a
// null array (or vice versa), since real clients distinguish $-1 from *-1.
func renderReply(v resp.Value) string {
	if v.Null {
		switch v.Kind {
		case resp.KindArray:
			return "<nil-array>"
		default:
			return "<nil-bulk>"
		}
	}
	switch v.Kind {
	case resp.KindArray:
		out := "["
		for i, item := range v.Array {
			if i > 0 {
				out += ","
			}
			out += renderReply(item)
		}
		return out + "]"
	default:
		return v.String()
	}
}

func runScenarioFile(t *testing.T, raw string) {
	t.Helper()
	var sf scenarioFile
	require.NoError(t, json.Unmarshal([]byte(raw), &sf))

	for _, sc := range sf.Scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			ks := keyspace.New()
			hub := pubsub.New()
			engine := New(ks, hub, zap.NewNop().Sugar())
			conns := map[string]*fakeConn{}
			connFor := func(name string) *fakeConn {
				if name == "" {
					name = "default"
				}
				if c, ok := conns[name]; ok {
					return c
				}
				c := newFakeConn(name)
				conns[name] = c
				return c
			}

			for i, step := range sc.Steps {
				require.NotEmpty(t, step.Command, "step %d: empty command", i)
				argv := make([][]byte, len(step.Command))
				for j, a := range step.Command {
					argv[j] = []byte(a)
				}
				conn := connFor(step.Conn)
				reply := engine.Execute(conn, step.Command[0], argv[1:])

				if step.WantErr != "" {
					require.True(t, reply.IsError(), "step %d: want error, got %+v", i, reply)
					require.Contains(t, reply.String(), step.WantErr, "step %d", i)
					continue
				}
				if step.Want != nil {
					require.Equal(t, *step.Want, renderReply(reply), "step %d: %v", i, step.Command)
				}
			}
		})
	}
}

func TestScenarios(t *testing.T) {
	runScenarioFile(t, scenarioFixture)
}

// scenarioFixture is the fixture set itself, inlined rather than read from
// disk so the test package has no runtime dependency on a working
// directory. New scenarios append here.
const scenarioFixture = `
{
  "scenarios": [
    {
      "name": "string set get incr",
      "steps": [
        {"command": ["SET", "counter", "10"], "want": "OK"},
        {"command": ["INCR", "counter"], "want": "11"},
        {"command": ["GET", "counter"], "want": "11"},
        {"command": ["LPUSH", "counter", "x"], "wantErr": "WRONGTYPE"}
      ]
    },
    {
      "name": "expire makes key disappear",
      "steps": [
        {"command": ["SET", "temp", "v"], "want": "OK"},
        {"command": ["PEXPIRE", "temp", "0"], "want": "1"},
        {"command": ["GET", "temp"], "want": "<nil-bulk>"}
      ]
    },
    {
      "name": "multi exec runs queued commands atomically",
      "steps": [
        {"command": ["MULTI"], "want": "OK"},
        {"command": ["SET", "a", "1"], "want": "QUEUED"},
        {"command": ["INCR", "a"], "want": "QUEUED"},
        {"command": ["EXEC"], "want": "[OK,2]"}
      ]
    },
    {
      "name": "exec without multi is an error",
      "steps": [
        {"command": ["EXEC"], "wantErr": "ERR EXEC without MULTI"}
      ]
    },
    {
      "name": "discard without multi is an error",
      "steps": [
        {"command": ["DISCARD"], "wantErr": "ERR DISCARD without MULTI"}
      ]
    },
    {
      "name": "queueing an unknown command aborts the transaction",
      "steps": [
        {"command": ["MULTI"], "want": "OK"},
        {"command": ["SET", "a", "1"], "want": "QUEUED"},
        {"command": ["NOTACOMMAND"], "wantErr": "ERR unknown command"},
        {"command": ["EXEC"], "wantErr": "EXECABORT"}
      ]
    },
    {
      "name": "list push and range",
      "steps": [
        {"command": ["RPUSH", "mylist", "a", "b", "c"], "want": "3"},
        {"command": ["LRANGE", "mylist", "0", "-1"], "want": "[a,b,c]"},
        {"command": ["LPOP", "mylist"], "want": "a"}
      ]
    },
    {
      "name": "sorted set score ordering",
      "steps": [
        {"command": ["ZADD", "z", "1", "a", "2", "b", "3", "c"], "want": "3"},
        {"command": ["ZRANGE", "z", "0", "-1"], "want": "[a,b,c]"},
        {"command": ["ZSCORE", "z", "b"], "want": "2"}
      ]
    },
    {
      "name": "bloom filter reservation and membership",
      "steps": [
        {"command": ["BF.RESERVE", "bf", "0.01", "100"], "want": "OK"},
        {"command": ["BF.ADD", "bf", "hello"], "want": "1"},
        {"command": ["BF.EXISTS", "bf", "hello"], "want": "1"},
        {"command": ["BF.EXISTS", "bf", "world"], "want": "0"}
      ]
    },
    {
      "name": "vector search rejects mixed limit forms",
      "steps": [
        {"command": ["VSET", "v:1", "1", "0"], "want": "OK"},
        {"command": ["VSEARCH", "v:", "LIMIT", "0", "1", "COSINE", "LIMIT", "1", "0"], "wantErr": "ERR syntax error"}
      ]
    },
    {
      "name": "vector search returns a flat key/score array",
      "steps": [
        {"command": ["VSET", "emb:a", "1", "0"], "want": "OK"},
        {"command": ["VSET", "emb:b", "0", "1"], "want": "OK"},
        {"command": ["VSEARCH", "emb:", "2", "COSINE", "1", "0"], "want": "[emb:a,1,emb:b,0]"}
      ]
    },
    {
      "name": "watch aborts exec when another connection wrote the key first",
      "steps": [
        {"conn": "a", "command": ["SET", "shared", "1"], "want": "OK"},
        {"conn": "a", "command": ["WATCH", "shared"], "want": "OK"},
        {"conn": "b", "command": ["SET", "shared", "2"], "want": "OK"},
        {"conn": "a", "command": ["MULTI"], "want": "OK"},
        {"conn": "a", "command": ["GET", "shared"], "want": "QUEUED"},
        {"conn": "a", "command": ["EXEC"], "want": "<nil-bulk>"}
      ]
    }
  ]
}
`
