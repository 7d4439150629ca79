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
	"strconv"
	"strings"
	"time"

	"github.com/erigontech/keydb/internal/keyspace"
	"github.com/erigontech/keydb/internal/resp"
	"github.com/erigontech/keydb/internal/stream"
)

var (
	errBusyGroup  = resp.NewWireError("BUSYGROUP Consumer Group name already exists")
	errNoSuchKey  = resp.NewWireError("ERR The XGROUP subcommand requires the key to exist")
	errNoGroup    = resp.NewWireError("NOGROUP No such consumer group")
	errBadStreamID = resp.NewWireError("ERR Invalid stream ID specified as stream command argument")
)

func registerStreamCommands(e *Engine) {
	e.register("XADD", 5, -1, cmdXAdd)
	e.register("XLEN", 2, 2, cmdXLen)
	e.register("XDEL", 3, -1, cmdXDel)
	e.register("XTRIM", 4, 4, cmdXTrim)
	e.register("XRANGE", 4, 6, cmdXRange)
	e.register("XREVRANGE", 4, 6, cmdXRevRange)
	e.register("XREAD", 4, -1, cmdXRead)
	e.register("XSETID", 3, 3, cmdXSetID)
	e.register("XGROUP", 3, -1, cmdXGroup)
	e.register("XREADGROUP", 7, -1, cmdXReadGroup)
	e.register("XACK", 4, -1, cmdXAck)
	e.register("XPENDING", 3, -1, cmdXPending)
	e.register("XCLAIM", 6, -1, cmdXClaim)
	e.register("XINFO", 3, 4, cmdXInfo)
}

func entryToValue(e stream.Entry) resp.Value {
	fields := make([]resp.Value, 0, len(e.Fields)*2)
	for _, f := range e.Fields {
		fields = append(fields, resp.Bulk(f.Name), resp.Bulk(f.Value))
	}
	return resp.Array_(resp.BulkString(e.ID.String()), resp.ArraySlice(fields))
}

func entriesToValue(es []stream.Entry) resp.Value {
	out := make([]resp.Value, len(es))
	for i, e := range es {
		out[i] = entryToValue(e)
	}
	return resp.ArraySlice(out)
}

func cmdXAdd(e *Engine, c Conn, args [][]byte) resp.Value {
	key := string(args[0])
	idTok := string(args[1])
	fieldArgs := args[2:]
	if len(fieldArgs)%2 != 0 {
		return resp.AsError(errSyntax)
	}
	rec, err := e.ks.GetOrCreate(key, keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	var id stream.ID
	if idTok == "*" {
		id = stream.NextID(uint64(nowMs()), rec.Stream.LastGeneratedID())
	} else {
		parsed, perr := stream.ParseID(idTok, false)
		if perr != nil {
			return resp.AsError(errBadStreamID)
		}
		if !rec.Stream.LastGeneratedID().Less(parsed) {
			return resp.AsError(resp.NewWireError("ERR The ID specified in XADD is equal or smaller than the target stream top item"))
		}
		id = parsed
	}
	fields := make([]stream.Field, 0, len(fieldArgs)/2)
	for i := 0; i < len(fieldArgs); i += 2 {
		fields = append(fields, stream.Field{
			Name:  append([]byte(nil), fieldArgs[i]...),
			Value: append([]byte(nil), fieldArgs[i+1]...),
		})
	}
	rec.Stream.Append(id, fields)
	return resp.BulkString(id.String())
}

func cmdXLen(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	return resp.Int(int64(rec.Stream.Len()))
}

func cmdXDel(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	ids := make([]stream.ID, 0, len(args[1:]))
	for _, a := range args[1:] {
		id, perr := stream.ParseID(string(a), false)
		if perr != nil {
			return resp.AsError(errBadStreamID)
		}
		ids = append(ids, id)
	}
	n := rec.Stream.Del(ids...)
	e.ks.DeleteIfEmpty(string(args[0]), rec)
	return resp.Int(int64(n))
}

func cmdXTrim(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	strategy := strings.ToUpper(string(args[1]))
	if rec == nil {
		return resp.Int(0)
	}
	switch strategy {
	case "MAXLEN":
		n, perr := parseInt(args[2])
		if perr != nil {
			return resp.AsError(perr)
		}
		removed := rec.Stream.TrimMaxLen(int(n))
		e.ks.DeleteIfEmpty(string(args[0]), rec)
		return resp.Int(int64(removed))
	case "MINID":
		id, perr := stream.ParseID(string(args[2]), true)
		if perr != nil {
			return resp.AsError(errBadStreamID)
		}
		removed := rec.Stream.TrimMinID(id)
		e.ks.DeleteIfEmpty(string(args[0]), rec)
		return resp.Int(int64(removed))
	default:
		return resp.AsError(errSyntax)
	}
}

func cmdXRange(e *Engine, c Conn, args [][]byte) resp.Value {
	return xrangeImpl(e, args, false)
}

func cmdXRevRange(e *Engine, c Conn, args [][]byte) resp.Value {
	return xrangeImpl(e, args, true)
}

func xrangeImpl(e *Engine, args [][]byte, rev bool) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	startTok, endTok := string(args[1]), string(args[2])
	if rev {
		startTok, endTok = endTok, startTok
	}
	from, ferr := stream.ParseID(startTok, true)
	if ferr != nil {
		return resp.AsError(errBadStreamID)
	}
	to, terr := stream.ParseID(endTok, false)
	if terr != nil {
		return resp.AsError(errBadStreamID)
	}
	count := 0
	if len(args) == 5 {
		if !eqFold(args[3], "COUNT") {
			return resp.AsError(errSyntax)
		}
		n, cerr := parseInt(args[4])
		if cerr != nil {
			return resp.AsError(cerr)
		}
		count = int(n)
	}
	if rec == nil {
		return resp.ArraySlice(nil)
	}
	if rev {
		return entriesToValue(rec.Stream.RevRange(from, to, count))
	}
	return entriesToValue(rec.Stream.Range(from, to, count))
}

type streamReadSpec struct {
	key string
	id  stream.ID
}

// parseStreamsClause parses the trailing "STREAMS key... id..." clause
// shared by XREAD/XREADGROUP, where keys and ids are two equal-length runs.
func parseStreamsClause(args [][]byte) ([]string, []string, error) {
	idx := -1
	for i, a := range args {
		if eqFold(a, "STREAMS") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, errSyntax
	}
	rest := args[idx+1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, nil, errSyntax
	}
	half := len(rest) / 2
	keys := make([]string, half)
	ids := make([]string, half)
	for i := 0; i < half; i++ {
		keys[i] = string(rest[i])
		ids[i] = string(rest[half+i])
	}
	return keys, ids, nil
}

func cmdXRead(e *Engine, c Conn, args [][]byte) resp.Value {
	var blockMs int64 = -1
	count := 0
	i := 0
	for i < len(args) {
		switch {
		case eqFold(args[i], "BLOCK"):
			if i+1 >= len(args) {
				return resp.AsError(errSyntax)
			}
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			blockMs = n
			i += 2
		case eqFold(args[i], "COUNT"):
			if i+1 >= len(args) {
				return resp.AsError(errSyntax)
			}
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			count = int(n)
			i += 2
		case eqFold(args[i], "STREAMS"):
			goto parsed
		default:
			return resp.AsError(errSyntax)
		}
	}
parsed:
	keys, idToks, perr := parseStreamsClause(args[i:])
	if perr != nil {
		return resp.AsError(perr)
	}
	froms := make([]stream.ID, len(keys))
	for j, tok := range idToks {
		if tok == "$" {
			rec := e.ks.Get(keys[j], nowMs())
			if rec != nil && rec.Kind == keyspace.KindStream {
				froms[j] = rec.Stream.LastGeneratedID()
			}
			continue
		}
		id, ierr := stream.ParseID(tok, false)
		if ierr != nil {
			return resp.AsError(errBadStreamID)
		}
		froms[j] = id
	}

	attempt := func() ([]resp.Value, bool) {
		var out []resp.Value
		for j, k := range keys {
			rec := e.ks.Get(k, nowMs())
			if rec == nil || rec.Kind != keyspace.KindStream {
				continue
			}
			entries := rec.Stream.Range(nextStreamID(froms[j]), stream.MaxID, count)
			if len(entries) == 0 {
				continue
			}
			out = append(out, resp.Array_(resp.BulkString(k), entriesToValue(entries)))
		}
		return out, len(out) > 0
	}

	if out, ok := attempt(); ok {
		return resp.ArraySlice(out)
	}
	if blockMs < 0 {
		return resp.NullArray()
	}
	return blockOnStreams(e, keys, blockMs, attempt)
}

func nextStreamID(id stream.ID) stream.ID {
	if id.Seq == ^uint64(0) {
		return stream.ID{Ms: id.Ms + 1, Seq: 0}
	}
	return stream.ID{Ms: id.Ms, Seq: id.Seq + 1}
}

// blockOnStreams drops the keyspace lock, waits for any of keys' streams to
// broadcast (or the deadline), then reacquires the lock and retries attempt.
// Dropping/reacquiring a plain sync.Mutex across a goroutine-local suspend is
// safe: Go's mutex only tracks lock state, not the acquiring call frame.
func blockOnStreams(e *Engine, keys []string, blockMs int64, attempt func() ([]resp.Value, bool)) resp.Value {
	for {
		waits := make([]<-chan struct{}, 0, len(keys))
		for _, k := range keys {
			rec, err := e.ks.GetTyped(k, keyspace.KindStream, nowMs())
			if err != nil || rec == nil {
				continue
			}
			waits = append(waits, rec.Stream.WaitChan())
		}
		var timer *time.Timer
		var deadline <-chan time.Time
		if blockMs > 0 {
			timer = time.NewTimer(time.Duration(blockMs) * time.Millisecond)
			deadline = timer.C
		}
		e.ks.Unlock()
		woken := waitAny(waits, deadline)
		e.ks.Lock()
		if timer != nil {
			timer.Stop()
		}
		if out, ok := attempt(); ok {
			return resp.ArraySlice(out)
		}
		if !woken {
			return resp.NullArray()
		}
	}
}

func waitAny(chans []<-chan struct{}, deadline <-chan time.Time) bool {
	if len(chans) == 0 {
		<-deadline
		return false
	}
	done := make(chan struct{}, 1)
	stop := make(chan struct{})
	for _, ch := range chans {
		go func(ch <-chan struct{}) {
			select {
			case <-ch:
				select {
				case done <- struct{}{}:
				default:
				}
			case <-stop:
			}
		}(ch)
	}
	defer close(stop)
	if deadline == nil {
		<-done
		return true
	}
	select {
	case <-done:
		return true
	case <-deadline:
		return false
	}
}

func cmdXSetID(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetOrCreate(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	id, perr := stream.ParseID(string(args[1]), false)
	if perr != nil {
		return resp.AsError(errBadStreamID)
	}
	rec.Stream.SetLastID(id)
	return resp.OK()
}

func cmdXGroup(e *Engine, c Conn, args [][]byte) resp.Value {
	sub := strings.ToUpper(string(args[0]))
	switch sub {
	case "CREATE":
		if len(args) < 4 {
			return resp.AsError(errSyntax)
		}
		key, group, startTok := string(args[1]), string(args[2]), string(args[3])
		mkstream := len(args) >= 5 && eqFold(args[4], "MKSTREAM")
		rec, err := e.ks.GetTyped(key, keyspace.KindStream, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			if !mkstream {
				return resp.AsError(errNoSuchKey)
			}
			rec, err = e.ks.GetOrCreate(key, keyspace.KindStream, nowMs())
			if err != nil {
				return wrongType()
			}
		}
		var start stream.ID
		switch startTok {
		case "-":
			start = stream.MinID
		case "$":
			start = rec.Stream.LastGeneratedID()
		default:
			id, perr := stream.ParseID(startTok, false)
			if perr != nil {
				return resp.AsError(errBadStreamID)
			}
			start = id
		}
		if _, ok := rec.Stream.CreateGroup(group, start); !ok {
			return resp.AsError(errBusyGroup)
		}
		return resp.OK()
	case "DESTROY":
		if len(args) < 3 {
			return resp.AsError(errSyntax)
		}
		rec, err := e.ks.GetTyped(string(args[1]), keyspace.KindStream, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			return resp.Int(0)
		}
		if rec.Stream.DeleteGroup(string(args[2])) {
			e.ks.DeleteIfEmpty(string(args[1]), rec)
			return resp.Int(1)
		}
		return resp.Int(0)
	case "SETID":
		if len(args) < 4 {
			return resp.AsError(errSyntax)
		}
		rec, err := e.ks.GetTyped(string(args[1]), keyspace.KindStream, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			return resp.AsError(errNoSuchKey)
		}
		g, ok := rec.Stream.Group(string(args[2]))
		if !ok {
			return resp.AsError(errNoGroup)
		}
		startTok := string(args[3])
		switch startTok {
		case "-":
			g.LastDeliveredID = stream.MinID
		case "$":
			g.LastDeliveredID = rec.Stream.LastGeneratedID()
		default:
			id, perr := stream.ParseID(startTok, false)
			if perr != nil {
				return resp.AsError(errBadStreamID)
			}
			g.LastDeliveredID = id
		}
		return resp.OK()
	case "DELCONSUMER":
		if len(args) < 4 {
			return resp.AsError(errSyntax)
		}
		rec, err := e.ks.GetTyped(string(args[1]), keyspace.KindStream, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			return resp.AsError(errNoSuchKey)
		}
		g, ok := rec.Stream.Group(string(args[2]))
		if !ok {
			return resp.AsError(errNoGroup)
		}
		n := g.DelConsumer(string(args[3]))
		return resp.Int(int64(n))
	default:
		return resp.AsError(errSyntax)
	}
}

func cmdXReadGroup(e *Engine, c Conn, args [][]byte) resp.Value {
	if !eqFold(args[0], "GROUP") {
		return resp.AsError(errSyntax)
	}
	group, consumer := string(args[1]), string(args[2])
	var blockMs int64 = -1
	count := 0
	i := 3
	for i < len(args) {
		switch {
		case eqFold(args[i], "BLOCK"):
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			blockMs = n
			i += 2
		case eqFold(args[i], "COUNT"):
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			count = int(n)
			i += 2
		case eqFold(args[i], "NOACK"):
			i++
		case eqFold(args[i], "STREAMS"):
			goto parsed
		default:
			return resp.AsError(errSyntax)
		}
	}
parsed:
	keys, idToks, perr := parseStreamsClause(args[i:])
	if perr != nil {
		return resp.AsError(perr)
	}

	attempt := func() ([]resp.Value, bool) {
		var out []resp.Value
		for j, k := range keys {
			rec, err := e.ks.GetTyped(k, keyspace.KindStream, nowMs())
			if err != nil || rec == nil {
				continue
			}
			g, ok := rec.Stream.Group(group)
			if !ok {
				continue
			}
			var entries []stream.Entry
			if idToks[j] == ">" {
				entries = g.Deliver(rec.Stream, consumer, count, nowMs())
			} else {
				from, ierr := stream.ParseID(idToks[j], false)
				if ierr != nil {
					continue
				}
				entries = g.ReadPending(rec.Stream, consumer, from, count)
			}
			if len(entries) == 0 {
				continue
			}
			out = append(out, resp.Array_(resp.BulkString(k), entriesToValue(entries)))
		}
		return out, len(out) > 0
	}

	for _, k := range keys {
		rec, err := e.ks.GetTyped(k, keyspace.KindStream, nowMs())
		if err != nil {
			return wrongType()
		}
		if rec == nil {
			return resp.AsError(errNoGroup)
		}
		if _, ok := rec.Stream.Group(group); !ok {
			return resp.AsError(errNoGroup)
		}
	}

	if out, ok := attempt(); ok {
		return resp.ArraySlice(out)
	}
	blockOnAny := false
	for _, t := range idToks {
		if t == ">" {
			blockOnAny = true
		}
	}
	if blockMs < 0 || !blockOnAny {
		return resp.NullArray()
	}
	return blockOnStreams(e, keys, blockMs, attempt)
}

func cmdXAck(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.Int(0)
	}
	g, ok := rec.Stream.Group(string(args[1]))
	if !ok {
		return resp.Int(0)
	}
	n := 0
	for _, a := range args[2:] {
		id, perr := stream.ParseID(string(a), false)
		if perr != nil {
			return resp.AsError(errBadStreamID)
		}
		if g.Ack(id) {
			n++
		}
	}
	return resp.Int(int64(n))
}

func cmdXPending(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(errNoGroup)
	}
	g, ok := rec.Stream.Group(string(args[1]))
	if !ok {
		return resp.AsError(errNoGroup)
	}
	if len(args) == 2 {
		total, perConsumer := g.PendingByConsumer()
		if total == 0 {
			return resp.Array_(resp.Int(0), resp.NullBulk(), resp.NullBulk(), resp.NullArray())
		}
		ids := g.PendingIDsSorted()
		rows := make([]resp.Value, 0, len(perConsumer))
		for consumer, n := range perConsumer {
			rows = append(rows, resp.Array_(resp.BulkString(consumer), resp.BulkString(strconv.FormatInt(int64(n), 10))))
		}
		return resp.Array_(
			resp.Int(int64(total)),
			resp.BulkString(ids[0].String()),
			resp.BulkString(ids[len(ids)-1].String()),
			resp.ArraySlice(rows),
		)
	}
	i := 2
	var minIdle int64
	if eqFold(args[i], "IDLE") {
		n, perr := parseInt(args[i+1])
		if perr != nil {
			return resp.AsError(perr)
		}
		minIdle = n
		i += 2
	}
	if i+2 >= len(args) {
		return resp.AsError(errSyntax)
	}
	startTok, endTok, countTok := string(args[i]), string(args[i+1]), args[i+2]
	start, serr := stream.ParseID(startTok, true)
	if serr != nil {
		return resp.AsError(errBadStreamID)
	}
	end, eerr := stream.ParseID(endTok, false)
	if eerr != nil {
		return resp.AsError(errBadStreamID)
	}
	count, cerr := parseInt(countTok)
	if cerr != nil {
		return resp.AsError(cerr)
	}
	var consumerFilter string
	hasFilter := false
	if i+3 < len(args) {
		consumerFilter = string(args[i+3])
		hasFilter = true
	}
	now := nowMs()
	var out []resp.Value
	for _, id := range g.PendingIDsSorted() {
		if id.Less(start) || end.Less(id) {
			continue
		}
		pe := g.PEL[id]
		if hasFilter && pe.Consumer != consumerFilter {
			continue
		}
		idle, ok := g.Idle(id, now)
		if !ok || idle < minIdle {
			continue
		}
		if int64(len(out)) >= count {
			break
		}
		out = append(out, resp.Array_(
			resp.BulkString(id.String()),
			resp.BulkString(pe.Consumer),
			resp.Int(idle),
			resp.Int(pe.DeliveryCount),
		))
	}
	return resp.ArraySlice(out)
}

func cmdXClaim(e *Engine, c Conn, args [][]byte) resp.Value {
	rec, err := e.ks.GetTyped(string(args[0]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(errNoGroup)
	}
	g, ok := rec.Stream.Group(string(args[1]))
	if !ok {
		return resp.AsError(errNoGroup)
	}
	consumer := string(args[2])
	minIdle, ierr := parseInt(args[3])
	if ierr != nil {
		return resp.AsError(ierr)
	}
	i := 4
	var ids []stream.ID
	for i < len(args) {
		if eqFold(args[i], "IDLE") || eqFold(args[i], "TIME") || eqFold(args[i], "RETRYCOUNT") ||
			eqFold(args[i], "FORCE") || eqFold(args[i], "JUSTID") {
			break
		}
		id, perr := stream.ParseID(string(args[i]), false)
		if perr != nil {
			return resp.AsError(errBadStreamID)
		}
		ids = append(ids, id)
		i++
	}
	var idleOverride, timeOverride, retryOverride int64 = -1, -1, -1
	force, justID := false, false
	for i < len(args) {
		switch {
		case eqFold(args[i], "IDLE"):
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			idleOverride = n
			i += 2
		case eqFold(args[i], "TIME"):
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			timeOverride = n
			i += 2
		case eqFold(args[i], "RETRYCOUNT"):
			n, perr := parseInt(args[i+1])
			if perr != nil {
				return resp.AsError(perr)
			}
			retryOverride = n
			i += 2
		case eqFold(args[i], "FORCE"):
			force = true
			i++
		case eqFold(args[i], "JUSTID"):
			justID = true
			i++
		default:
			return resp.AsError(errSyntax)
		}
	}
	now := nowMs()
	deliveryTime := timeOverride
	if idleOverride >= 0 {
		deliveryTime = now - idleOverride
	}
	var out []resp.Value
	for _, id := range ids {
		if _, ok := g.Claim(id, consumer, now, minIdle, force, deliveryTime, retryOverride, !justID); !ok {
			continue
		}
		if justID {
			out = append(out, resp.BulkString(id.String()))
			continue
		}
		entry, present := rec.Stream.Get(id)
		if !present {
			g.Ack(id)
			continue
		}
		out = append(out, entryToValue(entry))
	}
	return resp.ArraySlice(out)
}

func cmdXInfo(e *Engine, c Conn, args [][]byte) resp.Value {
	sub := strings.ToUpper(string(args[0]))
	rec, err := e.ks.GetTyped(string(args[1]), keyspace.KindStream, nowMs())
	if err != nil {
		return wrongType()
	}
	if rec == nil {
		return resp.AsError(resp.NewWireError("ERR no such key"))
	}
	switch sub {
	case "STREAM":
		last := rec.Stream.LastGeneratedID()
		return resp.Array_(
			resp.BulkString("length"), resp.Int(int64(rec.Stream.Len())),
			resp.BulkString("last-generated-id"), resp.BulkString(last.String()),
			resp.BulkString("max-deleted-entry-id"), resp.BulkString(rec.Stream.MaxDeletedID().String()),
			resp.BulkString("entries-added"), resp.Int(int64(rec.Stream.EntriesAdded())),
			resp.BulkString("groups"), resp.Int(int64(len(rec.Stream.GroupNames()))),
		)
	case "GROUPS":
		var out []resp.Value
		for _, name := range rec.Stream.GroupNames() {
			g, _ := rec.Stream.Group(name)
			total, _ := g.PendingByConsumer()
			out = append(out, resp.Array_(
				resp.BulkString("name"), resp.BulkString(name),
				resp.BulkString("consumers"), resp.Int(int64(len(g.ConsumerNames()))),
				resp.BulkString("pending"), resp.Int(int64(total)),
				resp.BulkString("last-delivered-id"), resp.BulkString(g.LastDeliveredID.String()),
			))
		}
		return resp.ArraySlice(out)
	case "CONSUMERS":
		if len(args) < 3 {
			return resp.AsError(errSyntax)
		}
		g, ok := rec.Stream.Group(string(args[2]))
		if !ok {
			return resp.AsError(errNoGroup)
		}
		var out []resp.Value
		for _, name := range g.ConsumerNames() {
			out = append(out, resp.Array_(
				resp.BulkString("name"), resp.BulkString(name),
				resp.BulkString("pending"), resp.Int(int64(g.ConsumerPendingCount(name))),
				resp.BulkString("seen-time"), resp.Int(g.ConsumerLastSeen(name)),
			))
		}
		return resp.ArraySlice(out)
	default:
		return resp.AsError(errSyntax)
	}
}
