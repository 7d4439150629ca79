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

// Package stream implements the stream engine: append-ordered entries, the
// consumer-group state machine (delivery, PEL, claims, acks) and the
// per-stream wait-queue used by blocking reads.
package stream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ID is a stream entry id (ms, seq), strictly increasing within a stream.
type ID struct {
	Ms  uint64
	Seq uint64
}

func (id ID) String() string {
	return fmt.Sprintf("%d-%d", id.Ms, id.Seq)
}

// Less reports id < other.
func (id ID) Less(other ID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

func (id ID) Equal(other ID) bool { return id.Ms == other.Ms && id.Seq == other.Seq }

var (
	MinID = ID{0, 0}
	MaxID = ID{^uint64(0), ^uint64(0)}
)

// ParseID parses a full "ms-seq" or bare "ms" id (seq defaults to 0 when
// isRangeStart, else to the maximum), plus the special range tokens "-"
// and "+".
func ParseID(s string, isRangeStart bool) (ID, error) {
	switch s {
	case "-":
		return MinID, nil
	case "+":
		return MaxID, nil
	}
	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return ID{}, errors.New("ERR Invalid stream ID specified as stream command argument")
	}
	if len(parts) == 1 {
		if isRangeStart {
			return ID{Ms: ms, Seq: 0}, nil
		}
		return ID{Ms: ms, Seq: ^uint64(0)}, nil
	}
	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return ID{}, errors.New("ERR Invalid stream ID specified as stream command argument")
	}
	return ID{Ms: ms, Seq: seq}, nil
}

// NextID computes the id XADD * assigns given nowMs and the stream's last
// generated id.
func NextID(nowMs uint64, last ID) ID {
	if nowMs > last.Ms {
		return ID{Ms: nowMs, Seq: 0}
	}
	return ID{Ms: last.Ms, Seq: last.Seq + 1}
}
