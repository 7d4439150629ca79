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

// WireError is a Go error whose message is already the literal RESP error
// line (e.g. "ERR wrong number of arguments"). Command handlers across the
// engine return plain Go errors; the dispatcher turns any error into a
// Value via AsError, and a WireError's Error() is used verbatim instead of
// being wrapped in a generic "ERR ".
type WireError struct {
	msg string
}

func NewWireError(msg string) *WireError { return &WireError{msg: msg} }

func (e *WireError) Error() string { return e.msg }

// AsError renders err as a RESP error Value: WireError messages pass
// through verbatim, anything else is wrapped as a generic ERR.
func AsError(err error) Value {
	if we, ok := err.(*WireError); ok {
		return Err(we.Error())
	}
	return Err("ERR " + err.Error())
}
