/*
 * MIT License
 *
 * Copyright (c) 2025 NexusKit Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package state implements the connection state machine: the finite
// set of states a Connection may be in and the legal transition table
// between them. Transition is a pure guard - it holds no state, it
// only judges whether a (from, to) pair is legal. Machine pairs that
// guard with a current state value and does no locking of its own; the
// Connection that owns one guards every read and move with its mutex,
// so every external read is atomic.
package state

import (
	"fmt"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// State enumerates the finite set of connection states.
type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
	Disconnecting
)

// String renders the state's name. Reconnecting does not carry its
// attempt count here; the connection's reconnect.Controller keeps that
// count, and Connection does not expose it.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// IsActive reports whether the state represents a connection that is
// connected or working towards being connected.
func (s State) IsActive() bool {
	switch s {
	case Connecting, Connected, Reconnecting:
		return true
	default:
		return false
	}
}

// CanSend reports whether sends are legal from this state.
func (s State) CanSend() bool {
	return s == Connected
}

// CanReceive reports whether the receive loop may be running in this state.
func (s State) CanReceive() bool {
	return s == Connected
}

// legal is the transition table from section 3 of the specification.
// Only pairs present here are allowed; everything else is rejected by
// Transition with an InvalidStateTransition error.
var legal = map[State]map[State]bool{
	Disconnected:  {Connecting: true, Reconnecting: true},
	Connecting:    {Connected: true, Disconnected: true, Disconnecting: true},
	Connected:     {Disconnecting: true, Reconnecting: true},
	Reconnecting:  {Connecting: true, Disconnected: true, Disconnecting: true},
	Disconnecting: {Disconnected: true},
}

// Transition reports whether moving from "from" to "to" is legal. It
// returns nil when legal, or a CodeInvalidStateTransition Error
// otherwise. The function has no side effects: it is a guard, not a
// store.
func Transition(from, to State) error {
	if m, ok := legal[from]; ok && m[to] {
		return nil
	}
	return nxerr.InvalidStateTransition(from, to)
}

// Machine holds a current state and applies only legal transitions to
// it. It is not safe for concurrent use on its own: Connection keeps
// one behind its mutex and holds that mutex for every Current and Move
// call.
type Machine struct {
	current State
}

// NewMachine returns a Machine initialized to Disconnected.
func NewMachine() *Machine {
	return &Machine{current: Disconnected}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	return m.current
}

// Move validates and applies the transition, returning an error and
// leaving the state unchanged if the transition is illegal.
func (m *Machine) Move(to State) error {
	if err := Transition(m.current, to); err != nil {
		return err
	}
	m.current = to
	return nil
}

// MustMove panics if the transition is illegal; it exists for call
// sites that have already validated reachability and want a hard
// invariant check rather than a handled error (e.g. internal runtime
// bookkeeping after a confirmed guard).
func (m *Machine) MustMove(to State) {
	if err := m.Move(to); err != nil {
		panic(fmt.Sprintf("nexuskit: %v", err))
	}
}
