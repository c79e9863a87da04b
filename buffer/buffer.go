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

// Package buffer implements the byte-accumulation primitive the framer
// reads from: a growable, self-compacting buffer that exposes only the operations section
// 4.1 of the specification names - append, peek (borrow, never copy),
// consume (hand off an owned window) and clear - plus the big-endian
// codec helpers the wire frame header needs.
package buffer

import (
	"encoding/binary"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// DefaultCapacity is the initial backing array size. Sized to hold the
// common case frame without a reallocation.
const DefaultCapacity = 64 * 1024

// DefaultMaxCapacity bounds how large the manager is allowed to grow;
// exceeding it is a resource-family error (BufferOverflow), not a
// panic - a hostile or broken peer must not be able to OOM the client.
const DefaultMaxCapacity = 16 * 1024 * 1024

// Manager accumulates inbound byte chunks behind a contiguous prefix
// view. It is not safe for concurrent use by design: the connection
// runtime's single-task-owns-state model (section 5) means only the
// receive-loop task ever touches a given Manager.
type Manager struct {
	buf []byte
	off int // start of the unconsumed, valid prefix
	max int
}

// New returns a Manager with DefaultCapacity initial capacity and
// DefaultMaxCapacity as its overflow ceiling.
func New() *Manager {
	return NewSized(DefaultCapacity, DefaultMaxCapacity)
}

// NewSized returns a Manager with the given initial capacity and
// maximum capacity. A maxCapacity of 0 means unbounded.
func NewSized(initialCapacity, maxCapacity int) *Manager {
	if initialCapacity <= 0 {
		initialCapacity = DefaultCapacity
	}
	return &Manager{
		buf: make([]byte, 0, initialCapacity),
		max: maxCapacity,
	}
}

// AvailableBytes returns the number of unconsumed bytes currently held.
func (m *Manager) AvailableBytes() int {
	return len(m.buf) - m.off
}

// Append adds p to the buffer, amortized O(1) via Go's slice growth,
// compacting the already-consumed prefix out of the way first. It
// fails with a BufferOverflow error if the result would exceed the
// configured maximum capacity.
func (m *Manager) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	if m.max > 0 && m.AvailableBytes()+len(p) > m.max {
		return nxerr.New(nxerr.CodeBufferOverflow, "")
	}

	m.compact()
	m.buf = append(m.buf, p...)
	return nil
}

// compact discards the consumed prefix so repeated Append calls do not
// grow the backing array without bound purely from offset drift.
func (m *Manager) compact() {
	if m.off == 0 {
		return
	}
	if m.off == len(m.buf) {
		m.buf = m.buf[:0]
		m.off = 0
		return
	}
	n := copy(m.buf, m.buf[m.off:])
	m.buf = m.buf[:n]
	m.off = 0
}

// Peek returns a borrow-only view of the next n unconsumed bytes. The
// returned slice aliases the internal buffer and must not be retained
// past the next Append/Consume/Clear call. It returns false if fewer
// than n bytes are currently available.
func (m *Manager) Peek(n int) ([]byte, bool) {
	if n < 0 || m.AvailableBytes() < n {
		return nil, false
	}
	return m.buf[m.off : m.off+n], true
}

// Consume hands off an owned copy of the next n bytes and advances the
// read offset past them. Callers that received a ProtocolEvent body
// from this window may retain it indefinitely since it is no longer
// aliased to the Manager's backing array.
func (m *Manager) Consume(n int) ([]byte, bool) {
	view, ok := m.Peek(n)
	if !ok {
		return nil, false
	}

	out := make([]byte, n)
	copy(out, view)
	m.off += n
	return out, true
}

// Clear discards all buffered bytes, consumed or not.
func (m *Manager) Clear() {
	m.buf = m.buf[:0]
	m.off = 0
}

// Big-endian helpers used by the binary frame codec (section 6).

// PutUint16 writes v as big-endian into p[0:2].
func PutUint16(p []byte, v uint16) { binary.BigEndian.PutUint16(p, v) }

// PutUint32 writes v as big-endian into p[0:4].
func PutUint32(p []byte, v uint32) { binary.BigEndian.PutUint32(p, v) }

// Uint16 reads a big-endian uint16 from p[0:2].
func Uint16(p []byte) uint16 { return binary.BigEndian.Uint16(p) }

// Uint32 reads a big-endian uint32 from p[0:4].
func Uint32(p []byte) uint32 { return binary.BigEndian.Uint32(p) }
