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

package protocol

import "github.com/nexuskit/nexuskit/buffer"

// Adapter converts typed application payloads to wire bytes and
// interprets incoming bytes as Events. Implementations own the
// decision of how a logical message is delimited on the wire (a
// length-prefixed binary frame, a newline, a length-prefixed
// MessagePack blob).
type Adapter interface {
	// Name identifies the adapter variant for diagnostics.
	Name() string

	// Encode renders env to wire bytes ready to hand to the outgoing
	// middleware chain.
	Encode(env Envelope) ([]byte, error)

	// HandleIncoming drains zero or more complete logical messages out
	// of m, returning one Event per message. It must leave any trailing
	// partial message buffered for the next call.
	HandleIncoming(m *buffer.Manager) ([]Event, error)

	// CreateHeartbeat renders a zero-body heartbeat carrier to wire
	// bytes.
	CreateHeartbeat() ([]byte, error)
}
