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

import (
	"bytes"

	"github.com/ugorji/go/codec"

	"github.com/nexuskit/nexuskit/buffer"
	nxerr "github.com/nexuskit/nexuskit/errors"
)

// msgpackEnvelope mirrors jsonEnvelope but is serialized with
// MessagePack instead of JSON - the "MessagePack-wrapped JSON" variant
// named in section 4.3: the same logical document, a denser wire
// encoding.
type msgpackEnvelope struct {
	RequestID    uint32 `codec:"request_id"`
	FunctionID   uint32 `codec:"function_id"`
	ResponseFlag bool   `codec:"response_flag"`
	ResponseCode uint32 `codec:"response_code"`
	Heartbeat    bool   `codec:"heartbeat"`
	Body         []byte `codec:"body"`
}

// MessagePackAdapter frames each message as a 4-byte big-endian length
// prefix followed by a MessagePack-encoded envelope, using
// github.com/ugorji/go/codec.
type MessagePackAdapter struct {
	MaxMessageSize int
	handle         codec.MsgpackHandle
}

// DefaultMaxMessageSize bounds a single MessagePack message.
const DefaultMaxMessageSize = 8 * 1024 * 1024

// NewMessagePackAdapter returns a MessagePackAdapter with the default
// maximum message size.
func NewMessagePackAdapter() *MessagePackAdapter {
	return &MessagePackAdapter{MaxMessageSize: DefaultMaxMessageSize}
}

func (a *MessagePackAdapter) Name() string { return "msgpack" }

func (a *MessagePackAdapter) Encode(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &a.handle)

	if err := enc.Encode(msgpackEnvelope{
		RequestID:    env.RequestID,
		FunctionID:   env.FunctionID,
		ResponseFlag: env.ResponseFlag,
		ResponseCode: env.ResponseCode,
		Heartbeat:    env.Heartbeat,
		Body:         env.Body,
	}); err != nil {
		return nil, nxerr.New(nxerr.CodeEncodingFailed, "msgpack encode", err)
	}

	out := make([]byte, 4+buf.Len())
	buffer.PutUint32(out[0:4], uint32(buf.Len()))
	copy(out[4:], buf.Bytes())
	return out, nil
}

func (a *MessagePackAdapter) HandleIncoming(m *buffer.Manager) ([]Event, error) {
	var events []Event

	for {
		lenPrefix, ok := m.Peek(4)
		if !ok {
			return events, nil
		}
		size := int(buffer.Uint32(lenPrefix))
		if a.MaxMessageSize > 0 && size > a.MaxMessageSize {
			return events, nxerr.New(nxerr.CodeInvalidMessageFormat, "msgpack message exceeds configured maximum")
		}

		full, ok := m.Peek(4 + size)
		if !ok {
			return events, nil
		}

		var parsed msgpackEnvelope
		dec := codec.NewDecoderBytes(full[4:], &a.handle)
		if err := dec.Decode(&parsed); err != nil {
			return events, nxerr.New(nxerr.CodeDecodingFailed, "msgpack decode", err)
		}

		if _, ok := m.Consume(4 + size); !ok {
			return events, nxerr.New(nxerr.CodeProtocolError, "consume desynchronized from peek")
		}

		env := Envelope{
			RequestID:    parsed.RequestID,
			FunctionID:   parsed.FunctionID,
			ResponseFlag: parsed.ResponseFlag,
			ResponseCode: parsed.ResponseCode,
			Heartbeat:    parsed.Heartbeat,
			Body:         parsed.Body,
		}
		events = append(events, env.ToEvent())
	}
}

func (a *MessagePackAdapter) CreateHeartbeat() ([]byte, error) {
	return a.Encode(Envelope{Heartbeat: true})
}
