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
	"encoding/json"

	"github.com/nexuskit/nexuskit/buffer"
	nxerr "github.com/nexuskit/nexuskit/errors"
)

// jsonEnvelope is the newline-delimited wire shape of JSONLineAdapter.
// []byte fields marshal as base64 by encoding/json, which keeps
// arbitrary binary bodies safe inside a single text line.
type jsonEnvelope struct {
	RequestID    uint32 `json:"request_id"`
	FunctionID   uint32 `json:"function_id"`
	ResponseFlag bool   `json:"response_flag"`
	ResponseCode uint32 `json:"response_code"`
	Heartbeat    bool   `json:"heartbeat"`
	Body         []byte `json:"body"`
}

// JSONLineAdapter frames one JSON object per newline-terminated line.
// There is no separate length prefix; the delimiter is the byte 0x0A,
// and a line is rejected wholesale if it fails to parse.
type JSONLineAdapter struct {
	MaxLineSize int
}

// DefaultMaxLineSize bounds a single JSON line the same order of
// magnitude as DefaultMaxFrameSize.
const DefaultMaxLineSize = 8 * 1024 * 1024

// NewJSONLineAdapter returns a JSONLineAdapter with the default maximum
// line size.
func NewJSONLineAdapter() *JSONLineAdapter {
	return &JSONLineAdapter{MaxLineSize: DefaultMaxLineSize}
}

func (a *JSONLineAdapter) Name() string { return "json-line" }

func (a *JSONLineAdapter) Encode(env Envelope) ([]byte, error) {
	line, err := json.Marshal(jsonEnvelope{
		RequestID:    env.RequestID,
		FunctionID:   env.FunctionID,
		ResponseFlag: env.ResponseFlag,
		ResponseCode: env.ResponseCode,
		Heartbeat:    env.Heartbeat,
		Body:         env.Body,
	})
	if err != nil {
		return nil, nxerr.New(nxerr.CodeEncodingFailed, "json-line encode", err)
	}
	return append(line, '\n'), nil
}

func (a *JSONLineAdapter) HandleIncoming(m *buffer.Manager) ([]Event, error) {
	var events []Event

	for {
		available := m.AvailableBytes()
		if available == 0 {
			return events, nil
		}

		view, ok := m.Peek(available)
		if !ok {
			return events, nil
		}

		idx := bytes.IndexByte(view, '\n')
		if idx < 0 {
			if a.MaxLineSize > 0 && available > a.MaxLineSize {
				return events, nxerr.New(nxerr.CodeInvalidMessageFormat, "json-line exceeds configured maximum")
			}
			return events, nil
		}

		line, _ := m.Consume(idx + 1)
		line = bytes.TrimRight(line, "\n")

		var parsed jsonEnvelope
		if err := json.Unmarshal(line, &parsed); err != nil {
			return events, nxerr.New(nxerr.CodeInvalidMessageFormat, "json-line decode", err)
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

func (a *JSONLineAdapter) CreateHeartbeat() ([]byte, error) {
	return a.Encode(Envelope{Heartbeat: true})
}
