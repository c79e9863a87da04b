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

import "github.com/nexuskit/nexuskit/frame"

// Envelope is the adapter-neutral shape every variant encodes to and
// decodes from: the fields the binary frame header carries, projected
// onto whatever wire shape a given adapter actually uses (a JSON line
// or a MessagePack blob still carries these same logical fields).
type Envelope struct {
	RequestID    uint32
	FunctionID   uint32
	ResponseFlag bool
	ResponseCode uint32
	Heartbeat    bool
	Body         []byte
}

// ToEvent classifies env per section 4.3 step 5: heartbeat carriers
// become Control events, responses complete outstanding requests,
// everything else is a Notification.
func (env Envelope) ToEvent() Event {
	switch {
	case env.Heartbeat:
		return Event{Kind: KindControl, Control: ControlHeartbeat, Data: env.Body}
	case env.ResponseFlag:
		return Event{Kind: KindResponse, RequestID: env.RequestID, ResponseCode: env.ResponseCode, Data: env.Body}
	default:
		return Event{Kind: KindNotification, FunctionID: env.FunctionID, Data: env.Body}
	}
}

func envelopeFromFrame(f frame.Frame) Envelope {
	return Envelope{
		RequestID:    f.Header.RequestID,
		FunctionID:   f.Header.FunctionID,
		ResponseFlag: f.Header.IsResponse(),
		ResponseCode: f.Header.ResponseCode,
		Heartbeat:    f.Header.IsHeartbeat(),
		Body:         f.Body,
	}
}
