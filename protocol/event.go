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

// Package protocol implements the protocol adapter layer: conversion
// between typed application messages and wire bytes, and interpretation
// of framed bytes as the shared event algebra every adapter variant
// (binary, JSON-line, MessagePack-wrapped JSON) emits.
package protocol

// Kind discriminates the variants of Event.
type Kind uint8

const (
	KindResponse Kind = iota
	KindNotification
	KindControl
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindNotification:
		return "notification"
	case KindControl:
		return "control"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ControlType names the kinds of Control event a protocol adapter can
// surface. Heartbeat is the only one the core runtime currently acts
// on; adapters may extend the space with adapter-specific values above
// ControlCustomBase.
type ControlType uint8

const (
	ControlHeartbeat ControlType = iota
	ControlCustomBase
)

// Event is the shared algebra every protocol adapter variant emits from
// handle_incoming: exactly one of the Response/Notification/Control/Err
// fields is meaningful, selected by Kind.
type Event struct {
	Kind Kind

	// Response fields (Kind == KindResponse)
	RequestID    uint32
	ResponseCode uint32

	// Notification fields (Kind == KindNotification)
	FunctionID uint32

	// Control fields (Kind == KindControl)
	Control ControlType

	Data []byte
	Err  error
}

// IsHeartbeat reports whether this is a Control event carrying a
// heartbeat.
func (e Event) IsHeartbeat() bool {
	return e.Kind == KindControl && e.Control == ControlHeartbeat
}
