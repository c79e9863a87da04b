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

// Package frame implements the bit-exact binary wire format: a 4-byte
// big-endian length prefix followed by a 20-byte fixed header and a
// body, optionally gzip-compressed. See section 6 of the specification
// for the byte layout.
package frame

import (
	"github.com/nexuskit/nexuskit/buffer"
	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Tag identifies a NexusKit frame on the wire; any other value is a
// protocol violation fatal to the connection.
const Tag uint16 = 0x7A5A

// Version is the header version this build emits. Decoding does not
// reject other versions outright; unsupported-version handling is left
// to the protocol adapter layer.
const Version uint16 = 1

// HeartbeatFunctionID marks a frame as a heartbeat carrier rather than
// an application notification or request.
const HeartbeatFunctionID uint32 = 0xFFFF

// ResponseCodeSuccess is the response_code carried by a successful
// response frame.
const ResponseCodeSuccess uint32 = 200

// HeaderSize is the fixed header length in bytes, not counting the
// 4-byte length prefix.
const HeaderSize = 20

// LengthPrefixSize is the byte width of the total_length field.
const LengthPrefixSize = 4

const (
	flagIdle       = 1 << 0
	flagCompressed = 1 << 5
)

// Header is the fixed 20-byte frame header, decoded field by field.
type Header struct {
	Tag          uint16
	Version      uint16
	TypeFlags    uint8
	ResponseFlag uint8
	RequestID    uint32
	FunctionID   uint32
	ResponseCode uint32
	Reserved     uint16
}

// IsIdle reports whether the idle/heartbeat-carrier bit is set.
func (h Header) IsIdle() bool { return h.TypeFlags&flagIdle != 0 }

// IsCompressed reports whether the body is gzip-compressed on the wire.
func (h Header) IsCompressed() bool { return h.TypeFlags&flagCompressed != 0 }

// IsHeartbeat reports whether function_id marks this frame as a
// heartbeat carrier.
func (h Header) IsHeartbeat() bool { return h.FunctionID == HeartbeatFunctionID }

// IsResponse reports whether response_flag marks this a response
// rather than a request/notification.
func (h Header) IsResponse() bool { return h.ResponseFlag == 1 }

// Frame is a fully decoded wire frame: header plus decompressed body.
type Frame struct {
	Header Header
	Body   []byte
}

// Heartbeat builds a zero-body heartbeat frame: function_id = 0xFFFF,
// the idle bit set, request_id 0.
func Heartbeat() Frame {
	return Frame{
		Header: Header{
			Tag:        Tag,
			Version:    Version,
			TypeFlags:  flagIdle,
			FunctionID: HeartbeatFunctionID,
		},
	}
}

// EncodeOptions governs the outgoing encode policy (section 4.3 step 2):
// gzip the body iff compression is enabled and the body exceeds the
// configured threshold.
type EncodeOptions struct {
	CompressionEnabled bool
	CompressionThresh  int
}

// DefaultCompressionThreshold matches the 1024-byte threshold named in
// section 4.3 and the compression-toggle scenario in section 8.
const DefaultCompressionThreshold = 1024

// Encode renders f to its wire representation (length prefix + header +
// body), compressing the body per opts.
func Encode(f Frame, opts EncodeOptions) ([]byte, error) {
	body := f.Body
	flags := f.Header.TypeFlags

	if opts.CompressionEnabled && len(body) > threshold(opts) {
		compressed, err := buffer.GzipCompress(body)
		if err != nil {
			return nil, err
		}
		body = compressed
		flags |= flagCompressed
	}

	out := make([]byte, LengthPrefixSize+HeaderSize+len(body))
	buffer.PutUint32(out[0:4], uint32(HeaderSize+len(body)))
	buffer.PutUint16(out[4:6], Tag)
	buffer.PutUint16(out[6:8], f.Header.Version)
	out[8] = flags
	out[9] = f.Header.ResponseFlag
	buffer.PutUint32(out[10:14], f.Header.RequestID)
	buffer.PutUint32(out[14:18], f.Header.FunctionID)
	buffer.PutUint32(out[18:22], f.Header.ResponseCode)
	buffer.PutUint16(out[22:24], f.Header.Reserved)
	copy(out[24:], body)

	return out, nil
}

func threshold(opts EncodeOptions) int {
	if opts.CompressionThresh > 0 {
		return opts.CompressionThresh
	}
	return DefaultCompressionThreshold
}

// DecodeHeader parses the 20-byte fixed header out of p. p must be
// exactly HeaderSize bytes (the caller slices it out of the stream
// after reading the length prefix).
func DecodeHeader(p []byte) (Header, error) {
	if len(p) != HeaderSize {
		return Header{}, nxerr.New(nxerr.CodeInvalidMessageFormat, "header must be exactly 20 bytes")
	}

	h := Header{
		Tag:          buffer.Uint16(p[0:2]),
		Version:      buffer.Uint16(p[2:4]),
		TypeFlags:    p[4],
		ResponseFlag: p[5],
		RequestID:    buffer.Uint32(p[6:10]),
		FunctionID:   buffer.Uint32(p[10:14]),
		ResponseCode: buffer.Uint32(p[14:18]),
		Reserved:     buffer.Uint16(p[18:20]),
	}

	if h.Tag != Tag {
		return Header{}, nxerr.New(nxerr.CodeProtocolError, "frame tag mismatch")
	}

	return h, nil
}

// DecodeBody finishes decoding a frame given its header and raw body
// bytes, undoing gzip compression when the header's compressed bit is
// set.
func DecodeBody(h Header, body []byte) (Frame, error) {
	if h.IsCompressed() {
		decompressed, err := buffer.GzipDecompress(body)
		if err != nil {
			return Frame{}, err
		}
		body = decompressed
	}
	return Frame{Header: h, Body: body}, nil
}
