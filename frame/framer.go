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

package frame

import (
	"github.com/nexuskit/nexuskit/buffer"
	nxerr "github.com/nexuskit/nexuskit/errors"
)

// DefaultMaxFrameSize bounds total_length so a malicious or corrupt
// peer claiming an enormous body cannot force an unbounded allocation.
const DefaultMaxFrameSize = 8 * 1024 * 1024

// Framer turns a byte stream into a sequence of Frames. It is
// deliberately insensitive to how the bytes arrive - one byte at a
// time or in large chunks produces the same event sequence, per the
// boundary behavior in section 8 - because it never decodes until a
// complete frame is buffered.
type Framer struct {
	buf     *buffer.Manager
	maxSize int
}

// New returns a Framer backed by a fresh buffer.Manager, bounding
// total_length at DefaultMaxFrameSize.
func New() *Framer {
	return NewWithMax(DefaultMaxFrameSize)
}

// NewWithMax returns a Framer that rejects any frame whose declared
// total_length exceeds maxSize.
func NewWithMax(maxSize int) *Framer {
	return &Framer{
		buf:     buffer.New(),
		maxSize: maxSize,
	}
}

// Feed appends newly-read bytes to the framer's internal buffer.
func (f *Framer) Feed(p []byte) error {
	return f.buf.Append(p)
}

// Next attempts to decode a single complete frame from the buffered
// bytes. It returns ok=false (no error) when fewer bytes than a full
// frame are currently available - the caller should Feed more and
// retry. A malformed length prefix or tag mismatch is a permanent
// error for the stream.
func (f *Framer) Next() (Frame, bool, error) {
	return DecodeFrom(f.buf, f.maxSize)
}

// DecodeFrom attempts to decode a single complete frame out of an
// externally-owned buffer.Manager, such as the one a connection's
// receive loop feeds directly from the socket. It returns ok=false (no
// error) when fewer bytes than a full frame are currently available.
// A maxSize of 0 means unbounded.
func DecodeFrom(m *buffer.Manager, maxSize int) (Frame, bool, error) {
	lengthPrefix, ok := m.Peek(LengthPrefixSize)
	if !ok {
		return Frame{}, false, nil
	}

	total := buffer.Uint32(lengthPrefix)
	if total < HeaderSize {
		return Frame{}, false, nxerr.New(nxerr.CodeInvalidMessageFormat, "total_length below header size")
	}
	if maxSize > 0 && int(total) > maxSize {
		return Frame{}, false, nxerr.New(nxerr.CodeInvalidMessageFormat, "total_length exceeds configured maximum")
	}

	full, ok := m.Peek(LengthPrefixSize + int(total))
	if !ok {
		return Frame{}, false, nil
	}

	header, err := DecodeHeader(full[LengthPrefixSize : LengthPrefixSize+HeaderSize])
	if err != nil {
		return Frame{}, false, err
	}

	body := full[LengthPrefixSize+HeaderSize:]
	owned := make([]byte, len(body))
	copy(owned, body)

	frameResult, err := DecodeBody(header, owned)
	if err != nil {
		return Frame{}, false, err
	}

	if _, ok := m.Consume(LengthPrefixSize + int(total)); !ok {
		return Frame{}, false, nxerr.New(nxerr.CodeProtocolError, "consume desynchronized from peek")
	}

	return frameResult, true, nil
}

// Drain repeatedly calls Next, returning every complete frame
// currently available. It stops at the first decode error, returning
// the frames decoded so far alongside it.
func (f *Framer) Drain() ([]Frame, error) {
	var out []Frame
	for {
		fr, ok, err := f.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, fr)
	}
}

// Reset discards all buffered, undecoded bytes.
func (f *Framer) Reset() {
	f.buf.Clear()
}
