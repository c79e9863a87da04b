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
	"fmt"

	hashiversion "github.com/hashicorp/go-version"

	"github.com/nexuskit/nexuskit/buffer"
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/frame"
)

// supportedFrameVersions bounds the frame.Header.Version values this
// build accepts on a decoded frame, expressed as a semver constraint
// against a synthetic "major.0.0" reading of the wire's plain integer
// version so a future breaking wire change can widen or narrow it
// without touching the decode path itself.
var supportedFrameVersions = mustConstraint(">= 1.0.0, < 2.0.0")

func mustConstraint(raw string) hashiversion.Constraints {
	c, err := hashiversion.NewConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func checkFrameVersion(v uint16) error {
	ver, err := hashiversion.NewVersion(fmt.Sprintf("%d.0.0", v))
	if err != nil {
		return nxerr.New(nxerr.CodeUnsupportedProtocolVersion, "malformed frame version")
	}
	if !supportedFrameVersions.Check(ver) {
		return nxerr.New(nxerr.CodeUnsupportedProtocolVersion, fmt.Sprintf("frame version %d is not supported", v))
	}
	return nil
}

// BinaryAdapter is the default protocol adapter: it speaks the bit-exact
// length-prefixed frame format of section 6 directly.
type BinaryAdapter struct {
	CompressionEnabled bool
	CompressionThresh  int
	MaxFrameSize       int
}

// NewBinaryAdapter returns a BinaryAdapter with compression disabled
// and the default maximum frame size.
func NewBinaryAdapter() *BinaryAdapter {
	return &BinaryAdapter{MaxFrameSize: frame.DefaultMaxFrameSize}
}

func (a *BinaryAdapter) Name() string { return "binary" }

func (a *BinaryAdapter) Encode(env Envelope) ([]byte, error) {
	responseFlag := uint8(0)
	if env.ResponseFlag {
		responseFlag = 1
	}

	f := frame.Frame{
		Header: frame.Header{
			Version:      frame.Version,
			ResponseFlag: responseFlag,
			RequestID:    env.RequestID,
			FunctionID:   env.FunctionID,
			ResponseCode: env.ResponseCode,
		},
		Body: env.Body,
	}

	return frame.Encode(f, frame.EncodeOptions{
		CompressionEnabled: a.CompressionEnabled,
		CompressionThresh:  a.CompressionThresh,
	})
}

func (a *BinaryAdapter) HandleIncoming(m *buffer.Manager) ([]Event, error) {
	var events []Event

	for {
		f, ok, err := frame.DecodeFrom(m, a.MaxFrameSize)
		if err != nil {
			return events, err
		}
		if !ok {
			return events, nil
		}
		if err := checkFrameVersion(f.Header.Version); err != nil {
			return events, err
		}
		events = append(events, envelopeFromFrame(f).ToEvent())
	}
}

func (a *BinaryAdapter) CreateHeartbeat() ([]byte, error) {
	return frame.Encode(frame.Heartbeat(), frame.EncodeOptions{})
}
