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

package buffer_test

import (
	"bytes"
	"testing"

	"github.com/nexuskit/nexuskit/buffer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBuffer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Buffer Suite")
}

var _ = Describe("Manager", func() {
	It("exposes only the contiguous prefix through peek and consume", func() {
		m := buffer.NewSized(16, 0)
		Expect(m.Append([]byte("hello world"))).To(Succeed())
		Expect(m.AvailableBytes()).To(Equal(11))

		view, ok := m.Peek(5)
		Expect(ok).To(BeTrue())
		Expect(view).To(Equal([]byte("hello")))

		got, ok := m.Consume(5)
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal([]byte("hello")))
		Expect(m.AvailableBytes()).To(Equal(6))

		rest, ok := m.Consume(6)
		Expect(ok).To(BeTrue())
		Expect(rest).To(Equal([]byte(" world")))
		Expect(m.AvailableBytes()).To(Equal(0))
	})

	It("accumulates across multiple appends without losing bytes", func() {
		m := buffer.New()
		Expect(m.Append([]byte("ab"))).To(Succeed())
		Expect(m.Append([]byte("cd"))).To(Succeed())
		view, ok := m.Peek(4)
		Expect(ok).To(BeTrue())
		Expect(view).To(Equal([]byte("abcd")))
	})

	It("fails peek/consume when fewer bytes are available than requested", func() {
		m := buffer.New()
		Expect(m.Append([]byte("ab"))).To(Succeed())
		_, ok := m.Peek(3)
		Expect(ok).To(BeFalse())
		_, ok = m.Consume(3)
		Expect(ok).To(BeFalse())
	})

	It("rejects growth beyond the configured max capacity", func() {
		m := buffer.NewSized(4, 8)
		Expect(m.Append(make([]byte, 8))).To(Succeed())
		err := m.Append([]byte("x"))
		Expect(err).To(HaveOccurred())
	})

	It("clears all buffered bytes including unconsumed ones", func() {
		m := buffer.New()
		Expect(m.Append([]byte("data"))).To(Succeed())
		m.Clear()
		Expect(m.AvailableBytes()).To(Equal(0))
	})

	It("feeding bytes one at a time vs. in one chunk yields the same content", func() {
		whole := buffer.New()
		Expect(whole.Append([]byte("frame-payload"))).To(Succeed())

		piecewise := buffer.New()
		for _, b := range []byte("frame-payload") {
			Expect(piecewise.Append([]byte{b})).To(Succeed())
		}

		a, _ := whole.Consume(whole.AvailableBytes())
		b, _ := piecewise.Consume(piecewise.AvailableBytes())
		Expect(a).To(Equal(b))
	})
})

var _ = Describe("Big-endian codec", func() {
	It("round-trips uint16 and uint32", func() {
		p := make([]byte, 4)
		buffer.PutUint16(p, 0x7A5A)
		Expect(buffer.Uint16(p)).To(BeEquivalentTo(0x7A5A))

		buffer.PutUint32(p, 0xDEADBEEF)
		Expect(buffer.Uint32(p)).To(BeEquivalentTo(0xDEADBEEF))
	})
})

var _ = Describe("Hex helpers", func() {
	It("round-trips arbitrary bytes", func() {
		orig := []byte{0x00, 0x7A, 0x5A, 0xFF}
		encoded := buffer.HexEncode(orig)
		decoded, err := buffer.HexDecode(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(orig))
	})
})

var _ = Describe("Gzip helpers", func() {
	It("round-trips a compressible payload", func() {
		orig := bytes.Repeat([]byte{'A'}, 2048)
		compressed, err := buffer.GzipCompress(orig)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(compressed)).To(BeNumerically("<", len(orig)))

		decompressed, err := buffer.GzipDecompress(compressed)
		Expect(err).NotTo(HaveOccurred())
		Expect(decompressed).To(Equal(orig))
	})

	It("fails decompression of a non-gzip body with DecodingFailed", func() {
		_, err := buffer.GzipDecompress([]byte("not gzip"))
		Expect(err).To(HaveOccurred())
	})
})
