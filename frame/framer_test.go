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

package frame_test

import (
	"github.com/nexuskit/nexuskit/frame"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Framer", func() {
	It("yields nothing until a full frame has been fed", func() {
		f := frame.New()
		Expect(f.Feed([]byte{0, 0, 0, 22})).To(Succeed())

		_, ok, err := f.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("decodes one frame once it is fully buffered", func() {
		wire, err := frame.Encode(frame.Frame{
			Header: frame.Header{RequestID: 7, FunctionID: 1},
			Body:   []byte("hi"),
		}, frame.EncodeOptions{})
		Expect(err).NotTo(HaveOccurred())

		f := frame.New()
		Expect(f.Feed(wire)).To(Succeed())

		decoded, ok, err := f.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(decoded.Body).To(Equal([]byte("hi")))
	})

	It("produces the same event sequence whether fed one byte at a time or all at once", func() {
		wire1, _ := frame.Encode(frame.Frame{Header: frame.Header{RequestID: 1, FunctionID: 1}, Body: []byte("a")}, frame.EncodeOptions{})
		wire2, _ := frame.Encode(frame.Frame{Header: frame.Header{RequestID: 2, FunctionID: 1}, Body: []byte("b")}, frame.EncodeOptions{})
		all := append(append([]byte{}, wire1...), wire2...)

		bulk := frame.New()
		Expect(bulk.Feed(all)).To(Succeed())
		bulkFrames, err := bulk.Drain()
		Expect(err).NotTo(HaveOccurred())

		piecewise := frame.New()
		for _, b := range all {
			Expect(piecewise.Feed([]byte{b})).To(Succeed())
		}
		piecewiseFrames, err := piecewise.Drain()
		Expect(err).NotTo(HaveOccurred())

		Expect(len(bulkFrames)).To(Equal(2))
		Expect(bulkFrames).To(Equal(piecewiseFrames))
	})

	It("handles two frames arriving back to back in a single Feed", func() {
		wire1, _ := frame.Encode(frame.Frame{Header: frame.Header{RequestID: 1, FunctionID: 1}, Body: []byte("a")}, frame.EncodeOptions{})
		wire2, _ := frame.Encode(frame.Frame{Header: frame.Header{RequestID: 2, FunctionID: 1}, Body: []byte("b")}, frame.EncodeOptions{})

		f := frame.New()
		Expect(f.Feed(append(append([]byte{}, wire1...), wire2...))).To(Succeed())

		frames, err := f.Drain()
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(2))
		Expect(frames[0].Header.RequestID).To(BeEquivalentTo(1))
		Expect(frames[1].Header.RequestID).To(BeEquivalentTo(2))
	})

	It("rejects a total_length below the minimum header size", func() {
		f := frame.New()
		Expect(f.Feed([]byte{0, 0, 0, 5, 1, 2, 3, 4, 5})).To(Succeed())

		_, _, err := f.Next()
		Expect(err).To(HaveOccurred())
	})

	It("rejects a total_length exceeding the configured maximum", func() {
		f := frame.NewWithMax(64)
		Expect(f.Feed([]byte{0, 0, 1, 0})).To(Succeed())

		_, _, err := f.Next()
		Expect(err).To(HaveOccurred())
	})
})
