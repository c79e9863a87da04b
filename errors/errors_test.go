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

package errors_test

import (
	stderrors "errors"

	nxerr "github.com/nexuskit/nexuskit/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error taxonomy", func() {
	It("defaults the message to the code's registered text", func() {
		e := nxerr.New(nxerr.CodeNotConnected, "")
		Expect(e.Error()).To(Equal("not connected"))
		Expect(e.Code()).To(Equal(nxerr.CodeNotConnected))
	})

	It("carries a custom message when given one", func() {
		e := nxerr.New(nxerr.CodeInvalidEndpoint, "scheme must be tcp or wss")
		Expect(e.Error()).To(Equal("scheme must be tcp or wss"))
	})

	It("matches sentinels by code via errors.Is", func() {
		e := nxerr.New(nxerr.CodeConnectionClosed, "")
		Expect(stderrors.Is(e, nxerr.ErrConnectionClosed)).To(BeTrue())
	})

	It("does not match across distinct codes", func() {
		e := nxerr.New(nxerr.CodeConnectionClosed, "")
		Expect(stderrors.Is(e, nxerr.ErrNotConnected)).To(BeFalse())
	})

	It("walks the parent chain for HasCode", func() {
		root := nxerr.New(nxerr.CodeTLSHandshakeFailed, "handshake failed")
		wrapped := nxerr.New(nxerr.CodeConnectionClosed, "connection closed").WithParent(root)
		Expect(nxerr.HasCode(wrapped, nxerr.CodeTLSHandshakeFailed)).To(BeTrue())
		Expect(nxerr.HasCode(wrapped, nxerr.CodeAuthFailed)).To(BeFalse())
	})

	It("records a call-site trace", func() {
		e := nxerr.New(nxerr.CodeBufferOverflow, "")
		Expect(e.Trace()).NotTo(BeEmpty())
	})

	It("builds a MiddlewareError wrapping the underlying reject reason", func() {
		underlying := stderrors.New("payload too large")
		e := nxerr.MiddlewareError("rate-limit", underlying)
		Expect(e.Code()).To(Equal(nxerr.CodeMiddlewareError))
		Expect(e.Error()).To(ContainSubstring("payload too large"))
	})
})
