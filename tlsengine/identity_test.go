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

package tlsengine_test

import (
	"github.com/nexuskit/nexuskit/tlsengine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoadIdentity", func() {
	It("rejects a blob that isn't valid PKCS#12", func() {
		_, err := tlsengine.LoadIdentity([]byte("not a pkcs12 blob"), "pw")
		Expect(err).To(HaveOccurred())
	})

	It("fails on each call for a repeated invalid blob+password pair", func() {
		// Only a successful parse is cached, so with a garbage blob both
		// calls parse and fail: this exercises the fingerprint lookup
		// path, not a cache hit. A real PKCS#12 fixture would be needed to assert
		// pointer identity on a successful parse.
		_, err1 := tlsengine.LoadIdentity([]byte("blob-a"), "pw")
		_, err2 := tlsengine.LoadIdentity([]byte("blob-a"), "pw")
		Expect(err1).To(HaveOccurred())
		Expect(err2).To(HaveOccurred())
	})
})
