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
	"os"
	"path/filepath"
	"time"

	"github.com/nexuskit/nexuskit/tlsengine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IdentityWatcher", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "identity.p12")
		Expect(os.WriteFile(path, []byte("initial"), 0o600)).To(Succeed())
	})

	It("invokes OnReload when the watched file is rewritten", func() {
		results := make(chan error, 4)
		w, err := tlsengine.WatchIdentity(path, "pw", func(_ *tlsengine.Identity, err error) {
			results <- err
		})
		Expect(err).NotTo(HaveOccurred())
		defer w.Close()

		Expect(os.WriteFile(path, []byte("updated"), 0o600)).To(Succeed())

		Eventually(results, time.Second).Should(Receive(HaveOccurred()))
	})

	It("closes without error", func() {
		w, err := tlsengine.WatchIdentity(path, "pw", func(_ *tlsengine.Identity, _ error) {})
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())
	})
})
