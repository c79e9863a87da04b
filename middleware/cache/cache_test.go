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

package cache_test

import (
	"testing"
	"time"

	"github.com/nexuskit/nexuskit/middleware"
	"github.com/nexuskit/nexuskit/middleware/cache"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cache Suite")
}

var _ = Describe("Fingerprint", func() {
	It("is deterministic for the same input and salt", func() {
		a := cache.Fingerprint([]byte("hello"), []byte("salt"))
		b := cache.Fingerprint([]byte("hello"), []byte("salt"))
		Expect(a).To(Equal(b))
	})

	It("differs when the salt differs", func() {
		a := cache.Fingerprint([]byte("hello"), []byte("salt1"))
		b := cache.Fingerprint([]byte("hello"), []byte("salt2"))
		Expect(a).NotTo(Equal(b))
	})
})

var _ = Describe("Cache", func() {
	It("misses before Put and hits after", func() {
		c, err := cache.New(4, 16, cache.StrategyLRU, 0, 0)
		Expect(err).NotTo(HaveOccurred())

		fp := cache.Fingerprint([]byte("req"), nil)
		_, ok := c.Get(fp)
		Expect(ok).To(BeFalse())

		c.Put(fp, []byte("resp"))
		body, ok := c.Get(fp)
		Expect(ok).To(BeTrue())
		Expect(body).To(Equal([]byte("resp")))
	})

	It("expires entries past their TTL", func() {
		c, err := cache.New(4, 16, cache.StrategyTTL, 10*time.Millisecond, 0)
		Expect(err).NotTo(HaveOccurred())

		fp := cache.Fingerprint([]byte("req"), nil)
		c.Put(fp, []byte("resp"))
		_, ok := c.Get(fp)
		Expect(ok).To(BeTrue())

		time.Sleep(20 * time.Millisecond)
		_, ok = c.Get(fp)
		Expect(ok).To(BeFalse())
	})

	It("evicts the oldest L2 entry once capacity is exceeded", func() {
		c, err := cache.New(1, 2, cache.StrategyFIFO, 0, 0)
		Expect(err).NotTo(HaveOccurred())

		fp1 := cache.Fingerprint([]byte("1"), nil)
		fp2 := cache.Fingerprint([]byte("2"), nil)
		fp3 := cache.Fingerprint([]byte("3"), nil)

		c.Put(fp1, []byte("a"))
		c.Put(fp2, []byte("b"))
		c.Put(fp3, []byte("c"))

		Expect(c.Len()).To(Equal(2))
		_, ok := c.Get(fp1)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Middleware", func() {
	It("short-circuits an outgoing hit with the cached body in ctx", func() {
		store, err := cache.New(4, 16, cache.StrategyLRU, 0, 0)
		Expect(err).NotTo(HaveOccurred())

		m := cache.NewMiddleware(0, store, nil)
		ctx := middleware.NewContext()

		_, err = m.HandleOutgoing([]byte("request"), ctx)
		Expect(err).NotTo(HaveOccurred())

		_, err = m.HandleIncoming([]byte("response"), ctx)
		Expect(err).NotTo(HaveOccurred())

		ctx2 := middleware.NewContext()
		_, err = m.HandleOutgoing([]byte("request"), ctx2)
		Expect(err).To(HaveOccurred())

		hit, ok := ctx2.Get(cache.HitKey)
		Expect(ok).To(BeTrue())
		Expect(hit).To(Equal([]byte("response")))
	})
})
