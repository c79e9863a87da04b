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

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/nexuskit/nexuskit/middleware/ratelimit"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRatelimit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rate Limit Suite")
}

var _ = Describe("TokenBucket", func() {
	It("allows up to its burst capacity and then rejects", func() {
		tb := ratelimit.NewTokenBucket(2, 0.001)
		Expect(tb.TryAcquire(1)).To(BeTrue())
		Expect(tb.TryAcquire(1)).To(BeTrue())
		Expect(tb.TryAcquire(1)).To(BeFalse())
	})

	It("fails Acquire with RateLimitExceeded once MaxWait elapses", func() {
		tb := ratelimit.NewTokenBucket(1, 0.0001)
		Expect(tb.TryAcquire(1)).To(BeTrue())
		err := tb.Acquire(context.Background(), 1, 20*time.Millisecond)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LeakyBucket", func() {
	It("allows up to its capacity and then rejects", func() {
		lb := ratelimit.NewLeakyBucket(2, 0.001)
		Expect(lb.TryAcquire(2)).To(BeTrue())
		Expect(lb.TryAcquire(1)).To(BeFalse())
	})
})

var _ = Describe("FixedWindow", func() {
	It("resets its count after the window elapses", func() {
		fw := ratelimit.NewFixedWindow(20*time.Millisecond, 1)
		Expect(fw.TryAcquire(1)).To(BeTrue())
		Expect(fw.TryAcquire(1)).To(BeFalse())

		time.Sleep(30 * time.Millisecond)
		Expect(fw.TryAcquire(1)).To(BeTrue())
	})
})

var _ = Describe("SlidingWindow", func() {
	It("rejects once the max within the window is reached", func() {
		sw := ratelimit.NewSlidingWindow(50*time.Millisecond, 2)
		Expect(sw.TryAcquire(1)).To(BeTrue())
		Expect(sw.TryAcquire(1)).To(BeTrue())
		Expect(sw.TryAcquire(1)).To(BeFalse())
	})
})

var _ = Describe("Concurrent", func() {
	It("limits the number of simultaneously-held slots", func() {
		c := ratelimit.NewConcurrent(1)
		Expect(c.TryAcquire(1)).To(BeTrue())
		Expect(c.TryAcquire(1)).To(BeFalse())
		c.Release(1)
		Expect(c.TryAcquire(1)).To(BeTrue())
	})
})
