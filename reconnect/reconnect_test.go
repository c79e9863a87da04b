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

package reconnect_test

import (
	"testing"
	"time"

	"github.com/nexuskit/nexuskit/reconnect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestReconnect(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reconnect Suite")
}

var _ = Describe("ExponentialBackoff", func() {
	It("doubles the delay by Factor each attempt, with no jitter", func() {
		b := reconnect.ExponentialBackoff{Base: 100 * time.Millisecond, Factor: 2, Max: 10 * time.Second}
		Expect(b.Delay(1)).To(Equal(100 * time.Millisecond))
		Expect(b.Delay(2)).To(Equal(200 * time.Millisecond))
		Expect(b.Delay(3)).To(Equal(400 * time.Millisecond))
	})

	It("caps the delay at Max", func() {
		b := reconnect.ExponentialBackoff{Base: time.Second, Factor: 2, Max: 3 * time.Second}
		Expect(b.Delay(10)).To(Equal(3 * time.Second))
	})

	It("jitters within +/- Jitter fraction of the unjittered delay", func() {
		b := reconnect.ExponentialBackoff{Base: time.Second, Factor: 2, Max: 100 * time.Second, Jitter: 0.5}
		for i := 0; i < 20; i++ {
			d := b.Delay(1)
			Expect(d).To(BeNumerically(">=", 500*time.Millisecond))
			Expect(d).To(BeNumerically("<=", 1500*time.Millisecond))
		}
	})

	It("treats attempt < 1 as attempt 1", func() {
		b := reconnect.ExponentialBackoff{Base: time.Second, Factor: 2, Max: time.Minute}
		Expect(b.Delay(0)).To(Equal(b.Delay(1)))
	})
})

var _ = Describe("LinearBackoff", func() {
	It("grows by Step each attempt", func() {
		b := reconnect.LinearBackoff{Step: time.Second, Max: time.Minute}
		Expect(b.Delay(1)).To(Equal(time.Second))
		Expect(b.Delay(3)).To(Equal(3 * time.Second))
	})

	It("caps at Max", func() {
		b := reconnect.LinearBackoff{Step: time.Second, Max: 2 * time.Second}
		Expect(b.Delay(5)).To(Equal(2 * time.Second))
	})
})

var _ = Describe("Custom", func() {
	It("adapts an arbitrary function into a Strategy", func() {
		var strategy reconnect.Strategy = reconnect.Custom(func(attempt int) time.Duration {
			return time.Duration(attempt) * 7 * time.Millisecond
		})
		Expect(strategy.Delay(3)).To(Equal(21 * time.Millisecond))
	})
})

var _ = Describe("Controller", func() {
	It("increments the attempt counter on each Next call", func() {
		c := reconnect.New(reconnect.LinearBackoff{Step: time.Millisecond, Max: time.Second})
		Expect(c.Attempt()).To(Equal(0))
		c.Next()
		Expect(c.Attempt()).To(Equal(1))
		c.Next()
		Expect(c.Attempt()).To(Equal(2))
	})

	It("resets the attempt counter to zero on Reset", func() {
		c := reconnect.New(reconnect.LinearBackoff{Step: time.Millisecond, Max: time.Second})
		c.Next()
		c.Next()
		c.Reset()
		Expect(c.Attempt()).To(Equal(0))
	})
})
