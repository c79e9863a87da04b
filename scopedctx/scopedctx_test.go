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

package scopedctx_test

import (
	"context"
	"testing"

	"github.com/nexuskit/nexuskit/scopedctx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestScopedCtx(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scoped Context Suite")
}

var _ = Describe("Store", func() {
	It("stores and loads values by key", func() {
		s := scopedctx.New[string](nil)
		s.Store("tag", "primary")
		v, ok := s.Load("tag")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("primary"))
	})

	It("removes a key when stored with a nil value", func() {
		s := scopedctx.New[string](nil)
		s.Store("tag", "primary")
		s.Store("tag", nil)
		_, ok := s.Load("tag")
		Expect(ok).To(BeFalse())
	})

	It("LoadOrStore only stores when the key is absent", func() {
		s := scopedctx.New[string](nil)
		v, loaded := s.LoadOrStore("k", "first")
		Expect(loaded).To(BeFalse())
		Expect(v).To(Equal("first"))

		v, loaded = s.LoadOrStore("k", "second")
		Expect(loaded).To(BeTrue())
		Expect(v).To(Equal("first"))
	})

	It("LoadAndDelete removes the key while returning its value", func() {
		s := scopedctx.New[string](nil)
		s.Store("k", 42)
		v, ok := s.LoadAndDelete("k")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(42))
		_, ok = s.Load("k")
		Expect(ok).To(BeFalse())
	})

	It("Walk visits every stored pair", func() {
		s := scopedctx.New[string](nil)
		s.Store("a", 1)
		s.Store("b", 2)

		seen := map[string]interface{}{}
		s.Walk(func(k string, v interface{}) bool {
			seen[k] = v
			return true
		})
		Expect(seen).To(HaveLen(2))
	})

	It("WalkLimit visits only the requested keys", func() {
		s := scopedctx.New[string](nil)
		s.Store("a", 1)
		s.Store("b", 2)
		s.Store("c", 3)

		seen := map[string]interface{}{}
		s.WalkLimit(func(k string, v interface{}) bool {
			seen[k] = v
			return true
		}, "a", "c")
		Expect(seen).To(HaveLen(2))
		Expect(seen).To(HaveKey("a"))
		Expect(seen).To(HaveKey("c"))
	})

	It("Clean empties the store", func() {
		s := scopedctx.New[string](nil)
		s.Store("a", 1)
		s.Clean()
		_, ok := s.Load("a")
		Expect(ok).To(BeFalse())
	})

	It("Clone produces an independent copy", func() {
		s := scopedctx.New[string](nil)
		s.Store("a", 1)
		clone := s.Clone(nil)
		clone.Store("b", 2)

		_, ok := s.Load("b")
		Expect(ok).To(BeFalse())
		_, ok = clone.Load("a")
		Expect(ok).To(BeTrue())
	})

	It("exposes stored values through context.Value", func() {
		s := scopedctx.New[string](context.Background())
		s.Store("a", "hello")
		var ctx context.Context = s
		Expect(ctx.Value("a")).To(Equal("hello"))
	})
})
