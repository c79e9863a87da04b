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

package nexuskit_test

import (
	"errors"
	"testing"

	"github.com/nexuskit/nexuskit"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNexusKit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NexusKit Suite")
}

var _ = Describe("Init/Default/Shutdown", func() {
	It("installs and returns the same Kit as Default", func() {
		k := nexuskit.Init(nexuskit.Options{})
		Expect(nexuskit.Default()).To(BeIdenticalTo(k))

		k.Shutdown(errors.New("test teardown"))
	})

	It("Shutdown is idempotent and clears Default", func() {
		k := nexuskit.Init(nexuskit.Options{})
		k.Shutdown(errors.New("first"))
		k.Shutdown(errors.New("second"))

		Expect(nexuskit.Default()).To(BeNil())
	})
})
