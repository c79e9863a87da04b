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

package state_test

import (
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/state"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Connection state machine", func() {
	DescribeTable("legal transitions succeed",
		func(from, to state.State) {
			Expect(state.Transition(from, to)).To(Succeed())
		},
		Entry("Disconnected -> Connecting", state.Disconnected, state.Connecting),
		Entry("Disconnected -> Reconnecting", state.Disconnected, state.Reconnecting),
		Entry("Connecting -> Connected", state.Connecting, state.Connected),
		Entry("Connecting -> Disconnected", state.Connecting, state.Disconnected),
		Entry("Connecting -> Disconnecting", state.Connecting, state.Disconnecting),
		Entry("Connected -> Disconnecting", state.Connected, state.Disconnecting),
		Entry("Connected -> Reconnecting", state.Connected, state.Reconnecting),
		Entry("Reconnecting -> Connecting", state.Reconnecting, state.Connecting),
		Entry("Reconnecting -> Disconnected", state.Reconnecting, state.Disconnected),
		Entry("Reconnecting -> Disconnecting", state.Reconnecting, state.Disconnecting),
		Entry("Disconnecting -> Disconnected", state.Disconnecting, state.Disconnected),
	)

	DescribeTable("illegal transitions fail with InvalidStateTransition",
		func(from, to state.State) {
			err := state.Transition(from, to)
			Expect(err).To(HaveOccurred())
			Expect(nxerr.HasCode(err, nxerr.CodeInvalidStateTransition)).To(BeTrue())
		},
		Entry("Disconnected -> Connected", state.Disconnected, state.Connected),
		Entry("Disconnected -> Disconnecting", state.Disconnected, state.Disconnecting),
		Entry("Connected -> Connecting", state.Connected, state.Connecting),
		Entry("Disconnecting -> Connecting", state.Disconnecting, state.Connecting),
	)

	It("derives predicates purely from the state value", func() {
		Expect(state.Connected.IsActive()).To(BeTrue())
		Expect(state.Connected.CanSend()).To(BeTrue())
		Expect(state.Disconnected.IsActive()).To(BeFalse())
		Expect(state.Reconnecting.CanSend()).To(BeFalse())
	})

	It("tracks current state and rejects illegal moves without mutating it", func() {
		m := state.NewMachine()
		Expect(m.Current()).To(Equal(state.Disconnected))

		Expect(m.Move(state.Connecting)).To(Succeed())
		Expect(m.Current()).To(Equal(state.Connecting))

		err := m.Move(state.Reconnecting)
		Expect(err).To(HaveOccurred())
		Expect(m.Current()).To(Equal(state.Connecting), "illegal move must not mutate state")
	})
})
