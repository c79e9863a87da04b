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

package manager_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nexuskit/nexuskit/config"
	"github.com/nexuskit/nexuskit/connection"
	"github.com/nexuskit/nexuskit/endpoint"
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/manager"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestManager(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Manager Suite")
}

// loopbackConn starts a listener that accepts exactly one connection
// and immediately parks it, then returns a Connection dialed against
// it. The server side is closed when the test is done with it.
func loopbackConn() (*connection.Connection, net.Listener) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())

	go func() {
		c, aerr := ln.Accept()
		if aerr == nil {
			// Keep the accepted side open for the test's duration; it is
			// closed implicitly when the listener (and thus this
			// goroutine's connection) is torn down by the test.
			_ = c
		}
	}()

	tcpAddr := ln.Addr().(*net.TCPAddr)
	cfg, err := config.NewBuilder(endpoint.TCP(tcpAddr.IP.String(), uint16(tcpAddr.Port))).
		WithTimeouts(2*time.Second, 2*time.Second).
		WithoutHeartbeat().
		WithoutReconnect().
		Build()
	Expect(err).NotTo(HaveOccurred())

	conn, err := connection.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	Expect(conn.Connect(context.Background())).To(Succeed())

	return conn, ln
}

var _ = Describe("Manager", func() {
	It("registers and retrieves a connection by id", func() {
		m := manager.New(manager.Config{})
		defer m.Close()

		conn, ln := loopbackConn()
		defer ln.Close()

		Expect(m.Register(conn)).To(Succeed())

		got, ok := m.Get(conn.ID())
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(conn))
	})

	It("rejects a second registration under the same id", func() {
		m := manager.New(manager.Config{})
		defer m.Close()

		conn, ln := loopbackConn()
		defer ln.Close()

		Expect(m.Register(conn)).To(Succeed())
		err := m.Register(conn)
		Expect(err).To(HaveOccurred())
		Expect(nxerr.HasCode(err, nxerr.CodeAlreadyExists)).To(BeTrue())
	})

	It("enforces MaxConcurrent", func() {
		m := manager.New(manager.Config{MaxConcurrent: 1})
		defer m.Close()

		first, ln1 := loopbackConn()
		defer ln1.Close()
		second, ln2 := loopbackConn()
		defer ln2.Close()

		Expect(m.Register(first)).To(Succeed())
		err := m.Register(second)
		Expect(err).To(HaveOccurred())
		Expect(nxerr.HasCode(err, nxerr.CodeResourceExhausted)).To(BeTrue())
	})

	It("lists only active connections in AllActive", func() {
		m := manager.New(manager.Config{})
		defer m.Close()

		conn, ln := loopbackConn()
		defer ln.Close()
		Expect(m.Register(conn)).To(Succeed())

		Expect(m.AllActive()).To(HaveLen(1))

		Expect(m.Disconnect(conn.ID(), nil)).To(Succeed())
		Expect(m.AllActive()).To(BeEmpty())
	})

	It("reports NotFound for an unregistered id", func() {
		m := manager.New(manager.Config{})
		defer m.Close()

		err := m.Disconnect("missing", nil)
		Expect(err).To(HaveOccurred())
		Expect(nxerr.HasCode(err, nxerr.CodeNotFound)).To(BeTrue())
	})

	It("rolls up Stats across registered connections", func() {
		m := manager.New(manager.Config{})
		defer m.Close()

		a, lnA := loopbackConn()
		defer lnA.Close()
		b, lnB := loopbackConn()
		defer lnB.Close()

		Expect(m.Register(a)).To(Succeed())
		Expect(m.Register(b)).To(Succeed())

		stats := m.Stats()
		Expect(stats.TotalRegistered).To(Equal(2))
		Expect(stats.ActiveCount).To(Equal(2))
		Expect(stats.PerConnection).To(HaveLen(2))
	})

	It("disconnects every registered connection via DisconnectAll", func() {
		m := manager.New(manager.Config{})
		defer m.Close()

		a, lnA := loopbackConn()
		defer lnA.Close()
		b, lnB := loopbackConn()
		defer lnB.Close()

		Expect(m.Register(a)).To(Succeed())
		Expect(m.Register(b)).To(Succeed())

		m.DisconnectAll(nil)

		Expect(m.AllActive()).To(BeEmpty())
	})

	It("prunes disconnected metadata after the TTL elapses", func() {
		m := manager.New(manager.Config{MetadataTTL: 20 * time.Millisecond, PruneInterval: 10 * time.Millisecond})
		defer m.Close()

		conn, ln := loopbackConn()
		defer ln.Close()
		Expect(m.Register(conn)).To(Succeed())
		Expect(m.Disconnect(conn.ID(), nil)).To(Succeed())

		Eventually(func() bool {
			_, ok := m.Get(conn.ID())
			return ok
		}, time.Second).Should(BeFalse())
	})
})
