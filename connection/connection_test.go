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

package connection_test

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexuskit/nexuskit/config"
	"github.com/nexuskit/nexuskit/connection"
	"github.com/nexuskit/nexuskit/endpoint"
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/frame"
	"github.com/nexuskit/nexuskit/middleware/cache"
	"github.com/nexuskit/nexuskit/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConnection(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Connection Suite")
}

// fakeServer accepts a single connection and lets the test script reads
// and writes against it directly, matching the net.Pipe()-driven fake
// servers used throughout this module's other suites but over a real
// loopback socket since Connection dials with net.Dialer itself.
type fakeServer struct {
	ln   net.Listener
	conn net.Conn
	mu   sync.Mutex
}

func newFakeServer() *fakeServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	return &fakeServer{ln: ln}
}

func (f *fakeServer) addr() (string, uint16) {
	tcpAddr := f.ln.Addr().(*net.TCPAddr)
	return tcpAddr.IP.String(), uint16(tcpAddr.Port)
}

func (f *fakeServer) accept() net.Conn {
	c, err := f.ln.Accept()
	Expect(err).NotTo(HaveOccurred())
	f.mu.Lock()
	f.conn = c
	f.mu.Unlock()
	return c
}

func (f *fakeServer) readFrame() (frame.Frame, error) {
	f.mu.Lock()
	c := f.conn
	f.mu.Unlock()

	lenBuf := make([]byte, frame.LengthPrefixSize)
	if _, err := readFull(c, lenBuf); err != nil {
		return frame.Frame{}, err
	}
	total := beUint32(lenBuf)

	rest := make([]byte, total)
	if _, err := readFull(c, rest); err != nil {
		return frame.Frame{}, err
	}

	h, err := frame.DecodeHeader(rest[:frame.HeaderSize])
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.DecodeBody(h, rest[frame.HeaderSize:])
}

func (f *fakeServer) writeFrame(fr frame.Frame) error {
	f.mu.Lock()
	c := f.conn
	f.mu.Unlock()

	wire, err := frame.Encode(fr, frame.EncodeOptions{})
	if err != nil {
		return err
	}
	_, err = c.Write(wire)
	return err
}

func (f *fakeServer) close() {
	f.mu.Lock()
	if f.conn != nil {
		_ = f.conn.Close()
	}
	f.mu.Unlock()
	_ = f.ln.Close()
}

func readFull(c net.Conn, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := c.Read(p[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func beUint32(p []byte) int {
	return int(p[0])<<24 | int(p[1])<<16 | int(p[2])<<8 | int(p[3])
}

func testConfig(host string, port uint16) config.ConnectionConfiguration {
	cfg, err := config.NewBuilder(endpoint.TCP(host, port)).
		WithTimeouts(2*time.Second, 2*time.Second).
		WithoutHeartbeat().
		WithoutReconnect().
		Build()
	Expect(err).NotTo(HaveOccurred())
	return cfg
}

var _ = Describe("Connection", func() {
	var srv *fakeServer

	BeforeEach(func() {
		srv = newFakeServer()
	})

	AfterEach(func() {
		srv.close()
	})

	It("connects, completes a request/response round trip, and fires Connected", func() {
		host, port := srv.addr()
		conn, err := connection.New(testConfig(host, port))
		Expect(err).NotTo(HaveOccurred())

		var connected int32
		conn.On(connection.EventConnected, func(interface{}) {
			atomic.StoreInt32(&connected, 1)
		})

		serverConn := make(chan net.Conn, 1)
		go func() { serverConn <- srv.accept() }()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		Expect(conn.Connect(ctx)).To(Succeed())
		Eventually(serverConn, time.Second).Should(Receive())
		Eventually(func() int32 { return atomic.LoadInt32(&connected) }, time.Second).Should(Equal(int32(1)))

		go func() {
			defer GinkgoRecover()
			req, rerr := srv.readFrame()
			Expect(rerr).NotTo(HaveOccurred())
			Expect(req.Header.FunctionID).To(Equal(uint32(42)))

			resp := frame.Frame{Header: frame.Header{
				Tag:          frame.Tag,
				Version:      frame.Version,
				ResponseFlag: 1,
				RequestID:    req.Header.RequestID,
				FunctionID:   req.Header.FunctionID,
				ResponseCode: frame.ResponseCodeSuccess,
			}, Body: []byte("pong")}
			Expect(srv.writeFrame(resp)).To(Succeed())
		}()

		ev, err := conn.SendRequest(context.Background(), 42, []byte("ping"), time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(ev.Data)).To(Equal("pong"))
	})

	It("fails outstanding requests when the connection is deliberately disconnected", func() {
		host, port := srv.addr()
		conn, err := connection.New(testConfig(host, port))
		Expect(err).NotTo(HaveOccurred())

		serverConn := make(chan net.Conn, 1)
		go func() { serverConn <- srv.accept() }()

		Expect(conn.Connect(context.Background())).To(Succeed())
		Eventually(serverConn, time.Second).Should(Receive())

		requestErr := make(chan error, 1)
		go func() {
			_, err := conn.SendRequest(context.Background(), 1, []byte("x"), 2*time.Second)
			requestErr <- err
		}()

		// Give SendRequest time to register before we tear the connection down.
		time.Sleep(50 * time.Millisecond)
		Expect(conn.Disconnect(nil)).To(Succeed())

		Eventually(requestErr, time.Second).Should(Receive(HaveOccurred()))
	})

	It("fires Disconnected on deliberate teardown and Notification on an unsolicited frame", func() {
		host, port := srv.addr()
		conn, err := connection.New(testConfig(host, port))
		Expect(err).NotTo(HaveOccurred())

		var disconnected int32
		notifications := make(chan protocol.Event, 1)
		conn.On(connection.EventDisconnected, func(interface{}) {
			atomic.StoreInt32(&disconnected, 1)
		})
		conn.On(connection.EventNotification, func(p interface{}) {
			if ev, ok := p.(protocol.Event); ok {
				notifications <- ev
			}
		})

		serverConn := make(chan net.Conn, 1)
		go func() { serverConn <- srv.accept() }()

		Expect(conn.Connect(context.Background())).To(Succeed())
		Eventually(serverConn, time.Second).Should(Receive())

		Expect(srv.writeFrame(frame.Frame{Header: frame.Header{
			Tag:        frame.Tag,
			Version:    frame.Version,
			FunctionID: 7,
		}, Body: []byte("hello")})).To(Succeed())

		var ev protocol.Event
		Eventually(notifications, time.Second).Should(Receive(&ev))
		Expect(string(ev.Data)).To(Equal("hello"))

		Expect(conn.Disconnect(nil)).To(Succeed())
		Eventually(func() int32 { return atomic.LoadInt32(&disconnected) }, time.Second).Should(Equal(int32(1)))
	})

	It("reconnects automatically when the underlying socket is closed by the peer", func() {
		host, port := srv.addr()
		cfg, err := config.NewBuilder(endpoint.TCP(host, port)).
			WithTimeouts(2*time.Second, 2*time.Second).
			WithoutHeartbeat().
			Build()
		Expect(err).NotTo(HaveOccurred())

		conn, err := connection.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		reconnecting := make(chan struct{}, 1)
		conn.On(connection.EventReconnecting, func(interface{}) {
			select {
			case reconnecting <- struct{}{}:
			default:
			}
		})

		firstConn := make(chan net.Conn, 1)
		go func() { firstConn <- srv.accept() }()

		Expect(conn.Connect(context.Background())).To(Succeed())
		var c net.Conn
		Eventually(firstConn, time.Second).Should(Receive(&c))

		secondAccepted := make(chan net.Conn, 1)
		go func() {
			nc, aerr := srv.ln.Accept()
			if aerr == nil {
				secondAccepted <- nc
			}
		}()

		_ = c.Close()

		Eventually(reconnecting, 2*time.Second).Should(Receive())
		Eventually(secondAccepted, 3*time.Second).Should(Receive())
	})

	It("returns CodeUnsupportedOperation from Receive", func() {
		host, port := srv.addr()
		conn, err := connection.New(testConfig(host, port))
		Expect(err).NotTo(HaveOccurred())

		_, err = conn.Receive()
		Expect(err).To(HaveOccurred())
		Expect(nxerr.HasCode(err, nxerr.CodeUnsupportedOperation)).To(BeTrue())
	})

	It("seeds metadata from configuration and accepts runtime updates", func() {
		host, port := srv.addr()
		cfg, err := config.NewBuilder(endpoint.TCP(host, port)).
			WithTimeouts(2*time.Second, 2*time.Second).
			WithoutHeartbeat().
			WithoutReconnect().
			WithMetadataValue("owner", "billing-service").
			Build()
		Expect(err).NotTo(HaveOccurred())

		conn, err := connection.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		v, ok := conn.Metadata("owner")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("billing-service"))

		conn.SetMetadata("owner", "payments-service")
		v, ok = conn.Metadata("owner")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("payments-service"))

		_, ok = conn.Metadata("missing")
		Expect(ok).To(BeFalse())
	})

	It("keeps two in-flight requests' cache fingerprints independent of each other", func() {
		host, port := srv.addr()
		conn, err := connection.New(testConfig(host, port))
		Expect(err).NotTo(HaveOccurred())

		store, err := cache.New(8, 32, cache.StrategyLRU, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		cacheMW := cache.NewMiddleware(0, store, nil)
		conn.UseOutgoing(cacheMW)
		conn.UseIncoming(cacheMW)

		serverConn := make(chan net.Conn, 1)
		go func() { serverConn <- srv.accept() }()

		Expect(conn.Connect(context.Background())).To(Succeed())
		Eventually(serverConn, time.Second).Should(Receive())

		go func() {
			defer GinkgoRecover()
			for i := 0; i < 2; i++ {
				req, rerr := srv.readFrame()
				Expect(rerr).NotTo(HaveOccurred())

				var respBody []byte
				switch string(req.Body) {
				case "alpha":
					respBody = []byte("alpha-response")
				case "beta":
					respBody = []byte("beta-response")
				}

				resp := frame.Frame{Header: frame.Header{
					Tag:          frame.Tag,
					Version:      frame.Version,
					ResponseFlag: 1,
					RequestID:    req.Header.RequestID,
					FunctionID:   req.Header.FunctionID,
					ResponseCode: frame.ResponseCodeSuccess,
				}, Body: respBody}
				Expect(srv.writeFrame(resp)).To(Succeed())
			}
		}()

		var wg sync.WaitGroup
		wg.Add(2)
		var alphaErr, betaErr error
		var alphaEv, betaEv protocol.Event
		go func() {
			defer wg.Done()
			alphaEv, alphaErr = conn.SendRequest(context.Background(), 1, []byte("alpha"), 2*time.Second)
		}()
		go func() {
			defer wg.Done()
			betaEv, betaErr = conn.SendRequest(context.Background(), 2, []byte("beta"), 2*time.Second)
		}()
		wg.Wait()

		Expect(alphaErr).NotTo(HaveOccurred())
		Expect(betaErr).NotTo(HaveOccurred())
		Expect(string(alphaEv.Data)).To(Equal("alpha-response"))
		Expect(string(betaEv.Data)).To(Equal("beta-response"))

		alphaFP := cache.Fingerprint([]byte("alpha"), nil)
		betaFP := cache.Fingerprint([]byte("beta"), nil)

		cachedAlpha, ok := store.Get(alphaFP)
		Expect(ok).To(BeTrue())
		Expect(cachedAlpha).To(Equal([]byte("alpha-response")))

		cachedBeta, ok := store.Get(betaFP)
		Expect(ok).To(BeTrue())
		Expect(cachedBeta).To(Equal([]byte("beta-response")))
	})
})
