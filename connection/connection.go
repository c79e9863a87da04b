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

// Package connection implements the core runtime of section 5: a
// single Connection that owns one transport socket, drives it through
// the state machine, and fans incoming protocol events out to
// registered handlers or to the request/response correlator. A single
// goroutine - the receive loop - is the only reader of the socket.
// Writes do not go through it: Send, SendRequest and the heartbeat
// write to the socket directly from their own goroutines, and state
// transitions are applied under the connection's mutex by whichever
// call triggers them (Connect, Disconnect, or the receive loop on a
// read failure).
package connection

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nexuskit/nexuskit/buffer"
	"github.com/nexuskit/nexuskit/config"
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/heartbeat"
	"github.com/nexuskit/nexuskit/middleware"
	"github.com/nexuskit/nexuskit/protocol"
	"github.com/nexuskit/nexuskit/reconnect"
	"github.com/nexuskit/nexuskit/scopedctx"
	"github.com/nexuskit/nexuskit/socks5"
	"github.com/nexuskit/nexuskit/state"
	"github.com/nexuskit/nexuskit/tlsengine"
)

// EventType names the events a caller can subscribe to with On.
type EventType string

const (
	EventConnected     EventType = "connected"
	EventDisconnected  EventType = "disconnected"
	EventReconnecting  EventType = "reconnecting"
	EventStateChange   EventType = "state_change"
	EventNotification  EventType = "notification"
	EventError         EventType = "error"
	EventHeartbeatBeat EventType = "heartbeat"
)

// Handler receives the payload associated with an EventType: a
// state.State for EventStateChange, a protocol.Event for
// EventNotification, an error for EventError, the triggering error for
// EventReconnecting, a DisconnectEvent for EventDisconnected, a
// heartbeat.Health for EventHeartbeatBeat, and nil for EventConnected.
type Handler func(payload interface{})

// Connection is the core runtime. The zero value is not usable;
// construct one with New.
type Connection struct {
	cfg config.ConnectionConfiguration

	machine *state.Machine
	mu      sync.Mutex

	conn    net.Conn
	adapter protocol.Adapter

	correlator *protocol.Correlator
	outMW      *middleware.Pipeline
	inMW       *middleware.Pipeline

	heartbeatCtrl     *heartbeat.Controller
	heartbeatSentAt   time.Time
	heartbeatSentLock sync.Mutex

	reconnectCtrl *reconnect.Controller

	identity        atomic.Pointer[tlsengine.Identity]
	identityWatcher *tlsengine.IdentityWatcher

	metadata *scopedctx.Store[string]

	handlersMu sync.RWMutex
	handlers   map[EventType][]Handler

	stopCh chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once

	connectedAt   time.Time
	connectedAtMu sync.RWMutex

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	messagesSent  atomic.Uint64
	messagesRecvd atomic.Uint64
	lastRTT       atomic.Int64
	errorCount    atomic.Uint64
}

// DisconnectReason classifies why a connection left the Connected
// state, so on_disconnected(reason) handlers can tell a user-initiated
// close apart from a network failure (section 9's propagation policy).
type DisconnectReason uint8

const (
	DisconnectRequested DisconnectReason = iota
	DisconnectNetworkError
	DisconnectHeartbeatTimeout
	DisconnectProtocolError
	DisconnectPoisoned
)

func (r DisconnectReason) String() string {
	switch r {
	case DisconnectRequested:
		return "requested"
	case DisconnectNetworkError:
		return "network_error"
	case DisconnectHeartbeatTimeout:
		return "heartbeat_timeout"
	case DisconnectProtocolError:
		return "protocol_error"
	case DisconnectPoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// DisconnectEvent is the payload delivered on EventDisconnected.
type DisconnectEvent struct {
	Reason DisconnectReason
	Err    error
}

func classifyDisconnect(err error) DisconnectReason {
	if err == nil {
		return DisconnectRequested
	}
	switch nxerr.AsCode(err) {
	case nxerr.CodeHeartbeatTimeout:
		return DisconnectHeartbeatTimeout
	case nxerr.CodeProtocolError, nxerr.CodeInvalidMessageFormat, nxerr.CodeDecodingFailed, nxerr.CodeInvalidResponse:
		return DisconnectProtocolError
	case nxerr.CodeBufferOverflow, nxerr.CodeResourceExhausted, nxerr.CodeOutOfMemory:
		return DisconnectPoisoned
	default:
		return DisconnectNetworkError
	}
}

// Stats is a point-in-time snapshot of one connection's counters, the
// shape manager.Manager.Stats() rolls up across every registered
// connection.
type Stats struct {
	State            state.State
	Uptime           time.Duration
	BytesSent        uint64
	BytesReceived    uint64
	MessagesSent     uint64
	MessagesReceived uint64
	CurrentRTT       time.Duration
	LossCount        int
	ErrorCount       uint64
}

// Stats returns a snapshot of this connection's counters.
func (c *Connection) Stats() Stats {
	c.connectedAtMu.RLock()
	connectedAt := c.connectedAt
	c.connectedAtMu.RUnlock()

	var uptime time.Duration
	if !connectedAt.IsZero() && c.State() == state.Connected {
		uptime = time.Since(connectedAt)
	}

	losses := 0
	if c.heartbeatCtrl != nil {
		losses = c.heartbeatCtrl.Losses()
	}

	return Stats{
		State:            c.State(),
		Uptime:           uptime,
		BytesSent:        c.bytesSent.Load(),
		BytesReceived:    c.bytesReceived.Load(),
		MessagesSent:     c.messagesSent.Load(),
		MessagesReceived: c.messagesRecvd.Load(),
		CurrentRTT:       time.Duration(c.lastRTT.Load()),
		LossCount:        losses,
		ErrorCount:       c.errorCount.Load(),
	}
}

// New validates cfg and builds a Connection in the Disconnected state.
// It does not dial anything; call Connect to do that.
func New(cfg config.ConnectionConfiguration) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Connection{
		cfg:        cfg,
		machine:    state.NewMachine(),
		adapter:    buildAdapter(cfg),
		correlator: protocol.NewCorrelator(),
		outMW:      middleware.NewPipeline(),
		inMW:       middleware.NewPipeline(),
		handlers:   make(map[EventType][]Handler),
		metadata:   scopedctx.New[string](context.Background()),
	}

	for k, v := range cfg.Metadata {
		c.metadata.Store(k, v)
	}

	if cfg.ReconnectEnable {
		c.reconnectCtrl = reconnect.New(cfg.ReconnectBackoff)
	}

	if cfg.TLS.Enabled && cfg.TLS.WatchIdentityFile && cfg.TLS.IdentityPKCS12Path != "" {
		w, err := tlsengine.WatchIdentity(cfg.TLS.IdentityPKCS12Path, cfg.TLS.IdentityPassword, c.onIdentityReload)
		if err != nil {
			return nil, nxerr.New(nxerr.CodeTLSCertLoadFailed, "watch identity file", err)
		}
		c.identityWatcher = w
	}

	return c, nil
}

// onIdentityReload is tlsengine.IdentityWatcher's reload callback: a
// successful reload replaces the identity dial() uses for the next
// handshake; a failed one is reported but the previous identity (if
// any) keeps being used rather than leaving the connection unable to
// dial at all.
func (c *Connection) onIdentityReload(id *tlsengine.Identity, err error) {
	if err != nil {
		c.emit(EventError, err)
		return
	}
	c.identity.Store(id)
}

func buildAdapter(cfg config.ConnectionConfiguration) protocol.Adapter {
	switch cfg.Adapter {
	case config.AdapterJSONLine:
		return protocol.NewJSONLineAdapter()
	case config.AdapterMessagePack:
		return protocol.NewMessagePackAdapter()
	default:
		a := protocol.NewBinaryAdapter()
		if cfg.MaxFrameSize > 0 {
			a.MaxFrameSize = cfg.MaxFrameSize
		}
		return a
	}
}

// UseOutgoing registers a middleware on the outgoing pipeline.
func (c *Connection) UseOutgoing(m middleware.Middleware) { c.outMW.Use(m) }

// UseIncoming registers a middleware on the incoming pipeline.
func (c *Connection) UseIncoming(m middleware.Middleware) { c.inMW.Use(m) }

// On registers h to be invoked whenever evt fires. Handlers are called
// from the receive loop's goroutine; a slow handler delays further
// dispatch, so callers that need to do real work should hand off to
// their own goroutine.
func (c *Connection) On(evt EventType, h Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[evt] = append(c.handlers[evt], h)
}

func (c *Connection) emit(evt EventType, payload interface{}) {
	if evt == EventError {
		c.errorCount.Add(1)
	}

	c.handlersMu.RLock()
	hs := append([]Handler(nil), c.handlers[evt]...)
	c.handlersMu.RUnlock()
	for _, h := range hs {
		h(payload)
	}
}

// ID returns the connection's configured identifier, the key the
// connection manager's registry uses.
func (c *Connection) ID() string { return c.cfg.ID }

// Metadata reads a caller-attached annotation set at construction
// (config.ConnectionConfiguration.Metadata) or later via SetMetadata.
func (c *Connection) Metadata(key string) (interface{}, bool) {
	return c.metadata.Load(key)
}

// SetMetadata attaches or replaces a runtime annotation on the
// connection. Storing a nil value removes the key.
func (c *Connection) SetMetadata(key string, value interface{}) {
	c.metadata.Store(key, value)
}

// State returns the connection's current state.
func (c *Connection) State() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

func (c *Connection) moveTo(to state.State) error {
	c.mu.Lock()
	err := c.machine.Move(to)
	c.mu.Unlock()
	if err == nil {
		c.emit(EventStateChange, to)
	}
	return err
}

// Connect dials the configured endpoint (through a SOCKS5 proxy and/or
// TLS, as configured), starts the receive loop and, if enabled, the
// heartbeat controller. It blocks until the connection is established
// or fails.
func (c *Connection) Connect(ctx context.Context) error {
	if err := c.moveTo(state.Connecting); err != nil {
		return err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		_ = c.moveTo(state.Disconnected)
		c.emit(EventError, err)
		c.maybeScheduleReconnect(err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.moveTo(state.Connected); err != nil {
		_ = conn.Close()
		return err
	}

	if c.reconnectCtrl != nil {
		c.reconnectCtrl.Reset()
	}

	c.connectedAtMu.Lock()
	c.connectedAt = time.Now()
	c.connectedAtMu.Unlock()

	c.stopCh = make(chan struct{})
	c.wg.Add(1)
	go c.readLoop(conn, c.stopCh)

	if c.cfg.HeartbeatEnable {
		c.heartbeatCtrl = heartbeat.New(c.cfg.Heartbeat, c.sendHeartbeat, c.onHeartbeatTimeout, c.onHeartbeatHealthChange)
		c.heartbeatCtrl.Start()
	}

	c.emit(EventConnected, nil)
	return nil
}

func (c *Connection) dial(ctx context.Context) (net.Conn, error) {
	ep := c.cfg.Endpoint
	dialer := &net.Dialer{Timeout: c.cfg.ConnectTimeout}

	var raw net.Conn
	var err error

	if c.cfg.Proxy.Enabled {
		proxyAddr := net.JoinHostPort(c.cfg.Proxy.Host, strconv.Itoa(int(c.cfg.Proxy.Port)))
		raw, err = dialer.DialContext(ctx, "tcp", proxyAddr)
		if err != nil {
			return nil, nxerr.New(nxerr.CodeProxyConnectionFailed, "dial proxy", err)
		}
		if err := socks5.Handshake(raw, ep.Host(), ep.Port(), c.cfg.Proxy.Credentials); err != nil {
			_ = raw.Close()
			return nil, err
		}
	} else {
		raw, err = dialer.DialContext(ctx, "tcp", ep.Address())
		if err != nil {
			return nil, nxerr.New(nxerr.CodeConnectionRefused, "dial endpoint", err)
		}
	}

	tuneConn(raw)

	if !c.cfg.TLS.Enabled {
		return raw, nil
	}

	tlsConf, err := tlsengine.Build(c.cfg.TLS.Engine, ep.Host())
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	if c.cfg.TLS.IdentityPKCS12Path != "" {
		id := c.identity.Load()
		if id == nil {
			blob, rerr := os.ReadFile(c.cfg.TLS.IdentityPKCS12Path)
			if rerr != nil {
				_ = raw.Close()
				return nil, nxerr.New(nxerr.CodeTLSCertLoadFailed, "read identity file", rerr)
			}
			loaded, lerr := tlsengine.LoadIdentity(blob, c.cfg.TLS.IdentityPassword)
			if lerr != nil {
				_ = raw.Close()
				return nil, lerr
			}
			id = loaded
			if c.cfg.TLS.WatchIdentityFile {
				c.identity.Store(id)
			}
		}
		tlsConf.Certificates = []tls.Certificate{id.Certificate}
	}

	tlsConn := tls.Client(raw, tlsConf)
	hctx := ctx
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := tlsConn.HandshakeContext(hctx); err != nil {
		_ = tlsConn.Close()
		return nil, nxerr.New(nxerr.CodeTLSHandshakeFailed, "tls handshake", err)
	}

	return tlsConn, nil
}

// Disconnect tears down the connection deliberately. reason is
// delivered on EventDisconnected and used to fail any outstanding
// requests; it does not itself trigger a reconnect attempt.
func (c *Connection) Disconnect(reason error) error {
	if err := c.moveTo(state.Disconnecting); err != nil {
		return err
	}
	c.teardown(reason)
	return c.moveTo(state.Disconnected)
}

func (c *Connection) teardown(reason error) {
	disconnectReason := classifyDisconnect(reason)

	c.closeOnce.Do(func() {
		if c.stopCh != nil {
			close(c.stopCh)
		}
	})

	if c.heartbeatCtrl != nil {
		c.heartbeatCtrl.Stop()
	}

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}

	c.wg.Wait()

	if reason == nil {
		reason = nxerr.New(nxerr.CodeConnectionClosed, "")
	}
	c.correlator.FailAll(reason)
	c.emit(EventDisconnected, DisconnectEvent{Reason: disconnectReason, Err: reason})

	c.closeOnce = sync.Once{}
}

// handleReadFailure is invoked by the receive loop when the socket
// fails out from under it (EOF, reset, or a protocol-level decode
// error). It tears the connection down and, if enabled, schedules a
// reconnect attempt.
func (c *Connection) handleReadFailure(err error) {
	_ = c.moveTo(state.Disconnecting)
	c.teardown(err)
	_ = c.moveTo(state.Disconnected)
	c.maybeScheduleReconnect(err)
}

func (c *Connection) maybeScheduleReconnect(cause error) {
	if c.reconnectCtrl == nil {
		return
	}
	if c.cfg.ReconnectMax > 0 && c.reconnectCtrl.Attempt() >= c.cfg.ReconnectMax {
		return
	}

	delay := c.reconnectCtrl.Next()
	_ = c.moveTo(state.Reconnecting)
	c.emit(EventReconnecting, cause)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		<-timer.C
		_ = c.Connect(context.Background())
	}()
}

// Send transmits body as a fire-and-forget notification (requestID 0),
// applying the outgoing middleware chain first. timeout bounds the
// write call; zero applies the configured SendTimeout instead.
func (c *Connection) Send(body []byte, timeout time.Duration) error {
	mwCtx := middleware.NewContextFor(c.cfg.ID, c.cfg.Endpoint.String(), middleware.DirectionOutgoing)
	return c.send(0, false, 0, body, timeout, mwCtx)
}

// SendRequest transmits body tagged with functionID and correlates the
// reply: it blocks until a response arrives, ctx is done, or timeout
// elapses (0 means wait indefinitely within ctx's own bound).
func (c *Connection) SendRequest(ctx context.Context, functionID uint32, body []byte, timeout time.Duration) (protocol.Event, error) {
	if c.State() != state.Connected {
		return protocol.Event{}, nxerr.New(nxerr.CodeNotConnected, "")
	}

	reqID := c.correlator.NextRequestID()
	mwCtx := middleware.NewContextFor(c.cfg.ID, c.cfg.Endpoint.String(), middleware.DirectionOutgoing)
	req := c.correlator.Register(reqID, nil, mwCtx)

	if err := c.send(reqID, false, functionID, body, 0, mwCtx); err != nil {
		c.correlator.Complete(protocol.Event{Kind: protocol.KindError, RequestID: reqID, Err: err})
		return protocol.Event{}, err
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case ev := <-req.Wait():
		if ev.Kind == protocol.KindError {
			return ev, ev.Err
		}
		return ev, nil
	case <-timeoutCh:
		return protocol.Event{}, nxerr.New(nxerr.CodeConnectionTimeout, "request timed out awaiting response")
	case <-ctx.Done():
		return protocol.Event{}, ctx.Err()
	}
}

func (c *Connection) send(requestID uint32, responseFlag bool, functionID uint32, body []byte, timeout time.Duration, mwCtx *middleware.Context) error {
	if c.State() != state.Connected {
		return nxerr.New(nxerr.CodeNotConnected, "")
	}

	out, err := c.outMW.Outgoing(body, mwCtx)
	if err != nil {
		if _, ok := err.(middleware.Reject); ok {
			return nil
		}
		return err
	}

	wire, err := c.adapter.Encode(protocol.Envelope{
		RequestID:    requestID,
		FunctionID:   functionID,
		ResponseFlag: responseFlag,
		Body:         out,
	})
	if err != nil {
		return err
	}

	return c.write(wire, timeout)
}

func (c *Connection) write(wire []byte, timeout time.Duration) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nxerr.New(nxerr.CodeNotConnected, "")
	}

	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
		defer conn.SetWriteDeadline(time.Time{})
	} else if c.cfg.SendTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.SendTimeout))
		defer conn.SetWriteDeadline(time.Time{})
	}

	n, err := conn.Write(wire)
	if err != nil {
		return nxerr.New(nxerr.CodeConnectionClosed, "write failed", err)
	}
	c.bytesSent.Add(uint64(n))
	c.messagesSent.Add(1)
	return nil
}

// Receive is intentionally unsupported: NexusKit is handler-driven,
// not pull-based (section 5's explicit non-goal). Use On instead.
func (c *Connection) Receive() ([]byte, error) {
	return nil, nxerr.New(nxerr.CodeUnsupportedOperation, "Receive is not supported; register a handler with On instead")
}

func (c *Connection) sendHeartbeat() {
	wire, err := c.adapter.CreateHeartbeat()
	if err != nil {
		c.emit(EventError, err)
		return
	}
	c.heartbeatSentLock.Lock()
	c.heartbeatSentAt = time.Now()
	c.heartbeatSentLock.Unlock()

	if err := c.write(wire, 0); err != nil {
		c.emit(EventError, err)
	}
}

func (c *Connection) onHeartbeatTimeout() {
	// Run off the heartbeat goroutine: teardown stops the controller and
	// waits for that goroutine to exit.
	go c.handleReadFailure(nxerr.New(nxerr.CodeHeartbeatTimeout, ""))
}

func (c *Connection) onHeartbeatHealthChange(h heartbeat.Health) {
	c.emit(EventHeartbeatBeat, h)
}

// readLoop is the only goroutine that reads from conn. It decodes and
// dispatches incoming frames and, on a read or decode failure, tears
// the connection down through handleReadFailure. Writes from Send and
// the heartbeat run concurrently with it on the same conn.
func (c *Connection) readLoop(conn net.Conn, stop chan struct{}) {
	mgr := buffer.New()
	chunk := make([]byte, 32*1024)

	runErr := func() error {
		for {
			n, err := conn.Read(chunk)
			if n > 0 {
				c.bytesReceived.Add(uint64(n))
				if aerr := mgr.Append(chunk[:n]); aerr != nil {
					return aerr
				}
				events, derr := c.adapter.HandleIncoming(mgr)
				for _, ev := range events {
					c.messagesRecvd.Add(1)
					c.dispatch(ev)
				}
				if derr != nil {
					return derr
				}
			}
			if err != nil {
				select {
				case <-stop:
					return nil
				default:
				}
				if err == io.EOF {
					return nxerr.New(nxerr.CodeConnectionClosed, "peer closed the connection")
				}
				return nxerr.New(nxerr.CodeConnectionClosed, "read error", err)
			}
			select {
			case <-stop:
				return nil
			default:
			}
		}
	}()

	// Done before handleReadFailure: its teardown waits on c.wg.
	c.wg.Done()

	if runErr != nil {
		c.handleReadFailure(runErr)
	}
}

func (c *Connection) dispatch(ev protocol.Event) {
	if ev.Kind == protocol.KindControl && ev.IsHeartbeat() {
		c.onIncomingHeartbeat()
		return
	}

	if len(ev.Data) > 0 {
		mwCtx := c.correlator.MWContext(ev.RequestID)
		if mwCtx == nil {
			mwCtx = middleware.NewContextFor(c.cfg.ID, c.cfg.Endpoint.String(), middleware.DirectionIncoming)
		}

		transformed, err := c.inMW.Incoming(ev.Data, mwCtx)
		if err != nil {
			c.emit(EventError, err)
			return
		}
		ev.Data = transformed
	}

	switch ev.Kind {
	case protocol.KindResponse:
		if err := c.correlator.Complete(ev); err != nil {
			c.emit(EventError, err)
		}
	case protocol.KindNotification:
		c.emit(EventNotification, ev)
	case protocol.KindError:
		c.emit(EventError, ev.Err)
	}
}

func (c *Connection) onIncomingHeartbeat() {
	if c.heartbeatCtrl == nil {
		return
	}

	c.heartbeatSentLock.Lock()
	sentAt := c.heartbeatSentAt
	c.heartbeatSentLock.Unlock()

	rtt := time.Duration(0)
	if !sentAt.IsZero() {
		rtt = time.Since(sentAt)
		c.lastRTT.Store(int64(rtt))
	}
	c.heartbeatCtrl.OnAck(rtt)

	// Bidirectional liveness (section 4.7): echo one back immediately
	// so a peer that only reacts to our heartbeats still sees timely
	// traffic, and so an unsolicited peer-initiated heartbeat gets an
	// answer even if we had nothing outstanding.
	go c.sendHeartbeat()
}
