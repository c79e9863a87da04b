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

package protocol

import (
	"sync"
	"sync/atomic"

	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/middleware"
)

// OutstandingRequest is a single in-flight request awaiting its
// response: a one-shot completion channel and an optional side-effect
// callback fired alongside channel delivery. It carries no deadline;
// the caller bounds the wait with its own timeout or context (see
// Wait). MWContext is the middleware.Context the outgoing
// send ran under; the matching incoming response reuses it so a
// middleware that stashed something on the way out (a cache
// fingerprint, say) can read it back, and it is released along with
// the rest of the request when Complete or FailAll removes the entry.
type OutstandingRequest struct {
	RequestID uint32
	done      chan Event
	Callback  func(Event)
	MWContext *middleware.Context
}

// Wait returns the channel the response is delivered on; a receive
// from it blocks until the response arrives. Callers race
// this against their own timeout/context; Correlator.FailAll is what
// delivers a closed event if the connection drops before a response
// shows up.
func (o *OutstandingRequest) Wait() <-chan Event {
	return o.done
}

// Correlator owns the request map a protocol adapter consults to match
// incoming response frames back to the send that produced them. It
// also allocates request_id values: a monotonically increasing u32
// counter that wraps skipping 0, since 0 is reserved to mean
// "no correlation requested" (e.g. a heartbeat or fire-and-forget
// notification).
type Correlator struct {
	mu      sync.Mutex
	pending map[uint32]*OutstandingRequest
	next    uint32
}

// NewCorrelator returns an empty Correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uint32]*OutstandingRequest)}
}

// NextRequestID allocates the next request_id, skipping 0 on wrap.
func (c *Correlator) NextRequestID() uint32 {
	id := atomic.AddUint32(&c.next, 1)
	if id == 0 {
		id = atomic.AddUint32(&c.next, 1)
	}
	return id
}

// Register records a new outstanding request before the corresponding
// send is issued, per section 4.3's encode policy. mwCtx is the
// middleware.Context the outgoing pipeline will run under; it is
// handed back to whoever handles the matching response so the two legs
// of the exchange share one Context.
func (c *Correlator) Register(requestID uint32, callback func(Event), mwCtx *middleware.Context) *OutstandingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := &OutstandingRequest{
		RequestID: requestID,
		done:      make(chan Event, 1),
		Callback:  callback,
		MWContext: mwCtx,
	}
	c.pending[requestID] = req
	return req
}

// MWContext returns the middleware.Context registered alongside
// requestID, if the request is still outstanding, without completing
// or removing it.
func (c *Correlator) MWContext(requestID uint32) *middleware.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[requestID]
	if !ok {
		return nil
	}
	return req.MWContext
}

// Complete resolves the outstanding request matching ev's RequestID,
// exactly once, and returns an InvalidResponse error if no such
// request exists (section 4.3 step 5). Completion does not drop the
// byte stream on a miss - the caller decides what to do with the
// returned error.
func (c *Correlator) Complete(ev Event) error {
	c.mu.Lock()
	req, ok := c.pending[ev.RequestID]
	if ok {
		delete(c.pending, ev.RequestID)
	}
	c.mu.Unlock()

	if !ok {
		return nxerr.New(nxerr.CodeInvalidResponse, "no outstanding request for this request_id")
	}

	if req.Callback != nil {
		req.Callback(ev)
	}
	req.done <- ev
	close(req.done)
	return nil
}

// FailAll fails every outstanding request with err, used on disconnect
// (section 5: "on disconnect all waiters are failed with
// ConnectionClosed").
func (c *Correlator) FailAll(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint32]*OutstandingRequest)
	c.mu.Unlock()

	ev := Event{Kind: KindError, Err: err}
	for _, req := range pending {
		if req.Callback != nil {
			req.Callback(ev)
		}
		req.done <- ev
		close(req.done)
	}
}

// Pending returns the number of currently outstanding requests.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
