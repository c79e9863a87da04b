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

// Package middleware implements the composable outgoing/incoming byte
// pipeline (section 4.4): an ordered list of Middleware, each able to
// transform a frame's bytes or reject it outright.
package middleware

import (
	"sync"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Direction names which leg of an exchange a Context was built for.
type Direction uint8

const (
	DirectionOutgoing Direction = iota
	DirectionIncoming
)

func (d Direction) String() string {
	if d == DirectionIncoming {
		return "incoming"
	}
	return "outgoing"
}

// Context carries per-message state through the pipeline (section 3's
// MiddlewareContext: connection id, endpoint, direction, a running
// byte count, and scoped key/value storage released with the
// message). A Context is built fresh for each message and discarded
// once that message's round trip completes - middlewares that need to
// remember something between the outgoing and incoming legs of the
// same logical exchange (a cache middleware noting a fingerprint, say)
// stash it in the scoped store, keyed to this one message only, rather
// than through package-level or connection-lifetime state.
type Context struct {
	ConnectionID string
	Endpoint     string
	Direction    Direction
	ByteCount    int

	mu   sync.RWMutex
	vals map[string]any
}

// NewContext returns an empty Context carrying no connection metadata,
// for callers (tests, standalone pipeline use) that only need the
// scoped key/value store.
func NewContext() *Context {
	return &Context{vals: make(map[string]any)}
}

// NewContextFor returns a Context scoped to a single message flowing
// in direction dir on the connection identified by connID/endpoint.
func NewContextFor(connID, endpoint string, dir Direction) *Context {
	return &Context{ConnectionID: connID, Endpoint: endpoint, Direction: dir, vals: make(map[string]any)}
}

// Set stores v under key.
func (c *Context) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = v
}

// Get retrieves the value stored under key, if any.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vals[key]
	return v, ok
}

// Reject short-circuits the pipeline: a middleware returns it from
// either hook to abort processing without running later stages. The
// pipeline surfaces it to the caller unwrapped, so callers that want to
// tell a deliberate drop apart from a real failure can type-assert for
// it directly (the connection runtime does this to silently swallow an
// outgoing send a middleware chose to drop).
type Reject struct {
	Reason string
}

func (r Reject) Error() string { return r.Reason }

// Middleware is a single pipeline stage. Priority determines its
// position: ascending for Outgoing, descending (reverse) for Incoming,
// per section 4.4.
type Middleware interface {
	Name() string
	Priority() int
	HandleOutgoing(body []byte, ctx *Context) ([]byte, error)
	HandleIncoming(body []byte, ctx *Context) ([]byte, error)
}

// Pipeline holds an ordered set of Middleware and runs the outgoing/
// incoming chains over it.
type Pipeline struct {
	mu    sync.RWMutex
	stack []Middleware
}

// NewPipeline returns an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Use appends m to the pipeline and keeps the stack sorted by
// ascending priority.
func (p *Pipeline) Use(m Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stack = append(p.stack, m)
	for i := len(p.stack) - 1; i > 0 && p.stack[i-1].Priority() > p.stack[i].Priority(); i-- {
		p.stack[i-1], p.stack[i] = p.stack[i], p.stack[i-1]
	}
}

// Len returns the number of middlewares currently registered.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stack)
}

func (p *Pipeline) snapshot() []Middleware {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Middleware, len(p.stack))
	copy(out, p.stack)
	return out
}

// Outgoing runs the chain in ascending-priority (forward) order.
func (p *Pipeline) Outgoing(body []byte, ctx *Context) ([]byte, error) {
	ctx.ByteCount = len(body)
	for _, m := range p.snapshot() {
		next, err := m.HandleOutgoing(body, ctx)
		if err != nil {
			return nil, wrapReject(m.Name(), err)
		}
		body = next
		ctx.ByteCount = len(body)
	}
	return body, nil
}

// Incoming runs the chain in reverse-priority order, undoing what
// Outgoing applied.
func (p *Pipeline) Incoming(body []byte, ctx *Context) ([]byte, error) {
	ctx.ByteCount = len(body)
	stack := p.snapshot()
	for i := len(stack) - 1; i >= 0; i-- {
		m := stack[i]
		next, err := m.HandleIncoming(body, ctx)
		if err != nil {
			return nil, wrapReject(m.Name(), err)
		}
		body = next
		ctx.ByteCount = len(body)
	}
	return body, nil
}

// wrapReject passes a deliberate Reject through unwrapped so callers
// can type-assert for it, and wraps anything else in a
// CodeMiddlewareError naming the offending middleware.
func wrapReject(name string, err error) error {
	if rej, ok := err.(Reject); ok {
		return rej
	}
	return nxerr.New(nxerr.CodeMiddlewareError, name, err)
}
