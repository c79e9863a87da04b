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

package ratelimit

import (
	"context"
	"time"

	"github.com/nexuskit/nexuskit/middleware"
)

// Middleware wires a Limiter into the pipeline's outgoing leg: every
// outgoing body costs one unit against the configured limiter, blocking
// up to MaxWait before failing with RateLimitExceeded. It never limits
// the incoming leg.
type Middleware struct {
	PipelinePriority int
	Lim              Limiter
	MaxWait          time.Duration
}

// New returns a rate-limit Middleware backed by lim.
func New(priority int, lim Limiter, maxWait time.Duration) *Middleware {
	return &Middleware{PipelinePriority: priority, Lim: lim, MaxWait: maxWait}
}

func (m *Middleware) Name() string  { return "ratelimit" }
func (m *Middleware) Priority() int { return m.PipelinePriority }

func (m *Middleware) HandleOutgoing(body []byte, ctx *middleware.Context) ([]byte, error) {
	if err := m.Lim.Acquire(context.Background(), 1, m.MaxWait); err != nil {
		return nil, err
	}
	return body, nil
}

func (m *Middleware) HandleIncoming(body []byte, ctx *middleware.Context) ([]byte, error) {
	return body, nil
}
