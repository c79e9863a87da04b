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

package cache

import (
	"github.com/nexuskit/nexuskit/middleware"
)

// ctxFingerprintKey is where the middleware stashes the computed
// fingerprint of an outgoing body, so the matching incoming response
// can be stored under the same key.
const ctxFingerprintKey = "cache.fingerprint"

// HitKey is where Middleware stashes the cached body on a hit. The
// connection runtime does not read it: connection.send treats the
// Reject as a dropped send and returns nil, so no response event is
// emitted for the request and the cached body is visible only to a
// caller holding the Context.
const HitKey = "cache.hit_body"

// Middleware wires a Cache into the pipeline: an outgoing hit rejects
// the send and stashes the cached body in ctx under HitKey; every
// incoming response is stored under the fingerprint of the request
// that produced it.
type Middleware struct {
	PipelinePriority int
	Store            *Cache
	Salt             []byte
}

// NewMiddleware returns a cache Middleware backed by store.
func NewMiddleware(priority int, store *Cache, salt []byte) *Middleware {
	return &Middleware{PipelinePriority: priority, Store: store, Salt: salt}
}

func (m *Middleware) Name() string  { return "cache" }
func (m *Middleware) Priority() int { return m.PipelinePriority }

func (m *Middleware) HandleOutgoing(body []byte, ctx *middleware.Context) ([]byte, error) {
	fp := Fingerprint(body, m.Salt)
	ctx.Set(ctxFingerprintKey, fp)

	if cached, ok := m.Store.Get(fp); ok {
		ctx.Set(HitKey, cached)
		return nil, middleware.Reject{Reason: "cache hit"}
	}

	return body, nil
}

func (m *Middleware) HandleIncoming(body []byte, ctx *middleware.Context) ([]byte, error) {
	if fp, ok := ctx.Get(ctxFingerprintKey); ok {
		m.Store.Put(fp.(uint64), body)
	}
	return body, nil
}
