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

// Package interceptor implements the request/response interceptor
// chains of section 4.4: a lighter-weight sibling of the full
// Middleware pipeline, sharing its reject/modify semantics but scoped
// to a single direction (request or response) rather than a paired
// outgoing/incoming hook set.
package interceptor

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nexuskit/nexuskit/middleware"
	"github.com/nexuskit/nexuskit/middleware/cache"
)

// Interceptor transforms or rejects a single directional payload.
type Interceptor interface {
	Name() string
	Intercept(body []byte, ctx *middleware.Context) ([]byte, error)
}

// Chain runs a fixed, ordered list of Interceptors, stopping at the
// first stage that returns an error and returning that error as is: a
// Reject reaches the caller unwrapped, as it does from the Pipeline,
// and other errors are not wrapped in a CodeMiddlewareError.
type Chain struct {
	stages []Interceptor
}

// NewChain returns a Chain running stages in order.
func NewChain(stages ...Interceptor) *Chain {
	return &Chain{stages: stages}
}

// Run applies every stage in order to body.
func (c *Chain) Run(body []byte, ctx *middleware.Context) ([]byte, error) {
	for _, s := range c.stages {
		next, err := s.Intercept(body, ctx)
		if err != nil {
			return nil, err
		}
		body = next
	}
	return body, nil
}

// Logging logs every payload that passes through it via the supplied
// logrus entry, unmodified.
type Logging struct {
	Log *logrus.Entry
	Tag string
}

func (l Logging) Name() string { return "logging" }
func (l Logging) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	l.Log.WithField("tag", l.Tag).WithField("bytes", len(body)).Debug("intercepted payload")
	return body, nil
}

// Validation rejects payloads outside [Min, Max] bytes, or failing a
// caller-supplied Custom predicate.
type Validation struct {
	Min    int
	Max    int
	Custom func([]byte) error
}

func (v Validation) Name() string { return "validation" }
func (v Validation) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	if v.Min > 0 && len(body) < v.Min {
		return nil, middleware.Reject{Reason: "payload below minimum size"}
	}
	if v.Max > 0 && len(body) > v.Max {
		return nil, middleware.Reject{Reason: "payload exceeds maximum size"}
	}
	if v.Custom != nil {
		if err := v.Custom(body); err != nil {
			return nil, middleware.Reject{Reason: err.Error()}
		}
	}
	return body, nil
}

// Transform applies an arbitrary caller-supplied byte transform.
type Transform struct {
	Fn func([]byte) ([]byte, error)
}

func (t Transform) Name() string { return "transform" }
func (t Transform) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	return t.Fn(body)
}

// Throttle sleeps Delay before passing the payload through, modeling
// artificial latency injection for testing/shaping.
type Throttle struct {
	Delay time.Duration
}

func (t Throttle) Name() string { return "throttle" }
func (t Throttle) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	time.Sleep(t.Delay)
	return body, nil
}

// Conditional runs Then only when Predicate(body, ctx) is true,
// otherwise passes the payload through unmodified.
type Conditional struct {
	Predicate func([]byte, *middleware.Context) bool
	Then      Interceptor
}

func (c Conditional) Name() string { return "conditional" }
func (c Conditional) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	if c.Predicate(body, ctx) {
		return c.Then.Intercept(body, ctx)
	}
	return body, nil
}

// Signature appends an HMAC-SHA256 signature of body, keyed by Secret,
// to the end of the payload.
type Signature struct {
	Secret []byte
}

func (s Signature) Name() string { return "signature" }
func (s Signature) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	mac := hmac.New(sha256.New, s.Secret)
	mac.Write(body)
	sig := mac.Sum(nil)
	return append(body, sig...), nil
}

// Verify checks the trailing HMAC-SHA256 signature Signature appended,
// rejecting on mismatch or a too-short payload, and strips it off on
// success.
type Verify struct {
	Secret []byte
}

const sigSize = sha256.Size

func (v Verify) Name() string { return "verify" }
func (v Verify) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	if len(body) < sigSize {
		return nil, middleware.Reject{Reason: "payload too short to carry a signature"}
	}
	payload, sig := body[:len(body)-sigSize], body[len(body)-sigSize:]

	mac := hmac.New(sha256.New, v.Secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if !hmac.Equal(sig, expected) {
		return nil, middleware.Reject{Reason: "signature mismatch"}
	}
	return payload, nil
}

// Parse runs a caller-supplied parser over body purely for its
// side effects (e.g. populating ctx), passing body through unmodified
// on success and rejecting on parse failure.
type Parse struct {
	Fn func([]byte, *middleware.Context) error
}

func (p Parse) Name() string { return "parse" }
func (p Parse) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	if err := p.Fn(body, ctx); err != nil {
		return nil, middleware.Reject{Reason: err.Error()}
	}
	return body, nil
}

// Cache looks body up in Store by fingerprint, rejecting with the
// cached body stashed in ctx on a hit (the same short-circuit
// convention the pipeline-level cache middleware uses) and passing
// through unmodified on a miss.
type Cache struct {
	Store *cache.Cache
	Salt  []byte
}

func (c Cache) Name() string { return "cache" }
func (c Cache) Intercept(body []byte, ctx *middleware.Context) ([]byte, error) {
	fp := cache.Fingerprint(body, c.Salt)
	if cached, ok := c.Store.Get(fp); ok {
		ctx.Set("cache.hit_body", cached)
		return nil, middleware.Reject{Reason: "cache hit"}
	}
	return body, nil
}
