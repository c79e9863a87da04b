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

// Package ratelimit implements the rate-limit middleware variants of
// section 4.4: token_bucket, leaky_bucket, fixed_window, sliding_window
// and concurrent. Every variant exposes the same TryAcquire(cost)
// (never blocks) plus Acquire(ctx, cost, maxWait) (blocks up to maxWait,
// failing with RateLimitExceeded).
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/juju/ratelimit"
	"golang.org/x/time/rate"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Limiter is satisfied by every rate-limit variant.
type Limiter interface {
	TryAcquire(cost int) bool
	Acquire(ctx context.Context, cost int, maxWait time.Duration) error
}

// acquireWithRetry is the shared "try, then poll until maxWait" loop
// every non-native-blocking variant uses to implement Acquire in terms
// of TryAcquire.
func acquireWithRetry(ctx context.Context, l Limiter, cost int, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(time.Millisecond * 5)
	defer ticker.Stop()

	for {
		if l.TryAcquire(cost) {
			return nil
		}
		if time.Now().After(deadline) {
			return nxerr.New(nxerr.CodeRateLimitExceeded, "")
		}
		select {
		case <-ctx.Done():
			return nxerr.New(nxerr.CodeRateLimitExceeded, "context canceled while waiting", ctx.Err())
		case <-ticker.C:
		}
	}
}

// TokenBucket wraps golang.org/x/time/rate.Limiter.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket builds a token-bucket limiter with the given capacity
// (burst) and refill rate (tokens/second).
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(refillRate), capacity)}
}

func (t *TokenBucket) TryAcquire(cost int) bool {
	return t.limiter.AllowN(time.Now(), cost)
}

func (t *TokenBucket) Acquire(ctx context.Context, cost int, maxWait time.Duration) error {
	return acquireWithRetry(ctx, t, cost, maxWait)
}

// LeakyBucket wraps github.com/juju/ratelimit.Bucket.
type LeakyBucket struct {
	bucket *ratelimit.Bucket
}

// NewLeakyBucket builds a leaky-bucket limiter with the given capacity
// and leak rate (tokens/second).
func NewLeakyBucket(capacity int64, leakRate float64) *LeakyBucket {
	return &LeakyBucket{bucket: ratelimit.NewBucketWithRate(leakRate, capacity)}
}

func (l *LeakyBucket) TryAcquire(cost int) bool {
	return l.bucket.TakeAvailable(int64(cost)) == int64(cost)
}

func (l *LeakyBucket) Acquire(ctx context.Context, cost int, maxWait time.Duration) error {
	return acquireWithRetry(ctx, l, cost, maxWait)
}

// FixedWindow counts acquisitions against a max within a rolling,
// reset-on-tick window of the given size.
type FixedWindow struct {
	mu         sync.Mutex
	size       time.Duration
	max        int
	windowOpen time.Time
	count      int
}

// NewFixedWindow builds a fixed-window limiter.
func NewFixedWindow(size time.Duration, max int) *FixedWindow {
	return &FixedWindow{size: size, max: max, windowOpen: time.Now()}
}

func (f *FixedWindow) TryAcquire(cost int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if now.Sub(f.windowOpen) >= f.size {
		f.windowOpen = now
		f.count = 0
	}
	if f.count+cost > f.max {
		return false
	}
	f.count += cost
	return true
}

func (f *FixedWindow) Acquire(ctx context.Context, cost int, maxWait time.Duration) error {
	return acquireWithRetry(ctx, f, cost, maxWait)
}

// SlidingWindow is the continuous analogue of FixedWindow: each
// acquisition is timestamped, and the count considers only events
// within the trailing window.
type SlidingWindow struct {
	mu     sync.Mutex
	size   time.Duration
	max    int
	events []time.Time
}

// NewSlidingWindow builds a sliding-window limiter.
func NewSlidingWindow(size time.Duration, max int) *SlidingWindow {
	return &SlidingWindow{size: size, max: max}
}

func (s *SlidingWindow) TryAcquire(cost int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-s.size)

	kept := s.events[:0]
	for _, t := range s.events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.events = kept

	if len(s.events)+cost > s.max {
		return false
	}
	for i := 0; i < cost; i++ {
		s.events = append(s.events, now)
	}
	return true
}

func (s *SlidingWindow) Acquire(ctx context.Context, cost int, maxWait time.Duration) error {
	return acquireWithRetry(ctx, s, cost, maxWait)
}

// Concurrent limits the number of simultaneously-outstanding
// acquisitions rather than a rate; cost is the number of concurrent
// slots a single acquisition consumes, released via Release.
type Concurrent struct {
	sem chan struct{}
}

// NewConcurrent builds a concurrency limiter allowing up to max
// simultaneous holders.
func NewConcurrent(max int) *Concurrent {
	return &Concurrent{sem: make(chan struct{}, max)}
}

func (c *Concurrent) TryAcquire(cost int) bool {
	acquired := 0
	for acquired < cost {
		select {
		case c.sem <- struct{}{}:
			acquired++
		default:
			for ; acquired > 0; acquired-- {
				<-c.sem
			}
			return false
		}
	}
	return true
}

func (c *Concurrent) Acquire(ctx context.Context, cost int, maxWait time.Duration) error {
	return acquireWithRetry(ctx, c, cost, maxWait)
}

// Release gives back cost concurrency slots previously acquired.
func (c *Concurrent) Release(cost int) {
	for i := 0; i < cost; i++ {
		<-c.sem
	}
}
