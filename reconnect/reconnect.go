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

// Package reconnect implements the backoff strategies of section 4.8:
// pluggable delay-per-attempt functions plus an attempt counter that
// the connection runtime resets once a reconnect attempt reaches the
// fully-Connected state.
package reconnect

import (
	"math/rand"
	"time"
)

// Strategy computes the delay to wait before the (1-indexed) attempt'th
// reconnect try. attempt is always >= 1.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// ExponentialBackoff doubles (times Factor) the delay each attempt,
// starting at Base and never exceeding Max, optionally jittering the
// result by +/- Jitter fraction to avoid synchronized reconnect storms
// across many clients.
type ExponentialBackoff struct {
	Base   time.Duration
	Factor float64
	Max    time.Duration
	Jitter float64
}

// Delay implements Strategy.
func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := b.Factor
	if factor <= 0 {
		factor = 2
	}

	d := float64(b.Base)
	for i := 1; i < attempt; i++ {
		d *= factor
		if b.Max > 0 && d >= float64(b.Max) {
			d = float64(b.Max)
			break
		}
	}
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}

	return applyJitter(time.Duration(d), b.Jitter)
}

// LinearBackoff grows the delay by Step each attempt, starting at Step,
// capped at Max.
type LinearBackoff struct {
	Step time.Duration
	Max  time.Duration
}

// Delay implements Strategy.
func (b LinearBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Step * time.Duration(attempt)
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// Custom adapts a plain function into a Strategy.
type Custom func(attempt int) time.Duration

// Delay implements Strategy.
func (f Custom) Delay(attempt int) time.Duration { return f(attempt) }

func applyJitter(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	if jitter > 1 {
		jitter = 1
	}
	spread := float64(d) * jitter
	offset := (rand.Float64()*2 - 1) * spread
	out := float64(d) + offset
	if out < 0 {
		out = 0
	}
	return time.Duration(out)
}

// Controller tracks the reconnect attempt counter across a connection's
// lifetime, handing out delays from a Strategy and resetting to zero
// once the connection is confirmed healthy again.
type Controller struct {
	strategy Strategy
	attempt  int
}

// New builds a Controller around the given Strategy.
func New(strategy Strategy) *Controller {
	return &Controller{strategy: strategy}
}

// Next advances the attempt counter and returns the delay to wait
// before making that attempt.
func (c *Controller) Next() time.Duration {
	c.attempt++
	return c.strategy.Delay(c.attempt)
}

// Attempt returns the number of reconnect attempts made since the last
// Reset.
func (c *Controller) Attempt() int { return c.attempt }

// Reset zeroes the attempt counter, called once the connection reaches
// the fully-Connected state (section 4.8: a stable connection forgives
// past failures).
func (c *Controller) Reset() { c.attempt = 0 }
