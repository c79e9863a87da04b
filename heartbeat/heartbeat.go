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

// Package heartbeat implements the adaptive liveness controller of
// section 4.7: a timer that sends periodic heartbeat frames, tracks
// losses, widens or narrows its interval from observed round-trip
// time, and reports state transitions between idle, healthy, warning
// and timeout.
package heartbeat

import (
	"sync"
	"time"
)

// Health enumerates the controller's liveness assessment.
type Health uint8

const (
	// Idle means the controller has not been started yet.
	Idle Health = iota
	// Healthy means the peer has acknowledged recent heartbeats.
	Healthy
	// Warning means one or more heartbeats have gone unanswered but the
	// loss threshold has not yet been reached.
	Warning
	// Timeout means the loss threshold was reached; the caller should
	// treat the connection as dead.
	Timeout
)

func (h Health) String() string {
	switch h {
	case Idle:
		return "idle"
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Config configures a Controller.
type Config struct {
	// MinInterval and MaxInterval bound the adaptive send interval.
	MinInterval time.Duration
	MaxInterval time.Duration
	// InitialInterval is the interval used before any RTT sample has
	// been observed.
	InitialInterval time.Duration
	// WarningLosses is the number of consecutive unanswered heartbeats
	// after which the controller reports Warning.
	WarningLosses int
	// TimeoutLosses is the number of consecutive unanswered heartbeats
	// after which the controller reports Timeout and stops itself.
	TimeoutLosses int
	// ReplyWindow is not read by the controller: a heartbeat still
	// unanswered when the next one falls due is counted as a loss, so
	// the effective reply window is the current interval.
	ReplyWindow time.Duration
}

// DefaultConfig mirrors the specification's suggested defaults.
func DefaultConfig() Config {
	return Config{
		MinInterval:     5 * time.Second,
		MaxInterval:     60 * time.Second,
		InitialInterval: 15 * time.Second,
		WarningLosses:   2,
		TimeoutLosses:   4,
		ReplyWindow:     10 * time.Second,
	}
}

// Controller runs the send/track/adapt loop. The zero value is not
// usable; construct one with New.
type Controller struct {
	cfg Config

	onSend        func()
	onTimeout     func()
	onStateChange func(Health)

	mu         sync.Mutex
	health     Health
	interval   time.Duration
	losses     int
	awaiting   bool
	lastSentAt time.Time

	timer *time.Timer
	done  chan struct{}
	wg    sync.WaitGroup
}

// New builds a Controller. onSend is invoked (under no lock) each time
// a heartbeat should be transmitted; onTimeout is invoked once, when
// the loss streak reaches cfg.TimeoutLosses; onStateChange is invoked
// whenever Health changes, including the transition into Timeout.
func New(cfg Config, onSend func(), onTimeout func(), onStateChange func(Health)) *Controller {
	return &Controller{
		cfg:           cfg,
		onSend:        onSend,
		onTimeout:     onTimeout,
		onStateChange: onStateChange,
		health:        Idle,
		interval:      cfg.InitialInterval,
	}
}

// Start begins the send loop in a background goroutine.
func (c *Controller) Start() {
	c.mu.Lock()
	c.setHealthLocked(Healthy)
	c.done = make(chan struct{})
	interval := c.interval
	c.mu.Unlock()

	c.timer = time.NewTimer(interval)
	c.wg.Add(1)
	go c.loop()
}

// Stop halts the send loop. It is safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.done
	c.done = nil
	c.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	c.wg.Wait()
}

func (c *Controller) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			c.timer.Stop()
			return
		case <-c.timer.C:
			c.fire()
		}
	}
}

func (c *Controller) fire() {
	c.mu.Lock()
	if c.awaiting {
		c.losses++
		c.applyLossLocked()
	}
	c.awaiting = true
	c.lastSentAt = time.Now()
	interval := c.interval
	timedOut := c.health == Timeout
	c.mu.Unlock()

	if timedOut {
		if c.onTimeout != nil {
			c.onTimeout()
		}
		return
	}

	if c.onSend != nil {
		c.onSend()
	}
	c.resetTimer(interval)
}

// applyLossLocked updates Health from the current loss streak. Caller
// holds c.mu.
func (c *Controller) applyLossLocked() {
	switch {
	case c.losses >= c.cfg.TimeoutLosses:
		c.setHealthLocked(Timeout)
	case c.losses >= c.cfg.WarningLosses:
		c.setHealthLocked(Warning)
	}
	c.interval = c.backoffIntervalLocked()
}

// backoffIntervalLocked doubles the interval towards MaxInterval while
// losses are outstanding, easing off an already-troubled link instead
// of hammering it with more heartbeats it isn't answering.
func (c *Controller) backoffIntervalLocked() time.Duration {
	next := c.interval * 2
	if next > c.cfg.MaxInterval {
		next = c.cfg.MaxInterval
	}
	return next
}

// OnAck reports that the peer answered the outstanding heartbeat,
// supplying the observed round-trip time so the interval can track it.
func (c *Controller) OnAck(rtt time.Duration) {
	c.mu.Lock()
	c.awaiting = false
	c.losses = 0
	c.setHealthLocked(Healthy)
	c.interval = c.rttIntervalLocked(rtt)
	c.mu.Unlock()
}

// rttIntervalLocked sets the next interval proportionally to the
// observed round-trip time, clamped to [MinInterval, MaxInterval]: a
// quick peer earns faster heartbeats, a slow one eases off towards
// MaxInterval. A non-positive rtt (no sample yet, e.g. an unsolicited
// peer heartbeat arriving before our own first send completes) resets
// the interval to InitialInterval instead of guessing from a zero
// sample.
func (c *Controller) rttIntervalLocked(rtt time.Duration) time.Duration {
	if rtt <= 0 {
		return c.cfg.InitialInterval
	}
	next := rtt * 4
	if next < c.cfg.MinInterval {
		next = c.cfg.MinInterval
	}
	if next > c.cfg.MaxInterval {
		next = c.cfg.MaxInterval
	}
	return next
}

// OnPeerHeartbeat reports an unsolicited heartbeat from the peer
// (bidirectional liveness, section 4.7): it resets the local loss
// streak and health the same way a timely ack would, since the peer
// being alive and talkative is itself a liveness signal.
func (c *Controller) OnPeerHeartbeat() {
	c.mu.Lock()
	c.losses = 0
	c.setHealthLocked(Healthy)
	c.mu.Unlock()
}

func (c *Controller) resetTimer(d time.Duration) {
	if !c.timer.Stop() {
		select {
		case <-c.timer.C:
		default:
		}
	}
	c.timer.Reset(d)
}

func (c *Controller) setHealthLocked(h Health) {
	if c.health == h {
		return
	}
	c.health = h
	if c.onStateChange != nil {
		cb := c.onStateChange
		go cb(h)
	}
}

// Health returns the controller's current liveness assessment.
func (c *Controller) Health() Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

// Interval returns the controller's current adaptive send interval.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Losses returns the current consecutive-loss streak.
func (c *Controller) Losses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.losses
}
