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

// Package nexuskit wires every NexusKit subsystem - connection manager,
// logging, tracing and the metrics aggregator - behind one process-wide
// handle that a host application inits once at startup and shuts down
// once at teardown.
package nexuskit

import (
	"sync"

	"github.com/nexuskit/nexuskit/logging"
	"github.com/nexuskit/nexuskit/manager"
	"github.com/nexuskit/nexuskit/metrics"
	"github.com/nexuskit/nexuskit/tracing"
)

// Options configures the process-wide Kit returned by Init.
type Options struct {
	Manager manager.Config
	Metrics metrics.Config
	Sampler tracing.Sampler
}

// Kit bundles the long-lived subsystems a NexusKit-using process needs
// exactly one of: the connection manager, the metrics aggregator and
// the tracer. Build one with Init, or reach for Default once it has
// been initialized.
type Kit struct {
	Manager *manager.Manager
	Metrics *metrics.Aggregator
	Tracer  *tracing.Tracer
	Logger  *logging.Logger

	closeOnce sync.Once
}

var (
	defaultMu  sync.Mutex
	defaultKit *Kit
)

// Init builds a Kit from opts and installs it as the process default,
// returning it. Calling Init again replaces the previous default
// without shutting it down; callers that replace a running Kit are
// responsible for calling Shutdown on the one they are discarding.
func Init(opts Options) *Kit {
	sampler := opts.Sampler
	if sampler == nil {
		sampler = tracing.AlwaysOn()
	}

	k := &Kit{
		Manager: manager.New(opts.Manager),
		Metrics: metrics.New(opts.Metrics),
		Tracer:  tracing.New(sampler),
		Logger:  logging.New(),
	}

	defaultMu.Lock()
	defaultKit = k
	defaultMu.Unlock()

	return k
}

// Default returns the Kit installed by the most recent Init call, or
// nil if Init has never been called.
func Default() *Kit {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultKit
}

// Shutdown disconnects every registered connection with reason,
// releases the manager's resources and closes the logger's sinks. It
// is safe to call more than once; only the first call does anything.
func (k *Kit) Shutdown(reason error) {
	k.closeOnce.Do(func() {
		k.Manager.DisconnectAll(reason)
		k.Manager.Close()
		_ = k.Logger.Close()

		defaultMu.Lock()
		if defaultKit == k {
			defaultKit = nil
		}
		defaultMu.Unlock()
	})
}
