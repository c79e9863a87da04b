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

// Package manager implements the connection manager (section 4.10): a
// registry of Connections keyed by their configured id, capped at a
// maximum concurrent count, with disconnected entries kept around for
// a diagnostic grace period before being pruned.
package manager

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nexuskit/nexuskit/connection"
	nxerr "github.com/nexuskit/nexuskit/errors"
)

// DefaultMaxConcurrent is the registry cap a zero-valued Config falls
// back to.
const DefaultMaxConcurrent = 1000

// DefaultMetadataTTL is how long a disconnected entry's metadata stays
// queryable before the pruning sweep removes it.
const DefaultMetadataTTL = 5 * time.Minute

// DefaultPruneInterval is how often the pruning sweep runs.
const DefaultPruneInterval = 30 * time.Second

// Config tunes a Manager's capacity and retention policy.
type Config struct {
	MaxConcurrent int
	MetadataTTL   time.Duration
	PruneInterval time.Duration
}

// entry pairs a registered Connection with the manager's own
// bookkeeping: when it was registered, and when (if ever) it was
// observed disconnected, which starts the metadata TTL clock.
type entry struct {
	conn           *connection.Connection
	registeredAt   time.Time
	disconnectedAt time.Time
}

func (e *entry) isPrunable(ttl time.Duration, now time.Time) bool {
	if e.disconnectedAt.IsZero() {
		return false
	}
	return now.Sub(e.disconnectedAt) >= ttl
}

// Manager is a concurrency-safe registry of Connections. The zero
// value is not usable; construct one with New.
type Manager struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]*entry

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New returns a Manager applying DefaultMaxConcurrent/DefaultMetadataTTL/
// DefaultPruneInterval to any zero fields in cfg, and starts its
// background pruning sweep.
func New(cfg Config) *Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.MetadataTTL <= 0 {
		cfg.MetadataTTL = DefaultMetadataTTL
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = DefaultPruneInterval
	}

	m := &Manager{
		cfg:     cfg,
		entries: make(map[string]*entry),
		stopCh:  make(chan struct{}),
	}

	m.wg.Add(1)
	go m.pruneLoop()

	return m
}

// Register adds conn to the registry under conn.ID(), failing with
// AlreadyExists if that id is already registered, or ResourceExhausted
// if the registry is already at MaxConcurrent.
func (m *Manager) Register(conn *connection.Connection) error {
	id := conn.ID()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; exists {
		return nxerr.AlreadyExists(id)
	}
	if len(m.entries) >= m.cfg.MaxConcurrent {
		return nxerr.New(nxerr.CodeResourceExhausted, "connection manager at max_concurrent_connections")
	}

	m.entries[id] = &entry{conn: conn, registeredAt: time.Now()}
	return nil
}

// Get returns the Connection registered under id, if any. A
// disconnected-but-not-yet-pruned entry is still returned, matching
// the metadata-retention grace period.
func (m *Manager) Get(id string) (*connection.Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// AllActive returns every registered Connection whose state is
// Connecting, Connected, or Reconnecting.
func (m *Manager) AllActive() []*connection.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*connection.Connection, 0, len(m.entries))
	for _, e := range m.entries {
		if e.conn.State().IsActive() {
			out = append(out, e.conn)
		}
	}
	return out
}

// Disconnect tears down the connection registered under id and marks
// its entry's TTL clock running. NotFound if id isn't registered.
func (m *Manager) Disconnect(id string, reason error) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return nxerr.NotFound(id)
	}

	err := e.conn.Disconnect(reason)

	m.mu.Lock()
	e.disconnectedAt = time.Now()
	m.mu.Unlock()

	return err
}

// DisconnectAll tears down every registered connection concurrently
// and returns once every Disconnect call has returned, reporting the
// first non-nil error. A single slow or already-gone connection never
// blocks the others from being asked to disconnect.
func (m *Manager) DisconnectAll(reason error) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	g, _ := errgroup.WithContext(context.Background())
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return m.Disconnect(id, reason)
		})
	}
	return g.Wait()
}

// Stats is the rolled-up snapshot Manager.Stats returns: per-connection
// breakdown plus sums across every currently registered connection.
type Stats struct {
	TotalRegistered int
	ActiveCount     int
	PerConnection   map[string]connection.Stats
	TotalBytesSent  uint64
	TotalBytesRecv  uint64
	TotalMsgsSent   uint64
	TotalMsgsRecv   uint64
	TotalErrors     uint64
}

// Stats rolls up Connection.Stats() across every registered connection.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := Stats{
		TotalRegistered: len(m.entries),
		PerConnection:   make(map[string]connection.Stats, len(m.entries)),
	}

	for id, e := range m.entries {
		s := e.conn.Stats()
		out.PerConnection[id] = s
		if e.conn.State().IsActive() {
			out.ActiveCount++
		}
		out.TotalBytesSent += s.BytesSent
		out.TotalBytesRecv += s.BytesReceived
		out.TotalMsgsSent += s.MessagesSent
		out.TotalMsgsRecv += s.MessagesReceived
		out.TotalErrors += s.ErrorCount
	}

	return out
}

func (m *Manager) pruneLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case now := <-ticker.C:
			m.prune(now)
		}
	}
}

func (m *Manager) prune(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.entries {
		if e.isPrunable(m.cfg.MetadataTTL, now) {
			delete(m.entries, id)
		}
	}
}

// Close stops the pruning sweep. It does not disconnect registered
// connections; call DisconnectAll first if that's wanted.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}
