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

// Package metrics implements the dashboard metrics aggregator (section
// 4.11): a bounded in-memory history of AggregatedMetrics snapshots,
// fanned out to a capped number of live subscribers, exported both as
// a Prometheus registry and as ad-hoc JSON/text reports.
package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexuskit/nexuskit/connection"
	"github.com/nexuskit/nexuskit/manager"
)

// Snapshot is one point in the aggregator's history: the overview
// counters, health gauge, and per-connection breakdown that together
// make up one AggregatedMetrics roll-up of manager.Manager.Stats() at a
// point in time.
type Snapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalRegistered int       `json:"total_registered"`
	ActiveCount     int       `json:"active_count"`
	TotalBytesSent  uint64    `json:"total_bytes_sent"`
	TotalBytesRecv  uint64    `json:"total_bytes_received"`
	TotalMsgsSent   uint64    `json:"total_messages_sent"`
	TotalMsgsRecv   uint64    `json:"total_messages_received"`
	TotalErrors     uint64    `json:"total_errors"`

	// QPS is the message rate (sent + received) since the previous
	// snapshot, in messages per second. 0 for the first snapshot.
	QPS float64 `json:"qps"`

	// AvgLatency is the mean CurrentRTT across every connection that
	// has measured at least one round trip; 0 if none have.
	AvgLatency time.Duration `json:"avg_latency_ns"`

	// Health is a 0..1 gauge: the fraction of registered connections
	// that are currently active. 1 when nothing is registered, since
	// there is nothing unhealthy to report.
	Health float64 `json:"health"`

	PerConnection map[string]connection.Stats `json:"per_connection"`
}

// Config bounds the aggregator's retained history and subscriber fan-out.
type Config struct {
	HistoryRetention time.Duration
	MaxHistoryPoints int
	MaxClients       int
}

// DefaultHistoryRetention and DefaultMaxHistoryPoints are the values a
// zero Config falls back to.
const (
	DefaultHistoryRetention = 24 * time.Hour
	DefaultMaxHistoryPoints = 4096
	DefaultMaxClients       = 32
)

// Aggregator is the dashboard metrics aggregator. The zero value is
// not usable; construct one with New.
type Aggregator struct {
	cfg Config

	mu      sync.RWMutex
	history []Snapshot

	subMu sync.Mutex
	subs  []chan Snapshot

	registry      *prometheus.Registry
	bytesSent     prometheus.Counter
	bytesRecv     prometheus.Counter
	msgsSent      prometheus.Counter
	msgsRecv      prometheus.Counter
	errorsTotal   prometheus.Counter
	activeGauge   prometheus.Gauge
	registeredGau prometheus.Gauge
	healthGauge   prometheus.Gauge
	latencyGauge  prometheus.Gauge
}

// New returns an Aggregator applying DefaultHistoryRetention/
// DefaultMaxHistoryPoints/DefaultMaxClients to any zero fields in cfg.
func New(cfg Config) *Aggregator {
	if cfg.HistoryRetention <= 0 {
		cfg.HistoryRetention = DefaultHistoryRetention
	}
	if cfg.MaxHistoryPoints <= 0 {
		cfg.MaxHistoryPoints = DefaultMaxHistoryPoints
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}

	registry := prometheus.NewRegistry()

	a := &Aggregator{
		cfg:      cfg,
		registry: registry,
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nexuskit", Name: "bytes_sent_total", Help: "Total bytes sent across all connections.",
		}),
		bytesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nexuskit", Name: "bytes_received_total", Help: "Total bytes received across all connections.",
		}),
		msgsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nexuskit", Name: "messages_sent_total", Help: "Total messages sent across all connections.",
		}),
		msgsRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nexuskit", Name: "messages_received_total", Help: "Total messages received across all connections.",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nexuskit", Name: "errors_total", Help: "Total EventError occurrences across all connections.",
		}),
		activeGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nexuskit", Name: "active_connections", Help: "Connections currently active.",
		}),
		registeredGau: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nexuskit", Name: "registered_connections", Help: "Connections currently registered.",
		}),
		healthGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nexuskit", Name: "health", Help: "Fraction of registered connections currently active, 0..1.",
		}),
		latencyGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nexuskit", Name: "avg_latency_seconds", Help: "Mean current RTT across connections with a measured round trip.",
		}),
	}

	registry.MustRegister(
		a.bytesSent, a.bytesRecv, a.msgsSent, a.msgsRecv, a.errorsTotal,
		a.activeGauge, a.registeredGau, a.healthGauge, a.latencyGauge,
	)

	return a
}

// Record takes a manager.Stats roll-up, derives qps/avg latency/health
// from it against the previous snapshot, appends the result to the
// bounded history, updates the Prometheus counters/gauges (counters
// only move forward, so this adds the delta since the last snapshot),
// and fans the new Snapshot out to every live subscriber.
func (a *Aggregator) Record(stats manager.Stats) Snapshot {
	now := nowFunc()

	a.mu.Lock()
	var prev Snapshot
	if n := len(a.history); n > 0 {
		prev = a.history[n-1]
	}
	a.mu.Unlock()

	snap := Snapshot{
		Timestamp:       now,
		TotalRegistered: stats.TotalRegistered,
		ActiveCount:     stats.ActiveCount,
		TotalBytesSent:  stats.TotalBytesSent,
		TotalBytesRecv:  stats.TotalBytesRecv,
		TotalMsgsSent:   stats.TotalMsgsSent,
		TotalMsgsRecv:   stats.TotalMsgsRecv,
		TotalErrors:     stats.TotalErrors,
		PerConnection:   stats.PerConnection,
	}
	snap.QPS = computeQPS(prev, snap)
	snap.AvgLatency = averageLatency(stats.PerConnection)
	snap.Health = healthGaugeValue(stats.TotalRegistered, stats.ActiveCount)

	a.mu.Lock()
	a.history = append(a.history, snap)
	a.trimLocked()
	a.mu.Unlock()

	a.bytesSent.Add(float64(deltaUint64(prev.TotalBytesSent, snap.TotalBytesSent)))
	a.bytesRecv.Add(float64(deltaUint64(prev.TotalBytesRecv, snap.TotalBytesRecv)))
	a.msgsSent.Add(float64(deltaUint64(prev.TotalMsgsSent, snap.TotalMsgsSent)))
	a.msgsRecv.Add(float64(deltaUint64(prev.TotalMsgsRecv, snap.TotalMsgsRecv)))
	a.errorsTotal.Add(float64(deltaUint64(prev.TotalErrors, snap.TotalErrors)))
	a.activeGauge.Set(float64(snap.ActiveCount))
	a.registeredGau.Set(float64(snap.TotalRegistered))
	a.healthGauge.Set(snap.Health)
	a.latencyGauge.Set(snap.AvgLatency.Seconds())

	a.fanOut(snap)

	return snap
}

func deltaUint64(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// computeQPS returns the message rate (sent + received) between prev
// and cur, or 0 for the first snapshot / a non-positive elapsed time.
func computeQPS(prev, cur Snapshot) float64 {
	if prev.Timestamp.IsZero() {
		return 0
	}
	elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	prevTotal := prev.TotalMsgsSent + prev.TotalMsgsRecv
	curTotal := cur.TotalMsgsSent + cur.TotalMsgsRecv
	return float64(deltaUint64(prevTotal, curTotal)) / elapsed
}

// averageLatency means CurrentRTT across every connection that has
// measured at least one round trip.
func averageLatency(perConn map[string]connection.Stats) time.Duration {
	var sum time.Duration
	var n int
	for _, s := range perConn {
		if s.CurrentRTT > 0 {
			sum += s.CurrentRTT
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / time.Duration(n)
}

// healthGaugeValue is the fraction of registered connections currently
// active, 1 when nothing is registered since there is nothing
// unhealthy to report.
func healthGaugeValue(registered, active int) float64 {
	if registered == 0 {
		return 1
	}
	return float64(active) / float64(registered)
}

// trimLocked enforces MaxHistoryPoints and HistoryRetention, measuring
// retention back from the newest snapshot's timestamp. Caller must hold
// a.mu and the history must not be empty.
func (a *Aggregator) trimLocked() {
	if len(a.history) > a.cfg.MaxHistoryPoints {
		a.history = a.history[len(a.history)-a.cfg.MaxHistoryPoints:]
	}

	cutoff := a.history[len(a.history)-1].Timestamp.Add(-a.cfg.HistoryRetention)
	i := 0
	for ; i < len(a.history); i++ {
		if a.history[i].Timestamp.After(cutoff) {
			break
		}
	}
	a.history = a.history[i:]
}

// Subscribe registers a new fan-out channel, failing with ok=false if
// MaxClients subscribers are already registered. The returned
// unsubscribe func must be called when the caller is done listening.
func (a *Aggregator) Subscribe() (ch <-chan Snapshot, unsubscribe func(), ok bool) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	if len(a.subs) >= a.cfg.MaxClients {
		return nil, func() {}, false
	}

	c := make(chan Snapshot, 1)
	a.subs = append(a.subs, c)

	unsub := func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		for i, sub := range a.subs {
			if sub == c {
				a.subs = append(a.subs[:i], a.subs[i+1:]...)
				close(c)
				return
			}
		}
	}

	return c, unsub, true
}

func (a *Aggregator) fanOut(snap Snapshot) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for _, c := range a.subs {
		select {
		case c <- snap:
		default:
			// Slow subscriber; drop rather than block Record's caller.
		}
	}
}

// Snapshot returns the most recent recorded Snapshot, or the zero
// value if nothing has been recorded yet.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.history) == 0 {
		return Snapshot{}
	}
	return a.history[len(a.history)-1]
}

// History returns a copy of every retained Snapshot, oldest first.
func (a *Aggregator) History() []Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Snapshot, len(a.history))
	copy(out, a.history)
	return out
}

// JSONReport renders the current history as a JSON array.
func (a *Aggregator) JSONReport() (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(a.History()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TextReport renders the most recent Snapshot as the dashboard's
// textual report: Overview, Health, Connections, Performance sections.
func (a *Aggregator) TextReport() string {
	s := a.Snapshot()

	var b strings.Builder

	fmt.Fprintf(&b, "Overview\n")
	fmt.Fprintf(&b, "  connections: %d active / %d registered\n", s.ActiveCount, s.TotalRegistered)
	fmt.Fprintf(&b, "  bytes: %d sent / %d received\n", s.TotalBytesSent, s.TotalBytesRecv)
	fmt.Fprintf(&b, "  messages: %d sent / %d received\n", s.TotalMsgsSent, s.TotalMsgsRecv)
	fmt.Fprintf(&b, "  errors: %d\n", s.TotalErrors)

	fmt.Fprintf(&b, "Health\n")
	fmt.Fprintf(&b, "  gauge: %.2f\n", s.Health)

	fmt.Fprintf(&b, "Connections\n")
	if len(s.PerConnection) == 0 {
		fmt.Fprintf(&b, "  (none registered)\n")
	} else {
		ids := make([]string, 0, len(s.PerConnection))
		for id := range s.PerConnection {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cs := s.PerConnection[id]
			fmt.Fprintf(&b, "  %s: state=%s uptime=%s rtt=%s losses=%d errors=%d\n",
				id, cs.State, cs.Uptime, cs.CurrentRTT, cs.LossCount, cs.ErrorCount)
		}
	}

	fmt.Fprintf(&b, "Performance\n")
	fmt.Fprintf(&b, "  qps: %.2f\n", s.QPS)
	fmt.Fprintf(&b, "  avg_latency: %s\n", s.AvgLatency)

	return b.String()
}

// Handler exposes the aggregator's counters/gauges on the standard
// Prometheus text exposition format.
func (a *Aggregator) Handler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

var nowFunc = time.Now
