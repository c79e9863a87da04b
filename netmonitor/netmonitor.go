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

// Package netmonitor polls the host's network interfaces with gopsutil
// and turns what it sees into the four events section 4.8 names:
// connected, disconnected, interface_changed and status_changed.
// WireConnection subscribes a Connection to these, disconnecting it
// when the host loses its usable interfaces and calling Connect again
// the moment one reappears.
package netmonitor

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gnet "github.com/shirou/gopsutil/net"
)

// Status is the host's coarse network reachability, derived from
// whether any non-loopback interface is up and carries an address.
type Status int

const (
	Unknown Status = iota
	Offline
	Online
)

func (s Status) String() string {
	switch s {
	case Offline:
		return "Offline"
	case Online:
		return "Online"
	default:
		return "Unknown"
	}
}

// EventType names one of the four events this package raises.
type EventType string

const (
	EventConnected        EventType = "connected"
	EventDisconnected     EventType = "disconnected"
	EventInterfaceChanged EventType = "interface_changed"
	EventStatusChanged    EventType = "status_changed"
)

// Event is one observation the Watcher reports to its subscribers.
type Event struct {
	Type   EventType
	Status Status
	From   string
	To     string
	At     time.Time
}

// Watcher polls host network interfaces on an interval and emits
// Events when reachability or the interface set changes. The zero
// value is not usable; build one with New.
type Watcher struct {
	interval time.Duration

	mu        sync.Mutex
	status    Status
	ifaceKey  string
	listeners []chan Event

	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Watcher that polls every interval (a sensible default
// of 5 seconds is used if interval is non-positive).
func New(interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{interval: interval, status: Unknown}
}

// Subscribe registers a channel receiving every Event the Watcher
// raises from here on. The channel is buffered; a slow subscriber
// misses events rather than blocking the poll loop.
func (w *Watcher) Subscribe() <-chan Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Event, 8)
	w.listeners = append(w.listeners, ch)
	return ch
}

// Start begins polling in a background goroutine until ctx is done or
// Stop is called. Calling Start twice on the same Watcher is a caller
// error.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)

		w.poll()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll()
			}
		}
	}()
}

// Stop halts the poll loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
}

// Status returns the most recently observed reachability.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Watcher) poll() {
	ifaces, err := gnet.Interfaces()
	if err != nil {
		ifaces = nil
	}

	status := deriveStatus(ifaces)
	key := ifaceKey(ifaces)
	now := nowFunc()

	w.mu.Lock()
	prevStatus := w.status
	prevKey := w.ifaceKey
	w.status = status
	w.ifaceKey = key
	w.mu.Unlock()

	if prevKey != "" && prevKey != key {
		w.broadcast(Event{Type: EventInterfaceChanged, Status: status, From: prevKey, To: key, At: now})
	}

	if prevStatus != status {
		w.broadcast(Event{Type: EventStatusChanged, Status: status, From: prevStatus.String(), To: status.String(), At: now})
		switch status {
		case Online:
			w.broadcast(Event{Type: EventConnected, Status: status, At: now})
		case Offline:
			w.broadcast(Event{Type: EventDisconnected, Status: status, At: now})
		}
	}
}

func (w *Watcher) broadcast(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// deriveStatus reports Online if any non-loopback interface is
// administratively up and carries at least one address, Offline
// otherwise.
func deriveStatus(ifaces []gnet.InterfaceStat) Status {
	for _, iface := range ifaces {
		if isLoopback(iface) {
			continue
		}
		if !hasFlag(iface, "up") {
			continue
		}
		if len(iface.Addrs) > 0 {
			return Online
		}
	}
	return Offline
}

func isLoopback(iface gnet.InterfaceStat) bool {
	return hasFlag(iface, "loopback")
}

func hasFlag(iface gnet.InterfaceStat, flag string) bool {
	for _, f := range iface.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// ifaceKey builds a stable, order-independent fingerprint of the
// current interface set (name, flags and addresses) so poll can detect
// any change to it, not just a reachability flip.
func ifaceKey(ifaces []gnet.InterfaceStat) string {
	names := make([]string, 0, len(ifaces))
	parts := make(map[string]string, len(ifaces))

	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
		sort.Strings(addrs)
		flags := append([]string(nil), iface.Flags...)
		sort.Strings(flags)

		parts[iface.Name] = iface.Name + ":" + strings.Join(flags, ",") + ":" + strings.Join(addrs, ",")
		names = append(names, iface.Name)
	}

	sort.Strings(names)
	segments := make([]string, 0, len(names))
	for _, n := range names {
		segments = append(segments, parts[n])
	}
	return strings.Join(segments, "|")
}

var nowFunc = time.Now
