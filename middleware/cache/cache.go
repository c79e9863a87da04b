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

// Package cache implements the two-level cache middleware of section
// 4.4: fingerprinted lookups, an L1 LRU backed by
// github.com/hashicorp/golang-lru, and a pluggable L2 with
// LRU/LFU/FIFO/TTL/size-based eviction, promoting L2 hits into L1.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
)

// Fingerprint hashes request bytes (optionally salted) into the cache
// key every level is keyed by.
func Fingerprint(requestBytes, salt []byte) uint64 {
	h := xxhash.New()
	_, _ = h.Write(requestBytes)
	if len(salt) > 0 {
		_, _ = h.Write(salt)
	}
	return h.Sum64()
}

// Strategy names an L2 eviction policy. L1 is always LRU (it is backed
// directly by golang-lru); Strategy only governs L2.
type Strategy uint8

const (
	StrategyLRU Strategy = iota
	StrategyLFU
	StrategyFIFO
	StrategyTTL
	StrategySizeBased
)

// Entry is one cached response body plus the bookkeeping an L2
// eviction strategy needs.
type Entry struct {
	Body      []byte
	ExpiresAt time.Time
	frequency int
	order     *list.Element
}

// Cache is the two-level cache: L1 (small, LRU, fast) in front of L2
// (larger, policy-configurable). A miss on L1 consults L2; an L2 hit
// is promoted into L1 automatically.
type Cache struct {
	l1 *lru.Cache

	mu       sync.Mutex
	strategy Strategy
	l2       map[uint64]*Entry
	order    *list.List // FIFO/LRU eviction order for L2
	maxBytes int
	curBytes int
	l2Cap    int
	ttl      time.Duration
}

// New builds a Cache with the given L1 capacity (entry count), L2
// capacity (entry count), L2 eviction strategy, default TTL (used by
// StrategyTTL and as an overall staleness ceiling for every entry) and
// max total L2 byte size (0 = unbounded, only relevant to
// StrategySizeBased).
func New(l1Capacity, l2Capacity int, strategy Strategy, ttl time.Duration, maxBytes int) (*Cache, error) {
	l1, err := lru.New(l1Capacity)
	if err != nil {
		return nil, err
	}

	return &Cache{
		l1:       l1,
		strategy: strategy,
		l2:       make(map[uint64]*Entry, l2Capacity),
		order:    list.New(),
		l2Cap:    l2Capacity,
		ttl:      ttl,
		maxBytes: maxBytes,
	}, nil
}

// Get looks up fp in L1, falling back to L2 and promoting on hit.
// Expired entries are treated as a miss and evicted.
func (c *Cache) Get(fp uint64) ([]byte, bool) {
	if v, ok := c.l1.Get(fp); ok {
		entry := v.(*Entry)
		if c.expired(entry) {
			c.l1.Remove(fp)
			return nil, false
		}
		return entry.Body, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.l2[fp]
	if !ok {
		return nil, false
	}
	if c.expired(entry) {
		c.removeL2Locked(fp)
		return nil, false
	}

	entry.frequency++
	if c.strategy == StrategyLRU {
		c.order.MoveToBack(entry.order)
	}
	c.l1.Add(fp, entry)
	return entry.Body, true
}

// Put inserts body under fp into L2 (and, implicitly, L1 on next Get
// promotion). Size-based eviction fires immediately if the insert
// would exceed maxBytes.
func (c *Cache) Put(fp uint64, body []byte) {
	entry := &Entry{Body: body}
	if c.ttl > 0 {
		entry.ExpiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.l2[fp]; ok {
		c.order.Remove(existing.order)
		c.curBytes -= len(existing.Body)
	}

	entry.order = c.order.PushBack(fp)
	c.l2[fp] = entry
	c.curBytes += len(body)

	c.evictLocked()
}

func (c *Cache) expired(e *Entry) bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

func (c *Cache) evictLocked() {
	for c.overCapacityLocked() {
		victim := c.pickVictimLocked()
		if victim == 0 {
			return
		}
		c.removeL2Locked(victim)
	}
}

func (c *Cache) overCapacityLocked() bool {
	if c.l2Cap > 0 && len(c.l2) > c.l2Cap {
		return true
	}
	if c.strategy == StrategySizeBased && c.maxBytes > 0 && c.curBytes > c.maxBytes {
		return true
	}
	return false
}

func (c *Cache) pickVictimLocked() uint64 {
	switch c.strategy {
	case StrategyLFU:
		var victim uint64
		best := int(^uint(0) >> 1)
		for fp, e := range c.l2 {
			if e.frequency < best {
				best = e.frequency
				victim = fp
			}
		}
		return victim
	default: // front of the order list: least recently used under LRU, oldest insert otherwise
		front := c.order.Front()
		if front == nil {
			return 0
		}
		return front.Value.(uint64)
	}
}

func (c *Cache) removeL2Locked(fp uint64) {
	entry, ok := c.l2[fp]
	if !ok {
		return
	}
	c.order.Remove(entry.order)
	c.curBytes -= len(entry.Body)
	delete(c.l2, fp)
}

// Len returns the number of entries currently held in L2.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.l2)
}
