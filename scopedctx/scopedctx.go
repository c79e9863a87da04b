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

// Package scopedctx provides a generic, concurrency-safe key/value
// store layered on top of a context.Context, used by Connection to back
// its runtime metadata (tags, owning subsystem, arbitrary caller
// annotations) without widening Connection's own API for every new bit
// of bookkeeping callers want.
package scopedctx

import (
	"context"
	"sync"
)

// FuncWalk is invoked once per stored key/value pair by Walk/WalkLimit;
// returning false stops the iteration early.
type FuncWalk[T comparable] func(key T, val interface{}) bool

// Store is a Config[T]-shaped scoped key/value map embedding a
// context.Context, so it can be passed anywhere a context is expected
// while also carrying typed metadata.
type Store[T comparable] struct {
	context.Context

	mu sync.RWMutex
	m  map[T]interface{}
}

// New builds a Store rooted at ctx (context.Background if nil).
func New[T comparable](ctx context.Context) *Store[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Store[T]{Context: ctx, m: make(map[T]interface{})}
}

// Load reads the value stored under key.
func (s *Store[T]) Load(key T) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Store writes val under key. Storing a nil value removes the key.
func (s *Store[T]) Store(key T, val interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if val == nil {
		delete(s.m, key)
		return
	}
	s.m[key] = val
}

// Delete removes key, if present.
func (s *Store[T]) Delete(key T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// LoadOrStore reads the existing value for key, or stores val and
// returns it if key was absent.
func (s *Store[T]) LoadOrStore(key T, val interface{}) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[key]; ok {
		return existing, true
	}
	s.m[key] = val
	return val, false
}

// LoadAndDelete reads and removes the value for key in one step.
func (s *Store[T]) LoadAndDelete(key T) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	delete(s.m, key)
	return v, ok
}

// Clean empties the store.
func (s *Store[T]) Clean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[T]interface{})
}

// Walk visits every key/value pair in an unspecified order.
func (s *Store[T]) Walk(fn FuncWalk[T]) {
	s.WalkLimit(fn)
}

// WalkLimit visits only the given keys, if present, or every pair when
// validKeys is empty.
func (s *Store[T]) WalkLimit(fn FuncWalk[T], validKeys ...T) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(validKeys) == 0 {
		for k, v := range s.m {
			if !fn(k, v) {
				return
			}
		}
		return
	}

	for _, k := range validKeys {
		if v, ok := s.m[k]; ok {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the store, optionally rooted at
// a different context.
func (s *Store[T]) Clone(ctx context.Context) *Store[T] {
	if ctx == nil {
		ctx = s.Context
	}
	n := New[T](ctx)
	s.Walk(func(k T, v interface{}) bool {
		n.Store(k, v)
		return true
	})
	return n
}

// Value overrides context.Context's lookup so stored keys of type T
// are visible through the context.Value path too.
func (s *Store[T]) Value(key interface{}) interface{} {
	if k, ok := key.(T); ok {
		if v, ok := s.Load(k); ok {
			return v
		}
	}
	return s.Context.Value(key)
}
