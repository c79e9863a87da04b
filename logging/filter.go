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

package logging

import (
	"regexp"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Record is what a Filter inspects before a sink ever sees it.
type Record struct {
	Level   Level
	Module  string
	Message string
	Fields  Fields
	When    time.Time
}

// Filter decides whether a Record should reach the sinks. Returning
// false drops the record silently; filters never mutate the Record.
type Filter interface {
	Allow(r Record) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(r Record) bool

func (f FilterFunc) Allow(r Record) bool { return f(r) }

// LevelFilter only allows records at or above Min.
type LevelFilter struct {
	Min Level
}

func (f LevelFilter) Allow(r Record) bool {
	return r.Level >= f.Min
}

// ModuleFilter only allows records whose Module is in Allowed. An empty
// Allowed set allows every module.
type ModuleFilter struct {
	Allowed map[string]struct{}
}

func NewModuleFilter(modules ...string) ModuleFilter {
	m := make(map[string]struct{}, len(modules))
	for _, mod := range modules {
		m[mod] = struct{}{}
	}
	return ModuleFilter{Allowed: m}
}

func (f ModuleFilter) Allow(r Record) bool {
	if len(f.Allowed) == 0 {
		return true
	}
	_, ok := f.Allowed[r.Module]
	return ok
}

// PatternFilter only allows records whose Message matches a compiled
// regular expression.
type PatternFilter struct {
	re *regexp.Regexp
}

func NewPatternFilter(pattern string) (*PatternFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &PatternFilter{re: re}, nil
}

func (f *PatternFilter) Allow(r Record) bool {
	return f.re.MatchString(r.Message)
}

// MetadataFilter only allows records carrying the given field with the
// given value. A nil Want matches any value as long as the key exists.
type MetadataFilter struct {
	Key  string
	Want interface{}
}

func (f MetadataFilter) Allow(r Record) bool {
	v, ok := r.Fields[f.Key]
	if !ok {
		return false
	}
	if f.Want == nil {
		return true
	}
	return v == f.Want
}

// TimeOfDayFilter only allows records whose wall-clock time of day
// falls within [Start, End). A window that wraps midnight (Start > End)
// is treated as spanning across it.
type TimeOfDayFilter struct {
	Start, End time.Duration
}

func (f TimeOfDayFilter) Allow(r Record) bool {
	h, m, s := r.When.Clock()
	tod := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(r.When.Nanosecond())
	if f.Start <= f.End {
		return tod >= f.Start && tod < f.End
	}
	return tod >= f.Start || tod < f.End
}

// SamplingFilter allows roughly one in every N records, counted per
// filter instance rather than per module.
type SamplingFilter struct {
	N int

	mu    sync.Mutex
	count int
}

func (f *SamplingFilter) Allow(_ Record) bool {
	if f.N <= 1 {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	if f.count >= f.N {
		f.count = 0
		return true
	}
	return false
}

// RateLimitFilter bounds throughput using a token-bucket limiter from
// golang.org/x/time/rate, admitting Burst records instantly before
// settling into one every 1/RatePerSecond.
type RateLimitFilter struct {
	limiter *rate.Limiter
}

func NewRateLimitFilter(ratePerSecond float64, burst int) *RateLimitFilter {
	return &RateLimitFilter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (f *RateLimitFilter) Allow(_ Record) bool {
	return f.limiter.Allow()
}

// BurstFilter allows at most Max records within Window, independent of
// RateLimitFilter's steady-state shaping; it exists for callers who
// want a hard burst ceiling without a sustained-rate component.
type BurstFilter struct {
	Max    int
	Window time.Duration

	mu      sync.Mutex
	seen    int
	started time.Time
}

func (f *BurstFilter) Allow(r Record) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started.IsZero() || r.When.Sub(f.started) >= f.Window {
		f.started = r.When
		f.seen = 0
	}
	if f.seen >= f.Max {
		return false
	}
	f.seen++
	return true
}

// DuplicateSuppressionFilter drops a record whose (Module, Message)
// pair repeats within Window of the last time it was allowed through.
type DuplicateSuppressionFilter struct {
	Window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewDuplicateSuppressionFilter(window time.Duration) *DuplicateSuppressionFilter {
	return &DuplicateSuppressionFilter{Window: window, last: make(map[string]time.Time)}
}

func (f *DuplicateSuppressionFilter) Allow(r Record) bool {
	key := r.Module + "\x00" + r.Message

	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.last[key]; ok && r.When.Sub(prev) < f.Window {
		return false
	}
	f.last[key] = r.When
	return true
}

// CompositeFilter combines filters under an all-must-pass (AND) or
// any-passes (OR) rule.
type CompositeFilter struct {
	Filters []Filter
	Any     bool
}

func (f CompositeFilter) Allow(r Record) bool {
	if len(f.Filters) == 0 {
		return true
	}
	for _, sub := range f.Filters {
		ok := sub.Allow(r)
		if ok && f.Any {
			return true
		}
		if !ok && !f.Any {
			return false
		}
	}
	return !f.Any
}
