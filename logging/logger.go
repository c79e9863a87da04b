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
	"io"
	"log"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultTag is the value of the "tag" field every record carries unless
// a caller overrides it, so operators can grep one identifier across
// mixed application logs.
const DefaultTag = "NexusKit"

// Logger is the leveled, filterable, multi-sink logger every NexusKit
// component logs through. The zero value is not usable; build one with
// New.
type Logger struct {
	mu     sync.RWMutex
	tag    string
	level  Level
	fields Fields
	core   *logrus.Logger
	sinks  []Sink
	chain  CompositeFilter
}

// New returns a Logger tagged with DefaultTag, at InfoLevel, with no
// sinks or filters attached.
func New() *Logger {
	core := logrus.New()
	core.SetOutput(nopWriter{})
	core.SetLevel(logrus.TraceLevel)

	l := &Logger{
		tag:    DefaultTag,
		level:  InfoLevel,
		fields: make(Fields),
		core:   core,
	}
	return l
}

// nopWriter discards whatever the embedded *logrus.Logger itself would
// write; output happens entirely through the attached Sinks (logrus
// hooks), not through the logger's own io.Writer.
type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// SetTag overrides the tag records are stamped with.
func (l *Logger) SetTag(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tag = tag
}

// Tag returns the current record tag.
func (l *Logger) Tag() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tag
}

// SetLevel changes the minimum level that reaches any sink.
func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
}

// GetLevel returns the current minimum level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetFields replaces the default fields merged into every record.
func (l *Logger) SetFields(f Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fields = f
}

// GetFields returns the default fields merged into every record.
func (l *Logger) GetFields() Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fields
}

// AddSink registers a sink and also adds it to the underlying logrus
// core as a hook, so Close can release it later.
func (l *Logger) AddSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
	l.core.AddHook(s)
}

// AddFilter appends f to the filter chain every record must pass
// before reaching the sinks. All filters must allow a record (AND
// semantics) unless the caller builds its own CompositeFilter with Any
// set and adds that as a single filter instead.
func (l *Logger) AddFilter(f Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chain.Filters = append(l.chain.Filters, f)
}

// Writer returns an io.Writer whose writes are logged at lvl, the way
// logrus.Logger.WriterLevel does for the standard core logger.
func (l *Logger) Writer(lvl Level) io.Writer {
	return l.core.WriterLevel(lvl.Logrus())
}

// GetStdLogger returns a standard library *log.Logger whose Print
// calls are routed into this Logger at the given level, the way the
// hclog and jwalterweatherman shims need in order to hand a *log.Logger
// to dependencies that only know that interface.
func (l *Logger) GetStdLogger(lvl Level, flags int) *log.Logger {
	return log.New(l.Writer(lvl), "", flags)
}

func (l *Logger) log(lvl Level, module, message string, args ...interface{}) {
	l.mu.RLock()
	tag, fields, minLevel, chain := l.tag, l.fields, l.level, l.chain
	l.mu.RUnlock()

	if lvl < minLevel {
		return
	}

	rec := Record{Level: lvl, Module: module, Message: message, Fields: fields, When: nowFunc()}
	if !chain.Allow(rec) {
		return
	}

	entryFields := fields.Add("tag", tag)
	if module != "" {
		entryFields = entryFields.Add("module", module)
	}

	msg := message
	if len(args) > 0 {
		msg = sprintfCompat(message, args...)
	}

	l.core.WithFields(entryFields.Logrus()).Log(lvl.Logrus(), msg)
}

// Trace logs at TraceLevel.
func (l *Logger) Trace(module, message string, args ...interface{}) {
	l.log(TraceLevel, module, message, args...)
}

// Debug logs at DebugLevel.
func (l *Logger) Debug(module, message string, args ...interface{}) {
	l.log(DebugLevel, module, message, args...)
}

// Info logs at InfoLevel.
func (l *Logger) Info(module, message string, args ...interface{}) {
	l.log(InfoLevel, module, message, args...)
}

// Warning logs at WarningLevel.
func (l *Logger) Warning(module, message string, args ...interface{}) {
	l.log(WarningLevel, module, message, args...)
}

// Error logs at ErrorLevel.
func (l *Logger) Error(module, message string, args ...interface{}) {
	l.log(ErrorLevel, module, message, args...)
}

// Critical logs at CriticalLevel.
func (l *Logger) Critical(module, message string, args ...interface{}) {
	l.log(CriticalLevel, module, message, args...)
}

// Close closes every registered sink and returns the first non-nil
// error; later errors are dropped.
func (l *Logger) Close() error {
	l.mu.Lock()
	sinks := l.sinks
	l.sinks = nil
	l.mu.Unlock()

	var first error
	for _, s := range sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
