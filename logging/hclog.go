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

	"github.com/hashicorp/go-hclog"
)

const (
	hclogArgsKey = "hclog.args"
	hclogNameKey = "hclog.name"
)

// hclogShim adapts a *Logger to the hclog.Logger interface so
// dependencies that only know hclog (go-retryablehttp among them) log
// through the same pipeline as everything else.
type hclogShim struct {
	l *Logger
}

// AsHCLog wraps l as an hclog.Logger.
func AsHCLog(l *Logger) hclog.Logger {
	return &hclogShim{l: l}
}

func (h *hclogShim) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Off, hclog.NoLevel:
		return
	case hclog.Trace:
		h.l.Trace("hclog", msg, args...)
	case hclog.Debug:
		h.l.Debug("hclog", msg, args...)
	case hclog.Info:
		h.l.Info("hclog", msg, args...)
	case hclog.Warn:
		h.l.Warning("hclog", msg, args...)
	case hclog.Error:
		h.l.Error("hclog", msg, args...)
	}
}

func (h *hclogShim) Trace(msg string, args ...interface{}) { h.l.Trace("hclog", msg, args...) }
func (h *hclogShim) Debug(msg string, args ...interface{}) { h.l.Debug("hclog", msg, args...) }
func (h *hclogShim) Info(msg string, args ...interface{})  { h.l.Info("hclog", msg, args...) }
func (h *hclogShim) Warn(msg string, args ...interface{})  { h.l.Warning("hclog", msg, args...) }
func (h *hclogShim) Error(msg string, args ...interface{}) { h.l.Error("hclog", msg, args...) }

func (h *hclogShim) IsTrace() bool { return h.l.GetLevel() <= TraceLevel }
func (h *hclogShim) IsDebug() bool { return h.l.GetLevel() <= DebugLevel }
func (h *hclogShim) IsInfo() bool  { return h.l.GetLevel() <= InfoLevel }
func (h *hclogShim) IsWarn() bool  { return h.l.GetLevel() <= WarningLevel }
func (h *hclogShim) IsError() bool { return h.l.GetLevel() <= ErrorLevel }

func (h *hclogShim) ImpliedArgs() []interface{} {
	if a, ok := h.l.GetFields()[hclogArgsKey]; ok {
		if s, ok := a.([]interface{}); ok {
			return s
		}
	}
	return nil
}

func (h *hclogShim) With(args ...interface{}) hclog.Logger {
	h.l.SetFields(h.l.GetFields().Add(hclogArgsKey, args))
	return h
}

func (h *hclogShim) Name() string {
	if a, ok := h.l.GetFields()[hclogNameKey]; ok {
		if s, ok := a.(string); ok {
			return s
		}
	}
	return ""
}

func (h *hclogShim) Named(name string) hclog.Logger {
	h.l.SetFields(h.l.GetFields().Add(hclogNameKey, name))
	return h
}

func (h *hclogShim) ResetNamed(name string) hclog.Logger {
	h.l.SetFields(h.l.GetFields().Add(hclogNameKey, name))
	return h
}

func (h *hclogShim) SetLevel(level hclog.Level) {
	switch level {
	case hclog.Off, hclog.NoLevel:
		h.l.SetLevel(NilLevel)
	case hclog.Trace:
		h.l.SetLevel(TraceLevel)
	case hclog.Debug:
		h.l.SetLevel(DebugLevel)
	case hclog.Info:
		h.l.SetLevel(InfoLevel)
	case hclog.Warn:
		h.l.SetLevel(WarningLevel)
	case hclog.Error:
		h.l.SetLevel(ErrorLevel)
	}
}

func (h *hclogShim) GetLevel() hclog.Level {
	switch h.l.GetLevel() {
	case TraceLevel:
		return hclog.Trace
	case DebugLevel:
		return hclog.Debug
	case InfoLevel:
		return hclog.Info
	case WarningLevel:
		return hclog.Warn
	case ErrorLevel, CriticalLevel:
		return hclog.Error
	default:
		return hclog.Off
	}
}

func (h *hclogShim) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	lvl := InfoLevel
	if opts != nil {
		switch opts.ForceLevel {
		case hclog.Off, hclog.NoLevel:
			lvl = NilLevel
		case hclog.Trace, hclog.Debug:
			lvl = DebugLevel
		case hclog.Info:
			lvl = InfoLevel
		case hclog.Warn:
			lvl = WarningLevel
		case hclog.Error:
			lvl = ErrorLevel
		}
	}
	return h.l.GetStdLogger(lvl, 0)
}

func (h *hclogShim) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return h.l.Writer(InfoLevel)
}
