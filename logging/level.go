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

// Package logging implements the ambient logging stack (section 4.11):
// a leveled logger backed by logrus, fanning out to console, rotating
// file, OS syslog and remote HTTP batch sinks through a filter chain,
// plus hclog and jwalterweatherman shims so dependencies that log
// through those interfaces land in the same pipeline.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a severity ordered from the most to the least verbose,
// matching the six named levels a caller can filter or route on.
type Level uint8

const (
	// TraceLevel is the most verbose level, for step-by-step diagnostics.
	TraceLevel Level = iota
	// DebugLevel carries detail useful only while hunting a problem.
	DebugLevel
	// InfoLevel records a notable state or event with no caller impact.
	InfoLevel
	// WarningLevel records something the caller recovered from.
	WarningLevel
	// ErrorLevel records something the caller could not recover from.
	ErrorLevel
	// CriticalLevel is the most severe: the process cannot continue.
	CriticalLevel
	// NilLevel disables logging entirely; not valid as a record's level.
	NilLevel
)

// String returns the lowercase name used in configuration and filters.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarningLevel:
		return "warning"
	case ErrorLevel:
		return "error"
	case CriticalLevel:
		return "critical"
	case NilLevel:
		return ""
	}
	return "unknown"
}

// ParseLevel returns the Level named by s (case-insensitive), or
// InfoLevel if s doesn't match any known name.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case TraceLevel.String():
		return TraceLevel
	case DebugLevel.String():
		return DebugLevel
	case InfoLevel.String():
		return InfoLevel
	case WarningLevel.String():
		return WarningLevel
	case ErrorLevel.String():
		return ErrorLevel
	case CriticalLevel.String():
		return CriticalLevel
	default:
		return InfoLevel
	}
}

// Logrus maps a Level onto the logrus.Level the core logger runs on.
func (l Level) Logrus() logrus.Level {
	switch l {
	case TraceLevel:
		return logrus.TraceLevel
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarningLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case CriticalLevel:
		return logrus.FatalLevel
	default:
		return logrus.PanicLevel
	}
}

// AllLevels lists every loggable level from most to least verbose,
// excluding NilLevel which can never be a record's own level.
func AllLevels() []Level {
	return []Level{TraceLevel, DebugLevel, InfoLevel, WarningLevel, ErrorLevel, CriticalLevel}
}
