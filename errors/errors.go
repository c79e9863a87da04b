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

package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Error is the interface satisfied by every error NexusKit returns from
// a fallible call. It composes the standard error interface with code
// inspection and parent-chain walking, mirroring the taxonomy in the
// specification's error handling design.
type Error interface {
	error

	// Code returns the taxonomy code for this error.
	Code() Code

	// Is reports whether err is, or wraps, an error with the same code.
	Is(err error) bool

	// WithParent attaches one or more causes to this error and returns
	// the receiver for chaining.
	WithParent(parent ...error) Error

	// Parents returns the directly attached causes, if any.
	Parents() []error

	// Trace returns "file:line" of the call site that constructed this
	// error, or "" if unavailable.
	Trace() string
}

type nxErr struct {
	code   Code
	msg    string
	parent []error
	frame  string
}

// New builds a new Error for the given code. If msg is empty the code's
// registered default message is used. The caller's file:line is
// captured for diagnostics, the way the teacher's errors.trace does.
func New(code Code, msg string, parent ...error) Error {
	if msg == "" {
		msg = code.String()
	}

	e := &nxErr{
		code:   code,
		msg:    msg,
		parent: make([]error, 0, len(parent)),
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		e.frame = fmt.Sprintf("%s:%d", file, line)
	}

	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}

	return e
}

func (e *nxErr) Error() string {
	if e == nil {
		return ""
	}

	if len(e.parent) == 0 {
		return e.msg
	}

	causes := make([]string, 0, len(e.parent))
	for _, p := range e.parent {
		causes = append(causes, p.Error())
	}

	return fmt.Sprintf("%s: %s", e.msg, strings.Join(causes, "; "))
}

func (e *nxErr) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

func (e *nxErr) Trace() string {
	if e == nil {
		return ""
	}
	return e.frame
}

func (e *nxErr) Parents() []error {
	if e == nil {
		return nil
	}
	return e.parent
}

func (e *nxErr) WithParent(parent ...error) Error {
	if e == nil {
		return nil
	}
	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
	return e
}

// Is implements the errors.Is protocol: two taxonomy errors match if
// they carry the same non-zero code, or if a parent in the chain
// matches target by code or by the standard errors.Is rules.
func (e *nxErr) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}

	if o, ok := target.(*nxErr); ok {
		if e.code != CodeUnknown && e.code == o.code {
			return true
		}
	}

	for _, p := range e.parent {
		if p == target {
			return true
		}
		if is, ok := p.(interface{ Is(error) bool }); ok && is.Is(target) {
			return true
		}
	}

	return false
}

// HasCode reports whether err is a NexusKit Error carrying the given code,
// walking its parent chain if necessary.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}

	e, ok := err.(Error)
	if !ok {
		return false
	}

	if e.Code() == code {
		return true
	}

	for _, p := range e.Parents() {
		if HasCode(p, code) {
			return true
		}
	}

	return false
}

// AsCode extracts the Code from err, or CodeUnknown if err isn't a
// NexusKit Error.
func AsCode(err error) Code {
	if e, ok := err.(Error); ok {
		return e.Code()
	}
	return CodeUnknown
}
