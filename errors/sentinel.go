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

import "fmt"

// Package-level sentinels for errors.Is(err, errors.ErrXxx) comparisons
// against a bare code (no message, no trace capture needed by callers
// that only care about the kind).

var (
	ErrConnectionTimeout     = New(CodeConnectionTimeout, "")
	ErrConnectionRefused     = New(CodeConnectionRefused, "")
	ErrConnectionUnreachable = New(CodeConnectionUnreachable, "")
	ErrConnectionClosed      = New(CodeConnectionClosed, "")
	ErrNotConnected          = New(CodeNotConnected, "")
	ErrHeartbeatTimeout      = New(CodeHeartbeatTimeout, "")

	ErrAuthFailed           = New(CodeAuthFailed, "")
	ErrInvalidCredentials   = New(CodeInvalidCredentials, "")
	ErrCertValidationFailed = New(CodeCertValidationFailed, "")
	ErrUntrustedCert        = New(CodeUntrustedCert, "")

	ErrTLSHandshakeFailed = New(CodeTLSHandshakeFailed, "")
	ErrTLSCertLoadFailed  = New(CodeTLSCertLoadFailed, "")

	ErrProxyConnectionFailed = New(CodeProxyConnectionFailed, "")
	ErrProxyAuthFailed       = New(CodeProxyAuthFailed, "")
	ErrUnsupportedProxyType  = New(CodeUnsupportedProxyType, "")

	ErrProtocolError              = New(CodeProtocolError, "")
	ErrInvalidMessageFormat       = New(CodeInvalidMessageFormat, "")
	ErrUnsupportedProtocolVersion = New(CodeUnsupportedProtocolVersion, "")
	ErrEncodingFailed             = New(CodeEncodingFailed, "")
	ErrDecodingFailed             = New(CodeDecodingFailed, "")
	ErrNoProtocolAdapter          = New(CodeNoProtocolAdapter, "")
	ErrInvalidResponse            = New(CodeInvalidResponse, "")

	ErrOperationNotAllowed  = New(CodeOperationNotAllowed, "")
	ErrUnsupportedOperation = New(CodeUnsupportedOperation, "")

	ErrBufferOverflow    = New(CodeBufferOverflow, "")
	ErrResourceExhausted = New(CodeResourceExhausted, "")

	ErrMiddlewareChainBroken = New(CodeMiddlewareChainBroken, "")
	ErrRateLimitExceeded     = New(CodeRateLimitExceeded, "")

	ErrInvalidConfiguration = New(CodeInvalidConfiguration, "")
	ErrMissingRequired      = New(CodeMissingRequired, "")
	ErrInvalidEndpoint      = New(CodeInvalidEndpoint, "")
)

// InvalidStateTransition builds the state-family error carrying the
// offending (from, to) pair in its message, per spec section 3.
func InvalidStateTransition(from, to fmt.Stringer) Error {
	return New(CodeInvalidStateTransition, "invalid state transition from "+from.String()+" to "+to.String())
}

// AlreadyExists builds the connection-family "already exists" error for
// the given connection id.
func AlreadyExists(id string) Error {
	return New(CodeAlreadyExists, "connection already exists: "+id)
}

// NotFound builds the connection-family "not found" error for the given
// connection id.
func NotFound(id string) Error {
	return New(CodeNotFound, "connection not found: "+id)
}

// MiddlewareError wraps an underlying rejection reason raised by a
// named middleware stage.
func MiddlewareError(name string, underlying error) Error {
	return New(CodeMiddlewareError, "middleware "+name+" rejected message", underlying)
}
