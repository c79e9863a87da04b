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

// Package errors implements the NexusKit error taxonomy: a flat set of
// numeric Code values grouped by domain (connection, auth, tls, proxy,
// protocol, state, resource, middleware, configuration), each carrying
// a default message and an optional wrapped cause and parent chain.
package errors

import "sync"

// Code is a dense numeric identifier for one error kind in the taxonomy.
// Values are grouped in bands of 100 by domain so a caller can test
// "is this a TLS-family error" with a single range check if needed.
type Code uint16

const (
	CodeUnknown Code = 0

	// connection family (1xx)
	CodeConnectionTimeout Code = 100 + iota
	CodeConnectionRefused
	CodeConnectionUnreachable
	CodeConnectionClosed
	CodeNotConnected
	CodeAlreadyExists
	CodeNotFound
	CodeHeartbeatTimeout

	// authentication family (2xx)
	CodeAuthFailed Code = 200 + iota - 8
	CodeInvalidCredentials
	CodeCertValidationFailed
	CodeUntrustedCert

	// tls family (3xx)
	CodeTLSHandshakeFailed Code = 300 + iota - 12
	CodeTLSCertLoadFailed
	CodeTLSError

	// proxy family (4xx)
	CodeProxyConnectionFailed Code = 400 + iota - 15
	CodeProxyAuthFailed
	CodeUnsupportedProxyType

	// protocol family (5xx)
	CodeProtocolError Code = 500 + iota - 18
	CodeInvalidMessageFormat
	CodeUnsupportedProtocolVersion
	CodeEncodingFailed
	CodeDecodingFailed
	CodeNoProtocolAdapter
	CodeInvalidResponse

	// state family (6xx)
	CodeInvalidStateTransition Code = 600 + iota - 25
	CodeOperationNotAllowed
	CodeUnsupportedOperation

	// resource family (7xx)
	CodeBufferOverflow Code = 700 + iota - 28
	CodeResourceExhausted
	CodeOutOfMemory

	// middleware family (8xx)
	CodeMiddlewareError Code = 800 + iota - 31
	CodeMiddlewareChainBroken
	CodeRateLimitExceeded

	// configuration family (9xx)
	CodeInvalidConfiguration Code = 900 + iota - 34
	CodeMissingRequired
	CodeInvalidEndpoint

	// logging family (10xx)
	CodeLoggingSinkError Code = 1000 + iota - 37
	CodeLoggingFilterRejected
)

var (
	mu      sync.RWMutex
	message = map[Code]string{
		CodeUnknown:                    "unknown error",
		CodeConnectionTimeout:          "connection timeout",
		CodeConnectionRefused:          "connection refused",
		CodeConnectionUnreachable:      "endpoint unreachable",
		CodeConnectionClosed:           "connection closed",
		CodeNotConnected:               "not connected",
		CodeAlreadyExists:              "connection already exists",
		CodeNotFound:                   "connection not found",
		CodeHeartbeatTimeout:           "heartbeat timeout",
		CodeAuthFailed:                 "authentication failed",
		CodeInvalidCredentials:         "invalid credentials",
		CodeCertValidationFailed:       "certificate validation failed",
		CodeUntrustedCert:              "untrusted certificate",
		CodeTLSHandshakeFailed:         "tls handshake failed",
		CodeTLSCertLoadFailed:          "tls certificate load failed",
		CodeTLSError:                   "tls error",
		CodeProxyConnectionFailed:      "proxy connection failed",
		CodeProxyAuthFailed:            "proxy authentication failed",
		CodeUnsupportedProxyType:       "unsupported proxy type",
		CodeProtocolError:              "protocol error",
		CodeInvalidMessageFormat:       "invalid message format",
		CodeUnsupportedProtocolVersion: "unsupported protocol version",
		CodeEncodingFailed:             "encoding failed",
		CodeDecodingFailed:             "decoding failed",
		CodeNoProtocolAdapter:          "no protocol adapter configured",
		CodeInvalidResponse:            "invalid response",
		CodeInvalidStateTransition:     "invalid state transition",
		CodeOperationNotAllowed:        "operation not allowed in current state",
		CodeUnsupportedOperation:       "unsupported operation",
		CodeBufferOverflow:             "buffer overflow",
		CodeResourceExhausted:          "resource exhausted",
		CodeOutOfMemory:                "out of memory",
		CodeMiddlewareError:            "middleware error",
		CodeMiddlewareChainBroken:      "middleware chain broken",
		CodeRateLimitExceeded:          "rate limit exceeded",
		CodeInvalidConfiguration:       "invalid configuration",
		CodeMissingRequired:            "missing required field",
		CodeInvalidEndpoint:            "invalid endpoint",
		CodeLoggingSinkError:           "logging sink error",
		CodeLoggingFilterRejected:      "log record rejected by filter",
	}
)

// String returns the default message registered for the code, or
// "unknown error" if none was registered.
func (c Code) String() string {
	mu.RLock()
	defer mu.RUnlock()

	if m, ok := message[c]; ok {
		return m
	}

	return message[CodeUnknown]
}

// RegisterMessage overrides (or adds) the default message for a code.
// Host applications can use this to localize NexusKit's error text.
func RegisterMessage(c Code, msg string) {
	mu.Lock()
	defer mu.Unlock()

	message[c] = msg
}
