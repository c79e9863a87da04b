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

// Package endpoint models the logical target of a connection,
// independent of any intermediate proxy: a tagged variant over
// {TCP, WebSocket, SocketIO, Custom}, as described in section 3 of the
// specification.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Kind discriminates the Endpoint variant.
type Kind uint8

const (
	// KindTCP is a bare host:port target for the core TCP runtime.
	KindTCP Kind = iota
	// KindWebSocket targets a ws:// or wss:// URL; it plugs in as an
	// alternative transport via the same byte-stream contract (out of
	// scope for the core, section 1).
	KindWebSocket
	// KindSocketIO targets a Socket.IO endpoint with a namespace.
	KindSocketIO
	// KindCustom is a host:port target tagged with an arbitrary scheme,
	// for protocol adapters that reuse the TCP transport under a
	// different logical name.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindWebSocket:
		return "websocket"
	case KindSocketIO:
		return "socketio"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Endpoint is the logical target of a connection.
type Endpoint struct {
	kind      Kind
	host      string
	port      uint16
	url       string
	namespace string
	scheme    string
	secure    bool
}

// TCP builds a plain (or TLS, via the connection configuration's TLS
// block - the endpoint itself only records scheme secure-ness for
// default-port and is_secure purposes) TCP endpoint.
func TCP(host string, port uint16) Endpoint {
	return Endpoint{kind: KindTCP, host: host, port: port, scheme: "tcp"}
}

// TCPSecure builds a TCP endpoint that reports IsSecure() == true, for
// callers that want the endpoint itself to carry the "this target
// expects TLS" bit (e.g. defaulting connect_timeout or logging).
func TCPSecure(host string, port uint16) Endpoint {
	e := TCP(host, port)
	e.secure = true
	return e
}

// WebSocket builds a WebSocket endpoint from a ws:// or wss:// URL.
// Secure-ness is derived from the scheme.
func WebSocket(url string) Endpoint {
	return Endpoint{kind: KindWebSocket, url: url, scheme: "ws", secure: hasSecureScheme(url, "wss")}
}

// SocketIO builds a Socket.IO endpoint from a base URL and namespace.
func SocketIO(url, namespace string) Endpoint {
	return Endpoint{kind: KindSocketIO, url: url, namespace: namespace, scheme: "socketio", secure: hasSecureScheme(url, "https") || hasSecureScheme(url, "wss")}
}

// Custom builds a host:port endpoint tagged with an arbitrary scheme
// name, for protocol adapters layered over the TCP transport.
func Custom(host string, port uint16, scheme string) Endpoint {
	return Endpoint{kind: KindCustom, host: host, port: port, scheme: scheme}
}

func hasSecureScheme(url, secureScheme string) bool {
	return strings.HasPrefix(url, secureScheme)
}

// Kind returns the endpoint's variant tag.
func (e Endpoint) Kind() Kind { return e.kind }

// Host returns the host component for TCP/Custom endpoints, or "" for
// URL-based endpoints.
func (e Endpoint) Host() string { return e.host }

// Namespace returns the Socket.IO namespace, or "" for other kinds.
func (e Endpoint) Namespace() string { return e.namespace }

// URL returns the URL for WebSocket/SocketIO endpoints, or "" otherwise.
func (e Endpoint) URL() string { return e.url }

// Scheme returns the endpoint's logical scheme name.
func (e Endpoint) Scheme() string { return e.scheme }

// IsSecure reports whether the endpoint's scheme implies TLS.
func (e Endpoint) IsSecure() bool { return e.secure }

// Port returns the port for TCP/Custom endpoints, applying the
// scheme's conventional default (80/443) when the endpoint carries
// none and is URL-based; for TCP/Custom endpoints the caller-supplied
// port is returned as-is (zero means "let the OS pick one", matching
// the teacher socket test suite's accepted dynamic-port addresses).
func (e Endpoint) Port() uint16 {
	if e.kind == KindTCP || e.kind == KindCustom {
		return e.port
	}
	if e.secure {
		return 443
	}
	return 80
}

// Address renders a "host:port" string for TCP/Custom endpoints,
// suitable for net.Dial.
func (e Endpoint) Address() string {
	return e.host + ":" + strconv.FormatUint(uint64(e.Port()), 10)
}

func (e Endpoint) String() string {
	switch e.kind {
	case KindTCP, KindCustom:
		return fmt.Sprintf("%s://%s", e.scheme, e.Address())
	case KindWebSocket:
		return e.url
	case KindSocketIO:
		if e.namespace != "" {
			return e.url + e.namespace
		}
		return e.url
	default:
		return "endpoint(unknown)"
	}
}

// Validate reports whether the endpoint is well-formed enough to
// attempt a connection: TCP/Custom endpoints need a non-empty host and
// a non-zero scheme; URL-based endpoints need a non-empty URL.
func (e Endpoint) Validate() error {
	switch e.kind {
	case KindTCP, KindCustom:
		if e.host == "" {
			return nxerr.New(nxerr.CodeInvalidEndpoint, "endpoint host must not be empty")
		}
		if e.scheme == "" {
			return nxerr.New(nxerr.CodeInvalidEndpoint, "endpoint scheme must not be empty")
		}
	case KindWebSocket, KindSocketIO:
		if e.url == "" {
			return nxerr.New(nxerr.CodeInvalidEndpoint, "endpoint url must not be empty")
		}
	default:
		return nxerr.New(nxerr.CodeInvalidEndpoint, "unknown endpoint kind")
	}
	return nil
}
