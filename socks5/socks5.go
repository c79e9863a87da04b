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

// Package socks5 drives the client side of the SOCKS5 handshake (RFC
// 1928) plus the username/password sub-negotiation (RFC 1929) over an
// already-dialed net.Conn to the proxy, before any TLS wrapping of the
// logical endpoint takes place (section 4.6). The wire negotiation
// itself is golang.org/x/net/proxy's SOCKS5 client, pinned to the
// connection NexusKit already dialed through a forwarding Dialer that
// hands that same conn back instead of opening a new one.
package socks5

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/proxy"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Credentials holds the optional RFC 1929 username/password pair. A
// zero-value Credentials means "no authentication".
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) enabled() bool { return c.Username != "" || c.Password != "" }

// pinnedDialer hands back an already-established connection instead of
// dialing a new one, so x/net/proxy's SOCKS5 client negotiates over
// the conn NexusKit's own dial() already opened to the proxy (which
// may itself have gone through a configured ConnectTimeout) rather than
// opening a second one of its own.
type pinnedDialer struct{ conn net.Conn }

func (p pinnedDialer) Dial(_, _ string) (net.Conn, error) { return p.conn, nil }

// Handshake performs the SOCKS5 greeting, optional authentication and
// CONNECT request against conn, which must already be a live connection
// to the proxy. host/port name the logical endpoint the proxy should
// tunnel to. On success the proxy has opened a connection to host:port
// and conn is ready to carry the application's bytes (or a TLS
// handshake targeting host, per section 4.6).
func Handshake(conn net.Conn, host string, port uint16, creds Credentials) error {
	var auth *proxy.Auth
	if creds.enabled() {
		if len(creds.Username) > 255 || len(creds.Password) > 255 {
			return nxerr.New(nxerr.CodeProxyAuthFailed, "username/password must each be at most 255 bytes")
		}
		auth = &proxy.Auth{User: creds.Username, Password: creds.Password}
	}

	dialer, err := proxy.SOCKS5("tcp", "proxy", auth, pinnedDialer{conn: conn})
	if err != nil {
		return nxerr.New(nxerr.CodeUnsupportedProxyType, "build SOCKS5 dialer", err)
	}

	target := net.JoinHostPort(host, strconv.Itoa(int(port)))
	if _, err := dialer.Dial("tcp", target); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps whatever error x/net/proxy's SOCKS5 client returns
// onto NexusKit's own proxy error taxonomy; the underlying library
// error is kept as the parent for diagnostics.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "username/password"), strings.Contains(msg, "auth"), strings.Contains(msg, "credential"):
		return nxerr.New(nxerr.CodeProxyAuthFailed, "SOCKS5 authentication failed", err)
	case strings.Contains(msg, "unsupported"), strings.Contains(msg, "unknown version"):
		return nxerr.New(nxerr.CodeUnsupportedProxyType, "SOCKS5 protocol error", err)
	default:
		return nxerr.New(nxerr.CodeProxyConnectionFailed, "SOCKS5 CONNECT failed", err)
	}
}
