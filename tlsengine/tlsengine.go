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

// Package tlsengine wraps crypto/tls behind the configurable knobs of
// section 4.5: version bounds, an optional client identity, a
// validation policy (system trust, custom root, pinning or disabled),
// a cipher-suite preset, ALPN and SNI override.
package tlsengine

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Version names a minimum/maximum TLS protocol version bound.
type Version uint8

const (
	VersionAutomatic Version = iota
	Version10
	Version11
	Version12
	Version13
)

func (v Version) toStd() uint16 {
	switch v {
	case Version10:
		return tls.VersionTLS10
	case Version11:
		return tls.VersionTLS11
	case Version12:
		return tls.VersionTLS12
	case Version13:
		return tls.VersionTLS13
	default:
		return 0
	}
}

// CipherPreset names a cipher-suite selection policy.
type CipherPreset uint8

const (
	CipherDefault CipherPreset = iota
	CipherStrong
	CipherCompatible
	CipherCustom
)

// strongSuites restricts to AEAD, forward-secret suites only.
var strongSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
}

// compatibleSuites widens strongSuites with AES-128 variants for
// interoperability with older peers.
var compatibleSuites = append(append([]uint16{}, strongSuites...),
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
)

// ValidationPolicyKind selects how the peer's certificate chain is
// validated.
type ValidationPolicyKind uint8

const (
	ValidationSystem ValidationPolicyKind = iota
	ValidationCustomRoot
	ValidationPinning
	ValidationDisabled
)

// ValidationPolicy configures ValidationPolicyKind's parameters.
type ValidationPolicy struct {
	Kind          ValidationPolicyKind
	CustomRootPEM []byte
	PinnedCertsDER [][]byte
}

// Identity is a parsed client certificate plus its private key.
// LoadIdentity caches each one by the fingerprint of its PKCS#12 blob
// and password, so repeated connections to the same endpoint don't
// reparse it.
type Identity struct {
	Certificate tls.Certificate
}

// Config holds every knob section 4.5 names.
type Config struct {
	MinVersion     Version
	MaxVersion     Version
	ClientIdentity *Identity
	Validation     ValidationPolicy
	CipherPreset   CipherPreset
	CustomCiphers  []uint16
	ALPN           []string
	ServerName     string
}

// Build renders cfg into a *tls.Config ready to wrap a net.Conn. The
// hostname parameter is the logical endpoint's hostname, used for SNI
// unless cfg.ServerName overrides it - critical when a SOCKS5 proxy is
// in play, since SNI must still name the intended endpoint and not the
// proxy (section 4.6).
func Build(cfg Config, hostname string) (*tls.Config, error) {
	serverName := hostname
	if cfg.ServerName != "" {
		serverName = cfg.ServerName
	}

	tc := &tls.Config{
		MinVersion: cfg.MinVersion.toStd(),
		MaxVersion: cfg.MaxVersion.toStd(),
		ServerName: serverName,
		NextProtos: cfg.ALPN,
	}

	switch cfg.CipherPreset {
	case CipherStrong:
		tc.CipherSuites = strongSuites
	case CipherCompatible:
		tc.CipherSuites = compatibleSuites
	case CipherCustom:
		tc.CipherSuites = cfg.CustomCiphers
	}

	if cfg.ClientIdentity != nil {
		tc.Certificates = []tls.Certificate{cfg.ClientIdentity.Certificate}
	}

	switch cfg.Validation.Kind {
	case ValidationDisabled:
		tc.InsecureSkipVerify = true
	case ValidationCustomRoot:
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(cfg.Validation.CustomRootPEM) {
			return nil, nxerr.New(nxerr.CodeTLSCertLoadFailed, "custom root PEM contains no usable certificates")
		}
		tc.RootCAs = pool
	case ValidationPinning:
		tc.InsecureSkipVerify = true
		tc.VerifyPeerCertificate = pinningVerifier(cfg.Validation.PinnedCertsDER)
	}

	return tc, nil
}

// pinningVerifier returns a VerifyPeerCertificate callback that walks
// the presented chain and accepts it iff at least one certificate in
// it is byte-equal (DER) to a pinned certificate, per section 6's
// "pinning compares DER-encoded certificates".
func pinningVerifier(pins [][]byte) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		for _, cert := range rawCerts {
			for _, pin := range pins {
				if bytes.Equal(cert, pin) {
					return nil
				}
			}
		}
		return nxerr.New(nxerr.CodeUntrustedCert, "presented certificate chain matches no pinned certificate")
	}
}
