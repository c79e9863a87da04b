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

package tlsengine

import (
	"crypto/tls"
	"crypto/x509"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/pkcs12"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

var (
	identityCacheMu sync.Mutex
	identityCache   = map[uint64]*Identity{}
)

// LoadIdentity parses a PKCS#12 blob into an Identity, caching the
// result by the blob+password's fingerprint so repeated connects to
// the same endpoint skip re-parsing.
func LoadIdentity(blob []byte, password string) (*Identity, error) {
	h := xxhash.New()
	_, _ = h.Write(blob)
	_, _ = h.Write([]byte(password))
	fp := h.Sum64()

	identityCacheMu.Lock()
	if id, ok := identityCache[fp]; ok {
		identityCacheMu.Unlock()
		return id, nil
	}
	identityCacheMu.Unlock()

	key, cert, caCerts, err := pkcs12.DecodeChain(blob, password)
	if err != nil {
		return nil, nxerr.New(nxerr.CodeTLSCertLoadFailed, "pkcs12 decode", err)
	}

	chain := [][]byte{cert.Raw}
	for _, ca := range caCerts {
		chain = append(chain, ca.Raw)
	}

	id := &Identity{
		Certificate: tls.Certificate{
			Certificate: chain,
			PrivateKey:  key,
			Leaf:        cert,
		},
	}

	identityCacheMu.Lock()
	identityCache[fp] = id
	identityCacheMu.Unlock()

	return id, nil
}

// LeafFingerprint returns the DER-level fingerprint used to detect
// whether a reloaded identity file actually changed.
func LeafFingerprint(cert *x509.Certificate) uint64 {
	h := xxhash.New()
	_, _ = h.Write(cert.Raw)
	return h.Sum64()
}
