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

package tlsengine_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/nexuskit/nexuskit/tlsengine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTLSEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TLS Engine Suite")
}

func selfSignedDER(cn string) []byte {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())
	return der
}

var _ = Describe("Build", func() {
	It("uses the endpoint hostname for SNI by default", func() {
		tc, err := tlsengine.Build(tlsengine.Config{}, "example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.ServerName).To(Equal("example.com"))
	})

	It("lets ServerName override SNI, e.g. when tunneling through a proxy", func() {
		tc, err := tlsengine.Build(tlsengine.Config{ServerName: "real-target.example"}, "proxy.example")
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.ServerName).To(Equal("real-target.example"))
	})

	It("carries the ALPN list through verbatim", func() {
		tc, err := tlsengine.Build(tlsengine.Config{ALPN: []string{"h2", "http/1.1"}}, "host")
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.NextProtos).To(Equal([]string{"h2", "http/1.1"}))
	})

	It("sets InsecureSkipVerify when validation is disabled", func() {
		tc, err := tlsengine.Build(tlsengine.Config{Validation: tlsengine.ValidationPolicy{Kind: tlsengine.ValidationDisabled}}, "host")
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.InsecureSkipVerify).To(BeTrue())
	})

	It("fails to build a custom root pool from garbage PEM", func() {
		_, err := tlsengine.Build(tlsengine.Config{
			Validation: tlsengine.ValidationPolicy{Kind: tlsengine.ValidationCustomRoot, CustomRootPEM: []byte("not pem")},
		}, "host")
		Expect(err).To(HaveOccurred())
	})

	It("accepts a chain containing a pinned certificate", func() {
		der := selfSignedDER("pinned.example")
		tc, err := tlsengine.Build(tlsengine.Config{
			Validation: tlsengine.ValidationPolicy{Kind: tlsengine.ValidationPinning, PinnedCertsDER: [][]byte{der}},
		}, "host")
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.VerifyPeerCertificate([][]byte{der}, nil)).To(Succeed())
	})

	It("rejects a chain whose leaf matches no pin", func() {
		pinned := selfSignedDER("pinned.example")
		other := selfSignedDER("other.example")
		tc, err := tlsengine.Build(tlsengine.Config{
			Validation: tlsengine.ValidationPolicy{Kind: tlsengine.ValidationPinning, PinnedCertsDER: [][]byte{pinned}},
		}, "host")
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.VerifyPeerCertificate([][]byte{other}, nil)).To(HaveOccurred())
	})
})
