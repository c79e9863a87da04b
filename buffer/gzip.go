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

package buffer

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// GzipCompress compresses p using klauspost/compress's gzip, the
// codec the binary frame encoder reaches for when type_flags bit 5
// is set (section 4.3's encoding policy). klauspost's implementation
// is a drop-in for compress/gzip with a materially faster encoder,
// which matters on the hot send path.
func GzipCompress(p []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, _ := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if _, err := w.Write(p); err != nil {
		_ = w.Close()
		return nil, nxerr.New(nxerr.CodeEncodingFailed, "gzip compress", err)
	}
	if err := w.Close(); err != nil {
		return nil, nxerr.New(nxerr.CodeEncodingFailed, "gzip compress", err)
	}

	return buf.Bytes(), nil
}

// GzipDecompress reverses GzipCompress. A malformed body surfaces as a
// DecodingFailed error, per section 4.3 step 4.
func GzipDecompress(p []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, nxerr.New(nxerr.CodeDecodingFailed, "gzip decompress", err)
	}
	defer func() { _ = r.Close() }()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, nxerr.New(nxerr.CodeDecodingFailed, "gzip decompress", err)
	}
	return out, nil
}
