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

// Package compression implements the compression middleware (section
// 4.4): adaptive algorithm selection between LZ4, Zlib and LZMA, with a
// 1-byte magic prefix marking whether a given outgoing body was
// compressed so the incoming path can undo it idempotently.
package compression

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Algorithm identifies which codec compressed a body.
type Algorithm uint8

const (
	AlgorithmLZ4 Algorithm = iota
	AlgorithmZlib
	AlgorithmLZMA
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmLZ4:
		return "lz4"
	case AlgorithmZlib:
		return "zlib"
	case AlgorithmLZMA:
		return "lzma"
	default:
		return "unknown"
	}
}

// magicPrefix marks a compressed body. The byte after it identifies
// the algorithm, so the incoming path can undo exactly what was
// applied without needing side-channel state.
const magicPrefix = 0xFF

// Strategy selects whether/how a given outgoing body is compressed.
type Strategy uint8

const (
	// StrategyAlways compresses every outgoing body.
	StrategyAlways Strategy = iota
	// StrategyNever never compresses.
	StrategyNever
	// StrategyThreshold compresses only bodies at or above MinSize
	// whose compressed size is at most MinRatio of the original.
	StrategyThreshold
	// StrategyAuto picks LZ4 for small/latency-sensitive bodies, Zlib
	// for mid-size, LZMA for large cold bulk transfers.
	StrategyAuto
)

// Config governs the compression middleware's behavior.
type Config struct {
	Strategy Strategy
	MinSize  int
	MinRatio float64
}

// DefaultMinSize is the byte threshold StrategyThreshold applies below
// which a body passes through uncompressed regardless of ratio.
const DefaultMinSize = 256

// DefaultMinRatio is the largest compressed/original size ratio
// StrategyThreshold accepts; above it the body is sent uncompressed.
const DefaultMinRatio = 0.9

// autoSmall is the upper body size LZ4 is picked for under
// StrategyAuto; autoMid is the upper bound for Zlib before LZMA takes
// over for cold bulk bodies.
const (
	autoSmall = 4 * 1024
	autoMid   = 256 * 1024
)

func pickAlgorithm(strategy Strategy, size int) Algorithm {
	if strategy != StrategyAuto {
		return AlgorithmLZ4
	}
	switch {
	case size <= autoSmall:
		return AlgorithmLZ4
	case size <= autoMid:
		return AlgorithmZlib
	default:
		return AlgorithmLZMA
	}
}

// Compress applies cfg's strategy to body, returning it unchanged (no
// magic prefix) when the strategy declines to compress.
func Compress(cfg Config, body []byte) ([]byte, error) {
	switch cfg.Strategy {
	case StrategyNever:
		return body, nil
	case StrategyThreshold:
		minSize := cfg.MinSize
		if minSize <= 0 {
			minSize = DefaultMinSize
		}
		if len(body) < minSize {
			return body, nil
		}
		minRatio := cfg.MinRatio
		if minRatio <= 0 {
			minRatio = DefaultMinRatio
		}
		alg := pickAlgorithm(StrategyAuto, len(body))
		compressed, err := encode(alg, body)
		if err != nil {
			return nil, err
		}
		if float64(len(compressed))/float64(len(body)) > minRatio {
			return body, nil
		}
		return frame(alg, compressed), nil
	case StrategyAlways, StrategyAuto:
		alg := pickAlgorithm(cfg.Strategy, len(body))
		compressed, err := encode(alg, body)
		if err != nil {
			return nil, err
		}
		return frame(alg, compressed), nil
	default:
		return body, nil
	}
}

// Decompress undoes Compress. A body without the magic prefix passes
// through untouched - the idempotency invariant of section 4.4.
func Decompress(body []byte) ([]byte, error) {
	if len(body) < 2 || body[0] != magicPrefix {
		return body, nil
	}
	alg := Algorithm(body[1])
	return decode(alg, body[2:])
}

func frame(alg Algorithm, compressed []byte) []byte {
	out := make([]byte, 2+len(compressed))
	out[0] = magicPrefix
	out[1] = byte(alg)
	copy(out[2:], compressed)
	return out
}

func encode(alg Algorithm, body []byte) ([]byte, error) {
	var buf bytes.Buffer

	switch alg {
	case AlgorithmLZ4:
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "lz4 compress", err)
		}
		if err := w.Close(); err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "lz4 compress", err)
		}
	case AlgorithmZlib:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "zlib compress", err)
		}
		if err := w.Close(); err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "zlib compress", err)
		}
	case AlgorithmLZMA:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "lzma compress", err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "lzma compress", err)
		}
		if err := w.Close(); err != nil {
			return nil, nxerr.New(nxerr.CodeEncodingFailed, "lzma compress", err)
		}
	default:
		return nil, nxerr.New(nxerr.CodeEncodingFailed, "unknown compression algorithm")
	}

	return buf.Bytes(), nil
}

func decode(alg Algorithm, body []byte) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)

	switch alg {
	case AlgorithmLZ4:
		r = lz4.NewReader(bytes.NewReader(body))
	case AlgorithmZlib:
		r, err = zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, nxerr.New(nxerr.CodeDecodingFailed, "zlib decompress", err)
		}
	case AlgorithmLZMA:
		r, err = xz.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, nxerr.New(nxerr.CodeDecodingFailed, "lzma decompress", err)
		}
	default:
		return nil, nxerr.New(nxerr.CodeDecodingFailed, "unknown compression algorithm")
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, nxerr.New(nxerr.CodeDecodingFailed, "decompress", err)
	}
	return out, nil
}
