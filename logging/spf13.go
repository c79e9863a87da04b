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

package logging

import (
	"io"

	jww "github.com/spf13/jwalterweatherman"
)

// spf13Writer adapts a *Logger to io.Writer so jwalterweatherman (the
// logging library behind Hugo, Cobra and Viper) can write through it.
type spf13Writer struct {
	l      *Logger
	module string
}

func (w spf13Writer) Write(p []byte) (int, error) {
	w.l.Info(w.module, string(p))
	return len(p), nil
}

// SetSPF13Level points the global jwalterweatherman logger at l so any
// dependency logging through jww lands in the same pipeline, with the
// log threshold set from lvl; jww's stdout threshold is left unchanged.
func SetSPF13Level(l *Logger, lvl Level) {
	if lvl == NilLevel {
		jww.SetLogOutput(io.Discard)
		jww.SetLogThreshold(jww.LevelCritical)
		jww.SetStdoutOutput(io.Discard)
		return
	}

	w := spf13Writer{l: l, module: "jww"}
	jww.SetLogOutput(w)
	jww.SetStdoutOutput(w)

	switch lvl {
	case TraceLevel, DebugLevel:
		jww.SetLogThreshold(jww.LevelTrace)
	case InfoLevel:
		jww.SetLogThreshold(jww.LevelInfo)
	case WarningLevel:
		jww.SetLogThreshold(jww.LevelWarn)
	case ErrorLevel:
		jww.SetLogThreshold(jww.LevelError)
	case CriticalLevel:
		jww.SetLogThreshold(jww.LevelCritical)
	}
}
