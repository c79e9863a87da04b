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

package compression

import "github.com/nexuskit/nexuskit/middleware"

// Middleware wires Compress/Decompress into the pipeline's
// Middleware interface.
type Middleware struct {
	PipelinePriority int
	Cfg              Config
}

// New returns a compression Middleware at the given pipeline priority.
func New(priority int, cfg Config) *Middleware {
	return &Middleware{PipelinePriority: priority, Cfg: cfg}
}

func (m *Middleware) Name() string  { return "compression" }
func (m *Middleware) Priority() int { return m.PipelinePriority }

func (m *Middleware) HandleOutgoing(body []byte, ctx *middleware.Context) ([]byte, error) {
	return Compress(m.Cfg, body)
}

func (m *Middleware) HandleIncoming(body []byte, ctx *middleware.Context) ([]byte, error) {
	return Decompress(body)
}
