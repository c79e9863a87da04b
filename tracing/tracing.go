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

// Package tracing spans the three operations section 4.11 names
// (connection.establish, send, receive) using the stable
// go.opentelemetry.io/otel/trace API, with W3C traceparent emission and
// parsing for propagating a trace across the wire to a peer that
// understands the header, and a choice of samplers deciding which
// traces get recorded at all.
package tracing

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	nxerr "github.com/nexuskit/nexuskit/errors"
)

// Operation names the three spans section 4.11 calls out by name.
type Operation string

const (
	OperationConnectionEstablish Operation = "connection.establish"
	OperationSend                Operation = "send"
	OperationReceive             Operation = "receive"
)

// Sampler decides whether a new trace rooted at traceID should be
// recorded.
type Sampler interface {
	ShouldSample(traceID trace.TraceID) bool
}

type alwaysOnSampler struct{}

func (alwaysOnSampler) ShouldSample(trace.TraceID) bool { return true }

// AlwaysOn records every trace.
func AlwaysOn() Sampler { return alwaysOnSampler{} }

type alwaysOffSampler struct{}

func (alwaysOffSampler) ShouldSample(trace.TraceID) bool { return false }

// AlwaysOff records no trace; spans still run, just unflagged as sampled.
func AlwaysOff() Sampler { return alwaysOffSampler{} }

// ProbabilitySampler samples a trace with probability P, decided off
// the low 8 bits of its trace ID so the same trace ID always samples
// the same way.
type ProbabilitySampler struct {
	P float64
}

func Probability(p float64) Sampler {
	return ProbabilitySampler{P: p}
}

func (s ProbabilitySampler) ShouldSample(traceID trace.TraceID) bool {
	if s.P <= 0 {
		return false
	}
	if s.P >= 1 {
		return true
	}
	threshold := uint8(s.P * 255)
	return traceID[15] <= threshold
}

// Tracer spans NexusKit operations on top of the otel trace API's
// no-op tracer provider: spans are real trace.Span values with valid
// context propagation and W3C identifiers, but nothing exports them
// anywhere unless a caller wires an OTel SDK exporter in through
// SetTracerProvider.
type Tracer struct {
	provider trace.TracerProvider
	tracer   trace.Tracer
	sampler  Sampler
}

// New returns a Tracer sampling with the given Sampler, initially
// backed by the otel API's no-op provider.
func New(sampler Sampler) *Tracer {
	provider := trace.NewNoopTracerProvider()
	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer("nexuskit"),
		sampler:  sampler,
	}
}

// SetTracerProvider swaps in a real SDK-backed TracerProvider (from an
// OTel exporter the host application configured), so spans start
// flowing to wherever that provider sends them.
func (t *Tracer) SetTracerProvider(provider trace.TracerProvider) {
	t.provider = provider
	t.tracer = provider.Tracer("nexuskit")
}

// Start begins a span for op, honoring the Sampler against the
// context's existing trace (or a fresh one it mints if ctx carries
// none, since the no-op tracer provider never does this itself).
func (t *Tracer) Start(ctx context.Context, op Operation) (context.Context, trace.Span) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		sc = newRootSpanContext()
		ctx = trace.ContextWithSpanContext(ctx, sc)
	}

	if t.sampler.ShouldSample(sc.TraceID()) {
		sc = sc.WithTraceFlags(trace.FlagsSampled)
	}
	ctx = trace.ContextWithSpanContext(ctx, sc)

	spanCtx, span := t.tracer.Start(ctx, string(op))

	// The stock no-op tracer returns a span carrying an empty
	// SpanContext of its own; Traceparent/ParseTraceparent read the
	// context directly, so make sure our sc survives regardless of
	// what the configured TracerProvider's Start does with it.
	return trace.ContextWithSpanContext(spanCtx, sc), span
}

// Traceparent formats the W3C traceparent header for the span context
// carried by ctx, or "" if ctx carries no valid span context.
func Traceparent(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return fmt.Sprintf("00-%s-%s-%02x", sc.TraceID(), sc.SpanID(), byte(sc.TraceFlags()))
}

// ParseTraceparent parses a W3C traceparent header into a context
// carrying the resulting (remote) span context, for a connection that
// received one from a peer.
func ParseTraceparent(ctx context.Context, header string) (context.Context, error) {
	var (
		version    string
		traceIDHex string
		spanIDHex  string
		flagsHex   string
	)
	if n, err := fmt.Sscanf(header, "%2s-%32s-%16s-%2s", &version, &traceIDHex, &spanIDHex, &flagsHex); err != nil || n != 4 {
		return ctx, nxerr.New(nxerr.CodeInvalidMessageFormat, "malformed traceparent header")
	}

	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return ctx, nxerr.New(nxerr.CodeInvalidMessageFormat, "malformed traceparent trace id", err)
	}
	spanID, err := trace.SpanIDFromHex(spanIDHex)
	if err != nil {
		return ctx, nxerr.New(nxerr.CodeInvalidMessageFormat, "malformed traceparent span id", err)
	}

	var flags trace.TraceFlags
	if _, err := fmt.Sscanf(flagsHex, "%02x", &flags); err != nil {
		return ctx, nxerr.New(nxerr.CodeInvalidMessageFormat, "malformed traceparent flags", err)
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	})

	return trace.ContextWithSpanContext(ctx, sc), nil
}

// newRootSpanContext is used when a span starts with no incoming
// traceparent: the noop tracer provider doesn't mint random trace/span
// IDs the way an SDK would, so build one directly from crypto/rand.
func newRootSpanContext() trace.SpanContext {
	var traceID trace.TraceID
	var spanID trace.SpanID
	_, _ = rand.Read(traceID[:])
	_, _ = rand.Read(spanID[:])
	return trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
}
