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

// Package config defines ConnectionConfiguration, the single struct
// that drives everything a Connection needs to know (section 3):
// endpoint, transport timeouts, TLS, proxy, protocol adapter choice,
// middleware stack parameters, reconnect strategy and heartbeat
// tuning. Loading configuration from a file is explicitly out of
// scope (section 1's non-goals) - callers build one with Builder.
package config

import (
	"fmt"
	"time"

	libval "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nexuskit/nexuskit/endpoint"
	"github.com/nexuskit/nexuskit/heartbeat"
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/reconnect"
	"github.com/nexuskit/nexuskit/socks5"
	"github.com/nexuskit/nexuskit/tlsengine"
)

// ProtocolAdapter names which wire codec the connection speaks.
type ProtocolAdapter uint8

const (
	AdapterBinary ProtocolAdapter = iota
	AdapterJSONLine
	AdapterMessagePack
)

// PoolConfiguration bounds a connection pool's size, when the
// connection is used through a manager (section 4.10).
type PoolConfiguration struct {
	Min int `validate:"gte=0"`
	Max int `validate:"gtefield=Min"`
}

// ProxyConfiguration configures an optional SOCKS5 hop before the
// logical endpoint is dialed (section 4.6).
type ProxyConfiguration struct {
	Enabled     bool
	Host        string `validate:"required_if=Enabled true"`
	Port        uint16 `validate:"required_if=Enabled true"`
	Credentials socks5.Credentials
}

// TLSConfiguration wraps tlsengine.Config plus the identity material
// loading parameters (section 4.5).
type TLSConfiguration struct {
	Enabled            bool
	Engine             tlsengine.Config
	IdentityPKCS12Path string
	IdentityPassword   string
	WatchIdentityFile  bool
}

// ConnectionConfiguration is the top-level struct a caller builds
// (ideally through Builder) and hands to the connection runtime.
type ConnectionConfiguration struct {
	// ID identifies this connection across logging, metrics, and the
	// connection manager's registry. Builder.Build assigns a random
	// uuid when left blank.
	ID string

	Endpoint endpoint.Endpoint `validate:"required"`

	ConnectTimeout time.Duration `validate:"required,gt=0"`
	SendTimeout    time.Duration `validate:"required,gt=0"`
	IdleTimeout    time.Duration

	Proxy ProxyConfiguration
	TLS   TLSConfiguration

	Adapter      ProtocolAdapter
	MaxFrameSize int `validate:"gte=0"`

	Heartbeat       heartbeat.Config
	HeartbeatEnable bool

	ReconnectEnable  bool
	ReconnectMax     int `validate:"gte=0"`
	ReconnectBackoff reconnect.Strategy

	Pool PoolConfiguration

	// Metadata seeds the connection's runtime key/value store (see
	// Connection.Metadata/SetMetadata) with caller-chosen annotations -
	// a session id, an owning subsystem name, anything worth attaching
	// to the connection without widening its API for every new bit of
	// bookkeeping callers want.
	Metadata map[string]interface{}
}

// Validate runs struct-tag validation via go-playground/validator and
// cross-field checks it cannot express in tags.
func (c *ConnectionConfiguration) Validate() error {
	if err := libval.New().Struct(c); err != nil {
		if _, ok := err.(*libval.InvalidValidationError); ok {
			return nxerr.New(nxerr.CodeInvalidConfiguration, err.Error())
		}
		for _, fe := range err.(libval.ValidationErrors) {
			return nxerr.New(nxerr.CodeInvalidConfiguration,
				fmt.Sprintf("field %q fails constraint %q", fe.StructNamespace(), fe.ActualTag()))
		}
	}

	if err := c.Endpoint.Validate(); err != nil {
		return err
	}

	if c.Pool.Max > 0 && c.Pool.Min > c.Pool.Max {
		return nxerr.New(nxerr.CodeInvalidConfiguration, "pool min must not exceed pool max")
	}

	return nil
}

// Builder assembles a ConnectionConfiguration fluently, applying
// DefaultConfiguration's values until overridden.
type Builder struct {
	cfg ConnectionConfiguration
}

// DefaultConfiguration returns the baseline values every Builder starts
// from.
func DefaultConfiguration() ConnectionConfiguration {
	return ConnectionConfiguration{
		ConnectTimeout:  10 * time.Second,
		SendTimeout:     10 * time.Second,
		IdleTimeout:     0,
		Adapter:         AdapterBinary,
		MaxFrameSize:    8 * 1024 * 1024,
		Heartbeat:       heartbeat.DefaultConfig(),
		HeartbeatEnable: true,
		ReconnectEnable: true,
		ReconnectMax:    0,
		ReconnectBackoff: reconnect.ExponentialBackoff{
			Base:   500 * time.Millisecond,
			Factor: 2,
			Max:    30 * time.Second,
			Jitter: 0.2,
		},
		Pool: PoolConfiguration{Min: 0, Max: 1},
	}
}

// NewBuilder starts a Builder from DefaultConfiguration targeting ep.
func NewBuilder(ep endpoint.Endpoint) *Builder {
	cfg := DefaultConfiguration()
	cfg.Endpoint = ep
	return &Builder{cfg: cfg}
}

// WithTimeouts overrides the connect and send timeouts.
func (b *Builder) WithTimeouts(connect, send time.Duration) *Builder {
	b.cfg.ConnectTimeout = connect
	b.cfg.SendTimeout = send
	return b
}

// WithTLS enables TLS using the given engine configuration.
func (b *Builder) WithTLS(engine tlsengine.Config) *Builder {
	b.cfg.TLS = TLSConfiguration{Enabled: true, Engine: engine}
	return b
}

// WithClientIdentity additionally configures a hot-reloadable PKCS#12
// client identity for the TLS layer.
func (b *Builder) WithClientIdentity(path, password string, watch bool) *Builder {
	b.cfg.TLS.IdentityPKCS12Path = path
	b.cfg.TLS.IdentityPassword = password
	b.cfg.TLS.WatchIdentityFile = watch
	return b
}

// WithProxy routes the connection through a SOCKS5 proxy.
func (b *Builder) WithProxy(host string, port uint16, creds socks5.Credentials) *Builder {
	b.cfg.Proxy = ProxyConfiguration{Enabled: true, Host: host, Port: port, Credentials: creds}
	return b
}

// WithAdapter selects the wire protocol adapter.
func (b *Builder) WithAdapter(adapter ProtocolAdapter) *Builder {
	b.cfg.Adapter = adapter
	return b
}

// WithHeartbeat overrides the heartbeat controller's configuration.
func (b *Builder) WithHeartbeat(cfg heartbeat.Config) *Builder {
	b.cfg.Heartbeat = cfg
	return b
}

// WithoutHeartbeat disables the heartbeat controller entirely.
func (b *Builder) WithoutHeartbeat() *Builder {
	b.cfg.HeartbeatEnable = false
	return b
}

// WithReconnect sets the reconnect strategy and the maximum number of
// attempts (0 means unlimited).
func (b *Builder) WithReconnect(strategy reconnect.Strategy, max int) *Builder {
	b.cfg.ReconnectEnable = true
	b.cfg.ReconnectBackoff = strategy
	b.cfg.ReconnectMax = max
	return b
}

// WithoutReconnect disables automatic reconnection.
func (b *Builder) WithoutReconnect() *Builder {
	b.cfg.ReconnectEnable = false
	return b
}

// WithPool bounds the connection pool size for manager-owned
// connections.
func (b *Builder) WithPool(min, max int) *Builder {
	b.cfg.Pool = PoolConfiguration{Min: min, Max: max}
	return b
}

// WithMetadata seeds the connection's runtime metadata store with meta,
// replacing whatever was previously set.
func (b *Builder) WithMetadata(meta map[string]interface{}) *Builder {
	b.cfg.Metadata = meta
	return b
}

// WithMetadataValue sets a single metadata key, creating the map if
// this is the first value set through the Builder.
func (b *Builder) WithMetadataValue(key string, value interface{}) *Builder {
	if b.cfg.Metadata == nil {
		b.cfg.Metadata = make(map[string]interface{})
	}
	b.cfg.Metadata[key] = value
	return b
}

// Build validates and returns the assembled configuration.
func (b *Builder) Build() (ConnectionConfiguration, error) {
	if b.cfg.ID == "" {
		b.cfg.ID = uuid.NewString()
	}
	if err := b.cfg.Validate(); err != nil {
		return ConnectionConfiguration{}, err
	}
	return b.cfg, nil
}

// WithID overrides the auto-generated uuid with a caller-chosen id,
// useful when the id needs to match an identifier from another system
// (a session id, a device id).
func (b *Builder) WithID(id string) *Builder {
	b.cfg.ID = id
	return b
}
