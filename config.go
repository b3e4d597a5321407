// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package credmint

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/credmint/identity"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	networkMainnet = "mainnet"
	networkPreprod = "preprod"
	networkPreview = "preview"
)

type Config struct {
	promRegistry      prometheus.Registerer
	logger            *slog.Logger
	dataDir           string
	network           string
	policyScript      []byte
	policyScriptTag   uint8
	indexerUrl        string
	indexerProjectId  string
	apiListenAddress  string
	metricsPort       uint
	maxMetadataBytes  int
	maxBatchSize      int
	requireCollateral bool
	tracing           bool
	tracingStdout     bool
	shutdownTimeout   time.Duration
}

func (s *Service) configValidate() error {
	if len(s.config.policyScript) == 0 {
		return errors.New("no policy script defined")
	}
	switch s.config.network {
	case networkMainnet, networkPreprod, networkPreview:
	default:
		return errors.New("unknown network name: " + s.config.network)
	}
	if s.config.indexerUrl == "" {
		return errors.New("no indexer URL defined")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify
// the service config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new credmint config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log
		// operation
		logger: slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		),
		network:         networkPreprod,
		policyScriptTag: identity.ScriptTagNative,
		shutdownTimeout: 30 * time.Second,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding
// log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use.
// The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithNetwork specifies the named network to operate on
func WithNetwork(network string) ConfigOptionFunc {
	return func(c *Config) {
		c.network = network
	}
}

// WithPolicyScript specifies the minting policy script bytes and
// script type tag. The policy id for all issued assets derives from
// these.
func WithPolicyScript(script []byte, scriptTag uint8) ConfigOptionFunc {
	return func(c *Config) {
		c.policyScript = script
		c.policyScriptTag = scriptTag
	}
}

// WithIndexer specifies the Blockfrost-compatible indexer endpoint
// and project id
func WithIndexer(url string, projectId string) ConfigOptionFunc {
	return func(c *Config) {
		c.indexerUrl = url
		c.indexerProjectId = projectId
	}
}

// WithApiListenAddress specifies the REST API listen address. This
// defaults to ":8080"
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithMetricsPort specifies the port to use for the Prometheus
// metrics listener (0 = disabled)
func WithMetricsPort(port uint) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsPort = port
	}
}

// WithMaxMetadataBytes bounds the encoded metadata document size
func WithMaxMetadataBytes(maxBytes int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxMetadataBytes = maxBytes
	}
}

// WithMaxBatchSize bounds the number of mints in one batch
// transaction
func WithMaxBatchSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxBatchSize = size
	}
}

// WithRequireCollateral specifies whether mint transactions must
// carry collateral inputs. Enable this when the policy script is a
// Plutus script.
func WithRequireCollateral(require bool) ConfigOptionFunc {
	return func(c *Config) {
		c.requireCollateral = require
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer for
// metrics. This defaults to a private registry
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables OpenTelemetry tracing
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout writes traces to stdout instead of the OTLP HTTP
// exporter
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies how long to wait for components to
// stop during shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
