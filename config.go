// Copyright 2026 The Clubledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clubledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	dataDir            string
	apiListenAddress   string
	vacuumSchedule     string
	checkpointSchedule string
	tracingEndpoint    string
	endowAuthority     types.AccountId
	blobCacheSize      uint64
	blockInterval      time.Duration
	shutdownTimeout    time.Duration
	tracing            bool
	tracingStdout      bool
	club               club.Config
	governance         governance.Config
	treasury           treasury.Config
}

func (n *Node) configValidate() error {
	if n.config.apiListenAddress == "" {
		return errors.New("no API listen address defined")
	}
	if n.config.blockInterval < 0 {
		return fmt.Errorf(
			"invalid block interval: %s",
			n.config.blockInterval,
		)
	}
	if n.config.endowAuthority != "" {
		if err := n.config.endowAuthority.Validate(); err != nil {
			return fmt.Errorf("invalid endow authority: %w", err)
		}
	}
	if n.config.club.MaxMembersPerClub < 0 {
		return fmt.Errorf(
			"invalid max members per club: %d",
			n.config.club.MaxMembersPerClub,
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new clubledger config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:           slog.New(slog.NewJSONHandler(io.Discard, nil)),
		apiListenAddress: "127.0.0.1:8080",
		shutdownTimeout:  DefaultShutdownTimeout,
		governance:       governance.DefaultConfig(),
		treasury:         treasury.DefaultConfig(),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithApiListenAddress specifies the address the HTTP API listens on
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithTracingEndpoint overrides the OTLP endpoint URL
func WithTracingEndpoint(endpoint string) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingEndpoint = endpoint
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithBlockInterval enables the dev block producer, which advances the ledger
// clock by one block per interval
func WithBlockInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.blockInterval = interval
	}
}

// WithEndowAuthority restricts account endowment to a single faucet account
func WithEndowAuthority(account types.AccountId) ConfigOptionFunc {
	return func(c *Config) {
		c.endowAuthority = account
	}
}

func WithClubConfig(cfg club.Config) ConfigOptionFunc {
	return func(c *Config) {
		c.club = cfg
	}
}

func WithGovernanceConfig(cfg governance.Config) ConfigOptionFunc {
	return func(c *Config) {
		c.governance = cfg
	}
}

func WithTreasuryConfig(cfg treasury.Config) ConfigOptionFunc {
	return func(c *Config) {
		c.treasury = cfg
	}
}

// WithVacuumSchedule specifies the cron schedule for metadata store vacuums
func WithVacuumSchedule(schedule string) ConfigOptionFunc {
	return func(c *Config) {
		c.vacuumSchedule = schedule
	}
}

// WithCheckpointSchedule specifies the cron schedule for metadata store WAL checkpoints
func WithCheckpointSchedule(schedule string) ConfigOptionFunc {
	return func(c *Config) {
		c.checkpointSchedule = schedule
	}
}

// WithBlobCacheSize specifies the block cache size of the action log store, in bytes
func WithBlobCacheSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.blobCacheSize = size
	}
}
