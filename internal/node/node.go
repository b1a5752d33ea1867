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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ikubchain/clubledger"
	"github.com/ikubchain/clubledger/internal/config"
	"github.com/ikubchain/clubledger/types"
)

// nodeOptions translates the loaded config into node options
func nodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
) ([]clubledger.ConfigOptionFunc, time.Duration, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, 0, err
	}
	blockInterval, err := cfg.BlockIntervalDuration()
	if err != nil {
		return nil, 0, err
	}
	opts := []clubledger.ConfigOptionFunc{
		clubledger.WithLogger(logger),
		clubledger.WithDatabasePath(cfg.DatabasePath),
		clubledger.WithApiListenAddress(
			fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
		),
		clubledger.WithShutdownTimeout(shutdownTimeout),
		clubledger.WithBlockInterval(blockInterval),
		clubledger.WithEndowAuthority(types.AccountId(cfg.EndowAuthority)),
		clubledger.WithClubConfig(cfg.ClubConfig()),
		clubledger.WithGovernanceConfig(cfg.GovernanceConfig()),
		clubledger.WithTreasuryConfig(cfg.TreasuryConfig()),
		clubledger.WithVacuumSchedule(cfg.VacuumSchedule),
		clubledger.WithCheckpointSchedule(cfg.CheckpointSchedule),
		clubledger.WithBlobCacheSize(cfg.BlobCacheSize),
		clubledger.WithTracing(cfg.Tracing),
		clubledger.WithTracingStdout(cfg.TracingStdout),
		clubledger.WithTracingEndpoint(cfg.TracingEndpoint),
	}
	return opts, shutdownTimeout, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, shutdownTimeout, err := nodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	// Enable metrics with default prometheus registry
	opts = append(
		opts,
		clubledger.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	)
	n, err := clubledger.New(clubledger.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			metricsErr <- fmt.Errorf("metrics listener: %w", err)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		errChan <- n.Run(signalCtx)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("node error", "error", runErr)
		} else {
			logger.Info("node stopped")
		}
	case runErr = <-metricsErr:
		logger.Error("metrics server error", "error", runErr)
	}
	signalCtxStop()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("shutdown complete")
	}
	return runErr
}
