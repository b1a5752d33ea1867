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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikubchain/clubledger/api"
	"github.com/ikubchain/clubledger/database"
	"github.com/ikubchain/clubledger/event"
	"github.com/ikubchain/clubledger/ledger"
	"github.com/ikubchain/clubledger/types"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	api           *api.Api
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

// ReplayResult summarizes the state rebuilt from the action log
type ReplayResult struct {
	Seq   uint64
	Block types.BlockNumber
	Clubs int
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run starts the ledger and the API and blocks until the context is done or
// the node is stopped
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	if err := n.openLedger(n.config.blockInterval); err != nil {
		return err
	}
	// Log ledger halts
	n.eventBus.SubscribeFunc(
		ledger.LedgerErrorEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(ledger.LedgerErrorEvent)
			if !ok {
				return
			}
			n.config.logger.Error(
				"ledger halted",
				"component", "node",
				"operation", string(data.Operation),
				"seq", data.Seq,
				"error", data.Error,
			)
		},
	)
	// Configure API
	n.api = api.New(
		api.ApiConfig{
			ListenAddress: n.config.apiListenAddress,
		},
		n.ledgerState,
		n.config.logger,
	)
	if err := n.api.Start(ctx); err != nil {
		return err
	}

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// Replay rebuilds the ledger from the action log, which also rebuilds the
// metadata projection when its commit marker disagrees with the log, and
// returns a summary of the result
func (n *Node) Replay() (ReplayResult, error) {
	if n.config.dataDir == "" {
		return ReplayResult{}, errors.New(
			"replay requires a persistent database path",
		)
	}
	if err := n.openLedger(0); err != nil {
		return ReplayResult{}, err
	}
	return ReplayResult{
		Seq:   n.ledgerState.Seq(),
		Block: n.ledgerState.CurrentBlock(),
		Clubs: len(n.ledgerState.Clubs()),
	}, nil
}

func (n *Node) openLedger(blockInterval time.Duration) error {
	// Load database
	dbConfig := &database.Config{
		DataDir:            n.config.dataDir,
		Logger:             n.config.logger,
		PromRegistry:       n.config.promRegistry,
		VacuumSchedule:     n.config.vacuumSchedule,
		CheckpointSchedule: n.config.checkpointSchedule,
		BlobCacheSize:      n.config.blobCacheSize,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		n.config.logger.Error(
			"failed to create database",
			"component", "node",
			"error", err,
		)
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	if err != nil {
		var markerErr database.CommitMarkerError
		if !errors.As(err, &markerErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// The ledger rebuilds the projection while replaying the log
		n.config.logger.Warn(
			"database initialization error, needs recovery",
			"component", "node",
			"error", err,
		)
	}
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:         n.config.logger,
			EventBus:       n.eventBus,
			PromRegistry:   n.config.promRegistry,
			Database:       n.db,
			Club:           n.config.club,
			Governance:     n.config.governance,
			Treasury:       n.config.treasury,
			EndowAuthority: n.config.endowAuthority,
			BlockInterval:  blockInterval,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	return nil
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Phase 1: Stop accepting new requests
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain admitted actions
	if n.ledgerState != nil {
		if closeErr := n.ledgerState.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	}

	// Phase 3: Close database
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
