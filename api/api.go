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

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const DefaultListenAddress = ":8080"

type ApiConfig struct {
	ListenAddress string
}

// Api is the REST surface of the ledger
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	ledger     Ledger
	httpServer *http.Server
	listenAddr string
	mu         sync.Mutex
}

// New creates a new API server instance
func New(
	cfg ApiConfig,
	ledger Ledger,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Api{
		config: cfg,
		logger: logger,
		ledger: ledger,
	}
}

// Handler returns the routes of the API
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)

	mux.HandleFunc("GET /api/v0/block", a.handleCurrentBlock)
	mux.HandleFunc("POST /api/v0/block/advance", a.handleAdvanceBlocks)
	mux.HandleFunc("GET /api/v0/actions", a.handleActions)

	mux.HandleFunc("GET /api/v0/accounts/{account}", a.handleAccount)
	mux.HandleFunc("POST /api/v0/accounts/{account}/endow", a.handleEndow)

	mux.HandleFunc("GET /api/v0/clubs", a.handleClubs)
	mux.HandleFunc("POST /api/v0/clubs", a.handleCreateClub)
	mux.HandleFunc("GET /api/v0/clubs/{club}", a.handleClub)
	mux.HandleFunc("POST /api/v0/clubs/{club}/join", a.handleJoinClub)
	mux.HandleFunc("POST /api/v0/clubs/{club}/leave", a.handleLeaveClub)
	mux.HandleFunc("POST /api/v0/clubs/{club}/deactivate", a.handleDeactivateClub)
	mux.HandleFunc("GET /api/v0/clubs/{club}/members", a.handleMembers)
	mux.HandleFunc("GET /api/v0/clubs/{club}/members/{account}", a.handleMember)

	mux.HandleFunc("GET /api/v0/clubs/{club}/delegations", a.handleDelegations)
	mux.HandleFunc("PUT /api/v0/clubs/{club}/delegate", a.handleSetDelegate)
	mux.HandleFunc("DELETE /api/v0/clubs/{club}/delegate", a.handleClearDelegate)

	mux.HandleFunc("GET /api/v0/clubs/{club}/proposals", a.handleProposals)
	mux.HandleFunc("POST /api/v0/clubs/{club}/proposals", a.handleCreateProposal)
	mux.HandleFunc("GET /api/v0/clubs/{club}/proposals/{proposal}", a.handleProposal)
	mux.HandleFunc("GET /api/v0/clubs/{club}/proposals/{proposal}/votes", a.handleVotes)
	mux.HandleFunc("POST /api/v0/clubs/{club}/proposals/{proposal}/votes", a.handleVote)
	mux.HandleFunc("GET /api/v0/clubs/{club}/proposals/{proposal}/tally", a.handleTally)
	mux.HandleFunc("POST /api/v0/clubs/{club}/proposals/{proposal}/cancel", a.handleCancelProposal)
	mux.HandleFunc("POST /api/v0/clubs/{club}/proposals/{proposal}/finalize", a.handleFinalizeProposal)

	mux.HandleFunc("GET /api/v0/clubs/{club}/treasury", a.handleTreasury)
	mux.HandleFunc("POST /api/v0/clubs/{club}/treasury/deposit", a.handleDepositTreasury)
	mux.HandleFunc("GET /api/v0/clubs/{club}/cycles", a.handleCycles)
	mux.HandleFunc("POST /api/v0/clubs/{club}/cycles", a.handleOpenCycle)
	mux.HandleFunc("GET /api/v0/clubs/{club}/cycles/active", a.handleActiveCycle)
	mux.HandleFunc("POST /api/v0/clubs/{club}/cycles/active/close", a.handleCloseCycle)
	mux.HandleFunc("POST /api/v0/clubs/{club}/cycles/active/contributions", a.handleContribute)
	mux.HandleFunc("GET /api/v0/clubs/{club}/cycles/{cycle}", a.handleCycle)
	mux.HandleFunc("GET /api/v0/clubs/{club}/cycles/{cycle}/contributions", a.handleContributions)
	mux.HandleFunc("POST /api/v0/clubs/{club}/cycles/{cycle}/distribute", a.handleDistributeReturns)
	mux.HandleFunc("POST /api/v0/clubs/{club}/cycles/{cycle}/claim", a.handleClaimReturns)
	mux.HandleFunc("GET /api/v0/clubs/{club}/cycles/{cycle}/entitlements", a.handleEntitlements)
	mux.HandleFunc("GET /api/v0/clubs/{club}/cycles/{cycle}/entitlements/{account}", a.handleEntitlement)

	mux.HandleFunc("GET /api/v0/clubs/{club}/withdrawals", a.handleWithdrawals)
	mux.HandleFunc("POST /api/v0/clubs/{club}/withdrawals", a.handleRequestWithdrawal)
	mux.HandleFunc("GET /api/v0/clubs/{club}/withdrawals/{withdrawal}", a.handleWithdrawal)
	mux.HandleFunc("POST /api/v0/clubs/{club}/withdrawals/{withdrawal}/approve", a.handleApproveWithdrawal)
	mux.HandleFunc("POST /api/v0/clubs/{club}/withdrawals/{withdrawal}/execute", a.handleExecuteWithdrawal)
	mux.HandleFunc("POST /api/v0/clubs/{club}/withdrawals/{withdrawal}/cancel", a.handleCancelWithdrawal)

	mux.HandleFunc("GET /api/v0/clubs/{club}/disputes", a.handleDisputes)
	mux.HandleFunc("POST /api/v0/clubs/{club}/disputes", a.handleOpenDispute)
	mux.HandleFunc("GET /api/v0/clubs/{club}/disputes/{dispute}", a.handleDispute)
	mux.HandleFunc("GET /api/v0/clubs/{club}/disputes/{dispute}/evidence", a.handleDisputeEvidence)
	mux.HandleFunc("POST /api/v0/clubs/{club}/disputes/{dispute}/evidence", a.handleSubmitEvidence)
	mux.HandleFunc("GET /api/v0/clubs/{club}/disputes/{dispute}/votes", a.handleDisputeVotes)
	mux.HandleFunc("POST /api/v0/clubs/{club}/disputes/{dispute}/votes", a.handleVoteOnDispute)
	mux.HandleFunc("POST /api/v0/clubs/{club}/disputes/{dispute}/escalate", a.handleEscalateDispute)
	mux.HandleFunc("POST /api/v0/clubs/{club}/disputes/{dispute}/resolve", a.handleResolveDispute)
	mux.HandleFunc("POST /api/v0/clubs/{club}/disputes/{dispute}/close", a.handleCloseDispute)
	return mux
}

// Start starts the HTTP server in a background goroutine
func (a *Api) Start(
	ctx context.Context,
) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Start the server with deterministic error detection
	if err := a.startServer(server); err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return err
	}

	a.logger.Info(
		"API listener started on " + a.Addr(),
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()

		if srv != nil {
			a.logger.Debug(
				"context cancelled, shutting down API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(
	ctx context.Context,
) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}

// Addr returns the bound listen address once the server has started
func (a *Api) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listenAddr != "" {
		return a.listenAddr
	}
	return a.config.ListenAddress
}

// startServer binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine.
func (a *Api) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for API server: %w",
			err,
		)
	}
	a.mu.Lock()
	a.listenAddr = ln.Addr().String()
	a.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
