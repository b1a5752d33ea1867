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

package ledger

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/database"
	"github.com/ikubchain/clubledger/event"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

type LedgerStateConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	// Database is optional. Without it the ledger keeps no action log and
	// starts empty.
	Database   *database.Database
	Club       club.Config
	Governance governance.Config
	Treasury   treasury.Config
	// EndowAuthority restricts Endow to a single caller when set
	EndowAuthority types.AccountId
	// BlockInterval enables the dev block producer when positive
	BlockInterval time.Duration
}

// withDefaults fills in engine configs left at their zero value
func (c LedgerStateConfig) withDefaults() LedgerStateConfig {
	if c.Governance.MaxVotingDuration == 0 &&
		c.Governance.ProposalDeposit == 0 &&
		len(c.Governance.ConvictionTable.Entries) == 0 {
		c.Governance = governance.DefaultConfig()
	}
	if c.Treasury.DefaultContributionPeriod == 0 &&
		c.Treasury.MinContribution == 0 {
		c.Treasury = treasury.DefaultConfig()
	}
	return c
}
