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
	"github.com/google/uuid"

	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/event"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

const (
	ActionEventType            event.EventType = "ledger.action"
	BlockEventType             event.EventType = "ledger.block"
	ProposalFinalizedEventType event.EventType = "ledger.proposal.finalized"
	CycleDistributedEventType  event.EventType = "ledger.cycle.distributed"
	DisputeResolvedEventType   event.EventType = "ledger.dispute.resolved"
	LedgerErrorEventType       event.EventType = "ledger.error"
)

// ActionEvent is published once for every committed action
type ActionEvent struct {
	Id     uuid.UUID
	Type   ActionType
	Caller types.AccountId
	Result any
	Seq    uint64
	Block  types.BlockNumber
}

// BlockEvent is published when the ledger clock advances
type BlockEvent struct {
	Previous types.BlockNumber
	Block    types.BlockNumber
}

// ProposalFinalizedEvent carries the terminal state of a proposal
type ProposalFinalizedEvent struct {
	Proposal  governance.Proposal
	Forfeited types.Amount
}

// CycleDistributedEvent carries a cycle whose entitlements were fixed
type CycleDistributedEvent struct {
	Cycle treasury.Cycle
}

// DisputeResolvedEvent carries a dispute decided by vote
type DisputeResolvedEvent struct {
	Dispute disputes.Dispute
}

// LedgerErrorEvent is published when the ledger halts
type LedgerErrorEvent struct {
	Error     error
	Operation ActionType
	Seq       uint64
}
