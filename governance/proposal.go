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

package governance

import (
	"github.com/ikubchain/clubledger/types"
)

const (
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
)

// TreasuryAction is an optional treasury operation attached to an Investment
// proposal and enacted when the proposal passes
type TreasuryAction struct {
	Kind                TreasuryActionKind `json:"kind"`
	Period              *uint64            `json:"period,omitempty"`
	MinimumContribution *types.Amount      `json:"minimumContribution,omitempty"`
}

type Proposal struct {
	Id                types.ProposalId  `json:"id"`
	ClubId            types.ClubId      `json:"clubId"`
	Proposer          types.AccountId   `json:"proposer"`
	Type              ProposalType      `json:"type"`
	Mechanism         VotingMechanism   `json:"mechanism"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Deposit           types.Amount      `json:"deposit"`
	CreatedAt         types.BlockNumber `json:"createdAt"`
	VotingEnd         types.BlockNumber `json:"votingEnd"`
	Threshold         uint8             `json:"threshold"`
	Status            ProposalStatus    `json:"status"`
	Tally             Tally             `json:"tally"`
	VoteCount         int               `json:"voteCount"`
	ConvictionVersion string            `json:"convictionVersion,omitempty"`
	TreasuryAction    *TreasuryAction   `json:"treasuryAction,omitempty"`
	FinalizedAt       types.BlockNumber `json:"finalizedAt,omitempty"`
	Enactment         string            `json:"enactment,omitempty"`
}

type Vote struct {
	ClubId     types.ClubId      `json:"clubId"`
	ProposalId types.ProposalId  `json:"proposalId"`
	Voter      types.AccountId   `json:"voter"`
	Choice     VoteChoice        `json:"choice"`
	Weight     uint64            `json:"weight,string"`
	Votes      uint64            `json:"votes,omitempty"`
	Cost       types.Amount      `json:"cost"`
	Stake      types.Amount      `json:"stake"`
	LockBlocks uint64            `json:"lockBlocks,omitempty"`
	UnlockAt   types.BlockNumber `json:"unlockAt,omitempty"`
	CastAt     types.BlockNumber `json:"castAt"`
}

// CreateRequest carries the caller-supplied proposal parameters
type CreateRequest struct {
	Type           ProposalType
	Mechanism      VotingMechanism
	Title          string
	Description    string
	Threshold      uint8
	Duration       uint64
	TreasuryAction *TreasuryAction
}

// VoteRequest carries the caller-supplied vote parameters. Votes is used by
// Quadratic proposals, Stake and LockBlocks by Conviction proposals.
type VoteRequest struct {
	Choice     VoteChoice
	Votes      uint64
	Stake      *types.Amount
	LockBlocks uint64
}

// Outcome describes the result of a Finalize call
type Outcome struct {
	Proposal Proposal
	// Changed is false when the proposal was already terminal
	Changed bool
	// Forfeited is the deposit slashed from the proposer on rejection
	Forfeited types.Amount
	// Voters lists every account with a recorded vote
	Voters map[types.AccountId]bool
	// Touched lists accounts whose balances changed
	Touched []types.AccountId
}
