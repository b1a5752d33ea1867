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
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/types"
)

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool   `json:"isHealthy"`
	Seq       uint64 `json:"seq"`
	Block     uint64 `json:"block"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the body of every failed request. Error carries the
// error kind and Message the violated constraint.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type BlockResponse struct {
	Block types.BlockNumber `json:"block"`
}

type AdvanceBlocksRequest struct {
	Blocks uint64 `json:"blocks"`
}

type AmountRequest struct {
	Amount types.Amount `json:"amount"`
}

type BalanceResponse struct {
	Account  types.AccountId `json:"account"`
	Free     types.Amount    `json:"free"`
	Reserved types.Amount    `json:"reserved"`
}

type CreateClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DelegateRequest struct {
	To types.AccountId `json:"to"`
}

// CreateProposalRequest mirrors governance.CreateRequest. Type and mechanism
// are required tags.
type CreateProposalRequest struct {
	Type           *governance.ProposalType    `json:"type"`
	Mechanism      *governance.VotingMechanism `json:"mechanism"`
	Title          string                      `json:"title"`
	Description    string                      `json:"description"`
	Threshold      uint8                       `json:"threshold"`
	Duration       uint64                      `json:"duration"`
	TreasuryAction *governance.TreasuryAction  `json:"treasuryAction,omitempty"`
}

type VoteRequest struct {
	Choice     *governance.VoteChoice `json:"choice"`
	Votes      uint64                 `json:"votes,omitempty"`
	Stake      *types.Amount          `json:"stake,omitempty"`
	LockBlocks uint64                 `json:"lockBlocks,omitempty"`
}

// TallyResponse carries the raw tally next to the aye share of decisive
// weight as an exact decimal string
type TallyResponse struct {
	Aye      uint64 `json:"aye,string"`
	Nay      uint64 `json:"nay,string"`
	Abstain  uint64 `json:"abstain,string"`
	AyeShare string `json:"ayeShare"`
	Passing  bool   `json:"passing"`
}

type TreasuryResponse struct {
	ClubId  types.ClubId `json:"clubId"`
	Balance types.Amount `json:"balance"`
}

type OpenCycleRequest struct {
	Period              *uint64       `json:"period,omitempty"`
	MinimumContribution *types.Amount `json:"minimumContribution,omitempty"`
}

type DistributeRequest struct {
	Returns types.Amount `json:"returns"`
}

type WithdrawalRequest struct {
	Recipient types.AccountId `json:"recipient"`
	Amount    types.Amount    `json:"amount"`
	Delay     uint64          `json:"delay"`
}

type OpenDisputeRequest struct {
	Subject     types.AccountId `json:"subject"`
	Description string          `json:"description"`
}

type EvidenceRequest struct {
	Description string `json:"description"`
}

// DisputeVoteRequest carries a required choice tag
type DisputeVoteRequest struct {
	Choice *disputes.VoteChoice `json:"choice"`
}

// ActionResponse is one entry of the action log
type ActionResponse struct {
	Seq    uint64 `json:"seq"`
	Id     string `json:"id"`
	Type   string `json:"type"`
	Caller string `json:"caller"`
	Block  uint64 `json:"block"`
}
