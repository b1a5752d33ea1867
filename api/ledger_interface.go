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

	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/ledger"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

// Ledger is the part of the ledger state the API serves. This decouples the
// HTTP server from the concrete LedgerState.
type Ledger interface {
	Halted() error
	Seq() uint64
	CurrentBlock() types.BlockNumber
	AdvanceBlocks(ctx context.Context, caller types.AccountId, blocks uint64) (types.BlockNumber, error)
	Actions(afterSeq uint64, limit int) ([]models.Action, error)

	Account(id types.AccountId) balance.Balance
	Endow(ctx context.Context, caller types.AccountId, account types.AccountId, amount types.Amount) (balance.Balance, error)

	Club(id types.ClubId) (club.Club, error)
	Clubs() []club.Club
	Member(id types.ClubId, account types.AccountId) (club.Member, error)
	Members(id types.ClubId) ([]club.Member, error)
	CreateClub(ctx context.Context, caller types.AccountId, name string, description string) (club.Club, error)
	JoinClub(ctx context.Context, caller types.AccountId, id types.ClubId) (club.Member, error)
	LeaveClub(ctx context.Context, caller types.AccountId, id types.ClubId) (club.Member, error)
	DeactivateClub(ctx context.Context, caller types.AccountId, id types.ClubId) (club.Club, error)

	Delegations(id types.ClubId) (map[types.AccountId]types.AccountId, error)
	SetDelegate(ctx context.Context, caller types.AccountId, id types.ClubId, to types.AccountId) error
	ClearDelegate(ctx context.Context, caller types.AccountId, id types.ClubId) error

	Proposal(id types.ClubId, proposal types.ProposalId) (governance.Proposal, error)
	Proposals(id types.ClubId) ([]governance.Proposal, error)
	Votes(id types.ClubId, proposal types.ProposalId) ([]governance.Vote, error)
	Tally(id types.ClubId, proposal types.ProposalId) (governance.Tally, error)
	CreateProposal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		req governance.CreateRequest,
	) (governance.Proposal, error)
	Vote(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		proposal types.ProposalId,
		req governance.VoteRequest,
	) (governance.Vote, error)
	CancelProposal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		proposal types.ProposalId,
	) (governance.Proposal, error)
	FinalizeProposal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		proposal types.ProposalId,
	) (governance.Proposal, error)

	TreasuryBalance(id types.ClubId) (types.Amount, error)
	DepositTreasury(ctx context.Context, caller types.AccountId, id types.ClubId, amount types.Amount) (types.Amount, error)
	Cycle(id types.ClubId, cycle types.CycleId) (treasury.Cycle, error)
	Cycles(id types.ClubId) ([]treasury.Cycle, error)
	ActiveCycle(id types.ClubId) (treasury.Cycle, bool)
	Contributions(id types.ClubId, cycle types.CycleId) ([]treasury.Contribution, error)
	Entitlement(id types.ClubId, cycle types.CycleId, account types.AccountId) (treasury.Entitlement, error)
	Entitlements(id types.ClubId, cycle types.CycleId) ([]treasury.Entitlement, error)
	OpenContributionCycle(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		period *uint64,
		minimum *types.Amount,
	) (treasury.Cycle, error)
	Contribute(ctx context.Context, caller types.AccountId, id types.ClubId, amount types.Amount) (treasury.Contribution, error)
	CloseCycle(ctx context.Context, caller types.AccountId, id types.ClubId) (treasury.Cycle, error)
	DistributeReturns(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		cycle types.CycleId,
		returns types.Amount,
	) (treasury.Cycle, error)
	ClaimReturns(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		cycle types.CycleId,
	) (treasury.Entitlement, error)

	Withdrawal(id types.ClubId, withdrawal types.WithdrawalId) (treasury.Withdrawal, error)
	Withdrawals(id types.ClubId) ([]treasury.Withdrawal, error)
	RequestWithdrawal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		recipient types.AccountId,
		amount types.Amount,
		delay uint64,
	) (treasury.Withdrawal, error)
	ApproveWithdrawal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		withdrawal types.WithdrawalId,
	) (treasury.Withdrawal, error)
	ExecuteWithdrawal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		withdrawal types.WithdrawalId,
	) (treasury.Withdrawal, error)
	CancelWithdrawal(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		withdrawal types.WithdrawalId,
	) (treasury.Withdrawal, error)

	Dispute(id types.ClubId, dispute types.DisputeId) (disputes.Dispute, error)
	Disputes(id types.ClubId) ([]disputes.Dispute, error)
	DisputeEvidence(id types.ClubId, dispute types.DisputeId) ([]disputes.Evidence, error)
	DisputeVotes(id types.ClubId, dispute types.DisputeId) ([]disputes.Vote, error)
	OpenDispute(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		subject types.AccountId,
		description string,
	) (disputes.Dispute, error)
	SubmitEvidence(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		dispute types.DisputeId,
		description string,
	) (disputes.Evidence, error)
	VoteOnDispute(
		ctx context.Context,
		caller types.AccountId,
		id types.ClubId,
		dispute types.DisputeId,
		choice disputes.VoteChoice,
	) (disputes.Vote, error)
	EscalateDispute(ctx context.Context, caller types.AccountId, id types.ClubId, dispute types.DisputeId) (disputes.Dispute, error)
	ResolveDispute(ctx context.Context, caller types.AccountId, id types.ClubId, dispute types.DisputeId) (disputes.Dispute, error)
	CloseDispute(ctx context.Context, caller types.AccountId, id types.ClubId, dispute types.DisputeId) (disputes.Dispute, error)
}

var _ Ledger = (*ledger.LedgerState)(nil)
