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
	"context"

	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

// The methods below are the only way to mutate the ledger. Each one blocks
// until its action has been applied in arrival order. A cancelled context
// aborts only an action that was not admitted yet.

func (ls *LedgerState) CreateClub(
	ctx context.Context,
	caller types.AccountId,
	name string,
	description string,
) (club.Club, error) {
	return submitAction[club.Club](ctx, ls, caller, &createClubParams{
		Name:        name,
		Description: description,
	})
}

func (ls *LedgerState) JoinClub(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
) (club.Member, error) {
	return submitAction[club.Member](ctx, ls, caller, &joinClubParams{ClubId: uint64(id)})
}

func (ls *LedgerState) LeaveClub(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
) (club.Member, error) {
	return submitAction[club.Member](ctx, ls, caller, &leaveClubParams{ClubId: uint64(id)})
}

func (ls *LedgerState) DeactivateClub(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
) (club.Club, error) {
	return submitAction[club.Club](ctx, ls, caller, &deactivateClubParams{ClubId: uint64(id)})
}

// Endow credits new funds to an account
func (ls *LedgerState) Endow(
	ctx context.Context,
	caller types.AccountId,
	account types.AccountId,
	amount types.Amount,
) (balance.Balance, error) {
	return submitAction[balance.Balance](ctx, ls, caller, &endowParams{
		Account: string(account),
		Amount:  uint64(amount),
	})
}

// AdvanceBlocks moves the ledger clock forward and releases expired
// conviction locks
func (ls *LedgerState) AdvanceBlocks(
	ctx context.Context,
	caller types.AccountId,
	blocks uint64,
) (types.BlockNumber, error) {
	return submitAction[types.BlockNumber](ctx, ls, caller, &advanceBlocksParams{Blocks: blocks})
}

func (ls *LedgerState) CreateProposal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	req governance.CreateRequest,
) (governance.Proposal, error) {
	params := &createProposalParams{
		ClubId:      uint64(id),
		Type:        uint8(req.Type),
		Mechanism:   uint8(req.Mechanism),
		Title:       req.Title,
		Description: req.Description,
		Threshold:   req.Threshold,
		Duration:    req.Duration,
	}
	if action := req.TreasuryAction; action != nil {
		kind := uint8(action.Kind)
		params.ActionKind = &kind
		params.Period = optionalUint64(action.Period)
		params.Minimum = amountPtr(action.MinimumContribution)
	}
	return submitAction[governance.Proposal](ctx, ls, caller, params)
}

func (ls *LedgerState) Vote(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	proposal types.ProposalId,
	req governance.VoteRequest,
) (governance.Vote, error) {
	return submitAction[governance.Vote](ctx, ls, caller, &voteParams{
		ClubId:     uint64(id),
		ProposalId: uint64(proposal),
		Choice:     uint8(req.Choice),
		Votes:      req.Votes,
		Stake:      amountPtr(req.Stake),
		LockBlocks: req.LockBlocks,
	})
}

func (ls *LedgerState) SetDelegate(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	to types.AccountId,
) error {
	_, err := submitAction[struct{}](ctx, ls, caller, &setDelegateParams{
		ClubId: uint64(id),
		To:     string(to),
	})
	return err
}

func (ls *LedgerState) ClearDelegate(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
) error {
	_, err := submitAction[struct{}](ctx, ls, caller, &clearDelegateParams{ClubId: uint64(id)})
	return err
}

func (ls *LedgerState) CancelProposal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	proposal types.ProposalId,
) (governance.Proposal, error) {
	return submitAction[governance.Proposal](ctx, ls, caller, &cancelProposalParams{
		ClubId:     uint64(id),
		ProposalId: uint64(proposal),
	})
}

// FinalizeProposal resolves a proposal. Finalizing a terminal proposal
// returns it unchanged.
func (ls *LedgerState) FinalizeProposal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	proposal types.ProposalId,
) (governance.Proposal, error) {
	return submitAction[governance.Proposal](ctx, ls, caller, &finalizeProposalParams{
		ClubId:     uint64(id),
		ProposalId: uint64(proposal),
	})
}

func (ls *LedgerState) OpenContributionCycle(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	period *uint64,
	minimum *types.Amount,
) (treasury.Cycle, error) {
	return submitAction[treasury.Cycle](ctx, ls, caller, &openCycleParams{
		ClubId:  uint64(id),
		Period:  optionalUint64(period),
		Minimum: amountPtr(minimum),
	})
}

func (ls *LedgerState) Contribute(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	amount types.Amount,
) (treasury.Contribution, error) {
	return submitAction[treasury.Contribution](ctx, ls, caller, &contributeParams{
		ClubId: uint64(id),
		Amount: uint64(amount),
	})
}

func (ls *LedgerState) CloseCycle(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
) (treasury.Cycle, error) {
	return submitAction[treasury.Cycle](ctx, ls, caller, &closeCycleParams{ClubId: uint64(id)})
}

func (ls *LedgerState) DistributeReturns(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	cycle types.CycleId,
	returns types.Amount,
) (treasury.Cycle, error) {
	return submitAction[treasury.Cycle](ctx, ls, caller, &distributeReturnsParams{
		ClubId:  uint64(id),
		CycleId: uint64(cycle),
		Returns: uint64(returns),
	})
}

func (ls *LedgerState) ClaimReturns(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	cycle types.CycleId,
) (treasury.Entitlement, error) {
	return submitAction[treasury.Entitlement](ctx, ls, caller, &claimReturnsParams{
		ClubId:  uint64(id),
		CycleId: uint64(cycle),
	})
}

// DepositTreasury moves funds from the caller into the club treasury and
// returns the new treasury balance
func (ls *LedgerState) DepositTreasury(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	amount types.Amount,
) (types.Amount, error) {
	return submitAction[types.Amount](ctx, ls, caller, &depositTreasuryParams{
		ClubId: uint64(id),
		Amount: uint64(amount),
	})
}

func (ls *LedgerState) RequestWithdrawal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	recipient types.AccountId,
	amount types.Amount,
	delay uint64,
) (treasury.Withdrawal, error) {
	return submitAction[treasury.Withdrawal](ctx, ls, caller, &requestWithdrawalParams{
		ClubId:    uint64(id),
		Recipient: string(recipient),
		Amount:    uint64(amount),
		Delay:     delay,
	})
}

func (ls *LedgerState) ApproveWithdrawal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	withdrawal types.WithdrawalId,
) (treasury.Withdrawal, error) {
	return submitAction[treasury.Withdrawal](ctx, ls, caller, &approveWithdrawalParams{
		ClubId:       uint64(id),
		WithdrawalId: uint64(withdrawal),
	})
}

func (ls *LedgerState) ExecuteWithdrawal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	withdrawal types.WithdrawalId,
) (treasury.Withdrawal, error) {
	return submitAction[treasury.Withdrawal](ctx, ls, caller, &executeWithdrawalParams{
		ClubId:       uint64(id),
		WithdrawalId: uint64(withdrawal),
	})
}

func (ls *LedgerState) CancelWithdrawal(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	withdrawal types.WithdrawalId,
) (treasury.Withdrawal, error) {
	return submitAction[treasury.Withdrawal](ctx, ls, caller, &cancelWithdrawalParams{
		ClubId:       uint64(id),
		WithdrawalId: uint64(withdrawal),
	})
}

// OpenDispute raises a complaint of the caller against another member
func (ls *LedgerState) OpenDispute(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	subject types.AccountId,
	description string,
) (disputes.Dispute, error) {
	return submitAction[disputes.Dispute](ctx, ls, caller, &openDisputeParams{
		ClubId:      uint64(id),
		Subject:     string(subject),
		Description: description,
	})
}

func (ls *LedgerState) SubmitEvidence(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	dispute types.DisputeId,
	description string,
) (disputes.Evidence, error) {
	return submitAction[disputes.Evidence](ctx, ls, caller, &submitEvidenceParams{
		ClubId:      uint64(id),
		DisputeId:   uint64(dispute),
		Description: description,
	})
}

func (ls *LedgerState) VoteOnDispute(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	dispute types.DisputeId,
	choice disputes.VoteChoice,
) (disputes.Vote, error) {
	return submitAction[disputes.Vote](ctx, ls, caller, &voteOnDisputeParams{
		ClubId:    uint64(id),
		DisputeId: uint64(dispute),
		Choice:    uint8(choice),
	})
}

// EscalateDispute moves a dispute into mediation and then arbitration. Only
// the club founder may escalate.
func (ls *LedgerState) EscalateDispute(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	dispute types.DisputeId,
) (disputes.Dispute, error) {
	return submitAction[disputes.Dispute](ctx, ls, caller, &escalateDisputeParams{
		ClubId:    uint64(id),
		DisputeId: uint64(dispute),
	})
}

func (ls *LedgerState) ResolveDispute(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	dispute types.DisputeId,
) (disputes.Dispute, error) {
	return submitAction[disputes.Dispute](ctx, ls, caller, &resolveDisputeParams{
		ClubId:    uint64(id),
		DisputeId: uint64(dispute),
	})
}

func (ls *LedgerState) CloseDispute(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	dispute types.DisputeId,
) (disputes.Dispute, error) {
	return submitAction[disputes.Dispute](ctx, ls, caller, &closeDisputeParams{
		ClubId:    uint64(id),
		DisputeId: uint64(dispute),
	})
}
