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
	"errors"

	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

// Queries copy entities out under the read lock. Each call sees one
// consistent state but two calls may straddle an action.

var ErrNoActionLog = errors.New("ledger has no action log")

func (ls *LedgerState) CurrentBlock() types.BlockNumber {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.block
}

func (ls *LedgerState) Club(id types.ClubId) (club.Club, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.clubs.Club(id)
}

func (ls *LedgerState) Clubs() []club.Club {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.clubs.Clubs()
}

func (ls *LedgerState) Member(id types.ClubId, account types.AccountId) (club.Member, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.clubs.Member(id, account)
}

func (ls *LedgerState) Members(id types.ClubId) ([]club.Member, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.clubs.Members(id)
}

func (ls *LedgerState) Account(id types.AccountId) balance.Balance {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.balances.Get(id)
}

// Issued returns the total amount ever endowed
func (ls *LedgerState) Issued() types.Amount {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.issued
}

func (ls *LedgerState) Proposal(id types.ClubId, proposal types.ProposalId) (governance.Proposal, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.governance.Proposal(id, proposal)
}

func (ls *LedgerState) Proposals(id types.ClubId) ([]governance.Proposal, error) {
	ls.RLock()
	defer ls.RUnlock()
	if _, err := ls.data.clubs.Club(id); err != nil {
		return nil, err
	}
	return ls.data.governance.Proposals(id), nil
}

func (ls *LedgerState) Votes(id types.ClubId, proposal types.ProposalId) ([]governance.Vote, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.governance.Votes(id, proposal)
}

// Tally returns the current tally of a proposal with delegation resolved
func (ls *LedgerState) Tally(id types.ClubId, proposal types.ProposalId) (governance.Tally, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.governance.Tally(id, proposal, ls.data.clubs)
}

func (ls *LedgerState) Delegations(id types.ClubId) (map[types.AccountId]types.AccountId, error) {
	ls.RLock()
	defer ls.RUnlock()
	if _, err := ls.data.clubs.Club(id); err != nil {
		return nil, err
	}
	return ls.data.governance.Delegations(id), nil
}

func (ls *LedgerState) Cycle(id types.ClubId, cycle types.CycleId) (treasury.Cycle, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.treasury.Cycle(id, cycle)
}

func (ls *LedgerState) Cycles(id types.ClubId) ([]treasury.Cycle, error) {
	ls.RLock()
	defer ls.RUnlock()
	if _, err := ls.data.clubs.Club(id); err != nil {
		return nil, err
	}
	return ls.data.treasury.Cycles(id), nil
}

func (ls *LedgerState) ActiveCycle(id types.ClubId) (treasury.Cycle, bool) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.treasury.ActiveCycle(id)
}

func (ls *LedgerState) Contributions(id types.ClubId, cycle types.CycleId) ([]treasury.Contribution, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.treasury.Contributions(id, cycle)
}

func (ls *LedgerState) Entitlement(
	id types.ClubId,
	cycle types.CycleId,
	account types.AccountId,
) (treasury.Entitlement, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.treasury.Entitlement(id, cycle, account)
}

func (ls *LedgerState) Entitlements(id types.ClubId, cycle types.CycleId) ([]treasury.Entitlement, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.treasury.Entitlements(id, cycle)
}

// TreasuryBalance returns the club treasury balance, excluding payout pools
func (ls *LedgerState) TreasuryBalance(id types.ClubId) (types.Amount, error) {
	ls.RLock()
	defer ls.RUnlock()
	if _, err := ls.data.clubs.Club(id); err != nil {
		return 0, err
	}
	return ls.data.treasury.Balance(id), nil
}

func (ls *LedgerState) Withdrawal(id types.ClubId, withdrawal types.WithdrawalId) (treasury.Withdrawal, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.treasury.Withdrawal(id, withdrawal)
}

func (ls *LedgerState) Withdrawals(id types.ClubId) ([]treasury.Withdrawal, error) {
	ls.RLock()
	defer ls.RUnlock()
	if _, err := ls.data.clubs.Club(id); err != nil {
		return nil, err
	}
	return ls.data.treasury.Withdrawals(id), nil
}

func (ls *LedgerState) Dispute(id types.ClubId, dispute types.DisputeId) (disputes.Dispute, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.disputes.Dispute(id, dispute)
}

func (ls *LedgerState) Disputes(id types.ClubId) ([]disputes.Dispute, error) {
	ls.RLock()
	defer ls.RUnlock()
	if _, err := ls.data.clubs.Club(id); err != nil {
		return nil, err
	}
	return ls.data.disputes.Disputes(id), nil
}

func (ls *LedgerState) DisputeEvidence(id types.ClubId, dispute types.DisputeId) ([]disputes.Evidence, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.disputes.Evidence(id, dispute)
}

func (ls *LedgerState) DisputeVotes(id types.ClubId, dispute types.DisputeId) ([]disputes.Vote, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.data.disputes.Votes(id, dispute)
}

// Actions pages through the projected action log. It does not take the
// ledger lock.
func (ls *LedgerState) Actions(afterSeq uint64, limit int) ([]models.Action, error) {
	if ls.db == nil {
		return nil, ErrNoActionLog
	}
	return ls.db.Metadata().GetActions(afterSeq, limit, nil)
}
