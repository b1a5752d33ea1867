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

package treasury

import (
	"cmp"
	"math/bits"
	"slices"

	"github.com/ikubchain/clubledger/types"
)

func (e *Engine) lookupWithdrawal(
	club types.ClubId,
	id types.WithdrawalId,
) (*clubTreasury, *Withdrawal, error) {
	if t, ok := e.clubs[club]; ok {
		if w, ok := t.withdrawals[id]; ok {
			return t, w, nil
		}
	}
	return nil, nil, types.NewDomainError(
		types.KindNotFound,
		"withdrawal %d does not exist in club %d",
		id,
		club,
	)
}

// RequestWithdrawal opens a withdrawal request signed by the requester. The
// funds stay in the treasury until execution.
func (e *Engine) RequestWithdrawal(
	club types.ClubId,
	requester types.AccountId,
	recipient types.AccountId,
	amount types.Amount,
	delay uint64,
	now types.BlockNumber,
) (Withdrawal, error) {
	if err := recipient.Validate(); err != nil {
		return Withdrawal{}, err
	}
	if err := types.RequirePositive("withdrawal", amount); err != nil {
		return Withdrawal{}, err
	}
	if balance := e.Balance(club); balance < amount {
		return Withdrawal{}, types.NewDomainError(
			types.KindInsufficientBalance,
			"treasury balance %s of club %d cannot cover %s",
			balance,
			club,
			amount,
		)
	}
	unlockAt, carry := bits.Add64(uint64(now), delay, 0)
	if carry != 0 {
		return Withdrawal{}, types.NewDomainError(types.KindInvalidParameters, "unlock block overflows")
	}
	t := e.treasuryFor(club)
	w := &Withdrawal{
		Id:         t.nextWithdrawal,
		ClubId:     club,
		Requester:  requester,
		Recipient:  recipient,
		Amount:     amount,
		CreatedAt:  now,
		UnlockAt:   types.BlockNumber(unlockAt),
		Status:     WithdrawalPending,
		Signatures: []types.AccountId{requester},
	}
	if len(w.Signatures) >= e.config.MinSignatures {
		w.Status = WithdrawalApproved
	}
	t.withdrawals[w.Id] = w
	t.nextWithdrawal++
	return cloneWithdrawal(w), nil
}

// ApproveWithdrawal adds a signature. The request becomes Approved once it
// carries MinSignatures distinct signers.
func (e *Engine) ApproveWithdrawal(
	club types.ClubId,
	id types.WithdrawalId,
	approver types.AccountId,
) (Withdrawal, error) {
	_, w, err := e.lookupWithdrawal(club, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if w.Status != WithdrawalPending {
		return Withdrawal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"withdrawal %d is %s, not Pending",
			id,
			w.Status,
		)
	}
	if slices.Contains(w.Signatures, approver) {
		return Withdrawal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"%s already signed withdrawal %d",
			approver,
			id,
		)
	}
	if len(w.Signatures) >= e.config.MaxSigners {
		return Withdrawal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"withdrawal %d already has %d signers",
			id,
			len(w.Signatures),
		)
	}
	w.Signatures = append(w.Signatures, approver)
	if len(w.Signatures) >= e.config.MinSignatures {
		w.Status = WithdrawalApproved
	}
	return cloneWithdrawal(w), nil
}

// ExecuteWithdrawal pays an approved request to its recipient once the unlock
// block is reached
func (e *Engine) ExecuteWithdrawal(
	club types.ClubId,
	id types.WithdrawalId,
	now types.BlockNumber,
	funds Funds,
) (Withdrawal, error) {
	t, w, err := e.lookupWithdrawal(club, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if w.Status != WithdrawalApproved {
		return Withdrawal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"withdrawal %d is %s, not Approved",
			id,
			w.Status,
		)
	}
	if now < w.UnlockAt {
		return Withdrawal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"withdrawal %d unlocks at block %d",
			id,
			w.UnlockAt,
		)
	}
	if t.balance < w.Amount {
		return Withdrawal{}, types.NewDomainError(
			types.KindInsufficientBalance,
			"treasury balance %s of club %d cannot cover %s",
			t.balance,
			club,
			w.Amount,
		)
	}
	if err := funds.CanCredit(w.Recipient, w.Amount); err != nil {
		return Withdrawal{}, err
	}
	if err := funds.Credit(w.Recipient, w.Amount); err != nil {
		return Withdrawal{}, err
	}
	t.balance -= w.Amount
	w.Status = WithdrawalExecuted
	w.ExecutedAt = now
	return cloneWithdrawal(w), nil
}

// CancelWithdrawal withdraws a request that has not been executed. Only the
// requester may cancel.
func (e *Engine) CancelWithdrawal(
	club types.ClubId,
	id types.WithdrawalId,
	caller types.AccountId,
) (Withdrawal, error) {
	_, w, err := e.lookupWithdrawal(club, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if w.Requester != caller {
		return Withdrawal{}, types.NewDomainError(
			types.KindUnauthorized,
			"only %s may cancel withdrawal %d",
			w.Requester,
			id,
		)
	}
	if w.Status != WithdrawalPending && w.Status != WithdrawalApproved {
		return Withdrawal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"withdrawal %d is %s",
			id,
			w.Status,
		)
	}
	w.Status = WithdrawalCancelled
	return cloneWithdrawal(w), nil
}

func (e *Engine) Withdrawal(club types.ClubId, id types.WithdrawalId) (Withdrawal, error) {
	_, w, err := e.lookupWithdrawal(club, id)
	if err != nil {
		return Withdrawal{}, err
	}
	return cloneWithdrawal(w), nil
}

func (e *Engine) Withdrawals(club types.ClubId) []Withdrawal {
	t, ok := e.clubs[club]
	if !ok {
		return []Withdrawal{}
	}
	ret := make([]Withdrawal, 0, len(t.withdrawals))
	for _, w := range t.withdrawals {
		ret = append(ret, cloneWithdrawal(w))
	}
	slices.SortFunc(ret, func(a, b Withdrawal) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return ret
}

func cloneWithdrawal(w *Withdrawal) Withdrawal {
	ret := *w
	ret.Signatures = slices.Clone(w.Signatures)
	return ret
}
