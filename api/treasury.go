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
	"fmt"
	"net/http"

	"github.com/ikubchain/clubledger/types"
)

func pathCycle(w http.ResponseWriter, r *http.Request) (types.ClubId, types.CycleId, bool) {
	id, ok := pathClub(w, r)
	if !ok {
		return 0, 0, false
	}
	cycle, ok := pathUint64(w, r, "cycle")
	return id, types.CycleId(cycle), ok
}

func pathWithdrawal(w http.ResponseWriter, r *http.Request) (types.ClubId, types.WithdrawalId, bool) {
	id, ok := pathClub(w, r)
	if !ok {
		return 0, 0, false
	}
	withdrawal, ok := pathUint64(w, r, "withdrawal")
	return id, types.WithdrawalId(withdrawal), ok
}

func (a *Api) handleTreasury(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	bal, err := a.ledger.TreasuryBalance(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TreasuryResponse{ClubId: id, Balance: bal})
}

func (a *Api) handleDepositTreasury(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bal, err := a.ledger.DepositTreasury(r.Context(), account, id, req.Amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TreasuryResponse{ClubId: id, Balance: bal})
}

func (a *Api) handleCycles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	cycles, err := a.ledger.Cycles(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(cycles), params)
	writeJSON(w, http.StatusOK, paginate(cycles, params))
}

func (a *Api) handleOpenCycle(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req OpenCycleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cycle, err := a.ledger.OpenContributionCycle(
		r.Context(),
		account,
		id,
		req.Period,
		req.MinimumContribution,
	)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cycle)
}

func (a *Api) handleActiveCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	if _, err := a.ledger.Club(id); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	cycle, ok := a.ledger.ActiveCycle(id)
	if !ok {
		writeError(
			w,
			http.StatusNotFound,
			string(types.KindNotFound),
			fmt.Sprintf("club %d has no open cycle", id),
		)
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

func (a *Api) handleCloseCycle(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	cycle, err := a.ledger.CloseCycle(r.Context(), account, id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

func (a *Api) handleContribute(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	contribution, err := a.ledger.Contribute(r.Context(), account, id, req.Amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contribution)
}

func (a *Api) handleCycle(w http.ResponseWriter, r *http.Request) {
	id, cycleId, ok := pathCycle(w, r)
	if !ok {
		return
	}
	cycle, err := a.ledger.Cycle(id, cycleId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

func (a *Api) handleContributions(w http.ResponseWriter, r *http.Request) {
	id, cycleId, ok := pathCycle(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	contributions, err := a.ledger.Contributions(id, cycleId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(contributions), params)
	writeJSON(w, http.StatusOK, paginate(contributions, params))
}

func (a *Api) handleDistributeReturns(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, cycleId, ok := pathCycle(w, r)
	if !ok {
		return
	}
	var req DistributeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cycle, err := a.ledger.DistributeReturns(r.Context(), account, id, cycleId, req.Returns)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

func (a *Api) handleClaimReturns(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, cycleId, ok := pathCycle(w, r)
	if !ok {
		return
	}
	ent, err := a.ledger.ClaimReturns(r.Context(), account, id, cycleId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

func (a *Api) handleEntitlements(w http.ResponseWriter, r *http.Request) {
	id, cycleId, ok := pathCycle(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	ents, err := a.ledger.Entitlements(id, cycleId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(ents), params)
	writeJSON(w, http.StatusOK, paginate(ents, params))
}

func (a *Api) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	id, cycleId, ok := pathCycle(w, r)
	if !ok {
		return
	}
	account, ok := pathAccount(w, r)
	if !ok {
		return
	}
	ent, err := a.ledger.Entitlement(id, cycleId, account)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

func (a *Api) handleWithdrawals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	withdrawals, err := a.ledger.Withdrawals(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(withdrawals), params)
	writeJSON(w, http.StatusOK, paginate(withdrawals, params))
}

func (a *Api) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req WithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	withdrawal, err := a.ledger.RequestWithdrawal(
		r.Context(),
		account,
		id,
		req.Recipient,
		req.Amount,
		req.Delay,
	)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, withdrawal)
}

func (a *Api) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, withdrawalId, ok := pathWithdrawal(w, r)
	if !ok {
		return
	}
	withdrawal, err := a.ledger.Withdrawal(id, withdrawalId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawal)
}

func (a *Api) handleApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, withdrawalId, ok := pathWithdrawal(w, r)
	if !ok {
		return
	}
	withdrawal, err := a.ledger.ApproveWithdrawal(r.Context(), account, id, withdrawalId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawal)
}

func (a *Api) handleExecuteWithdrawal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, withdrawalId, ok := pathWithdrawal(w, r)
	if !ok {
		return
	}
	withdrawal, err := a.ledger.ExecuteWithdrawal(r.Context(), account, id, withdrawalId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawal)
}

func (a *Api) handleCancelWithdrawal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, withdrawalId, ok := pathWithdrawal(w, r)
	if !ok {
		return
	}
	withdrawal, err := a.ledger.CancelWithdrawal(r.Context(), account, id, withdrawalId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawal)
}
