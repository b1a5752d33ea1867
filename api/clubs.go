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
	"net/http"
)

func (a *Api) handleAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := pathAccount(w, r)
	if !ok {
		return
	}
	bal := a.ledger.Account(account)
	writeJSON(w, http.StatusOK, BalanceResponse{
		Account:  account,
		Free:     bal.Free,
		Reserved: bal.Reserved,
	})
}

func (a *Api) handleEndow(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	account, ok := pathAccount(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bal, err := a.ledger.Endow(r.Context(), from, account, req.Amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		Account:  account,
		Free:     bal.Free,
		Reserved: bal.Reserved,
	})
}

func (a *Api) handleClubs(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	clubs := a.ledger.Clubs()
	SetPaginationHeaders(w, len(clubs), params)
	writeJSON(w, http.StatusOK, paginate(clubs, params))
}

func (a *Api) handleCreateClub(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateClubRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cl, err := a.ledger.CreateClub(r.Context(), account, req.Name, req.Description)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cl)
}

func (a *Api) handleClub(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	cl, err := a.ledger.Club(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (a *Api) handleJoinClub(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	m, err := a.ledger.JoinClub(r.Context(), account, id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *Api) handleLeaveClub(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	m, err := a.ledger.LeaveClub(r.Context(), account, id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *Api) handleDeactivateClub(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	cl, err := a.ledger.DeactivateClub(r.Context(), account, id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (a *Api) handleMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	members, err := a.ledger.Members(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(members), params)
	writeJSON(w, http.StatusOK, paginate(members, params))
}

func (a *Api) handleMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	account, ok := pathAccount(w, r)
	if !ok {
		return
	}
	m, err := a.ledger.Member(id, account)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *Api) handleDelegations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	delegations, err := a.ledger.Delegations(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, delegations)
}

func (a *Api) handleSetDelegate(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req DelegateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.ledger.SetDelegate(r.Context(), account, id, req.To); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) handleClearDelegate(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	if err := a.ledger.ClearDelegate(r.Context(), account, id); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
