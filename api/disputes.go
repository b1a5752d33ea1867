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
	"net/http"

	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/types"
)

func pathDispute(w http.ResponseWriter, r *http.Request) (types.ClubId, types.DisputeId, bool) {
	id, ok := pathClub(w, r)
	if !ok {
		return 0, 0, false
	}
	dispute, ok := pathUint64(w, r, "dispute")
	return id, types.DisputeId(dispute), ok
}

func (a *Api) handleDisputes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	list, err := a.ledger.Disputes(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(list), params)
	writeJSON(w, http.StatusOK, paginate(list, params))
}

func (a *Api) handleOpenDispute(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req OpenDisputeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := a.ledger.OpenDispute(r.Context(), account, id, req.Subject, req.Description)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (a *Api) handleDispute(w http.ResponseWriter, r *http.Request) {
	id, disputeId, ok := pathDispute(w, r)
	if !ok {
		return
	}
	d, err := a.ledger.Dispute(id, disputeId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *Api) handleDisputeEvidence(w http.ResponseWriter, r *http.Request) {
	id, disputeId, ok := pathDispute(w, r)
	if !ok {
		return
	}
	evidence, err := a.ledger.DisputeEvidence(id, disputeId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

func (a *Api) handleSubmitEvidence(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, disputeId, ok := pathDispute(w, r)
	if !ok {
		return
	}
	var req EvidenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev, err := a.ledger.SubmitEvidence(r.Context(), account, id, disputeId, req.Description)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (a *Api) handleDisputeVotes(w http.ResponseWriter, r *http.Request) {
	id, disputeId, ok := pathDispute(w, r)
	if !ok {
		return
	}
	votes, err := a.ledger.DisputeVotes(id, disputeId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (a *Api) handleVoteOnDispute(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, disputeId, ok := pathDispute(w, r)
	if !ok {
		return
	}
	var req DisputeVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Choice == nil {
		writeBadRequest(w, "choice is required")
		return
	}
	v, err := a.ledger.VoteOnDispute(r.Context(), account, id, disputeId, *req.Choice)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type disputeTransition func(
	ctx context.Context,
	caller types.AccountId,
	id types.ClubId,
	dispute types.DisputeId,
) (disputes.Dispute, error)

// handleDisputeTransition serves the body-less dispute state changes
func (a *Api) handleDisputeTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition disputeTransition,
) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, disputeId, ok := pathDispute(w, r)
	if !ok {
		return
	}
	d, err := transition(r.Context(), account, id, disputeId)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *Api) handleEscalateDispute(w http.ResponseWriter, r *http.Request) {
	a.handleDisputeTransition(w, r, a.ledger.EscalateDispute)
}

func (a *Api) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	a.handleDisputeTransition(w, r, a.ledger.ResolveDispute)
}

func (a *Api) handleCloseDispute(w http.ResponseWriter, r *http.Request) {
	a.handleDisputeTransition(w, r, a.ledger.CloseDispute)
}
