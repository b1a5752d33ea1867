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

	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/types"
)

func pathProposal(w http.ResponseWriter, r *http.Request) (types.ClubId, types.ProposalId, bool) {
	id, ok := pathClub(w, r)
	if !ok {
		return 0, 0, false
	}
	proposal, ok := pathUint64(w, r, "proposal")
	return id, types.ProposalId(proposal), ok
}

func (a *Api) handleProposals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	proposals, err := a.ledger.Proposals(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(proposals), params)
	writeJSON(w, http.StatusOK, paginate(proposals, params))
}

func (a *Api) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathClub(w, r)
	if !ok {
		return
	}
	var req CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == nil || req.Mechanism == nil {
		writeBadRequest(w, "type and mechanism are required")
		return
	}
	prop, err := a.ledger.CreateProposal(r.Context(), account, id, governance.CreateRequest{
		Type:           *req.Type,
		Mechanism:      *req.Mechanism,
		Title:          req.Title,
		Description:    req.Description,
		Threshold:      req.Threshold,
		Duration:       req.Duration,
		TreasuryAction: req.TreasuryAction,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, prop)
}

func (a *Api) handleProposal(w http.ResponseWriter, r *http.Request) {
	id, proposal, ok := pathProposal(w, r)
	if !ok {
		return
	}
	prop, err := a.ledger.Proposal(id, proposal)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

func (a *Api) handleVotes(w http.ResponseWriter, r *http.Request) {
	id, proposal, ok := pathProposal(w, r)
	if !ok {
		return
	}
	votes, err := a.ledger.Votes(id, proposal)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (a *Api) handleVote(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, proposal, ok := pathProposal(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Choice == nil {
		writeBadRequest(w, "choice is required")
		return
	}
	v, err := a.ledger.Vote(r.Context(), account, id, proposal, governance.VoteRequest{
		Choice:     *req.Choice,
		Votes:      req.Votes,
		Stake:      req.Stake,
		LockBlocks: req.LockBlocks,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *Api) handleTally(w http.ResponseWriter, r *http.Request) {
	id, proposal, ok := pathProposal(w, r)
	if !ok {
		return
	}
	prop, err := a.ledger.Proposal(id, proposal)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	tally, err := a.ledger.Tally(id, proposal)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tallyResponse(tally, prop.Threshold))
}

func (a *Api) handleCancelProposal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, proposal, ok := pathProposal(w, r)
	if !ok {
		return
	}
	prop, err := a.ledger.CancelProposal(r.Context(), account, id, proposal)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

func (a *Api) handleFinalizeProposal(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	id, proposal, ok := pathProposal(w, r)
	if !ok {
		return
	}
	prop, err := a.ledger.FinalizeProposal(r.Context(), account, id, proposal)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}
