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
	"github.com/ikubchain/clubledger/database/models"
	dbtypes "github.com/ikubchain/clubledger/database/types"
	"github.com/ikubchain/clubledger/types"
)

type memberKey struct {
	club    types.ClubId
	account types.AccountId
}

type proposalKey struct {
	club types.ClubId
	id   types.ProposalId
}

type voteKey struct {
	proposalKey
	voter types.AccountId
}

type cycleKey struct {
	club types.ClubId
	id   types.CycleId
}

type entitlementKey struct {
	cycleKey
	account types.AccountId
}

type withdrawalKey struct {
	club types.ClubId
	id   types.WithdrawalId
}

type disputeKey struct {
	club types.ClubId
	id   types.DisputeId
}

// dirtySet collects the entities an action touched. The rows are read from
// the final state when the projection is built, so marking twice is harmless.
type dirtySet struct {
	accounts      map[types.AccountId]struct{}
	clubs         map[types.ClubId]struct{}
	members       map[memberKey]struct{}
	proposals     map[proposalKey]struct{}
	votes         map[voteKey]struct{}
	delegations   map[memberKey]struct{}
	treasuries    map[types.ClubId]struct{}
	cycles        map[cycleKey]struct{}
	entitlements  map[entitlementKey]struct{}
	withdrawals   map[withdrawalKey]struct{}
	disputes      map[disputeKey]struct{}
	contributions []*models.Contribution
	evidence      []*models.DisputeEvidence
	disputeVotes  []*models.DisputeVote
}

func newDirtySet() *dirtySet {
	return &dirtySet{
		accounts:     make(map[types.AccountId]struct{}),
		clubs:        make(map[types.ClubId]struct{}),
		members:      make(map[memberKey]struct{}),
		proposals:    make(map[proposalKey]struct{}),
		votes:        make(map[voteKey]struct{}),
		delegations:  make(map[memberKey]struct{}),
		treasuries:   make(map[types.ClubId]struct{}),
		cycles:       make(map[cycleKey]struct{}),
		entitlements: make(map[entitlementKey]struct{}),
		withdrawals:  make(map[withdrawalKey]struct{}),
		disputes:     make(map[disputeKey]struct{}),
	}
}

func (d *dirtySet) account(ids ...types.AccountId) {
	for _, id := range ids {
		d.accounts[id] = struct{}{}
	}
}

func (d *dirtySet) club(id types.ClubId) {
	d.clubs[id] = struct{}{}
}

func (d *dirtySet) member(club types.ClubId, accounts ...types.AccountId) {
	for _, account := range accounts {
		d.members[memberKey{club: club, account: account}] = struct{}{}
	}
}

func (d *dirtySet) proposal(club types.ClubId, id types.ProposalId) {
	d.proposals[proposalKey{club: club, id: id}] = struct{}{}
}

func (d *dirtySet) vote(club types.ClubId, id types.ProposalId, voter types.AccountId) {
	d.votes[voteKey{proposalKey: proposalKey{club: club, id: id}, voter: voter}] = struct{}{}
}

func (d *dirtySet) delegation(club types.ClubId, member types.AccountId) {
	d.delegations[memberKey{club: club, account: member}] = struct{}{}
}

func (d *dirtySet) treasury(club types.ClubId) {
	d.treasuries[club] = struct{}{}
}

func (d *dirtySet) cycle(club types.ClubId, id types.CycleId) {
	d.cycles[cycleKey{club: club, id: id}] = struct{}{}
}

func (d *dirtySet) entitlement(club types.ClubId, id types.CycleId, account types.AccountId) {
	d.entitlements[entitlementKey{
		cycleKey: cycleKey{club: club, id: id},
		account:  account,
	}] = struct{}{}
}

func (d *dirtySet) withdrawal(club types.ClubId, id types.WithdrawalId) {
	d.withdrawals[withdrawalKey{club: club, id: id}] = struct{}{}
}

func (d *dirtySet) dispute(club types.ClubId, id types.DisputeId) {
	d.disputes[disputeKey{club: club, id: id}] = struct{}{}
}

// projection reads every marked entity from the state and returns the row
// changes for the metadata store
func (d *dirtySet) projection(data *ledgerData) (models.Projection, error) {
	var ret models.Projection
	for id := range d.accounts {
		row := models.AccountToModel(id, data.balances.Get(id))
		ret.Upsert(&row)
	}
	for id := range d.clubs {
		c, err := data.clubs.Club(id)
		if err != nil {
			return ret, types.NewInvariantError("projecting club %d: %s", id, err)
		}
		row := models.ClubToModel(c)
		ret.Upsert(&row)
	}
	for key := range d.members {
		m, err := data.clubs.Member(key.club, key.account)
		if err != nil {
			return ret, types.NewInvariantError(
				"projecting member %s of club %d: %s",
				key.account,
				key.club,
				err,
			)
		}
		row := models.MemberToModel(m)
		ret.Upsert(&row)
	}
	for key := range d.proposals {
		p, err := data.governance.Proposal(key.club, key.id)
		if err != nil {
			return ret, types.NewInvariantError(
				"projecting proposal %d of club %d: %s",
				key.id,
				key.club,
				err,
			)
		}
		row := models.ProposalToModel(p)
		ret.Upsert(&row)
	}
	if len(d.votes) > 0 {
		if err := d.projectVotes(data, &ret); err != nil {
			return ret, err
		}
	}
	for key := range d.delegations {
		row := models.Delegation{
			ClubId: uint64(key.club),
			Member: string(key.account),
		}
		if to, ok := data.governance.Delegate(key.club, key.account); ok {
			row.Delegate = string(to)
			ret.Upsert(&row)
		} else {
			ret.Delete(&row)
		}
	}
	for id := range d.treasuries {
		ret.Upsert(&models.Treasury{
			ClubId:  uint64(id),
			Balance: dbtypes.Uint64(data.treasury.Balance(id)),
		})
	}
	for key := range d.cycles {
		c, err := data.treasury.Cycle(key.club, key.id)
		if err != nil {
			return ret, types.NewInvariantError(
				"projecting cycle %d of club %d: %s",
				key.id,
				key.club,
				err,
			)
		}
		row := models.CycleToModel(c)
		ret.Upsert(&row)
	}
	for _, row := range d.contributions {
		ret.Upsert(row)
	}
	for key := range d.entitlements {
		ent, err := data.treasury.Entitlement(key.club, key.id, key.account)
		if err != nil {
			return ret, types.NewInvariantError(
				"projecting entitlement of %s in cycle %d: %s",
				key.account,
				key.id,
				err,
			)
		}
		row := models.EntitlementToModel(ent)
		ret.Upsert(&row)
	}
	for key := range d.withdrawals {
		w, err := data.treasury.Withdrawal(key.club, key.id)
		if err != nil {
			return ret, types.NewInvariantError(
				"projecting withdrawal %d of club %d: %s",
				key.id,
				key.club,
				err,
			)
		}
		row := models.WithdrawalToModel(w)
		ret.Upsert(&row)
	}
	for key := range d.disputes {
		dispute, err := data.disputes.Dispute(key.club, key.id)
		if err != nil {
			return ret, types.NewInvariantError(
				"projecting dispute %d of club %d: %s",
				key.id,
				key.club,
				err,
			)
		}
		row := models.DisputeToModel(dispute)
		ret.Upsert(&row)
	}
	for _, row := range d.evidence {
		ret.Upsert(row)
	}
	for _, row := range d.disputeVotes {
		ret.Upsert(row)
	}
	return ret, nil
}

func (d *dirtySet) projectVotes(data *ledgerData, ret *models.Projection) error {
	byProposal := make(map[proposalKey][]types.AccountId)
	for key := range d.votes {
		byProposal[key.proposalKey] = append(byProposal[key.proposalKey], key.voter)
	}
	for key, voters := range byProposal {
		votes, err := data.governance.Votes(key.club, key.id)
		if err != nil {
			return types.NewInvariantError(
				"projecting votes of proposal %d: %s",
				key.id,
				err,
			)
		}
		for _, v := range votes {
			for _, voter := range voters {
				if v.Voter == voter {
					row := models.VoteToModel(v)
					ret.Upsert(&row)
					break
				}
			}
		}
	}
	return nil
}

// fullProjection marks every entity in the state, for rebuilding the
// metadata store from scratch
func fullProjection(data *ledgerData) (models.Projection, error) {
	d := newDirtySet()
	d.account(data.balances.Accounts()...)
	for _, c := range data.clubs.Clubs() {
		d.club(c.Id)
		members, err := data.clubs.Members(c.Id)
		if err != nil {
			return models.Projection{}, err
		}
		for _, m := range members {
			d.member(c.Id, m.Account)
		}
		for _, p := range data.governance.Proposals(c.Id) {
			d.proposal(c.Id, p.Id)
			votes, err := data.governance.Votes(c.Id, p.Id)
			if err != nil {
				return models.Projection{}, err
			}
			for _, v := range votes {
				d.vote(c.Id, p.Id, v.Voter)
			}
		}
		for member := range data.governance.Delegations(c.Id) {
			d.delegation(c.Id, member)
		}
		d.treasury(c.Id)
		for _, cycle := range data.treasury.Cycles(c.Id) {
			d.cycle(c.Id, cycle.Id)
			contributions, err := data.treasury.Contributions(c.Id, cycle.Id)
			if err != nil {
				return models.Projection{}, err
			}
			for _, contribution := range contributions {
				row := models.ContributionToModel(contribution)
				d.contributions = append(d.contributions, &row)
			}
			ents, err := data.treasury.Entitlements(c.Id, cycle.Id)
			if err != nil {
				return models.Projection{}, err
			}
			for _, ent := range ents {
				d.entitlement(c.Id, cycle.Id, ent.Account)
			}
		}
		for _, w := range data.treasury.Withdrawals(c.Id) {
			d.withdrawal(c.Id, w.Id)
		}
		for _, dispute := range data.disputes.Disputes(c.Id) {
			d.dispute(c.Id, dispute.Id)
			evidence, err := data.disputes.Evidence(c.Id, dispute.Id)
			if err != nil {
				return models.Projection{}, err
			}
			for _, ev := range evidence {
				row := models.DisputeEvidenceToModel(ev)
				d.evidence = append(d.evidence, &row)
			}
			votes, err := data.disputes.Votes(c.Id, dispute.Id)
			if err != nil {
				return models.Projection{}, err
			}
			for _, v := range votes {
				row := models.DisputeVoteToModel(v)
				d.disputeVotes = append(d.disputeVotes, &row)
			}
		}
	}
	return d.projection(data)
}
