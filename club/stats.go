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

package club

import (
	"github.com/ikubchain/clubledger/types"
)

const (
	reputationPerContribution = 5
	maxContributionReputation = 100
)

// RecordContribution updates the contribution stats of a member. Unknown
// members are ignored.
func (r *Registry) RecordContribution(
	id types.ClubId,
	account types.AccountId,
	amount types.Amount,
) []types.AccountId {
	entry, ok := r.clubs[id]
	if !ok {
		return nil
	}
	m, ok := entry.members[account]
	if !ok {
		return nil
	}
	m.ContributionCount++
	m.ContributionWeight = m.ContributionWeight.SaturatingAdd(amount)
	recompute(m)
	return []types.AccountId{account}
}

// RecordProposalResolved updates participation for every active member that
// was present when the proposal was created and the success rate of the
// proposer. It returns the accounts whose profiles changed.
func (r *Registry) RecordProposalResolved(
	id types.ClubId,
	proposer types.AccountId,
	createdAt types.BlockNumber,
	passed bool,
	voters map[types.AccountId]bool,
) []types.AccountId {
	entry, ok := r.clubs[id]
	if !ok {
		return nil
	}
	var changed []types.AccountId
	for _, account := range r.ActiveMembers(id) {
		m := entry.members[account]
		if m.JoinedAt > createdAt && !voters[account] {
			continue
		}
		m.ProposalsEligible++
		if voters[account] {
			m.ProposalsVoted++
		}
		if account == proposer {
			m.ProposalsResolved++
			if passed {
				m.ProposalsPassed++
			}
		}
		recompute(m)
		changed = append(changed, account)
	}
	if m, ok := entry.members[proposer]; ok && !m.Active {
		m.ProposalsResolved++
		if passed {
			m.ProposalsPassed++
		}
		recompute(m)
		changed = append(changed, proposer)
	}
	return changed
}

// recompute derives the percentage fields and reputation from the counters
func recompute(m *Member) {
	m.VotingParticipation = percent(m.ProposalsVoted, m.ProposalsEligible)
	m.ProposalSuccessRate = percent(m.ProposalsPassed, m.ProposalsResolved)
	contribution := min(
		m.ContributionCount,
		maxContributionReputation/reputationPerContribution,
	) * reputationPerContribution
	m.Reputation = uint64(m.VotingParticipation) +
		uint64(m.ProposalSuccessRate) +
		contribution
}

func percent(part, whole uint64) uint8 {
	if whole == 0 {
		return 0
	}
	if part >= whole {
		return 100
	}
	q, err := types.MulDiv(part, 100, whole)
	if err != nil {
		return 0
	}
	return uint8(q) //nolint:gosec // q < 100
}
