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
	"cmp"
	"slices"
	"strings"

	"github.com/ikubchain/clubledger/types"
)

const (
	DefaultMaxMembersPerClub = 1000
	MaxNameLength            = 128
	MaxDescriptionLength     = 1024
)

type Config struct {
	MaxMembersPerClub int
}

type Club struct {
	Id          types.ClubId      `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Creator     types.AccountId   `json:"creator"`
	CreatedAt   types.BlockNumber `json:"createdAt"`
	Active      bool              `json:"active"`
	MemberCount int               `json:"memberCount"`
}

type Member struct {
	ClubId              types.ClubId      `json:"clubId"`
	Account             types.AccountId   `json:"account"`
	JoinedAt            types.BlockNumber `json:"joinedAt"`
	Active              bool              `json:"active"`
	Reputation          uint64            `json:"reputation"`
	ContributionWeight  types.Amount      `json:"contributionWeight"`
	VotingParticipation uint8             `json:"votingParticipation"`
	ProposalSuccessRate uint8             `json:"proposalSuccessRate"`
	ContributionCount   uint64            `json:"contributionCount"`
	ProposalsEligible   uint64            `json:"proposalsEligible"`
	ProposalsVoted      uint64            `json:"proposalsVoted"`
	ProposalsResolved   uint64            `json:"proposalsResolved"`
	ProposalsPassed     uint64            `json:"proposalsPassed"`
}

type clubEntry struct {
	club    Club
	members map[types.AccountId]*Member
}

// Registry holds clubs and their member profiles. It is not safe for
// concurrent use.
type Registry struct {
	config Config
	nextId types.ClubId
	clubs  map[types.ClubId]*clubEntry
}

func NewRegistry(cfg Config) *Registry {
	if cfg.MaxMembersPerClub <= 0 {
		cfg.MaxMembersPerClub = DefaultMaxMembersPerClub
	}
	return &Registry{
		config: cfg,
		nextId: 1,
		clubs:  make(map[types.ClubId]*clubEntry),
	}
}

// ValidateCreate checks club creation parameters without changing state
func (r *Registry) ValidateCreate(
	creator types.AccountId,
	name string,
	description string,
) error {
	if err := creator.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return types.NewDomainError(types.KindInvalidParameters, "club name must not be empty")
	}
	if len(name) > MaxNameLength {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"club name exceeds %d bytes",
			MaxNameLength,
		)
	}
	if len(description) > MaxDescriptionLength {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"club description exceeds %d bytes",
			MaxDescriptionLength,
		)
	}
	return nil
}

// Create registers a new club with the creator as its first member
func (r *Registry) Create(
	creator types.AccountId,
	name string,
	description string,
	now types.BlockNumber,
) (Club, error) {
	if err := r.ValidateCreate(creator, name, description); err != nil {
		return Club{}, err
	}
	id := r.nextId
	r.nextId++
	entry := &clubEntry{
		club: Club{
			Id:          id,
			Name:        name,
			Description: description,
			Creator:     creator,
			CreatedAt:   now,
			Active:      true,
			MemberCount: 1,
		},
		members: map[types.AccountId]*Member{
			creator: {
				ClubId:   id,
				Account:  creator,
				JoinedAt: now,
				Active:   true,
			},
		},
	}
	r.clubs[id] = entry
	return entry.club, nil
}

func (r *Registry) lookup(id types.ClubId) (*clubEntry, error) {
	entry, ok := r.clubs[id]
	if !ok {
		return nil, types.NewDomainError(types.KindNotFound, "club %d does not exist", id)
	}
	return entry, nil
}

// RequireActive fails unless the club exists and is active
func (r *Registry) RequireActive(id types.ClubId) error {
	entry, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !entry.club.Active {
		return types.NewDomainError(types.KindClubInactive, "club %d is inactive", id)
	}
	return nil
}

// RequireMember fails unless the account is an active member of an active club
func (r *Registry) RequireMember(id types.ClubId, account types.AccountId) error {
	if err := r.RequireActive(id); err != nil {
		return err
	}
	if !r.IsActiveMember(id, account) {
		return types.NewDomainError(
			types.KindNotAMember,
			"%s is not an active member of club %d",
			account,
			id,
		)
	}
	return nil
}

func (r *Registry) Join(
	id types.ClubId,
	account types.AccountId,
	now types.BlockNumber,
) (Member, error) {
	if err := account.Validate(); err != nil {
		return Member{}, err
	}
	if err := r.RequireActive(id); err != nil {
		return Member{}, err
	}
	entry := r.clubs[id]
	m, ok := entry.members[account]
	if ok && m.Active {
		return Member{}, types.NewDomainError(
			types.KindInvalidParameters,
			"%s is already a member of club %d",
			account,
			id,
		)
	}
	if entry.club.MemberCount >= r.config.MaxMembersPerClub {
		return Member{}, types.NewDomainError(
			types.KindInvalidParameters,
			"club %d has reached %d members",
			id,
			r.config.MaxMembersPerClub,
		)
	}
	if ok {
		// Returning members keep their history
		m.Active = true
		m.JoinedAt = now
	} else {
		m = &Member{
			ClubId:   id,
			Account:  account,
			JoinedAt: now,
			Active:   true,
		}
		entry.members[account] = m
	}
	entry.club.MemberCount++
	return *m, nil
}

func (r *Registry) Leave(id types.ClubId, account types.AccountId) (Member, error) {
	entry, err := r.lookup(id)
	if err != nil {
		return Member{}, err
	}
	m, ok := entry.members[account]
	if !ok || !m.Active {
		return Member{}, types.NewDomainError(
			types.KindNotAMember,
			"%s is not an active member of club %d",
			account,
			id,
		)
	}
	m.Active = false
	entry.club.MemberCount--
	return *m, nil
}

// Deactivate closes a club to new activity. Only the creator may do this.
func (r *Registry) Deactivate(id types.ClubId, caller types.AccountId) (Club, error) {
	if err := r.RequireActive(id); err != nil {
		return Club{}, err
	}
	entry := r.clubs[id]
	if entry.club.Creator != caller {
		return Club{}, types.NewDomainError(
			types.KindUnauthorized,
			"only the creator of club %d may deactivate it",
			id,
		)
	}
	entry.club.Active = false
	return entry.club, nil
}

func (r *Registry) Club(id types.ClubId) (Club, error) {
	entry, err := r.lookup(id)
	if err != nil {
		return Club{}, err
	}
	return entry.club, nil
}

// Clubs returns every club ordered by id
func (r *Registry) Clubs() []Club {
	ret := make([]Club, 0, len(r.clubs))
	for _, entry := range r.clubs {
		ret = append(ret, entry.club)
	}
	slices.SortFunc(ret, func(a, b Club) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return ret
}

func (r *Registry) Member(id types.ClubId, account types.AccountId) (Member, error) {
	entry, err := r.lookup(id)
	if err != nil {
		return Member{}, err
	}
	m, ok := entry.members[account]
	if !ok {
		return Member{}, types.NewDomainError(
			types.KindNotFound,
			"%s has never joined club %d",
			account,
			id,
		)
	}
	return *m, nil
}

// Members returns every member profile of a club, including inactive ones,
// ordered by account
func (r *Registry) Members(id types.ClubId) ([]Member, error) {
	entry, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	ret := make([]Member, 0, len(entry.members))
	for _, m := range entry.members {
		ret = append(ret, *m)
	}
	slices.SortFunc(ret, func(a, b Member) int {
		return strings.Compare(string(a.Account), string(b.Account))
	})
	return ret, nil
}

func (r *Registry) IsActiveMember(id types.ClubId, account types.AccountId) bool {
	entry, ok := r.clubs[id]
	if !ok {
		return false
	}
	m, ok := entry.members[account]
	return ok && m.Active
}

// ActiveMembers returns the active member accounts of a club in sorted order
func (r *Registry) ActiveMembers(id types.ClubId) []types.AccountId {
	entry, ok := r.clubs[id]
	if !ok {
		return nil
	}
	ret := make([]types.AccountId, 0, len(entry.members))
	for account, m := range entry.members {
		if m.Active {
			ret = append(ret, account)
		}
	}
	slices.Sort(ret)
	return ret
}
