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
package models

import (
	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/database/types"
)

type Club struct {
	Name        string
	Description string
	Creator     string `gorm:"index"`
	ClubId      uint64 `gorm:"primarykey;autoIncrement:false"`
	CreatedAt   uint64
	MemberCount int
	Active      bool
}

func (Club) TableName() string {
	return "club"
}

func ClubToModel(c club.Club) Club {
	return Club{
		ClubId:      uint64(c.Id),
		Name:        c.Name,
		Description: c.Description,
		Creator:     string(c.Creator),
		CreatedAt:   uint64(c.CreatedAt),
		MemberCount: c.MemberCount,
		Active:      c.Active,
	}
}

type Member struct {
	Account             string `gorm:"primarykey;size:64"`
	ClubId              uint64 `gorm:"primarykey;autoIncrement:false"`
	JoinedAt            uint64
	Reputation          uint64
	ContributionWeight  types.Uint64
	ContributionCount   uint64
	ProposalsEligible   uint64
	ProposalsVoted      uint64
	ProposalsResolved   uint64
	ProposalsPassed     uint64
	VotingParticipation uint8
	ProposalSuccessRate uint8
	Active              bool `gorm:"index"`
}

func (Member) TableName() string {
	return "member"
}

func MemberToModel(m club.Member) Member {
	return Member{
		ClubId:              uint64(m.ClubId),
		Account:             string(m.Account),
		JoinedAt:            uint64(m.JoinedAt),
		Active:              m.Active,
		Reputation:          m.Reputation,
		ContributionWeight:  types.Uint64(m.ContributionWeight),
		VotingParticipation: m.VotingParticipation,
		ProposalSuccessRate: m.ProposalSuccessRate,
		ContributionCount:   m.ContributionCount,
		ProposalsEligible:   m.ProposalsEligible,
		ProposalsVoted:      m.ProposalsVoted,
		ProposalsResolved:   m.ProposalsResolved,
		ProposalsPassed:     m.ProposalsPassed,
	}
}
