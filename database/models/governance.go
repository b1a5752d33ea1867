// Copyright 2025 Blink Labs Software
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
	"github.com/ikubchain/clubledger/database/types"
	"github.com/ikubchain/clubledger/governance"
)

type Proposal struct {
	Proposer          string `gorm:"index;size:64"`
	Type              string
	Mechanism         string
	Title             string
	Description       string
	Status            string `gorm:"index"`
	ConvictionVersion string
	TreasuryAction    string
	Enactment         string
	ClubId            uint64 `gorm:"primarykey;autoIncrement:false"`
	ProposalId        uint64 `gorm:"primarykey;autoIncrement:false"`
	Deposit           types.Uint64
	CreatedAt         uint64
	VotingEnd         uint64
	FinalizedAt       uint64
	Aye               types.Uint64
	Nay               types.Uint64
	Abstain           types.Uint64
	VoteCount         int
	Threshold         uint8
}

func (Proposal) TableName() string {
	return "proposal"
}

func ProposalToModel(p governance.Proposal) Proposal {
	ret := Proposal{
		ClubId:            uint64(p.ClubId),
		ProposalId:        uint64(p.Id),
		Proposer:          string(p.Proposer),
		Type:              p.Type.String(),
		Mechanism:         p.Mechanism.String(),
		Title:             p.Title,
		Description:       p.Description,
		Status:            p.Status.String(),
		ConvictionVersion: p.ConvictionVersion,
		Enactment:         p.Enactment,
		Deposit:           types.Uint64(p.Deposit),
		CreatedAt:         uint64(p.CreatedAt),
		VotingEnd:         uint64(p.VotingEnd),
		FinalizedAt:       uint64(p.FinalizedAt),
		Aye:               types.Uint64(p.Tally.Aye),
		Nay:               types.Uint64(p.Tally.Nay),
		Abstain:           types.Uint64(p.Tally.Abstain),
		VoteCount:         p.VoteCount,
		Threshold:         p.Threshold,
	}
	if p.TreasuryAction != nil {
		ret.TreasuryAction = p.TreasuryAction.Kind.String()
	}
	return ret
}

type Vote struct {
	Voter      string `gorm:"primarykey;size:64"`
	Choice     string
	ClubId     uint64 `gorm:"primarykey;autoIncrement:false"`
	ProposalId uint64 `gorm:"primarykey;autoIncrement:false"`
	Weight     types.Uint64
	Votes      uint64
	Cost       types.Uint64
	Stake      types.Uint64
	LockBlocks uint64
	UnlockAt   uint64
	CastAt     uint64
}

func (Vote) TableName() string {
	return "vote"
}

func VoteToModel(v governance.Vote) Vote {
	return Vote{
		ClubId:     uint64(v.ClubId),
		ProposalId: uint64(v.ProposalId),
		Voter:      string(v.Voter),
		Choice:     v.Choice.String(),
		Weight:     types.Uint64(v.Weight),
		Votes:      v.Votes,
		Cost:       types.Uint64(v.Cost),
		Stake:      types.Uint64(v.Stake),
		LockBlocks: v.LockBlocks,
		UnlockAt:   uint64(v.UnlockAt),
		CastAt:     uint64(v.CastAt),
	}
}

// Delegation rows are deleted when a member clears their delegate
type Delegation struct {
	Member   string `gorm:"primarykey;size:64"`
	Delegate string `gorm:"index;size:64"`
	ClubId   uint64 `gorm:"primarykey;autoIncrement:false"`
}

func (Delegation) TableName() string {
	return "delegation"
}
