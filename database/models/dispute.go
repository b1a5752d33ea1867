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
	"github.com/ikubchain/clubledger/disputes"
)

type Dispute struct {
	Initiator      string `gorm:"index;size:64"`
	Subject        string `gorm:"index;size:64"`
	Winner         string `gorm:"size:64"`
	Description    string
	Status         string `gorm:"index"`
	ClubId         uint64 `gorm:"primarykey;autoIncrement:false"`
	DisputeId      uint64 `gorm:"primarykey;autoIncrement:false"`
	CreatedAt      uint64
	ResolvedAt     uint64
	ClosedAt       uint64
	FavorInitiator int
	FavorSubject   int
	Abstain        int
	EvidenceCount  int
}

func (Dispute) TableName() string {
	return "dispute"
}

func DisputeToModel(d disputes.Dispute) Dispute {
	return Dispute{
		ClubId:         uint64(d.ClubId),
		DisputeId:      uint64(d.Id),
		Initiator:      string(d.Initiator),
		Subject:        string(d.Subject),
		Winner:         string(d.Winner),
		Description:    d.Description,
		Status:         d.Status.String(),
		CreatedAt:      uint64(d.CreatedAt),
		ResolvedAt:     uint64(d.ResolvedAt),
		ClosedAt:       uint64(d.ClosedAt),
		FavorInitiator: d.FavorInitiator,
		FavorSubject:   d.FavorSubject,
		Abstain:        d.Abstain,
		EvidenceCount:  d.EvidenceCount,
	}
}

// DisputeEvidence rows are append-only
type DisputeEvidence struct {
	Submitter   string `gorm:"primarykey;size:64"`
	Description string
	ClubId      uint64 `gorm:"primarykey;autoIncrement:false"`
	DisputeId   uint64 `gorm:"primarykey;autoIncrement:false"`
	SubmittedAt uint64
}

func (DisputeEvidence) TableName() string {
	return "dispute_evidence"
}

func DisputeEvidenceToModel(e disputes.Evidence) DisputeEvidence {
	return DisputeEvidence{
		ClubId:      uint64(e.ClubId),
		DisputeId:   uint64(e.DisputeId),
		Submitter:   string(e.Submitter),
		Description: e.Description,
		SubmittedAt: uint64(e.SubmittedAt),
	}
}

type DisputeVote struct {
	Voter     string `gorm:"primarykey;size:64"`
	Choice    string
	ClubId    uint64 `gorm:"primarykey;autoIncrement:false"`
	DisputeId uint64 `gorm:"primarykey;autoIncrement:false"`
	CastAt    uint64
}

func (DisputeVote) TableName() string {
	return "dispute_vote"
}

func DisputeVoteToModel(v disputes.Vote) DisputeVote {
	return DisputeVote{
		ClubId:    uint64(v.ClubId),
		DisputeId: uint64(v.DisputeId),
		Voter:     string(v.Voter),
		Choice:    v.Choice.String(),
		CastAt:    uint64(v.CastAt),
	}
}
