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
	"encoding/json"

	"github.com/ikubchain/clubledger/database/types"
	"github.com/ikubchain/clubledger/treasury"
)

type Treasury struct {
	ClubId  uint64 `gorm:"primarykey;autoIncrement:false"`
	Balance types.Uint64
}

func (Treasury) TableName() string {
	return "treasury"
}

type Cycle struct {
	Status              string `gorm:"index"`
	ClubId              uint64 `gorm:"primarykey;autoIncrement:false"`
	CycleId             uint64 `gorm:"primarykey;autoIncrement:false"`
	StartBlock          uint64
	EndBlock            uint64
	ClosedAt            uint64
	DistributedAt       uint64
	MinimumContribution types.Uint64
	TotalContributions  types.Uint64
	Returns             types.Uint64
	Distributed         types.Uint64
	Residual            types.Uint64
	Claimed             types.Uint64
	Contributors        int
}

func (Cycle) TableName() string {
	return "cycle"
}

func CycleToModel(c treasury.Cycle) Cycle {
	return Cycle{
		ClubId:              uint64(c.ClubId),
		CycleId:             uint64(c.Id),
		Status:              c.Status.String(),
		StartBlock:          uint64(c.StartBlock),
		EndBlock:            uint64(c.EndBlock),
		ClosedAt:            uint64(c.ClosedAt),
		DistributedAt:       uint64(c.DistributedAt),
		MinimumContribution: types.Uint64(c.MinimumContribution),
		TotalContributions:  types.Uint64(c.TotalContributions),
		Returns:             types.Uint64(c.Returns),
		Distributed:         types.Uint64(c.Distributed),
		Residual:            types.Uint64(c.Residual),
		Claimed:             types.Uint64(c.Claimed),
		Contributors:        c.Contributors,
	}
}

// Contribution rows are append-only
type Contribution struct {
	Contributor   string `gorm:"index;size:64"`
	ClubId        uint64 `gorm:"primarykey;autoIncrement:false"`
	CycleId       uint64 `gorm:"primarykey;autoIncrement:false"`
	Seq           int    `gorm:"primarykey;autoIncrement:false"`
	Amount        types.Uint64
	ContributedAt uint64
}

func (Contribution) TableName() string {
	return "contribution"
}

func ContributionToModel(c treasury.Contribution) Contribution {
	return Contribution{
		ClubId:        uint64(c.ClubId),
		CycleId:       uint64(c.CycleId),
		Seq:           c.Seq,
		Contributor:   string(c.Contributor),
		Amount:        types.Uint64(c.Amount),
		ContributedAt: uint64(c.ContributedAt),
	}
}

type Entitlement struct {
	Account     string `gorm:"primarykey;size:64"`
	ClubId      uint64 `gorm:"primarykey;autoIncrement:false"`
	CycleId     uint64 `gorm:"primarykey;autoIncrement:false"`
	Contributed types.Uint64
	Amount      types.Uint64
	ClaimedAt   uint64
	Claimed     bool
}

func (Entitlement) TableName() string {
	return "entitlement"
}

func EntitlementToModel(e treasury.Entitlement) Entitlement {
	return Entitlement{
		ClubId:      uint64(e.ClubId),
		CycleId:     uint64(e.CycleId),
		Account:     string(e.Account),
		Contributed: types.Uint64(e.Contributed),
		Amount:      types.Uint64(e.Amount),
		Claimed:     e.Claimed,
		ClaimedAt:   uint64(e.ClaimedAt),
	}
}

type Withdrawal struct {
	Requester    string `gorm:"index;size:64"`
	Recipient    string `gorm:"size:64"`
	Status       string `gorm:"index"`
	// JSON array of signer accounts in signing order
	Signatures   string
	ClubId       uint64 `gorm:"primarykey;autoIncrement:false"`
	WithdrawalId uint64 `gorm:"primarykey;autoIncrement:false"`
	Amount       types.Uint64
	CreatedAt    uint64
	UnlockAt     uint64
	ExecutedAt   uint64
}

func (Withdrawal) TableName() string {
	return "withdrawal"
}

func WithdrawalToModel(w treasury.Withdrawal) Withdrawal {
	// A slice of strings always marshals
	signatures, _ := json.Marshal(w.Signatures)
	return Withdrawal{
		ClubId:       uint64(w.ClubId),
		WithdrawalId: uint64(w.Id),
		Requester:    string(w.Requester),
		Recipient:    string(w.Recipient),
		Status:       w.Status.String(),
		Signatures:   string(signatures),
		Amount:       types.Uint64(w.Amount),
		CreatedAt:    uint64(w.CreatedAt),
		UnlockAt:     uint64(w.UnlockAt),
		ExecutedAt:   uint64(w.ExecutedAt),
	}
}
