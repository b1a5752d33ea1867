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

package treasury

import (
	"github.com/ikubchain/clubledger/types"
)

type CycleStatus uint8

const (
	CycleOpen CycleStatus = iota
	CycleClosed
	CycleDistributed
)

var cycleStatusNames = []string{
	"Open",
	"Closed",
	"Distributed",
}

func (s CycleStatus) String() string {
	return types.TagName(cycleStatusNames, "CycleStatus", s)
}

func (s CycleStatus) MarshalText() ([]byte, error) {
	return types.MarshalTag(cycleStatusNames, "cycle status", s)
}

func (s *CycleStatus) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(cycleStatusNames, "cycle status", data, s)
}

type WithdrawalStatus uint8

const (
	WithdrawalPending WithdrawalStatus = iota
	WithdrawalApproved
	WithdrawalExecuted
	WithdrawalCancelled
)

var withdrawalStatusNames = []string{
	"Pending",
	"Approved",
	"Executed",
	"Cancelled",
}

func (s WithdrawalStatus) String() string {
	return types.TagName(withdrawalStatusNames, "WithdrawalStatus", s)
}

func (s WithdrawalStatus) MarshalText() ([]byte, error) {
	return types.MarshalTag(withdrawalStatusNames, "withdrawal status", s)
}

func (s *WithdrawalStatus) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(withdrawalStatusNames, "withdrawal status", data, s)
}

// Cycle is a contribution window. Returns, Distributed and Residual are set
// once when the cycle is distributed; Distributed is the sum of all fixed
// entitlements and Residual the rounding remainder kept by the treasury.
type Cycle struct {
	Id                  types.CycleId     `json:"id"`
	ClubId              types.ClubId      `json:"clubId"`
	StartBlock          types.BlockNumber `json:"startBlock"`
	EndBlock            types.BlockNumber `json:"endBlock"`
	MinimumContribution types.Amount      `json:"minimumContribution"`
	TotalContributions  types.Amount      `json:"totalContributions"`
	Contributors        int               `json:"contributors"`
	Status              CycleStatus       `json:"status"`
	ClosedAt            types.BlockNumber `json:"closedAt,omitempty"`
	Returns             types.Amount      `json:"returns"`
	Distributed         types.Amount      `json:"distributed"`
	Residual            types.Amount      `json:"residual"`
	Claimed             types.Amount      `json:"claimed"`
	DistributedAt       types.BlockNumber `json:"distributedAt,omitempty"`
}

// Contribution is an immutable deposit into a cycle
type Contribution struct {
	ClubId        types.ClubId      `json:"clubId"`
	CycleId       types.CycleId     `json:"cycleId"`
	Seq           int               `json:"seq"`
	Contributor   types.AccountId   `json:"contributor"`
	Amount        types.Amount      `json:"amount"`
	ContributedAt types.BlockNumber `json:"contributedAt"`
}

// Entitlement is the fixed share of a member in a distributed cycle together
// with its claim record
type Entitlement struct {
	ClubId      types.ClubId      `json:"clubId"`
	CycleId     types.CycleId     `json:"cycleId"`
	Account     types.AccountId   `json:"account"`
	Contributed types.Amount      `json:"contributed"`
	Amount      types.Amount      `json:"amount"`
	Claimed     bool              `json:"claimed"`
	ClaimedAt   types.BlockNumber `json:"claimedAt,omitempty"`
}

// Withdrawal is a multi-signature request to pay out of the club treasury
type Withdrawal struct {
	Id         types.WithdrawalId `json:"id"`
	ClubId     types.ClubId       `json:"clubId"`
	Requester  types.AccountId    `json:"requester"`
	Recipient  types.AccountId    `json:"recipient"`
	Amount     types.Amount       `json:"amount"`
	CreatedAt  types.BlockNumber  `json:"createdAt"`
	UnlockAt   types.BlockNumber  `json:"unlockAt"`
	Status     WithdrawalStatus   `json:"status"`
	Signatures []types.AccountId  `json:"signatures"`
	ExecutedAt types.BlockNumber  `json:"executedAt,omitempty"`
}
