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

package disputes

import (
	"github.com/ikubchain/clubledger/types"
)

// Status is the stage of a dispute. Evidence is accepted while Open or
// InMediation, votes while Open or InArbitration.
type Status uint8

const (
	StatusOpen Status = iota
	StatusInMediation
	StatusInArbitration
	StatusResolved
	StatusClosed
)

var statusNames = []string{
	"Open",
	"InMediation",
	"InArbitration",
	"Resolved",
	"Closed",
}

func (s Status) String() string {
	return types.TagName(statusNames, "DisputeStatus", s)
}

func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

func (s Status) acceptsEvidence() bool {
	return s == StatusOpen || s == StatusInMediation
}

func (s Status) acceptsVotes() bool {
	return s == StatusOpen || s == StatusInArbitration
}

func (s Status) MarshalText() ([]byte, error) {
	return types.MarshalTag(statusNames, "dispute status", s)
}

func (s *Status) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(statusNames, "dispute status", data, s)
}

type VoteChoice uint8

const (
	ChoiceFavorInitiator VoteChoice = iota
	ChoiceFavorSubject
	ChoiceAbstain
)

var voteChoiceNames = []string{
	"FavorInitiator",
	"FavorSubject",
	"Abstain",
}

func (c VoteChoice) String() string {
	return types.TagName(voteChoiceNames, "DisputeVoteChoice", c)
}

func (c VoteChoice) Valid() bool {
	return int(c) < len(voteChoiceNames)
}

func (c VoteChoice) MarshalText() ([]byte, error) {
	return types.MarshalTag(voteChoiceNames, "dispute vote choice", c)
}

func (c *VoteChoice) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(voteChoiceNames, "dispute vote choice", data, c)
}

// Dispute is a complaint raised by one member against another. Winner is
// set only when the dispute is resolved by vote.
type Dispute struct {
	Id             types.DisputeId   `json:"id"`
	ClubId         types.ClubId      `json:"clubId"`
	Initiator      types.AccountId   `json:"initiator"`
	Subject        types.AccountId   `json:"subject"`
	Description    string            `json:"description"`
	Status         Status            `json:"status"`
	CreatedAt      types.BlockNumber `json:"createdAt"`
	ResolvedAt     types.BlockNumber `json:"resolvedAt,omitempty"`
	ClosedAt       types.BlockNumber `json:"closedAt,omitempty"`
	Winner         types.AccountId   `json:"winner,omitempty"`
	FavorInitiator int               `json:"favorInitiator"`
	FavorSubject   int               `json:"favorSubject"`
	Abstain        int               `json:"abstain"`
	EvidenceCount  int               `json:"evidenceCount"`
}

// Evidence is the single statement an account may attach to a dispute
type Evidence struct {
	ClubId      types.ClubId      `json:"clubId"`
	DisputeId   types.DisputeId   `json:"disputeId"`
	Submitter   types.AccountId   `json:"submitter"`
	Description string            `json:"description"`
	SubmittedAt types.BlockNumber `json:"submittedAt"`
}

type Vote struct {
	ClubId    types.ClubId      `json:"clubId"`
	DisputeId types.DisputeId   `json:"disputeId"`
	Voter     types.AccountId   `json:"voter"`
	Choice    VoteChoice        `json:"choice"`
	CastAt    types.BlockNumber `json:"castAt"`
}
