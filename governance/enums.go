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

package governance

import (
	"github.com/ikubchain/clubledger/types"
)

type ProposalType uint8

const (
	ProposalTypeInvestment ProposalType = iota
	ProposalTypeOperational
	ProposalTypeEmergency
	ProposalTypeConstitutional
)

var proposalTypeNames = []string{
	"Investment",
	"Operational",
	"Emergency",
	"Constitutional",
}

func (t ProposalType) String() string {
	return types.TagName(proposalTypeNames, "ProposalType", t)
}

func (t ProposalType) Valid() bool {
	return int(t) < len(proposalTypeNames)
}

func (t ProposalType) MarshalText() ([]byte, error) {
	return types.MarshalTag(proposalTypeNames, "proposal type", t)
}

func (t *ProposalType) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(proposalTypeNames, "proposal type", data, t)
}

type VotingMechanism uint8

const (
	MechanismSimpleMajority VotingMechanism = iota
	MechanismQuadratic
	MechanismConviction
	MechanismDelegated
)

var votingMechanismNames = []string{
	"SimpleMajority",
	"Quadratic",
	"Conviction",
	"Delegated",
}

func (m VotingMechanism) String() string {
	return types.TagName(votingMechanismNames, "VotingMechanism", m)
}

func (m VotingMechanism) Valid() bool {
	return int(m) < len(votingMechanismNames)
}

func (m VotingMechanism) MarshalText() ([]byte, error) {
	return types.MarshalTag(votingMechanismNames, "voting mechanism", m)
}

func (m *VotingMechanism) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(votingMechanismNames, "voting mechanism", data, m)
}

type VoteChoice uint8

const (
	ChoiceAye VoteChoice = iota
	ChoiceNay
	ChoiceAbstain
)

var voteChoiceNames = []string{
	"Aye",
	"Nay",
	"Abstain",
}

func (c VoteChoice) String() string {
	return types.TagName(voteChoiceNames, "VoteChoice", c)
}

func (c VoteChoice) Valid() bool {
	return int(c) < len(voteChoiceNames)
}

func (c VoteChoice) MarshalText() ([]byte, error) {
	return types.MarshalTag(voteChoiceNames, "vote choice", c)
}

func (c *VoteChoice) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(voteChoiceNames, "vote choice", data, c)
}

type ProposalStatus uint8

const (
	StatusActive ProposalStatus = iota
	StatusPassed
	StatusRejected
	StatusExpired
	StatusCancelled
)

var proposalStatusNames = []string{
	"Active",
	"Passed",
	"Rejected",
	"Expired",
	"Cancelled",
}

func (s ProposalStatus) String() string {
	return types.TagName(proposalStatusNames, "ProposalStatus", s)
}

func (s ProposalStatus) Valid() bool {
	return int(s) < len(proposalStatusNames)
}

// Terminal reports whether the status can no longer change
func (s ProposalStatus) Terminal() bool {
	return s != StatusActive
}

func (s ProposalStatus) MarshalText() ([]byte, error) {
	return types.MarshalTag(proposalStatusNames, "proposal status", s)
}

func (s *ProposalStatus) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(proposalStatusNames, "proposal status", data, s)
}

type TreasuryActionKind uint8

const (
	TreasuryActionOpenCycle TreasuryActionKind = iota
	TreasuryActionCloseCycle
)

var treasuryActionNames = []string{
	"OpenCycle",
	"CloseCycle",
}

func (k TreasuryActionKind) String() string {
	return types.TagName(treasuryActionNames, "TreasuryActionKind", k)
}

func (k TreasuryActionKind) Valid() bool {
	return int(k) < len(treasuryActionNames)
}

func (k TreasuryActionKind) MarshalText() ([]byte, error) {
	return types.MarshalTag(treasuryActionNames, "treasury action", k)
}

func (k *TreasuryActionKind) UnmarshalText(data []byte) error {
	return types.UnmarshalTag(treasuryActionNames, "treasury action", data, k)
}
