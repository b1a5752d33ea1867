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

package governance_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/types"
)

func TestEnumTextEncoding(t *testing.T) {
	req := struct {
		Type      governance.ProposalType    `json:"type"`
		Mechanism governance.VotingMechanism `json:"mechanism"`
		Choice    governance.VoteChoice      `json:"choice"`
	}{}
	err := json.Unmarshal(
		[]byte(`{"type":"Emergency","mechanism":"Conviction","choice":"Abstain"}`),
		&req,
	)
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalTypeEmergency, req.Type)
	assert.Equal(t, governance.MechanismConviction, req.Mechanism)
	assert.Equal(t, governance.ChoiceAbstain, req.Choice)

	data, err := json.Marshal(governance.StatusCancelled)
	require.NoError(t, err)
	assert.JSONEq(t, `"Cancelled"`, string(data))
}

func TestEnumRejectsUnknownTags(t *testing.T) {
	var status governance.ProposalStatus
	err := status.UnmarshalText([]byte("cancelled"))
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	var mechanism governance.VotingMechanism
	err = mechanism.UnmarshalText([]byte("Weighted"))
	require.ErrorIs(t, err, types.ErrInvalidParameters)

	_, err = governance.VoteChoice(7).MarshalText()
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	assert.Equal(t, "VoteChoice(7)", governance.VoteChoice(7).String())
}
