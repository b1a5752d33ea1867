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

package ledger

import (
	"testing"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRecordOptionalFields(t *testing.T) {
	kind := uint8(0)
	period := uint64(50)
	stake := uint64(5000)
	testDefs := []struct {
		name   string
		params actionParams
	}{
		{
			name: "proposal with treasury action",
			params: &createProposalParams{
				ClubId:     1,
				Type:       0,
				Title:      "Fund cycle",
				Threshold:  51,
				Duration:   10,
				ActionKind: &kind,
				Period:     &period,
			},
		},
		{
			name: "proposal without treasury action",
			params: &createProposalParams{
				ClubId:    1,
				Type:      1,
				Mechanism: 2,
				Title:     "Coffee",
				Threshold: 50,
				Duration:  10,
			},
		},
		{
			name: "conviction vote",
			params: &voteParams{
				ClubId:     1,
				ProposalId: 3,
				Stake:      &stake,
				LockBlocks: 400,
			},
		},
		{
			name:   "default cycle",
			params: &openCycleParams{ClubId: 2},
		},
		{
			name: "dispute",
			params: &openDisputeParams{
				ClubId:      1,
				Subject:     string(bob),
				Description: "unpaid share",
			},
		},
		{
			name: "dispute vote",
			params: &voteOnDisputeParams{
				ClubId:    1,
				DisputeId: 2,
				Choice:    1,
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			id := uuid.New()
			record, err := encodeActionRecord(id, alice, 7, testDef.params)
			require.NoError(t, err)
			act, err := decodeActionRecord(record)
			require.NoError(t, err)
			assert.Equal(t, id, act.id)
			assert.Equal(t, alice, act.caller)
			assert.Equal(t, uint64(7), uint64(act.block))
			assert.Equal(t, testDef.params.actionType(), act.params.actionType())
			assert.Equal(t, testDef.params, act.params)
		})
	}
}

func TestDecodeActionRecordErrors(t *testing.T) {
	unknown, err := cbor.Encode(&actionRecord{
		Id:     make([]byte, 16),
		Type:   "Teleport",
		Caller: string(alice),
		Params: []byte{0x80},
	})
	require.NoError(t, err)
	_, err = decodeActionRecord(unknown)
	require.ErrorContains(t, err, `unknown action type "Teleport"`)

	badId, err := cbor.Encode(&actionRecord{
		Id:     []byte{1, 2, 3},
		Type:   string(ActionCreateClub),
		Caller: string(alice),
	})
	require.NoError(t, err)
	_, err = decodeActionRecord(badId)
	require.ErrorContains(t, err, "decode action id")

	_, err = decodeActionRecord([]byte{0xff, 0x00})
	require.ErrorContains(t, err, "decode action record")
}

func TestParamsFactoryCoversActionTypes(t *testing.T) {
	for actionType, factory := range paramsFactory {
		assert.Equal(t, actionType, factory().actionType())
	}
	assert.Len(t, paramsFactory, 28)
}
