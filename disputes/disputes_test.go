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

package disputes_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/types"
)

const testClub types.ClubId = 3

type testMembers map[types.AccountId]bool

func (m testMembers) IsActiveMember(_ types.ClubId, account types.AccountId) bool {
	return m[account]
}

var members = testMembers{
	"alice": true,
	"bob":   true,
	"carol": true,
	"dave":  true,
	"erin":  true,
}

func openDispute(t *testing.T, engine *disputes.Engine) disputes.Dispute {
	t.Helper()
	d, err := engine.Open(testClub, "alice", "bob", "unpaid share", 4, members)
	require.NoError(t, err)
	return d
}

func TestOpenDispute(t *testing.T) {
	engine := disputes.NewEngine()
	d := openDispute(t, engine)
	assert.Equal(t, types.DisputeId(1), d.Id)
	assert.Equal(t, disputes.StatusOpen, d.Status)
	assert.Equal(t, types.BlockNumber(4), d.CreatedAt)

	_, err := engine.Open(testClub, "alice", "alice", "self", 4, members)
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	_, err = engine.Open(testClub, "alice", "mallory", "outsider", 4, members)
	require.ErrorIs(t, err, types.ErrNotAMember)
	_, err = engine.Open(testClub, "alice", "", "nobody", 4, members)
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	_, err = engine.Open(testClub, "alice", "bob", "", 4, members)
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	long := strings.Repeat("x", disputes.MaxDescriptionLength+1)
	_, err = engine.Open(testClub, "alice", "bob", long, 4, members)
	require.ErrorIs(t, err, types.ErrInvalidParameters)

	second, err := engine.Open(testClub, "carol", "bob", "noise", 5, members)
	require.NoError(t, err)
	assert.Equal(t, types.DisputeId(2), second.Id)
	other, err := engine.Open(testClub+1, "carol", "bob", "noise", 5, members)
	require.NoError(t, err)
	assert.Equal(t, types.DisputeId(1), other.Id)
	assert.Len(t, engine.Disputes(testClub), 2)
	assert.Empty(t, engine.Disputes(testClub+2))
	_, err = engine.Dispute(testClub, 9)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestDisputeEvidence(t *testing.T) {
	engine := disputes.NewEngine()
	d := openDispute(t, engine)

	ev, err := engine.SubmitEvidence(testClub, d.Id, "alice", "bank statement", 5)
	require.NoError(t, err)
	assert.Equal(t, types.AccountId("alice"), ev.Submitter)
	_, err = engine.SubmitEvidence(testClub, d.Id, "alice", "again", 6)
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	long := strings.Repeat("x", disputes.MaxEvidenceLength+1)
	_, err = engine.SubmitEvidence(testClub, d.Id, "bob", long, 6)
	require.ErrorIs(t, err, types.ErrInvalidParameters)
	_, err = engine.SubmitEvidence(testClub, 42, "bob", "receipt", 6)
	require.ErrorIs(t, err, types.ErrNotFound)

	d, err = engine.Escalate(testClub, d.Id, "carol", "carol")
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusInMediation, d.Status)
	_, err = engine.SubmitEvidence(testClub, d.Id, "bob", "receipt", 7)
	require.NoError(t, err)

	d, err = engine.Escalate(testClub, d.Id, "carol", "carol")
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusInArbitration, d.Status)
	_, err = engine.SubmitEvidence(testClub, d.Id, "dave", "hearsay", 8)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)

	evidence, err := engine.Evidence(testClub, d.Id)
	require.NoError(t, err)
	require.Len(t, evidence, 2)
	assert.Equal(t, types.AccountId("bob"), evidence[1].Submitter)
	got, err := engine.Dispute(testClub, d.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.EvidenceCount)
	_, err = engine.EvidenceOf(testClub, d.Id, "dave")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestDisputeVoting(t *testing.T) {
	engine := disputes.NewEngine()
	d := openDispute(t, engine)

	_, err := engine.Vote(testClub, d.Id, "alice", disputes.ChoiceFavorInitiator, 5)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = engine.Vote(testClub, d.Id, "bob", disputes.ChoiceFavorSubject, 5)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = engine.Vote(testClub, d.Id, "carol", disputes.VoteChoice(9), 5)
	require.ErrorIs(t, err, types.ErrInvalidParameters)

	_, err = engine.Vote(testClub, d.Id, "carol", disputes.ChoiceFavorInitiator, 5)
	require.NoError(t, err)
	_, err = engine.Vote(testClub, d.Id, "carol", disputes.ChoiceAbstain, 6)
	require.ErrorIs(t, err, types.ErrInvalidParameters)

	// No votes are taken while a mediator is involved
	_, err = engine.Escalate(testClub, d.Id, "erin", "erin")
	require.NoError(t, err)
	_, err = engine.Vote(testClub, d.Id, "dave", disputes.ChoiceFavorSubject, 6)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)
	_, err = engine.Resolve(testClub, d.Id, 6)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)

	_, err = engine.Escalate(testClub, d.Id, "erin", "erin")
	require.NoError(t, err)
	_, err = engine.Vote(testClub, d.Id, "dave", disputes.ChoiceAbstain, 7)
	require.NoError(t, err)

	votes, err := engine.Votes(testClub, d.Id)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, types.AccountId("carol"), votes[0].Voter)
	v, err := engine.VoteOf(testClub, d.Id, "dave")
	require.NoError(t, err)
	assert.Equal(t, disputes.ChoiceAbstain, v.Choice)

	d, err = engine.Resolve(testClub, d.Id, 8)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusResolved, d.Status)
	assert.Equal(t, types.AccountId("alice"), d.Winner)
	assert.Equal(t, types.BlockNumber(8), d.ResolvedAt)
	assert.Equal(t, 1, d.FavorInitiator)
	assert.Equal(t, 0, d.FavorSubject)
	assert.Equal(t, 1, d.Abstain)

	_, err = engine.Vote(testClub, d.Id, "erin", disputes.ChoiceFavorSubject, 9)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)
	_, err = engine.Resolve(testClub, d.Id, 9)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)
}

func TestResolveTieFavorsSubject(t *testing.T) {
	engine := disputes.NewEngine()
	d := openDispute(t, engine)

	_, err := engine.Resolve(testClub, d.Id, 5)
	require.ErrorIs(t, err, types.ErrInvalidParameters)

	_, err = engine.Vote(testClub, d.Id, "carol", disputes.ChoiceFavorInitiator, 5)
	require.NoError(t, err)
	_, err = engine.Vote(testClub, d.Id, "dave", disputes.ChoiceFavorSubject, 5)
	require.NoError(t, err)
	d, err = engine.Resolve(testClub, d.Id, 6)
	require.NoError(t, err)
	assert.Equal(t, types.AccountId("bob"), d.Winner)

	abstained, err := engine.Open(testClub, "carol", "dave", "late", 6, members)
	require.NoError(t, err)
	_, err = engine.Vote(testClub, abstained.Id, "erin", disputes.ChoiceAbstain, 7)
	require.NoError(t, err)
	abstained, err = engine.Resolve(testClub, abstained.Id, 7)
	require.NoError(t, err)
	assert.Equal(t, types.AccountId("dave"), abstained.Winner)
}

func TestEscalateRules(t *testing.T) {
	engine := disputes.NewEngine()
	d := openDispute(t, engine)

	_, err := engine.Escalate(testClub, d.Id, "alice", "carol")
	require.ErrorIs(t, err, types.ErrUnauthorized)
	for range 2 {
		_, err = engine.Escalate(testClub, d.Id, "carol", "carol")
		require.NoError(t, err)
	}
	_, err = engine.Escalate(testClub, d.Id, "carol", "carol")
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)
	_, err = engine.Escalate(testClub, 42, "carol", "carol")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestCloseDispute(t *testing.T) {
	engine := disputes.NewEngine()
	d := openDispute(t, engine)

	_, err := engine.Close(testClub, d.Id, "bob", "carol", 5)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = engine.Close(testClub, d.Id, "carol", "carol", 5)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	d, err = engine.Close(testClub, d.Id, "alice", "carol", 5)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusClosed, d.Status)
	assert.Empty(t, d.Winner)
	assert.Equal(t, types.BlockNumber(5), d.ClosedAt)
	_, err = engine.Close(testClub, d.Id, "alice", "carol", 6)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)
	_, err = engine.SubmitEvidence(testClub, d.Id, "bob", "too late", 6)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)

	resolved, err := engine.Open(testClub, "alice", "bob", "second", 6, members)
	require.NoError(t, err)
	_, err = engine.Vote(testClub, resolved.Id, "dave", disputes.ChoiceFavorSubject, 7)
	require.NoError(t, err)
	_, err = engine.Resolve(testClub, resolved.Id, 8)
	require.NoError(t, err)
	_, err = engine.Close(testClub, resolved.Id, "erin", "carol", 9)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	resolved, err = engine.Close(testClub, resolved.Id, "carol", "carol", 9)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusClosed, resolved.Status)
	assert.Equal(t, types.AccountId("bob"), resolved.Winner)
}

func TestDisputeEnumText(t *testing.T) {
	var req struct {
		Choice disputes.VoteChoice `json:"choice"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"choice":"FavorSubject"}`), &req))
	assert.Equal(t, disputes.ChoiceFavorSubject, req.Choice)

	data, err := json.Marshal(disputes.StatusInArbitration)
	require.NoError(t, err)
	assert.JSONEq(t, `"InArbitration"`, string(data))

	var status disputes.Status
	require.ErrorIs(t, status.UnmarshalText([]byte("Pending")), types.ErrInvalidParameters)
	assert.True(t, disputes.StatusClosed.Valid())
	assert.False(t, disputes.Status(5).Valid())
	assert.Equal(t, "DisputeStatus(5)", disputes.Status(5).String())
}
