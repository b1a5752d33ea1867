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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/event"
	"github.com/ikubchain/clubledger/types"
)

func TestDisputeFlow(t *testing.T) {
	defer goleak.VerifyNone(t)
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	_, resolvedCh := bus.Subscribe(DisputeResolvedEventType)
	ls := newTestLedger(t, LedgerStateConfig{EventBus: bus})
	defer ls.Close()
	ctx := context.Background()
	club := setupClub(t, ls)
	_, err := ls.JoinClub(ctx, dave, club)
	require.NoError(t, err)

	_, err = ls.OpenDispute(ctx, "mallory", club, bob, "outsider")
	require.ErrorIs(t, err, types.ErrNotAMember)
	d, err := ls.OpenDispute(ctx, carol, club, bob, "unpaid share")
	require.NoError(t, err)
	assert.Equal(t, types.DisputeId(1), d.Id)
	assert.Equal(t, disputes.StatusOpen, d.Status)

	_, err = ls.SubmitEvidence(ctx, carol, club, d.Id, "bank statement")
	require.NoError(t, err)
	_, err = ls.EscalateDispute(ctx, bob, club, d.Id)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	d, err = ls.EscalateDispute(ctx, alice, club, d.Id)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusInMediation, d.Status)
	_, err = ls.SubmitEvidence(ctx, bob, club, d.Id, "receipt")
	require.NoError(t, err)
	_, err = ls.VoteOnDispute(ctx, dave, club, d.Id, disputes.ChoiceFavorSubject)
	require.ErrorIs(t, err, types.ErrDisputeNotOpen)

	d, err = ls.EscalateDispute(ctx, alice, club, d.Id)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusInArbitration, d.Status)
	_, err = ls.VoteOnDispute(ctx, bob, club, d.Id, disputes.ChoiceFavorSubject)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	for _, voter := range []types.AccountId{alice, dave} {
		_, err = ls.VoteOnDispute(ctx, voter, club, d.Id, disputes.ChoiceFavorInitiator)
		require.NoError(t, err)
	}

	d, err = ls.ResolveDispute(ctx, dave, club, d.Id)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusResolved, d.Status)
	assert.Equal(t, carol, d.Winner)
	evt := receiveEvent(t, resolvedCh)
	resolved, ok := evt.Data.(DisputeResolvedEvent)
	require.True(t, ok)
	assert.Equal(t, d, resolved.Dispute)

	// The initiator may still close a resolved dispute after leaving
	_, err = ls.LeaveClub(ctx, carol, club)
	require.NoError(t, err)
	d, err = ls.CloseDispute(ctx, carol, club, d.Id)
	require.NoError(t, err)
	assert.Equal(t, disputes.StatusClosed, d.Status)

	evidence, err := ls.DisputeEvidence(club, d.Id)
	require.NoError(t, err)
	assert.Len(t, evidence, 2)
	votes, err := ls.DisputeVotes(club, d.Id)
	require.NoError(t, err)
	assert.Len(t, votes, 2)
	list, err := ls.Disputes(club)
	require.NoError(t, err)
	assert.Equal(t, []disputes.Dispute{d}, list)
	_, err = ls.Disputes(42)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestDisputeReplayAndProjection(t *testing.T) {
	dir := t.TempDir()
	db := openDatabase(t, dir)
	ls := newTestLedger(t, LedgerStateConfig{Database: db})
	ctx := context.Background()
	club := setupClub(t, ls)
	d, err := ls.OpenDispute(ctx, alice, club, bob, "missed contribution")
	require.NoError(t, err)
	_, err = ls.SubmitEvidence(ctx, bob, club, d.Id, "paid late")
	require.NoError(t, err)
	_, err = ls.VoteOnDispute(ctx, carol, club, d.Id, disputes.ChoiceAbstain)
	require.NoError(t, err)
	before, err := ls.ResolveDispute(ctx, carol, club, d.Id)
	require.NoError(t, err)

	var row models.Dispute
	require.NoError(t, db.Metadata().DB().First(&row, "club_id = ? AND dispute_id = ?", uint64(club), uint64(d.Id)).Error)
	assert.Equal(t, "Resolved", row.Status)
	assert.Equal(t, string(bob), row.Winner)
	assert.Equal(t, 1, row.Abstain)
	assert.Equal(t, 1, row.EvidenceCount)
	var voteRows []models.DisputeVote
	require.NoError(t, db.Metadata().DB().Find(&voteRows).Error)
	require.Len(t, voteRows, 1)
	assert.Equal(t, "Abstain", voteRows[0].Choice)
	var evidenceRows []models.DisputeEvidence
	require.NoError(t, db.Metadata().DB().Find(&evidenceRows).Error)
	require.Len(t, evidenceRows, 1)
	assert.Equal(t, string(bob), evidenceRows[0].Submitter)

	require.NoError(t, ls.Close())
	require.NoError(t, db.Close())

	db = openDatabase(t, dir)
	defer db.Close()
	ls = newTestLedger(t, LedgerStateConfig{Database: db})
	defer ls.Close()
	after, err := ls.Dispute(club, d.Id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	votes, err := ls.DisputeVotes(club, d.Id)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, carol, votes[0].Voter)
	next, err := ls.OpenDispute(ctx, carol, club, alice, "another")
	require.NoError(t, err)
	assert.Equal(t, types.DisputeId(2), next.Id)
}
