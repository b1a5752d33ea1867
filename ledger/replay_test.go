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
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/database"
	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

type ledgerSnapshot struct {
	seq       uint64
	block     types.BlockNumber
	clubs     []club.Club
	members   []club.Member
	accounts  map[types.AccountId]balance.Balance
	proposals []governance.Proposal
	cycles    []treasury.Cycle
	treasury  types.Amount
}

func snapshot(t *testing.T, ls *LedgerState, id types.ClubId) ledgerSnapshot {
	t.Helper()
	members, err := ls.Members(id)
	require.NoError(t, err)
	proposals, err := ls.Proposals(id)
	require.NoError(t, err)
	cycles, err := ls.Cycles(id)
	require.NoError(t, err)
	treasuryBalance, err := ls.TreasuryBalance(id)
	require.NoError(t, err)
	ret := ledgerSnapshot{
		seq:       ls.Seq(),
		block:     ls.CurrentBlock(),
		clubs:     ls.Clubs(),
		members:   members,
		accounts:  make(map[types.AccountId]balance.Balance),
		proposals: proposals,
		cycles:    cycles,
		treasury:  treasuryBalance,
	}
	for _, account := range []types.AccountId{alice, bob, carol} {
		ret.accounts[account] = ls.Account(account)
	}
	return ret
}

func openDatabase(t *testing.T, dir string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: dir})
	if err != nil {
		// A lost metadata store is rebuilt by the ledger
		var markerErr database.CommitMarkerError
		require.True(t, errors.As(err, &markerErr), "unexpected error: %s", err)
		require.NotNil(t, db)
	}
	return db
}

// populate runs a little of everything against a persistent ledger
func populate(t *testing.T, ls *LedgerState) types.ClubId {
	t.Helper()
	ctx := context.Background()
	id := setupClub(t, ls)
	prop, err := ls.CreateProposal(ctx, alice, id, majorityRequest(60))
	require.NoError(t, err)
	castVotes(t, ls, id, prop.Id, map[types.AccountId]governance.VoteChoice{
		bob:   governance.ChoiceAye,
		carol: governance.ChoiceNay,
	})
	require.NoError(t, ls.SetDelegate(ctx, carol, id, alice))
	_, err = ls.OpenContributionCycle(ctx, alice, id, nil, nil)
	require.NoError(t, err)
	_, err = ls.Contribute(ctx, bob, id, 2500)
	require.NoError(t, err)
	_, err = ls.AdvanceBlocks(ctx, alice, 10)
	require.NoError(t, err)
	_, err = ls.FinalizeProposal(ctx, bob, id, prop.Id)
	require.NoError(t, err)
	_, err = ls.RequestWithdrawal(ctx, bob, id, carol, 500, 0)
	require.NoError(t, err)
	return id
}

func TestReplayRestoresState(t *testing.T) {
	dir := t.TempDir()
	db := openDatabase(t, dir)
	ls := newTestLedger(t, LedgerStateConfig{Database: db})
	id := populate(t, ls)
	before := snapshot(t, ls, id)
	require.NoError(t, ls.Close())
	require.NoError(t, db.Close())

	db = openDatabase(t, dir)
	defer db.Close()
	ls = newTestLedger(t, LedgerStateConfig{Database: db})
	defer ls.Close()
	assert.Equal(t, before, snapshot(t, ls, id))
	delegations, err := ls.Delegations(id)
	require.NoError(t, err)
	assert.Equal(t, map[types.AccountId]types.AccountId{carol: alice}, delegations)

	actions, err := ls.Actions(0, 100)
	require.NoError(t, err)
	require.Len(t, actions, int(before.seq))
	assert.Equal(t, string(ActionEndow), actions[0].Type)
	assert.Equal(t, string(ActionRequestWithdrawal), actions[len(actions)-1].Type)
	for i, action := range actions {
		assert.Equal(t, uint64(i+1), action.Seq)
	}
	page, err := ls.Actions(5, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, uint64(6), page[0].Seq)

	// New actions continue the sequence
	_, err = ls.AdvanceBlocks(context.Background(), alice, 1)
	require.NoError(t, err)
	assert.Equal(t, before.seq+1, ls.Seq())
}

func TestProjectionMatchesState(t *testing.T) {
	db := openDatabase(t, "")
	defer db.Close()
	ls := newTestLedger(t, LedgerStateConfig{Database: db})
	defer ls.Close()
	id := populate(t, ls)

	var account models.Account
	require.NoError(t, db.Metadata().DB().First(&account, "account_id = ?", string(alice)).Error)
	acct := ls.Account(alice)
	assert.Equal(t, uint64(acct.Free), uint64(account.Free))
	assert.Equal(t, uint64(acct.Reserved), uint64(account.Reserved))

	var treasuryRow models.Treasury
	require.NoError(t, db.Metadata().DB().First(&treasuryRow, "club_id = ?", uint64(id)).Error)
	treasuryBalance, err := ls.TreasuryBalance(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(treasuryBalance), uint64(treasuryRow.Balance))

	var contributions []models.Contribution
	require.NoError(t, db.Metadata().DB().Find(&contributions).Error)
	require.Len(t, contributions, 1)
	assert.Equal(t, string(bob), contributions[0].Contributor)

	tip, err := db.Metadata().GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, ls.Seq(), tip.Seq)
	assert.Equal(t, uint64(ls.CurrentBlock()), tip.Block)
	metadataSeq, err := db.Metadata().GetCommitSeq()
	require.NoError(t, err)
	blobSeq, err := db.Blob().GetCommitSeq()
	require.NoError(t, err)
	assert.Equal(t, ls.Seq(), metadataSeq)
	assert.Equal(t, ls.Seq(), blobSeq)
}

func TestRebuildLostMetadata(t *testing.T) {
	dir := t.TempDir()
	db := openDatabase(t, dir)
	ls := newTestLedger(t, LedgerStateConfig{Database: db})
	id := populate(t, ls)
	before := snapshot(t, ls, id)
	require.NoError(t, ls.Close())
	require.NoError(t, db.Close())

	for _, name := range []string{
		"metadata.sqlite",
		"metadata.sqlite-wal",
		"metadata.sqlite-shm",
	} {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !os.IsNotExist(err) {
			require.NoError(t, err)
		}
	}

	db = openDatabase(t, dir)
	defer db.Close()
	ls = newTestLedger(t, LedgerStateConfig{Database: db})
	defer ls.Close()
	assert.Equal(t, before, snapshot(t, ls, id))

	metadataSeq, err := db.Metadata().GetCommitSeq()
	require.NoError(t, err)
	assert.Equal(t, before.seq, metadataSeq)
	actions, err := ls.Actions(0, 1000)
	require.NoError(t, err)
	assert.Len(t, actions, int(before.seq))
	var clubRow models.Club
	require.NoError(t, db.Metadata().DB().First(&clubRow, "club_id = ?", uint64(id)).Error)
	assert.Equal(t, "Alpha", clubRow.Name)
	assert.Equal(t, 3, clubRow.MemberCount)
}

func TestQueriesDoNotWaitForStorage(t *testing.T) {
	db := openDatabase(t, t.TempDir())
	defer db.Close()
	ls := newTestLedger(t, LedgerStateConfig{Database: db})
	defer ls.Close()

	entered := make(chan struct{})
	release := make(chan struct{})
	var enterOnce, releaseOnce sync.Once
	ls.beforePersist = func() {
		enterOnce.Do(func() { close(entered) })
		<-release
	}
	defer releaseOnce.Do(func() { close(release) })

	errCh := make(chan error, 1)
	go func() {
		_, err := ls.Endow(context.Background(), alice, alice, 500)
		errCh <- err
	}()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for the storage write")
	}

	// The write is held in flight; reads still see the applied action
	read := make(chan struct{})
	var free types.Amount
	var seq uint64
	go func() {
		defer close(read)
		free = ls.Account(alice).Free
		seq = ls.Seq()
	}()
	select {
	case <-read:
	case <-time.After(time.Second):
		t.Fatal("query blocked behind the storage write")
	}
	assert.Equal(t, types.Amount(500), free)
	assert.Equal(t, uint64(1), seq)

	releaseOnce.Do(func() { close(release) })
	require.NoError(t, <-errCh)
	last, err := db.LastActionSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), last)
}
