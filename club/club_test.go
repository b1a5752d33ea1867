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

package club_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/types"
)

func TestRegistryCreateAndJoin(t *testing.T) {
	r := club.NewRegistry(club.Config{})
	c, err := r.Create("alice", "Alpha", "first club", 5)
	require.NoError(t, err)
	assert.Equal(t, types.ClubId(1), c.Id)
	assert.True(t, r.IsActiveMember(c.Id, "alice"))

	m, err := r.Join(c.Id, "bob", 7)
	require.NoError(t, err)
	assert.Equal(t, types.BlockNumber(7), m.JoinedAt)
	_, err = r.Join(c.Id, "bob", 8)
	assert.ErrorIs(t, err, types.ErrInvalidParameters)

	assert.Equal(t, []types.AccountId{"alice", "bob"}, r.ActiveMembers(c.Id))
	got, err := r.Club(c.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MemberCount)
}

func TestRegistryCreateValidation(t *testing.T) {
	r := club.NewRegistry(club.Config{})
	_, err := r.Create("alice", "", "", 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameters)
	_, err = r.Create("alice", strings.Repeat("n", club.MaxNameLength+1), "", 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameters)
	_, err = r.Create("", "Alpha", "", 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameters)
	assert.Empty(t, r.Clubs())
}

func TestRegistryMaxMembers(t *testing.T) {
	r := club.NewRegistry(club.Config{MaxMembersPerClub: 2})
	c, err := r.Create("alice", "Alpha", "", 0)
	require.NoError(t, err)
	_, err = r.Join(c.Id, "bob", 0)
	require.NoError(t, err)
	_, err = r.Join(c.Id, "carol", 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameters)
}

func TestRegistryLeaveAndRejoin(t *testing.T) {
	r := club.NewRegistry(club.Config{})
	c, err := r.Create("alice", "Alpha", "", 0)
	require.NoError(t, err)
	_, err = r.Join(c.Id, "bob", 1)
	require.NoError(t, err)
	_, err = r.Leave(c.Id, "bob")
	require.NoError(t, err)
	assert.ErrorIs(t, r.RequireMember(c.Id, "bob"), types.ErrNotAMember)
	_, err = r.Leave(c.Id, "bob")
	assert.ErrorIs(t, err, types.ErrNotAMember)
	m, err := r.Join(c.Id, "bob", 9)
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.Equal(t, types.BlockNumber(9), m.JoinedAt)
}

func TestRegistryDeactivate(t *testing.T) {
	r := club.NewRegistry(club.Config{})
	c, err := r.Create("alice", "Alpha", "", 0)
	require.NoError(t, err)
	_, err = r.Deactivate(c.Id, "bob")
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = r.Deactivate(c.Id, "alice")
	require.NoError(t, err)
	assert.ErrorIs(t, r.RequireActive(c.Id), types.ErrClubInactive)
	_, err = r.Join(c.Id, "bob", 1)
	assert.ErrorIs(t, err, types.ErrClubInactive)
	assert.ErrorIs(t, r.RequireActive(99), types.ErrNotFound)
}

func TestRegistryReputation(t *testing.T) {
	r := club.NewRegistry(club.Config{})
	c, err := r.Create("alice", "Alpha", "", 0)
	require.NoError(t, err)
	_, err = r.Join(c.Id, "bob", 0)
	require.NoError(t, err)

	// Alice proposes twice, one passes; bob votes on one of them
	r.RecordProposalResolved(c.Id, "alice", 1, true, map[types.AccountId]bool{"alice": true, "bob": true})
	r.RecordProposalResolved(c.Id, "alice", 2, false, map[types.AccountId]bool{"alice": true})
	for range 25 {
		r.RecordContribution(c.Id, "bob", 1000)
	}

	alice, err := r.Member(c.Id, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint8(100), alice.VotingParticipation)
	assert.Equal(t, uint8(50), alice.ProposalSuccessRate)
	assert.Equal(t, uint64(150), alice.Reputation)

	bob, err := r.Member(c.Id, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint8(50), bob.VotingParticipation)
	assert.Equal(t, uint8(0), bob.ProposalSuccessRate)
	assert.Equal(t, types.Amount(25000), bob.ContributionWeight)
	// contribution component caps at 100
	assert.Equal(t, uint64(150), bob.Reputation)
}
