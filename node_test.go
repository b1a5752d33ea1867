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

package clubledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, "127.0.0.1:8080", cfg.apiListenAddress)
	assert.Equal(t, DefaultShutdownTimeout, cfg.shutdownTimeout)
	assert.Equal(t, governance.DefaultConfig(), cfg.governance)
	assert.Equal(t, treasury.DefaultConfig(), cfg.treasury)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.tracing)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDatabasePath("/tmp/ledger"),
		WithApiListenAddress(":9000"),
		WithBlockInterval(time.Second),
		WithEndowAuthority("faucet"),
		WithClubConfig(club.Config{MaxMembersPerClub: 5}),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Equal(t, "/tmp/ledger", cfg.dataDir)
	assert.Equal(t, ":9000", cfg.apiListenAddress)
	assert.Equal(t, time.Second, cfg.blockInterval)
	assert.Equal(t, "faucet", string(cfg.endowAuthority))
	assert.Equal(t, 5, cfg.club.MaxMembersPerClub)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []ConfigOptionFunc
	}{
		{
			name: "empty listen address",
			opts: []ConfigOptionFunc{WithApiListenAddress("")},
		},
		{
			name: "negative block interval",
			opts: []ConfigOptionFunc{WithBlockInterval(-time.Second)},
		},
		{
			name: "negative member limit",
			opts: []ConfigOptionFunc{
				WithClubConfig(club.Config{MaxMembersPerClub: -1}),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			n, err := New(NewConfig(test.opts...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Nil(t, n)
		})
	}
}

func TestNodeRunStop(t *testing.T) {
	n, err := New(NewConfig(WithApiListenAddress("127.0.0.1:0")))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for node to stop")
	}
	require.NoError(t, n.Stop())
	// Stop is idempotent
	require.NoError(t, n.Stop())
}

func TestNodeReplay(t *testing.T) {
	dataDir := t.TempDir()

	n, err := New(NewConfig(WithDatabasePath(dataDir)))
	require.NoError(t, err)
	require.NoError(t, n.openLedger(0))
	ctx := context.Background()
	_, err = n.ledgerState.Endow(ctx, "alice", "alice", 10_000)
	require.NoError(t, err)
	cl, err := n.ledgerState.CreateClub(ctx, "alice", "Alpha", "")
	require.NoError(t, err)
	_, err = n.ledgerState.JoinClub(ctx, "bob", cl.Id)
	require.NoError(t, err)
	_, err = n.ledgerState.AdvanceBlocks(ctx, "alice", 12)
	require.NoError(t, err)
	seq := n.ledgerState.Seq()
	require.NoError(t, n.Stop())

	n, err = New(NewConfig(WithDatabasePath(dataDir)))
	require.NoError(t, err)
	defer n.Stop()
	res, err := n.Replay()
	require.NoError(t, err)
	assert.Equal(t, seq, res.Seq)
	assert.Equal(t, uint64(12), uint64(res.Block))
	assert.Equal(t, 1, res.Clubs)
}

func TestReplayRequiresDatabasePath(t *testing.T) {
	n, err := New(NewConfig())
	require.NoError(t, err)
	defer n.Stop()
	_, err = n.Replay()
	require.Error(t, err)
}
