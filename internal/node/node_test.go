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

package node

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNodeOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ShutdownTimeout = "5s"
	cfg.BlockInterval = "1s"
	opts, timeout, err := nodeOptions(cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "5s", timeout.String())
	assert.NotEmpty(t, opts)
}

func TestNodeOptionsInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BlockInterval = "often"
	_, _, err := nodeOptions(cfg, discardLogger())
	require.Error(t, err)
}

func TestReplayEmptyDatabase(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DatabasePath = t.TempDir()
	res, err := Replay(cfg, discardLogger())
	require.NoError(t, err)
	assert.Zero(t, res.Seq)
	assert.Zero(t, res.Clubs)
}

func TestReplayWithoutDatabasePath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DatabasePath = ""
	_, err := Replay(cfg, discardLogger())
	require.Error(t, err)
}
