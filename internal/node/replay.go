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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ikubchain/clubledger"
	"github.com/ikubchain/clubledger/internal/config"
)

// Replay rebuilds the ledger state from the persisted action log without
// serving the API
func Replay(
	cfg *config.Config,
	logger *slog.Logger,
) (clubledger.ReplayResult, error) {
	opts, _, err := nodeOptions(cfg, logger)
	if err != nil {
		return clubledger.ReplayResult{}, err
	}
	n, err := clubledger.New(clubledger.NewConfig(opts...))
	if err != nil {
		return clubledger.ReplayResult{}, err
	}
	start := time.Now()
	res, err := n.Replay()
	if stopErr := n.Stop(); stopErr != nil {
		err = errors.Join(err, fmt.Errorf("shutdown: %w", stopErr))
	}
	if err != nil {
		return clubledger.ReplayResult{}, err
	}
	logger.Info(
		fmt.Sprintf("replayed %d actions", res.Seq),
		"component", "node",
		"block", res.Block,
		"clubs", res.Clubs,
		"duration", time.Since(start).String(),
	)
	return res, nil
}
