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

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ikubchain/clubledger/internal/config"
	"github.com/ikubchain/clubledger/internal/node"
)

func replayRun(cfg *config.Config) {
	logger := commonRun()
	res, err := node.Replay(cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	fmt.Printf(
		"seq: %d\nblock: %d\nclubs: %d\n",
		res.Seq,
		res.Block,
		res.Clubs,
	)
}

func replayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild the ledger from the action log and print a summary",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			replayRun(cfg)
		},
	}
	return cmd
}
