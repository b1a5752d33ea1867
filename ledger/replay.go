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
	"fmt"
	"time"

	"github.com/ikubchain/clubledger/database"
	"github.com/ikubchain/clubledger/database/models"
)

// replay applies the whole action log to the empty state. Every stored
// action succeeded when it was first applied, so any failure here means the
// log and the code disagree.
func (ls *LedgerState) replay() error {
	start := time.Now()
	ls.Lock()
	defer ls.Unlock()
	err := ls.db.IterateActions(func(seq uint64, record []byte) error {
		act, err := decodeActionRecord(record)
		if err != nil {
			return fmt.Errorf("action %d: %w", seq, err)
		}
		actx := newApplyContext(ls.data, &ls.config, act.caller)
		actx.replay = true
		if _, err := applyRecover(actx, act.params); err != nil {
			return fmt.Errorf(
				"action %d (%s): %w",
				seq,
				act.params.actionType(),
				err,
			)
		}
		ls.seq = seq
		ls.metrics.replayedTotal.Inc()
		return nil
	})
	if err != nil {
		return err
	}
	if ls.seq > 0 {
		ls.config.Logger.Info(
			fmt.Sprintf("replayed %d actions, block %d", ls.seq, ls.data.block),
			"component", "ledger",
			"duration", time.Since(start).String(),
		)
	}
	metadataSeq, err := ls.db.Metadata().GetCommitSeq()
	if err != nil {
		return fmt.Errorf("failed to get metadata commit marker: %w", err)
	}
	blobSeq, err := ls.db.Blob().GetCommitSeq()
	if err != nil {
		return fmt.Errorf("failed to get blob commit marker: %w", err)
	}
	if metadataSeq == ls.seq && blobSeq == ls.seq {
		return nil
	}
	ls.config.Logger.Warn(
		"commit markers disagree with the action log, rebuilding projection",
		"component", "ledger",
		"log_seq", ls.seq,
		"metadata_seq", metadataSeq,
		"blob_seq", blobSeq,
	)
	return ls.rebuildProjection()
}

// rebuildProjection replaces every metadata row with the current state and
// the action log. It must be called with the write lock held.
func (ls *LedgerState) rebuildProjection() error {
	projection, err := fullProjection(ls.data)
	if err != nil {
		return err
	}
	meta := ls.db.Metadata()
	txn := database.NewMetadataOnlyTxn(ls.db, true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := meta.Reset(txn.Metadata()); err != nil {
			return err
		}
		if err := meta.ApplyProjection(projection, txn.Metadata()); err != nil {
			return err
		}
		err := ls.db.IterateActions(func(seq uint64, record []byte) error {
			act, err := decodeActionRecord(record)
			if err != nil {
				return fmt.Errorf("action %d: %w", seq, err)
			}
			return meta.AddAction(
				&models.Action{
					ActionId: act.id.String(),
					Type:     string(act.params.actionType()),
					Caller:   string(act.caller),
					Payload:  record,
					Seq:      seq,
					Block:    uint64(act.block),
				},
				txn.Metadata(),
			)
		})
		if err != nil {
			return err
		}
		if err := meta.SetTip(ls.seq, uint64(ls.data.block), txn.Metadata()); err != nil {
			return err
		}
		return meta.SetCommitSeq(ls.seq, txn.Metadata())
	})
	if err != nil {
		return fmt.Errorf("failed to rebuild projection: %w", err)
	}
	// The blob marker may lag if the last commit failed halfway
	blobTxn := database.NewBlobOnlyTxn(ls.db, true)
	err = blobTxn.Do(func(txn *database.Txn) error {
		return ls.db.Blob().SetCommitSeq(ls.seq, txn.Blob())
	})
	if err != nil {
		return fmt.Errorf("failed to update blob commit marker: %w", err)
	}
	ls.config.Logger.Info(
		fmt.Sprintf("rebuilt projection at action %d", ls.seq),
		"component", "ledger",
		"rows", projection.Len(),
	)
	return nil
}
