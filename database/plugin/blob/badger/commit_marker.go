// Copyright 2025 Blink Labs Software
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
package badger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ikubchain/clubledger/database/types"
)

// GetCommitSeq returns the action sequence recorded by the last coordinated
// commit, or 0 when none has happened yet
func (b *BlobStoreBadger) GetCommitSeq() (uint64, error) {
	txn := b.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck

	val, err := b.Get(txn, []byte(types.CommitMarkerBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("commit marker has unexpected length %d", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

func (b *BlobStoreBadger) SetCommitSeq(
	seq uint64,
	txn types.Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return b.Set(txn, []byte(types.CommitMarkerBlobKey), types.Uint64ToBytes(seq))
}
