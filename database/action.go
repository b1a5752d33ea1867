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
package database

import (
	"errors"
	"fmt"

	"github.com/ikubchain/clubledger/database/types"
)

// AppendAction writes an encoded action record to the action log
func (d *Database) AppendAction(seq uint64, record []byte, txn *Txn) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	return d.Blob().Set(txn.Blob(), types.ActionBlobKey(seq), record)
}

// ActionRecord returns a single encoded action record
func (d *Database) ActionRecord(seq uint64) ([]byte, error) {
	txn := NewBlobOnlyTxn(d, false)
	defer txn.Release()
	return d.Blob().Get(txn.Blob(), types.ActionBlobKey(seq))
}

// IterateActions calls fn for every action record in sequence order. The
// record slice is only valid for the duration of the call.
func (d *Database) IterateActions(fn func(seq uint64, record []byte) error) error {
	txn := NewBlobOnlyTxn(d, false)
	defer txn.Release()
	prefix := []byte(types.ActionBlobKeyPrefix)
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var expected uint64 = 1
	var buf []byte
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		seq, err := types.ActionBlobKeySeq(item.Key())
		if err != nil {
			return err
		}
		if seq != expected {
			return fmt.Errorf("action log gap: expected %d, found %d", expected, seq)
		}
		buf, err = item.ValueCopy(buf[:0])
		if err != nil {
			return fmt.Errorf("read action %d: %w", seq, err)
		}
		if err := fn(seq, buf); err != nil {
			return err
		}
		expected++
	}
	return iter.Err()
}

// LastActionSeq returns the sequence of the newest action record, or 0 for
// an empty log
func (d *Database) LastActionSeq() (uint64, error) {
	txn := NewBlobOnlyTxn(d, false)
	defer txn.Release()
	prefix := []byte(types.ActionBlobKeyPrefix)
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix, Reverse: true},
	)
	defer iter.Close()
	// Reverse iteration starts from the greatest key with the prefix
	iter.Seek(append(prefix, 0xff))
	if !iter.ValidForPrefix(prefix) {
		if err := iter.Err(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return types.ActionBlobKeySeq(iter.Item().Key())
}

// IsNotFound reports whether an action record lookup missed
func IsNotFound(err error) bool {
	return errors.Is(err, types.ErrBlobKeyNotFound)
}
