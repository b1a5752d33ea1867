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
	badger "github.com/dgraph-io/badger/v4"

	"github.com/ikubchain/clubledger/database/types"
)

// badgerTxn wraps a badger transaction. A finished handle rejects further
// use, and committing or discarding it again is a no-op.
type badgerTxn struct {
	store    *BlobStoreBadger
	tx       *badger.Txn
	finished bool
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Commit()
}

func (t *badgerTxn) Rollback() error {
	if !t.finished {
		t.finished = true
		t.tx.Discard()
	}
	return nil
}

// unwrap returns the badger transaction behind a handle issued by this store
func (d *BlobStoreBadger) unwrap(txn types.Txn) (*badger.Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*badgerTxn)
	if !ok || t.store != d {
		return nil, types.ErrTxnWrongType
	}
	if t.finished {
		return nil, types.ErrTxnFinished
	}
	if t.tx == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	return t.tx, nil
}

type badgerIterator struct {
	*badger.Iterator
	err error
}

func (it *badgerIterator) Rewind() {
	if it.Iterator != nil {
		it.Iterator.Rewind()
	}
}

func (it *badgerIterator) Seek(key []byte) {
	if it.Iterator != nil {
		it.Iterator.Seek(key)
	}
}

func (it *badgerIterator) Valid() bool {
	return it.Iterator != nil && it.Iterator.Valid()
}

func (it *badgerIterator) ValidForPrefix(prefix []byte) bool {
	return it.Iterator != nil && it.Iterator.ValidForPrefix(prefix)
}

func (it *badgerIterator) Next() {
	if it.Iterator != nil {
		it.Iterator.Next()
	}
}

func (it *badgerIterator) Item() types.BlobItem {
	if it.Iterator == nil {
		return nil
	}
	return badgerItem{it.Iterator.Item()}
}

func (it *badgerIterator) Close() {
	if it.Iterator != nil {
		it.Iterator.Close()
	}
}

// Err reports a transaction that could not be iterated
func (it *badgerIterator) Err() error {
	return it.err
}

type badgerItem struct {
	item *badger.Item
}

func (i badgerItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i badgerItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}
