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
package badger_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/database/plugin/blob/badger"
	"github.com/ikubchain/clubledger/database/types"
)

func newStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestSetGetDelete(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
	_, err = store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	// A finished transaction cannot be reused
	_, err = store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrTxnFinished)

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("k")))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestWrongTxn(t *testing.T) {
	first := newStore(t)
	second := newStore(t)
	txn := first.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := second.Get(txn, []byte("k"))
	require.Error(t, err)
	_, err = first.Get(nil, []byte("k"))
	require.ErrorIs(t, err, types.ErrNilTxn)
	iter := second.NewIterator(txn, types.BlobIteratorOptions{})
	assert.False(t, iter.Valid())
	require.Error(t, iter.Err())
	iter.Close()
}

func TestIteratorOrder(t *testing.T) {
	store := newStore(t)
	txn := store.NewTransaction(true)
	for _, seq := range []uint64{3, 1, 300, 2} {
		require.NoError(t, store.Set(txn, types.ActionBlobKey(seq), []byte{byte(seq)}))
	}
	require.NoError(t, store.Set(txn, []byte("zz"), []byte("other")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := []byte(types.ActionBlobKeyPrefix)
	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	var seqs []uint64
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		seq, err := types.ActionBlobKeySeq(iter.Item().Key())
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}
	iter.Close()
	assert.Equal(t, []uint64{1, 2, 3, 300}, seqs)

	iter = store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix, Reverse: true})
	// Reverse iteration has to seek past the end of the prefix
	iter.Seek(append([]byte(types.ActionBlobKeyPrefix), 0xff))
	require.True(t, iter.ValidForPrefix(prefix))
	seq, err := types.ActionBlobKeySeq(iter.Item().Key())
	require.NoError(t, err)
	assert.Equal(t, uint64(300), seq)
	iter.Close()
}

func TestCommitSeq(t *testing.T) {
	store := newStore(t)
	seq, err := store.GetCommitSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	require.ErrorIs(t, store.SetCommitSeq(1, nil), types.ErrNilTxn)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitSeq(42, txn))
	require.NoError(t, txn.Commit())
	seq, err = store.GetCommitSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seq)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	store, err := badger.New(
		badger.WithDataDir(dir),
		badger.WithGcInterval(time.Hour),
		badger.WithPromRegistry(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, types.ActionBlobKey(1), []byte("action")))
	require.NoError(t, store.SetCommitSeq(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store = newStore(t, badger.WithDataDir(dir), badger.WithGc(false))
	seq, err := store.GetCommitSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, types.ActionBlobKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("action"), val)
}
