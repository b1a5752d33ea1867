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

package balance_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/types"
)

func TestBookReserveCycle(t *testing.T) {
	b := balance.NewBook()
	require.NoError(t, b.Credit("alice", 5000))
	require.NoError(t, b.Reserve("alice", 1000))
	assert.Equal(t, balance.Balance{Free: 4000, Reserved: 1000}, b.Get("alice"))
	require.NoError(t, b.Unreserve("alice", 400))
	assert.Equal(t, balance.Balance{Free: 4400, Reserved: 600}, b.Get("alice"))
	require.NoError(t, b.Slash("alice", 600))
	assert.Equal(t, balance.Balance{Free: 4400}, b.Get("alice"))
}

func TestBookInsufficient(t *testing.T) {
	b := balance.NewBook()
	require.NoError(t, b.Credit("bob", 10))
	assert.ErrorIs(t, b.Debit("bob", 11), types.ErrInsufficientBalance)
	assert.ErrorIs(t, b.Reserve("bob", 11), types.ErrInsufficientBalance)
	assert.Equal(t, types.Amount(10), b.Free("bob"))
}

func TestBookInvariantOnOverRelease(t *testing.T) {
	b := balance.NewBook()
	err := b.Unreserve("carol", 1)
	require.Error(t, err)
	assert.True(t, types.IsInvariant(err))
	err = b.Slash("carol", 1)
	require.Error(t, err)
	assert.True(t, types.IsInvariant(err))
}

func TestBookCreditOverflow(t *testing.T) {
	b := balance.NewBook()
	require.NoError(t, b.Credit("dave", math.MaxUint64-5))
	assert.ErrorIs(t, b.Credit("dave", 6), types.ErrInvalidParameters)
	require.NoError(t, b.Reserve("dave", 10))
	assert.ErrorIs(t, b.Credit("dave", 6), types.ErrInvalidParameters)
}

func TestBookAccountsSorted(t *testing.T) {
	b := balance.NewBook()
	require.NoError(t, b.Credit("zed", 1))
	require.NoError(t, b.Credit("amy", 1))
	assert.Equal(t, []types.AccountId{"amy", "zed"}, b.Accounts())
}
