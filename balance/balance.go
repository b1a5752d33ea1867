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

// Package balance tracks free and reserved funds per account.
package balance

import (
	"slices"

	"github.com/ikubchain/clubledger/types"
)

type Balance struct {
	Free     types.Amount `json:"free"`
	Reserved types.Amount `json:"reserved"`
}

// Book is not safe for concurrent use. The ledger serializes access to it.
type Book struct {
	accounts map[types.AccountId]*Balance
}

func NewBook() *Book {
	return &Book{
		accounts: make(map[types.AccountId]*Balance),
	}
}

func (b *Book) entry(id types.AccountId) *Balance {
	bal, ok := b.accounts[id]
	if !ok {
		bal = &Balance{}
		b.accounts[id] = bal
	}
	return bal
}

// Get returns a copy of the account balance. Unknown accounts are empty.
func (b *Book) Get(id types.AccountId) Balance {
	if bal, ok := b.accounts[id]; ok {
		return *bal
	}
	return Balance{}
}

func (b *Book) Free(id types.AccountId) types.Amount {
	return b.Get(id).Free
}

// Accounts returns every known account id in sorted order
func (b *Book) Accounts() []types.AccountId {
	ret := make([]types.AccountId, 0, len(b.accounts))
	for id := range b.accounts {
		ret = append(ret, id)
	}
	slices.Sort(ret)
	return ret
}

func (b *Book) CanCredit(id types.AccountId, amount types.Amount) error {
	cur := b.Get(id)
	if _, ok := cur.Free.CheckedAdd(amount); !ok {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"credit of %s overflows balance of %s",
			amount,
			id,
		)
	}
	if _, ok := cur.Free.SaturatingAdd(amount).CheckedAdd(cur.Reserved); !ok {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"credit of %s overflows total balance of %s",
			amount,
			id,
		)
	}
	return nil
}

func (b *Book) Credit(id types.AccountId, amount types.Amount) error {
	if err := b.CanCredit(id, amount); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	bal := b.entry(id)
	bal.Free += amount
	return nil
}

func (b *Book) Debit(id types.AccountId, amount types.Amount) error {
	cur := b.Get(id)
	if cur.Free < amount {
		return types.NewDomainError(
			types.KindInsufficientBalance,
			"free balance %s of %s is below %s",
			cur.Free,
			id,
			amount,
		)
	}
	if amount == 0 {
		return nil
	}
	b.entry(id).Free -= amount
	return nil
}

// Reserve moves funds from free to reserved
func (b *Book) Reserve(id types.AccountId, amount types.Amount) error {
	cur := b.Get(id)
	if cur.Free < amount {
		return types.NewDomainError(
			types.KindInsufficientBalance,
			"free balance %s of %s cannot cover reservation of %s",
			cur.Free,
			id,
			amount,
		)
	}
	if amount == 0 {
		return nil
	}
	bal := b.entry(id)
	bal.Free -= amount
	bal.Reserved += amount
	return nil
}

// Unreserve moves funds from reserved back to free. Releasing more than is
// reserved is an invariant violation.
func (b *Book) Unreserve(id types.AccountId, amount types.Amount) error {
	cur := b.Get(id)
	if cur.Reserved < amount {
		return types.NewInvariantError(
			"unreserve of %s exceeds reserved balance %s of %s",
			amount,
			cur.Reserved,
			id,
		)
	}
	if amount == 0 {
		return nil
	}
	bal := b.entry(id)
	bal.Reserved -= amount
	bal.Free += amount
	return nil
}

// Slash removes reserved funds from the account entirely
func (b *Book) Slash(id types.AccountId, amount types.Amount) error {
	cur := b.Get(id)
	if cur.Reserved < amount {
		return types.NewInvariantError(
			"slash of %s exceeds reserved balance %s of %s",
			amount,
			cur.Reserved,
			id,
		)
	}
	if amount == 0 {
		return nil
	}
	b.entry(id).Reserved -= amount
	return nil
}
