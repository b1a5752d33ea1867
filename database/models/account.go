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
package models

import (
	"github.com/ikubchain/clubledger/balance"
	"github.com/ikubchain/clubledger/database/types"
	ltypes "github.com/ikubchain/clubledger/types"
)

type Account struct {
	AccountId string `gorm:"primarykey;size:64"`
	Free      types.Uint64
	Reserved  types.Uint64
}

func (Account) TableName() string {
	return "account"
}

func AccountToModel(id ltypes.AccountId, bal balance.Balance) Account {
	return Account{
		AccountId: string(id),
		Free:      types.Uint64(bal.Free),
		Reserved:  types.Uint64(bal.Reserved),
	}
}
