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
package models

// Action is the queryable copy of an action log entry. The authoritative
// record lives in the blob store.
type Action struct {
	ActionId string `gorm:"uniqueIndex;size:36"`
	Type     string `gorm:"index"`
	Caller   string `gorm:"index"`
	Payload  []byte
	Seq      uint64 `gorm:"primarykey;autoIncrement:false"`
	Block    uint64 `gorm:"index"`
}

func (Action) TableName() string {
	return "action"
}

// Tip tracks the latest applied action and the current block
type Tip struct {
	ID    uint `gorm:"primarykey"`
	Seq   uint64
	Block uint64
}

func (Tip) TableName() string {
	return "tip"
}
