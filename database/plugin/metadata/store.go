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
package metadata

import (
	"gorm.io/gorm"

	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/database/plugin/metadata/sqlite"
	"github.com/ikubchain/clubledger/database/types"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitSeq() (uint64, error)
	SetCommitSeq(uint64, types.Txn) error
	Transaction() types.Txn

	// Projection
	ApplyProjection(models.Projection, types.Txn) error
	AddAction(*models.Action, types.Txn) error
	SetTip(uint64, uint64, types.Txn) error
	Reset(types.Txn) error

	// Queries
	GetTip(types.Txn) (models.Tip, error)
	GetActions(uint64, int, types.Txn) ([]models.Action, error)
}

var _ MetadataStore = (*sqlite.MetadataStoreSqlite)(nil)

// New returns a sqlite metadata store
func New(opts ...sqlite.SqliteOptionFunc) (MetadataStore, error) {
	return sqlite.New(opts...)
}
