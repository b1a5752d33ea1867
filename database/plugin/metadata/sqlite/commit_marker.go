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
package sqlite

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ikubchain/clubledger/database/types"
)

const (
	commitMarkerRowId = 1
)

// CommitMarker represents the sqlite table used to track the action sequence
// of the last coordinated commit
type CommitMarker struct {
	ID  uint `gorm:"primarykey"`
	Seq uint64
}

func (CommitMarker) TableName() string {
	return "commit_marker"
}

func (d *MetadataStoreSqlite) GetCommitSeq() (uint64, error) {
	var tmpCommitMarker CommitMarker
	result := d.DB().First(&tmpCommitMarker)
	if result.Error != nil {
		// It's not an error if there's no records found
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return tmpCommitMarker.Seq, nil
}

func (d *MetadataStoreSqlite) SetCommitSeq(
	seq uint64,
	txn types.Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpCommitMarker := CommitMarker{
		ID:  commitMarkerRowId,
		Seq: seq,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seq"}),
	}).Create(&tmpCommitMarker)
	return result.Error
}
