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
package sqlite

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/database/types"
)

const tipRowId = 1

// ApplyProjection writes the row changes of one action
func (d *MetadataStoreSqlite) ApplyProjection(
	projection models.Projection,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	for _, row := range projection.Upserts {
		result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(row)
		if result.Error != nil {
			return fmt.Errorf("upsert %T: %w", row, result.Error)
		}
	}
	for _, row := range projection.Deletes {
		if result := db.Delete(row); result.Error != nil {
			return fmt.Errorf("delete %T: %w", row, result.Error)
		}
	}
	if d.metrics != nil {
		d.metrics.projectionRows.Add(float64(projection.Len()))
	}
	return nil
}

// AddAction records an action log entry
func (d *MetadataStoreSqlite) AddAction(
	action *models.Action,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seq"}},
		DoNothing: true,
	}).Create(action)
	return result.Error
}

// SetTip records the latest applied action and block
func (d *MetadataStoreSqlite) SetTip(seq uint64, block uint64, txn types.Txn) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpTip := models.Tip{
		ID:    tipRowId,
		Seq:   seq,
		Block: block,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seq", "block"}),
	}).Create(&tmpTip)
	return result.Error
}

// GetTip returns the recorded tip, or a zero tip when nothing was applied
func (d *MetadataStoreSqlite) GetTip(txn types.Txn) (models.Tip, error) {
	var ret models.Tip
	db, err := d.resolveDB(txn)
	if err != nil {
		return ret, err
	}
	result := db.First(&ret, tipRowId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return models.Tip{}, nil
		}
		return ret, result.Error
	}
	return ret, nil
}

// GetActions returns up to limit log entries with a sequence above afterSeq,
// in sequence order
func (d *MetadataStoreSqlite) GetActions(
	afterSeq uint64,
	limit int,
	txn types.Txn,
) ([]models.Action, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Action
	result := db.Where("seq > ?", afterSeq).
		Order("seq").
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// Reset removes every projected row and the action copy so the projection
// can be rebuilt from the action log
func (d *MetadataStoreSqlite) Reset(txn types.Txn) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	tables := append(
		[]any{&models.Action{}, &models.Tip{}},
		models.ProjectionModels...,
	)
	for _, model := range tables {
		if result := db.Delete(model); result.Error != nil {
			return fmt.Errorf("reset %T: %w", model, result.Error)
		}
	}
	if d.metrics != nil {
		d.metrics.rebuilds.Inc()
	}
	return nil
}
