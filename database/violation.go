// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package database

import (
	"context"
	"errors"

	"github.com/blinklabs-io/credmint/database/models"
	"gorm.io/gorm"
)

func (d *Database) CreateViolationRecord(
	ctx context.Context,
	record *models.ViolationRecord,
) error {
	result := d.db.WithContext(ctx).Create(record)
	return result.Error
}

func (d *Database) ViolationRecordById(
	ctx context.Context,
	id string,
) (*models.ViolationRecord, error) {
	var record models.ViolationRecord
	result := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &record, nil
}

// MarkViolationMinted flips the nft_minted flag from false to true
// and records the mint coordinates. Returns the number of rows
// updated; zero means the violation was missing or already minted.
func (d *Database) MarkViolationMinted(
	ctx context.Context,
	id string,
	policyId string,
	transactionHash string,
) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&models.ViolationRecord{}).
		Where("id = ? AND nft_minted = ?", id, false).
		Updates(map[string]any{
			"nft_minted":       true,
			"policy_id":        policyId,
			"transaction_hash": transactionHash,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
