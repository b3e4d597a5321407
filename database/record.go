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

// CreateCertificateRecordIfAbsent inserts a mint record unless one
// already exists for the same (user, course) pair. Returns false
// without error when the record was already present; the existing
// row is never overwritten.
func (d *Database) CreateCertificateRecordIfAbsent(
	ctx context.Context,
	record *models.CertificateRecord,
) (bool, error) {
	created := false
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CertificateRecord
		result := tx.
			Where(
				"user_id = ? AND course_id = ?",
				record.UserID,
				record.CourseID,
			).
			First(&existing)
		if result.Error == nil {
			return nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if result := tx.Create(record); result.Error != nil {
			return result.Error
		}
		created = true
		return nil
	})
	return created, err
}

func (d *Database) CertificateRecord(
	ctx context.Context,
	userId string,
	courseId string,
) (*models.CertificateRecord, error) {
	var record models.CertificateRecord
	result := d.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userId, courseId).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &record, nil
}

func (d *Database) CertificateRecordExists(
	ctx context.Context,
	userId string,
	courseId string,
) (bool, error) {
	var count int64
	result := d.db.WithContext(ctx).
		Model(&models.CertificateRecord{}).
		Where("user_id = ? AND course_id = ?", userId, courseId).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// CertificateRecordByTransaction looks up a mint record by its
// on-chain coordinates.
func (d *Database) CertificateRecordByTransaction(
	ctx context.Context,
	policyId string,
	transactionHash string,
) (*models.CertificateRecord, error) {
	var record models.CertificateRecord
	result := d.db.WithContext(ctx).
		Where(
			"policy_id = ? AND transaction_hash = ?",
			policyId,
			transactionHash,
		).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &record, nil
}
