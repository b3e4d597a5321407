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

func (d *Database) CreateCertificateRequest(
	ctx context.Context,
	req *models.CertificateRequest,
) error {
	result := d.db.WithContext(ctx).Create(req)
	return result.Error
}

// CertificateRequest returns the most recent request for the given
// (student, course) pair.
func (d *Database) CertificateRequest(
	ctx context.Context,
	studentId string,
	courseId string,
) (*models.CertificateRequest, error) {
	var req models.CertificateRequest
	result := d.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentId, courseId).
		Order("created_at DESC").
		First(&req)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &req, nil
}

func (d *Database) CertificateRequestById(
	ctx context.Context,
	id string,
) (*models.CertificateRequest, error) {
	var req models.CertificateRequest
	result := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&req)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &req, nil
}

// PendingCertificateRequests returns pending requests for the given
// ids, preserving request-id order.
func (d *Database) PendingCertificateRequests(
	ctx context.Context,
	ids []string,
) ([]models.CertificateRequest, error) {
	var reqs []models.CertificateRequest
	result := d.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, models.RequestStatusPending).
		Find(&reqs)
	if result.Error != nil {
		return nil, result.Error
	}
	// Preserve caller ordering
	byId := make(map[string]models.CertificateRequest, len(reqs))
	for _, req := range reqs {
		byId[req.ID] = req
	}
	ordered := make([]models.CertificateRequest, 0, len(reqs))
	for _, id := range ids {
		if req, ok := byId[id]; ok {
			ordered = append(ordered, req)
		}
	}
	return ordered, nil
}

// CompletePendingCertificateRequest transitions a request from
// pending to completed. Returns the number of rows updated; zero
// means the request was missing or already completed.
func (d *Database) CompletePendingCertificateRequest(
	ctx context.Context,
	id string,
) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&models.CertificateRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Update("status", models.RequestStatusCompleted)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
