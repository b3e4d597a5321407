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

func (d *Database) AddressBinding(
	ctx context.Context,
	courseId string,
	studentId string,
) (*models.AddressBinding, error) {
	var binding models.AddressBinding
	result := d.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseId, studentId).
		First(&binding)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &binding, nil
}

func (d *Database) CreateAddressBinding(
	ctx context.Context,
	binding *models.AddressBinding,
) error {
	result := d.db.WithContext(ctx).Create(binding)
	return result.Error
}
