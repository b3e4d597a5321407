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
	"gorm.io/gorm/clause"
)

func (d *Database) Course(
	ctx context.Context,
	courseId string,
) (*models.Course, error) {
	var course models.Course
	result := d.db.WithContext(ctx).
		Where("id = ?", courseId).
		First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &course, nil
}

// UpsertCourse mirrors a course row from the surrounding platform.
func (d *Database) UpsertCourse(
	ctx context.Context,
	course *models.Course,
) error {
	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(
				[]string{"educator_id", "title"},
			),
		}).
		Create(course)
	return result.Error
}
