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

package models

import "time"

// Request status values. A request only ever moves from pending to
// completed; there is no failed state, an unfulfillable request
// stays pending for retry.
const (
	RequestStatusPending   = "pending"
	RequestStatusCompleted = "completed"
)

// MigrateModels is the list of model objects for database migration
var MigrateModels = []any{
	&CertificateRequest{},
	&AddressBinding{},
	&CertificateRecord{},
	&ViolationRecord{},
	&Course{},
}

// CertificateRequest tracks one certificate issuance request from
// creation through completion.
type CertificateRequest struct {
	ID            string    `gorm:"primaryKey;size:36"`
	StudentID     string    `gorm:"index:idx_request_student_course;size:64"`
	CourseID      string    `gorm:"index:idx_request_student_course;size:64"`
	EducatorID    string    `gorm:"index;size:64"`
	WalletAddress string    `gorm:"size:128"`
	Status        string    `gorm:"index;size:16"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (CertificateRequest) TableName() string {
	return "certificate_request"
}

// AddressBinding associates a learner wallet with a course and the
// educator wallet in effect at binding time. Rows are immutable once
// created.
type AddressBinding struct {
	ID             uint      `gorm:"primaryKey"`
	WalletAddress  string    `gorm:"size:128"`
	CourseID       string    `gorm:"uniqueIndex:idx_binding_course_student;size:64"`
	StudentID      string    `gorm:"uniqueIndex:idx_binding_course_student;size:64"`
	EducatorWallet string    `gorm:"size:128"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (AddressBinding) TableName() string {
	return "address_binding"
}

// CertificateRecord is the durable record of a completed mint.
// Insert-only; never updated, never deleted.
type CertificateRecord struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          string    `gorm:"uniqueIndex:idx_record_user_course;size:64"`
	CourseID        string    `gorm:"uniqueIndex:idx_record_user_course;size:64"`
	MintUserID      string    `gorm:"size:64"`
	PolicyID        string    `gorm:"index;size:64"`
	AssetName       string    `gorm:"size:64"`
	TransactionHash string    `gorm:"index;size:64"`
	IpfsHash        string    `gorm:"size:64"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (CertificateRecord) TableName() string {
	return "certificate_record"
}

// ViolationRecord tracks a recorded policy violation and whether a
// token has been minted for it. NftMinted flips exactly once, from
// false to true.
type ViolationRecord struct {
	ID              string    `gorm:"primaryKey;size:36"`
	StudentID       string    `gorm:"index;size:64"`
	CourseID        string    `gorm:"index;size:64"`
	EducatorID      string    `gorm:"size:64"`
	ViolationType   string    `gorm:"size:64"`
	WalletAddress   string    `gorm:"size:128"`
	NftMinted       bool      `gorm:"index"`
	PolicyID        string    `gorm:"size:64"`
	TransactionHash string    `gorm:"size:64"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (ViolationRecord) TableName() string {
	return "violation_record"
}

// Course mirrors the course rows owned by the surrounding platform.
// This subsystem only reads them for ownership verification; course
// management itself lives elsewhere.
type Course struct {
	ID         string    `gorm:"primaryKey;size:64"`
	EducatorID string    `gorm:"index;size:64"`
	Title      string    `gorm:"size:256"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Course) TableName() string {
	return "course"
}
