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

// Package records is the insert-only store of completed mints. A
// (student, course) pair gets at most one record, and a record is the
// durable proof that a mint transaction reached the chain.
package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/event"
)

const MintRecordedEventType event.EventType = "records.mint_recorded"

// ErrAlreadyRecorded is returned when a mint record already exists for
// a (student, course) pair
var ErrAlreadyRecorded = errors.New("mint already recorded")

// MintRecordedEvent is the payload for MintRecordedEventType
type MintRecordedEvent struct {
	UserId          string
	CourseId        string
	PolicyId        string
	AssetName       string
	TransactionHash string
}

// Store is the subset of database operations used by the record store
type Store interface {
	CreateCertificateRecordIfAbsent(
		ctx context.Context,
		record *models.CertificateRecord,
	) (bool, error)
	CertificateRecord(
		ctx context.Context,
		userId string,
		courseId string,
	) (*models.CertificateRecord, error)
	CertificateRecordExists(
		ctx context.Context,
		userId string,
		courseId string,
	) (bool, error)
	CertificateRecordByTransaction(
		ctx context.Context,
		policyId string,
		transactionHash string,
	) (*models.CertificateRecord, error)
}

type Config struct {
	Store    Store
	EventBus *event.EventBus
	Logger   *slog.Logger
}

type RecordStore struct {
	config Config
	logger *slog.Logger
}

func New(cfg Config) *RecordStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &RecordStore{
		config: cfg,
		logger: cfg.Logger.With("component", "records"),
	}
}

// Record persists a completed mint. Recording the same (student,
// course) pair twice returns ErrAlreadyRecorded and leaves the
// original row untouched.
func (r *RecordStore) Record(
	ctx context.Context,
	record *models.CertificateRecord,
) error {
	if record.UserID == "" || record.CourseID == "" {
		return errors.New("user and course ids are required")
	}
	if record.TransactionHash == "" {
		return errors.New("transaction hash is required")
	}
	created, err := r.config.Store.CreateCertificateRecordIfAbsent(
		ctx,
		record,
	)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf(
			"%w: user %s course %s",
			ErrAlreadyRecorded,
			record.UserID,
			record.CourseID,
		)
	}
	if r.config.EventBus != nil {
		r.config.EventBus.Publish(
			MintRecordedEventType,
			event.NewEvent(
				MintRecordedEventType,
				MintRecordedEvent{
					UserId:          record.UserID,
					CourseId:        record.CourseID,
					PolicyId:        record.PolicyID,
					AssetName:       record.AssetName,
					TransactionHash: record.TransactionHash,
				},
			),
		)
	}
	r.logger.Info(
		"mint recorded",
		"user_id", record.UserID,
		"course_id", record.CourseID,
		"tx_hash", record.TransactionHash,
	)
	return nil
}

// Exists reports whether a mint record exists for a (student, course)
// pair
func (r *RecordStore) Exists(
	ctx context.Context,
	userId string,
	courseId string,
) (bool, error) {
	return r.config.Store.CertificateRecordExists(ctx, userId, courseId)
}

// Get returns the mint record for a (student, course) pair
func (r *RecordStore) Get(
	ctx context.Context,
	userId string,
	courseId string,
) (*models.CertificateRecord, error) {
	return r.config.Store.CertificateRecord(ctx, userId, courseId)
}

// GetByTransaction returns the mint record for a (policy, transaction)
// pair
func (r *RecordStore) GetByTransaction(
	ctx context.Context,
	policyId string,
	transactionHash string,
) (*models.CertificateRecord, error) {
	return r.config.Store.CertificateRecordByTransaction(
		ctx,
		policyId,
		transactionHash,
	)
}
