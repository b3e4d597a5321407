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

// Package registry tracks certificate requests from creation through
// completion. A request moves from pending to completed exactly once,
// and only after the corresponding mint record has been persisted.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/event"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	RequestCreatedEventType   event.EventType = "registry.request_created"
	RequestCompletedEventType event.EventType = "registry.request_completed"
)

var (
	// ErrAlreadyCompleted is returned when completing a request that is
	// no longer pending
	ErrAlreadyCompleted = errors.New("request already completed")
	// ErrNotRecorded is returned when completing a request before its
	// mint record has been persisted
	ErrNotRecorded = errors.New("mint record not persisted")
)

// RequestCreatedEvent is the payload for RequestCreatedEventType
type RequestCreatedEvent struct {
	RequestId string
	StudentId string
	CourseId  string
}

// RequestCompletedEvent is the payload for RequestCompletedEventType
type RequestCompletedEvent struct {
	RequestId string
	StudentId string
	CourseId  string
}

// Store is the subset of database operations used by the registry
type Store interface {
	CreateCertificateRequest(
		ctx context.Context,
		request *models.CertificateRequest,
	) error
	CertificateRequest(
		ctx context.Context,
		studentId string,
		courseId string,
	) (*models.CertificateRequest, error)
	CertificateRequestById(
		ctx context.Context,
		id string,
	) (*models.CertificateRequest, error)
	PendingCertificateRequests(
		ctx context.Context,
		ids []string,
	) ([]models.CertificateRequest, error)
	CompletePendingCertificateRequest(
		ctx context.Context,
		id string,
	) (int64, error)
	CertificateRecordExists(
		ctx context.Context,
		userId string,
		courseId string,
	) (bool, error)
	CreateViolationRecord(
		ctx context.Context,
		record *models.ViolationRecord,
	) error
	ViolationRecordById(
		ctx context.Context,
		id string,
	) (*models.ViolationRecord, error)
	MarkViolationMinted(
		ctx context.Context,
		id string,
		policyId string,
		transactionHash string,
	) (int64, error)
}

type Config struct {
	Store        Store
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

type Registry struct {
	config  Config
	logger  *slog.Logger
	metrics registryMetrics
}

type registryMetrics struct {
	requestsCreated   prometheus.Counter
	requestsCompleted prometheus.Counter
}

func New(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(cfg.PromRegistry)
	return &Registry{
		config: cfg,
		logger: cfg.Logger.With("component", "registry"),
		metrics: registryMetrics{
			requestsCreated: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "credmint_registry_requests_created_total",
					Help: "total certificate requests created",
				},
			),
			requestsCompleted: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "credmint_registry_requests_completed_total",
					Help: "total certificate requests completed",
				},
			),
		},
	}
}

// Create registers a new pending certificate request and returns it.
// Multiple pending requests for the same (student, course) pair are
// allowed, most recent wins on lookup.
func (r *Registry) Create(
	ctx context.Context,
	studentId string,
	courseId string,
	educatorId string,
	walletAddress string,
) (*models.CertificateRequest, error) {
	if studentId == "" || courseId == "" {
		return nil, errors.New("student and course ids are required")
	}
	request := &models.CertificateRequest{
		ID:            uuid.NewString(),
		StudentID:     studentId,
		CourseID:      courseId,
		EducatorID:    educatorId,
		WalletAddress: walletAddress,
		Status:        models.RequestStatusPending,
	}
	if err := r.config.Store.CreateCertificateRequest(ctx, request); err != nil {
		return nil, err
	}
	r.metrics.requestsCreated.Inc()
	if r.config.EventBus != nil {
		r.config.EventBus.Publish(
			RequestCreatedEventType,
			event.NewEvent(
				RequestCreatedEventType,
				RequestCreatedEvent{
					RequestId: request.ID,
					StudentId: studentId,
					CourseId:  courseId,
				},
			),
		)
	}
	r.logger.Info(
		"certificate request created",
		"request_id", request.ID,
		"course_id", courseId,
	)
	return request, nil
}

// Query returns the most recent request for a (student, course) pair
func (r *Registry) Query(
	ctx context.Context,
	studentId string,
	courseId string,
) (*models.CertificateRequest, error) {
	return r.config.Store.CertificateRequest(ctx, studentId, courseId)
}

// QueryById returns a request by its id
func (r *Registry) QueryById(
	ctx context.Context,
	id string,
) (*models.CertificateRequest, error) {
	return r.config.Store.CertificateRequestById(ctx, id)
}

// Pending filters the given request ids down to those still pending,
// preserving the caller's order
func (r *Registry) Pending(
	ctx context.Context,
	ids []string,
) ([]models.CertificateRequest, error) {
	return r.config.Store.PendingCertificateRequests(ctx, ids)
}

// MarkCompleted transitions a request from pending to completed. It
// refuses to run before the mint record for the request exists, and
// returns ErrAlreadyCompleted when the request is not pending.
func (r *Registry) MarkCompleted(ctx context.Context, id string) error {
	request, err := r.config.Store.CertificateRequestById(ctx, id)
	if err != nil {
		return err
	}
	recorded, err := r.config.Store.CertificateRecordExists(
		ctx,
		request.StudentID,
		request.CourseID,
	)
	if err != nil {
		return err
	}
	if !recorded {
		return fmt.Errorf("%w: request %s", ErrNotRecorded, id)
	}
	rows, err := r.config.Store.CompletePendingCertificateRequest(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: request %s", ErrAlreadyCompleted, id)
	}
	r.metrics.requestsCompleted.Inc()
	if r.config.EventBus != nil {
		r.config.EventBus.Publish(
			RequestCompletedEventType,
			event.NewEvent(
				RequestCompletedEventType,
				RequestCompletedEvent{
					RequestId: request.ID,
					StudentId: request.StudentID,
					CourseId:  request.CourseID,
				},
			),
		)
	}
	r.logger.Info("certificate request completed", "request_id", id)
	return nil
}

// CreateViolation registers a violation record awaiting its NFT mint
func (r *Registry) CreateViolation(
	ctx context.Context,
	studentId string,
	courseId string,
	educatorId string,
	violationType string,
	walletAddress string,
) (*models.ViolationRecord, error) {
	if studentId == "" || courseId == "" || violationType == "" {
		return nil, errors.New(
			"student, course, and violation type are required",
		)
	}
	record := &models.ViolationRecord{
		ID:            uuid.NewString(),
		StudentID:     studentId,
		CourseID:      courseId,
		EducatorID:    educatorId,
		ViolationType: violationType,
		WalletAddress: walletAddress,
	}
	if err := r.config.Store.CreateViolationRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Violation returns a violation record by its id
func (r *Registry) Violation(
	ctx context.Context,
	id string,
) (*models.ViolationRecord, error) {
	return r.config.Store.ViolationRecordById(ctx, id)
}

// MarkViolationMinted records the mint transaction for a violation.
// Marking twice returns ErrAlreadyCompleted.
func (r *Registry) MarkViolationMinted(
	ctx context.Context,
	id string,
	policyId string,
	transactionHash string,
) error {
	rows, err := r.config.Store.MarkViolationMinted(
		ctx,
		id,
		policyId,
		transactionHash,
	)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: violation %s", ErrAlreadyCompleted, id)
	}
	return nil
}
