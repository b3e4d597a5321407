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

// Package binding records which wallet address a student uses for a
// given course and checks educator ownership before any mint touches
// that address.
package binding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/database/models"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

var (
	// ErrBindingConflict is returned when a (course, student) pair is
	// already bound to a different wallet address
	ErrBindingConflict = errors.New("address already bound")
	// ErrOwnershipMismatch is returned when the caller does not own the
	// course or binding they are operating on
	ErrOwnershipMismatch = errors.New("ownership mismatch")
)

// Store is the subset of database operations used by the binding
// service
type Store interface {
	AddressBinding(
		ctx context.Context,
		courseId string,
		studentId string,
	) (*models.AddressBinding, error)
	CreateAddressBinding(
		ctx context.Context,
		binding *models.AddressBinding,
	) error
}

// CourseDirectory resolves course ownership
type CourseDirectory interface {
	Course(ctx context.Context, courseId string) (*models.Course, error)
}

type Config struct {
	Store   Store
	Courses CourseDirectory
	Logger  *slog.Logger
}

type Service struct {
	config Config
	logger *slog.Logger
}

func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		config: cfg,
		logger: cfg.Logger.With("component", "binding"),
	}
}

// Bind associates a student wallet address with a (course, student)
// pair. Re-binding the same address is a no-op. Binding a different
// address for an existing pair returns ErrBindingConflict.
func (s *Service) Bind(
	ctx context.Context,
	courseId string,
	studentId string,
	walletAddress string,
	educatorWallet string,
) error {
	if courseId == "" || studentId == "" {
		return errors.New("course and student ids are required")
	}
	if _, err := lcommon.NewAddress(walletAddress); err != nil {
		return fmt.Errorf("invalid wallet address: %w", err)
	}
	if educatorWallet != "" {
		if _, err := lcommon.NewAddress(educatorWallet); err != nil {
			return fmt.Errorf("invalid educator wallet address: %w", err)
		}
	}
	existing, err := s.config.Store.AddressBinding(ctx, courseId, studentId)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.WalletAddress == walletAddress {
			return nil
		}
		return fmt.Errorf(
			"%w: course %s student %s",
			ErrBindingConflict,
			courseId,
			studentId,
		)
	}
	if err := s.config.Store.CreateAddressBinding(
		ctx,
		&models.AddressBinding{
			WalletAddress:  walletAddress,
			CourseID:       courseId,
			StudentID:      studentId,
			EducatorWallet: educatorWallet,
		},
	); err != nil {
		return err
	}
	s.logger.Info(
		"address bound",
		"course_id", courseId,
		"student_id", studentId,
	)
	return nil
}

// Lookup returns the wallet address bound to a (course, student) pair,
// or database.ErrNotFound when no binding exists.
func (s *Service) Lookup(
	ctx context.Context,
	courseId string,
	studentId string,
) (string, error) {
	binding, err := s.config.Store.AddressBinding(ctx, courseId, studentId)
	if err != nil {
		return "", err
	}
	return binding.WalletAddress, nil
}

// Verify checks that the educator identified by educatorId, operating
// from educatorWallet, owns the course and matches the educator wallet
// recorded on the binding. Any failure to resolve either side denies
// the operation.
func (s *Service) Verify(
	ctx context.Context,
	courseId string,
	studentId string,
	educatorId string,
	educatorWallet string,
) (string, error) {
	course, err := s.config.Courses.Course(ctx, courseId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", fmt.Errorf(
				"%w: unknown course %s",
				ErrOwnershipMismatch,
				courseId,
			)
		}
		return "", err
	}
	if course.EducatorID != educatorId {
		return "", fmt.Errorf(
			"%w: course %s is not owned by educator %s",
			ErrOwnershipMismatch,
			courseId,
			educatorId,
		)
	}
	bound, err := s.config.Store.AddressBinding(ctx, courseId, studentId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", fmt.Errorf(
				"%w: no address bound for course %s student %s",
				ErrOwnershipMismatch,
				courseId,
				studentId,
			)
		}
		return "", err
	}
	// A binding without a recorded educator wallet cannot prove
	// ownership, so it fails the check like any other mismatch.
	if bound.EducatorWallet == "" || bound.EducatorWallet != educatorWallet {
		return "", fmt.Errorf(
			"%w: binding for course %s student %s belongs to a different educator wallet",
			ErrOwnershipMismatch,
			courseId,
			studentId,
		)
	}
	return bound.WalletAddress, nil
}
