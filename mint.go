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

package credmint

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/credmint/api"
	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/registry"
	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/verify"
	"github.com/blinklabs-io/credmint/wallet"
)

// CreateRequest registers a pending certificate request.
func (s *Service) CreateRequest(
	ctx context.Context,
	studentId string,
	courseId string,
	educatorId string,
	walletAddress string,
) (*models.CertificateRequest, error) {
	return s.registry.Create(
		ctx,
		studentId,
		courseId,
		educatorId,
		walletAddress,
	)
}

// Status reports the request and mint record state for a (student,
// course) pair.
func (s *Service) Status(
	ctx context.Context,
	studentId string,
	courseId string,
) (*api.StatusInfo, error) {
	info := &api.StatusInfo{}
	request, err := s.registry.Query(ctx, studentId, courseId)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	info.Request = request
	record, err := s.records.Get(ctx, studentId, courseId)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	info.Record = record
	if info.Request == nil && info.Record == nil {
		return nil, database.ErrNotFound
	}
	return info, nil
}

// BindAddress binds a student wallet address for a course.
func (s *Service) BindAddress(
	ctx context.Context,
	courseId string,
	studentId string,
	walletAddress string,
	educatorWallet string,
) error {
	return s.bindings.Bind(
		ctx,
		courseId,
		studentId,
		walletAddress,
		educatorWallet,
	)
}

// BuildMint assembles an unsigned certificate mint transaction for
// client signing. The recipient address comes from the verified
// course binding, never from the request itself.
func (s *Service) BuildMint(
	ctx context.Context,
	params api.MintParams,
) (*txbuilder.UnsignedTx, error) {
	return s.buildMintWith(ctx, params.Wallet, params)
}

// buildMintWith assembles the unsigned mint against the given wallet
// state source. The REST path supplies a client-reported snapshot;
// the programmatic path supplies the live wallet itself.
func (s *Service) buildMintWith(
	ctx context.Context,
	w wallet.Wallet,
	params api.MintParams,
) (*txbuilder.UnsignedTx, error) {
	recipient, err := s.bindings.Verify(
		ctx,
		params.CourseId,
		params.StudentId,
		params.EducatorId,
		params.EducatorWallet,
	)
	if err != nil {
		return nil, err
	}
	assetName, err := s.scheme.CertificateAssetName(
		params.CourseId,
		params.StudentId,
	)
	if err != nil {
		return nil, err
	}
	currentSlot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}
	return s.builder.BuildMint(
		ctx,
		w,
		txbuilder.MintRequest{
			RequestId:        params.RequestId,
			StudentId:        params.StudentId,
			CourseId:         params.CourseId,
			AssetName:        assetName,
			RecipientAddress: recipient,
			Document:         params.Document,
		},
		currentSlot,
	)
}

// BuildBatchMint assembles a single transaction minting certificates
// for every eligible item in the batch.
func (s *Service) BuildBatchMint(
	ctx context.Context,
	params api.BatchMintParams,
) (*txbuilder.BatchResult, error) {
	currentSlot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}
	requests := make([]txbuilder.MintRequest, 0, len(params.Items))
	for _, item := range params.Items {
		request := txbuilder.MintRequest{
			RequestId: item.RequestId,
			StudentId: item.StudentId,
			CourseId:  item.CourseId,
			Document:  item.Document,
		}
		// Resolve binding and asset name up front; failures carry
		// through as per-item rejections inside the builder
		recipient, err := s.bindings.Verify(
			ctx,
			item.CourseId,
			item.StudentId,
			params.EducatorId,
			params.EducatorWallet,
		)
		if err != nil {
			request.PrecheckErr = err
		} else {
			request.RecipientAddress = recipient
		}
		assetName, err := s.scheme.CertificateAssetName(
			item.CourseId,
			item.StudentId,
		)
		if err != nil {
			if request.PrecheckErr == nil {
				request.PrecheckErr = err
			}
		} else {
			request.AssetName = assetName
		}
		requests = append(requests, request)
	}
	return s.builder.BuildBatchMint(
		ctx,
		params.Wallet,
		requests,
		currentSlot,
	)
}

// RecordMint persists a submitted mint transaction and completes the
// originating request. The record always lands before the request
// flips to completed.
func (s *Service) RecordMint(
	ctx context.Context,
	params api.RecordMintParams,
) error {
	if err := s.records.Record(ctx, &models.CertificateRecord{
		UserID:          params.StudentId,
		CourseID:        params.CourseId,
		MintUserID:      params.EducatorId,
		PolicyID:        s.PolicyIdHex(),
		AssetName:       params.AssetName,
		TransactionHash: params.TransactionHash,
		IpfsHash:        params.IpfsHash,
	}); err != nil {
		return err
	}
	if params.RequestId != "" {
		if err := s.registry.MarkCompleted(
			ctx,
			params.RequestId,
		); err != nil {
			return err
		}
	}
	return nil
}

// Verify resolves a public (policy id, transaction hash) pair to its
// decoded certificate metadata.
func (s *Service) Verify(
	ctx context.Context,
	policyId string,
	txHash string,
) ([]verify.View, error) {
	return s.verifier.Verify(ctx, policyId, txHash)
}

// Mint runs the full flow against a live wallet: assemble, sign,
// submit, record, and complete the request. Failures before
// submission leave no durable state behind.
func (s *Service) Mint(
	ctx context.Context,
	w wallet.Wallet,
	params api.MintParams,
) (string, error) {
	unsigned, err := s.buildMintWith(ctx, w, params)
	if err != nil {
		return "", err
	}
	txHash, err := s.orchestrator.Execute(ctx, unsigned, w)
	if err != nil {
		return "", err
	}
	if len(unsigned.AssetNames) != 1 {
		return "", fmt.Errorf(
			"expected one asset, got %d",
			len(unsigned.AssetNames),
		)
	}
	if err := s.RecordMint(ctx, api.RecordMintParams{
		RequestId:       params.RequestId,
		StudentId:       params.StudentId,
		CourseId:        params.CourseId,
		EducatorId:      params.EducatorId,
		AssetName:       unsigned.AssetNames[0],
		TransactionHash: txHash,
	}); err != nil {
		return "", err
	}
	return txHash, nil
}

// CreateViolation registers a policy violation awaiting its token
// mint.
func (s *Service) CreateViolation(
	ctx context.Context,
	studentId string,
	courseId string,
	educatorId string,
	violationType string,
	walletAddress string,
) (*models.ViolationRecord, error) {
	return s.registry.CreateViolation(
		ctx,
		studentId,
		courseId,
		educatorId,
		violationType,
		walletAddress,
	)
}

// MintViolation mints the token for a recorded violation through the
// same assembly and signing pipeline as certificates. The violation
// flips to minted exactly once; minting an already minted violation
// is refused before any wallet interaction.
func (s *Service) MintViolation(
	ctx context.Context,
	w wallet.Wallet,
	violationId string,
	educatorWallet string,
	doc metadata.Document,
) (string, error) {
	violation, err := s.registry.Violation(ctx, violationId)
	if err != nil {
		return "", err
	}
	if violation.NftMinted {
		return "", fmt.Errorf(
			"%w: violation %s",
			registry.ErrAlreadyCompleted,
			violationId,
		)
	}
	recipient, err := s.bindings.Verify(
		ctx,
		violation.CourseID,
		violation.StudentID,
		violation.EducatorID,
		educatorWallet,
	)
	if err != nil {
		return "", err
	}
	assetName, err := s.scheme.ViolationAssetName(
		violation.CourseID,
		violation.StudentID,
		violation.ViolationType,
	)
	if err != nil {
		return "", err
	}
	currentSlot, err := s.currentSlot(ctx)
	if err != nil {
		return "", err
	}
	unsigned, err := s.builder.BuildMint(
		ctx,
		w,
		txbuilder.MintRequest{
			AssetName:        assetName,
			RecipientAddress: recipient,
			Document:         doc,
		},
		currentSlot,
	)
	if err != nil {
		return "", err
	}
	txHash, err := s.orchestrator.Execute(ctx, unsigned, w)
	if err != nil {
		return "", err
	}
	if err := s.registry.MarkViolationMinted(
		ctx,
		violationId,
		s.PolicyIdHex(),
		txHash,
	); err != nil {
		return "", err
	}
	return txHash, nil
}

// currentSlot reads the chain tip from the indexer.
func (s *Service) currentSlot(ctx context.Context) (uint64, error) {
	block, err := s.chain.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch chain tip: %w", err)
	}
	return block.Slot, nil
}
