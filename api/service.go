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

package api

import (
	"context"

	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/verify"
	"github.com/blinklabs-io/credmint/wallet"
)

// MintParams carries everything needed to assemble one certificate
// mint. The wallet snapshot is the client's reported UTXO state.
type MintParams struct {
	RequestId      string
	StudentId      string
	CourseId       string
	EducatorId     string
	EducatorWallet string
	Document       metadata.Document
	Wallet         *wallet.Snapshot
}

// BatchMintParams carries a batch of certificate mints funded by one
// wallet
type BatchMintParams struct {
	EducatorId     string
	EducatorWallet string
	Items          []BatchMintItem
	Wallet         *wallet.Snapshot
}

// BatchMintItem is one certificate inside a batch
type BatchMintItem struct {
	RequestId string
	StudentId string
	CourseId  string
	Document  metadata.Document
}

// RecordMintParams reports a signed and submitted transaction back to
// the server for durable recording
type RecordMintParams struct {
	RequestId       string
	StudentId       string
	CourseId        string
	EducatorId      string
	AssetName       string
	TransactionHash string
	IpfsHash        string
}

// StatusInfo is the registry and record state for one (student,
// course) pair
type StatusInfo struct {
	Request *models.CertificateRequest
	Record  *models.CertificateRecord
}

// Service is the application surface the API server exposes over HTTP
type Service interface {
	CreateRequest(
		ctx context.Context,
		studentId string,
		courseId string,
		educatorId string,
		walletAddress string,
	) (*models.CertificateRequest, error)
	Status(
		ctx context.Context,
		studentId string,
		courseId string,
	) (*StatusInfo, error)
	BindAddress(
		ctx context.Context,
		courseId string,
		studentId string,
		walletAddress string,
		educatorWallet string,
	) error
	BuildMint(
		ctx context.Context,
		params MintParams,
	) (*txbuilder.UnsignedTx, error)
	BuildBatchMint(
		ctx context.Context,
		params BatchMintParams,
	) (*txbuilder.BatchResult, error)
	RecordMint(ctx context.Context, params RecordMintParams) error
	Verify(
		ctx context.Context,
		policyId string,
		txHash string,
	) ([]verify.View, error)
}
