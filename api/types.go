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
	"github.com/blinklabs-io/credmint/metadata"
)

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// HealthResponse is the GET /health response
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// WalletStateRequest is the client-reported wallet state accompanying
// mint requests
type WalletStateRequest struct {
	Addresses  []string     `json:"addresses"`
	Utxos      []WalletUtxo `json:"utxos"`
	Collateral []WalletUtxo `json:"collateral"`
}

// WalletUtxo is one client-reported unspent output
type WalletUtxo struct {
	TxHash      string `json:"tx_hash"`
	OutputIndex int    `json:"output_index"`
	Address     string `json:"address"`
	Lovelace    uint64 `json:"lovelace,string"`
	HasAssets   bool   `json:"has_assets"`
}

// CreateRequestRequest is the POST /api/v1/requests body
type CreateRequestRequest struct {
	StudentId     string `json:"student_id"`
	CourseId      string `json:"course_id"`
	EducatorId    string `json:"educator_id"`
	WalletAddress string `json:"wallet_address"`
}

// RequestResponse describes a certificate request
type RequestResponse struct {
	RequestId     string `json:"request_id"`
	StudentId     string `json:"student_id"`
	CourseId      string `json:"course_id"`
	Status        string `json:"status"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// StatusResponse is the GET /api/v1/certificates/status response
type StatusResponse struct {
	Status          string `json:"status"`
	RequestId       string `json:"request_id,omitempty"`
	WalletAddress   string `json:"wallet_address,omitempty"`
	PolicyId        string `json:"policy_id,omitempty"`
	AssetName       string `json:"asset_name,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	ShareString     string `json:"share_string,omitempty"`
}

// BindRequest is the POST /api/v1/bindings body
type BindRequest struct {
	CourseId       string `json:"course_id"`
	StudentId      string `json:"student_id"`
	WalletAddress  string `json:"wallet_address"`
	EducatorWallet string `json:"educator_wallet"`
}

// MintRequestBody is the POST /api/v1/mint body
type MintRequestBody struct {
	RequestId      string             `json:"request_id"`
	StudentId      string             `json:"student_id"`
	CourseId       string             `json:"course_id"`
	EducatorId     string             `json:"educator_id"`
	EducatorWallet string             `json:"educator_wallet"`
	Document       metadata.Document  `json:"document"`
	Wallet         WalletStateRequest `json:"wallet"`
}

// UnsignedTxResponse returns an assembled transaction for client
// signing
type UnsignedTxResponse struct {
	TxBodyCbor  string   `json:"tx_body_cbor"`
	AuxDataCbor string   `json:"aux_data_cbor"`
	TxHash      string   `json:"tx_hash"`
	PolicyId    string   `json:"policy_id"`
	AssetNames  []string `json:"asset_names"`
	Fee         uint64   `json:"fee,string"`
}

// BatchMintRequestBody is the POST /api/v1/mint/batch body
type BatchMintRequestBody struct {
	EducatorId     string              `json:"educator_id"`
	EducatorWallet string              `json:"educator_wallet"`
	Items          []BatchMintItemBody `json:"items"`
	Wallet         WalletStateRequest  `json:"wallet"`
}

// BatchMintItemBody is one entry in a batch mint request
type BatchMintItemBody struct {
	RequestId string            `json:"request_id"`
	StudentId string            `json:"student_id"`
	CourseId  string            `json:"course_id"`
	Document  metadata.Document `json:"document"`
}

// BatchMintResponse partitions the batch result for the client
type BatchMintResponse struct {
	Unsigned UnsignedTxResponse `json:"unsigned_tx"`
	Eligible []int              `json:"eligible"`
	Rejected []RejectedItemBody `json:"rejected"`
}

// RejectedItemBody reports one excluded batch entry
type RejectedItemBody struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// RecordMintRequest is the POST /api/v1/mint/record body
type RecordMintRequest struct {
	RequestId       string `json:"request_id"`
	StudentId       string `json:"student_id"`
	CourseId        string `json:"course_id"`
	EducatorId      string `json:"educator_id"`
	AssetName       string `json:"asset_name"`
	TransactionHash string `json:"transaction_hash"`
	IpfsHash        string `json:"ipfs_hash,omitempty"`
}
