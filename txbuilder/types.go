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

package txbuilder

import (
	"github.com/blinklabs-io/credmint/metadata"
)

// Protocol parameter defaults for fee and minimum-value calculation.
// These match mainnet values and are overridable via Config.
const (
	DefaultMinFeeA         = 44
	DefaultMinFeeB         = 155381
	DefaultMinUtxoLovelace = 1_500_000
	DefaultTtlOffset       = 7200
	DefaultMaxBatchSize    = 25
	MaxCollateralInputs    = 3

	// feeSizeBuffer pads the estimated transaction size to absorb the
	// witness set and CBOR length drift between the fee passes
	feeSizeBuffer = 512
)

// MintRequest describes a single certificate NFT to mint
type MintRequest struct {
	RequestId        string
	StudentId        string
	CourseId         string
	AssetName        []byte
	RecipientAddress string
	Document         metadata.Document
	// PrecheckErr marks a request the caller already found
	// ineligible; the batch builder rejects it with this reason
	PrecheckErr error
}

// UnsignedTx is a fully assembled transaction body awaiting a wallet
// signature
type UnsignedTx struct {
	BodyCbor    []byte
	AuxDataCbor []byte
	Hash        string
	PolicyId    string
	AssetNames  []string
	Fee         uint64
}

// BatchItem pairs a mint request with its position in the submitted
// batch
type BatchItem struct {
	Index   int
	Request MintRequest
}

// RejectedItem is a batch entry excluded from the transaction, with
// the reason
type RejectedItem struct {
	Index int
	Err   error
}

// BatchResult partitions a batch into the transaction covering the
// eligible items and the rejected remainder. Eligible items appear in
// their original batch order.
type BatchResult struct {
	Unsigned *UnsignedTx
	Eligible []BatchItem
	Rejected []RejectedItem
}
