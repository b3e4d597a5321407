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

// Package txbuilder assembles unsigned Conway-era mint transactions.
// The wallet funds the transaction and receives the change; the
// recipient address receives the freshly minted token alongside the
// minimum lovelace.
package txbuilder

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/credmint/identity"
	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/wallet"
	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/gouroboros/ledger/babbage"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/gouroboros/ledger/conway"
	"github.com/blinklabs-io/gouroboros/ledger/mary"
	"github.com/blinklabs-io/gouroboros/ledger/shelley"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/blake2b"
)

// RecordChecker reports whether a certificate was already minted for a
// (student, course) pair
type RecordChecker interface {
	Exists(
		ctx context.Context,
		userId string,
		courseId string,
	) (bool, error)
}

type Config struct {
	Scheme       *identity.Scheme
	Composer     *metadata.Composer
	Records      RecordChecker
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// RequireCollateral is set when the minting policy is a Plutus
	// script. Native script policies do not need collateral.
	RequireCollateral bool
	MinFeeA           uint64
	MinFeeB           uint64
	MinUtxoLovelace   uint64
	TtlOffset         uint64
	MaxBatchSize      int
}

type Builder struct {
	config  Config
	logger  *slog.Logger
	metrics builderMetrics
}

type builderMetrics struct {
	mintsBuilt    prometheus.Counter
	batchRejected prometheus.Counter
}

func New(cfg Config) (*Builder, error) {
	if cfg.Scheme == nil {
		return nil, errors.New("identity scheme is required")
	}
	if cfg.Composer == nil {
		return nil, errors.New("metadata composer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	if cfg.MinFeeA == 0 {
		cfg.MinFeeA = DefaultMinFeeA
	}
	if cfg.MinFeeB == 0 {
		cfg.MinFeeB = DefaultMinFeeB
	}
	if cfg.MinUtxoLovelace == 0 {
		cfg.MinUtxoLovelace = DefaultMinUtxoLovelace
	}
	if cfg.TtlOffset == 0 {
		cfg.TtlOffset = DefaultTtlOffset
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	promautoFactory := promauto.With(cfg.PromRegistry)
	return &Builder{
		config: cfg,
		logger: cfg.Logger.With("component", "txbuilder"),
		metrics: builderMetrics{
			mintsBuilt: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "credmint_txbuilder_mints_built_total",
					Help: "total mint outputs assembled into transactions",
				},
			),
			batchRejected: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "credmint_txbuilder_batch_rejected_total",
					Help: "total batch items rejected during assembly",
				},
			),
		},
	}, nil
}

// PolicyIdHex returns the hex-encoded policy id the builder mints
// under
func (b *Builder) PolicyIdHex() string {
	return b.config.Scheme.PolicyId().String()
}

// BuildMint assembles an unsigned transaction minting a single
// certificate token to the recipient address. currentSlot anchors the
// transaction's validity window.
func (b *Builder) BuildMint(
	ctx context.Context,
	w wallet.Wallet,
	req MintRequest,
	currentSlot uint64,
) (*UnsignedTx, error) {
	if b.config.Records != nil && req.StudentId != "" {
		minted, err := b.config.Records.Exists(
			ctx,
			req.StudentId,
			req.CourseId,
		)
		if err != nil {
			return nil, err
		}
		if minted {
			return nil, fmt.Errorf(
				"%w: student %s course %s",
				ErrDuplicateMint,
				req.StudentId,
				req.CourseId,
			)
		}
	}
	policyIdHex := b.PolicyIdHex()
	auxDataCbor, err := b.config.Composer.Compose(
		policyIdHex,
		string(req.AssetName),
		req.Document,
	)
	if err != nil {
		return nil, err
	}
	mints := []mintEntry{
		{assetName: req.AssetName, recipient: req.RecipientAddress},
	}
	return b.assemble(ctx, w, mints, auxDataCbor, currentSlot)
}

type mintEntry struct {
	assetName []byte
	recipient string
}

// assemble performs coin selection and body construction shared by the
// single and batch paths. Fee is computed in two passes: a draft body
// sizes the transaction, then the final body carries the real fee.
func (b *Builder) assemble(
	ctx context.Context,
	w wallet.Wallet,
	mints []mintEntry,
	auxDataCbor []byte,
	currentSlot uint64,
) (*UnsignedTx, error) {
	utxos, err := w.Utxos(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet utxos: %w", err)
	}
	addresses, err := w.UsedAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet addresses: %w", err)
	}
	if len(addresses) == 0 {
		return nil, errors.New("wallet has no addresses")
	}
	changeAddress := addresses[0]

	var collateral []wallet.Utxo
	if b.config.RequireCollateral {
		collateralUtxos, err := w.Collateral(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch wallet collateral: %w", err)
		}
		collateral, _, err = selectCollateral(collateralUtxos)
		if err != nil {
			return nil, err
		}
	}

	tokenDeposit := b.config.MinUtxoLovelace * uint64(len(mints))

	fee := b.config.MinFeeB + b.config.MinFeeA*feeSizeBuffer
	var bodyCbor []byte
	for pass := 0; pass < 2; pass++ {
		target := tokenDeposit + fee + b.config.MinUtxoLovelace
		inputs, total, err := selectInputs(utxos, target)
		if err != nil {
			return nil, err
		}
		change := total - tokenDeposit - fee
		body, err := b.buildBody(
			inputs,
			collateral,
			mints,
			changeAddress,
			change,
			fee,
			auxDataCbor,
			currentSlot,
		)
		if err != nil {
			return nil, err
		}
		bodyCbor, err = cbor.Encode(body)
		if err != nil {
			return nil, fmt.Errorf("encode transaction body: %w", err)
		}
		// Account for the witness set and aux data the final
		// transaction will carry
		txSize := uint64(len(bodyCbor)+len(auxDataCbor)) + feeSizeBuffer
		newFee := b.config.MinFeeB + b.config.MinFeeA*txSize
		if newFee <= fee {
			break
		}
		fee = newFee
	}

	bodyHash := blake2b.Sum256(bodyCbor)
	assetNames := make([]string, 0, len(mints))
	for _, mint := range mints {
		assetNames = append(assetNames, string(mint.assetName))
	}
	unsigned := &UnsignedTx{
		BodyCbor:    bodyCbor,
		AuxDataCbor: auxDataCbor,
		Hash:        hex.EncodeToString(bodyHash[:]),
		PolicyId:    b.PolicyIdHex(),
		AssetNames:  assetNames,
		Fee:         fee,
	}
	b.metrics.mintsBuilt.Add(float64(len(mints)))
	b.logger.Debug(
		"assembled mint transaction",
		"tx_hash", unsigned.Hash,
		"assets", len(mints),
		"fee", fee,
	)
	return unsigned, nil
}

func (b *Builder) buildBody(
	inputs []wallet.Utxo,
	collateral []wallet.Utxo,
	mints []mintEntry,
	changeAddress string,
	change uint64,
	fee uint64,
	auxDataCbor []byte,
	currentSlot uint64,
) (*conway.ConwayTransactionBody, error) {
	txInputs := make([]shelley.ShelleyTransactionInput, 0, len(inputs))
	for _, utxo := range inputs {
		txInputs = append(
			txInputs,
			shelley.NewShelleyTransactionInput(
				utxo.TxHash,
				utxo.OutputIndex,
			),
		)
	}

	policyId := b.config.Scheme.PolicyId()
	mintAssets := make(map[cbor.ByteString]lcommon.MultiAssetTypeMint)
	outputAssetsByRecipient := make(
		map[string]map[cbor.ByteString]lcommon.MultiAssetTypeOutput,
	)
	for _, mint := range mints {
		nameKey := cbor.NewByteString(mint.assetName)
		mintAssets[nameKey] = 1
		if _, ok := outputAssetsByRecipient[mint.recipient]; !ok {
			outputAssetsByRecipient[mint.recipient] = make(
				map[cbor.ByteString]lcommon.MultiAssetTypeOutput,
			)
		}
		outputAssetsByRecipient[mint.recipient][nameKey] = 1
	}
	txMint := lcommon.NewMultiAsset(
		map[lcommon.Blake2b224]map[cbor.ByteString]lcommon.MultiAssetTypeMint{
			policyId: mintAssets,
		},
	)

	// One output per distinct recipient, in first-seen order
	outputs := make([]babbage.BabbageTransactionOutput, 0, len(mints)+1)
	seen := make(map[string]bool)
	for _, mint := range mints {
		if seen[mint.recipient] {
			continue
		}
		seen[mint.recipient] = true
		recipientAddr, err := lcommon.NewAddress(mint.recipient)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient address: %w", err)
		}
		outputAssets := lcommon.NewMultiAsset(
			map[lcommon.Blake2b224]map[cbor.ByteString]lcommon.MultiAssetTypeOutput{
				policyId: outputAssetsByRecipient[mint.recipient],
			},
		)
		tokenValue := b.config.MinUtxoLovelace * uint64(
			len(outputAssetsByRecipient[mint.recipient]),
		)
		outputs = append(outputs, babbage.BabbageTransactionOutput{
			OutputAddress: recipientAddr,
			OutputAmount: mary.MaryTransactionOutputValue{
				Amount: tokenValue,
				Assets: &outputAssets,
			},
		})
	}
	if change > 0 {
		changeAddr, err := lcommon.NewAddress(changeAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid change address: %w", err)
		}
		outputs = append(outputs, babbage.BabbageTransactionOutput{
			OutputAddress: changeAddr,
			OutputAmount: mary.MaryTransactionOutputValue{
				Amount: change,
			},
		})
	}

	auxDataHash := lcommon.Blake2b256Hash(auxDataCbor)

	body := &conway.ConwayTransactionBody{
		TxInputs:      conway.NewConwayTransactionInputSet(txInputs),
		TxOutputs:     outputs,
		TxFee:         fee,
		Ttl:           currentSlot + b.config.TtlOffset,
		TxAuxDataHash: &auxDataHash,
		TxMint:        &txMint,
	}
	if len(collateral) > 0 {
		txCollateral := make(
			[]shelley.ShelleyTransactionInput, 0, len(collateral),
		)
		var collateralTotal uint64
		for _, utxo := range collateral {
			txCollateral = append(
				txCollateral,
				shelley.NewShelleyTransactionInput(
					utxo.TxHash,
					utxo.OutputIndex,
				),
			)
			collateralTotal += utxo.Lovelace
		}
		body.TxCollateral = cbor.NewSetType(txCollateral, false)
		body.TxTotalCollateral = collateralTotal
	}
	if b.config.RequireCollateral {
		// The fee payer must witness the script execution
		changeAddr, err := lcommon.NewAddress(changeAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid change address: %w", err)
		}
		body.TxRequiredSigners = cbor.NewSetType(
			[]lcommon.Blake2b224{changeAddr.PaymentKeyHash()},
			false,
		)
	}
	return body, nil
}
