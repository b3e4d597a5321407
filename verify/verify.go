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

// Package verify resolves a public (policy id, transaction hash) pair
// to the certificate metadata recorded on chain. It needs no caller
// identity: anyone holding a share string can check a certificate.
package verify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/indexer"
	"github.com/blinklabs-io/credmint/metadata"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

var (
	// ErrNotFound is returned when neither the chain nor the local
	// store knows the (policy, transaction) pair
	ErrNotFound = errors.New("certificate not found")
	// ErrLedgerInconsistency is returned when the local store has a
	// mint record but the chain indexer cannot see the transaction.
	// This state needs operator attention and must not be reported as
	// a plain miss.
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

// ChainReader is the indexer surface the verifier reads from
type ChainReader interface {
	Transaction(
		ctx context.Context,
		txHash string,
	) (*indexer.Transaction, error)
	TransactionMetadata(
		ctx context.Context,
		txHash string,
	) ([]indexer.TxMetadataLabel, error)
}

// RecordReader is the local mint record surface used to detect
// inconsistencies
type RecordReader interface {
	GetByTransaction(
		ctx context.Context,
		policyId string,
		transactionHash string,
	) (*models.CertificateRecord, error)
}

// View is the public, decoded certificate as shown to a verifier
type View struct {
	PolicyId    string            `json:"policyId"`
	TxHash      string            `json:"txHash"`
	AssetName   string            `json:"assetName"`
	Fingerprint string            `json:"fingerprint"`
	ShareString string            `json:"shareString"`
	BlockHeight uint64            `json:"blockHeight"`
	Slot        uint64            `json:"slot"`
	Fields      map[string]string `json:"fields"`
}

type Config struct {
	Chain   ChainReader
	Records RecordReader
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
		logger: cfg.Logger.With("component", "verify"),
	}
}

// ParseShareString splits "policyId.txHash" into its parts
func ParseShareString(share string) (string, string, error) {
	parts := strings.Split(share, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed share string %q", share)
	}
	return parts[0], parts[1], nil
}

// Verify resolves a (policy id, transaction hash) pair to its decoded
// certificate metadata. Each minted asset under the policy in that
// transaction yields one View.
func (s *Service) Verify(
	ctx context.Context,
	policyIdHex string,
	txHash string,
) ([]View, error) {
	tx, err := s.config.Chain.Transaction(ctx, txHash)
	if err != nil {
		if errors.Is(err, indexer.ErrNotFound) {
			return nil, s.classifyMiss(ctx, policyIdHex, txHash)
		}
		return nil, err
	}
	labels, err := s.config.Chain.TransactionMetadata(ctx, txHash)
	if err != nil {
		if errors.Is(err, indexer.ErrNotFound) {
			return nil, s.classifyMiss(ctx, policyIdHex, txHash)
		}
		return nil, err
	}
	assets, err := extractPolicyAssets(labels, policyIdHex)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf(
			"%w: transaction %s has no assets under policy %s",
			ErrNotFound,
			txHash,
			policyIdHex,
		)
	}
	policyIdBytes, err := hex.DecodeString(policyIdHex)
	if err != nil {
		return nil, fmt.Errorf("invalid policy id: %w", err)
	}
	views := make([]View, 0, len(assets))
	for assetName, fields := range assets {
		fingerprint := lcommon.NewAssetFingerprint(
			policyIdBytes,
			[]byte(assetName),
		)
		views = append(views, View{
			PolicyId:    policyIdHex,
			TxHash:      txHash,
			AssetName:   assetName,
			Fingerprint: fingerprint.String(),
			ShareString: policyIdHex + "." + txHash,
			BlockHeight: tx.BlockHeight,
			Slot:        tx.Slot,
			Fields:      fields,
		})
	}
	return views, nil
}

// classifyMiss decides whether a chain miss is a plain not-found or an
// inconsistency with the local record store
func (s *Service) classifyMiss(
	ctx context.Context,
	policyIdHex string,
	txHash string,
) error {
	if s.config.Records == nil {
		return ErrNotFound
	}
	_, err := s.config.Records.GetByTransaction(ctx, policyIdHex, txHash)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Error(
		"mint record exists but transaction is missing from chain",
		"policy_id", policyIdHex,
		"tx_hash", txHash,
	)
	return fmt.Errorf(
		"%w: transaction %s recorded locally but absent from chain",
		ErrLedgerInconsistency,
		txHash,
	)
}

// extractPolicyAssets pulls the assets under one policy out of the
// label-721 metadata and flattens each asset document to displayable
// strings
func extractPolicyAssets(
	labels []indexer.TxMetadataLabel,
	policyIdHex string,
) (map[string]map[string]string, error) {
	label721 := strconv.Itoa(metadata.MetadataLabel)
	for _, label := range labels {
		if label.Label != label721 {
			continue
		}
		var policies map[string]map[string]map[string]any
		if err := json.Unmarshal(label.JSONMetadata, &policies); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		policyAssets, ok := policies[policyIdHex]
		if !ok {
			return nil, nil
		}
		out := make(map[string]map[string]string, len(policyAssets))
		for assetName, doc := range policyAssets {
			fields := make(map[string]string, len(doc))
			for key, value := range doc {
				// On-chain documents predating the composer filter
				// may still carry sensitive fields
				if metadata.SensitiveKey(key) {
					continue
				}
				fields[key] = flattenValue(value)
			}
			out[assetName] = fields
		}
		return out, nil
	}
	return nil, nil
}

// flattenValue rejoins chunked strings and renders scalars for
// display
func flattenValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		var buf strings.Builder
		for _, part := range v {
			buf.WriteString(flattenValue(part))
		}
		return buf.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
