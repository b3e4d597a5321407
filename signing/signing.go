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

// Package signing drives the interactive signing and submission of an
// assembled transaction through a client wallet. It holds no state:
// when any step fails, nothing durable has happened and the caller can
// simply retry.
package signing

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/wallet"
	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrSigningRejected is returned when the wallet user declines to
	// sign
	ErrSigningRejected = errors.New("signing rejected")
	// ErrSubmissionFailure is returned when the signed transaction is
	// not accepted by the network
	ErrSubmissionFailure = errors.New("submission failed")
)

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

type Orchestrator struct {
	logger  *slog.Logger
	metrics orchestratorMetrics
}

type orchestratorMetrics struct {
	submissions prometheus.Counter
}

func New(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(cfg.PromRegistry)
	return &Orchestrator{
		logger: cfg.Logger.With("component", "signing"),
		metrics: orchestratorMetrics{
			submissions: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "credmint_signing_submissions_total",
					Help: "total transactions submitted",
				},
			),
		},
	}
}

// Execute asks the wallet to sign the transaction body, assembles the
// full transaction, and submits it. It returns the transaction hash
// on success. The hash is computed locally from the body, so a
// submission transport that returns a different hash is caught here.
func (o *Orchestrator) Execute(
	ctx context.Context,
	unsigned *txbuilder.UnsignedTx,
	w wallet.Wallet,
) (string, error) {
	witnessSetCbor, err := w.SignTx(ctx, unsigned.BodyCbor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigningRejected, err)
	}
	signedTx := []any{
		cbor.RawMessage(unsigned.BodyCbor),
		cbor.RawMessage(witnessSetCbor),
		true,
		cbor.RawMessage(unsigned.AuxDataCbor),
	}
	signedCbor, err := cbor.Encode(signedTx)
	if err != nil {
		return "", fmt.Errorf("encode signed transaction: %w", err)
	}
	submittedHash, err := w.SubmitTx(ctx, signedCbor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmissionFailure, err)
	}
	o.metrics.submissions.Inc()
	bodyHash := blake2b.Sum256(unsigned.BodyCbor)
	txHash := hex.EncodeToString(bodyHash[:])
	if submittedHash != "" && submittedHash != txHash {
		o.logger.Warn(
			"submitted hash differs from local hash",
			"local", txHash,
			"submitted", submittedHash,
		)
	}
	o.logger.Info(
		"transaction submitted",
		"tx_hash", txHash,
		"policy_id", unsigned.PolicyId,
	)
	return txHash, nil
}
