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

// Package indexer is a client for a Blockfrost-compatible chain
// indexer. It is the subsystem's read path to the ledger: transaction
// lookups, metadata retrieval, and address UTXO queries.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned when the indexer has no data for the query
var ErrNotFound = errors.New("not found")

// Block is the indexer's view of a block
type Block struct {
	Hash   string `json:"hash"`
	Height uint64 `json:"height"`
	Slot   uint64 `json:"slot"`
	Epoch  uint64 `json:"epoch"`
	Time   uint64 `json:"time"`
}

// Transaction is the indexer's view of an on-chain transaction
type Transaction struct {
	Hash          string `json:"hash"`
	Block         string `json:"block"`
	BlockHeight   uint64 `json:"block_height"`
	Slot          uint64 `json:"slot"`
	Index         int    `json:"index"`
	Fees          string `json:"fees"`
	ValidContract bool   `json:"valid_contract"`
}

// TxMetadataLabel is one metadata label attached to a transaction
type TxMetadataLabel struct {
	Label        string          `json:"label"`
	JSONMetadata json.RawMessage `json:"json_metadata"`
}

// AddressUtxo is one unspent output at an address
type AddressUtxo struct {
	TxHash      string       `json:"tx_hash"`
	OutputIndex int          `json:"output_index"`
	Amount      []UtxoAmount `json:"amount"`
}

// UtxoAmount is one asset quantity inside an output
type UtxoAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type Config struct {
	BaseUrl   string
	ProjectId string
	Logger    *slog.Logger
}

type Client struct {
	client *resty.Client
	logger *slog.Logger
}

func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	client := resty.New().
		SetBaseURL(cfg.BaseUrl).
		SetHeader("project_id", cfg.ProjectId)
	return &Client{
		client: client,
		logger: cfg.Logger.With("component", "indexer"),
	}
}

// LatestBlock fetches the chain tip
func (c *Client) LatestBlock(ctx context.Context) (*Block, error) {
	var block Block
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&block).
		Get("/blocks/latest")
	if err != nil {
		return nil, fmt.Errorf("fetch latest block: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return &block, nil
}

// Transaction fetches a transaction by hash
func (c *Client) Transaction(
	ctx context.Context,
	txHash string,
) (*Transaction, error) {
	var tx Transaction
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&tx).
		Get("/txs/" + txHash)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return &tx, nil
}

// TransactionMetadata fetches the metadata labels attached to a
// transaction
func (c *Client) TransactionMetadata(
	ctx context.Context,
	txHash string,
) ([]TxMetadataLabel, error) {
	var labels []TxMetadataLabel
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&labels).
		Get("/txs/" + txHash + "/metadata")
	if err != nil {
		return nil, fmt.Errorf("fetch transaction metadata: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return labels, nil
}

// AddressUtxos fetches the unspent outputs at an address
func (c *Client) AddressUtxos(
	ctx context.Context,
	address string,
) ([]AddressUtxo, error) {
	var utxos []AddressUtxo
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&utxos).
		Get("/addresses/" + address + "/utxos")
	if err != nil {
		return nil, fmt.Errorf("fetch address utxos: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			// An unused address has no UTXOs
			return nil, nil
		}
		return nil, err
	}
	return utxos, nil
}

// SubmitTx submits a signed transaction as raw CBOR and returns the
// transaction hash reported by the indexer
func (c *Client) SubmitTx(
	ctx context.Context,
	signedCbor []byte,
) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/cbor").
		SetBody(signedCbor).
		Post("/tx/submit")
	if err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf(
			"submit transaction: status %d: %s",
			resp.StatusCode(),
			resp.Body(),
		)
	}
	// The submit endpoint returns the hash as a JSON string
	var txHash string
	if err := json.Unmarshal(resp.Body(), &txHash); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return txHash, nil
}

func checkStatus(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf(
			"indexer returned status %d: %s",
			resp.StatusCode(),
			resp.Body(),
		)
	}
}
