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

// Package wallet defines the client wallet surface the minting flow
// talks to. The wallet holds the keys and the funds; this process
// never sees a private key.
package wallet

import (
	"context"
	"errors"
)

// ErrDeclined is returned by SignTx when the user refuses to sign
var ErrDeclined = errors.New("signing declined")

// Utxo is an unspent output owned by the wallet
type Utxo struct {
	TxHash      string
	OutputIndex int
	Address     string
	Lovelace    uint64
	HasAssets   bool
}

// Wallet is the signing and funding interface for a client wallet.
// Implementations are expected to wrap a browser extension bridge or a
// test key holder.
type Wallet interface {
	// Utxos returns the wallet's spendable outputs
	Utxos(ctx context.Context) ([]Utxo, error)
	// Collateral returns outputs suitable for collateral. These are
	// expected to be pure-ADA outputs.
	Collateral(ctx context.Context) ([]Utxo, error)
	// UsedAddresses returns the wallet's known addresses, first entry
	// is the change address
	UsedAddresses(ctx context.Context) ([]string, error)
	// SignTx signs a transaction body and returns the CBOR-encoded
	// witness set. It returns ErrDeclined when the user refuses.
	SignTx(ctx context.Context, bodyCbor []byte) ([]byte, error)
	// SubmitTx submits a fully signed transaction and returns its hash
	SubmitTx(ctx context.Context, signedCbor []byte) (string, error)
}
