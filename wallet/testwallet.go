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

package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"golang.org/x/crypto/blake2b"
)

// TestWallet is an in-memory Wallet backed by a deterministic ed25519
// key. It signs anything it is asked to and records submissions so
// tests can assert on them.
type TestWallet struct {
	privKey    ed25519.PrivateKey
	pubKey     ed25519.PublicKey
	address    string
	utxos      []Utxo
	collateral []Utxo
	Submitted  [][]byte
	// DeclineSigning makes SignTx return ErrDeclined
	DeclineSigning bool
	// SubmitErr makes SubmitTx fail
	SubmitErr error
}

// NewTestWallet derives a wallet from a seed string. The same seed
// always yields the same key and address.
func NewTestWallet(seed string) (*TestWallet, error) {
	seedHash := blake2b.Sum256([]byte(seed))
	privKey := ed25519.NewKeyFromSeed(seedHash[:])
	pubKey := privKey.Public().(ed25519.PublicKey)
	keyHash := lcommon.Blake2b224Hash(pubKey)
	addr, err := lcommon.NewAddressFromParts(
		lcommon.AddressTypeKeyNone,
		0,
		keyHash.Bytes(),
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &TestWallet{
		privKey: privKey,
		pubKey:  pubKey,
		address: addr.String(),
	}, nil
}

// Address returns the wallet's only address
func (w *TestWallet) Address() string {
	return w.address
}

// PublicKey returns the wallet's verification key bytes
func (w *TestWallet) PublicKey() []byte {
	return w.pubKey
}

// AddUtxo adds a spendable output at the wallet's address
func (w *TestWallet) AddUtxo(
	txHash string,
	outputIndex int,
	lovelace uint64,
	hasAssets bool,
) {
	w.utxos = append(w.utxos, Utxo{
		TxHash:      txHash,
		OutputIndex: outputIndex,
		Address:     w.address,
		Lovelace:    lovelace,
		HasAssets:   hasAssets,
	})
}

// AddCollateral adds a pure-ADA collateral output
func (w *TestWallet) AddCollateral(
	txHash string,
	outputIndex int,
	lovelace uint64,
) {
	w.collateral = append(w.collateral, Utxo{
		TxHash:      txHash,
		OutputIndex: outputIndex,
		Address:     w.address,
		Lovelace:    lovelace,
	})
}

func (w *TestWallet) Utxos(_ context.Context) ([]Utxo, error) {
	return append([]Utxo{}, w.utxos...), nil
}

func (w *TestWallet) Collateral(_ context.Context) ([]Utxo, error) {
	return append([]Utxo{}, w.collateral...), nil
}

func (w *TestWallet) UsedAddresses(_ context.Context) ([]string, error) {
	return []string{w.address}, nil
}

func (w *TestWallet) SignTx(
	_ context.Context,
	bodyCbor []byte,
) ([]byte, error) {
	if w.DeclineSigning {
		return nil, ErrDeclined
	}
	bodyHash := blake2b.Sum256(bodyCbor)
	signature := ed25519.Sign(w.privKey, bodyHash[:])
	witnessSet := map[uint64]any{
		0: []lcommon.VkeyWitness{
			{
				Vkey:      []byte(w.pubKey),
				Signature: signature,
			},
		},
	}
	witnessSetCbor, err := cbor.Encode(witnessSet)
	if err != nil {
		return nil, fmt.Errorf("encode witness set: %w", err)
	}
	return witnessSetCbor, nil
}

func (w *TestWallet) SubmitTx(
	_ context.Context,
	signedCbor []byte,
) (string, error) {
	if w.SubmitErr != nil {
		return "", w.SubmitErr
	}
	w.Submitted = append(w.Submitted, signedCbor)
	// The returned hash mirrors what a node would compute from the
	// transaction body
	var tx []cbor.RawMessage
	if _, err := cbor.Decode(signedCbor, &tx); err != nil {
		return "", fmt.Errorf("decode signed transaction: %w", err)
	}
	if len(tx) == 0 {
		return "", fmt.Errorf("empty transaction")
	}
	bodyHash := blake2b.Sum256(tx[0])
	return hex.EncodeToString(bodyHash[:]), nil
}
