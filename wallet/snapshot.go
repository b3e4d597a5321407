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
	"errors"
)

// ErrRemoteOnly is returned by Snapshot for operations that only the
// live client wallet can perform
var ErrRemoteOnly = errors.New("operation requires the client wallet")

// Snapshot is a read-only Wallet built from state the client reported.
// Transaction assembly on the server works against the snapshot;
// signing and submission stay with the client.
type Snapshot struct {
	UtxoList       []Utxo
	CollateralList []Utxo
	Addresses      []string
}

func (s *Snapshot) Utxos(_ context.Context) ([]Utxo, error) {
	return s.UtxoList, nil
}

func (s *Snapshot) Collateral(_ context.Context) ([]Utxo, error) {
	return s.CollateralList, nil
}

func (s *Snapshot) UsedAddresses(_ context.Context) ([]string, error) {
	return s.Addresses, nil
}

func (s *Snapshot) SignTx(
	_ context.Context,
	_ []byte,
) ([]byte, error) {
	return nil, ErrRemoteOnly
}

func (s *Snapshot) SubmitTx(
	_ context.Context,
	_ []byte,
) (string, error) {
	return "", ErrRemoteOnly
}
