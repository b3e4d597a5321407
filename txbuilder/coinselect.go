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
	"sort"

	"github.com/blinklabs-io/credmint/wallet"
)

// selectInputs picks wallet outputs to cover the target amount,
// largest first. Outputs carrying native assets are skipped so the
// change output stays pure ADA.
func selectInputs(
	utxos []wallet.Utxo,
	target uint64,
) ([]wallet.Utxo, uint64, error) {
	candidates := make([]wallet.Utxo, 0, len(utxos))
	var available uint64
	for _, utxo := range utxos {
		if utxo.HasAssets {
			continue
		}
		candidates = append(candidates, utxo)
		available += utxo.Lovelace
	}
	if available < target {
		return nil, 0, InsufficientFundsError{
			Needed:    target,
			Available: available,
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Lovelace > candidates[j].Lovelace
	})
	selected := make([]wallet.Utxo, 0, len(candidates))
	var total uint64
	for _, utxo := range candidates {
		selected = append(selected, utxo)
		total += utxo.Lovelace
		if total >= target {
			break
		}
	}
	return selected, total, nil
}

// selectCollateral picks up to MaxCollateralInputs pure-ADA outputs
func selectCollateral(
	utxos []wallet.Utxo,
) ([]wallet.Utxo, uint64, error) {
	candidates := make([]wallet.Utxo, 0, len(utxos))
	for _, utxo := range utxos {
		if utxo.HasAssets {
			continue
		}
		candidates = append(candidates, utxo)
	}
	if len(candidates) == 0 {
		return nil, 0, ErrNoCollateral
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Lovelace > candidates[j].Lovelace
	})
	if len(candidates) > MaxCollateralInputs {
		candidates = candidates[:MaxCollateralInputs]
	}
	var total uint64
	for _, utxo := range candidates {
		total += utxo.Lovelace
	}
	return candidates, total, nil
}
