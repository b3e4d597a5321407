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
	"errors"
	"fmt"
)

var (
	// ErrNoCollateral is returned when the wallet has no pure-ADA
	// output usable as collateral
	ErrNoCollateral = errors.New("no collateral available")
	// ErrDuplicateMint is returned when a certificate has already been
	// minted for the (student, course) pair
	ErrDuplicateMint = errors.New("certificate already minted")
	// ErrBatchTooLarge is returned when a batch exceeds the configured
	// size limit or its merged metadata exceeds the document limit
	ErrBatchTooLarge = errors.New("batch too large")
)

// InsufficientFundsError reports how much the wallet was short by
type InsufficientFundsError struct {
	Needed    uint64
	Available uint64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: need %d lovelace, have %d",
		e.Needed,
		e.Available,
	)
}
