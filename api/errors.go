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

package api

import (
	"errors"
	"net/http"

	"github.com/blinklabs-io/credmint/binding"
	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/identity"
	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/records"
	"github.com/blinklabs-io/credmint/registry"
	"github.com/blinklabs-io/credmint/signing"
	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/verify"
)

// statusForError maps domain errors to HTTP statuses. Anything
// unmapped is an internal error.
func statusForError(err error) (int, string) {
	var insufficientErr txbuilder.InsufficientFundsError
	switch {
	case errors.Is(err, identity.ErrInvalidIdentityInput):
		return http.StatusBadRequest, "Invalid Identity Input"
	case errors.Is(err, metadata.ErrMetadataTooLarge):
		return http.StatusUnprocessableEntity, "Metadata Too Large"
	case errors.Is(err, txbuilder.ErrBatchTooLarge):
		return http.StatusUnprocessableEntity, "Batch Too Large"
	case errors.Is(err, txbuilder.ErrDuplicateMint):
		return http.StatusConflict, "Duplicate Mint"
	case errors.Is(err, txbuilder.ErrNoCollateral):
		return http.StatusPaymentRequired, "No Collateral"
	case errors.As(err, &insufficientErr):
		return http.StatusPaymentRequired, "Insufficient Funds"
	case errors.Is(err, binding.ErrBindingConflict):
		return http.StatusConflict, "Binding Conflict"
	case errors.Is(err, binding.ErrOwnershipMismatch):
		return http.StatusForbidden, "Ownership Mismatch"
	case errors.Is(err, records.ErrAlreadyRecorded):
		return http.StatusConflict, "Already Recorded"
	case errors.Is(err, registry.ErrAlreadyCompleted):
		return http.StatusConflict, "Already Completed"
	case errors.Is(err, registry.ErrNotRecorded):
		return http.StatusConflict, "Not Recorded"
	case errors.Is(err, signing.ErrSigningRejected):
		return http.StatusBadRequest, "Signing Rejected"
	case errors.Is(err, signing.ErrSubmissionFailure):
		return http.StatusBadGateway, "Submission Failure"
	case errors.Is(err, verify.ErrLedgerInconsistency):
		return http.StatusConflict, "Ledger Inconsistency"
	case errors.Is(err, verify.ErrNotFound),
		errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
