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
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/wallet"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to the JSON error envelope.
func (a *Api) writeError(w http.ResponseWriter, err error) {
	status, errStr := statusForError(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    err.Error(),
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Error:      "Bad Request",
		Message:    message,
	})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func walletSnapshot(state WalletStateRequest) *wallet.Snapshot {
	snapshot := &wallet.Snapshot{
		Addresses: state.Addresses,
	}
	for _, utxo := range state.Utxos {
		snapshot.UtxoList = append(snapshot.UtxoList, wallet.Utxo{
			TxHash:      utxo.TxHash,
			OutputIndex: utxo.OutputIndex,
			Address:     utxo.Address,
			Lovelace:    utxo.Lovelace,
			HasAssets:   utxo.HasAssets,
		})
	}
	for _, utxo := range state.Collateral {
		snapshot.CollateralList = append(
			snapshot.CollateralList,
			wallet.Utxo{
				TxHash:      utxo.TxHash,
				OutputIndex: utxo.OutputIndex,
				Address:     utxo.Address,
				Lovelace:    utxo.Lovelace,
			},
		)
	}
	return snapshot
}

func unsignedTxResponse(unsigned *txbuilder.UnsignedTx) UnsignedTxResponse {
	return UnsignedTxResponse{
		TxBodyCbor:  hex.EncodeToString(unsigned.BodyCbor),
		AuxDataCbor: hex.EncodeToString(unsigned.AuxDataCbor),
		TxHash:      unsigned.Hash,
		PolicyId:    unsigned.PolicyId,
		AssetNames:  unsigned.AssetNames,
		Fee:         unsigned.Fee,
	}
}

// handleHealth handles GET /health.
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

// handleCreateRequest handles POST /api/v1/requests and registers a
// pending certificate request.
func (a *Api) handleCreateRequest(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req CreateRequestRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.StudentId == "" || req.CourseId == "" {
		writeBadRequest(w, "student_id and course_id are required")
		return
	}
	request, err := a.service.CreateRequest(
		r.Context(),
		req.StudentId,
		req.CourseId,
		req.EducatorId,
		req.WalletAddress,
	)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RequestResponse{
		RequestId:     request.ID,
		StudentId:     request.StudentID,
		CourseId:      request.CourseID,
		Status:        request.Status,
		WalletAddress: request.WalletAddress,
	})
}

// handleStatus handles GET /api/v1/certificates/status.
func (a *Api) handleStatus(
	w http.ResponseWriter,
	r *http.Request,
) {
	studentId := r.URL.Query().Get("student_id")
	courseId := r.URL.Query().Get("course_id")
	if studentId == "" || courseId == "" {
		writeBadRequest(w, "student_id and course_id are required")
		return
	}
	info, err := a.service.Status(r.Context(), studentId, courseId)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resp := StatusResponse{}
	if info.Request != nil {
		resp.Status = info.Request.Status
		resp.RequestId = info.Request.ID
		resp.WalletAddress = info.Request.WalletAddress
	}
	if info.Record != nil {
		resp.PolicyId = info.Record.PolicyID
		resp.AssetName = info.Record.AssetName
		resp.TransactionHash = info.Record.TransactionHash
		resp.ShareString = info.Record.PolicyID +
			"." + info.Record.TransactionHash
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBind handles POST /api/v1/bindings.
func (a *Api) handleBind(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req BindRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.CourseId == "" || req.StudentId == "" ||
		req.WalletAddress == "" {
		writeBadRequest(
			w,
			"course_id, student_id and wallet_address are required",
		)
		return
	}
	if err := a.service.BindAddress(
		r.Context(),
		req.CourseId,
		req.StudentId,
		req.WalletAddress,
		req.EducatorWallet,
	); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMint handles POST /api/v1/mint and returns an unsigned
// transaction for client signing.
func (a *Api) handleMint(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req MintRequestBody
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.StudentId == "" || req.CourseId == "" {
		writeBadRequest(w, "student_id and course_id are required")
		return
	}
	unsigned, err := a.service.BuildMint(r.Context(), MintParams{
		RequestId:      req.RequestId,
		StudentId:      req.StudentId,
		CourseId:       req.CourseId,
		EducatorId:     req.EducatorId,
		EducatorWallet: req.EducatorWallet,
		Document:       req.Document,
		Wallet:         walletSnapshot(req.Wallet),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unsignedTxResponse(unsigned))
}

// handleBatchMint handles POST /api/v1/mint/batch.
func (a *Api) handleBatchMint(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req BatchMintRequestBody
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if len(req.Items) == 0 {
		writeBadRequest(w, "items are required")
		return
	}
	items := make([]BatchMintItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, BatchMintItem{
			RequestId: item.RequestId,
			StudentId: item.StudentId,
			CourseId:  item.CourseId,
			Document:  item.Document,
		})
	}
	result, err := a.service.BuildBatchMint(
		r.Context(),
		BatchMintParams{
			EducatorId:     req.EducatorId,
			EducatorWallet: req.EducatorWallet,
			Items:          items,
			Wallet:         walletSnapshot(req.Wallet),
		},
	)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resp := BatchMintResponse{
		Unsigned: unsignedTxResponse(result.Unsigned),
		Eligible: []int{},
		Rejected: []RejectedItemBody{},
	}
	for _, item := range result.Eligible {
		resp.Eligible = append(resp.Eligible, item.Index)
	}
	for _, item := range result.Rejected {
		resp.Rejected = append(resp.Rejected, RejectedItemBody{
			Index:  item.Index,
			Reason: item.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRecordMint handles POST /api/v1/mint/record and persists a
// submitted transaction.
func (a *Api) handleRecordMint(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req RecordMintRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.StudentId == "" || req.CourseId == "" ||
		req.TransactionHash == "" {
		writeBadRequest(
			w,
			"student_id, course_id and transaction_hash are required",
		)
		return
	}
	if err := a.service.RecordMint(r.Context(), RecordMintParams{
		RequestId:       req.RequestId,
		StudentId:       req.StudentId,
		CourseId:        req.CourseId,
		EducatorId:      req.EducatorId,
		AssetName:       req.AssetName,
		TransactionHash: req.TransactionHash,
		IpfsHash:        req.IpfsHash,
	}); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVerify handles GET /api/v1/verify/{policyId}/{txHash}. It is
// the public verification endpoint and needs no authentication.
func (a *Api) handleVerify(
	w http.ResponseWriter,
	r *http.Request,
) {
	policyId := r.PathValue("policyId")
	txHash := r.PathValue("txHash")
	views, err := a.service.Verify(r.Context(), policyId, txHash)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
