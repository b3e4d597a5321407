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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinklabs-io/credmint/binding"
	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/records"
	"github.com/blinklabs-io/credmint/txbuilder"
	"github.com/blinklabs-io/credmint/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	createRequestFn  func() (*models.CertificateRequest, error)
	statusFn         func() (*StatusInfo, error)
	bindAddressFn    func() error
	buildMintFn      func() (*txbuilder.UnsignedTx, error)
	buildBatchMintFn func() (*txbuilder.BatchResult, error)
	recordMintFn     func() error
	verifyFn         func() ([]verify.View, error)
}

func (m *mockService) CreateRequest(
	_ context.Context,
	_, _, _, _ string,
) (*models.CertificateRequest, error) {
	return m.createRequestFn()
}

func (m *mockService) Status(
	_ context.Context,
	_, _ string,
) (*StatusInfo, error) {
	return m.statusFn()
}

func (m *mockService) BindAddress(
	_ context.Context,
	_, _, _, _ string,
) error {
	return m.bindAddressFn()
}

func (m *mockService) BuildMint(
	_ context.Context,
	_ MintParams,
) (*txbuilder.UnsignedTx, error) {
	return m.buildMintFn()
}

func (m *mockService) BuildBatchMint(
	_ context.Context,
	_ BatchMintParams,
) (*txbuilder.BatchResult, error) {
	return m.buildBatchMintFn()
}

func (m *mockService) RecordMint(
	_ context.Context,
	_ RecordMintParams,
) error {
	return m.recordMintFn()
}

func (m *mockService) Verify(
	_ context.Context,
	_, _ string,
) ([]verify.View, error) {
	return m.verifyFn()
}

func testApi(t *testing.T, service Service) *httptest.Server {
	t.Helper()
	api := New(Config{}, service, nil)
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(
	t *testing.T,
	server *httptest.Server,
	path string,
	body any,
) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(
		server.URL+path,
		"application/json",
		bytes.NewReader(raw),
	)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleHealth(t *testing.T) {
	server := testApi(t, &mockService{})
	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.True(t, health.IsHealthy)
}

func TestHandleCreateRequest(t *testing.T) {
	service := &mockService{
		createRequestFn: func() (*models.CertificateRequest, error) {
			return &models.CertificateRequest{
				ID:        "req-1",
				StudentID: "S1",
				CourseID:  "C1",
				Status:    models.RequestStatusPending,
			}, nil
		},
	}
	server := testApi(t, service)

	resp := postJSON(t, server, "/api/v1/requests", CreateRequestRequest{
		StudentId: "S1",
		CourseId:  "C1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created RequestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "req-1", created.RequestId)
	assert.Equal(t, models.RequestStatusPending, created.Status)
}

func TestHandleCreateRequestValidation(t *testing.T) {
	server := testApi(t, &mockService{})
	resp := postJSON(t, server, "/api/v1/requests", CreateRequestRequest{
		StudentId: "S1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStatus(t *testing.T) {
	service := &mockService{
		statusFn: func() (*StatusInfo, error) {
			return &StatusInfo{
				Request: &models.CertificateRequest{
					ID:     "req-1",
					Status: models.RequestStatusCompleted,
				},
				Record: &models.CertificateRecord{
					PolicyID:        "policyX",
					AssetName:       "assetY",
					TransactionHash: "tx1",
				},
			}, nil
		},
	}
	server := testApi(t, service)

	resp, err := http.Get(
		server.URL +
			"/api/v1/certificates/status?student_id=S1&course_id=C1",
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, models.RequestStatusCompleted, status.Status)
	assert.Equal(t, "policyX.tx1", status.ShareString)
}

func TestHandleBindConflict(t *testing.T) {
	service := &mockService{
		bindAddressFn: func() error {
			return binding.ErrBindingConflict
		},
	}
	server := testApi(t, service)

	resp := postJSON(t, server, "/api/v1/bindings", BindRequest{
		CourseId:      "C1",
		StudentId:     "S1",
		WalletAddress: "addr_test1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Binding Conflict", errResp.Error)
}

func TestHandleMint(t *testing.T) {
	service := &mockService{
		buildMintFn: func() (*txbuilder.UnsignedTx, error) {
			return &txbuilder.UnsignedTx{
				BodyCbor:   []byte{0xa4, 0x00},
				Hash:       "txhash",
				PolicyId:   "policyX",
				AssetNames: []string{"assetY"},
				Fee:        200_000,
			}, nil
		},
	}
	server := testApi(t, service)

	resp := postJSON(t, server, "/api/v1/mint", MintRequestBody{
		StudentId: "S1",
		CourseId:  "C1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var unsigned UnsignedTxResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&unsigned))
	assert.Equal(t, "a400", unsigned.TxBodyCbor)
	assert.Equal(t, uint64(200_000), unsigned.Fee)
}

func TestHandleMintInsufficientFunds(t *testing.T) {
	service := &mockService{
		buildMintFn: func() (*txbuilder.UnsignedTx, error) {
			return nil, txbuilder.InsufficientFundsError{
				Needed:    5_000_000,
				Available: 1_000_000,
			}
		},
	}
	server := testApi(t, service)

	resp := postJSON(t, server, "/api/v1/mint", MintRequestBody{
		StudentId: "S1",
		CourseId:  "C1",
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestHandleBatchMint(t *testing.T) {
	service := &mockService{
		buildBatchMintFn: func() (*txbuilder.BatchResult, error) {
			return &txbuilder.BatchResult{
				Unsigned: &txbuilder.UnsignedTx{
					Hash:       "txhash",
					AssetNames: []string{"a1", "a3"},
				},
				Eligible: []txbuilder.BatchItem{
					{Index: 0}, {Index: 2},
				},
				Rejected: []txbuilder.RejectedItem{
					{
						Index: 1,
						Err:   fmt.Errorf("%w: minted", txbuilder.ErrDuplicateMint),
					},
				},
			}, nil
		},
	}
	server := testApi(t, service)

	resp := postJSON(t, server, "/api/v1/mint/batch", BatchMintRequestBody{
		Items: []BatchMintItemBody{
			{StudentId: "S1", CourseId: "C1"},
			{StudentId: "S2", CourseId: "C1"},
			{StudentId: "S3", CourseId: "C1"},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var batch BatchMintResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
	assert.Equal(t, []int{0, 2}, batch.Eligible)
	require.Len(t, batch.Rejected, 1)
	assert.Equal(t, 1, batch.Rejected[0].Index)
	assert.Contains(t, batch.Rejected[0].Reason, "minted")
}

func TestHandleRecordMintDuplicate(t *testing.T) {
	service := &mockService{
		recordMintFn: func() error {
			return records.ErrAlreadyRecorded
		},
	}
	server := testApi(t, service)

	resp := postJSON(t, server, "/api/v1/mint/record", RecordMintRequest{
		StudentId:       "S1",
		CourseId:        "C1",
		TransactionHash: "tx1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleVerify(t *testing.T) {
	service := &mockService{
		verifyFn: func() ([]verify.View, error) {
			return []verify.View{
				{
					PolicyId:  "policyX",
					TxHash:    "tx1",
					AssetName: "assetY",
				},
			}, nil
		},
	}
	server := testApi(t, service)

	resp, err := http.Get(server.URL + "/api/v1/verify/policyX/tx1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var views []verify.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "assetY", views[0].AssetName)
}

func TestHandleVerifyMisses(t *testing.T) {
	service := &mockService{
		verifyFn: func() ([]verify.View, error) {
			return nil, verify.ErrNotFound
		},
	}
	server := testApi(t, service)
	resp, err := http.Get(server.URL + "/api/v1/verify/policyX/tx1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	service.verifyFn = func() ([]verify.View, error) {
		return nil, verify.ErrLedgerInconsistency
	}
	resp, err = http.Get(server.URL + "/api/v1/verify/policyX/tx1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
