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

package credmint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinklabs-io/credmint/api"
	"github.com/blinklabs-io/credmint/binding"
	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/identity"
	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/records"
	"github.com/blinklabs-io/credmint/registry"
	"github.com/blinklabs-io/credmint/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChain serves the minimal indexer surface the service needs
// during tests.
func fakeChain(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(
		"GET /blocks/latest",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"hash": "abc", "slot": 5000000}`))
		},
	)
	mux.HandleFunc(
		"GET /",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testService(t *testing.T) *Service {
	t.Helper()
	chain := fakeChain(t)
	svc, err := New(NewConfig(
		WithDatabasePath(t.TempDir()),
		WithNetwork("preview"),
		WithPolicyScript(
			[]byte{0x01, 0x02, 0x03},
			identity.ScriptTagNative,
		),
		WithIndexer(chain.URL, "test-project"),
	))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop() })
	return svc
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "preprod", cfg.network)
	assert.NotNil(t, cfg.logger)
	assert.NotZero(t, cfg.shutdownTimeout)
}

func TestNewValidation(t *testing.T) {
	// Missing policy script
	_, err := New(NewConfig(
		WithIndexer("http://localhost", ""),
	))
	require.Error(t, err)

	// Unknown network
	_, err = New(NewConfig(
		WithPolicyScript([]byte{0x01}, identity.ScriptTagNative),
		WithIndexer("http://localhost", ""),
		WithNetwork("devnet42"),
	))
	require.Error(t, err)

	// Missing indexer
	_, err = New(NewConfig(
		WithPolicyScript([]byte{0x01}, identity.ScriptTagNative),
	))
	require.Error(t, err)
}

func eduWalletAddr(t *testing.T) string {
	t.Helper()
	w, err := wallet.NewTestWallet("educator")
	require.NoError(t, err)
	return w.Address()
}

func bindStudent(
	t *testing.T,
	svc *Service,
	courseId string,
	studentId string,
	educatorWallet string,
) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.db.UpsertCourse(ctx, &models.Course{
		ID:         courseId,
		EducatorID: "E1",
		Title:      "Test Course",
	}))
	student, err := wallet.NewTestWallet("student-" + studentId)
	require.NoError(t, err)
	require.NoError(t, svc.BindAddress(
		ctx,
		courseId,
		studentId,
		student.Address(),
		educatorWallet,
	))
	return student.Address()
}

func TestMintFullFlow(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	educator, err := wallet.NewTestWallet("educator")
	require.NoError(t, err)
	educator.AddUtxo(
		"0000000000000000000000000000000000000000000000000000000000000001",
		0, 50_000_000, false,
	)
	recipientAddr := bindStudent(t, svc, "C1", "S1", eduWalletAddr(t))
	assert.NotEmpty(t, recipientAddr)

	request, err := svc.CreateRequest(
		ctx, "S1", "C1", "E1", recipientAddr,
	)
	require.NoError(t, err)

	txHash, err := svc.Mint(ctx, educator, api.MintParams{
		RequestId:      request.ID,
		StudentId:      "S1",
		CourseId:       "C1",
		EducatorId:     "E1",
		EducatorWallet: eduWalletAddr(t),
		Document: metadata.Document{
			Name:   "Course Completion",
			Course: "C1",
		},
	})
	require.NoError(t, err)
	assert.Len(t, txHash, 64)
	require.Len(t, educator.Submitted, 1)

	// Request is completed and the record is durable
	info, err := svc.Status(ctx, "S1", "C1")
	require.NoError(t, err)
	require.NotNil(t, info.Request)
	assert.Equal(t, models.RequestStatusCompleted, info.Request.Status)
	require.NotNil(t, info.Record)
	assert.Equal(t, txHash, info.Record.TransactionHash)
	assert.Equal(t, svc.PolicyIdHex(), info.Record.PolicyID)

	// A second mint for the same pair is refused before signing
	_, err = svc.Mint(ctx, educator, api.MintParams{
		StudentId:      "S1",
		CourseId:       "C1",
		EducatorId:     "E1",
		EducatorWallet: eduWalletAddr(t),
		Document:       metadata.Document{Name: "Course Completion"},
	})
	require.Error(t, err)
	assert.Len(t, educator.Submitted, 1)
}

func TestMintDeclinedLeavesNoState(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	educator, err := wallet.NewTestWallet("educator")
	require.NoError(t, err)
	educator.AddUtxo(
		"0000000000000000000000000000000000000000000000000000000000000001",
		0, 50_000_000, false,
	)
	educator.DeclineSigning = true
	bindStudent(t, svc, "C1", "S1", eduWalletAddr(t))

	request, err := svc.CreateRequest(ctx, "S1", "C1", "E1", "")
	require.NoError(t, err)

	_, err = svc.Mint(ctx, educator, api.MintParams{
		RequestId:      request.ID,
		StudentId:      "S1",
		CourseId:       "C1",
		EducatorId:     "E1",
		EducatorWallet: eduWalletAddr(t),
		Document:       metadata.Document{Name: "Course Completion"},
	})
	require.Error(t, err)

	// Request stays pending, no record exists
	info, err := svc.Status(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, info.Request.Status)
	assert.Nil(t, info.Record)
}

func TestRecordMintCompletesRequest(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	request, err := svc.CreateRequest(ctx, "S1", "C1", "E1", "")
	require.NoError(t, err)

	require.NoError(t, svc.RecordMint(ctx, api.RecordMintParams{
		RequestId:       request.ID,
		StudentId:       "S1",
		CourseId:        "C1",
		EducatorId:      "E1",
		AssetName:       "C1_0011223344556677",
		TransactionHash: "tx1",
	}))

	info, err := svc.Status(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, info.Request.Status)

	// Re-recording is refused
	err = svc.RecordMint(ctx, api.RecordMintParams{
		StudentId:       "S1",
		CourseId:        "C1",
		TransactionHash: "tx2",
	})
	require.ErrorIs(t, err, records.ErrAlreadyRecorded)
}

func TestMintViolation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	educator, err := wallet.NewTestWallet("educator")
	require.NoError(t, err)
	educator.AddUtxo(
		"0000000000000000000000000000000000000000000000000000000000000001",
		0, 50_000_000, false,
	)
	bindStudent(t, svc, "C1", "S1", eduWalletAddr(t))

	violation, err := svc.CreateViolation(
		ctx, "S1", "C1", "E1", "plagiarism", "",
	)
	require.NoError(t, err)

	txHash, err := svc.MintViolation(
		ctx,
		educator,
		violation.ID,
		eduWalletAddr(t),
		metadata.Document{Name: "Academic Integrity Violation"},
	)
	require.NoError(t, err)
	assert.Len(t, txHash, 64)

	got, err := svc.registry.Violation(ctx, violation.ID)
	require.NoError(t, err)
	assert.True(t, got.NftMinted)
	assert.Equal(t, txHash, got.TransactionHash)
	assert.Equal(t, svc.PolicyIdHex(), got.PolicyID)

	// A second mint for the same violation is refused before signing
	_, err = svc.MintViolation(
		ctx,
		educator,
		violation.ID,
		eduWalletAddr(t),
		metadata.Document{Name: "Academic Integrity Violation"},
	)
	require.ErrorIs(t, err, registry.ErrAlreadyCompleted)
	assert.Len(t, educator.Submitted, 1)
}

func TestStatusUnknownPair(t *testing.T) {
	svc := testService(t)
	_, err := svc.Status(context.Background(), "missing", "missing")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestBuildBatchMintThroughService(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	educator, err := wallet.NewTestWallet("educator")
	require.NoError(t, err)
	educator.AddUtxo(
		"0000000000000000000000000000000000000000000000000000000000000001",
		0, 200_000_000, false,
	)
	bindStudent(t, svc, "C1", "S1", eduWalletAddr(t))
	bindStudent(t, svc, "C1", "S2", eduWalletAddr(t))

	snapshot := &wallet.Snapshot{
		UtxoList: []wallet.Utxo{
			{
				TxHash:      "0000000000000000000000000000000000000000000000000000000000000001",
				OutputIndex: 0,
				Lovelace:    200_000_000,
			},
		},
		Addresses: []string{educator.Address()},
	}
	result, err := svc.BuildBatchMint(ctx, api.BatchMintParams{
		EducatorId:     "E1",
		EducatorWallet: eduWalletAddr(t),
		Items: []api.BatchMintItem{
			{
				StudentId: "S1",
				CourseId:  "C1",
				Document:  metadata.Document{Name: "Cert"},
			},
			{
				StudentId: "S2",
				CourseId:  "C1",
				Document:  metadata.Document{Name: "Cert"},
			},
			{
				// Never bound, gets rejected
				StudentId: "S3",
				CourseId:  "C1",
				Document:  metadata.Document{Name: "Cert"},
			},
		},
		Wallet: snapshot,
	})
	require.NoError(t, err)
	assert.Len(t, result.Eligible, 2)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 2, result.Rejected[0].Index)
	assert.ErrorIs(t, result.Rejected[0].Err, binding.ErrOwnershipMismatch)
}

func TestStatusEndpointThroughApi(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, "S1", "C1", "E1", "addr_test1")
	require.NoError(t, err)

	server := httptest.NewServer(svc.apiServer.Handler())
	t.Cleanup(server.Close)

	resp, err := http.Get(
		server.URL +
			"/api/v1/certificates/status?student_id=S1&course_id=C1",
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status struct {
		Status        string `json:"status"`
		WalletAddress string `json:"wallet_address"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, models.RequestStatusPending, status.Status)
	assert.Equal(t, "addr_test1", status.WalletAddress)
}
