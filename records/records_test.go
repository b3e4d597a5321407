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

package records

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/database/models"
	"github.com/blinklabs-io/credmint/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecordStore(t *testing.T) (*RecordStore, *event.EventBus) {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	bus := event.NewEventBus(prometheus.NewRegistry())
	t.Cleanup(bus.Stop)
	return New(Config{Store: db, EventBus: bus}), bus
}

func TestRecordAndGet(t *testing.T) {
	store, bus := testRecordStore(t)
	ctx := context.Background()

	_, recordedCh := bus.Subscribe(MintRecordedEventType)

	record := &models.CertificateRecord{
		UserID:          "S1",
		CourseID:        "C1",
		MintUserID:      "E1",
		PolicyID:        "policyX",
		AssetName:       "assetY",
		TransactionHash: "tx1",
	}
	require.NoError(t, store.Record(ctx, record))

	got, err := store.Get(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.Equal(t, "tx1", got.TransactionHash)

	byTx, err := store.GetByTransaction(ctx, "policyX", "tx1")
	require.NoError(t, err)
	assert.Equal(t, "assetY", byTx.AssetName)

	exists, err := store.Exists(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.True(t, exists)

	select {
	case evt := <-recordedCh:
		payload, ok := evt.Data.(MintRecordedEvent)
		require.True(t, ok)
		assert.Equal(t, "tx1", payload.TransactionHash)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for mint recorded event")
	}
}

func TestRecordDuplicate(t *testing.T) {
	store, _ := testRecordStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &models.CertificateRecord{
		UserID:          "S1",
		CourseID:        "C1",
		TransactionHash: "tx1",
	}))
	err := store.Record(ctx, &models.CertificateRecord{
		UserID:          "S1",
		CourseID:        "C1",
		TransactionHash: "tx2",
	})
	require.ErrorIs(t, err, ErrAlreadyRecorded)

	// First write wins
	got, err := store.Get(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.Equal(t, "tx1", got.TransactionHash)
}

func TestRecordValidation(t *testing.T) {
	store, _ := testRecordStore(t)
	ctx := context.Background()

	err := store.Record(ctx, &models.CertificateRecord{
		CourseID:        "C1",
		TransactionHash: "tx1",
	})
	require.Error(t, err)

	err = store.Record(ctx, &models.CertificateRecord{
		UserID:   "S1",
		CourseID: "C1",
	})
	require.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	store, _ := testRecordStore(t)
	_, err := store.Get(context.Background(), "missing", "missing")
	require.ErrorIs(t, err, database.ErrNotFound)
}
