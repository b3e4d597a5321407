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

package registry

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

func testRegistry(t *testing.T) (*Registry, *database.Database, *event.EventBus) {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	bus := event.NewEventBus(prometheus.NewRegistry())
	t.Cleanup(bus.Stop)
	registry := New(Config{
		Store:    db,
		EventBus: bus,
	})
	return registry, db, bus
}

func TestCreateAndQuery(t *testing.T) {
	registry, _, bus := testRegistry(t)
	ctx := context.Background()

	_, createdCh := bus.Subscribe(RequestCreatedEventType)

	request, err := registry.Create(
		ctx, "S1", "C1", "E1", "addr_test1_student",
	)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)

	got, err := registry.Query(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)

	select {
	case evt := <-createdCh:
		payload, ok := evt.Data.(RequestCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, request.ID, payload.RequestId)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for request created event")
	}
}

func TestCreateRequiresIds(t *testing.T) {
	registry, _, _ := testRegistry(t)
	_, err := registry.Create(context.Background(), "", "C1", "E1", "")
	require.Error(t, err)
}

func TestMarkCompletedRequiresRecord(t *testing.T) {
	registry, _, _ := testRegistry(t)
	ctx := context.Background()

	request, err := registry.Create(ctx, "S1", "C1", "E1", "")
	require.NoError(t, err)

	err = registry.MarkCompleted(ctx, request.ID)
	require.ErrorIs(t, err, ErrNotRecorded)

	got, err := registry.QueryById(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)
}

func TestMarkCompletedOnce(t *testing.T) {
	registry, db, bus := testRegistry(t)
	ctx := context.Background()

	_, completedCh := bus.Subscribe(RequestCompletedEventType)

	request, err := registry.Create(ctx, "S1", "C1", "E1", "")
	require.NoError(t, err)

	_, err = db.CreateCertificateRecordIfAbsent(
		ctx,
		&models.CertificateRecord{
			UserID:          "S1",
			CourseID:        "C1",
			TransactionHash: "tx1",
		},
	)
	require.NoError(t, err)

	require.NoError(t, registry.MarkCompleted(ctx, request.ID))

	err = registry.MarkCompleted(ctx, request.ID)
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	got, err := registry.QueryById(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, got.Status)

	select {
	case evt := <-completedCh:
		payload, ok := evt.Data.(RequestCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, request.ID, payload.RequestId)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for request completed event")
	}
}

func TestPendingFilter(t *testing.T) {
	registry, db, _ := testRegistry(t)
	ctx := context.Background()

	first, err := registry.Create(ctx, "S1", "C1", "E1", "")
	require.NoError(t, err)
	second, err := registry.Create(ctx, "S2", "C1", "E1", "")
	require.NoError(t, err)

	_, err = db.CreateCertificateRecordIfAbsent(
		ctx,
		&models.CertificateRecord{
			UserID:          "S1",
			CourseID:        "C1",
			TransactionHash: "tx1",
		},
	)
	require.NoError(t, err)
	require.NoError(t, registry.MarkCompleted(ctx, first.ID))

	pending, err := registry.Pending(
		ctx, []string{first.ID, second.ID, "missing"},
	)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestViolationLifecycle(t *testing.T) {
	registry, db, _ := testRegistry(t)
	ctx := context.Background()

	record, err := registry.CreateViolation(
		ctx, "S1", "C1", "E1", "plagiarism", "addr_test1_student",
	)
	require.NoError(t, err)
	assert.False(t, record.NftMinted)

	require.NoError(
		t,
		registry.MarkViolationMinted(ctx, record.ID, "policyX", "tx1"),
	)
	err = registry.MarkViolationMinted(ctx, record.ID, "policyX", "tx2")
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	got, err := db.ViolationRecordById(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, got.NftMinted)
	assert.Equal(t, "tx1", got.TransactionHash)
}
