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

package binding

import (
	"context"
	"testing"

	"github.com/blinklabs-io/credmint/database"
	"github.com/blinklabs-io/credmint/database/models"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	bindings map[string]*models.AddressBinding
	courses  map[string]*models.Course
}

func newMockStore() *mockStore {
	return &mockStore{
		bindings: make(map[string]*models.AddressBinding),
		courses:  make(map[string]*models.Course),
	}
}

func (m *mockStore) AddressBinding(
	_ context.Context,
	courseId string,
	studentId string,
) (*models.AddressBinding, error) {
	binding, ok := m.bindings[courseId+"/"+studentId]
	if !ok {
		return nil, database.ErrNotFound
	}
	return binding, nil
}

func (m *mockStore) CreateAddressBinding(
	_ context.Context,
	binding *models.AddressBinding,
) error {
	m.bindings[binding.CourseID+"/"+binding.StudentID] = binding
	return nil
}

func (m *mockStore) Course(
	_ context.Context,
	courseId string,
) (*models.Course, error) {
	course, ok := m.courses[courseId]
	if !ok {
		return nil, database.ErrNotFound
	}
	return course, nil
}

func testAddress(t *testing.T, seed string) string {
	t.Helper()
	keyHash := lcommon.Blake2b224Hash([]byte(seed))
	addr, err := lcommon.NewAddressFromParts(
		lcommon.AddressTypeKeyNone,
		0,
		keyHash.Bytes(),
		nil,
	)
	require.NoError(t, err)
	return addr.String()
}

func testService(store *mockStore) *Service {
	return New(Config{
		Store:   store,
		Courses: store,
	})
}

func TestBindAndLookup(t *testing.T) {
	store := newMockStore()
	svc := testService(store)
	ctx := context.Background()
	studentAddr := testAddress(t, "student")
	eduAddr := testAddress(t, "educator")

	require.NoError(t, svc.Bind(ctx, "C1", "S1", studentAddr, eduAddr))

	got, err := svc.Lookup(ctx, "C1", "S1")
	require.NoError(t, err)
	assert.Equal(t, studentAddr, got)
}

func TestBindIdempotent(t *testing.T) {
	store := newMockStore()
	svc := testService(store)
	ctx := context.Background()
	studentAddr := testAddress(t, "student")

	require.NoError(t, svc.Bind(ctx, "C1", "S1", studentAddr, ""))
	require.NoError(t, svc.Bind(ctx, "C1", "S1", studentAddr, ""))
}

func TestBindConflict(t *testing.T) {
	store := newMockStore()
	svc := testService(store)
	ctx := context.Background()

	require.NoError(
		t,
		svc.Bind(ctx, "C1", "S1", testAddress(t, "first"), ""),
	)
	err := svc.Bind(ctx, "C1", "S1", testAddress(t, "second"), "")
	require.ErrorIs(t, err, ErrBindingConflict)
}

func TestBindInvalidAddress(t *testing.T) {
	store := newMockStore()
	svc := testService(store)
	err := svc.Bind(
		context.Background(), "C1", "S1", "not-an-address", "",
	)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBindingConflict)
}

func TestBindInvalidEducatorWallet(t *testing.T) {
	store := newMockStore()
	svc := testService(store)
	err := svc.Bind(
		context.Background(),
		"C1", "S1",
		testAddress(t, "student"),
		"not-an-address",
	)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBindingConflict)
}

func TestVerify(t *testing.T) {
	store := newMockStore()
	store.courses["C1"] = &models.Course{ID: "C1", EducatorID: "E1"}
	svc := testService(store)
	ctx := context.Background()
	studentAddr := testAddress(t, "student")
	eduAddr := testAddress(t, "educator")

	require.NoError(t, svc.Bind(ctx, "C1", "S1", studentAddr, eduAddr))

	got, err := svc.Verify(ctx, "C1", "S1", "E1", eduAddr)
	require.NoError(t, err)
	assert.Equal(t, studentAddr, got)
}

func TestVerifyWrongEducator(t *testing.T) {
	store := newMockStore()
	store.courses["C1"] = &models.Course{ID: "C1", EducatorID: "E1"}
	svc := testService(store)
	ctx := context.Background()
	eduAddr := testAddress(t, "educator")

	require.NoError(
		t,
		svc.Bind(ctx, "C1", "S1", testAddress(t, "student"), eduAddr),
	)

	_, err := svc.Verify(ctx, "C1", "S1", "E2", eduAddr)
	require.ErrorIs(t, err, ErrOwnershipMismatch)

	_, err = svc.Verify(ctx, "C1", "S1", "E1", testAddress(t, "other"))
	require.ErrorIs(t, err, ErrOwnershipMismatch)
}

func TestVerifyEmptyBoundEducatorWallet(t *testing.T) {
	store := newMockStore()
	store.courses["C1"] = &models.Course{ID: "C1", EducatorID: "E1"}
	svc := testService(store)
	ctx := context.Background()

	require.NoError(
		t,
		svc.Bind(ctx, "C1", "S1", testAddress(t, "student"), ""),
	)

	_, err := svc.Verify(ctx, "C1", "S1", "E1", testAddress(t, "educator"))
	require.ErrorIs(t, err, ErrOwnershipMismatch)

	_, err = svc.Verify(ctx, "C1", "S1", "E1", "")
	require.ErrorIs(t, err, ErrOwnershipMismatch)
}

func TestVerifyFailsClosed(t *testing.T) {
	store := newMockStore()
	store.courses["C1"] = &models.Course{ID: "C1", EducatorID: "E1"}
	svc := testService(store)
	ctx := context.Background()

	eduAddr := testAddress(t, "educator")

	// Course exists, no binding
	_, err := svc.Verify(ctx, "C1", "S1", "E1", eduAddr)
	require.ErrorIs(t, err, ErrOwnershipMismatch)

	// Unknown course
	_, err = svc.Verify(ctx, "C9", "S1", "E1", eduAddr)
	require.ErrorIs(t, err, ErrOwnershipMismatch)
}
