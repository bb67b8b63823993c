package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertAndGetCall(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	call := domain.CallInfo{
		CallID:       "c1",
		Path:         "/",
		Identity:     domain.Identity{Phone: "0501234567", DID: "0771234567", Extension: "1"},
		Status:       domain.CallStatusAwaitingInput,
		PendingName:  "val_1",
		PendingMode:  domain.ReadModeTap,
		StartedAt:    started,
		LastActivity: started,
	}
	require.NoError(t, s.UpsertCall(ctx, call))

	got, err := s.GetCall(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.CallStatusAwaitingInput, got.Status)
	assert.Equal(t, "0501234567", got.Identity.Phone)
	assert.Equal(t, "val_1", got.PendingName)
	assert.Equal(t, domain.ReadModeTap, got.PendingMode)
	assert.Empty(t, got.Values)
	assert.True(t, started.Equal(got.StartedAt))

	call.Status = domain.CallStatusRunning
	call.PendingName = ""
	call.PendingMode = ""
	call.Values = []domain.Value{{Name: "val_1", Value: "1"}}
	require.NoError(t, s.UpsertCall(ctx, call))

	got, err = s.GetCall(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusRunning, got.Status)
	assert.Equal(t, []domain.Value{{Name: "val_1", Value: "1"}}, got.Values)
	assert.Empty(t, got.PendingName)
}

func TestGetCallNotFound(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetCall(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAndDeleteCalls(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.UpsertCall(ctx, domain.CallInfo{CallID: "a", Path: "/", Status: domain.CallStatusRunning, StartedAt: now, LastActivity: now}))
	require.NoError(t, s.UpsertCall(ctx, domain.CallInfo{CallID: "b", Path: "/", Status: domain.CallStatusAwaitingInput, StartedAt: now.Add(time.Second), LastActivity: now}))

	all, err := s.ListCalls(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].CallID)

	waiting, err := s.ListCalls(ctx, domain.CallStatusAwaitingInput)
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, "b", waiting[0].CallID)

	require.NoError(t, s.DeleteCall(ctx, "a"))
	all, err = s.ListCalls(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
