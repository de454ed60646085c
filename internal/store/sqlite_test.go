package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inheir-ai/inheir-console/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestKVRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetKV(ctx, "status", "in"))
	v, err := st.GetKV(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "in", v)

	// Overwrite
	require.NoError(t, st.SetKV(ctx, "status", "out"))
	v, err = st.GetKV(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "out", v)

	// Missing keys read as empty
	v, err = st.GetKV(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, st.ClearKV(ctx))
	v, err = st.GetKV(ctx, "status")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestReplaceCasesSwapsList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	first := []api.CaseSummary{
		{CaseID: "c1", Title: "Estate of Smith", Status: api.StatusOpen, CreatedAt: now},
		{CaseID: "c2", Title: "Deed dispute", Status: api.StatusResolved, CreatedAt: now.Add(-time.Hour)},
	}
	require.NoError(t, st.ReplaceCases(ctx, first))

	cached, err := st.CachedCases(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "c1", cached[0].CaseID)

	// A refetch with a different list fully replaces the old one.
	second := []api.CaseSummary{
		{CaseID: "c3", Title: "Boundary claim", Status: api.StatusOpen, CreatedAt: now},
	}
	require.NoError(t, st.ReplaceCases(ctx, second))

	cached, err = st.CachedCases(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "c3", cached[0].CaseID)
}

func TestUpdateCaseStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.ReplaceCases(ctx, []api.CaseSummary{
		{CaseID: "c1", Title: "Estate of Smith", Status: api.StatusOpen, CreatedAt: time.Now()},
	}))
	require.NoError(t, st.UpdateCaseStatus(ctx, "c1", "Resolved"))

	cached, err := st.CachedCases(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, api.StatusResolved, cached[0].Status)

	assert.Error(t, st.UpdateCaseStatus(ctx, "c1", "  "))
}

func TestTranscriptRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	turns := []Turn{
		{ID: "t1", CaseID: "c1", Content: "who inherits?", TurnType: "query", CreatedAt: now},
		{ID: "t2", CaseID: "c1", Content: "the named heirs", TurnType: "response", CreatedAt: now},
	}
	require.NoError(t, st.ReplaceTranscript(ctx, "c1", turns))

	stored, err := st.Transcript(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "who inherits?", stored[0].Content)
	assert.Equal(t, "query", stored[0].TurnType)
	assert.Equal(t, "response", stored[1].TurnType)

	// Another case's transcript is untouched.
	other, err := st.Transcript(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAuditLog(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.LogAction(ctx, AuditEntry{
		Action: "case_resolved",
		CaseID: "c1",
		Actor:  "alice",
		Details: map[string]string{
			"remarks": "settled",
		},
	}))
	require.NoError(t, st.LogAction(ctx, AuditEntry{
		Action: "case_created",
		CaseID: "c2",
		Actor:  "alice",
	}))

	entries, err := st.RecentActions(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "case_resolved", entries[0].Action)
	assert.Equal(t, "alice", entries[0].Actor)
	assert.Equal(t, "settled", entries[0].Details["remarks"])

	all, err := st.RecentActions(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
