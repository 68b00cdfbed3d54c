package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedora-infra/quaystats/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndCompleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "fedora/fedora-bootc", model.RunKindLogs, "30d", "")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	err = st.CompleteRun(ctx, run.ID, 2450, "quay_fedora_fedora-bootc_logs_last_30d.json")
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 2450, runs[0].Entries)
	assert.Equal(t, "quay_fedora_fedora-bootc_logs_last_30d.json", runs[0].OutputFile)
	assert.Equal(t, "30d", runs[0].StartTime)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "fedora/fedora-coreos", model.RunKindAggregate, "05/01/2025", "05/08/2025")
	require.NoError(t, err)

	err = st.FailRun(ctx, run.ID, "quay: unexpected status 401")
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "quay: unexpected status 401", runs[0].Error)
}

func TestSQLite_CompleteRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "no-such-id", 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, "fedora/fedora-bootc", model.RunKindLogs, "30d", "")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "fedora/fedora-coreos", model.RunKindAggregate, "05/01/2025", "05/08/2025")
	require.NoError(t, err)

	byRepo, err := st.ListRuns(ctx, RunFilter{Repository: "fedora/fedora-bootc"})
	require.NoError(t, err)
	require.Len(t, byRepo, 1)
	assert.Equal(t, model.RunKindLogs, byRepo[0].Kind)

	byKind, err := st.ListRuns(ctx, RunFilter{Kind: model.RunKindAggregate})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, "fedora/fedora-coreos", byKind[0].Repository)

	none, err := st.ListRuns(ctx, RunFilter{Repository: "nobody/nothing"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for range 5 {
		_, err := st.CreateRun(ctx, "fedora/fedora-bootc", model.RunKindLogs, "", "")
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
