package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedora-infra/quaystats/internal/config"
	"github.com/fedora-infra/quaystats/internal/model"
	"github.com/fedora-infra/quaystats/internal/store"
)

func TestLogsFilename(t *testing.T) {
	assert.Equal(t, "quay_fedora_fedora-bootc_logs_last_30d.json",
		logsFilename("fedora/fedora-bootc", "30d"))
}

func TestLogsFilename_NoStartTime(t *testing.T) {
	assert.Equal(t, "quay_fedora_fedora-coreos_logs.json",
		logsFilename("fedora/fedora-coreos", ""))
}

func TestLogsFilename_DateStartTime(t *testing.T) {
	// Slashes in a MM/DD/YYYY start time must not leak into the path.
	assert.Equal(t, "quay_org_repo_logs_last_05_01_2025.json",
		logsFilename("org/repo", "05/01/2025"))
}

// newFetchFlagsCmd creates a fresh cobra.Command with the same flags as
// fetchCmd, so tests don't share mutable flag state.
func newFetchFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test-fetch"}
	cmd.Flags().String("repository", "", "")
	cmd.Flags().String("start-time", "", "")
	cmd.Flags().String("end-time", "", "")
	cmd.Flags().String("output", "", "")
	cmd.SetContext(context.Background())
	return cmd
}

// setFetchTestConfig points the global config at the given API server and a
// per-test output directory, restoring the previous config on cleanup.
func setFetchTestConfig(t *testing.T, apiURL, dir string) {
	t.Helper()

	prev := cfg
	cfg = &config.Config{
		Quay: config.QuayConfig{
			Token:    "test-token",
			BaseURL:  apiURL,
			PageSize: 20,
		},
		Fetch: config.FetchConfig{
			Repository: "fedora/fedora-bootc",
			StartTime:  "30d",
			OutputDir:  dir,
		},
		History: config.HistoryConfig{Path: filepath.Join(dir, "quaystats.db")},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestFetch_NoEntries_WritesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"logs": []}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	setFetchTestConfig(t, srv.URL, dir)

	cmd := newFetchFlagsCmd()
	require.NoError(t, fetchCmd.RunE(cmd, nil))

	// An empty result must not produce an output file.
	output := filepath.Join(dir, logsFilename("fedora/fedora-bootc", "30d"))
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))

	// The run is still recorded as complete with zero entries.
	st, err := store.NewSQLite(cfg.History.Path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 0, runs[0].Entries)
	assert.Empty(t, runs[0].OutputFile)
}

func TestFetch_WritesFileAndRecordsRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"logs": [
			{"kind": "pull_repo", "ip": "192.0.2.1",
			 "datetime": "Fri, 16 May 2025 08:30:00 -0000",
			 "metadata": {"tag": "latest"}}
		]}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	setFetchTestConfig(t, srv.URL, dir)

	cmd := newFetchFlagsCmd()
	require.NoError(t, fetchCmd.RunE(cmd, nil))

	output := filepath.Join(dir, logsFilename("fedora/fedora-bootc", "30d"))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pull_repo"`)

	st, err := store.NewSQLite(cfg.History.Path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 1, runs[0].Entries)
	assert.Equal(t, output, runs[0].OutputFile)
}
