package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	got, err := ParseTime("Fri, 16 May 2025 06:15:07 -0000")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 16, got.Day())
	assert.Equal(t, 6, got.Hour())
}

func TestParseTime_Empty(t *testing.T) {
	t.Parallel()

	_, err := ParseTime("")
	require.Error(t, err)
}

func TestParseTime_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseTime("2025-05-16T06:15:07Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse datetime")
}

func TestLogEntry_Unmarshal(t *testing.T) {
	t.Parallel()

	raw := `{
		"kind": "pull_repo",
		"ip": "203.0.113.7",
		"datetime": "Fri, 16 May 2025 06:15:07 -0000",
		"metadata": {
			"user-agent": "containers/5.30.0 (github.com/containers/image)",
			"tag": "latest",
			"resolved_ip": {"country_iso_code": "DE"}
		},
		"performer": {"name": "fedora+bot", "kind": "user", "is_robot": true}
	}`

	var e LogEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "pull_repo", e.Kind)
	assert.Equal(t, "203.0.113.7", e.IP)
	assert.Equal(t, "latest", e.Metadata.Tag)
	assert.Equal(t, "DE", e.Metadata.ResolvedIP.CountryISOCode)
	assert.Equal(t, "fedora+bot", e.PerformerName())
	assert.True(t, e.Performer.IsRobot)
}

func TestLogEntry_PerformerFallback(t *testing.T) {
	t.Parallel()

	e := LogEntry{Metadata: Metadata{Username: "someuser"}}
	assert.Equal(t, "someuser", e.PerformerName())

	e.Performer = &Performer{Name: "robot"}
	assert.Equal(t, "robot", e.PerformerName())

	assert.Empty(t, LogEntry{}.PerformerName())
}

func TestAggregatedEntry_StampDerived(t *testing.T) {
	t.Parallel()

	a := AggregatedEntry{Kind: "pull_repo", Count: 42, Datetime: "Thu, 01 May 2025 00:00:00 -0000"}
	a.StampDerived("fedora/fedora-bootc")

	assert.Equal(t, "fedora/fedora-bootc", a.Repo)
	assert.Equal(t, "2025-05-01", a.Date)
}

func TestAggregatedEntry_StampDerived_BadDatetime(t *testing.T) {
	t.Parallel()

	a := AggregatedEntry{Kind: "pull_repo", Count: 1, Datetime: "not a date"}
	a.StampDerived("fedora/fedora-coreos")

	assert.Equal(t, "fedora/fedora-coreos", a.Repo)
	assert.Empty(t, a.Date)
}
