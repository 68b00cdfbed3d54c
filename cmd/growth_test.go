package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthWindow_Days(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := growthWindow(7, "", "", now)
	require.NoError(t, err)
	assert.Equal(t, now, end)
	assert.Equal(t, now.AddDate(0, 0, -7), start)
}

func TestGrowthWindow_ExplicitDates(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := growthWindow(7, "2025-05-01", "2025-05-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestGrowthWindow_StartDateOnly(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := growthWindow(7, "2025-06-01", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)
}

func TestGrowthWindow_BadDate(t *testing.T) {
	_, _, err := growthWindow(7, "06/01/2025", "", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse start date")
}

func TestGrowthWindow_StartAfterEnd(t *testing.T) {
	_, _, err := growthWindow(7, "2025-06-15", "2025-06-01", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after end date")
}
