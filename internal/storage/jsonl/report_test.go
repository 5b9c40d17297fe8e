package jsonl

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

func seedDay(t *testing.T, root string, now time.Time) {
	t.Helper()
	store := NewStore(root, clockwork.NewFakeClockAt(now))

	location := domain.Location{Latitude: 45.4, Longitude: -75.7}
	obs := domain.Observation{Provider: "openweather", Location: location, ObservedAt: now}
	period := domain.ForecastPeriod{
		Provider: "openweather", Location: location,
		IssuedAt: now, StartTime: now, EndTime: now.Add(time.Hour),
	}

	_, err := store.Append("openweather", []any{obs, period, period})
	require.NoError(t, err)
	obs.Provider = "geomet"
	_, err = store.Append("geomet", []any{obs})
	require.NoError(t, err)
}

func TestCollectMetrics(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	seedDay(t, root, now)

	metrics, err := CollectMetrics(root, "2023-06-01")
	require.NoError(t, err)

	assert.Equal(t, "2023-06-01", metrics.Date)
	assert.Equal(t, ProviderCounts{Observations: 1, ForecastPeriods: 2, Records: 3}, metrics.Providers["openweather"])
	assert.Equal(t, ProviderCounts{Observations: 1, Records: 1}, metrics.Providers["geomet"])
	assert.Equal(t, ProviderCounts{Observations: 2, ForecastPeriods: 2, Records: 4}, metrics.Totals)
}

func TestCollectMetrics_MissingDay(t *testing.T) {
	metrics, err := CollectMetrics(t.TempDir(), "2023-06-01")
	require.NoError(t, err)
	assert.Empty(t, metrics.Providers)
	assert.Equal(t, ProviderCounts{}, metrics.Totals)
}

func TestRenderMarkdown(t *testing.T) {
	metrics := DailyMetrics{
		Date: "2023-06-01",
		Providers: map[string]ProviderCounts{
			"openweather": {Observations: 1, ForecastPeriods: 2, Records: 3},
			"geomet":      {Observations: 1, Records: 1},
		},
		Totals: ProviderCounts{Observations: 2, ForecastPeriods: 2, Records: 4},
	}

	out := RenderMarkdown(metrics)
	assert.Contains(t, out, "# Weather report for 2023-06-01")
	assert.Contains(t, out, "| geomet | 1 | 0 | 1 |")
	assert.Contains(t, out, "| openweather | 1 | 2 | 3 |")
	assert.Contains(t, out, "| **Total** | **2** | **2** | **4** |")
	// Providers render alphabetically.
	assert.Less(t, strings.Index(out, "| geomet |"), strings.Index(out, "| openweather |"))
}

func TestGenerateDailyReport(t *testing.T) {
	root := t.TempDir()
	reports := t.TempDir()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	seedDay(t, root, now)

	artifacts, err := GenerateDailyReport(root, reports, "2023-06-01")
	require.NoError(t, err)

	data, err := os.ReadFile(artifacts.JSONPath)
	require.NoError(t, err)
	var metrics DailyMetrics
	require.NoError(t, json.Unmarshal(data, &metrics))
	assert.Equal(t, artifacts.Metrics, metrics)

	markdown, err := os.ReadFile(artifacts.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "| **Total** | **2** | **2** | **4** |")
}
