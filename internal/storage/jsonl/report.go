package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProviderCounts summarizes one provider's records for a day.
type ProviderCounts struct {
	Observations    int `json:"observations"`
	ForecastPeriods int `json:"forecast_periods"`
	Records         int `json:"records"`
}

// DailyMetrics is the aggregate for one day of stored records.
type DailyMetrics struct {
	Date      string                    `json:"date"`
	Providers map[string]ProviderCounts `json:"providers"`
	Totals    ProviderCounts            `json:"totals"`
}

// ReportArtifacts names the files produced for a day's report.
type ReportArtifacts struct {
	Metrics      DailyMetrics
	JSONPath     string
	MarkdownPath string
}

// CollectMetrics reads a day's JSONL files under root and counts records
// per provider. A missing day directory yields empty metrics, not an error.
func CollectMetrics(root, day string) (DailyMetrics, error) {
	metrics := DailyMetrics{Date: day, Providers: map[string]ProviderCounts{}}

	dayDir := filepath.Join(root, day)
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		if os.IsNotExist(err) {
			return metrics, nil
		}
		return metrics, fmt.Errorf("jsonl: read %s: %w", dayDir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		provider := strings.TrimSuffix(name, ".jsonl")

		counts, err := countFile(filepath.Join(dayDir, name))
		if err != nil {
			return metrics, err
		}
		metrics.Providers[provider] = counts
		metrics.Totals.Observations += counts.Observations
		metrics.Totals.ForecastPeriods += counts.ForecastPeriods
		metrics.Totals.Records += counts.Records
	}

	return metrics, nil
}

func countFile(path string) (ProviderCounts, error) {
	var counts ProviderCounts

	file, err := os.Open(path)
	if err != nil {
		return counts, fmt.Errorf("jsonl: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		counts.Records++

		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return counts, fmt.Errorf("jsonl: parse %s: %w", path, err)
		}
		switch record.Kind {
		case KindObservation:
			counts.Observations++
		case KindForecastPeriod:
			counts.ForecastPeriods++
		}
	}
	if err := scanner.Err(); err != nil {
		return counts, fmt.Errorf("jsonl: read %s: %w", path, err)
	}
	return counts, nil
}

// RenderMarkdown formats metrics as a per-provider Markdown table.
func RenderMarkdown(metrics DailyMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Weather report for %s\n\n", metrics.Date)
	b.WriteString("| Provider | Observations | Forecast periods | Records |\n")
	b.WriteString("|---|---:|---:|---:|\n")

	providers := make([]string, 0, len(metrics.Providers))
	for provider := range metrics.Providers {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	for _, provider := range providers {
		counts := metrics.Providers[provider]
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n",
			provider, counts.Observations, counts.ForecastPeriods, counts.Records)
	}
	fmt.Fprintf(&b, "| **Total** | **%d** | **%d** | **%d** |\n",
		metrics.Totals.Observations, metrics.Totals.ForecastPeriods, metrics.Totals.Records)
	return b.String()
}

// GenerateDailyReport aggregates a day's records into JSON and Markdown
// files under reportsRoot.
func GenerateDailyReport(root, reportsRoot, day string) (ReportArtifacts, error) {
	if reportsRoot == "" {
		reportsRoot = "reports"
	}
	if err := os.MkdirAll(reportsRoot, 0o755); err != nil {
		return ReportArtifacts{}, fmt.Errorf("jsonl: create reports directory: %w", err)
	}

	metrics, err := CollectMetrics(root, day)
	if err != nil {
		return ReportArtifacts{}, err
	}

	artifacts := ReportArtifacts{
		Metrics:      metrics,
		JSONPath:     filepath.Join(reportsRoot, day+".json"),
		MarkdownPath: filepath.Join(reportsRoot, day+".md"),
	}

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return artifacts, err
	}
	if err := os.WriteFile(artifacts.JSONPath, append(data, '\n'), 0o644); err != nil {
		return artifacts, fmt.Errorf("jsonl: write report: %w", err)
	}
	if err := os.WriteFile(artifacts.MarkdownPath, []byte(RenderMarkdown(metrics)), 0o644); err != nil {
		return artifacts, fmt.Errorf("jsonl: write report: %w", err)
	}
	return artifacts, nil
}
