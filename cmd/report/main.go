// Command report renders the daily archive metrics as JSON and Markdown
// artifacts, and summarizes the SQLite data-point counts.
//
// Usage:
//
//	go run ./cmd/report -data-root data -reports-root reports
//	go run ./cmd/report -day 2024-04-26 -db data/wxbench.sqlite
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ericfeunekes/wxbench/internal/storage/jsonl"
	"github.com/ericfeunekes/wxbench/internal/storage/sqlite"
)

func main() {
	dataRoot := flag.String("data-root", jsonl.DefaultRoot, "root of the JSONL archive")
	reportsRoot := flag.String("reports-root", "reports", "output directory for report artifacts")
	day := flag.String("day", time.Now().UTC().Format("2006-01-02"), "archive day to report on (YYYY-MM-DD)")
	dbPath := flag.String("db", "", "optional SQLite archive to summarize")
	flag.Parse()

	if _, err := time.Parse("2006-01-02", *day); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: invalid -day %q: %v\n", *day, err)
		os.Exit(1)
	}

	if code := run(*dataRoot, *reportsRoot, *day, *dbPath); code != 0 {
		os.Exit(code)
	}
}

func run(dataRoot, reportsRoot, day, dbPath string) int {
	artifacts, err := jsonl.GenerateDailyReport(dataRoot, reportsRoot, day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: generate report: %v\n", err)
		return 1
	}

	fmt.Printf("Report for %s\n", day)
	fmt.Printf("  JSON:     %s\n", artifacts.JSONPath)
	fmt.Printf("  Markdown: %s\n", artifacts.MarkdownPath)
	fmt.Printf("  Totals:   %d observations, %d forecast periods, %d records\n",
		artifacts.Metrics.Totals.Observations,
		artifacts.Metrics.Totals.ForecastPeriods,
		artifacts.Metrics.Totals.Records,
	)

	if dbPath == "" {
		return 0
	}
	return summarizeDatabase(dbPath)
}

func summarizeDatabase(dbPath string) int {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open database: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx := context.Background()
	counts, err := store.CountDataPoints(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: count data points: %v\n", err)
		return 1
	}
	latest, err := store.LatestRun(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: latest run: %v\n", err)
		return 1
	}

	fmt.Println("\nData points by provider:")
	providers := make([]string, 0, len(counts))
	for name := range counts {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	for _, name := range providers {
		products := counts[name]
		kinds := make([]string, 0, len(products))
		for kind := range products {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %-20s %-16s %6d\n", name, kind, products[kind])
		}
	}

	if latest.IsZero() {
		fmt.Println("\nNo collection runs recorded.")
	} else {
		fmt.Printf("\nLatest run: %s\n", latest.Format(time.RFC3339))
	}
	return 0
}
