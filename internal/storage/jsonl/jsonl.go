// Package jsonl appends normalized weather records to per-provider,
// per-day JSONL files. Files are append-only so repeated collection runs
// on the same day accumulate into one file per provider.
package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

const (
	// DefaultRoot is the base directory for JSONL output.
	DefaultRoot = "data"

	KindObservation    = "observation"
	KindForecastPeriod = "forecast_period"
)

// Record is the envelope written as one JSONL line.
type Record struct {
	Provider string `json:"provider"`
	StoredAt string `json:"stored_at"`
	Kind     string `json:"kind"`
	Data     any    `json:"data"`
}

// Store writes records under root/YYYY-MM-DD/<provider>.jsonl.
type Store struct {
	root  string
	clock clockwork.Clock
}

// NewStore returns a store rooted at root, or DefaultRoot when root is
// empty. Pass a nil clock for real time.
func NewStore(root string, clock clockwork.Clock) *Store {
	if root == "" {
		root = DefaultRoot
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{root: root, clock: clock}
}

// Append writes the given normalized records for provider to the current
// day's file and returns the path written. Records must be
// domain.Observation or domain.ForecastPeriod values (or pointers to them).
func (s *Store) Append(provider string, records []any) (string, error) {
	now := s.clock.Now().UTC()
	destination := filepath.Join(s.root, now.Format("2006-01-02"), provider+".jsonl")
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return "", fmt.Errorf("jsonl: create directory: %w", err)
	}

	file, err := os.OpenFile(destination, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("jsonl: open %s: %w", destination, err)
	}
	defer file.Close()

	storedAt := now.Format(time.RFC3339)
	encoder := json.NewEncoder(file)
	for _, record := range records {
		kind, err := recordKind(record)
		if err != nil {
			return "", err
		}
		line := Record{
			Provider: provider,
			StoredAt: storedAt,
			Kind:     kind,
			Data:     record,
		}
		if err := encoder.Encode(line); err != nil {
			return "", fmt.Errorf("jsonl: write %s: %w", destination, err)
		}
	}

	return destination, nil
}

func recordKind(record any) (string, error) {
	switch record.(type) {
	case domain.Observation, *domain.Observation:
		return KindObservation, nil
	case domain.ForecastPeriod, *domain.ForecastPeriod:
		return KindForecastPeriod, nil
	default:
		return "", fmt.Errorf("jsonl: unsupported record type %T", record)
	}
}
