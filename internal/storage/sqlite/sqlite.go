// Package sqlite persists captured provider payloads and normalized data
// points. Timestamps are stored as RFC 3339 text in UTC.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

// RawPayload is one captured HTTP exchange.
type RawPayload struct {
	Provider        string
	Endpoint        string
	RunAt           time.Time
	RequestURL      string
	RequestParams   map[string]string
	RequestHeaders  map[string]string
	ResponseStatus  int
	ResponseHeaders map[string]string
	PayloadJSON     string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS raw_payloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			run_at_utc TEXT NOT NULL,
			request_url TEXT NOT NULL,
			request_params_json TEXT,
			request_headers_json TEXT,
			response_status INTEGER NOT NULL,
			response_headers_json TEXT,
			payload_json TEXT NOT NULL,
			payload_sha256 TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS data_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			raw_id INTEGER NOT NULL,
			provider TEXT NOT NULL,
			product_kind TEXT NOT NULL,
			metric_type TEXT NOT NULL,
			value_num REAL,
			value_text TEXT,
			unit TEXT,
			value_raw TEXT,
			unit_raw TEXT,
			observed_at_utc TEXT,
			valid_start_utc TEXT,
			valid_end_utc TEXT,
			issued_at_utc TEXT,
			run_at_utc TEXT NOT NULL,
			local_day TEXT,
			lead_unit TEXT,
			lead_offset INTEGER,
			lead_label TEXT,
			lead_day_index INTEGER,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			station TEXT,
			source_field TEXT,
			quality_flag TEXT,
			FOREIGN KEY(raw_id) REFERENCES raw_payloads(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_raw_payloads_provider_run ON raw_payloads(provider, run_at_utc);`,
		`CREATE INDEX IF NOT EXISTS idx_data_points_provider_kind ON data_points(provider, product_kind);`,
		`CREATE INDEX IF NOT EXISTS idx_data_points_metric ON data_points(metric_type);`,
		`CREATE INDEX IF NOT EXISTS idx_data_points_time ON data_points(run_at_utc, valid_start_utc, observed_at_utc);`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

// InsertRawPayload stores a captured exchange and returns its row id for
// linking data points.
func (s *Store) InsertRawPayload(ctx context.Context, payload RawPayload) (int64, error) {
	digest := sha256.Sum256([]byte(payload.PayloadJSON))

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_payloads (
			provider, endpoint, run_at_utc, request_url,
			request_params_json, request_headers_json,
			response_status, response_headers_json,
			payload_json, payload_sha256
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payload.Provider,
		payload.Endpoint,
		payload.RunAt.UTC().Format(time.RFC3339),
		payload.RequestURL,
		jsonOrNil(payload.RequestParams),
		jsonOrNil(payload.RequestHeaders),
		payload.ResponseStatus,
		jsonOrNil(payload.ResponseHeaders),
		payload.PayloadJSON,
		hex.EncodeToString(digest[:]),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert raw payload: %w", err)
	}
	return result.LastInsertId()
}

// InsertDataPoints writes normalized data points linked to a raw payload
// inside a single transaction.
func (s *Store) InsertDataPoints(ctx context.Context, rawID int64, points []domain.DataPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data_points (
			raw_id, provider, product_kind, metric_type,
			value_num, value_text, unit, value_raw, unit_raw,
			observed_at_utc, valid_start_utc, valid_end_utc, issued_at_utc,
			run_at_utc, local_day,
			lead_unit, lead_offset, lead_label, lead_day_index,
			latitude, longitude, station, source_field, quality_flag
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range points {
		point := points[i]
		_, err = stmt.ExecContext(ctx,
			rawID,
			point.Provider,
			point.ProductKind,
			point.MetricType,
			nullFloat(point.ValueNum),
			nullString(point.ValueText),
			nullString(point.Unit),
			nullString(point.ValueRaw),
			nullString(point.UnitRaw),
			nullTime(point.ObservedAt),
			nullTime(point.ValidStart),
			nullTime(point.ValidEnd),
			nullTime(point.IssuedAt),
			point.RunAt.UTC().Format(time.RFC3339),
			nullString(point.LocalDay),
			nullString(point.LeadUnit),
			nullInt(point.LeadOffset),
			nullString(point.LeadLabel),
			nullInt(point.LeadDayIndex),
			point.Latitude,
			point.Longitude,
			nullString(point.Station),
			nullString(point.SourceField),
			nullString(point.QualityFlag),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert data point: %w", err)
		}
	}

	return tx.Commit()
}

// CountDataPoints returns per provider and product counts, for reporting.
func (s *Store) CountDataPoints(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, product_kind, COUNT(*)
		FROM data_points
		GROUP BY provider, product_kind
		ORDER BY provider, product_kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var provider, product string
		var count int
		if err := rows.Scan(&provider, &product, &count); err != nil {
			return nil, err
		}
		if counts[provider] == nil {
			counts[provider] = make(map[string]int)
		}
		counts[provider][product] = count
	}
	return counts, rows.Err()
}

// StoredPayload is a raw payload row read back for replay.
type StoredPayload struct {
	ID          int64
	Provider    string
	Endpoint    string
	RunAt       time.Time
	PayloadJSON string
}

// ListRawPayloads returns stored payloads in insertion order. An empty
// provider matches all providers; a limit of zero or less returns every row.
func (s *Store) ListRawPayloads(ctx context.Context, provider string, limit int) ([]StoredPayload, error) {
	query := `SELECT id, provider, endpoint, run_at_utc, payload_json FROM raw_payloads`
	args := []any{}
	if provider != "" {
		query += ` WHERE provider = ?`
		args = append(args, provider)
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payloads []StoredPayload
	for rows.Next() {
		var p StoredPayload
		var runAt string
		if err := rows.Scan(&p.ID, &p.Provider, &p.Endpoint, &runAt, &p.PayloadJSON); err != nil {
			return nil, err
		}
		if p.RunAt, err = time.Parse(time.RFC3339, runAt); err != nil {
			return nil, fmt.Errorf("sqlite: raw payload %d: %w", p.ID, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, rows.Err()
}

// LatestRun returns the most recent run timestamp recorded in data_points,
// or the zero time when the table is empty.
func (s *Store) LatestRun(ctx context.Context) (time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(run_at_utc) FROM data_points`).Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw.String)
}

func jsonOrNil(value map[string]string) any {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return string(data)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(time.RFC3339)
}
