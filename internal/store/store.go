package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/hrify/internal"
)

// LangPreferenceKey holds the client's chosen UI language.
const LangPreferenceKey = "hrify_lang"

// DefaultListLimit caps ListRequests when no limit is given.
const DefaultListLimit = 50

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the sqlite database at dbPath. The parent
// directory is created when missing.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		ui_lang TEXT NOT NULL,
		prompt_lang TEXT,
		text TEXT NOT NULL,
		status TEXT NOT NULL,
		result TEXT,
		error TEXT,
		latency_ms INTEGER,
		client_ip TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- preferences is a plain key/value table for client settings
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_requests_created ON requests(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRequest appends rec to the audit log. An empty ID gets a fresh UUID and
// a zero Timestamp becomes now. The stored ID is returned.
func (s *Store) SaveRequest(ctx context.Context, rec internal.ProcessRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, scenario, ui_lang, prompt_lang, text, status, result, error, latency_ms, client_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Scenario, rec.UILang, rec.PromptLang, normalizeText(rec.Text), rec.Status,
		rec.Result, rec.Error, rec.LatencyMs, rec.ClientIP, rec.Timestamp.UTC())
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListRequests returns the newest records first. limit <= 0 uses
// DefaultListLimit.
func (s *Store) ListRequests(ctx context.Context, limit int) ([]internal.ProcessRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scenario, ui_lang, COALESCE(prompt_lang, ''), text, status, COALESCE(result, ''), COALESCE(error, ''),
		        COALESCE(latency_ms, 0), COALESCE(client_ip, ''), created_at
		 FROM requests ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.ProcessRecord
	for rows.Next() {
		var r internal.ProcessRecord
		if err := rows.Scan(&r.ID, &r.Scenario, &r.UILang, &r.PromptLang, &r.Text, &r.Status, &r.Result, &r.Error,
			&r.LatencyMs, &r.ClientIP, &r.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// RequestStats summarises the audit log.
type RequestStats struct {
	Total        int
	Succeeded    int
	Failed       int
	AvgLatencyMs float64
	ByScenario   map[string]int
}

// Stats returns summary statistics for the audit log.
func (s *Store) Stats(ctx context.Context) (*RequestStats, error) {
	stats := &RequestStats{ByScenario: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM requests`, internal.StatusOK, internal.StatusOK).Scan(
		&stats.Total,
		&stats.Succeeded,
		&stats.Failed,
		&stats.AvgLatencyMs,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT scenario, COUNT(*) FROM requests GROUP BY scenario`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var scenario string
		var n int
		if err := rows.Scan(&scenario, &n); err != nil {
			return nil, err
		}
		stats.ByScenario[scenario] = n
	}
	return stats, rows.Err()
}

// ClearRequests removes every audit record.
func (s *Store) ClearRequests(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetPreference returns the stored value for key and whether it exists.
func (s *Store) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so the
// same text typed on different keyboards is stored identically.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
