// Package db provides the sqlite-backed response sink.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openfieldlab/hashbot/internal/record"
)

const responsesSchema = `
CREATE TABLE IF NOT EXISTS responses (
	record_id      TEXT PRIMARY KEY,
	participant_id TEXT NOT NULL,
	round_index    INTEGER NOT NULL,
	hashtag_text   TEXT NOT NULL,
	submitted_at   TEXT NOT NULL,
	prompt_text    TEXT NOT NULL
)`

// SQLiteLogger persists responses in a single append-only table.
type SQLiteLogger struct {
	db *sql.DB
}

var _ record.Logger = (*SQLiteLogger)(nil)
var _ record.Reader = (*SQLiteLogger)(nil)

// Open opens (or creates) the sqlite file at path and prepares the schema.
func Open(path string) (*SQLiteLogger, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	l, err := NewSQLiteLogger(sqldb)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return l, nil
}

func NewSQLiteLogger(sqldb *sql.DB) (*SQLiteLogger, error) {
	if sqldb == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqldb.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := sqldb.Exec(responsesSchema); err != nil {
		return nil, fmt.Errorf("create responses table: %w", err)
	}
	return &SQLiteLogger{db: sqldb}, nil
}

func (l *SQLiteLogger) Append(r *record.Record) error {
	_, err := l.db.Exec(
		`INSERT INTO responses (record_id, participant_id, round_index, hashtag_text, submitted_at, prompt_text)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ParticipantID, r.RoundIndex, r.Hashtag,
		r.SubmittedAt.UTC().Format(time.RFC3339), r.Prompt,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (l *SQLiteLogger) List() ([]*record.Record, error) {
	rows, err := l.db.Query(
		`SELECT record_id, participant_id, round_index, hashtag_text, submitted_at, prompt_text
		 FROM responses ORDER BY submitted_at, record_id`)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []*record.Record
	for rows.Next() {
		var r record.Record
		var ts string
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.RoundIndex, &r.Hashtag, &ts, &r.Prompt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		r.SubmittedAt = t
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count reports how many responses the table holds.
func (l *SQLiteLogger) Count() (int, error) {
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

func (l *SQLiteLogger) Close() error { return l.db.Close() }
