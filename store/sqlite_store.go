package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS pipelines (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		modified REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pipelines_modified ON pipelines(modified);
`

// SQLiteStore keeps pipelines in a single SQLite table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection serialises writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init pipelines schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, name string, body []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	modified := float64(s.now().UnixNano()) / 1e9
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipelines (name, body, modified) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, modified = excluded.modified`,
		name, string(body), modified)
	if err != nil {
		return fmt.Errorf("error saving pipeline %s: %w", name, err)
	}

	logger.Info("Saved pipeline", zap.String("name", name), zap.String("store", "sqlite"))
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, modified FROM pipelines`)
	if err != nil {
		return nil, fmt.Errorf("error listing pipelines: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Modified); err != nil {
			return nil, fmt.Errorf("error scanning pipeline: %w", err)
		}
		e.File = e.Name + fileExtension
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing pipelines: %w", err)
	}

	sortNewestFirst(entries)
	return entries, nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM pipelines WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errPipelineNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading pipeline %s: %w", name, err)
	}
	return []byte(body), nil
}
