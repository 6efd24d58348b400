package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"makepot/internal/catalog"

	_ "github.com/mattn/go-sqlite3"
)

var _ RecordCache = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite cache database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Workers share one connection; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS file_records (
			path TEXT PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			records JSON NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_file_records_fingerprint ON file_records(fingerprint);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, path, fingerprint string) ([]catalog.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT fingerprint, records FROM file_records WHERE path = ?", path)

	var stored string
	var data []byte
	if err := row.Scan(&stored, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query records of %s: %w", path, err)
	}
	if stored != fingerprint {
		return nil, false, nil
	}

	var records []catalog.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("failed to decode records of %s: %w", path, err)
	}
	return records, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, path, fingerprint string, records []catalog.Record) error {
	if records == nil {
		records = []catalog.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records of %s: %w", path, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO file_records (path, fingerprint, records, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			fingerprint=excluded.fingerprint,
			records=excluded.records,
			updated_at=excluded.updated_at
	`, path, fingerprint, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save records of %s: %w", path, err)
	}
	return nil
}

// Prune removes cached files that are not in keep. It returns the number of
// rows deleted.
func (s *SQLiteStore) Prune(ctx context.Context, keep []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS keep_paths (path TEXT PRIMARY KEY)"); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM keep_paths"); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO keep_paths (path) VALUES (?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, p := range keep {
		if _, err := stmt.ExecContext(ctx, p); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM file_records WHERE path NOT IN (SELECT path FROM keep_paths)")
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), tx.Commit()
}

// Count returns the number of cached files.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM file_records").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM file_records"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
