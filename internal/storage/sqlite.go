package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ PageCache = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Generation workers share the store; writes are serialised.
	db.SetMaxOpenConns(1)

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
		`CREATE TABLE IF NOT EXISTS pages (
			source TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			template_hash TEXT NOT NULL,
			dest TEXT,
			title TEXT,
			built_at INTEGER
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, source string) (PageRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT source, content_hash, template_hash, dest, title, built_at FROM pages WHERE source = ?", source)

	var rec PageRecord
	var builtAt int64
	if err := row.Scan(&rec.Source, &rec.ContentHash, &rec.TemplateHash, &rec.Dest, &rec.Title, &builtAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PageRecord{}, fmt.Errorf("%s: %w", source, ErrNotFound)
		}
		return PageRecord{}, err
	}
	rec.BuiltAt = time.Unix(0, builtAt).UTC()
	return rec, nil
}

func (s *SQLiteStore) SavePage(ctx context.Context, rec PageRecord) error {
	if rec.BuiltAt.IsZero() {
		rec.BuiltAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (source, content_hash, template_hash, dest, title, built_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			content_hash=excluded.content_hash,
			template_hash=excluded.template_hash,
			dest=excluded.dest,
			title=excluded.title,
			built_at=excluded.built_at
	`, rec.Source, rec.ContentHash, rec.TemplateHash, rec.Dest, rec.Title, rec.BuiltAt.UnixNano())

	return err
}

// Prune keeps the cache in sync with the current content snapshot: rows for
// sources that no longer exist are removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep_sources (source TEXT PRIMARY KEY)`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_sources`); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO keep_sources (source) VALUES (?) ON CONFLICT(source) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, src := range keep {
		if _, err := stmt.ExecContext(ctx, src); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE source NOT IN (SELECT source FROM keep_sources)`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_sources`); err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}

// Count returns the number of cached pages.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n)
	return n, err
}
