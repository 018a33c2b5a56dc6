package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nftStatApp/internal/domain/repository"

	_ "modernc.org/sqlite"
)

// SQLiteBlobStore implements BlobStore on a single-file SQLite database.
// Blobs live in a key/value table and each Save is one UPSERT, so a key is
// either fully replaced or untouched.
type SQLiteBlobStore struct {
	db *sql.DB
}

var _ repository.BlobStore = (*SQLiteBlobStore)(nil)

// NewSQLiteBlobStore opens (or creates) the database at path and ensures the schema.
func NewSQLiteBlobStore(log *slog.Logger, path string) (*SQLiteBlobStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer connection; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", p, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analytics_blobs (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create analytics_blobs table: %w", err)
	}

	log.Info("sqlite blob store opened", slog.String("path", path))
	return &SQLiteBlobStore{db: db}, nil
}

func (s *SQLiteBlobStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO analytics_blobs (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM analytics_blobs WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite select %s: %w", key, err)
	}
	return data, nil
}

func (s *SQLiteBlobStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteBlobStore) Close() error {
	return s.db.Close()
}
