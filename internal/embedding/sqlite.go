package embedding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS embedding_cache (
	key        TEXT PRIMARY KEY,
	vector     BLOB NOT NULL,
	created_at INTEGER NOT NULL
)`

// SQLiteStore is a Store backed by a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLiteStore opens (or creates) the cache database at path.
// Use ":memory:" for a throwaway cache.
func OpenSQLiteStore(ctx context.Context, path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	var created int64
	err := s.db.QueryRowContext(ctx,
		"SELECT vector, created_at FROM embedding_cache WHERE key = ?", key,
	).Scan(&data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(created, 0)) > s.ttl {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embedding_cache (key, vector, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET vector = excluded.vector, created_at = excluded.created_at`,
		key, value, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

// Prune deletes entries older than the TTL and returns how many were removed.
func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM embedding_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sqlite prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
