package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eslsoft/myenglish/internal/repository"
)

// SqliteStore persists key-value pairs in a single sqlite table.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database file and its kv table.
func NewSqliteStore(path string) (repository.KVStore, func(), error) {
	if path == "" {
		path = "myenglish.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create kv table: %w", err)
	}

	store := &SqliteStore{db: db}
	return store, func() { _ = db.Close() }, nil
}

func (s *SqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SqliteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}
