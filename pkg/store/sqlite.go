package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layouts (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// SQLiteStore keeps snapshots in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// Single writer connection serializes writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create layouts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get retrieves a snapshot. Expired rows are deleted and reported as a miss.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data    []byte
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM layouts WHERE key = ?`, key).Scan(&data, &expires)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query layout: %w", err)
	}
	if expires > 0 && time.Now().Unix() > expires {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM layouts WHERE key = ?`, key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set upserts a snapshot.
func (s *SQLiteStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	ts := time.Now().Unix()
	var expires int64
	if e := expiry(ttl); !e.IsZero() {
		expires = e.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO layouts(key, data, updated_at, expires_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at, expires_at = excluded.expires_at`,
		key, data, ts, expires)
	if err != nil {
		return fmt.Errorf("upsert layout: %w", err)
	}
	return nil
}

// Delete removes a snapshot.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

// List returns live keys beginning with prefix.
func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM layouts
		 WHERE key LIKE ? ESCAPE '\' AND (expires_at = 0 OR expires_at >= ?)
		 ORDER BY key`,
		likePrefix(prefix), time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

var _ Store = (*SQLiteStore)(nil)
