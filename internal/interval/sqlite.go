package interval

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS interval_keys (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interval_keys_expires ON interval_keys(expires_at);
`

// SQLiteStore backs the guard with a local SQLite file, for hosts without a
// reachable Redis. Expiry is enforced on read: rows past their deadline are
// treated as absent and cleaned up opportunistically.
type SQLiteStore struct {
	db *sql.DB

	// now is overridable in tests to simulate key expiry.
	now func() time.Time
}

// OpenSQLiteStore opens (creating if needed) the store at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// SetIfAbsent implements Store. The delete-then-insert runs in one
// transaction so two senders cannot both claim an expired key.
func (s *SQLiteStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	now := s.now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM interval_keys WHERE expires_at <= ?`, now); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO interval_keys(key, value, expires_at) VALUES(?, ?, ?)`,
		key, value, now+ttl.Milliseconds())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
