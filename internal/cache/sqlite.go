// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citeverify/pkg/types"
)

const dbFile = "cache.db"

// SQLiteStore keeps entries in a single-table SQLite database. created_at
// is stored as Unix nanoseconds.
type SQLiteStore struct {
	db   *sql.DB
	path string
	opts options
}

// OpenSQLite opens or creates dir/cache.db and its schema.
func OpenSQLite(dir string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	path := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, opts: buildOptions(opts)}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS verification_cache (
			cache_key TEXT PRIMARY KEY,
			result_json TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			query_type TEXT,
			query_value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_created_at ON verification_cache(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) cutoff() int64 {
	return s.opts.clock().Add(-s.opts.ttl).UnixNano()
}

// Get returns the stored result for the query, or ErrMiss.
func (s *SQLiteStore) Get(ctx context.Context, queryType, value string) (*types.VerificationResult, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM verification_cache WHERE cache_key = ? AND created_at > ?`,
		Key(queryType, value), s.cutoff(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	return decodeResult([]byte(raw))
}

// Set stores r under the query, replacing any previous entry.
func (s *SQLiteStore) Set(ctx context.Context, queryType, value string, r *types.VerificationResult) error {
	if !cacheable(r) {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO verification_cache
			(cache_key, result_json, created_at, query_type, query_value)
			VALUES (?, ?, ?, ?, ?)`,
		Key(queryType, value), string(data), s.opts.clock().UnixNano(),
		queryType, truncate(value, maxQueryValue),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry and returns how many were removed.
func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM verification_cache`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ClearExpired deletes entries older than the TTL.
func (s *SQLiteStore) ClearExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_cache WHERE created_at <= ?`, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("clearing expired entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats counts entries by validity and query type.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByType: map[string]int{}, Location: s.path, TTL: s.opts.ttl}

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM verification_cache`,
	).Scan(&st.Total); err != nil {
		return Stats{}, fmt.Errorf("counting entries: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM verification_cache WHERE created_at > ?`, s.cutoff(),
	).Scan(&st.Valid); err != nil {
		return Stats{}, fmt.Errorf("counting valid entries: %w", err)
	}
	st.Expired = st.Total - st.Valid

	rows, err := s.db.QueryContext(ctx,
		`SELECT query_type, count(*) FROM verification_cache GROUP BY query_type`)
	if err != nil {
		return Stats{}, fmt.Errorf("grouping entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var qt sql.NullString
		var n int
		if err := rows.Scan(&qt, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning entry group: %w", err)
		}
		st.ByType[qt.String] = n
	}
	return st, rows.Err()
}
