// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/occ-vacantes/internal/search"
)

const defaultTable = "searches"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SearchStoreConfig controls the Postgres connection pool used for audit rows.
type SearchStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// SearchStore writes one row per orchestrated search. It implements
// search.Recorder.
type SearchStore struct {
	pool  execCloser
	table string
}

// NewSearchStore creates a Postgres-backed SearchStore using the provided config.
func NewSearchStore(ctx context.Context, cfg SearchStoreConfig) (*SearchStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &SearchStore{pool: pool, table: table}, nil
}

// NewSearchStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewSearchStoreWithPool(pool execCloser, table string) (*SearchStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &SearchStore{pool: pool, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		return defaultTable, nil
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *SearchStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the audit table when it does not exist yet.
func (s *SearchStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id          TEXT PRIMARY KEY,
	term        TEXT NOT NULL,
	environment TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	category    TEXT,
	result_count INTEGER NOT NULL DEFAULT 0,
	error_text  TEXT,
	duration_ms BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// RecordSearch inserts the audit row for rec.
func (s *SearchStore) RecordSearch(ctx context.Context, rec search.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("search store is not configured")
	}
	if rec.ID == "" {
		return fmt.Errorf("record id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	term,
	environment,
	outcome,
	category,
	result_count,
	error_text,
	duration_ms,
	created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`, s.table)

	args := []any{
		rec.ID,
		rec.Term,
		rec.Environment.String(),
		rec.Outcome.Kind.String(),
		nullable(rec.Outcome.CategoryLabel()),
		rec.Outcome.Count,
		nullable(rec.Outcome.RawMessage),
		rec.Duration.Milliseconds(),
		rec.StartedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
