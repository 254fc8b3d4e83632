package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webword/wordcrawler/internal/crawler"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool used for run rows.
type PostgresConfig struct {
	DSN      string
	Table    string
	MaxConns int32
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore writes crawl runs into Postgres.
type PostgresStore struct {
	pool  execCloser
	table string
}

// NewPostgresStore creates a Postgres-backed ResultStore using the provided
// config.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "crawl_runs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool execCloser, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "crawl_runs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveRun inserts one crawl run row. The expected schema:
//
//	CREATE TABLE crawl_runs (
//		id UUID PRIMARY KEY,
//		started_at TIMESTAMPTZ NOT NULL,
//		finished_at TIMESTAMPTZ NOT NULL,
//		seeds JSONB NOT NULL,
//		urls_visited INTEGER NOT NULL,
//		word_counts JSONB NOT NULL
//	);
func (s *PostgresStore) SaveRun(ctx context.Context, run CrawlRun) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("result store is not configured")
	}
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	seedsJSON, err := json.Marshal(normalizeSeeds(run.Seeds))
	if err != nil {
		return fmt.Errorf("marshal seeds: %w", err)
	}
	countsJSON, err := json.Marshal(rankedCounts(run.WordCounts))
	if err != nil {
		return fmt.Errorf("marshal word counts: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	started_at,
	finished_at,
	seeds,
	urls_visited,
	word_counts
) VALUES (
	$1,$2,$3,$4,$5,$6
)`, s.table)

	args := []any{
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		seedsJSON,
		run.URLsVisited,
		countsJSON,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert crawl run: %w", err)
	}
	return nil
}

func normalizeSeeds(seeds []string) []string {
	if len(seeds) == 0 {
		return []string{}
	}
	return append([]string(nil), seeds...)
}

type rankedCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func rankedCounts(counts []crawler.WordCount) []rankedCount {
	out := make([]rankedCount, 0, len(counts))
	for _, wc := range counts {
		out = append(out, rankedCount{Word: wc.Word, Count: wc.Count})
	}
	return out
}
