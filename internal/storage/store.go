// Package storage persists finished crawl runs.
package storage

import (
	"context"
	"time"

	"github.com/webword/wordcrawler/internal/crawler"
)

// CrawlRun records one finished crawl invocation.
type CrawlRun struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Seeds       []string
	URLsVisited int
	WordCounts  []crawler.WordCount
}

// ResultStore persists crawl runs.
type ResultStore interface {
	SaveRun(ctx context.Context, run CrawlRun) error
	Close()
}

// NoopStore discards runs; used when no database is configured.
type NoopStore struct{}

// SaveRun implements ResultStore.
func (NoopStore) SaveRun(context.Context, CrawlRun) error { return nil }

// Close implements ResultStore.
func (NoopStore) Close() {}
