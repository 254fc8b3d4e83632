package crawler

import (
	"context"
	"time"
)

// Parser is the fetch-and-parse capability the engine consumes. Given a URL
// it returns the words and outbound links extracted from the page. It may
// fail or take unbounded time; the engine treats both as opaque.
type Parser interface {
	Parse(ctx context.Context, url string) (PageResult, error)
}

// Crawler runs one full crawl over a set of seed URLs. Fetch failures are
// absorbed internally; the result may be partial but is always well-formed.
type Crawler interface {
	Crawl(ctx context.Context, seeds []string) CrawlResult
}

// RobotsPolicy decides whether a URL may be fetched at all.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }
