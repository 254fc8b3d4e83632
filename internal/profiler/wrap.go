package profiler

import (
	"context"
	"fmt"

	"github.com/webword/wordcrawler/internal/crawler"
)

// Operation identities accepted by the decorators.
const (
	OpParse = "Parser#Parse"
	OpCrawl = "Crawler#Crawl"
)

// WrapParser returns a Parser that forwards every call to delegate, timing
// the designated operations into prof. Wrapping with no operations, or with
// an operation the parser does not have, is a configuration error and fails
// here rather than silently at call time.
func WrapParser(prof *Profiler, delegate crawler.Parser, ops ...string) (crawler.Parser, error) {
	timed, err := operationSet("parser", ops, OpParse)
	if err != nil {
		return nil, err
	}
	return &profiledParser{
		delegate:  delegate,
		prof:      prof,
		timeParse: timed[OpParse],
	}, nil
}

// WrapCrawler is WrapParser's counterpart for the crawl entry point.
func WrapCrawler(prof *Profiler, delegate crawler.Crawler, ops ...string) (crawler.Crawler, error) {
	timed, err := operationSet("crawler", ops, OpCrawl)
	if err != nil {
		return nil, err
	}
	return &profiledCrawler{
		delegate:  delegate,
		prof:      prof,
		timeCrawl: timed[OpCrawl],
	}, nil
}

func operationSet(kind string, ops []string, known ...string) (map[string]bool, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("profiler: %s wrapped with no instrumented operations", kind)
	}
	allowed := make(map[string]bool, len(known))
	for _, op := range known {
		allowed[op] = true
	}
	set := make(map[string]bool, len(ops))
	for _, op := range ops {
		if !allowed[op] {
			return nil, fmt.Errorf("profiler: %s has no operation %q", kind, op)
		}
		set[op] = true
	}
	return set, nil
}

type profiledParser struct {
	delegate  crawler.Parser
	prof      *Profiler
	timeParse bool
}

// Parse forwards to the delegate. When timed, the elapsed duration is
// recorded under the invoking goroutine whether the delegate succeeds,
// fails, or panics; the result and error pass through unchanged.
func (w *profiledParser) Parse(ctx context.Context, url string) (crawler.PageResult, error) {
	if !w.timeParse {
		return w.delegate.Parse(ctx, url)
	}
	gid := CurrentGoroutineID()
	start := w.prof.clock.Now()
	defer func() {
		w.prof.Record(OpParse, w.prof.clock.Now().Sub(start), gid)
	}()
	return w.delegate.Parse(ctx, url)
}

type profiledCrawler struct {
	delegate  crawler.Crawler
	prof      *Profiler
	timeCrawl bool
}

// Crawl forwards to the delegate, timing the whole invocation when
// designated.
func (w *profiledCrawler) Crawl(ctx context.Context, seeds []string) crawler.CrawlResult {
	if !w.timeCrawl {
		return w.delegate.Crawl(ctx, seeds)
	}
	gid := CurrentGoroutineID()
	start := w.prof.clock.Now()
	defer func() {
		w.prof.Record(OpCrawl, w.prof.clock.Now().Sub(start), gid)
	}()
	return w.delegate.Crawl(ctx, seeds)
}
