package crawler

import (
	"context"
	"regexp"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/webword/wordcrawler/internal/metrics"
)

// EngineConfig sets the per-invocation limits of the crawl engine.
type EngineConfig struct {
	// MaxDepth is the remaining-depth budget given to each seed. Zero means
	// no page is ever visited.
	MaxDepth int
	// Timeout bounds the crawl: no new page visitation begins once
	// now+Timeout has passed. In-flight fetches run to completion.
	Timeout time.Duration
	// Parallelism caps concurrent fetch/parse work. The effective cap is
	// min(Parallelism, runtime.NumCPU()).
	Parallelism int
	// PopularWordCount is K for the final top-K selection.
	PopularWordCount int
	// IgnoredURLs lists patterns whose matching URLs are never visited.
	IgnoredURLs []*regexp.Regexp
}

// Engine is the concurrent crawl engine. Each page forks one unit of work
// per outbound link and joins all of them before completing, so Crawl
// returns only when every seed's subtree has finished or been cut off by
// depth or deadline. Fetch parallelism is bounded by a weighted semaphore;
// the goroutines themselves are transient and own no resources beyond
// references into the shared visited set and word counts.
type Engine struct {
	cfg     EngineConfig
	parser  Parser
	robots  RobotsPolicy
	clock   Clock
	logger  *zap.Logger
	slots   *semaphore.Weighted
	workers int
}

// NewEngine builds an Engine. The robots policy defaults to allow-all and
// the clock to the system clock when nil.
func NewEngine(cfg EngineConfig, parser Parser, robots RobotsPolicy, clock Clock, logger *zap.Logger) *Engine {
	if robots == nil {
		robots = AllowAllPolicy{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Parallelism
	if hw := runtime.NumCPU(); workers > hw {
		workers = hw
	}
	if workers < 1 {
		workers = 1
	}
	metrics.Init()
	return &Engine{
		cfg:     cfg,
		parser:  parser,
		robots:  robots,
		clock:   clock,
		logger:  logger,
		slots:   semaphore.NewWeighted(int64(workers)),
		workers: workers,
	}
}

// Workers reports the effective parallelism cap.
func (e *Engine) Workers() int { return e.workers }

// Crawl visits the seed URLs and everything reachable within the depth and
// deadline limits, returning the aggregated result. It never fails for
// reasons originating in page fetching; a crawl that fetches nothing still
// returns a well-formed, empty result.
func (e *Engine) Crawl(ctx context.Context, seeds []string) CrawlResult {
	runID := uuid.NewString()
	started := e.clock.Now()
	deadline := started.Add(e.cfg.Timeout)
	visited := NewVisitedSet()
	counts := NewWordCounts()

	e.logger.Info("crawl started",
		zap.String("run_id", runID),
		zap.Strings("seeds", seeds),
		zap.Int("max_depth", e.cfg.MaxDepth),
		zap.Int("workers", e.workers),
		zap.Time("deadline", deadline),
	)

	var wg sync.WaitGroup
	for _, seed := range seeds {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			e.visit(ctx, unit{url: url, depth: e.cfg.MaxDepth}, deadline, visited, counts)
		}(seed)
	}
	wg.Wait()

	result := e.buildResult(visited, counts)
	elapsed := e.clock.Now().Sub(started)
	metrics.ObserveCrawlDuration(elapsed)
	e.logger.Info("crawl finished",
		zap.String("run_id", runID),
		zap.Int("urls_visited", result.URLsVisited),
		zap.Int("distinct_words", counts.Len()),
		zap.Duration("elapsed", elapsed),
	)
	return result
}

// unit is one (URL, remaining-depth) work item.
type unit struct {
	url   string
	depth int
}

// visit executes one crawl unit to completion, recursing into child units
// for every outbound link. Predicates run in strict order and the first
// failing one ends the unit with no contribution.
func (e *Engine) visit(ctx context.Context, u unit, deadline time.Time, visited *VisitedSet, counts *WordCounts) {
	if u.depth == 0 || !e.clock.Now().Before(deadline) {
		return
	}
	if e.ignored(u.url) {
		return
	}
	if !e.robots.Allowed(ctx, u.url) {
		metrics.ObserveRobotsDenied()
		e.logger.Debug("robots excluded", zap.String("url", u.url))
		return
	}
	if !visited.Add(u.url) {
		metrics.ObserveDuplicateSkip()
		return
	}

	page, err := e.parse(ctx, u.url)
	if err != nil {
		// The URL stays claimed; a failed page contributes nothing.
		metrics.ObservePage(u.url, "error")
		e.logger.Debug("fetch failed", zap.String("url", u.url), zap.Error(err))
		return
	}
	counts.Merge(page.WordCounts)
	metrics.ObservePage(u.url, "ok")
	metrics.ObserveWordsMerged(len(page.WordCounts))

	var wg sync.WaitGroup
	for _, link := range page.Links {
		wg.Add(1)
		go func(link string) {
			defer wg.Done()
			e.visit(ctx, unit{url: link, depth: u.depth - 1}, deadline, visited, counts)
		}(link)
	}
	wg.Wait()
}

func (e *Engine) parse(ctx context.Context, url string) (PageResult, error) {
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return PageResult{}, err
	}
	defer e.slots.Release(1)
	metrics.IncActiveFetches()
	defer metrics.DecActiveFetches()

	start := e.clock.Now()
	page, err := e.parser.Parse(ctx, url)
	metrics.ObserveFetchDuration(e.clock.Now().Sub(start))
	return page, err
}

func (e *Engine) ignored(url string) bool {
	for _, pattern := range e.cfg.IgnoredURLs {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}

func (e *Engine) buildResult(visited *VisitedSet, counts *WordCounts) CrawlResult {
	result := CrawlResult{URLsVisited: visited.Size()}
	if counts.Len() == 0 {
		return result
	}
	result.Words = counts.TopK(e.cfg.PopularWordCount)
	return result
}
