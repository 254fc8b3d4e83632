package profiler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webword/wordcrawler/internal/crawler"
)

type stubParser struct {
	page crawler.PageResult
	err  error

	mu    sync.Mutex
	calls int
}

func (s *stubParser) Parse(context.Context, string) (crawler.PageResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.page, s.err
}

type stubCrawler struct {
	result crawler.CrawlResult
}

func (s *stubCrawler) Crawl(context.Context, []string) crawler.CrawlResult {
	return s.result
}

func TestWrapParser_RejectsEmptyOperationSet(t *testing.T) {
	t.Parallel()

	_, err := WrapParser(New(nil), &stubParser{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no instrumented operations")
}

func TestWrapParser_RejectsUnknownOperation(t *testing.T) {
	t.Parallel()

	_, err := WrapParser(New(nil), &stubParser{}, "Parser#Render")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"Parser#Render"`)
}

func TestWrapParser_ForwardsResultUnchanged(t *testing.T) {
	t.Parallel()

	stub := &stubParser{page: crawler.PageResult{
		WordCounts: map[string]int{"hello": 2},
		Links:      []string{"https://example.com/next"},
	}}
	prof := New(nil)
	wrapped, err := WrapParser(prof, stub, OpParse)
	require.NoError(t, err)

	page, err := wrapped.Parse(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Equal(t, stub.page, page)
	require.Equal(t, 1, stub.calls)
}

func TestWrapParser_FailureIsRecordedAndPropagated(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	stub := &stubParser{err: wantErr}
	prof := New(nil)
	wrapped, err := WrapParser(prof, stub, OpParse)
	require.NoError(t, err)

	_, err = wrapped.Parse(context.Background(), "https://example.com")
	require.ErrorIs(t, err, wantErr)

	var b strings.Builder
	require.NoError(t, prof.WriteReport(&b))
	require.Contains(t, b.String(), "Parser#Parse")
	require.Contains(t, b.String(), "(called 1 times)")
}

func TestWrapParser_CountsAcrossGoroutines(t *testing.T) {
	t.Parallel()

	stub := &stubParser{page: crawler.PageResult{}}
	prof := New(nil)
	wrapped, err := WrapParser(prof, stub, OpParse)
	require.NoError(t, err)

	const goroutines = 4
	const perGoroutine = 25

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_, _ = wrapped.Parse(context.Background(), "https://example.com")
			}
		}()
	}
	wg.Wait()

	var b strings.Builder
	require.NoError(t, prof.WriteReport(&b))
	out := b.String()

	require.Contains(t, out, fmt.Sprintf("(called %d times)", goroutines*perGoroutine))
	// Each worker goroutine contributes its own breakdown line.
	require.Equal(t, goroutines, strings.Count(out, "goroutine "))
	require.Equal(t, goroutines*perGoroutine, stub.calls)
}

func TestWrapCrawler_TimesEntryPoint(t *testing.T) {
	t.Parallel()

	want := crawler.CrawlResult{URLsVisited: 3}
	prof := New(nil)
	wrapped, err := WrapCrawler(prof, &stubCrawler{result: want}, OpCrawl)
	require.NoError(t, err)

	got := wrapped.Crawl(context.Background(), []string{"https://example.com"})
	require.Equal(t, want, got)

	var b strings.Builder
	require.NoError(t, prof.WriteReport(&b))
	require.Contains(t, b.String(), "Crawler#Crawl took")
}

func TestWrapCrawler_RejectsEmptyOperationSet(t *testing.T) {
	t.Parallel()

	_, err := WrapCrawler(New(nil), &stubCrawler{})
	require.Error(t, err)
}

func TestProfiler_ReportHeaderUsesRunTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)
	prof := New(frozenClock{at: at})

	var b strings.Builder
	require.NoError(t, prof.WriteReport(&b))
	require.True(t, strings.HasPrefix(b.String(), "Run at "+at.Format(time.RFC1123)))
}

type frozenClock struct {
	at time.Time
}

func (c frozenClock) Now() time.Time { return c.at }

func TestCurrentGoroutineID_StablePerGoroutine(t *testing.T) {
	t.Parallel()

	first := CurrentGoroutineID()
	second := CurrentGoroutineID()
	require.NotZero(t, first)
	require.Equal(t, first, second)

	otherCh := make(chan uint64, 1)
	go func() {
		otherCh <- CurrentGoroutineID()
	}()
	require.NotEqual(t, first, <-otherCh)
}
