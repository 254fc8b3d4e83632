package profiler

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestState_RecordAccumulatesPerGoroutine(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Record("Parser#Parse", 100*time.Millisecond, 7)
	s.Record("Parser#Parse", 300*time.Millisecond, 7)
	s.Record("Parser#Parse", 50*time.Millisecond, 9)

	var b strings.Builder
	require.NoError(t, s.Write(&b))
	out := b.String()

	require.Contains(t, out, "Parser#Parse took 0m 0s 450ms (called 3 times)")
	require.Contains(t, out, "goroutine 7: 2 calls, avg 0m 0s 200ms")
	require.Contains(t, out, "goroutine 9: 1 calls, avg 0m 0s 50ms")
}

func TestState_NegativeElapsedPanics(t *testing.T) {
	t.Parallel()

	s := NewState()
	require.Panics(t, func() {
		s.Record("Parser#Parse", -time.Millisecond, 1)
	})
}

func TestState_WriteOrdersOperationsAndGoroutines(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Record("Crawler#Crawl", time.Second, 3)
	s.Record("Parser#Parse", time.Second, 12)
	s.Record("Parser#Parse", time.Second, 4)

	var b strings.Builder
	require.NoError(t, s.Write(&b))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")

	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[0], "Crawler#Crawl took"))
	require.Contains(t, lines[1], "goroutine 3:")
	require.True(t, strings.HasPrefix(lines[2], "Parser#Parse took"))
	require.Contains(t, lines[3], "goroutine 4:")
	require.Contains(t, lines[4], "goroutine 12:")
}

func TestState_ConcurrentRecordsSumExactly(t *testing.T) {
	t.Parallel()

	s := NewState()
	const recorders = 20
	const perRecorder = 50

	var wg sync.WaitGroup
	for i := 0; i < recorders; i++ {
		wg.Add(1)
		gid := uint64(i % 4)
		go func() {
			defer wg.Done()
			for j := 0; j < perRecorder; j++ {
				s.Record("Parser#Parse", time.Millisecond, gid)
			}
		}()
	}
	wg.Wait()

	var b strings.Builder
	require.NoError(t, s.Write(&b))
	require.Contains(t, b.String(),
		"Parser#Parse took 0m 1s 0ms (called 1000 times)")
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2m 3s 45ms", formatDuration(2*time.Minute+3*time.Second+45*time.Millisecond))
	require.Equal(t, "0m 0s 0ms", formatDuration(0))
}
