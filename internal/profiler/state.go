package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// recordKey identifies one (operation, goroutine) tally.
type recordKey struct {
	op  string
	gid uint64
}

// tally accumulates one key's invocation count and cumulative duration.
// Fields are atomic so concurrent recorders on the same key never block
// each other once the tally exists.
type tally struct {
	calls atomic.Int64
	nanos atomic.Int64
}

// State is the thread-safe store of profiling data for one run. Entries are
// keyed per (operation, goroutine) pair, so synchronization is per key
// rather than a single global lock.
type State struct {
	tallies sync.Map // recordKey -> *tally
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// Record adds one invocation of op that took elapsed on goroutine gid.
// A negative elapsed duration is a contract violation and panics.
func (s *State) Record(op string, elapsed time.Duration, gid uint64) {
	if elapsed < 0 {
		panic(fmt.Sprintf("profiler: negative elapsed duration %v recorded for %s", elapsed, op))
	}
	t := s.tally(recordKey{op: op, gid: gid})
	t.calls.Add(1)
	t.nanos.Add(int64(elapsed))
}

func (s *State) tally(k recordKey) *tally {
	if v, ok := s.tallies.Load(k); ok {
		return v.(*tally)
	}
	v, _ := s.tallies.LoadOrStore(k, &tally{})
	return v.(*tally)
}

// Write renders the accumulated data: one header line per operation with its
// total call count and cumulative duration, followed by one line per
// goroutine with that goroutine's count and average duration. Operations
// sort by name and goroutines by id, so output is diff-stable across runs
// with the same call pattern.
func (s *State) Write(w io.Writer) error {
	type row struct {
		key   recordKey
		calls int64
		nanos int64
	}
	var rows []row
	s.tallies.Range(func(k, v any) bool {
		key := k.(recordKey)
		t := v.(*tally)
		rows = append(rows, row{key: key, calls: t.calls.Load(), nanos: t.nanos.Load()})
		return true
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].key.op != rows[j].key.op {
			return rows[i].key.op < rows[j].key.op
		}
		return rows[i].key.gid < rows[j].key.gid
	})

	for i := 0; i < len(rows); {
		j := i
		var calls, nanos int64
		for j < len(rows) && rows[j].key.op == rows[i].key.op {
			calls += rows[j].calls
			nanos += rows[j].nanos
			j++
		}
		_, err := fmt.Fprintf(w, "%s took %s (called %d times)\n",
			rows[i].key.op, formatDuration(time.Duration(nanos)), calls)
		if err != nil {
			return fmt.Errorf("write operation line: %w", err)
		}
		for _, r := range rows[i:j] {
			avg := time.Duration(r.nanos / r.calls)
			if _, err := fmt.Fprintf(w, "  goroutine %d: %d calls, avg %s\n",
				r.key.gid, r.calls, formatDuration(avg)); err != nil {
				return fmt.Errorf("write goroutine line: %w", err)
			}
		}
		i = j
	}
	return nil
}

func formatDuration(d time.Duration) string {
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%dm %ds %dms", m, s, ms)
}
