package profiler

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/webword/wordcrawler/internal/crawler"
)

// Profiler owns one run's profiling state. It is created at startup,
// passed explicitly to whoever wraps capabilities, and flushed to a report
// at shutdown or on demand.
type Profiler struct {
	clock   crawler.Clock
	started time.Time
	state   *State
}

// New builds a Profiler whose report is stamped with the clock's current
// time. A nil clock defaults to the system clock.
func New(clock crawler.Clock) *Profiler {
	if clock == nil {
		clock = crawler.SystemClock{}
	}
	return &Profiler{
		clock:   clock,
		started: clock.Now(),
		state:   NewState(),
	}
}

// Record stores one timed invocation. See State.Record for the contract.
func (p *Profiler) Record(op string, elapsed time.Duration, gid uint64) {
	p.state.Record(op, elapsed, gid)
}

// WriteReport writes the run timestamp followed by the accumulated timing
// data.
func (p *Profiler) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Run at %s\n", p.started.Format(time.RFC1123)); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	return p.state.Write(w)
}

// WriteReportFile appends the report to the file at path, creating it if
// needed.
func (p *Profiler) WriteReportFile(path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open profile output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close profile output: %w", cerr)
		}
	}()
	return p.WriteReport(f)
}
