package crawler

import (
	"sort"
	"sync"
)

// WordCounts accumulates word frequencies across every page visited during
// one crawl. Merges are additive and commutative, so concurrent merges in
// any interleaving produce the same final totals.
type WordCounts struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewWordCounts returns an empty aggregator.
func NewWordCounts() *WordCounts {
	return &WordCounts{counts: make(map[string]int)}
}

// Merge adds every count in page to the running totals. Existing entries are
// incremented, never overwritten.
func (w *WordCounts) Merge(page map[string]int) {
	if len(page) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for word, n := range page {
		w.counts[word] += n
	}
}

// Len reports how many distinct words have been seen.
func (w *WordCounts) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.counts)
}

// Snapshot returns a copy of the current totals.
func (w *WordCounts) Snapshot() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.counts))
	for word, n := range w.counts {
		out[word] = n
	}
	return out
}

// TopK returns the k highest-count entries in rank order. Ties break by
// descending word length, then lexicographically ascending, so the ranking
// is identical across runs and worker counts.
func (w *WordCounts) TopK(k int) []WordCount {
	snapshot := w.Snapshot()
	ranked := make([]WordCount, 0, len(snapshot))
	for word, n := range snapshot {
		ranked = append(ranked, WordCount{Word: word, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if len(a.Word) != len(b.Word) {
			return len(a.Word) > len(b.Word)
		}
		return a.Word < b.Word
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
