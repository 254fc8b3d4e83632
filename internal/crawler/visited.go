package crawler

import (
	"sort"
	"sync"
)

// VisitedSet tracks which URLs have been claimed for processing during one
// crawl invocation. Add is the single atomic claim point: exactly one caller
// per URL observes true, so no two tasks process the same page.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add claims url. It returns true when this call inserted the URL and false
// when another caller already claimed it.
func (s *VisitedSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Size reports how many URLs have been claimed.
func (s *VisitedSet) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

// URLs returns a sorted snapshot of the claimed URLs.
func (s *VisitedSet) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.urls))
	for u := range s.urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
