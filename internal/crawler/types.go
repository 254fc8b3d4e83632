package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PageResult holds what the Parser extracted from a single page.
type PageResult struct {
	WordCounts map[string]int
	Links      []string
}

// WordCount is one ranked word-frequency entry.
type WordCount struct {
	Word  string
	Count int
}

// CrawlResult is the immutable outcome of one crawl invocation. Words holds
// at most the configured top-K entries in rank order.
type CrawlResult struct {
	Words       []WordCount
	URLsVisited int
}

// MarshalJSON emits the word counts as a JSON object whose keys appear in
// rank order, so identical crawls serialize identically.
func (r CrawlResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"wordCounts":{`)
	for i, wc := range r.Words {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(wc.Word)
		if err != nil {
			return nil, fmt.Errorf("marshal word %q: %w", wc.Word, err)
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", wc.Count)
	}
	fmt.Fprintf(&buf, `},"urlsVisited":%d}`, r.URLsVisited)
	return buf.Bytes(), nil
}
