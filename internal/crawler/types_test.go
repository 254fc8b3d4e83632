package crawler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrawlResult_MarshalJSONKeepsRankOrder(t *testing.T) {
	t.Parallel()

	result := CrawlResult{
		Words: []WordCount{
			{Word: "zebra", Count: 9},
			{Word: "apple", Count: 4},
			{Word: "mango", Count: 1},
		},
		URLsVisited: 7,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.Equal(t,
		`{"wordCounts":{"zebra":9,"apple":4,"mango":1},"urlsVisited":7}`,
		string(data))
}

func TestCrawlResult_MarshalJSONEmpty(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(CrawlResult{URLsVisited: 3})
	require.NoError(t, err)
	require.Equal(t, `{"wordCounts":{},"urlsVisited":3}`, string(data))
}
