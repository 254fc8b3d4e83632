package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ReadsValuesAndDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
crawler:
  seed_urls:
    - https://example.com
  ignored_urls:
    - ".*\\.pdf"
  max_depth: 3
  timeout_seconds: 10
  parallelism: 6
  popular_word_count: 5
output:
  result_path: /tmp/result.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"https://example.com"}, cfg.Crawler.SeedURLs)
	require.Equal(t, 3, cfg.Crawler.MaxDepth)
	require.Equal(t, 10*time.Second, cfg.Crawler.Timeout())
	require.Equal(t, 6, cfg.Crawler.Parallelism)
	require.Equal(t, 5, cfg.Crawler.PopularWordCount)
	require.Equal(t, "/tmp/result.json", cfg.Output.ResultPath)

	// Defaults fill everything the file left out.
	require.Equal(t, RobotsModeLegacy, cfg.Robots.Mode)
	require.Equal(t, StorageNoop, cfg.Database.Provider)
	require.Equal(t, 15*time.Second, cfg.Parser.ParserTimeout())
}

func TestLoad_DefaultsOnlyIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Crawler.MaxDepth)
	require.Equal(t, 4, cfg.Crawler.Parallelism)
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "negative depth",
			body: "crawler:\n  max_depth: -1\n",
			want: "max_depth",
		},
		{
			name: "negative timeout",
			body: "crawler:\n  timeout_seconds: -5\n",
			want: "timeout_seconds",
		},
		{
			name: "zero parallelism",
			body: "crawler:\n  parallelism: 0\n",
			want: "parallelism",
		},
		{
			name: "zero top k",
			body: "crawler:\n  popular_word_count: 0\n",
			want: "popular_word_count",
		},
		{
			name: "bad ignore pattern",
			body: "crawler:\n  ignored_urls:\n    - \"[\"\n",
			want: "ignored url pattern",
		},
		{
			name: "bad robots mode",
			body: "robots:\n  mode: maybe\n",
			want: "robots.mode",
		},
		{
			name: "postgres without dsn",
			body: "database:\n  provider: postgres\n",
			want: "database.dsn",
		},
		{
			name: "unknown provider",
			body: "database:\n  provider: dynamo\n",
			want: "unknown database provider",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompileIgnored_AnchorsPatterns(t *testing.T) {
	t.Parallel()

	c := CrawlerConfig{IgnoredURLs: []string{`https://example\.com/skip`}}
	patterns, err := c.CompileIgnored()
	require.NoError(t, err)
	require.Len(t, patterns, 1)

	// Full-string matching only; substrings do not count.
	require.True(t, patterns[0].MatchString("https://example.com/skip"))
	require.False(t, patterns[0].MatchString("https://example.com/skip/deeper"))
}
