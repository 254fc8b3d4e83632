// Package report writes crawl results and profiling reports to their
// configured destinations.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/webword/wordcrawler/internal/crawler"
	"github.com/webword/wordcrawler/internal/profiler"
)

// WriteResult encodes the crawl result as indented JSON. The word-count
// object is emitted in rank order (see crawler.CrawlResult.MarshalJSON).
func WriteResult(w io.Writer, result crawler.CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode crawl result: %w", err)
	}
	return nil
}

// WriteResultFile writes the crawl result to path, truncating any previous
// content.
func WriteResultFile(path string, result crawler.CrawlResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close result output: %w", cerr)
		}
	}()
	return WriteResult(f, result)
}

// WriteArtifacts sends the result and the profiling report to their paths,
// falling back to out (normally stdout) for any empty path.
func WriteArtifacts(out io.Writer, resultPath, profilePath string, result crawler.CrawlResult, prof *profiler.Profiler) error {
	if resultPath == "" {
		if err := WriteResult(out, result); err != nil {
			return err
		}
	} else if err := WriteResultFile(resultPath, result); err != nil {
		return err
	}

	if profilePath == "" {
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("write separator: %w", err)
		}
		return prof.WriteReport(out)
	}
	return prof.WriteReportFile(profilePath)
}
