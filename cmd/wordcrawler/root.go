package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordcrawler",
		Short: "Bounded concurrent web crawler that ranks word frequencies",
		Long: `wordcrawler crawls the web from a set of seed URLs, bounded by a depth
limit and a wall-clock time budget, and aggregates word frequencies across
every page it visits. URLs matching configured ignore patterns or excluded
by robots policy are skipped, and no URL is fetched more than once per run.

Fetch-and-parse calls and the crawl entry point are instrumented: each run
also produces a profiling report breaking call counts and durations down by
invoking goroutine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewCrawlCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
