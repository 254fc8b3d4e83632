package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webword/wordcrawler/internal/api"
	"github.com/webword/wordcrawler/internal/config"
	"github.com/webword/wordcrawler/internal/crawler"
	"github.com/webword/wordcrawler/internal/logging"
	"github.com/webword/wordcrawler/internal/metrics"
	"github.com/webword/wordcrawler/internal/parser"
	"github.com/webword/wordcrawler/internal/profiler"
	"github.com/webword/wordcrawler/internal/report"
	"github.com/webword/wordcrawler/internal/storage"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Run one crawl and write the result and profiling report",
		Long: `Crawl starts from the configured seed URLs (or the ones given as
arguments), visits pages up to the configured depth and time budget, and
writes two artifacts: the top-K word counts with the number of URLs visited
(JSON), and the profiling report (text). Empty output paths write to stdout.

Examples:
  # Crawl with seeds and limits from a config file
  wordcrawler crawl -c config.yaml

  # Override the seeds on the command line
  wordcrawler crawl -c config.yaml https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file path")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("read config flag: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	seeds := cfg.Crawler.SeedURLs
	if len(args) > 0 {
		seeds = args
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		// Best effort; stderr sync failures on shutdown are not actionable.
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	if cfg.Server.MetricsEnabled {
		srv := api.NewServer(logger)
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
			if err := srv.Run(ctx, addr); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	clock := crawler.SystemClock{}
	prof := profiler.New(clock)

	engine, err := buildEngine(cfg, clock, prof, logger)
	if err != nil {
		return err
	}
	crawl, err := profiler.WrapCrawler(prof, engine, profiler.OpCrawl)
	if err != nil {
		return fmt.Errorf("wrap crawler: %w", err)
	}

	startedAt := clock.Now()
	result := crawl.Crawl(ctx, seeds)
	finishedAt := clock.Now()

	if err := report.WriteArtifacts(os.Stdout, cfg.Output.ResultPath, cfg.Output.ProfilePath, result, prof); err != nil {
		return err
	}

	return persistRun(ctx, cfg, logger, storage.CrawlRun{
		ID:          uuid.NewString(),
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Seeds:       seeds,
		URLsVisited: result.URLsVisited,
		WordCounts:  result.Words,
	})
}

func buildEngine(cfg config.Config, clock crawler.Clock, prof *profiler.Profiler, logger *zap.Logger) (*crawler.Engine, error) {
	ignored, err := cfg.Crawler.CompileIgnored()
	if err != nil {
		return nil, err
	}

	var robots crawler.RobotsPolicy
	switch cfg.Robots.Mode {
	case config.RobotsModeStandard:
		robots = crawler.NewStandardRobotsPolicy(cfg.Robots.UserAgent, logger)
	case config.RobotsModeOff:
		robots = crawler.AllowAllPolicy{}
	default:
		robots = crawler.NewLegacyRobotsFilter(logger)
	}

	pageParser := parser.New(parser.Config{
		UserAgent:   cfg.Parser.UserAgent,
		Timeout:     cfg.Parser.ParserTimeout(),
		MaxBodySize: cfg.Parser.MaxBodyBytes,
	}, logger)
	parse, err := profiler.WrapParser(prof, pageParser, profiler.OpParse)
	if err != nil {
		return nil, fmt.Errorf("wrap parser: %w", err)
	}

	return crawler.NewEngine(crawler.EngineConfig{
		MaxDepth:         cfg.Crawler.MaxDepth,
		Timeout:          cfg.Crawler.Timeout(),
		Parallelism:      cfg.Crawler.Parallelism,
		PopularWordCount: cfg.Crawler.PopularWordCount,
		IgnoredURLs:      ignored,
	}, parse, robots, clock, logger), nil
}

func persistRun(ctx context.Context, cfg config.Config, logger *zap.Logger, run storage.CrawlRun) error {
	if cfg.Database.Provider != config.StoragePostgres {
		return nil
	}
	store, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
		DSN:   cfg.Database.DSN,
		Table: cfg.Database.Table,
	})
	if err != nil {
		return fmt.Errorf("init result store: %w", err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("persist crawl run: %w", err)
	}
	logger.Info("crawl run persisted", zap.String("run_id", run.ID), zap.Int("urls_visited", run.URLsVisited))
	return nil
}
