// Package parser implements the fetch-and-parse capability using gocolly.
package parser

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/webword/wordcrawler/internal/crawler"
)

// Words are maximal runs of letters and digits, kept exactly as extracted.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Config controls collector behavior.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
}

// PageParser fetches a page and extracts its word counts and outbound
// links. Robots filtering is the engine's job, so the collector's own
// robots handling is disabled.
type PageParser struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

// New builds a PageParser.
func New(cfg Config, logger *zap.Logger) *PageParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	if cfg.MaxBodySize > 0 {
		c.MaxBodySize = cfg.MaxBodySize
	}
	return &PageParser{cfg: cfg, base: c, logger: logger}
}

// Parse implements crawler.Parser. Each call runs on a clone of the base
// collector so concurrent parses never share hook state.
func (p *PageParser) Parse(ctx context.Context, rawURL string) (crawler.PageResult, error) {
	collector := p.base.Clone()
	if p.cfg.UserAgent != "" {
		collector.UserAgent = p.cfg.UserAgent
	}
	timeout := p.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	result := crawler.PageResult{WordCounts: make(map[string]int)}
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		result.Links = append(result.Links, link)
	})
	collector.OnHTML("body", func(e *colly.HTMLElement) {
		for _, word := range wordPattern.FindAllString(e.Text, -1) {
			result.WordCounts[word]++
		}
	})

	if err := p.visit(ctx, collector, rawURL); err != nil {
		return crawler.PageResult{}, err
	}
	p.logger.Debug("page parsed",
		zap.String("url", rawURL),
		zap.Int("words", len(result.WordCounts)),
		zap.Int("links", len(result.Links)),
	)
	return result, nil
}

func (p *PageParser) visit(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("parse canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		return nil
	}
}
