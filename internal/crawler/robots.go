package crawler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	disallowPrefix = "Disallow:"
	robotsBodyCap  = 1 << 20
)

// LegacyRobotsFilter reproduces the historical exclusion behavior this
// crawler has always shipped with: robots.txt is fetched relative to the
// page URL ("<url>/robots.txt", not the site root) and Disallow values match
// when they are a suffix of the URL or appear inside it followed by "/".
// This deviates from the robots-exclusion standard on purpose; use
// StandardRobotsPolicy for root-relative prefix matching.
type LegacyRobotsFilter struct {
	client *http.Client
	cache  sync.Map // robots URL -> []string of Disallow values
	logger *zap.Logger
}

// NewLegacyRobotsFilter builds the filter with a bounded HTTP client.
func NewLegacyRobotsFilter(logger *zap.Logger) *LegacyRobotsFilter {
	return &LegacyRobotsFilter{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Allowed implements RobotsPolicy. Any failure fetching or reading the
// robots file is treated as "allowed".
func (f *LegacyRobotsFilter) Allowed(ctx context.Context, rawURL string) bool {
	rules, err := f.load(ctx, rawURL+"/robots.txt")
	if err != nil {
		f.logger.Debug("robots fetch failed; allowing", zap.String("url", rawURL), zap.Error(err))
		return true
	}
	for _, excluded := range rules {
		if strings.HasSuffix(rawURL, excluded) || strings.Contains(rawURL, excluded+"/") {
			return false
		}
	}
	return true
}

func (f *LegacyRobotsFilter) load(ctx context.Context, robotsURL string) ([]string, error) {
	if cached, ok := f.cache.Load(robotsURL); ok {
		rules, assertOK := cached.([]string)
		if !assertOK {
			return nil, fmt.Errorf("robots cache type mismatch: %T", cached)
		}
		return rules, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Debug("close robots body failed", zap.Error(cerr))
		}
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("robots status %d", resp.StatusCode)
	}

	rules, err := parseDisallowRules(io.LimitReader(resp.Body, robotsBodyCap))
	if err != nil {
		return nil, err
	}
	f.cache.Store(robotsURL, rules)
	return rules, nil
}

func parseDisallowRules(r io.Reader) ([]string, error) {
	var rules []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, disallowPrefix) {
			continue
		}
		rules = append(rules, strings.TrimSpace(line[len(disallowPrefix):]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	return rules, nil
}

// AllowAllPolicy never excludes a URL; used when robots filtering is off.
type AllowAllPolicy struct{}

// Allowed implements RobotsPolicy.
func (AllowAllPolicy) Allowed(context.Context, string) bool { return true }
