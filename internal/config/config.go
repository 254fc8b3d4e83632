// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Robots filtering modes.
const (
	RobotsModeLegacy   = "legacy"
	RobotsModeStandard = "standard"
	RobotsModeOff      = "off"
)

// Storage providers.
const (
	StorageNoop     = "noop"
	StoragePostgres = "postgres"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Robots   RobotsConfig   `mapstructure:"robots"`
	Parser   ParserConfig   `mapstructure:"parser"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl engine limits.
type CrawlerConfig struct {
	SeedURLs         []string `mapstructure:"seed_urls"`
	IgnoredURLs      []string `mapstructure:"ignored_urls"`
	MaxDepth         int      `mapstructure:"max_depth"`
	TimeoutSeconds   int      `mapstructure:"timeout_seconds"`
	Parallelism      int      `mapstructure:"parallelism"`
	PopularWordCount int      `mapstructure:"popular_word_count"`
}

// RobotsConfig selects the robots filtering mode.
type RobotsConfig struct {
	Mode      string `mapstructure:"mode"`
	UserAgent string `mapstructure:"user_agent"`
}

// ParserConfig configures the colly fetch-and-parse capability.
type ParserConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxBodyBytes   int    `mapstructure:"max_body_bytes"`
}

// OutputConfig sets where artifacts go; empty paths mean stdout.
type OutputConfig struct {
	ResultPath  string `mapstructure:"result_path"`
	ProfilePath string `mapstructure:"profile_path"`
}

// DatabaseConfig controls optional crawl-run persistence.
type DatabaseConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
}

// ServerConfig controls the observability listener.
type ServerConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
	MetricsPort    int  `mapstructure:"metrics_port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WORDCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_depth", 2)
	v.SetDefault("crawler.timeout_seconds", 30)
	v.SetDefault("crawler.parallelism", 4)
	v.SetDefault("crawler.popular_word_count", 10)
	v.SetDefault("robots.mode", RobotsModeLegacy)
	v.SetDefault("robots.user_agent", "wordcrawler/0.1")
	v.SetDefault("parser.user_agent", "wordcrawler/0.1")
	v.SetDefault("parser.timeout_seconds", 15)
	v.SetDefault("database.provider", StorageNoop)
	v.SetDefault("database.table", "crawl_runs")
	v.SetDefault("server.metrics_enabled", false)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Crawler.TimeoutSeconds < 0 {
		return fmt.Errorf("crawler.timeout_seconds must be >= 0")
	}
	if c.Crawler.Parallelism <= 0 {
		return fmt.Errorf("crawler.parallelism must be > 0")
	}
	if c.Crawler.PopularWordCount <= 0 {
		return fmt.Errorf("crawler.popular_word_count must be > 0")
	}
	if _, err := c.Crawler.CompileIgnored(); err != nil {
		return err
	}
	switch c.Robots.Mode {
	case RobotsModeLegacy, RobotsModeStandard, RobotsModeOff:
	default:
		return fmt.Errorf("robots.mode must be one of legacy, standard, off")
	}
	switch c.Database.Provider {
	case StorageNoop:
	case StoragePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn must be set when database.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown database provider: %s", c.Database.Provider)
	}
	if c.Server.MetricsEnabled && c.Server.MetricsPort <= 0 {
		return fmt.Errorf("server.metrics_port must be > 0 when metrics are enabled")
	}
	return nil
}

// Timeout converts the crawl timeout into a duration.
func (c CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CompileIgnored compiles the ignore patterns. Patterns are anchored so a
// URL is ignored only when a pattern matches it in full.
func (c CrawlerConfig) CompileIgnored() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.IgnoredURLs))
	for _, raw := range c.IgnoredURLs {
		p, err := regexp.Compile("^(?:" + raw + ")$")
		if err != nil {
			return nil, fmt.Errorf("compile ignored url pattern %q: %w", raw, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// ParserTimeout converts the parser timeout into a duration.
func (c ParserConfig) ParserTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
