// Package config loads the siteaudit YAML configuration file.
//
// A file only needs the keys it changes; everything else keeps the value
// from DefaultConfig. Durations are Go duration strings such as "30s".
//
//	browser:
//	  no_sandbox: true
//	  navigation_timeout: 45s
//	pool:
//	  max_resources: 8
//	batch:
//	  concurrency: 8
//	  rate: 2
//	audit:
//	  level: AA
//	  content_weight: false
//	sources:
//	  exclude: ["https://example.com/private/**"]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/entrhq/siteaudit/pkg/audit"
	"github.com/entrhq/siteaudit/pkg/browser"
	"github.com/entrhq/siteaudit/pkg/logging"
	"github.com/entrhq/siteaudit/pkg/output"
	"github.com/entrhq/siteaudit/pkg/pool"
	"gopkg.in/yaml.v3"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("config")
	if err != nil {
		debugLog.Warnf("Failed to initialize config logger, using stderr fallback: %v", err)
	}
}

// Config is the complete siteaudit configuration.
type Config struct {
	Browser browser.Options `yaml:"browser"`
	Pool    pool.Config     `yaml:"pool"`
	Batch   BatchConfig     `yaml:"batch"`
	Audit   audit.Config    `yaml:"audit"`
	Sources SourcesConfig   `yaml:"sources"`
	Output  OutputConfig    `yaml:"output"`
	Logging LoggingConfig   `yaml:"logging"`

	// Warnings collects adjustments Validate made to the loaded values
	Warnings []string `yaml:"-"`
}

// BatchConfig controls how a URL list is scheduled.
type BatchConfig struct {
	// Concurrency is the number of pages audited at once
	Concurrency int `yaml:"concurrency"`

	// MaxPages truncates the URL list. Zero means no limit.
	MaxPages int `yaml:"max_pages"`

	// Rate caps new page admissions per second; zero disables throttling
	Rate      float64 `yaml:"rate"`
	RateBurst int     `yaml:"rate_burst"`

	// AcquireRetries is the number of extra acquire attempts after a
	// pool timeout, spaced by RetryDelay doubling each time.
	AcquireRetries int           `yaml:"acquire_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

// SourcesConfig selects and filters the URLs to audit.
type SourcesConfig struct {
	Sitemap string   `yaml:"sitemap"`
	URLFile string   `yaml:"url_file"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Timeout bounds each sitemap HTTP request
	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig selects the report format and destination.
type OutputConfig struct {
	Format output.Format `yaml:"format"`

	// Path writes the report to a file instead of stdout
	Path string `yaml:"path"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity"`
}

// Verbosity names accepted by LoggingConfig.
const (
	VerbosityQuiet   = "quiet"
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
	VerbosityDebug   = "debug"
)

// Defaults not owned by another package.
const (
	DefaultRateBurst     = 1
	DefaultRetryDelay    = time.Second
	DefaultSourceTimeout = 30 * time.Second
)

// DefaultConfig returns a configuration suitable for auditing a small site
// from a developer machine.
func DefaultConfig() *Config {
	poolCfg := pool.DefaultConfig()
	return &Config{
		Browser: browser.DefaultOptions(),
		Pool:    poolCfg,
		Batch: BatchConfig{
			Concurrency: poolCfg.MaxResources,
			RateBurst:   DefaultRateBurst,
			RetryDelay:  DefaultRetryDelay,
		},
		Audit: audit.DefaultConfig(),
		Sources: SourcesConfig{
			Timeout: DefaultSourceTimeout,
		},
		Output: OutputConfig{
			Format: output.FormatTable,
		},
		Logging: LoggingConfig{
			Verbosity: VerbosityNormal,
		},
	}
}

// Load reads path over DefaultConfig and validates the result. An empty
// path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	debugLog.Infof("Loaded config from %s", path)
	return cfg, nil
}

// decode applies YAML data on top of c. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every section. Concurrency above the pool capacity is
// clamped to the capacity and recorded in Warnings.
func (c *Config) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return err
	}
	if c.Pool.AcquireTimeout <= 0 {
		return fmt.Errorf("pool acquire_timeout must be positive")
	}

	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("invalid browser options: %w", err)
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser navigation_timeout must be positive")
	}

	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.Concurrency > c.Pool.MaxResources {
		msg := fmt.Sprintf("batch concurrency %d exceeds pool capacity %d, using %d",
			c.Batch.Concurrency, c.Pool.MaxResources, c.Pool.MaxResources)
		debugLog.Warnf("%s", msg)
		c.Warnings = append(c.Warnings, msg)
		c.Batch.Concurrency = c.Pool.MaxResources
	}
	if c.Batch.MaxPages < 0 {
		return fmt.Errorf("batch max_pages cannot be negative")
	}
	if c.Batch.Rate < 0 {
		return fmt.Errorf("batch rate cannot be negative")
	}
	if c.Batch.Rate > 0 && c.Batch.RateBurst < 1 {
		c.Batch.RateBurst = DefaultRateBurst
	}
	if c.Batch.AcquireRetries < 0 {
		return fmt.Errorf("batch acquire_retries cannot be negative")
	}

	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("invalid audit settings: %w", err)
	}

	if c.Sources.Sitemap != "" && c.Sources.URLFile != "" {
		return fmt.Errorf("sources sitemap and url_file are mutually exclusive")
	}
	if c.Sources.Timeout <= 0 {
		c.Sources.Timeout = DefaultSourceTimeout
	}

	format, err := output.ParseFormat(string(c.Output.Format))
	if err != nil {
		return err
	}
	c.Output.Format = format

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = VerbosityNormal
	}
	switch strings.ToLower(c.Logging.Verbosity) {
	case VerbosityQuiet, VerbosityNormal, VerbosityVerbose, VerbosityDebug:
		c.Logging.Verbosity = strings.ToLower(c.Logging.Verbosity)
	default:
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// PoolConfig returns the browser pool settings.
func (c *Config) PoolConfig() pool.Config {
	return c.Pool
}

// BrowserOptions returns the launch and tab options.
func (c *Config) BrowserOptions() browser.Options {
	return c.Browser
}

// AuditConfig returns the per-page audit settings.
func (c *Config) AuditConfig() audit.Config {
	return c.Audit
}

// AcquireAttempts is the total number of acquire tries per page.
func (c *Config) AcquireAttempts() int {
	return c.Batch.AcquireRetries + 1
}

// LogLevel maps the verbosity onto a minimum logging level.
func (c *Config) LogLevel() logging.Level {
	switch c.Logging.Verbosity {
	case VerbosityQuiet:
		return logging.LevelError
	case VerbosityDebug:
		return logging.LevelDebug
	default:
		return logging.LevelInfo
	}
}
