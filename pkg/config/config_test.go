package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrhq/siteaudit/pkg/browser"
	"github.com/entrhq/siteaudit/pkg/logging"
	"github.com/entrhq/siteaudit/pkg/output"
	"github.com/entrhq/siteaudit/pkg/pool"
	"github.com/entrhq/siteaudit/pkg/wcag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "siteaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, pool.DefaultMaxResources, cfg.Pool.MaxResources)
	assert.Equal(t, cfg.Pool.MaxResources, cfg.Batch.Concurrency)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, wcag.LevelAA, cfg.Audit.Level)
	assert.Equal(t, output.FormatTable, cfg.Output.Format)
	assert.Equal(t, VerbosityNormal, cfg.Logging.Verbosity)
	assert.Equal(t, 1, cfg.AcquireAttempts())
	assert.Empty(t, cfg.Warnings)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Pool, cfg.Pool)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
browser:
  no_sandbox: true
  navigation_timeout: 45s
  wait_until: networkidle
pool:
  max_resources: 8
  acquire_timeout: 2m
batch:
  concurrency: 6
  max_pages: 100
  rate: 2.5
  acquire_retries: 2
  retry_delay: 500ms
audit:
  level: aaa
  pass_score: 80
  seo: false
  content_weight: false
sources:
  sitemap: https://example.com/sitemap.xml
  exclude:
    - "https://example.com/private/**"
output:
  format: md
  path: reports/audit.md
logging:
  verbosity: Debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Browser.NoSandbox)
	assert.True(t, cfg.Browser.Headless, "unset keys keep their defaults")
	assert.Equal(t, 45*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, browser.WaitNetworkIdle, cfg.Browser.WaitUntil)

	assert.Equal(t, 8, cfg.PoolConfig().MaxResources)
	assert.Equal(t, 2*time.Minute, cfg.PoolConfig().AcquireTimeout)
	assert.Equal(t, pool.DefaultResetTimeout, cfg.PoolConfig().ResetTimeout)

	assert.Equal(t, 6, cfg.Batch.Concurrency)
	assert.Equal(t, 100, cfg.Batch.MaxPages)
	assert.Equal(t, 2.5, cfg.Batch.Rate)
	assert.Equal(t, DefaultRateBurst, cfg.Batch.RateBurst)
	assert.Equal(t, 3, cfg.AcquireAttempts())
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.RetryDelay)

	ac := cfg.AuditConfig()
	assert.Equal(t, wcag.LevelAAA, ac.Level)
	assert.Equal(t, 80.0, ac.PassScore)
	assert.False(t, ac.SEO)
	assert.True(t, ac.Security)
	assert.True(t, ac.Mobile)
	assert.False(t, ac.ContentWeight)

	assert.Equal(t, "https://example.com/sitemap.xml", cfg.Sources.Sitemap)
	assert.Equal(t, []string{"https://example.com/private/**"}, cfg.Sources.Exclude)

	assert.Equal(t, output.FormatMarkdown, cfg.Output.Format)
	assert.Equal(t, "reports/audit.md", cfg.Output.Path)
	assert.Equal(t, VerbosityDebug, cfg.Logging.Verbosity)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Batch, cfg.Batch)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "pool:\n  size: 3\n"},
		{"bad duration", "pool:\n  acquire_timeout: soon\n"},
		{"bad level", "audit:\n  level: AAAA\n"},
		{"bad format", "output:\n  format: pdf\n"},
		{"zero capacity", "pool:\n  max_resources: 0\n"},
		{"zero concurrency", "batch:\n  concurrency: 0\n"},
		{"negative max pages", "batch:\n  max_pages: -1\n"},
		{"zero navigation timeout", "browser:\n  navigation_timeout: 0s\n"},
		{"bad verbosity", "logging:\n  verbosity: loud\n"},
		{"two sources", "sources:\n  sitemap: https://a.example/sitemap.xml\n  url_file: urls.txt\n"},
		{"not yaml", "pool: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateClampsConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pool.MaxResources = 2
	cfg.Batch.Concurrency = 10

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "exceeds pool capacity")
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		want      logging.Level
	}{
		{VerbosityQuiet, logging.LevelError},
		{VerbosityNormal, logging.LevelInfo},
		{VerbosityVerbose, logging.LevelInfo},
		{VerbosityDebug, logging.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.verbosity, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Logging.Verbosity = tt.verbosity
			assert.Equal(t, tt.want, cfg.LogLevel())
		})
	}
}
