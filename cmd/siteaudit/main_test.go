package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrhq/siteaudit/pkg/config"
	"github.com/entrhq/siteaudit/pkg/output"
	"github.com/entrhq/siteaudit/pkg/wcag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("CHROME_PATH", "")

	cli, err := parseFlags([]string{
		"-level", "aaa",
		"-concurrency", "6",
		"-include", "https://example.com/docs/**",
		"-include", "https://example.com/blog/**",
		"-no-sandbox",
		"https://example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cli.URL)
	assert.Equal(t, "aaa", cli.Level)
	assert.Equal(t, 6, cli.Concurrency)
	assert.Equal(t, stringList{"https://example.com/docs/**", "https://example.com/blog/**"}, cli.Include)
	assert.True(t, cli.NoSandbox)
	assert.True(t, cli.set["concurrency"])
	assert.False(t, cli.set["timeout"])
	assert.False(t, cli.set["chrome-path"])
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"two urls", []string{"https://a.example", "https://b.example"}},
		{"verbose and quiet", []string{"-verbose", "-quiet"}},
		{"unknown flag", []string{"-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseFlagsChromePathFromEnv(t *testing.T) {
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")

	cli, err := parseFlags([]string{"https://example.com"})
	require.NoError(t, err)

	cfg, err := loadConfig(cli)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", cfg.Browser.ExecutablePath)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	t.Setenv("CHROME_PATH", "")

	path := filepath.Join(t.TempDir(), "siteaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pool:
  max_resources: 2
batch:
  concurrency: 2
audit:
  level: A
output:
  format: json
sources:
  sitemap: https://example.com/sitemap.xml
`), 0644))

	cli, err := parseFlags([]string{
		"-config", path,
		"-level", "aa",
		"-concurrency", "5",
		"-timeout", "10",
		"-acquire-timeout", "20",
		"-url-file", "urls.txt",
		"-quiet",
	})
	require.NoError(t, err)

	cfg, err := loadConfig(cli)
	require.NoError(t, err)

	assert.Equal(t, wcag.LevelAA, cfg.Audit.Level)
	assert.Equal(t, 5, cfg.Batch.Concurrency)
	assert.Equal(t, 5, cfg.Pool.MaxResources)
	assert.Equal(t, 10*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 20*time.Second, cfg.Pool.AcquireTimeout)
	assert.Equal(t, output.FormatJSON, cfg.Output.Format, "unset flags keep file values")
	assert.Empty(t, cfg.Sources.Sitemap, "a source flag replaces the file's source")
	assert.Equal(t, "urls.txt", cfg.Sources.URLFile)
	assert.Equal(t, config.VerbosityQuiet, cfg.Logging.Verbosity)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("CHROME_PATH", "")

	tests := []struct {
		name string
		args []string
	}{
		{"bad level", []string{"-level", "b"}},
		{"bad format", []string{"-format", "pdf"}},
		{"zero concurrency", []string{"-concurrency", "0"}},
		{"zero timeout", []string{"-timeout", "0"}},
		{"missing config", []string{"-config", "/nonexistent/siteaudit.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, err := parseFlags(tt.args)
			require.NoError(t, err)

			_, err = loadConfig(cli)
			require.Error(t, err)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestCollectURLsFromArgument(t *testing.T) {
	cfg := config.DefaultConfig()

	urls, err := collectURLs(context.Background(), cfg, "example.com/about#team")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/about"}, urls)
}

func TestCollectURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte(`# pages
https://example.com/
https://example.com/private/admin
https://example.com/docs
https://example.com/
`), 0644))

	cfg := config.DefaultConfig()
	cfg.Sources.URLFile = path
	cfg.Sources.Exclude = []string{"https://example.com/private/**"}

	urls, err := collectURLs(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/docs"}, urls)
}

func TestCollectURLsFromSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/pricing</loc></url>
</urlset>`))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Sources.Sitemap = srv.URL + "/sitemap.xml"

	urls, err := collectURLs(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/pricing"}, urls)
}

func TestCollectURLsSourceErrors(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		_, err := collectURLs(context.Background(), config.DefaultConfig(), "")
		assert.ErrorIs(t, err, errUsage)
	})

	t.Run("two sources", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Sources.URLFile = "urls.txt"
		_, err := collectURLs(context.Background(), cfg, "https://example.com")
		assert.ErrorIs(t, err, errUsage)
	})

	t.Run("bad argument", func(t *testing.T) {
		_, err := collectURLs(context.Background(), config.DefaultConfig(), "mailto:someone@example.com")
		assert.ErrorIs(t, err, errUsage)
	})

	t.Run("bad pattern", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Sources.Include = []string{"**/[z"}
		_, err := collectURLs(context.Background(), cfg, "https://example.com")
		assert.ErrorIs(t, err, errUsage)
	})
}

func TestNewProgressBar(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotNil(t, newProgressBar(&CLIConfig{}, cfg, 3))
	assert.Nil(t, newProgressBar(&CLIConfig{Quiet: true}, cfg, 3))
	assert.Nil(t, newProgressBar(&CLIConfig{Verbose: true}, cfg, 3))

	cfg.Output.Format = output.FormatJSON
	assert.Nil(t, newProgressBar(&CLIConfig{}, cfg, 3), "JSON on stdout stays clean")

	cfg.Output.Path = "report.json"
	assert.NotNil(t, newProgressBar(&CLIConfig{}, cfg, 3))
}
