package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/entrhq/siteaudit/pkg/audit"
	"github.com/entrhq/siteaudit/pkg/batch"
	"github.com/entrhq/siteaudit/pkg/browser"
	"github.com/entrhq/siteaudit/pkg/config"
	"github.com/entrhq/siteaudit/pkg/logging"
	"github.com/entrhq/siteaudit/pkg/output"
	"github.com/entrhq/siteaudit/pkg/pool"
	"github.com/entrhq/siteaudit/pkg/sources"
	"github.com/entrhq/siteaudit/pkg/wcag"
	"github.com/schollz/progressbar/v3"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("siteaudit")
	if err != nil {
		debugLog.Warnf("Failed to initialize siteaudit logger, using stderr fallback: %v", err)
	}
}

// run executes one audit batch and returns the process exit code.
func run(ctx context.Context, cli *CLIConfig) (int, error) {
	cfg, err := loadConfig(cli)
	if err != nil {
		return exitConfig, err
	}
	for _, w := range cfg.Warnings {
		printWarning("%s", w)
	}

	logging.SetLevel(cfg.LogLevel())
	if cli.Verbose {
		logging.SetMirror(os.Stderr)
		defer logging.SetMirror(nil)
	}

	urls, err := collectURLs(ctx, cfg, cli.URL)
	if err != nil {
		return exitConfig, err
	}
	if len(urls) == 0 {
		return exitConfig, fmt.Errorf("%w: no URLs to audit", errUsage)
	}
	debugLog.Infof("Collected %d URLs", len(urls))

	pipeline, err := audit.NewPipeline(cfg.AuditConfig())
	if err != nil {
		return exitConfig, fmt.Errorf("failed to create audit pipeline: %w", err)
	}

	driver, err := browser.Launch(ctx, cfg.BrowserOptions())
	if err != nil {
		return exitConfig, err
	}
	defer func() {
		if closeErr := driver.Close(); closeErr != nil {
			debugLog.Warnf("Failed to close browser: %v", closeErr)
		}
	}()

	tabs, err := pool.New(cfg.PoolConfig(), pool.FactoryFunc[*browser.Tab](driver.NewTab))
	if err != nil {
		return exitConfig, fmt.Errorf("failed to create browser pool: %w", err)
	}
	defer func() {
		if closeErr := tabs.Close(); closeErr != nil {
			debugLog.Warnf("Failed to close browser pool: %v", closeErr)
		}
	}()

	total := len(urls)
	if cfg.Batch.MaxPages > 0 && total > cfg.Batch.MaxPages {
		total = cfg.Batch.MaxPages
	}

	opts := []batch.Option{
		batch.WithConcurrency(cfg.Batch.Concurrency),
		batch.WithMaxItems(cfg.Batch.MaxPages),
		batch.WithRateLimit(cfg.Batch.Rate, cfg.Batch.RateBurst),
		batch.WithAcquireRetry(cfg.AcquireAttempts(), cfg.Batch.RetryDelay),
		batch.WithOutcomeHook(func(o batch.Outcome[*audit.Report]) {
			if o.Err != nil {
				debugLog.Warnf("%s: %v", o.URL, o.Err)
			}
		}),
	}
	bar := newProgressBar(cli, cfg, total)
	if bar != nil {
		opts = append(opts, batch.WithProgress(func(completed, _ int, _ string) {
			_ = bar.Set(completed)
		}))
	}

	scheduler := batch.New(tabs,
		batch.PipelineFunc[*browser.Tab, *audit.Report](func(ctx context.Context, tab *browser.Tab, url string) (*audit.Report, error) {
			return pipeline.Audit(ctx, tab, url)
		}),
		opts...,
	)

	result := scheduler.Run(ctx, urls)
	if bar != nil {
		_ = bar.Finish()
	}
	stats := tabs.Stats()
	debugLog.Infof("Pool: created=%d discarded=%d idle=%d degraded=%t",
		stats.Created, stats.Discarded, stats.Idle, stats.Degraded)

	report := audit.NewBatchReport(result)
	if err := writeReport(cfg, report); err != nil {
		return exitFailed, err
	}

	if ctx.Err() != nil {
		printNotice("Interrupted: remaining URLs were skipped")
	}
	if !report.OK() {
		return exitFailed, nil
	}
	return exitOK, nil
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	if cli.set["sitemap"] || cli.set["url-file"] || cli.URL != "" {
		cfg.Sources.Sitemap = cli.Sitemap
		cfg.Sources.URLFile = cli.URLFile
	}
	if cli.set["include"] {
		cfg.Sources.Include = cli.Include
	}
	if cli.set["exclude"] {
		cfg.Sources.Exclude = cli.Exclude
	}
	if cli.set["level"] {
		level, err := wcag.ParseLevel(cli.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg.Audit.Level = level
	}
	if cli.set["format"] {
		cfg.Output.Format = output.Format(cli.Format)
	}
	if cli.set["output"] {
		cfg.Output.Path = cli.OutputFile
	}
	if cli.set["chrome-path"] {
		cfg.Browser.ExecutablePath = cli.ChromePath
	}
	if cli.set["max-pages"] {
		cfg.Batch.MaxPages = cli.MaxPages
	}
	// -concurrency sizes the pool along with the scheduler
	if cli.set["concurrency"] {
		cfg.Batch.Concurrency = cli.Concurrency
		cfg.Pool.MaxResources = cli.Concurrency
	}
	if cli.set["timeout"] {
		cfg.Browser.NavigationTimeout = time.Duration(cli.Timeout) * time.Second
	}
	if cli.set["acquire-timeout"] {
		cfg.Pool.AcquireTimeout = time.Duration(cli.AcquireTimeout) * time.Second
	}
	if cli.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
	if cli.DisableImages {
		cfg.Browser.DisableImages = true
	}
	if cli.set["rate"] {
		cfg.Batch.Rate = cli.Rate
	}
	if cli.Verbose {
		cfg.Logging.Verbosity = config.VerbosityDebug
	}
	if cli.Quiet {
		cfg.Logging.Verbosity = config.VerbosityQuiet
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return cfg, nil
}

// collectURLs resolves the single configured source into a filtered list.
// The page limit is left to the scheduler so skipped URLs are not fetched.
func collectURLs(ctx context.Context, cfg *config.Config, arg string) ([]string, error) {
	given := 0
	for _, s := range []string{arg, cfg.Sources.Sitemap, cfg.Sources.URLFile} {
		if s != "" {
			given++
		}
	}
	switch {
	case given == 0:
		return nil, fmt.Errorf("%w: provide a URL, -sitemap or -url-file", errUsage)
	case given > 1:
		return nil, fmt.Errorf("%w: use only one of a URL argument, -sitemap or -url-file", errUsage)
	}

	filter, err := sources.NewFilter(cfg.Sources.Include, cfg.Sources.Exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	var raw []string
	switch {
	case arg != "":
		u, err := sources.Normalize(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		raw = []string{u}
	case cfg.Sources.Sitemap != "":
		client := &http.Client{Timeout: cfg.Sources.Timeout}
		raw, err = sources.FetchSitemap(ctx, client, cfg.Sources.Sitemap)
		if err != nil {
			return nil, err
		}
	default:
		raw, err = sources.ReadURLFile(cfg.Sources.URLFile)
		if err != nil {
			return nil, err
		}
	}

	return filter.Apply(raw, 0), nil
}

// newProgressBar returns nil when progress would interleave with other
// output on the terminal.
func newProgressBar(cli *CLIConfig, cfg *config.Config, total int) *progressbar.ProgressBar {
	if cli.Quiet || cli.Verbose {
		return nil
	}
	if cfg.Output.Path == "" && cfg.Output.Format == output.FormatJSON {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Auditing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func writeReport(cfg *config.Config, report *audit.BatchReport) error {
	if cfg.Output.Path != "" {
		if err := output.WriteFile(cfg.Output.Path, cfg.Output.Format, report); err != nil {
			return err
		}
		printNotice("Report written to %s", cfg.Output.Path)
		return nil
	}
	return output.Write(stdout, cfg.Output.Format, report)
}

// stdout is replaced in tests.
var stdout io.Writer = os.Stdout
