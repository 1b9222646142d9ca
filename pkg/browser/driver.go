package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/entrhq/siteaudit/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("browser")
	if err != nil {
		debugLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}
}

// Driver owns the Playwright runtime and the single shared browser.
type Driver struct {
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser

	mu     sync.Mutex
	closed bool

	tabSeq atomic.Int64
	open   atomic.Int64
}

// Launch installs and starts Playwright and launches Chromium. Every
// failure is returned as a *LaunchError.
func Launch(ctx context.Context, opts Options) (*Driver, error) {
	if err := opts.Validate(); err != nil {
		return nil, &LaunchError{Stage: "options", Err: err}
	}
	opts = opts.withDefaults()

	// Discard driver output so it does not interleave with the progress bar
	runOpts := &playwright.RunOptions{
		Browsers:            []string{"chromium"},
		SkipInstallBrowsers: opts.ExecutablePath != "",
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}

	if !opts.SkipInstall {
		debugLog.Infof("Installing playwright driver (browsers=%t)", !runOpts.SkipInstallBrowsers)
		if err := run(ctx, func() error { return playwright.Install(runOpts) }); err != nil {
			return nil, &LaunchError{Stage: "install", Err: err}
		}
	}

	pw, err := call(ctx, func() (*playwright.Playwright, error) { return playwright.Run(runOpts) })
	if err != nil {
		return nil, &LaunchError{Stage: "run", Err: err}
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     LaunchArgs(opts),
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}

	b, err := call(ctx, func() (playwright.Browser, error) { return pw.Chromium.Launch(launchOpts) })
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			debugLog.Warnf("Failed to stop playwright after launch failure: %v", stopErr)
		}
		return nil, &LaunchError{Stage: "launch", Err: err}
	}

	debugLog.Infof("Launched chromium %s (headless=%t, window=%dx%d)",
		b.Version(), opts.Headless, opts.WindowWidth, opts.WindowHeight)

	return &Driver{opts: opts, pw: pw, browser: b}, nil
}

// Options returns the effective options, defaults applied.
func (d *Driver) Options() Options {
	return d.opts
}

// Version returns the browser version string.
func (d *Driver) Version() string {
	return d.browser.Version()
}

// OpenTabs returns the number of tabs opened and not yet closed.
func (d *Driver) OpenTabs() int {
	return int(d.open.Load())
}

// NewTab opens a page in a fresh browser context with the configured
// viewport and timeouts.
func (d *Driver) NewTab(ctx context.Context) (*Tab, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, ErrDriverClosed
	}

	bctx, err := call(ctx, func() (playwright.BrowserContext, error) {
		return d.browser.NewContext(playwright.BrowserNewContextOptions{
			Viewport: &playwright.Size{
				Width:  d.opts.WindowWidth,
				Height: d.opts.WindowHeight,
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := call(ctx, bctx.NewPage)
	if err != nil {
		_ = bctx.Close() // Ignore errors, continue cleanup
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	timeout := millis(d.opts.NavigationTimeout)
	page.SetDefaultTimeout(timeout)
	page.SetDefaultNavigationTimeout(timeout)

	tab := &Tab{
		id:        d.tabSeq.Add(1),
		driver:    d,
		context:   bctx,
		page:      page,
		timeout:   d.opts.NavigationTimeout,
		waitUntil: d.opts.WaitUntil,
	}
	d.open.Add(1)
	debugLog.Debugf("Opened tab %d (%d open)", tab.id, d.open.Load())
	return tab, nil
}

// Close closes the browser and stops Playwright. Safe to call more than once.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	debugLog.Infof("Browser driver closed (%d tabs still open)", d.open.Load())
	return errors.Join(errs...)
}
