package browser

import (
	"fmt"
	"strings"
	"time"
)

// WaitUntil is the navigation event that marks a page as loaded.
type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// ParseWaitUntil validates a wait state name. Empty means WaitLoad.
func ParseWaitUntil(s string) (WaitUntil, error) {
	switch w := WaitUntil(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WaitLoad, nil
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle:
		return w, nil
	default:
		return "", fmt.Errorf("unknown wait state %q (want load, domcontentloaded or networkidle)", s)
	}
}

// Default values for browser options.
const (
	DefaultWindowWidth       = 1920
	DefaultWindowHeight      = 1080
	DefaultNavigationTimeout = 30 * time.Second

	closeTimeout = 5 * time.Second
)

// Options configures the browser launch and every tab opened from it.
type Options struct {
	// ExecutablePath points at a Chromium binary. Empty uses the one
	// Playwright installs.
	ExecutablePath string `yaml:"executable_path"`

	// Headless runs the browser without a window
	Headless bool `yaml:"headless"`

	DisableGPU    bool `yaml:"disable_gpu"`
	NoSandbox     bool `yaml:"no_sandbox"`
	DisableImages bool `yaml:"disable_images"`

	// WindowWidth and WindowHeight size both the window and the tab viewport
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`

	// NavigationTimeout is the page-load timeout for Navigate and the
	// default timeout for other page operations.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`

	WaitUntil WaitUntil `yaml:"wait_until"`

	// SkipInstall assumes the Playwright driver and browsers are present
	SkipInstall bool `yaml:"skip_install"`
}

// DefaultOptions returns headless, GPU-less options with a 1920x1080 window.
func DefaultOptions() Options {
	return Options{
		Headless:          true,
		DisableGPU:        true,
		WindowWidth:       DefaultWindowWidth,
		WindowHeight:      DefaultWindowHeight,
		NavigationTimeout: DefaultNavigationTimeout,
		WaitUntil:         WaitLoad,
	}
}

// Validate checks the options for values Playwright would reject.
func (o Options) Validate() error {
	if o.WindowWidth < 0 || o.WindowHeight < 0 {
		return fmt.Errorf("window size must not be negative, got %dx%d", o.WindowWidth, o.WindowHeight)
	}
	if o.NavigationTimeout < 0 {
		return fmt.Errorf("navigation timeout must not be negative")
	}
	if _, err := ParseWaitUntil(string(o.WaitUntil)); err != nil {
		return err
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.WindowWidth == 0 {
		o.WindowWidth = DefaultWindowWidth
	}
	if o.WindowHeight == 0 {
		o.WindowHeight = DefaultWindowHeight
	}
	if o.NavigationTimeout == 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.WaitUntil == "" {
		o.WaitUntil = WaitLoad
	}
	return o
}

// LaunchArgs returns the Chromium command-line flags for opts.
func LaunchArgs(opts Options) []string {
	opts = opts.withDefaults()

	args := []string{
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-extensions",
		"--disable-background-networking",
		"--disable-sync",
		"--disable-translate",
		"--disable-features=TranslateUI",
		"--metrics-recording-only",
		"--mute-audio",
		"--disable-infobars",
		"--disable-popup-blocking",
		fmt.Sprintf("--window-size=%d,%d", opts.WindowWidth, opts.WindowHeight),
	}

	if opts.DisableGPU {
		args = append(args, "--disable-gpu", "--disable-software-rasterizer")
	}

	// Needed in most containers
	if opts.NoSandbox {
		args = append(args, "--no-sandbox", "--disable-setuid-sandbox", "--disable-dev-shm-usage")
	}

	if opts.DisableImages {
		args = append(args, "--blink-settings=imagesEnabled=false")
	}

	return args
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
