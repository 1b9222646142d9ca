package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BlankURL is where Reset leaves a tab.
const BlankURL = "about:blank"

// Response describes the main-document response of a navigation.
type Response struct {
	// URL is the requested URL, FinalURL where redirects ended
	URL      string
	FinalURL string

	// Status is 0 when the navigation produced no response (about:blank,
	// same-document navigations)
	Status int

	// Headers holds response headers with lower-cased names
	Headers map[string]string

	Elapsed time.Duration
}

// Tab is one isolated page. It is not safe for concurrent use; the pool
// hands each tab to one holder at a time.
type Tab struct {
	id        int64
	driver    *Driver
	context   playwright.BrowserContext
	page      playwright.Page
	timeout   time.Duration
	waitUntil WaitUntil

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// ID returns a driver-unique tab number.
func (t *Tab) ID() int64 {
	return t.id
}

// URL returns the page's current URL.
func (t *Tab) URL() string {
	return t.page.URL()
}

// Navigate loads url and waits for the configured load state. A 4xx or 5xx
// status is returned in the Response, not as an error.
func (t *Tab) Navigate(ctx context.Context, url string) (*Response, error) {
	if t.closed.Load() {
		return nil, ErrTabClosed
	}

	start := time.Now()
	waitUntil := playwright.WaitUntilState(t.waitUntil)
	resp, err := call(ctx, func() (playwright.Response, error) {
		return t.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: &waitUntil,
			Timeout:   playwright.Float(millis(t.timeout)),
		})
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, &NavigationError{URL: url, Timeout: t.timeout, Err: err}
	}

	out := &Response{
		URL:      url,
		FinalURL: t.page.URL(),
		Elapsed:  elapsed,
		Headers:  map[string]string{},
	}
	if resp != nil {
		out.Status = resp.Status()
		headers, herr := resp.AllHeaders()
		if herr != nil {
			headers = resp.Headers()
		}
		out.Headers = lowerKeys(headers)
	}

	debugLog.Debugf("Tab %d navigated to %s: status=%d in %s", t.id, out.FinalURL, out.Status, elapsed.Round(time.Millisecond))
	return out, nil
}

// Reset navigates the tab to about:blank.
func (t *Tab) Reset(ctx context.Context) error {
	if t.closed.Load() {
		return ErrTabClosed
	}
	_, err := call(ctx, func() (playwright.Response, error) {
		return t.page.Goto(BlankURL)
	})
	if err != nil {
		return fmt.Errorf("reset tab %d: %w", t.id, err)
	}
	return nil
}

// Content returns the serialized DOM of the current page.
func (t *Tab) Content(ctx context.Context) (string, error) {
	if t.closed.Load() {
		return "", ErrTabClosed
	}
	html, err := call(ctx, t.page.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Evaluate runs a JavaScript expression in the page and returns its
// JSON-decoded result.
func (t *Tab) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	if t.closed.Load() {
		return nil, ErrTabClosed
	}
	v, err := call(ctx, func() (any, error) {
		return t.page.Evaluate(script, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return v, nil
}

// Close closes the page and its browser context. Safe to call more than
// once; later calls return the first result.
func (t *Tab) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()

		var errs []error
		if err := run(ctx, func() error { return t.page.Close() }); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		if err := run(ctx, func() error { return t.context.Close() }); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		t.closeErr = errors.Join(errs...)
		if t.driver != nil {
			t.driver.open.Add(-1)
		}
		debugLog.Debugf("Closed tab %d", t.id)
	})
	return t.closeErr
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
