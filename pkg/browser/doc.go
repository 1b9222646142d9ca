// Package browser drives a single shared Chromium process through Playwright.
//
// A Driver owns the Playwright runtime and one browser. Tabs are opened from
// the driver on demand, each in its own browser context so cookies, storage
// and cache never leak between audits. A Tab satisfies pool.Resource: Reset
// navigates it to about:blank and Close tears down the page and its context.
//
// # Lifecycle
//
//  1. Launch: installs the Playwright driver (unless SkipInstall), starts it
//     and launches Chromium with LaunchArgs. Any failure is a *LaunchError.
//  2. NewTab: opens an isolated page with the configured viewport and
//     default timeouts.
//  3. Navigate / Content / Evaluate: the audit operations.
//  4. Close: closes the browser and stops Playwright. Tabs still open are
//     closed with it.
//
// # Cancellation
//
// Playwright calls do not take a context. Every blocking call is run in a
// goroutine so that a cancelled context returns ctx.Err() promptly; the
// call itself finishes in the background.
//
// # Example
//
//	d, err := browser.Launch(ctx, browser.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	tab, err := d.NewTab(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tab.Close()
//
//	resp, err := tab.Navigate(ctx, "https://example.com")
package browser
