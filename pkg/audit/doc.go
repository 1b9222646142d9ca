// Package audit turns one loaded page into a Report: WCAG checks, the
// accessibility score and the optional SEO, security and performance
// analyzers. Pipeline.Audit is the per-URL task the batch scheduler runs
// with a leased browser tab.
package audit
