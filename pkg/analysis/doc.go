// Package analysis contains the page analyzers that run alongside the WCAG
// checks: search-engine metadata, HTTP security headers, navigation
// timing, mobile friendliness and content weight. Each analyzer is a pure function over data captured from the
// browser, so it can be tested without one.
package analysis

// Severity labels used by analyzer issues.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"

	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
