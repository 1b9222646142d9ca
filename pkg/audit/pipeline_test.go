package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entrhq/siteaudit/pkg/analysis"
	"github.com/entrhq/siteaudit/pkg/batch"
	"github.com/entrhq/siteaudit/pkg/browser"
	"github.com/entrhq/siteaudit/pkg/wcag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanHTML = `<!DOCTYPE html><html lang="en"><head><title>Clean page</title></head>
<body><nav><a href="/">Home page</a></nav><main><h1>Hello</h1><p>Body text.</p></main></body></html>`

// noHeadingsHTML has a single 2.4.6 violation.
const noHeadingsHTML = `<!DOCTYPE html><html lang="en"><head><title>No headings</title></head>
<body><nav><a href="/">Home page</a></nav><main><p>Body text.</p></main></body></html>`

// mobileJSON is a properly scaled page with one small touch target.
const mobileJSON = `{"viewport":{"present":true,"device_width":true,"initial_scale":true,"scalable":true},
"touch_targets":{"total":4,"too_small":1},"fonts":{"base":16,"smallest":14,"legible":3,"total":3},
"content":{"viewport_width":375,"document_width":375}}`

type fakePage struct {
	status    int
	finalURL  string
	headers   map[string]string
	html      string
	timing    any
	mobile    any
	resources any
	navErr    error
	evalErr   error

	navigated []string
	evaluated int
}

var _ Page = (*fakePage)(nil)
var _ Page = (*browser.Tab)(nil)

func (f *fakePage) Navigate(_ context.Context, url string) (*browser.Response, error) {
	f.navigated = append(f.navigated, url)
	if f.navErr != nil {
		return nil, f.navErr
	}
	return &browser.Response{
		URL:      url,
		FinalURL: f.finalURL,
		Status:   f.status,
		Headers:  f.headers,
		Elapsed:  120 * time.Millisecond,
	}, nil
}

func (f *fakePage) Content(context.Context) (string, error) {
	return f.html, nil
}

func (f *fakePage) Evaluate(_ context.Context, script string, _ ...any) (any, error) {
	f.evaluated++
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	switch script {
	case analysis.MobileScript:
		return f.mobile, nil
	case analysis.ResourceScript:
		return f.resources, nil
	}
	return f.timing, nil
}

func newPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return p
}

func TestAuditCleanPage(t *testing.T) {
	page := &fakePage{
		status:    200,
		finalURL:  "https://example.com/",
		headers:   map[string]string{"content-security-policy": "default-src 'self'"},
		html:      cleanHTML,
		timing:    `{"ttfb":100,"fcp":500,"dom_content_loaded":700,"load":900}`,
		mobile:    mobileJSON,
		resources: `[{"name":"https://example.com/app.js","type":"script","transfer_size":2000,"decoded_size":8000}]`,
	}

	report, err := newPipeline(t, DefaultConfig()).Audit(context.Background(), page, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", report.URL)
	assert.Equal(t, "https://example.com/", report.FinalURL)
	assert.Equal(t, 200, report.StatusCode)
	assert.Equal(t, wcag.LevelAA, report.Level)
	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, "A", report.Grade)
	assert.Equal(t, "PLATINUM", report.Certificate)
	assert.Equal(t, 0, report.ViolationCount())
	assert.True(t, report.Passed())
	assert.Equal(t, 120*time.Millisecond, report.LoadTime)
	assert.Greater(t, report.NodesAnalyzed, 5)

	require.NotNil(t, report.Performance)
	assert.Equal(t, 100, report.Performance.Score)
	require.NotNil(t, report.SEO)
	assert.Equal(t, "Clean page", report.SEO.Title)
	require.NotNil(t, report.Security)
	assert.Equal(t, "default-src 'self'", report.Security.Headers.ContentSecurityPolicy)
	require.NotNil(t, report.Mobile)
	assert.Equal(t, 90, report.Mobile.Score)
	require.NotNil(t, report.ContentWeight)
	assert.Equal(t, int64(8000), report.ContentWeight.Category(analysis.CategoryJS).Bytes)
	assert.Equal(t, 3, page.evaluated)

	assert.Equal(t, (100+100+report.SEO.Score+report.Security.Score+90)/5, report.OverallScore())
}

func TestAuditScoresViolations(t *testing.T) {
	page := &fakePage{status: 200, html: noHeadingsHTML}
	cfg := DefaultConfig()
	cfg.Performance, cfg.SEO, cfg.Security = false, false, false
	cfg.Mobile, cfg.ContentWeight = false, false

	report, err := newPipeline(t, cfg).Audit(context.Background(), page, "https://example.com/a")
	require.NoError(t, err)

	require.Equal(t, 1, report.ViolationCount())
	assert.Equal(t, "2.4.6", report.Wcag.Violations[0].Rule)
	assert.Equal(t, 100-1-20.0, report.Score)
	assert.Equal(t, "C", report.Grade)
	assert.Equal(t, 1, report.Statistics.Warnings)
	assert.Equal(t, 1, report.Statistics.ByPrinciple.Operable)
	assert.True(t, report.Passed())

	assert.Equal(t, "https://example.com/a", report.FinalURL)
	assert.Zero(t, page.evaluated)
	assert.Nil(t, report.Performance)
	assert.Nil(t, report.SEO)
	assert.Nil(t, report.Security)
	assert.Nil(t, report.Mobile)
	assert.Nil(t, report.ContentWeight)
	assert.Equal(t, 79, report.OverallScore())
}

func TestPassedRequiresNoCritical(t *testing.T) {
	page := &fakePage{status: 200, html: `<!DOCTYPE html><html lang="en"><head><title>Form</title></head>
		<body><nav></nav><main><h1>Sign up</h1><input type="text"></main></body></html>`}

	report, err := newPipeline(t, DefaultConfig()).Audit(context.Background(), page, "https://example.com/form")
	require.NoError(t, err)

	assert.Equal(t, 97.5, report.Score)
	assert.True(t, report.Wcag.HasCritical())
	assert.False(t, report.Passed())
}

func TestAuditHTTPErrorStatus(t *testing.T) {
	page := &fakePage{status: 404, html: cleanHTML}

	report, err := newPipeline(t, DefaultConfig()).Audit(context.Background(), page, "https://example.com/missing")
	assert.Nil(t, report)
	require.ErrorIs(t, err, ErrHTTPStatus)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.Status)
	assert.Equal(t, "HTTP 404 for https://example.com/missing", err.Error())
}

func TestAuditNavigationError(t *testing.T) {
	navErr := &browser.NavigationError{URL: "https://example.com", Timeout: time.Second, Err: context.DeadlineExceeded}
	page := &fakePage{navErr: navErr}

	_, err := newPipeline(t, DefaultConfig()).Audit(context.Background(), page, "https://example.com")
	assert.ErrorIs(t, err, browser.ErrNavigation)
	assert.ErrorIs(t, err, browser.ErrPageLoadTimeout)
}

func TestCaptureTimingFailureIsNotFatal(t *testing.T) {
	page := &fakePage{status: 200, html: cleanHTML, evalErr: errors.New("evaluation failed")}

	report, err := newPipeline(t, DefaultConfig()).Audit(context.Background(), page, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, page.evaluated)
	assert.Nil(t, report.Performance)
	assert.Nil(t, report.Mobile)
	assert.Nil(t, report.ContentWeight)
	assert.NotNil(t, report.SEO)
}

func TestAuditMobileAndWeight(t *testing.T) {
	mobile := map[string]any{
		"viewport": map[string]any{"present": false},
		"content":  map[string]any{"viewport_width": 375, "document_width": 900, "horizontal_scroll": true},
	}
	page := &fakePage{status: 200, html: cleanHTML, mobile: mobile, resources: "[]"}
	cfg := DefaultConfig()
	cfg.Performance = false

	report, err := newPipeline(t, cfg).Audit(context.Background(), page, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, page.evaluated)

	require.NotNil(t, report.Mobile)
	assert.Equal(t, 60, report.Mobile.Score)
	assert.False(t, report.Mobile.FitsViewport)
	require.Len(t, report.Mobile.Issues, 2)
	assert.Equal(t, analysis.SeverityError, report.Mobile.Issues[0].Severity)

	require.NotNil(t, report.ContentWeight)
	assert.Zero(t, report.ContentWeight.ResourceCount)
	assert.Equal(t, 1.0, report.ContentWeight.CompressionRatio())

	want := (100 + report.SEO.Score + report.Security.Score + 60) / 4
	assert.Equal(t, want, report.OverallScore())
}

func TestAuditMobileMissingIsNotFatal(t *testing.T) {
	page := &fakePage{status: 200, html: cleanHTML, mobile: "not json"}
	cfg := DefaultConfig()
	cfg.Performance, cfg.ContentWeight = false, false

	report, err := newPipeline(t, cfg).Audit(context.Background(), page, "https://example.com")
	require.NoError(t, err)
	assert.Nil(t, report.Mobile)
	assert.Equal(t, 1, page.evaluated)
}

func TestCaptureDecodedTiming(t *testing.T) {
	page := &fakePage{status: 200, html: cleanHTML, timing: map[string]any{"ttfb": 900.0}}

	snap, err := newPipeline(t, DefaultConfig()).Capture(context.Background(), page, "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, snap.Timing)
	assert.Equal(t, analysis.Timing{TTFB: 900}, *snap.Timing)
	assert.Equal(t, cleanHTML, snap.HTML)
	assert.Equal(t, "https://example.com", snap.FinalURL)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Level = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PassScore = 101
	assert.Error(t, cfg.Validate())

	_, err := NewPipeline(cfg)
	assert.ErrorContains(t, err, "invalid audit config")
}

func TestNewBatchReport(t *testing.T) {
	good := &Report{URL: "https://a", Score: 90, PassScore: 70}
	weak := &Report{URL: "https://b", Score: 50, PassScore: 70,
		Wcag: wcag.Results{Violations: []wcag.Violation{{Rule: "1.1.1"}, {Rule: "2.4.2"}}}}

	outcomes := []batch.Outcome[*Report]{
		{Index: 0, URL: "https://a", Report: good, State: batch.StateCompleted},
		{Index: 1, URL: "https://b", Report: weak, State: batch.StateCompleted},
		{Index: 2, URL: "https://c", Err: &HTTPStatusError{URL: "https://c", Status: 500}, State: batch.StateCompleted},
		{Index: 3, URL: "https://d", Err: batch.ErrNotAdmitted, State: batch.StateSkipped},
	}
	res := &batch.Result[*Report]{
		RunID:    "run-1",
		Duration: 3 * time.Second,
		Outcomes: outcomes,
		Summary:  batch.Summarize(outcomes, 3*time.Second),
	}

	br := NewBatchReport(res)

	assert.Equal(t, "run-1", br.RunID)
	assert.Equal(t, []*Report{good, weak}, br.Reports)
	require.Len(t, br.Errors, 2)
	assert.Equal(t, "https://c", br.Errors[0].URL)
	assert.Equal(t, "HTTP 500 for https://c", br.Errors[0].Message)
	assert.Equal(t, "https://d", br.Errors[1].URL)
	assert.Equal(t, BatchSummary{
		Total: 4, Passed: 1, Failed: 1, Errored: 1, Skipped: 1,
		AverageScore: 70, TotalViolations: 2,
	}, br.Summary)
	assert.False(t, br.OK())
}

func TestNewBatchReportEmpty(t *testing.T) {
	br := NewBatchReport(&batch.Result[*Report]{})
	assert.Empty(t, br.Reports)
	assert.NotNil(t, br.Errors)
	assert.Zero(t, br.Summary.AverageScore)
	assert.True(t, br.OK())
}
