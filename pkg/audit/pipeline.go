package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/siteaudit/pkg/analysis"
	"github.com/entrhq/siteaudit/pkg/browser"
	"github.com/entrhq/siteaudit/pkg/dom"
	"github.com/entrhq/siteaudit/pkg/logging"
	"github.com/entrhq/siteaudit/pkg/wcag"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("audit")
	if err != nil {
		debugLog.Warnf("Failed to initialize audit logger, using stderr fallback: %v", err)
	}
}

// Page is the part of a browser tab the pipeline drives. *browser.Tab
// satisfies it.
type Page interface {
	Navigate(ctx context.Context, url string) (*browser.Response, error)
	Content(ctx context.Context) (string, error)
	Evaluate(ctx context.Context, script string, args ...any) (any, error)
}

// Snapshot is everything captured from the browser for one page.
type Snapshot struct {
	RequestedURL string
	FinalURL     string
	Status       int
	Headers      map[string]string
	HTML         string
	LoadTime     time.Duration

	// In-page measurements stay nil when not requested or not reported
	Timing    *analysis.Timing
	Mobile    *analysis.MobileData
	Resources []analysis.Resource
}

// Pipeline audits pages loaded in a Page.
type Pipeline struct {
	cfg Config
	now func() time.Time
}

// NewPipeline returns a pipeline for cfg.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit config: %w", err)
	}
	return &Pipeline{cfg: cfg, now: time.Now}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Audit loads url in page and builds its report. Navigation failures and
// error statuses are returned as errors.
func (p *Pipeline) Audit(ctx context.Context, page Page, url string) (*Report, error) {
	start := p.now()

	snap, err := p.Capture(ctx, page, url)
	if err != nil {
		return nil, err
	}

	doc, err := dom.Parse(snap.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	results := wcag.Check(doc, p.cfg.Level)
	score := Score(results)

	report := &Report{
		URL:           url,
		FinalURL:      snap.FinalURL,
		StatusCode:    snap.Status,
		Timestamp:     start.UTC(),
		Level:         p.cfg.Level,
		Score:         score,
		Grade:         Grade(score),
		Certificate:   Certificate(score),
		PassScore:     p.cfg.PassScore,
		Statistics:    ComputeStatistics(results),
		Wcag:          results,
		NodesAnalyzed: results.NodesChecked,
		LoadTime:      snap.LoadTime,
	}

	if p.cfg.Performance && snap.Timing != nil {
		report.Performance = analysis.AnalyzePerformance(*snap.Timing)
	}
	if p.cfg.SEO {
		report.SEO = analysis.AnalyzeSEO(doc, snap.FinalURL)
	}
	if p.cfg.Security {
		report.Security = analysis.AnalyzeSecurity(snap.FinalURL, snap.Headers)
	}
	if p.cfg.Mobile && snap.Mobile != nil {
		report.Mobile = analysis.AnalyzeMobile(*snap.Mobile)
	}
	if p.cfg.ContentWeight && snap.Resources != nil {
		report.ContentWeight = analysis.AnalyzeContentWeight(snap.Resources)
	}

	report.Duration = p.now().Sub(start)
	debugLog.Infof("Audited %s: score=%.1f grade=%s violations=%d in %s",
		url, report.Score, report.Grade, report.ViolationCount(), report.Duration.Round(time.Millisecond))
	return report, nil
}

// Capture navigates page to url and collects the snapshot the checks run
// on. In-page measurements that fail are logged, not returned.
func (p *Pipeline) Capture(ctx context.Context, page Page, url string) (*Snapshot, error) {
	resp, err := page.Navigate(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return nil, &HTTPStatusError{URL: url, Status: resp.Status}
	}

	content, err := page.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", url, err)
	}

	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = url
	}
	snap := &Snapshot{
		RequestedURL: url,
		FinalURL:     finalURL,
		Status:       resp.Status,
		Headers:      resp.Headers,
		HTML:         content,
		LoadTime:     resp.Elapsed,
	}

	if p.cfg.Performance {
		if timing, err := measure(ctx, page, analysis.TimingScript, analysis.ParseTiming); err == nil {
			snap.Timing = &timing
		} else {
			debugLog.Warnf("No navigation timing for %s: %v", url, err)
		}
	}
	if p.cfg.Mobile {
		if mobile, err := measure(ctx, page, analysis.MobileScript, analysis.ParseMobile); err == nil {
			snap.Mobile = &mobile
		} else {
			debugLog.Warnf("No mobile measurements for %s: %v", url, err)
		}
	}
	if p.cfg.ContentWeight {
		if resources, err := measure(ctx, page, analysis.ResourceScript, analysis.ParseResources); err == nil {
			if resources == nil {
				resources = []analysis.Resource{}
			}
			snap.Resources = resources
		} else {
			debugLog.Warnf("No resource entries for %s: %v", url, err)
		}
	}

	return snap, nil
}

// measure evaluates script in page and decodes its result with parse.
func measure[T any](ctx context.Context, page Page, script string, parse func(any) (T, error)) (T, error) {
	raw, err := page.Evaluate(ctx, script)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(raw)
}
