package analysis

import "fmt"

// Mobile thresholds in CSS pixels.
const (
	MinTouchTarget = 44
	MinFontSize    = 12
)

// MobileScript is evaluated in the page after load. It measures the
// viewport meta tag, interactive element sizes, text sizes and horizontal
// overflow, and returns them as a JSON string.
const MobileScript = `() => {
  const meta = document.querySelector('meta[name="viewport"]');
  const content = meta ? meta.getAttribute('content') || '' : '';
  const viewport = {
    present: !!meta,
    content: content,
    device_width: content.includes('width=device-width'),
    initial_scale: content.includes('initial-scale'),
    scalable: !content.includes('user-scalable=no') && !content.includes('user-scalable=0')
  };

  let targets = 0, small = 0;
  document.querySelectorAll('a, button, input, select, textarea, [onclick], [role="button"]').forEach(el => {
    const r = el.getBoundingClientRect();
    if (r.width === 0 && r.height === 0) return;
    targets++;
    if (r.width < 44 || r.height < 44) small++;
  });

  let smallest = 0, legible = 0, texts = 0;
  document.querySelectorAll('p, span, a, li, td, th, div, h1, h2, h3, h4, h5, h6').forEach(el => {
    if (!el.textContent || !el.textContent.trim()) return;
    const size = parseFloat(getComputedStyle(el).fontSize);
    if (!size) return;
    texts++;
    if (size >= 12) legible++;
    if (smallest === 0 || size < smallest) smallest = size;
  });
  const base = parseFloat(getComputedStyle(document.body).fontSize) || 0;

  const images = Array.from(document.images);
  const responsive = images.filter(img => img.srcset || img.sizes || getComputedStyle(img).maxWidth === '100%').length;
  let mediaQueries = false;
  for (const sheet of Array.from(document.styleSheets)) {
    try {
      if (Array.from(sheet.cssRules).some(rule => rule.type === CSSRule.MEDIA_RULE)) { mediaQueries = true; break; }
    } catch (e) {}
  }

  return JSON.stringify({
    viewport: viewport,
    touch_targets: { total: targets, too_small: small },
    fonts: { base: base, smallest: smallest, legible: legible, total: texts },
    content: {
      viewport_width: window.innerWidth,
      document_width: document.documentElement.scrollWidth,
      horizontal_scroll: document.documentElement.scrollWidth > window.innerWidth,
      responsive_images: responsive,
      total_images: images.length,
      media_queries: mediaQueries
    }
  });
}`

// Viewport describes the viewport meta tag.
type Viewport struct {
	Present      bool   `json:"present"`
	Content      string `json:"content,omitempty"`
	DeviceWidth  bool   `json:"device_width"`
	InitialScale bool   `json:"initial_scale"`
	Scalable     bool   `json:"scalable"`
}

// Proper reports whether the viewport follows the page width of the device
// and sets an initial scale.
func (v Viewport) Proper() bool {
	return v.DeviceWidth && v.InitialScale
}

// TouchTargets counts visible interactive elements.
type TouchTargets struct {
	Total    int `json:"total"`
	TooSmall int `json:"too_small"`
}

// FontSizes summarizes computed text sizes in pixels.
type FontSizes struct {
	Base     float64 `json:"base"`
	Smallest float64 `json:"smallest"`
	Legible  int     `json:"legible"`
	Total    int     `json:"total"`
}

// LegiblePercent is the share of text elements at or above MinFontSize. A
// page without text is fully legible.
func (f FontSizes) LegiblePercent() float64 {
	if f.Total == 0 {
		return 100
	}
	return float64(f.Legible) / float64(f.Total) * 100
}

// ContentSizing describes how the layout fits the viewport.
type ContentSizing struct {
	ViewportWidth    int  `json:"viewport_width"`
	DocumentWidth    int  `json:"document_width"`
	HorizontalScroll bool `json:"horizontal_scroll"`
	ResponsiveImages int  `json:"responsive_images"`
	TotalImages      int  `json:"total_images"`
	MediaQueries     bool `json:"media_queries"`
}

// ImagesResponsive reports whether at least half the images scale with
// the layout.
func (c ContentSizing) ImagesResponsive() bool {
	return c.ResponsiveImages*2 >= c.TotalImages
}

// MobileData is what MobileScript measures.
type MobileData struct {
	Viewport     Viewport      `json:"viewport"`
	TouchTargets TouchTargets  `json:"touch_targets"`
	Fonts        FontSizes     `json:"fonts"`
	Content      ContentSizing `json:"content"`
}

// ParseMobile decodes the value MobileScript returns.
func ParseMobile(raw any) (MobileData, error) {
	var d MobileData
	if err := decodeScriptResult(raw, "mobile", &d); err != nil {
		return MobileData{}, err
	}
	return d, nil
}

// MobileIssue is one mobile usability problem.
type MobileIssue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// MobileResult is the mobile-friendliness analysis of one page.
type MobileResult struct {
	MobileData
	FitsViewport bool          `json:"fits_viewport"`
	Score        int           `json:"score"`
	Issues       []MobileIssue `json:"issues"`
}

// AnalyzeMobile lists the mobile issues in d. Each error costs 20 points,
// each warning 10.
func AnalyzeMobile(d MobileData) *MobileResult {
	res := &MobileResult{
		MobileData:   d,
		FitsViewport: !d.Content.HorizontalScroll,
		Issues:       []MobileIssue{},
	}
	add := func(category, severity, msg string) {
		res.Issues = append(res.Issues, MobileIssue{Category: category, Severity: severity, Message: msg})
	}

	switch {
	case !d.Viewport.Present:
		add("viewport", SeverityError, "Missing viewport meta tag")
	case !d.Viewport.Proper():
		add("viewport", SeverityWarning, "Viewport should set width=device-width and initial-scale")
	}
	if d.Viewport.Present && !d.Viewport.Scalable {
		add("viewport", SeverityError, "Viewport disables zooming")
	}
	if d.TouchTargets.TooSmall > 0 {
		add("touch_targets", SeverityWarning,
			fmt.Sprintf("%d touch targets are too small (<%dx%dpx)", d.TouchTargets.TooSmall, MinTouchTarget, MinTouchTarget))
	}
	if d.Fonts.Smallest > 0 && d.Fonts.Smallest < MinFontSize {
		add("fonts", SeverityWarning,
			fmt.Sprintf("Smallest font size is %gpx, below the %dpx minimum", d.Fonts.Smallest, MinFontSize))
	}
	if d.Content.HorizontalScroll {
		add("content", SeverityError,
			fmt.Sprintf("Content is %dpx wide in a %dpx viewport", d.Content.DocumentWidth, d.Content.ViewportWidth))
	}

	score := 100
	for _, issue := range res.Issues {
		switch issue.Severity {
		case SeverityError:
			score -= 20
		case SeverityWarning:
			score -= 10
		default:
			score -= 5
		}
	}
	res.Score = clamp(score)
	return res
}
