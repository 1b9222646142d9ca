package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Page weight limits in bytes.
const (
	HeavyPageBytes     = 3_000_000
	VeryHeavyPageBytes = 5_000_000
)

// ResourceScript is evaluated in the page after load. It returns every
// resource timing entry as a JSON string.
const ResourceScript = `() => JSON.stringify(performance.getEntriesByType('resource').map(r => ({
  name: r.name,
  type: r.initiatorType,
  transfer_size: r.transferSize || 0,
  decoded_size: r.decodedBodySize || 0
})))`

// Resource is one resource timing entry.
type Resource struct {
	URL          string `json:"name"`
	Initiator    string `json:"type"`
	TransferSize int64  `json:"transfer_size"`
	DecodedSize  int64  `json:"decoded_size"`
}

// ParseResources decodes the value ResourceScript returns.
func ParseResources(raw any) ([]Resource, error) {
	var rs []Resource
	if err := decodeScriptResult(raw, "resource", &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Resource categories.
const (
	CategoryHTML  = "html"
	CategoryCSS   = "css"
	CategoryJS    = "js"
	CategoryImage = "image"
	CategoryFont  = "font"
	CategoryMedia = "media"
	CategoryOther = "other"
)

// ResourceStats totals one category.
type ResourceStats struct {
	Count         int    `json:"count"`
	Bytes         int64  `json:"bytes"`
	TransferBytes int64  `json:"transfer_bytes"`
	LargestBytes  int64  `json:"largest_bytes"`
	LargestURL    string `json:"largest_url,omitempty"`
}

func (s *ResourceStats) add(r Resource) {
	s.Count++
	s.Bytes += r.DecodedSize
	s.TransferBytes += r.TransferSize
	if r.DecodedSize > s.LargestBytes {
		s.LargestBytes = r.DecodedSize
		s.LargestURL = truncateURL(r.URL)
	}
}

// ContentWeight is the resource size breakdown of one page.
type ContentWeight struct {
	TotalBytes      int64                    `json:"total_bytes"`
	TransferBytes   int64                    `json:"transfer_bytes"`
	ResourceCount   int                      `json:"resource_count"`
	Breakdown       map[string]ResourceStats `json:"breakdown"`
	Recommendations []string                 `json:"recommendations"`
}

// Category returns the totals for one category, zero when it has no
// resources.
func (w *ContentWeight) Category(name string) ResourceStats {
	return w.Breakdown[name]
}

// CompressionRatio is transferred over decoded bytes, 1 for an empty page.
func (w *ContentWeight) CompressionRatio() float64 {
	if w.TotalBytes == 0 {
		return 1
	}
	return float64(w.TransferBytes) / float64(w.TotalBytes)
}

// IsHeavy reports whether the page exceeds HeavyPageBytes.
func (w *ContentWeight) IsHeavy() bool {
	return w.TotalBytes > HeavyPageBytes
}

// AnalyzeContentWeight groups resources by category and recommends fixes
// for oversized pages.
func AnalyzeContentWeight(resources []Resource) *ContentWeight {
	w := &ContentWeight{
		ResourceCount:   len(resources),
		Breakdown:       make(map[string]ResourceStats),
		Recommendations: []string{},
	}
	for _, r := range resources {
		cat := Categorize(r.URL, r.Initiator)
		stats := w.Breakdown[cat]
		stats.add(r)
		w.Breakdown[cat] = stats
		w.TotalBytes += r.DecodedSize
		w.TransferBytes += r.TransferSize
	}
	w.Recommendations = w.recommend()
	return w
}

func (w *ContentWeight) recommend() []string {
	out := []string{}
	switch {
	case w.TotalBytes > VeryHeavyPageBytes:
		out = append(out, fmt.Sprintf("Page weight of %s exceeds 5MB; reduce it for mobile users", FormatBytes(w.TotalBytes)))
	case w.TotalBytes > HeavyPageBytes:
		out = append(out, fmt.Sprintf("Page weight of %s is heavy; aim for under 3MB", FormatBytes(w.TotalBytes)))
	}
	if w.TotalBytes > 0 && w.CompressionRatio() > 0.8 {
		out = append(out, "Enable gzip or brotli compression for text resources")
	}

	js, css, images, fonts := w.Category(CategoryJS), w.Category(CategoryCSS), w.Category(CategoryImage), w.Category(CategoryFont)
	if js.Bytes > 1_000_000 {
		out = append(out, fmt.Sprintf("JavaScript totals %s; split bundles and remove unused code", FormatBytes(js.Bytes)))
	}
	if images.Bytes > 2_000_000 {
		out = append(out, fmt.Sprintf("Images total %s; serve WebP or AVIF and lazy-load below the fold", FormatBytes(images.Bytes)))
	}
	if css.Bytes > 500_000 {
		out = append(out, fmt.Sprintf("CSS totals %s; remove unused rules", FormatBytes(css.Bytes)))
	}
	if fonts.Count > 3 {
		out = append(out, fmt.Sprintf("%d font files loaded; limit font families and weights", fonts.Count))
	}
	if js.Count+css.Count > 20 {
		out = append(out, fmt.Sprintf("%d script and stylesheet requests; bundle them", js.Count+css.Count))
	}
	return out
}

// Categories returns the categories present, sorted by decoded size
// descending.
func (w *ContentWeight) Categories() []string {
	names := make([]string, 0, len(w.Breakdown))
	for name := range w.Breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := w.Breakdown[names[i]], w.Breakdown[names[j]]
		if a.Bytes != b.Bytes {
			return a.Bytes > b.Bytes
		}
		return names[i] < names[j]
	})
	return names
}

// Categorize assigns a resource to a category from its URL extension,
// falling back to the initiator type.
func Categorize(rawURL, initiator string) string {
	u := strings.ToLower(rawURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	hasExt := func(exts ...string) bool {
		for _, e := range exts {
			if strings.HasSuffix(u, e) {
				return true
			}
		}
		return false
	}

	// Fonts and images fetched by a stylesheet carry the "css" initiator, so
	// the extension is checked first
	switch {
	case hasExt(".css"):
		return CategoryCSS
	case hasExt(".js", ".mjs"):
		return CategoryJS
	case hasExt(".html", ".htm"):
		return CategoryHTML
	case hasExt(".woff", ".woff2", ".ttf", ".otf", ".eot"):
		return CategoryFont
	case hasExt(".png", ".jpg", ".jpeg", ".gif", ".webp", ".avif", ".svg", ".ico"):
		return CategoryImage
	case hasExt(".mp4", ".webm", ".mp3", ".wav"):
		return CategoryMedia
	}
	switch initiator {
	case "css":
		return CategoryCSS
	case "script":
		return CategoryJS
	case "img":
		return CategoryImage
	}
	return CategoryOther
}

// FormatBytes renders n in decimal units such as "3.2 MB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func truncateURL(u string) string {
	if len(u) <= 80 {
		return u
	}
	return u[:77] + "..."
}
