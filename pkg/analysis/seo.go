package analysis

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/siteaudit/pkg/dom"
	"golang.org/x/net/html"
)

const (
	titleMin       = 30
	titleMax       = 60
	descriptionMin = 120
	descriptionMax = 160
)

// SEOIssue is one search-engine metadata finding.
type SEOIssue struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion,omitempty"`
}

// SEOResult is the search-engine metadata of one page.
type SEOResult struct {
	Title          string            `json:"title,omitempty"`
	Description    string            `json:"description,omitempty"`
	Canonical      string            `json:"canonical,omitempty"`
	Robots         string            `json:"robots,omitempty"`
	Viewport       string            `json:"viewport,omitempty"`
	Lang           string            `json:"lang,omitempty"`
	Indexable      bool              `json:"indexable"`
	HTTPS          bool              `json:"https"`
	H1Count        int               `json:"h1_count"`
	OpenGraph      map[string]string `json:"open_graph,omitempty"`
	TwitterCard    string            `json:"twitter_card,omitempty"`
	StructuredData []string          `json:"structured_data,omitempty"`
	Issues         []SEOIssue        `json:"issues"`
	Score          int               `json:"score"`
}

var openGraphKeys = []string{"og:title", "og:description", "og:image", "og:url", "og:type"}

// AnalyzeSEO inspects doc, loaded from pageURL, for search-engine metadata.
func AnalyzeSEO(doc *html.Node, pageURL string) *SEOResult {
	res := &SEOResult{
		Title:     dom.Title(doc),
		OpenGraph: make(map[string]string),
		Issues:    []SEOIssue{},
		Indexable: true,
	}

	res.Description, _ = dom.Meta(doc, "description")
	res.Robots, _ = dom.Meta(doc, "robots")
	res.Viewport, _ = dom.Meta(doc, "viewport")
	res.TwitterCard, _ = dom.Meta(doc, "twitter:card")
	for _, key := range openGraphKeys {
		if v, ok := dom.Meta(doc, key); ok && v != "" {
			res.OpenGraph[key] = v
		}
	}
	for _, link := range dom.FindAll(doc, "link") {
		if strings.EqualFold(dom.Attr(link, "rel"), "canonical") {
			res.Canonical = strings.TrimSpace(dom.Attr(link, "href"))
			break
		}
	}
	if root := dom.First(doc, "html"); root != nil {
		res.Lang = strings.TrimSpace(dom.Attr(root, "lang"))
	}
	if u, err := url.Parse(pageURL); err == nil {
		res.HTTPS = u.Scheme == "https"
	}
	res.H1Count = len(dom.FindAll(doc, "h1"))
	if strings.Contains(strings.ToLower(res.Robots), "noindex") {
		res.Indexable = false
	}

	var ldIssues []SEOIssue
	res.StructuredData, ldIssues = structuredData(doc)

	res.Issues = append(res.Issues, res.metaIssues()...)
	res.Issues = append(res.Issues, ldIssues...)
	res.Score = res.score()
	return res
}

func (r *SEOResult) metaIssues() []SEOIssue {
	var out []SEOIssue
	add := func(field, sev, msg, fix string) {
		out = append(out, SEOIssue{Field: field, Severity: sev, Message: msg, Suggestion: fix})
	}

	switch n := utf8.RuneCountInString(r.Title); {
	case n == 0:
		add("title", SeverityError, "Missing page title", "Add a <title> tag to the page")
	case n < titleMin:
		add("title", SeverityWarning,
			fmt.Sprintf("Title is too short (%d chars, recommended: %d-%d)", n, titleMin, titleMax),
			fmt.Sprintf("Expand the title to %d-%d characters", titleMin, titleMax))
	case n > titleMax:
		add("title", SeverityWarning,
			fmt.Sprintf("Title is too long (%d chars, recommended: %d-%d)", n, titleMin, titleMax),
			fmt.Sprintf("Shorten the title to under %d characters", titleMax))
	}

	switch n := utf8.RuneCountInString(r.Description); {
	case n == 0:
		add("description", SeverityError, "Missing meta description", "Add a meta description tag")
	case n < descriptionMin:
		add("description", SeverityWarning,
			fmt.Sprintf("Description is too short (%d chars, recommended: %d-%d)", n, descriptionMin, descriptionMax),
			fmt.Sprintf("Expand the description to %d-%d characters", descriptionMin, descriptionMax))
	case n > descriptionMax:
		add("description", SeverityWarning,
			fmt.Sprintf("Description is too long (%d chars, recommended: %d-%d)", n, descriptionMin, descriptionMax),
			fmt.Sprintf("Shorten the description to under %d characters", descriptionMax))
	}

	if r.Viewport == "" {
		add("viewport", SeverityError, "Missing viewport meta tag",
			`Add <meta name="viewport" content="width=device-width, initial-scale=1">`)
	}
	if r.Lang == "" {
		add("lang", SeverityWarning, "Missing lang attribute on <html> element", `Add lang attribute: <html lang="en">`)
	}
	if r.Canonical == "" {
		add("canonical", SeverityInfo, "Missing canonical URL", `Add <link rel="canonical" href="...">`)
	}
	if !r.Indexable {
		add("robots", SeverityWarning, "Page is excluded from search indexes (noindex)",
			"Remove noindex from the robots meta tag if the page should be found")
	}
	return out
}

func (r *SEOResult) score() int {
	score := 100
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			score -= 10
		case SeverityWarning:
			score -= 5
		default:
			score -= 2
		}
	}

	switch {
	case r.H1Count == 0:
		score -= 15
	case r.H1Count > 1:
		score -= 5
	}
	if len(r.OpenGraph) == 0 {
		score -= 5
	}
	if r.TwitterCard == "" {
		score -= 5
	}
	if !r.HTTPS {
		score -= 10
	}
	if r.Canonical == "" {
		score -= 5
	}
	if r.Lang == "" {
		score -= 3
	}
	return clamp(score)
}

// structuredData returns the @type of every JSON-LD block, with an issue per
// block that does not decode.
func structuredData(doc *html.Node) ([]string, []SEOIssue) {
	var types []string
	var issues []SEOIssue

	for _, s := range dom.FindAll(doc, "script") {
		if !strings.EqualFold(strings.TrimSpace(dom.Attr(s, "type")), "application/ld+json") || s.FirstChild == nil {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(s.FirstChild.Data), &v); err != nil {
			issues = append(issues, SEOIssue{
				Field:      "structured_data",
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("JSON-LD block does not parse: %v", err),
				Suggestion: "Validate the block with a structured data testing tool",
			})
			continue
		}
		types = append(types, ldTypes(v)...)
	}
	return types, issues
}

func ldTypes(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = append(out, ldTypes(item)...)
		}
	case map[string]any:
		switch typ := t["@type"].(type) {
		case string:
			out = append(out, typ)
		case []any:
			for _, s := range typ {
				if str, ok := s.(string); ok {
					out = append(out, str)
				}
			}
		}
		if graph, ok := t["@graph"]; ok {
			out = append(out, ldTypes(graph)...)
		}
	}
	return out
}
