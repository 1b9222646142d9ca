package wcag

import (
	"strings"

	"github.com/entrhq/siteaudit/pkg/dom"
	"golang.org/x/net/html"
)

const understandingBase = "https://www.w3.org/WAI/WCAG21/Understanding/"

// checker produces the violations of one rule.
type checker struct {
	rule  Rule
	check func(d *document, r Rule) []Violation
}

// registry lists every DOM rule in criterion order.
var registry = []checker{
	{NonTextContent, checkNonTextContent},
	{InfoAndRelationships, checkInfoAndRelationships},
	{Keyboard, checkKeyboard},
	{BypassBlocks, checkBypassBlocks},
	{PageTitled, checkPageTitled},
	{LinkPurpose, checkLinkPurpose},
	{HeadingsAndLabels, checkHeadingsAndLabels},
	{SectionHeadings, checkSectionHeadings},
	{LanguageOfPage, checkLanguageOfPage},
	{LabelsOrInstructions, checkLabelsOrInstructions},
	{NameRoleValue, checkNameRoleValue},
}

// Rules returns the metadata of every rule included at level.
func Rules(level Level) []Rule {
	var out []Rule
	for _, c := range registry {
		if level.Includes(c.rule.Level) {
			out = append(out, c.rule)
		}
	}
	return out
}

// Check runs every rule included at level against doc.
func Check(doc *html.Node, level Level) Results {
	d := newDocument(doc)
	res := Results{
		Level:        level,
		Violations:   []Violation{},
		NodesChecked: len(d.elements),
	}

	for _, c := range registry {
		if !level.Includes(c.rule.Level) {
			continue
		}
		res.RulesChecked++
		found := c.check(d, c.rule)
		if len(found) == 0 {
			res.Passes++
			continue
		}
		res.Violations = append(res.Violations, found...)
	}
	return res
}

// document is a parsed page with the lookups rules share.
type document struct {
	root     *html.Node
	elements []*html.Node
	byID     map[string]*html.Node
	labelFor map[string]bool
}

func newDocument(root *html.Node) *document {
	d := &document{
		root:     root,
		byID:     make(map[string]*html.Node),
		labelFor: make(map[string]bool),
	}
	d.elements = dom.Elements(root)
	for _, n := range d.elements {
		if id := dom.Attr(n, "id"); id != "" {
			if _, dup := d.byID[id]; !dup {
				d.byID[id] = n
			}
		}
		if n.Data == "label" {
			if f := dom.Attr(n, "for"); f != "" {
				d.labelFor[f] = true
			}
		}
	}
	return d
}

// find returns every element with one of tags, in document order.
func (d *document) find(tags ...string) []*html.Node {
	var out []*html.Node
	for _, n := range d.elements {
		for _, t := range tags {
			if n.Data == t {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// withRole returns every element whose role attribute is role.
func (d *document) withRole(role string) []*html.Node {
	var out []*html.Node
	for _, n := range d.elements {
		if roleOf(n) == role {
			out = append(out, n)
		}
	}
	return out
}

// labelledByText resolves an aria-labelledby id list to text.
func (d *document) labelledByText(n *html.Node) string {
	ids := strings.Fields(dom.Attr(n, "aria-labelledby"))
	var parts []string
	for _, id := range ids {
		if target, ok := d.byID[id]; ok {
			if t := dom.Text(target); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// accessibleName approximates the accessible name computation: aria-label,
// aria-labelledby, then content including image alt text, then title.
func (d *document) accessibleName(n *html.Node) string {
	if v := strings.TrimSpace(dom.Attr(n, "aria-label")); v != "" {
		return v
	}
	if v := d.labelledByText(n); v != "" {
		return v
	}
	if v := contentName(n); v != "" {
		return v
	}
	return strings.TrimSpace(dom.Attr(n, "title"))
}

// contentName is the text of n plus the alt text of images inside it.
func contentName(n *html.Node) string {
	parts := []string{dom.Text(n)}
	for _, img := range dom.FindAll(n, "img") {
		parts = append(parts, strings.TrimSpace(dom.Attr(img, "alt")))
	}
	for _, svg := range dom.FindAll(n, "svg") {
		parts = append(parts, strings.TrimSpace(dom.Attr(svg, "aria-label")))
		if t := dom.First(svg, "title"); t != nil {
			parts = append(parts, dom.Text(t))
		}
	}
	return strings.TrimSpace(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

func roleOf(n *html.Node) string {
	return strings.ToLower(strings.TrimSpace(dom.Attr(n, "role")))
}

func isHidden(n *html.Node) bool {
	for c := n; c != nil && c.Type == html.ElementNode; c = c.Parent {
		if strings.EqualFold(dom.Attr(c, "aria-hidden"), "true") || dom.HasAttr(c, "hidden") {
			return true
		}
	}
	return false
}

func isPresentational(n *html.Node) bool {
	r := roleOf(n)
	return r == "presentation" || r == "none"
}

func violation(r Rule, sev Severity, n *html.Node, msg, fix string) Violation {
	v := Violation{
		Rule:     r.ID,
		RuleName: r.Name,
		Level:    r.Level,
		Severity: sev,
		Message:  msg,
		Fix:      fix,
		HelpURL:  r.HelpURL,
	}
	if n != nil {
		v.Selector = dom.Selector(n)
	}
	return v
}
