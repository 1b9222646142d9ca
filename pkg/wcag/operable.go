package wcag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/entrhq/siteaudit/pkg/dom"
	"golang.org/x/net/html"
)

var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true, "textarea": true,
	"summary": true, "label": true, "option": true, "details": true,
	"body": true, "html": true,
}

// 2.1.1: everything operable by mouse must be operable by keyboard.
func checkKeyboard(d *document, r Rule) []Violation {
	var out []Violation

	for _, n := range d.elements {
		if v, ok := dom.LookupAttr(n, "tabindex"); ok {
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && i > 0 {
				out = append(out, violation(r, SeverityModerate, n,
					fmt.Sprintf("Positive tabindex (%d) overrides the natural focus order", i),
					`Use tabindex="0" and order the markup instead.`))
			}
		}

		if dom.HasAttr(n, "onclick") && !interactiveTags[n.Data] && roleOf(n) == "" && !dom.HasAttr(n, "tabindex") {
			out = append(out, violation(r, SeverityMinor, n,
				fmt.Sprintf("<%s> has a click handler but cannot receive keyboard focus", n.Data),
				`Use a <button>, or add role and tabindex="0" with a key handler.`))
		}
	}

	return out
}

// 2.4.1: a page needs a way to skip repeated blocks.
func checkBypassBlocks(d *document, r Rule) []Violation {
	var out []Violation

	hasMain := len(d.find("main")) > 0 || len(d.withRole("main")) > 0
	if !hasMain && !hasSkipLink(d) {
		out = append(out, violation(r, SeverityModerate, nil,
			"Page has no main landmark and no skip link",
			`Wrap the primary content in <main> or add a "Skip to content" link.`))
	}

	hasNav := len(d.find("nav")) > 0 || len(d.withRole("navigation")) > 0
	if !hasNav {
		out = append(out, violation(r, SeverityMinor, nil,
			"Page has no navigation landmark",
			"Wrap site navigation in <nav>."))
	}

	return out
}

func hasSkipLink(d *document) bool {
	for _, a := range d.find("a") {
		href := dom.Attr(a, "href")
		if strings.HasPrefix(href, "#") && len(href) > 1 &&
			strings.Contains(strings.ToLower(dom.Text(a)), "skip") {
			return true
		}
	}
	return false
}

// 2.4.2: the page has a descriptive title.
func checkPageTitled(d *document, r Rule) []Violation {
	titles := d.find("title")
	if len(titles) == 0 {
		return []Violation{violation(r, SeveritySerious, nil,
			"Page has no <title> element",
			"Add a <title> that describes the page.")}
	}
	if dom.Text(titles[0]) == "" {
		return []Violation{violation(r, SeveritySerious, titles[0],
			"Page title is empty",
			"Give the <title> descriptive text.")}
	}
	return nil
}

var genericLinkText = map[string]bool{
	"click here": true, "click": true, "here": true, "read more": true, "more": true,
	"learn more": true, "info": true, "information": true, "details": true,
	"link": true, "this link": true, "go": true, "continue": true, "download": true,
	"view": true, "see more": true, "see all": true, "read": true, "start": true,
	"begin": true, "next": true, "previous": true, "...": true, ">": true, ">>": true,
	"→": true,
}

// 2.4.4: each link's purpose can be told from its text.
func checkLinkPurpose(d *document, r Rule) []Violation {
	var out []Violation

	for _, a := range d.find("a") {
		if !dom.HasAttr(a, "href") || isHidden(a) {
			continue
		}
		name := d.accessibleName(a)
		if name == "" {
			out = append(out, violation(r, SeveritySerious, a,
				fmt.Sprintf("Link has no accessible name (href=%q)", truncate(dom.Attr(a, "href"), 80)),
				"Give the link visible text, or an aria-label when it only holds an icon."))
			continue
		}
		if genericLinkText[strings.ToLower(name)] {
			out = append(out, violation(r, SeverityModerate, a,
				fmt.Sprintf("Link has generic text: %q", name),
				"Describe the destination, for example \"Read the pricing guide\"."))
		}
	}

	return out
}

// 2.4.6: headings describe topic or purpose and form an outline.
func checkHeadingsAndLabels(d *document, r Rule) []Violation {
	var out []Violation

	headings := d.headings()
	if len(headings) == 0 {
		return []Violation{violation(r, SeverityModerate, nil,
			"Page has no headings",
			"Structure the content with <h1>-<h6> headings.")}
	}

	h1s := 0
	prev := 0
	for _, h := range headings {
		if h.level == 1 {
			h1s++
		}
		if d.accessibleName(h.node) == "" {
			out = append(out, violation(r, SeveritySerious, h.node,
				fmt.Sprintf("Heading level %d is empty", h.level),
				"Remove the empty heading or give it text."))
		}
		if prev > 0 && h.level > prev+1 {
			out = append(out, violation(r, SeverityModerate, h.node,
				fmt.Sprintf("Heading level skips from h%d to h%d", prev, h.level),
				fmt.Sprintf("Use h%d here, or restructure the outline.", prev+1)))
		}
		prev = h.level
	}

	if h1s > 1 {
		out = append(out, violation(r, SeverityMinor, nil,
			fmt.Sprintf("Page has %d <h1> elements", h1s),
			"Use a single <h1> for the page topic."))
	}

	return out
}

// 2.4.10: sections of content are introduced by headings.
func checkSectionHeadings(d *document, r Rule) []Violation {
	var out []Violation

	for _, s := range d.find("section", "article") {
		if isHidden(s) {
			continue
		}
		found := false
		dom.Walk(s, func(n *html.Node) bool {
			if found {
				return false
			}
			if n != s && n.Type == html.ElementNode && (headingLevel(n) > 0 || roleOf(n) == "heading") {
				found = true
			}
			return true
		})
		if !found {
			out = append(out, violation(r, SeverityMinor, s,
				fmt.Sprintf("<%s> has no heading", s.Data),
				"Start each section with a heading."))
		}
	}

	return out
}

type heading struct {
	node  *html.Node
	level int
}

// headings returns h1-h6 and role=heading elements in document order.
func (d *document) headings() []heading {
	var out []heading
	for _, n := range d.elements {
		if isHidden(n) {
			continue
		}
		if lvl := headingLevel(n); lvl > 0 {
			out = append(out, heading{node: n, level: lvl})
			continue
		}
		if roleOf(n) == "heading" {
			lvl, err := strconv.Atoi(dom.Attr(n, "aria-level"))
			if err != nil || lvl < 1 {
				lvl = 2
			}
			out = append(out, heading{node: n, level: lvl})
		}
	}
	return out
}

func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}
