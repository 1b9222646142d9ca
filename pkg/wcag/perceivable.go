package wcag

import (
	"fmt"
	"strings"

	"github.com/entrhq/siteaudit/pkg/dom"
	"golang.org/x/net/html"
)

// 1.1.1: images, image map areas and image buttons need a text alternative.
// An empty alt marks an image as decorative and passes.
func checkNonTextContent(d *document, r Rule) []Violation {
	var out []Violation

	for _, img := range d.find("img") {
		if isHidden(img) || isPresentational(img) || hasAriaName(d, img) {
			continue
		}
		if !dom.HasAttr(img, "alt") {
			out = append(out, violation(r, SeveritySerious, img,
				fmt.Sprintf("Image has no alt attribute (src=%q)", truncate(dom.Attr(img, "src"), 80)),
				`Add alt text describing the image, or alt="" if it is decorative.`))
		}
	}

	for _, area := range d.find("area") {
		if !dom.HasAttr(area, "href") || hasAriaName(d, area) {
			continue
		}
		if strings.TrimSpace(dom.Attr(area, "alt")) == "" {
			out = append(out, violation(r, SeveritySerious, area,
				"Image map area has no alt text",
				"Add an alt attribute naming the link destination."))
		}
	}

	for _, in := range d.find("input") {
		if !strings.EqualFold(dom.Attr(in, "type"), "image") || hasAriaName(d, in) {
			continue
		}
		if strings.TrimSpace(dom.Attr(in, "alt")) == "" {
			out = append(out, violation(r, SeveritySerious, in,
				"Image button has no alt text",
				"Add an alt attribute describing the button action."))
		}
	}

	return out
}

// 1.3.1: structure conveyed visually must be in the markup.
func checkInfoAndRelationships(d *document, r Rule) []Violation {
	var out []Violation

	for _, table := range d.find("table") {
		if isPresentational(table) || isHidden(table) || !isDataTable(table) {
			continue
		}
		if len(dom.FindAll(table, "th")) == 0 {
			out = append(out, violation(r, SeveritySerious, table,
				"Data table has no header cells",
				"Mark header cells with <th> and a scope attribute."))
		}
	}

	for _, list := range d.find("ul", "ol") {
		if isPresentational(list) {
			continue
		}
		if bad := firstChildNotIn(list, "li", "script", "template"); bad != nil {
			out = append(out, violation(r, SeverityModerate, bad,
				fmt.Sprintf("<%s> directly inside <%s>; lists may only contain <li>", bad.Data, list.Data),
				"Wrap list content in <li> elements."))
		}
	}

	for _, list := range d.find("dl") {
		if bad := firstChildNotIn(list, "dt", "dd", "div", "script", "template"); bad != nil {
			out = append(out, violation(r, SeverityModerate, bad,
				fmt.Sprintf("<%s> directly inside <dl>", bad.Data),
				"Definition lists may only contain <dt>, <dd> or <div> groups."))
		}
	}

	return out
}

// isDataTable treats tables with at least two rows and two columns as
// tabular data; smaller tables are almost always layout.
func isDataTable(table *html.Node) bool {
	rows := dom.FindAll(table, "tr")
	if len(rows) < 2 {
		return false
	}
	for _, row := range rows {
		if len(dom.FindAll(row, "td", "th")) >= 2 {
			return true
		}
	}
	return false
}

func firstChildNotIn(n *html.Node, allowed ...string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		ok := false
		for _, a := range allowed {
			if c.Data == a {
				ok = true
				break
			}
		}
		if !ok {
			return c
		}
	}
	return nil
}

func hasAriaName(d *document, n *html.Node) bool {
	return strings.TrimSpace(dom.Attr(n, "aria-label")) != "" || d.labelledByText(n) != ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
