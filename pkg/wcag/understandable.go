package wcag

import (
	"fmt"
	"strings"

	"github.com/entrhq/siteaudit/pkg/dom"
	"golang.org/x/net/html"
)

// 3.1.1: the default human language of the page is declared.
func checkLanguageOfPage(d *document, r Rule) []Violation {
	root := d.find("html")
	if len(root) == 0 {
		return []Violation{violation(r, SeveritySerious, nil,
			"Document has no <html> element",
			`Add <html lang="en"> (or the page's language).`)}
	}
	lang, ok := dom.LookupAttr(root[0], "lang")
	switch {
	case !ok:
		return []Violation{violation(r, SeveritySerious, root[0],
			"<html> element has no lang attribute",
			`Add a lang attribute such as lang="en".`)}
	case strings.TrimSpace(lang) == "":
		return []Violation{violation(r, SeveritySerious, root[0],
			"<html> lang attribute is empty",
			`Set lang to a BCP 47 tag such as "en" or "fr-CA".`)}
	}
	return nil
}

var unlabelledInputTypes = map[string]bool{
	"hidden": true, "submit": true, "reset": true, "button": true, "image": true,
}

// 3.3.2: form controls have labels or instructions.
func checkLabelsOrInstructions(d *document, r Rule) []Violation {
	var out []Violation

	for _, n := range d.find("input", "select", "textarea") {
		if n.Data == "input" && unlabelledInputTypes[strings.ToLower(dom.Attr(n, "type"))] {
			continue
		}
		if isHidden(n) || d.hasLabel(n) {
			continue
		}

		if strings.TrimSpace(dom.Attr(n, "placeholder")) != "" {
			out = append(out, violation(r, SeverityModerate, n,
				fmt.Sprintf("<%s> is labelled only by its placeholder", n.Data),
				"Add a visible <label>; placeholders disappear while typing."))
			continue
		}
		out = append(out, violation(r, SeverityCritical, n,
			fmt.Sprintf("<%s> has no label", n.Data),
			`Associate a <label for="..."> or add aria-label.`))
	}

	return out
}

// hasLabel reports whether a form control has a programmatic label.
func (d *document) hasLabel(n *html.Node) bool {
	if id := dom.Attr(n, "id"); id != "" && d.labelFor[id] {
		return true
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "label" {
			return true
		}
	}
	return hasAriaName(d, n) || strings.TrimSpace(dom.Attr(n, "title")) != ""
}
