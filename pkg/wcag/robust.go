package wcag

import (
	"strings"

	"github.com/entrhq/siteaudit/pkg/dom"
)

// 4.1.2: buttons expose an accessible name.
func checkNameRoleValue(d *document, r Rule) []Violation {
	var out []Violation

	for _, b := range d.find("button") {
		if isHidden(b) || d.accessibleName(b) != "" {
			continue
		}
		out = append(out, violation(r, SeveritySerious, b,
			"Button has no accessible name",
			"Give the button text, or an aria-label when it only holds an icon."))
	}

	for _, in := range d.find("input") {
		if !strings.EqualFold(dom.Attr(in, "type"), "button") || isHidden(in) {
			continue
		}
		if strings.TrimSpace(dom.Attr(in, "value")) == "" && !hasAriaName(d, in) && dom.Attr(in, "title") == "" {
			out = append(out, violation(r, SeveritySerious, in,
				`<input type="button"> has no value`,
				"Set value to the button label."))
		}
	}

	for _, n := range d.withRole("button") {
		if n.Data == "button" || n.Data == "input" || isHidden(n) {
			continue
		}
		if d.accessibleName(n) == "" {
			out = append(out, violation(r, SeveritySerious, n,
				`Element with role="button" has no accessible name`,
				"Give the element text or an aria-label."))
		}
	}

	return out
}
