// Package dom holds small helpers over golang.org/x/net/html trees shared by
// the rule engine and the analyzers.
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses a serialized document.
func Parse(rawHTML string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Walk visits n and its descendants depth-first in document order. If fn
// returns false the node's children are skipped.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Elements returns every element node under n in document order.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FindAll returns the elements under n whose tag is one of tags.
func FindAll(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && isOneOf(c.Data, tags) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// First returns the first element under n with the given tag, or nil.
func First(n *html.Node, tag string) *html.Node {
	var found *html.Node
	Walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c.Type == html.ElementNode && c.Data == tag {
			found = c
			return false
		}
		return true
	})
	return found
}

// Attr returns the value of attribute key, or "" if absent.
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// LookupAttr returns the attribute value and whether it is present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether attribute key is present, whatever its value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := LookupAttr(n, key)
	return ok
}

// Text returns the whitespace-collapsed text under n, skipping script and
// style content.
func Text(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && isSkippedElement(c.Data) {
			return false
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// Title returns the trimmed text of the document's first <title>.
func Title(doc *html.Node) string {
	t := First(doc, "title")
	if t == nil {
		return ""
	}
	return Text(t)
}

// Meta returns the content of the first <meta> whose name or property
// attribute equals key (case-insensitive).
func Meta(doc *html.Node, key string) (string, bool) {
	for _, m := range FindAll(doc, "meta") {
		name := Attr(m, "name")
		if name == "" {
			name = Attr(m, "property")
		}
		if strings.EqualFold(name, key) {
			return strings.TrimSpace(Attr(m, "content")), true
		}
	}
	return "", false
}

// Selector returns a short CSS-like path to n, anchored at the nearest
// ancestor with an id.
func Selector(n *html.Node) string {
	var parts []string
	for c := n; c != nil && c.Type == html.ElementNode; c = c.Parent {
		part := c.Data
		if id := Attr(c, "id"); id != "" {
			parts = append(parts, part+"#"+id)
			break
		}
		if classes := strings.Fields(Attr(c, "class")); len(classes) > 0 {
			part += "." + strings.Join(classes[:min(len(classes), 2)], ".")
		} else if i, total := siblingIndex(c); total > 1 {
			part += fmt.Sprintf(":nth-of-type(%d)", i)
		}
		parts = append(parts, part)
		if len(parts) == 4 || c.Data == "body" {
			break
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// siblingIndex returns n's 1-based position among same-tag siblings and the
// number of such siblings.
func siblingIndex(n *html.Node) (int, int) {
	if n.Parent == nil {
		return 1, 1
	}
	idx, total := 0, 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == n.Data {
			total++
			if c == n {
				idx = total
			}
		}
	}
	return idx, total
}

// isSkippedElement returns true for elements whose content is never text
func isSkippedElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

func isOneOf(tag string, tags []string) bool {
	for _, t := range tags {
		if tag == t {
			return true
		}
	}
	return false
}
