// Package wcag checks a parsed HTML document against a subset of the WCAG
// 2.1 success criteria.
//
// Rules work on the DOM produced by golang.org/x/net/html, not on a
// rendered page, so criteria that need computed styles (for example 1.4.3
// contrast) are out of reach here. Check runs every rule whose level is
// included by the requested conformance level and collects their
// violations.
//
//	doc, _ := html.Parse(strings.NewReader(page))
//	res := wcag.Check(doc, wcag.LevelAA)
//	for _, v := range res.Violations {
//	    fmt.Println(v.Rule, v.Severity, v.Message)
//	}
package wcag
