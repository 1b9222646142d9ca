package audit

import (
	"strings"

	"github.com/entrhq/siteaudit/pkg/wcag"
)

// rulePenalties are deducted once when a page violates the rule at all, on
// top of the per-violation deductions.
var rulePenalties = []struct {
	rule    string
	penalty float64
}{
	{wcag.NonTextContent.ID, 3},
	{wcag.NameRoleValue.ID, 5},
	{wcag.HeadingsAndLabels.ID, 20},
	{wcag.ContrastMinimum.ID, 5},
	{wcag.LanguageOfPage.ID, 10},
}

// Score computes the 0-100 accessibility score: 2.5 points per error, 1 per
// warning, then the rule penalties.
func Score(res wcag.Results) float64 {
	score := 100.0

	var errs, warnings int
	for _, v := range res.Violations {
		switch {
		case v.Severity.IsError():
			errs++
		case v.Severity == wcag.SeverityModerate:
			warnings++
		}
	}
	score -= float64(errs) * 2.5
	score -= float64(warnings)

	byRule := res.ByRule()
	for _, p := range rulePenalties {
		if len(byRule[p.rule]) > 0 {
			score -= p.penalty
		}
	}

	return max(0, min(100, score))
}

// Grade maps a score to a letter.
func Grade(score float64) string {
	switch s := int(score); {
	case s >= 90:
		return "A"
	case s >= 80:
		return "B"
	case s >= 70:
		return "C"
	case s >= 60:
		return "D"
	default:
		return "F"
	}
}

// Certificate maps a score to a certification tier.
func Certificate(score float64) string {
	switch s := int(score); {
	case s >= 95:
		return "PLATINUM"
	case s >= 85:
		return "GOLD"
	case s >= 75:
		return "SILVER"
	case s >= 65:
		return "BRONZE"
	default:
		return "NEEDS_IMPROVEMENT"
	}
}

// Principles counts violations by WCAG principle.
type Principles struct {
	Perceivable    int `json:"perceivable"`
	Operable       int `json:"operable"`
	Understandable int `json:"understandable"`
	Robust         int `json:"robust"`
}

// Statistics counts violations by weight and principle. Errors are critical
// and serious violations, warnings moderate, notices minor.
type Statistics struct {
	Total       int        `json:"total"`
	Errors      int        `json:"errors"`
	Warnings    int        `json:"warnings"`
	Notices     int        `json:"notices"`
	ByPrinciple Principles `json:"by_principle"`
}

// ComputeStatistics tallies res.
func ComputeStatistics(res wcag.Results) Statistics {
	st := Statistics{Total: len(res.Violations)}
	for _, v := range res.Violations {
		switch {
		case v.Severity.IsError():
			st.Errors++
		case v.Severity == wcag.SeverityModerate:
			st.Warnings++
		default:
			st.Notices++
		}

		switch {
		case strings.HasPrefix(v.Rule, "1."):
			st.ByPrinciple.Perceivable++
		case strings.HasPrefix(v.Rule, "2."):
			st.ByPrinciple.Operable++
		case strings.HasPrefix(v.Rule, "3."):
			st.ByPrinciple.Understandable++
		case strings.HasPrefix(v.Rule, "4."):
			st.ByPrinciple.Robust++
		}
	}
	return st
}
