package wcag

import (
	"fmt"
	"strings"
)

// Level is a WCAG conformance level.
type Level int

const (
	LevelA Level = iota + 1
	LevelAA
	LevelAAA
)

// ParseLevel accepts a, aa or aaa in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return LevelA, nil
	case "AA", "":
		return LevelAA, nil
	case "AAA":
		return LevelAAA, nil
	default:
		return 0, fmt.Errorf("unknown WCAG level %q (want A, AA or AAA)", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelA:
		return "A"
	case LevelAA:
		return "AA"
	case LevelAAA:
		return "AAA"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Includes reports whether conforming at l requires criteria at other.
func (l Level) Includes(other Level) bool {
	return other >= LevelA && other <= l
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Severity ranks the user impact of a violation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// IsError reports whether the severity counts as an error rather than a
// warning or notice.
func (s Severity) IsError() bool {
	return s == SeverityCritical || s == SeveritySerious
}

// Rule describes one success criterion.
type Rule struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Level    Level    `json:"level"`
	Severity Severity `json:"severity"`
	HelpURL  string   `json:"help_url"`
}

// Violation is one failure of a rule on one element.
type Violation struct {
	Rule     string   `json:"rule"`
	RuleName string   `json:"rule_name"`
	Level    Level    `json:"level"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Selector string   `json:"selector,omitempty"`
	Fix      string   `json:"fix,omitempty"`
	HelpURL  string   `json:"help_url,omitempty"`
}

// Results aggregates one Check run.
type Results struct {
	Level        Level       `json:"level"`
	Violations   []Violation `json:"violations"`
	Passes       int         `json:"passes"`
	RulesChecked int         `json:"rules_checked"`
	NodesChecked int         `json:"nodes_checked"`
}

// CountBySeverity returns how many violations have severity s.
func (r Results) CountBySeverity(s Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}

// HasCritical reports whether any violation is critical.
func (r Results) HasCritical() bool {
	return r.CountBySeverity(SeverityCritical) > 0
}

// ByRule groups violations by rule ID.
func (r Results) ByRule() map[string][]Violation {
	out := make(map[string][]Violation)
	for _, v := range r.Violations {
		out[v.Rule] = append(out[v.Rule], v)
	}
	return out
}
