// Package optimizer holds the advisory analyzers that run over emitted
// code. They work on text, not on the tree: each analyzer reports
// suggestions and can apply a best-effort, idempotent rewrite.
package optimizer

import "strings"

// Kind names the analyzer a suggestion came from.
type Kind string

const (
	KindPerformance   Kind = "performance"
	KindAccessibility Kind = "accessibility"
	KindBundleSize    Kind = "bundle-size"
)

// Severity ranks a suggestion.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from low (0) to critical (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return 0
}

// Suggestion is one advisory finding.
type Suggestion struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
	Line     int      `json:"line,omitempty"`
}

// lineAt returns the 1-based line of offset in code.
func lineAt(code string, offset int) int {
	if offset > len(code) {
		offset = len(code)
	}
	return strings.Count(code[:offset], "\n") + 1
}
