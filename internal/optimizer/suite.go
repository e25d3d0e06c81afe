package optimizer

import (
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
)

// Analyzer inspects and rewrites emitted code for one concern. Analyze is
// pure and returns findings in source order; Optimize passes code through
// unchanged unless its precondition matches, and is idempotent.
type Analyzer interface {
	Kind() Kind
	Analyze(code string, fw framework.Framework) []Suggestion
	Optimize(code string, fw framework.Framework) string
}

var (
	_ Analyzer = (*Performance)(nil)
	_ Analyzer = (*Accessibility)(nil)
	_ Analyzer = (*BundleSize)(nil)
)

// Suite runs a fixed, ordered set of analyzers.
type Suite struct {
	analyzers []Analyzer
}

// NewSuite builds the analyzers selected by opt, in the order performance,
// accessibility, bundle size.
func NewSuite(caps *framework.Capabilities, opt genctx.Optimization) *Suite {
	if caps == nil {
		caps = framework.Defaults()
	}
	s := &Suite{}
	if opt.Performance {
		s.analyzers = append(s.analyzers, NewPerformance())
	}
	if opt.Accessibility {
		s.analyzers = append(s.analyzers, NewAccessibility(caps))
	}
	if opt.BundleSize {
		s.analyzers = append(s.analyzers, NewBundleSize(caps))
	}
	return s
}

// All builds a suite with every analyzer enabled.
func All(caps *framework.Capabilities) *Suite {
	return NewSuite(caps, genctx.Optimization{Performance: true, Accessibility: true, BundleSize: true})
}

// Analyzers returns the analyzers in run order.
func (s *Suite) Analyzers() []Analyzer {
	return append([]Analyzer(nil), s.analyzers...)
}

// Empty reports whether no analyzer is enabled.
func (s *Suite) Empty() bool { return len(s.analyzers) == 0 }

// Analyze collects every analyzer's suggestions, analyzer by analyzer.
func (s *Suite) Analyze(code string, fw framework.Framework) []Suggestion {
	out := make([]Suggestion, 0)
	for _, a := range s.analyzers {
		out = append(out, a.Analyze(code, fw)...)
	}
	return out
}

// Optimize applies every analyzer's rewrite in order.
func (s *Suite) Optimize(code string, fw framework.Framework) string {
	for _, a := range s.analyzers {
		code = a.Optimize(code, fw)
	}
	return code
}
