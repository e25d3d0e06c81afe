package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
)

const panel = `import motion from "framer-motion";
import { AnimatePresence } from "framer-motion";

export default function Panel({ open }) {
  return (
    <AnimatePresence>
      {open && <motion.div animate={{ width: "50%", duration: 3 }} whileHover={{ scale: 1.1 }} />}
    </AnimatePresence>
  );
}
`

func kinds(list []Analyzer) []Kind {
	out := make([]Kind, len(list))
	for i, a := range list {
		out[i] = a.Kind()
	}
	return out
}

func TestNewSuite(t *testing.T) {
	tests := []struct {
		name string
		opt  genctx.Optimization
		want []Kind
	}{
		{"none", genctx.Optimization{}, []Kind{}},
		{"performance only", genctx.Optimization{Performance: true}, []Kind{KindPerformance}},
		{"bundle and accessibility", genctx.Optimization{BundleSize: true, Accessibility: true}, []Kind{KindAccessibility, KindBundleSize}},
		{"all", genctx.Optimization{Performance: true, Accessibility: true, BundleSize: true}, []Kind{KindPerformance, KindAccessibility, KindBundleSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSuite(nil, tt.opt)
			assert.Equal(t, tt.want, kinds(s.Analyzers()))
			assert.Equal(t, len(tt.want) == 0, s.Empty())
		})
	}
}

func TestSuite_AnalyzeOrder(t *testing.T) {
	s := All(nil)
	got := s.Analyze(panel, framework.React)
	assert.NotEmpty(t, got)

	rank := map[Kind]int{KindPerformance: 0, KindAccessibility: 1, KindBundleSize: 2}
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, rank[got[i-1].Kind], rank[got[i].Kind])
	}
	assert.Equal(t, got, s.Analyze(panel, framework.React))
}

func TestSuite_EmptyAnalyzeIsNotNil(t *testing.T) {
	s := NewSuite(nil, genctx.Optimization{})
	assert.NotNil(t, s.Analyze(panel, framework.React))
	assert.Equal(t, panel, s.Optimize(panel, framework.React))
}

func TestSuite_OptimizeIsIdempotent(t *testing.T) {
	samples := []struct {
		fw   framework.Framework
		code string
	}{
		{framework.React, panel},
		{framework.React, hoverCard},
		{framework.Vue, `<template>
  <motion.div :animate="{ left: 12 }" :whileTap="{ scale: 0.9 }" />
</template>
`},
		{framework.JS, `import animate from "motion";

animate(".box", { height: "200px" }, { duration: 4 });
`},
	}

	s := All(nil)
	for _, sample := range samples {
		t.Run(string(sample.fw), func(t *testing.T) {
			once := s.Optimize(sample.code, sample.fw)
			assert.Equal(t, once, s.Optimize(once, sample.fw))
		})
	}
}

func TestSuite_OptimizePanel(t *testing.T) {
	got := All(nil).Optimize(panel, framework.React)

	assert.Contains(t, got, `import { motion, useReducedMotion } from "framer-motion";`)
	assert.NotContains(t, got, "AnimatePresence")
	assert.Contains(t, got, "scaleX: 0.5")
	assert.Contains(t, got, "duration: 1")
	assert.Contains(t, got, `aria-label="Interactive element"`)
	assert.Contains(t, got, "whileFocus={{ scale: 1.1 }}")
}

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
}
