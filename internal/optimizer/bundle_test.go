package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

func TestBundleSize_DefaultImport(t *testing.T) {
	b := NewBundleSize(nil)
	code := `import motion from "framer-motion";

export const Box = () => <motion.div animate={{ opacity: 1 }} />;
`
	got := b.Analyze(code, framework.React)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityMedium, got[0].Severity)
	assert.Equal(t, "motion imports all of framer-motion", got[0].Message)
	assert.Equal(t, 1, got[0].Line)

	optimized := b.Optimize(code, framework.React)
	assert.Equal(t, `import { motion } from "framer-motion";

export const Box = () => <motion.div animate={{ opacity: 1 }} />;
`, optimized)
	assert.Equal(t, optimized, b.Optimize(optimized, framework.React))
	assert.Empty(t, b.Analyze(optimized, framework.React))
}

func TestBundleSize_UnusedAndPresence(t *testing.T) {
	b := NewBundleSize(nil)
	code := `import { motion } from "motion/react";
import { AnimatePresence, useScroll } from "motion/react";

export function List({ show }) {
  return (
    <AnimatePresence>
      {show && <motion.li layoutId="item" />}
    </AnimatePresence>
  );
}
`
	got := b.Analyze(code, framework.React)
	require.Len(t, got, 3)
	assert.Equal(t, SeverityLow, got[0].Severity)
	assert.Contains(t, got[0].Message, "useScroll")
	assert.Equal(t, 2, got[0].Line)
	assert.Contains(t, got[1].Message, "AnimatePresence")
	assert.Contains(t, got[2].Message, "layoutId")

	want := `import { motion } from "motion/react";

export function List({ show }) {
  return (
    <>
      {show && <motion.li layoutId="item" />}
    </>
  );
}
`
	optimized := b.Optimize(code, framework.React)
	assert.Equal(t, want, optimized)
	assert.Equal(t, optimized, b.Optimize(optimized, framework.React))
}

func TestBundleSize_PresenceWithExitIsKept(t *testing.T) {
	b := NewBundleSize(nil)
	code := `import { AnimatePresence, motion } from "motion/react";

export const Toast = ({ open }) => (
  <AnimatePresence>{open && <motion.div exit={{ opacity: 0 }} />}</AnimatePresence>
);
`
	assert.Equal(t, code, b.Optimize(code, framework.React))
}

func TestBundleSize_MergeImports(t *testing.T) {
	b := NewBundleSize(nil)
	code := `import { motion } from "motion/react";
import { animate, motion } from "motion/react";

export const run = () => animate(motion);
`
	want := `import { animate, motion } from "motion/react";

export const run = () => animate(motion);
`
	optimized := b.Optimize(code, framework.React)
	assert.Equal(t, want, optimized)
	assert.Equal(t, optimized, b.Optimize(optimized, framework.React))
}

func TestBundleSize_UntrackedModulesIgnored(t *testing.T) {
	b := NewBundleSize(nil)
	code := `import React, { useState } from "react";

export const Empty = () => null;
`
	assert.Empty(t, b.Analyze(code, framework.React))
	assert.Equal(t, code, b.Optimize(code, framework.React))
}

func TestBundleSize_EstimateCost(t *testing.T) {
	b := NewBundleSize(nil)
	code := `<AnimatePresence><Item layoutId="card" /></AnimatePresence>`

	cost, err := b.EstimateCost(code, framework.React)
	require.NoError(t, err)

	capability := framework.Defaults().MustGet(framework.React)
	presence, _ := capability.Cost("AnimatePresence")
	layoutID, _ := capability.Cost("layoutId")

	assert.Equal(t, presence+layoutID, cost.Total)
	assert.Equal(t, map[string]int{"AnimatePresence": presence, "layoutId": layoutID}, cost.Breakdown)

	_, err = b.EstimateCost(code, framework.Framework("svelte"))
	var unsupported *framework.UnsupportedError
	assert.ErrorAs(t, err, &unsupported)
}

func TestBundleSize_EstimateCostUsesFrameworkTable(t *testing.T) {
	b := NewBundleSize(nil)
	cost, err := b.EstimateCost(`animate("#el", { x: 1 }, { delay: stagger(0.1) });`, framework.JS)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"animate": 4, "stagger": 1}, cost.Breakdown)
	assert.Equal(t, 5, cost.Total)
}
