package optimizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

func bySeverity(list []Suggestion, sev Severity) []Suggestion {
	var out []Suggestion
	for _, s := range list {
		if s.Severity == sev {
			out = append(out, s)
		}
	}
	return out
}

func TestPerformance_LayoutAnimation(t *testing.T) {
	p := NewPerformance()
	code := `<motion.div animate={{ width: "100px" }} />`

	high := bySeverity(p.Analyze(code, framework.React), SeverityHigh)
	require.Len(t, high, 1)
	assert.Equal(t, KindPerformance, high[0].Kind)
	assert.Contains(t, high[0].Message, "width")
	assert.Equal(t, 1, high[0].Line)

	optimized := p.Optimize(code, framework.React)
	assert.Equal(t, `<motion.div animate={{ scaleX: 1 }} />`, optimized)
	assert.Equal(t, optimized, p.Optimize(optimized, framework.React))
	assert.Empty(t, bySeverity(p.Analyze(optimized, framework.React), SeverityHigh))
}

func TestPerformance_LayoutValues(t *testing.T) {
	tests := []struct {
		prop    string
		literal string
		want    string
	}{
		{"width", `"50%"`, "0.5"},
		{"height", `"100px"`, "1"},
		{"left", "20", "20"},
		{"left", `"20px"`, "20"},
		{"right", `"20px"`, "-20"},
		{"bottom", "-5", "5"},
		{"top", `"2em"`, `"2em"`},
		{"right", `'2em'`, `'-2em'`},
	}

	for _, tt := range tests {
		t.Run(tt.prop+" "+tt.literal, func(t *testing.T) {
			assert.Equal(t, tt.want, layoutValue(tt.prop, tt.literal))
		})
	}
}

func TestPerformance_Optimize(t *testing.T) {
	p := NewPerformance()

	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "clamps long durations",
			code: `<motion.div transition={{ duration: 2.5, delay: 3 }} />`,
			want: `<motion.div transition={{ duration: 1, delay: 3 }} />`,
		},
		{
			name: "keeps short durations",
			code: `<motion.div transition={{ duration: 0.3 }} />`,
			want: `<motion.div transition={{ duration: 0.3 }} />`,
		},
		{
			name: "offsets become translations",
			code: `<motion.div animate={{ left: 10, top: "4px" }} />`,
			want: `<motion.div animate={{ x: 10, y: 4 }} />`,
		},
		{
			name: "existing transform key wins",
			code: `<motion.div animate={{ x: 0, left: 10 }} />`,
			want: `<motion.div animate={{ x: 0, left: 10 }} />`,
		},
		{
			name: "one rewrite per target key",
			code: `<motion.div animate={{ left: 10, right: 20 }} />`,
			want: `<motion.div animate={{ x: 10, right: 20 }} />`,
		},
		{
			name: "ternary branches untouched",
			code: "const offset = isRtl ? right : 0\n",
			want: "const offset = isRtl ? right : 0\n",
		},
		{
			name: "style blocks untouched",
			code: "<style>\n.a {\n  top: 0\n}\n</style>\n",
			want: "<style>\n.a {\n  top: 0\n}\n</style>\n",
		},
		{
			name: "strings and comments untouched",
			code: "const css = \"{ left: 4 }\" // { top: 2 }\n",
			want: "const css = \"{ left: 4 }\" // { top: 2 }\n",
		},
		{
			name: "bound template attributes",
			code: `<motion.div :animate="{ left: 10 }" :transition="{ duration: 3 }" />`,
			want: `<motion.div :animate="{ x: 10 }" :transition="{ duration: 1 }" />`,
		},
		{
			name: "css properties untouched",
			code: `<div style="margin-top: 4px; max-width: 10px" />`,
			want: `<div style="margin-top: 4px; max-width: 10px" />`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Optimize(tt.code, framework.React)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, p.Optimize(got, framework.React))
		})
	}
}

func TestPerformance_IgnoresNonObjectKeys(t *testing.T) {
	p := NewPerformance()

	tests := []struct {
		name string
		code string
	}{
		{"ternary", "const offset = isRtl ? right : 0\n"},
		{"style block", "<template><motion.div :animate=\"{ opacity: 1 }\" /></template>\n<style>\n.a { top: 0; left: 2 }\n</style>\n"},
		{"label", "top: 4\n"},
		{"longer expression", "const box = { width: 10 * scale }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, bySeverity(p.Analyze(tt.code, framework.Vue), SeverityHigh))
			assert.Equal(t, tt.code, p.Optimize(tt.code, framework.Vue))
		})
	}
}

func TestInertMask(t *testing.T) {
	code := `a "b" // c` + "\n" + `<x :y="{ z: 1 }" w="v" />`
	mask := inertMask(code)

	assert.False(t, mask[strings.Index(code, "a")])
	assert.True(t, mask[strings.Index(code, "b")])
	assert.True(t, mask[strings.Index(code, "c")])
	assert.False(t, mask[strings.Index(code, "z")])
	assert.True(t, mask[strings.Index(code, "v\"")])
}

func TestPerformance_WillChange(t *testing.T) {
	p := NewPerformance()

	missing := p.Analyze(`<motion.div animate={{ x: 100 }} />`, framework.React)
	require.Len(t, missing, 1)
	assert.Equal(t, SeverityMedium, missing[0].Severity)
	assert.Contains(t, missing[0].Message, "willChange")

	hinted := p.Analyze(`<motion.div animate={{ x: 100 }} style={{ willChange: "transform" }} />`, framework.React)
	assert.Empty(t, hinted)
}

func TestPerformance_UsageThreshold(t *testing.T) {
	p := NewPerformance()

	var b strings.Builder
	for i := 0; i < UsageThreshold; i++ {
		fmt.Fprintf(&b, "<motion.li key=\"%d\" />\n", i)
	}
	assert.Empty(t, p.Analyze(b.String(), framework.React))

	b.WriteString("<motion.li key=\"last\" />\n")
	got := p.Analyze(b.String(), framework.React)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityMedium, got[0].Severity)
	assert.Equal(t, "Component runs 11 animations", got[0].Message)
}
