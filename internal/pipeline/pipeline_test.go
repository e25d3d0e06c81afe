package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
)

const card = "import { motion } from \"motion/react\";\n\nexport default function Card() {\n  return <motion.div animate={{ opacity: 1 }} />;\n}\n"

func run(t *testing.T, req Request) *Result {
	t.Helper()
	res, err := New(Config{}).Run(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestPipeline_Generate(t *testing.T) {
	resp := New(Config{}).Generate(context.Background(), Request{Source: card, Framework: framework.React})

	require.True(t, resp.Success, resp.Error)
	assert.Nil(t, resp.Error)
	assert.Equal(t, card, resp.Code)
	assert.Equal(t, framework.React, resp.Framework)
	assert.Equal(t, "Card", resp.Component)
	require.Len(t, resp.Imports, 1)
	assert.Equal(t, "motion/react", resp.Imports[0].Source)
	require.Len(t, resp.Exports, 1)
	assert.Nil(t, resp.Err())
}

func TestPipeline_ComponentNameAndDependencies(t *testing.T) {
	res := run(t, Request{
		Source:    `export default function X(){ return <box animate="a"/>; }`,
		Framework: framework.React,
	})

	assert.Equal(t, "X", res.ComponentName)
	require.Len(t, res.Exports, 1)
	assert.Equal(t, "X", res.Exports[0].Declaration)
	assert.Equal(t, []string{"motion/react"}, res.Dependencies)
	assert.Contains(t, res.Code, "<motion.box")
	assert.Empty(t, res.Suggestions)
	assert.Nil(t, res.Cost)
}

func TestPipeline_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code string
	}{
		{
			name: "unsupported target checked before parsing",
			req:  Request{Source: "", Framework: "svelte"},
			code: "unsupported_framework",
		},
		{
			name: "unsupported source framework",
			req:  Request{Source: card, Framework: framework.React, SourceFramework: "angular"},
			code: "unsupported_framework",
		},
		{
			name: "empty source",
			req:  Request{Source: "  \n", Framework: framework.React},
			code: "parse_error",
		},
		{
			name: "unclosed element",
			req:  Request{Source: "export default function X() {\n  return <div>\n}\n", Framework: framework.React},
			code: "parse_error",
		},
	}

	p := New(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := p.Generate(context.Background(), tt.req)
			assert.False(t, resp.Success)
			assert.Empty(t, resp.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)

			err := resp.Err()
			require.Error(t, err)
			var re *ResponseError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.code, re.Code())
		})
	}
}

func TestPipeline_ParseErrorPosition(t *testing.T) {
	resp := New(Config{}).Generate(context.Background(), Request{
		Source:    "export default function X() {\n  const s = \"open\n}\n",
		Framework: framework.React,
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, "parse_error", resp.Error.Code)
	assert.Equal(t, 2, resp.Error.Line)
	assert.NotEmpty(t, resp.Error.Snippet)
}

func TestPipeline_Optimize(t *testing.T) {
	src := "export default function Box() {\n  return <motion.div animate={{ width: \"100px\" }} />;\n}\n"

	res := run(t, Request{
		Source:       src,
		Framework:    framework.React,
		Optimization: Optimization{Performance: true, Accessibility: true, BundleSize: true},
		Optimize:     true,
	})

	assert.True(t, res.Optimized)
	assert.Empty(t, res.Map)
	assert.Contains(t, res.Code, "scaleX: 1")
	assert.Contains(t, res.Code, "useReducedMotion")
	require.NotNil(t, res.Cost)
	assert.Equal(t, res.Cost.Breakdown["motion"], res.Cost.Total)

	for _, s := range res.Suggestions {
		assert.NotEqual(t, optimizer.SeverityHigh, s.Severity, s.Message)
	}
}

func TestPipeline_SuggestionsWithoutRewrite(t *testing.T) {
	src := "export default function Box() {\n  return <motion.div animate={{ width: \"100px\" }} />;\n}\n"

	res := run(t, Request{
		Source:       src,
		Framework:    framework.React,
		Optimization: Optimization{Performance: true},
	})

	assert.False(t, res.Optimized)
	assert.Contains(t, res.Code, `width: "100px"`)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, optimizer.SeverityHigh, res.Suggestions[0].Severity)
	assert.Equal(t, optimizer.KindPerformance, res.Suggestions[0].Kind)
}

func TestPipeline_RoundTrip(t *testing.T) {
	sources := []struct {
		fw  framework.Framework
		src string
	}{
		{framework.React, card},
		{framework.Vue, "<template>\n  <motion.section :initial=\"{ y: 20 }\" @click=\"open = true\">Hi</motion.section>\n</template>\n\n<script setup>\nimport { ref } from 'vue'\nconst open = ref(false)\n</script>\n"},
		{framework.JS, "import { animate } from \"motion\";\n\nanimate(\".box\", { rotate: 90 }, { duration: 0.5 });\n"},
	}

	all := Optimization{Performance: true, Accessibility: true, BundleSize: true}
	p := New(Config{})
	for _, s := range sources {
		for _, target := range framework.All() {
			for _, optimize := range []bool{false, true} {
				name := fmt.Sprintf("%s->%s optimize=%t", s.fw, target, optimize)
				t.Run(name, func(t *testing.T) {
					req := Request{Source: s.src, SourceFramework: s.fw, Framework: target}
					if optimize {
						req.Optimization, req.Optimize = all, true
					}
					res, err := p.Run(context.Background(), req)
					require.NoError(t, err)

					_, err = parser.Parse(res.Code, parser.Options{Framework: target})
					require.NoError(t, err, res.Code)
				})
			}
		}
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	req := Request{
		Source:          card,
		Framework:       framework.Vue,
		SourceFramework: framework.React,
		Optimization:    Optimization{Accessibility: true, Performance: true},
	}
	first := run(t, req)
	second := run(t, req)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Suggestions, second.Suggestions)
}

func TestPipeline_ConcurrentRequests(t *testing.T) {
	p := New(Config{})
	req := Request{Source: card, Framework: framework.React, Optimization: Optimization{BundleSize: true}}
	want, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make([]string, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := p.Generate(context.Background(), req)
			codes[i] = resp.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, want.Code, code)
	}
}

func TestPipeline_AnalyzeAndOptimize(t *testing.T) {
	p := New(Config{})
	code := `<motion.button whileHover={{ scale: 1.1 }} />`
	opt := Optimization{Accessibility: true}

	suggestions, err := p.Analyze(code, framework.React, opt)
	require.NoError(t, err)
	assert.NotEmpty(t, suggestions)

	out, rest, err := p.Optimize(code, framework.React, opt)
	require.NoError(t, err)
	assert.Contains(t, out, "aria-label")
	assert.Len(t, rest, len(suggestions)-2)

	_, err = p.Analyze(code, "svelte", opt)
	var unsupported *framework.UnsupportedError
	assert.ErrorAs(t, err, &unsupported)

	cost, err := p.EstimateCost(code, framework.React)
	require.NoError(t, err)
	assert.Equal(t, 34, cost.Total)
}

func TestNewContext(t *testing.T) {
	ctx := NewContext(framework.Vue, true)
	assert.Equal(t, framework.Vue, ctx.Framework)
	assert.True(t, ctx.TypeScript)
	assert.Zero(t, ctx.Imports.Len())
}
