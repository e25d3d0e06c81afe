package transform

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
)

func mustParse(t *testing.T, fw framework.Framework, src string) *ast.ComponentAST {
	t.Helper()
	c, err := parser.Parse(src, parser.Options{Framework: fw})
	require.NoError(t, err)
	return c
}

// dump renders the attached tree compactly for comparisons.
func dump(tree *ast.Tree) string {
	var b strings.Builder
	tree.Walk(func(id ast.NodeID) bool {
		n := tree.Node(id)
		depth := len(tree.Ancestors(id))
		fmt.Fprintf(&b, "%s%s %s", strings.Repeat("  ", depth), n.Kind, n.Tag)
		for _, a := range n.Attrs {
			fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

func findTag(t *testing.T, tree *ast.Tree, tag string) *ast.Node {
	t.Helper()
	id, ok := tree.Find(func(n *ast.Node) bool { return n.Kind == ast.KindElement && n.Tag == tag })
	require.True(t, ok, "no <%s> in tree:\n%s", tag, dump(tree))
	return tree.Node(id)
}

const reactCard = `import { motion } from "motion/react"

export default function Card({ open }) {
  return (
    <section>
      <div animate={{ x: 100 }} exit={{ opacity: 0 }} whileHover={{ scale: 1.1 }}>card</div>
    </section>
  )
}
`

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	noop := func(*ast.Tree, ast.NodeID, *genctx.Context) bool { return false }
	keep := func(_ *ast.Tree, id ast.NodeID, _ *genctx.Context) ([]ast.NodeID, error) { return []ast.NodeID{id}, nil }

	require.NoError(t, r.Register(Rule{Name: "a", Condition: noop, Transform: keep}))
	assert.Error(t, r.Register(Rule{Name: "a", Condition: noop, Transform: keep}), "duplicate name")
	assert.Error(t, r.Register(Rule{Name: "b", Transform: keep}), "missing condition")
	assert.Error(t, r.Register(Rule{Condition: noop, Transform: keep}), "missing name")

	r.Freeze()
	assert.True(t, r.Frozen())
	assert.Error(t, r.Register(Rule{Name: "c", Condition: noop, Transform: keep}))
	assert.Len(t, r.Rules(), 1)
}

func TestDefaultRegistry_Order(t *testing.T) {
	var names []string
	for _, rule := range DefaultRegistry().Rules() {
		names = append(names, rule.Name)
	}
	assert.Equal(t, []string{"promote-animated-markup", "bind-object-motion-props", "wrap-exit-in-presence"}, names)

	tests := []struct {
		fw   framework.Framework
		want []string
	}{
		{framework.React, []string{"promote-animated-markup", "wrap-exit-in-presence"}},
		{framework.Vue, []string{"promote-animated-markup", "bind-object-motion-props"}},
		{framework.JS, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.fw), func(t *testing.T) {
			var got []string
			for _, rule := range DefaultRegistry().For(tt.fw) {
				got = append(got, rule.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_ReactRulesAndImports(t *testing.T) {
	c := mustParse(t, framework.React, reactCard)
	before := dump(c.Tree)

	ctx := genctx.New(framework.React, false)
	out, err := NewEngine(nil, nil, nil).Transform(c, ctx)
	require.NoError(t, err)

	assert.Equal(t, before, dump(c.Tree), "input tree is untouched")
	assert.Len(t, c.Imports, 1)

	id, ok := out.Tree.Find(func(n *ast.Node) bool { return n.Tag == "motion.div" })
	require.True(t, ok, dump(out.Tree))
	parent := out.Tree.Node(out.Tree.Parent(id))
	assert.Equal(t, "AnimatePresence", parent.Tag)
	section := out.Tree.Node(out.Tree.Parent(out.Tree.Parent(id)))
	assert.Equal(t, "section", section.Tag)

	require.Len(t, out.Imports, 1, "injected names merge into the existing declaration")
	assert.Equal(t, "motion/react", out.Imports[0].Source)
	var locals []string
	for _, s := range out.Imports[0].Specifiers {
		locals = append(locals, s.Local)
	}
	assert.Equal(t, []string{"motion", "AnimatePresence"}, locals)
	assert.Equal(t, []string{"motion/react"}, ctx.Dependencies.Values())
}

func TestEngine_PresenceWrapsConditional(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"logical and", `<div>{open && <motion.div exit={{ opacity: 0 }} />}</div>`},
		{"ternary", `<div>{open ? <motion.div exit={{ opacity: 0 }} /> : <motion.p exit={{ opacity: 0 }} />}</div>`},
	}

	engine := NewEngine(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "export default function Toast({ open }) {\n  return " + tt.body + ";\n}\n"
			ctx := genctx.New(framework.React, false)
			out, err := engine.Transform(mustParse(t, framework.React, src), ctx)
			require.NoError(t, err)

			id, ok := out.Tree.Find(func(n *ast.Node) bool { return n.Tag == "motion.div" })
			require.True(t, ok, dump(out.Tree))
			expr := out.Tree.Parent(id)
			assert.Equal(t, ast.KindExpression, out.Tree.Node(expr).Kind)
			presence := out.Tree.Parent(expr)
			assert.Equal(t, "AnimatePresence", out.Tree.Node(presence).Tag)
			assert.Equal(t, "div", out.Tree.Node(out.Tree.Parent(presence)).Tag)

			count := 0
			out.Tree.Walk(func(id ast.NodeID) bool {
				if out.Tree.Node(id).Tag == "AnimatePresence" {
					count++
				}
				return true
			})
			assert.Equal(t, 1, count, dump(out.Tree))

			again, err := engine.Transform(out, ctx)
			require.NoError(t, err)
			assert.Equal(t, dump(out.Tree), dump(again.Tree))
		})
	}
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine(nil, nil, nil)
	ctx := genctx.New(framework.React, false)
	ctx.Optimization = genctx.Optimization{Performance: true, Accessibility: true}

	once, err := engine.Transform(mustParse(t, framework.React, reactCard), ctx)
	require.NoError(t, err)
	twice, err := engine.Transform(once, ctx)
	require.NoError(t, err)

	assert.Equal(t, dump(once.Tree), dump(twice.Tree))
	assert.Equal(t, once.Imports, twice.Imports)
}

func TestEngine_VueTemplateRules(t *testing.T) {
	src := `<template>
  <div animate="{ opacity: 1, x: 20 }" initial="hidden" @click="toggle">hi</div>
</template>
`
	ctx := genctx.New(framework.Vue, false)
	ctx.Optimization.Accessibility = true
	ctx.Optimization.Performance = true

	out, err := NewEngine(nil, nil, nil).Transform(mustParse(t, framework.Vue, src), ctx)
	require.NoError(t, err)

	el := findTag(t, out.Tree, "motion.div")
	assert.Equal(t, []ast.Attribute{
		{Name: ":animate", Kind: ast.AttrStatic, Value: "{ opacity: 1, x: 20 }"},
		{Name: "initial", Kind: ast.AttrStatic, Value: "hidden"},
		{Name: "@click", Kind: ast.AttrStatic, Value: "toggle"},
		{Name: "aria-label", Kind: ast.AttrStatic, Value: DefaultLabel},
		{Name: ":style", Kind: ast.AttrStatic, Value: "{ willChange: 'transform' }"},
	}, el.Attrs)

	require.Len(t, out.Imports, 1)
	assert.Equal(t, "motion-v", out.Imports[0].Source)
	_, found := out.Tree.Find(func(n *ast.Node) bool { return n.Tag == "AnimatePresence" })
	assert.False(t, found, "presence wrapping is react only")
}

func TestEngine_RuleErrorsAbortWithoutCommit(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"error", func(*ast.Tree, ast.NodeID, *genctx.Context) ([]ast.NodeID, error) {
			return nil, errors.New("boom")
		}, "boom"},
		{"panic", func(*ast.Tree, ast.NodeID, *genctx.Context) ([]ast.NodeID, error) {
			panic("kaboom")
		}, "transform panicked: kaboom"},
		{"bad replacement", func(*ast.Tree, ast.NodeID, *genctx.Context) ([]ast.NodeID, error) {
			return []ast.NodeID{9999}, nil
		}, "invalid replacement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Register(Rule{
				Name: "tag-everything",
				Condition: func(tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) bool {
					ctx.Imports.Add("Leak")
					return tree.Node(id).Kind == ast.KindElement
				},
				Transform: tt.action,
			}))

			c := mustParse(t, framework.React, reactCard)
			ctx := genctx.New(framework.React, false)
			_, err := NewEngine(reg, nil, nil).Transform(c, ctx)

			var ruleErr *RuleError
			require.True(t, errors.As(err, &ruleErr), "got %v", err)
			assert.Equal(t, "tag-everything", ruleErr.Rule)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, "transform_rule_error", ruleErr.Code())
			assert.Zero(t, ctx.Imports.Len(), "context is not committed")
		})
	}
}

func TestEngine_SpliceAndRemove(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		Name: "drop-whitespace",
		Condition: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) bool {
			n := tree.Node(id)
			return n.Kind == ast.KindText && strings.TrimSpace(n.Text) == ""
		},
		Transform: func(*ast.Tree, ast.NodeID, *genctx.Context) ([]ast.NodeID, error) {
			return nil, nil
		},
	}))
	require.NoError(t, reg.Register(Rule{
		Name: "split-text",
		Condition: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) bool {
			return tree.Node(id).Kind == ast.KindText
		},
		Transform: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) ([]ast.NodeID, error) {
			text := tree.Node(id).Text
			a := tree.Add(ast.Node{Kind: ast.KindText, Text: text[:1], Pos: -1})
			b := tree.Add(ast.Node{Kind: ast.KindText, Text: text[1:], Pos: -1})
			return []ast.NodeID{a, b}, nil
		},
	}))

	c := mustParse(t, framework.React, "const a = <p> <b>xy</b> </p>\n")
	out, err := NewEngine(reg, nil, nil).Transform(c, genctx.New(framework.React, false))
	require.NoError(t, err)

	b := findTag(t, out.Tree, "b")
	require.Len(t, b.Children, 2, "spliced nodes are not revisited by the rule that made them")
	assert.Equal(t, "x", out.Tree.Node(b.Children[0]).Text)
	assert.Equal(t, "y", out.Tree.Node(b.Children[1]).Text)

	p := findTag(t, out.Tree, "p")
	assert.Len(t, p.Children, 1, "whitespace text removed")
}

func TestEngine_UnsupportedFramework(t *testing.T) {
	c := mustParse(t, framework.React, reactCard)
	_, err := NewEngine(nil, nil, nil).Transform(c, genctx.New("svelte", false))
	var unsupported *framework.UnsupportedError
	assert.True(t, errors.As(err, &unsupported))
}

func TestInjectImports_NeverDuplicatesSources(t *testing.T) {
	caps := framework.Defaults()
	capability := caps.MustGet(framework.JS)
	c := mustParse(t, framework.JS, "import { stagger } from \"motion\"\nanimate(\"li\", { y: 10 }, { delay: stagger(0.1) })\n")
	ctx := genctx.New(framework.JS, false)

	assert.True(t, InjectImports(c, ctx, capability))
	assert.False(t, InjectImports(c, ctx, capability))

	require.Len(t, c.Imports, 1)
	assert.Equal(t, "motion", c.Imports[0].Source)
	assert.Len(t, c.Imports[0].Specifiers, 2)
}

func TestInjectImports_RespectsExistingLocalBinding(t *testing.T) {
	capability := framework.Defaults().MustGet(framework.React)
	c := mustParse(t, framework.React, "import * as motion from \"framer-motion\"\nconst a = <motion.div />\n")

	assert.False(t, InjectImports(c, genctx.New(framework.React, false), capability))
	require.Len(t, c.Imports, 1)
	assert.Equal(t, "framer-motion", c.Imports[0].Source)
}

func TestEnhanceAccessibility(t *testing.T) {
	c := mustParse(t, framework.React, `const a = (
  <div>
    <motion.button whileTap={{ scale: 0.9 }}>go</motion.button>
    <motion.div whileHover={{ y: -2 }} aria-label="card" />
    <motion.div animate={{ opacity: 1 }} />
    <button>plain</button>
  </div>
)
`)
	assert.Equal(t, 2, EnhanceAccessibility(c.Tree))
	assert.Equal(t, 0, EnhanceAccessibility(c.Tree))

	btn := findTag(t, c.Tree, "motion.button")
	label, _ := btn.Attr("aria-label")
	require.NotNil(t, label)
	assert.Equal(t, DefaultLabel, label.Value)
}

func TestEnhancePerformance(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		style string
		added int
	}{
		{"adds style", `const a = <motion.div animate={{ x: 10 }} />`, `{ willChange: "transform" }`, 1},
		{"extends literal style", `const a = <motion.div animate={{ rotate: 90 }} style={{ color: "red" }} />`, `{ color: "red", willChange: "transform" }`, 1},
		{"keeps opaque style", `const a = <motion.div animate={{ scale: 2 }} style={styles.box} />`, `styles.box`, 0},
		{"already hinted", `const a = <motion.div animate={{ y: 1 }} style={{ willChange: "transform" }} />`, `{ willChange: "transform" }`, 0},
		{"variants are inspected", `const a = <motion.div variants={{ open: { x: 0 } }} />`, `{ willChange: "transform" }`, 1},
		{"opacity only", `const a = <motion.div animate={{ opacity: 1 }} />`, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustParse(t, framework.React, tt.src+"\n")
			assert.Equal(t, tt.added, EnhancePerformance(c.Tree))
			assert.Equal(t, 0, EnhancePerformance(c.Tree))

			el := findTag(t, c.Tree, "motion.div")
			style, _ := el.Attr("style")
			if tt.style == "" {
				assert.Nil(t, style)
				return
			}
			require.NotNil(t, style)
			assert.Equal(t, tt.style, style.Value)
		})
	}
}
