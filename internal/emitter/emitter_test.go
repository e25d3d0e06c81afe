package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

const reactCard = "import { motion } from \"motion/react\";\n\nexport default function Card() {\n  return <motion.div animate={{ opacity: 1 }} />;\n}\n"

func mustParse(t *testing.T, src string, fw framework.Framework) *ast.ComponentAST {
	t.Helper()
	c, err := parser.Parse(src, parser.Options{Framework: fw})
	require.NoError(t, err)
	return c
}

// noFormat fails the test if the formatter is reached.
func noFormat(t *testing.T) Formatter {
	return FormatterFunc(func(context.Context, string, string) (string, error) {
		t.Fatal("formatter should not run")
		return "", nil
	})
}

func generate(t *testing.T, c *ast.ComponentAST, target Target, opts Options) *Result {
	t.Helper()
	res, err := New(nil, noFormat(t), nil).Generate(context.Background(), c, target, opts)
	require.NoError(t, err)
	return res
}

func TestGenerate_ReproducesSource(t *testing.T) {
	c := mustParse(t, reactCard, framework.React)
	res := generate(t, c, Target{Framework: framework.React}, Options{})
	assert.Equal(t, reactCard, res.Code)
	assert.Equal(t, framework.React, res.Framework)
	require.Len(t, res.Exports, 1)
	assert.Equal(t, "Card", res.Exports[0].Declaration)
}

func TestGenerate_DoesNotModifyInput(t *testing.T) {
	c := mustParse(t, "export default function Counter() {\n  return <p>{React.version}</p>;\n}\n", framework.React)
	before := len(c.Imports)
	generate(t, c, Target{Framework: framework.React}, Options{})
	assert.Len(t, c.Imports, before)
}

func TestGenerate_ReservedIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		fw   framework.Framework
		src  string
		want string
	}{
		{
			name: "react member access",
			fw:   framework.React,
			src:  "export default function Counter() {\n  const [n] = React.useState(0);\n  return <p>{n}</p>;\n}\n",
			want: "import React from \"react\";\n\nexport default function Counter() {",
		},
		{
			name: "js call merges into existing import",
			fw:   framework.JS,
			src:  "import { stagger } from \"motion\";\nanimate(\".item\", { x: 100 }, { delay: stagger(0.1) });\n",
			want: "import { stagger, animate } from \"motion\";\n",
		},
		{
			name: "vue composition api",
			fw:   framework.Vue,
			src:  "<script setup>\nconst count = ref(0)\n</script>\n\n<template>\n  <div>{{ count }}</div>\n</template>\n",
			want: "<script setup>\nimport { ref } from \"vue\";\nconst count = ref(0)\n</script>\n\n<template>\n  <div>{{ count }}</div>\n</template>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := generate(t, mustParse(t, tt.src, tt.fw), Target{Framework: tt.fw}, Options{})
			assert.True(t, strings.HasPrefix(res.Code, tt.want), res.Code)
			assert.Equal(t, strings.Count(res.Code, "import "), len(res.Imports))
		})
	}
}

func TestGenerate_DeclaredReservedNameIsNotImported(t *testing.T) {
	src := "function animate(el) {\n  el.hidden = false\n}\n"
	res := generate(t, mustParse(t, src, framework.JS), Target{Framework: framework.JS}, Options{})
	assert.Empty(t, res.Imports)
	assert.Equal(t, src, res.Code)
}

func TestGenerate_CreatesScriptBlockForImports(t *testing.T) {
	c := mustParse(t, "<template>\n  <motion.div :animate=\"{ x: 1 }\" />\n</template>\n", framework.Vue)
	c.Imports, _ = ast.AddNamed(c.Imports, "motion-v", "motion")

	res := generate(t, c, Target{Framework: framework.Vue, TypeScript: true}, Options{})
	assert.Equal(t, "<script setup lang=\"ts\">\nimport { motion } from \"motion-v\";\n</script>\n\n<template>\n  <motion.div :animate=\"{ x: 1 }\" />\n</template>\n", res.Code)

	_, err := parser.Parse(res.Code, parser.Options{Framework: framework.Vue})
	require.NoError(t, err)
}

func TestGenerate_TypeScript(t *testing.T) {
	src := "export default function Card() {\n  return <div />;\n}\n"

	res := generate(t, mustParse(t, src, framework.React), Target{Framework: framework.React, TypeScript: true}, Options{})
	assert.Contains(t, res.Code, "function Card(): JSX.Element {")

	again := generate(t, mustParse(t, res.Code, framework.React), Target{Framework: framework.React, TypeScript: true}, Options{})
	assert.Equal(t, res.Code, again.Code)

	js := generate(t, mustParse(t, src, framework.React), Target{Framework: framework.JS, TypeScript: true}, Options{})
	assert.Equal(t, src, js.Code)

	vue := generate(t, mustParse(t, "<script>\nexport default {}\n</script>\n", framework.Vue), Target{Framework: framework.Vue, TypeScript: true}, Options{})
	assert.Equal(t, "<script lang=\"ts\">\nexport default {}\n</script>\n", vue.Code)
}

func TestGenerate_ReactToVue(t *testing.T) {
	src := `import { motion } from "framer-motion";
import React from "react";

export default function Card({ open }) {
  const label = "Hi";
  return (
    <motion.div className="card" animate={{ opacity: 1 }} onClick={toggle}>
      {open && <span>{label}</span>}
    </motion.div>
  );
}
`
	res := generate(t, mustParse(t, src, framework.React), Target{Framework: framework.Vue}, Options{})

	for _, want := range []string{
		"<script setup>\nimport { motion } from \"motion-v\";\nconst { open } = defineProps([\"open\"])\nconst label = \"Hi\";\n</script>",
		`<motion.div class="card" :animate="{ opacity: 1 }" @click="toggle">`,
		`<span v-if="open">{{ label }}</span>`,
		"</motion.div>\n</template>\n",
	} {
		assert.Contains(t, res.Code, want)
	}
	assert.NotContains(t, res.Code, "react")
	require.Len(t, res.Imports, 1)
	assert.Equal(t, "motion-v", res.Imports[0].Source)

	back, err := parser.Parse(res.Code, parser.Options{Framework: framework.Vue})
	require.NoError(t, err)
	els := parser.ExtractAnimatedElements(back)
	require.Len(t, els, 1)
	assert.Equal(t, "motion.div", els[0].Tag)
}

func TestGenerate_VueToReact(t *testing.T) {
	src := `<script setup>
import { motion } from "motion-v";
const { items } = defineProps(["items"])
</script>

<template>
  <ul class="list">
    <motion.li v-for="item in items" :key="item.id" :animate="{ opacity: 1 }" @click="select(item)">{{ item.name }}</motion.li>
    <p v-if="!items.length">Empty</p>
    <p v-else>Done</p>
  </ul>
</template>

<style scoped>
.list { margin: 0 }
</style>
`
	c := mustParse(t, src, framework.Vue)
	c.ComponentName = "List"
	res := generate(t, c, Target{Framework: framework.React}, Options{})

	for _, want := range []string{
		"import { motion } from \"motion/react\";\n\nexport default function List({ items }) {\n  return (\n    <ul className=\"list\">",
		"{items.map(item => <motion.li key={item.id} animate={{ opacity: 1 }} onClick={() => select(item)}>{item.name}</motion.li>)}",
		"{!items.length ? <p>Empty</p> : <p>Done</p>}",
		"</ul>\n  )\n}\n",
	} {
		assert.Contains(t, res.Code, want)
	}
	assert.NotContains(t, res.Code, "defineProps")
	assert.NotContains(t, res.Code, "scoped")

	back, err := parser.Parse(res.Code, parser.Options{Framework: framework.React})
	require.NoError(t, err)
	assert.Equal(t, "List", back.ComponentName)
	els := parser.ExtractAnimatedElements(back)
	require.Len(t, els, 1)
	assert.Equal(t, "motion.li", els[0].Tag)
}

func TestGenerate_GuardedReturnToVue(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "logical and",
			src:  "export default function Toast({ open }) {\n  return open && <motion.div exit={{ opacity: 0 }} />;\n}\n",
			want: []string{`<motion.div v-if="open" :exit="{ opacity: 0 }" />`},
		},
		{
			name: "parenthesized",
			src:  "export default function Toast({ open }) {\n  return (\n    open && (\n      <motion.div exit={{ opacity: 0 }} />\n    )\n  );\n}\n",
			want: []string{`<motion.div v-if="open" :exit="{ opacity: 0 }" />`},
		},
		{
			name: "ternary",
			src:  "export default function Badge({ on }) {\n  return on ? <motion.span animate={{ scale: 1 }} /> : <p>off</p>;\n}\n",
			want: []string{`<motion.span v-if="on" :animate="{ scale: 1 }" />`, `<p v-else>off</p>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := generate(t, mustParse(t, tt.src, framework.React), Target{Framework: framework.Vue}, Options{})
			for _, want := range tt.want {
				assert.Contains(t, res.Code, want)
			}
			assert.NotContains(t, res.Code, "return")
			assert.NotContains(t, res.Code, "&&")
			assert.Contains(t, res.Code, "= defineProps([")

			_, err := parser.Parse(res.Code, parser.Options{Framework: framework.Vue})
			require.NoError(t, err, res.Code)
		})
	}
}

func TestGenerate_VueToScript(t *testing.T) {
	src := "<template>\n  <motion.div :animate=\"{ x: 100 }\" />\n</template>\n\n<script setup>\nimport { motion } from \"motion-v\";\n</script>\n"
	c := mustParse(t, src, framework.Vue)
	c.ComponentName = "Slide"
	res := generate(t, c, Target{Framework: framework.JS}, Options{})

	assert.Contains(t, res.Code, `from "motion";`)
	assert.Contains(t, res.Code, "export default function Slide() {")
	assert.Contains(t, res.Code, "<motion.div animate={{ x: 100 }} />")
	assert.NotContains(t, res.Code, "<template>")
	assert.NotContains(t, res.Code, "motion-v")

	back, err := parser.Parse(res.Code, parser.Options{Framework: framework.JS})
	require.NoError(t, err, res.Code)
	assert.Len(t, parser.ExtractAnimatedElements(back), 1)
}

func TestGenerate_VueToReactProps(t *testing.T) {
	src := "<template>\n  <motion.div :animate=\"{ x: 100 }\" :while-hover=\"{ scale: 1.2 }\" layout-id=\"card\" />\n</template>\n\n<script setup>\nimport { ref } from \"vue\";\nconst open = ref(false)\n</script>\n"
	c := mustParse(t, src, framework.Vue)
	c.ComponentName = "Card"

	var buf bytes.Buffer
	log := logger.NewLogger(logger.LevelWarn, &buf)
	res, err := New(nil, noFormat(t), log).Generate(context.Background(), c, Target{Framework: framework.React}, Options{})
	require.NoError(t, err)

	assert.Contains(t, res.Code, `<motion.div animate={{ x: 100 }} whileHover={{ scale: 1.2 }} layoutId="card" />`)
	assert.NotContains(t, res.Code, "while-hover")
	assert.NotContains(t, res.Code, `from "vue"`)
	assert.Contains(t, buf.String(), "dropped imports")
	assert.Contains(t, buf.String(), "ref")
}

func TestGenerate_Formatter(t *testing.T) {
	c := mustParse(t, reactCard, framework.React)

	t.Run("formatted output replaces code", func(t *testing.T) {
		var gotParser string
		f := FormatterFunc(func(_ context.Context, code, parser string) (string, error) {
			gotParser = parser
			return "// pretty\n" + code, nil
		})
		res, err := New(nil, f, nil).Generate(context.Background(), c, Target{Framework: framework.React, TypeScript: true},
			Options{Format: true, UseFormatter: true, SourceMap: true})
		require.NoError(t, err)
		assert.Equal(t, "babel-ts", gotParser)
		assert.True(t, res.Formatted)
		assert.True(t, strings.HasPrefix(res.Code, "// pretty\n"))
		assert.Empty(t, res.Map)
	})

	t.Run("failure falls back with a warning", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewLogger(logger.LevelWarn, &buf)
		f := FormatterFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("prettier: not found")
		})
		res, err := New(nil, f, log).Generate(context.Background(), c, Target{Framework: framework.React},
			Options{Format: true, UseFormatter: true})
		require.NoError(t, err)
		assert.Equal(t, reactCard, res.Code)
		assert.False(t, res.Formatted)
		assert.Contains(t, buf.String(), "formatter failed")
	})

	t.Run("formatter needs both flags", func(t *testing.T) {
		res := generate(t, c, Target{Framework: framework.React}, Options{Format: true})
		assert.Equal(t, reactCard, res.Code)
	})
}

func TestGenerate_CommentsAndMinify(t *testing.T) {
	c := mustParse(t, reactCard, framework.React)

	res := generate(t, c, Target{Framework: framework.React}, Options{Comments: true, Minify: true})
	lines := strings.Split(strings.TrimSuffix(res.Code, "\n"), "\n")
	assert.Equal(t, "// Generated by Plume for React", lines[0])
	for _, l := range lines {
		assert.NotEmpty(t, strings.TrimSpace(l))
		assert.Equal(t, strings.TrimRight(l, " \t"), l)
	}

	vue := generate(t, mustParse(t, "<template>\n  <div />\n</template>\n", framework.Vue), Target{Framework: framework.Vue}, Options{Comments: true})
	assert.True(t, strings.HasPrefix(vue.Code, "<!-- Generated by Plume for Vue -->\n<template>"))
}

func TestGenerate_SourceMap(t *testing.T) {
	c := mustParse(t, reactCard, framework.React)

	res := generate(t, c, Target{Framework: framework.React}, Options{SourceMap: true})
	require.NotEmpty(t, res.Map)

	var m SourceMap
	require.NoError(t, json.Unmarshal([]byte(res.Map), &m))
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, "Card.jsx", m.File)
	assert.Equal(t, []string{"Card.jsx"}, m.Sources)
	assert.Equal(t, []string{reactCard}, m.SourcesContent)
	assert.Equal(t, []int{-1, 1, 2, 3, 4, -1}, decodeMappings(m.Mappings))

	banner := generate(t, c, Target{Framework: framework.React}, Options{SourceMap: true, Comments: true})
	require.NoError(t, json.Unmarshal([]byte(banner.Map), &m))
	assert.Equal(t, []int{-1, -1, 1, 2, 3, 4, -1}, decodeMappings(m.Mappings))
}

func TestGenerate_Deterministic(t *testing.T) {
	src := "import { animate, stagger } from \"motion\";\nimport { scroll } from \"motion\";\nanimate(\"li\", { x: [0, 100] }, { delay: stagger(0.05) });\nscroll(animate(\"nav\", { opacity: [0, 1] }));\n"
	c := mustParse(t, src, framework.JS)

	first := generate(t, c, Target{Framework: framework.JS}, Options{Comments: true, SourceMap: true})
	for i := 0; i < 5; i++ {
		again := generate(t, c, Target{Framework: framework.JS}, Options{Comments: true, SourceMap: true})
		assert.Equal(t, first.Code, again.Code)
		assert.Equal(t, first.Map, again.Map)
	}
	assert.Equal(t, 1, strings.Count(first.Code, "from \"motion\""))
}

func TestGenerate_RoundTrip(t *testing.T) {
	sources := []struct {
		fw  framework.Framework
		src string
	}{
		{framework.React, reactCard},
		{framework.React, "const List = ({ items }) => (\n  <ul>\n    {items.map((i) => <motion.li key={i} layout exit={{ opacity: 0 }} {...rest} />)}\n  </ul>\n);\nexport default List;\n"},
		{framework.Vue, "<template>\n  <!-- hero -->\n  <motion.section :initial=\"{ y: 20 }\" @click=\"open = true\">Hi</motion.section>\n</template>\n\n<script setup lang=\"ts\">\nimport { ref } from 'vue'\nconst open = ref<boolean>(false)\n</script>\n"},
		{framework.React, "export default function Toast({ open }) {\n  return open && <motion.div exit={{ opacity: 0 }} />;\n}\n"},
		{framework.Vue, "<template>\n  <motion.div :while-hover=\"{ scale: 1.2 }\" />\n</template>\n\n<script setup>\nimport { ref } from \"vue\";\nconst open = ref(false)\n</script>\n"},
		{framework.JS, "import { animate } from \"motion\";\n\nanimate(\".box\", { rotate: 90 }, { duration: 0.5 });\n"},
	}

	for i, s := range sources {
		for _, target := range framework.All() {
			t.Run(fmt.Sprintf("%d %s->%s", i, s.fw, target), func(t *testing.T) {
				c := mustParse(t, s.src, s.fw)
				res := generate(t, c, Target{Framework: target}, Options{})
				_, err := parser.Parse(res.Code, parser.Options{Framework: target})
				require.NoError(t, err, res.Code)
			})
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	c := mustParse(t, reactCard, framework.React)

	_, err := New(nil, noFormat(t), nil).Generate(context.Background(), c, Target{Framework: "svelte"}, Options{})
	var unsupported *framework.UnsupportedError
	require.ErrorAs(t, err, &unsupported)

	broken := ast.NewTree()
	root := broken.Node(broken.Root())
	root.Children = append(root.Children, 42)
	_, err = New(nil, noFormat(t), nil).Generate(context.Background(), ast.NewComponent(framework.React, broken), Target{Framework: framework.React}, Options{})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "generation_error", genErr.Code())
	assert.Equal(t, "validate", genErr.Stage)
	assert.Contains(t, err.Error(), "dangling child 42")

	_, err = New(nil, noFormat(t), nil).Generate(context.Background(), nil, Target{Framework: framework.React}, Options{})
	require.ErrorAs(t, err, &genErr)
}
