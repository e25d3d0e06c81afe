package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropsLine(t *testing.T) {
	tests := []struct {
		params string
		want   string
	}{
		{"", ""},
		{"{ open, label = \"Hi\", ...rest }", "const { open, label = \"Hi\", ...rest } = defineProps([\"open\", \"label\"])\n"},
		{"{ title }: CardProps", "const { title } = defineProps([\"title\"])\n"},
		{"props", "const props = defineProps()\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, propsLine(tt.params), tt.params)
	}
}

func TestSetupScript(t *testing.T) {
	pre := "import x from \"y\"\nexport default function Card({ open }) {\n  const n = 1\n  return (\n    "
	post := "\n  )\n}\n\nconst helper = 2\n"
	assert.Equal(t, "import x from \"y\"\nconst { open } = defineProps([\"open\"])\nconst n = 1\n\nconst helper = 2", setupScript(pre, post))

	arrow := setupScript("const Badge = ({ count }) => (\n  ", "\n);\n\nexport default Badge;\n")
	assert.Equal(t, "const { count } = defineProps([\"count\"])", arrow)
}

func TestExtractProps(t *testing.T) {
	params, rest := extractProps("const { items, max } = defineProps([\"items\", \"max\"])\nconst n = ref(0)\n")
	assert.Equal(t, "{ items, max }", params)
	assert.Equal(t, "const n = ref(0)\n", rest)

	params, rest = extractProps("defineProps({ a: String })\nconst b = 1\n")
	assert.Empty(t, params)
	assert.Equal(t, "const b = 1\n", rest)
}

func TestAttributeMapping(t *testing.T) {
	assert.Equal(t, "click", mustEvent(t, "onClick"))
	assert.Equal(t, "hoverstart", mustEvent(t, "onHoverStart"))
	_, ok := eventName("once")
	assert.False(t, ok)

	assert.Equal(t, "onHoverStart", "on"+pascal("hover-start"))
	assert.Equal(t, "toggle", handler("toggle"))
	assert.Equal(t, "() => open = !open", handler("open = !open"))
	assert.Equal(t, "(e) => select(e)", handler("(e) => select(e)"))
	assert.Equal(t, "() => { a(); b() }", handler("a(); b()"))

	assert.Equal(t, `{ backgroundColor: "red", "--gap": "4px" }`, styleObject("background-color: red; --gap: 4px;"))
	assert.Equal(t, `{"{"}a{"}"}`, escapeBraces("{a}"))
	assert.Equal(t, "{ a: 'b' }", quoteSafe(`{ a: "b" }`))
	assert.Equal(t, "[&quot;a&quot;, 'b']", quoteSafe(`["a", 'b']`))
}

func mustEvent(t *testing.T, prop string) string {
	t.Helper()
	e, ok := eventName(prop)
	assert.True(t, ok)
	return e
}

func TestDedentIndent(t *testing.T) {
	assert.Equal(t, "a\n  b\n", dedent("    a\n      b\n"))
	assert.Equal(t, "  a\n\n  b", indent("a\n\nb", "  "))
}
