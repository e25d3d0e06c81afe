package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

func TestEvalLiteral(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`"hello"`, `"hello"`},
		{`'it\'s'`, `"it's"`},
		{"`plain`", `"plain"`},
		{"`a ${b}`", `{"$opaque":"` + "`a ${b}`" + `"}`},
		{`42`, `42`},
		{`-0.5`, `-0.5`},
		{`1_000`, `1000`},
		{`0x10`, `16`},
		{`1e3`, `1000`},
		{`true`, `true`},
		{`null`, `null`},
		{`undefined`, `null`},
		{`[0, 1, "a"]`, `[0,1,"a"]`},
		{`{ x: 100, "y": -20, scale: [1, 1.2] }`, `{"x":100,"y":-20,"scale":[1,1.2]}`},
		{`{ opacity: 1, transition: { duration: 0.3, ease: easeOut } }`, `{"opacity":1,"transition":{"duration":0.3,"ease":{"$opaque":"easeOut"}}}`},
		{`{ x }`, `{"x":{"$opaque":"x"}}`},
		{`{ ...base, x: 1 }`, `{"$opaque":"{ ...base, x: 1 }"}`},
		{`{ [key]: 1 }`, `{"$opaque":"{ [key]: 1 }"}`},
		{`cond ? 1 : 0`, `{"$opaque":"cond ? 1 : 0"}`},
		{`1 + 2`, `{"$opaque":"1 + 2"}`},
		{`{ a: fn(1, 2), b: 3 }`, `{"a":{"$opaque":"fn(1, 2)"},"b":3}`},
		{`Infinity`, `{"$opaque":"Infinity"}`},
		{`  `, `{"$opaque":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			data, err := json.Marshal(EvalLiteral(tt.expr))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestEvalLiteral_KeepsFieldOrder(t *testing.T) {
	v := EvalLiteral(`{ z: 1, a: 2, m: 3 }`)
	require.Equal(t, ast.ValueObject, v.Kind)
	var names []string
	for _, f := range v.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestPropName(t *testing.T) {
	tests := []struct {
		attr  ast.Attribute
		name  string
		bound bool
		ok    bool
	}{
		{ast.Attribute{Name: "animate"}, "animate", false, true},
		{ast.Attribute{Name: ":animate"}, "animate", true, true},
		{ast.Attribute{Name: "v-bind:while-hover"}, "whileHover", true, true},
		{ast.Attribute{Name: "aria-label"}, "aria-label", false, true},
		{ast.Attribute{Name: "@click"}, "", false, false},
		{ast.Attribute{Name: "v-on:hover"}, "", false, false},
		{ast.Attribute{Name: "v-if"}, "", false, false},
		{ast.Attribute{Kind: ast.AttrSpread, Value: "props"}, "", false, false},
	}
	for _, tt := range tests {
		name, bound, ok := PropName(tt.attr)
		assert.Equal(t, tt.name, name, tt.attr.Name)
		assert.Equal(t, tt.bound, bound, tt.attr.Name)
		assert.Equal(t, tt.ok, ok, tt.attr.Name)
	}
}
