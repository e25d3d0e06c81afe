package parser

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// ReservedCall is the invocation recognized as an animated element.
const ReservedCall = "animate"

// callProps names the positional arguments of the reserved invocation.
var callProps = []string{"target", "keyframes", "options"}

// ExtractAnimatedElements lists every use of the animation namespace and of
// the reserved invocation in source order. Values that cannot be resolved
// statically are kept as opaque markers; extraction never fails.
func ExtractAnimatedElements(c *ast.ComponentAST) []ast.AnimatedElement {
	out := []ast.AnimatedElement{}
	if c == nil || c.Tree == nil {
		return out
	}
	tree := c.Tree
	tree.Walk(func(id ast.NodeID) bool {
		n := tree.Node(id)
		switch {
		case n.IsMotion():
			out = append(out, ast.AnimatedElement{Tag: n.Tag, Props: elementProps(n.Attrs), Node: id})
		case n.Kind == ast.KindCall && n.Tag == ReservedCall:
			out = append(out, ast.AnimatedElement{Tag: n.Tag, Props: callArgs(n.Args), Node: id})
		}
		return true
	})
	return out
}

func elementProps(attrs []ast.Attribute) []ast.Prop {
	props := make([]ast.Prop, 0, len(attrs))
	for _, a := range attrs {
		name, bound, ok := PropName(a)
		if !ok {
			continue
		}
		var v ast.Value
		switch {
		case a.Kind == ast.AttrBoolean:
			v = ast.Value{Kind: ast.ValueBool, Bool: true}
		case a.Kind == ast.AttrExpression || bound:
			v = EvalLiteral(a.Value)
		default:
			v = ast.Value{Kind: ast.ValueString, Str: a.Value}
		}
		props = append(props, ast.Prop{Name: name, Value: v})
	}
	return props
}

func callArgs(args []string) []ast.Prop {
	var props []ast.Prop
	for i, arg := range args {
		if i >= len(callProps) {
			break
		}
		if strings.TrimSpace(arg) == "" {
			continue
		}
		props = append(props, ast.Prop{Name: callProps[i], Value: EvalLiteral(arg)})
	}
	return props
}

// PropName normalizes an attribute name to its prop name. bound reports a
// Vue binding (:x, v-bind:x) whose value is an expression; ok is false for
// spreads, event handlers and other directives, which are not props.
func PropName(a ast.Attribute) (name string, bound, ok bool) {
	if a.Kind == ast.AttrSpread {
		return "", false, false
	}
	name = a.Name
	switch {
	case strings.HasPrefix(name, "@"), strings.HasPrefix(name, "v-on:"), strings.HasPrefix(name, "#"):
		return "", false, false
	case strings.HasPrefix(name, ":"):
		name, bound = name[1:], true
	case strings.HasPrefix(name, "v-bind:"):
		name, bound = name[len("v-bind:"):], true
	case strings.HasPrefix(name, "v-"):
		return "", false, false
	}
	if name == "" {
		return "", false, false
	}
	if strings.HasPrefix(name, "aria-") || strings.HasPrefix(name, "data-") {
		return name, bound, true
	}
	return camelCase(name), bound, true
}

func camelCase(name string) string {
	if !strings.Contains(name, "-") {
		return name
	}
	parts := strings.Split(name, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
