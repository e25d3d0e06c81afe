package transform

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
)

// DefaultLabel is the accessible name given to unlabeled interactive
// elements.
const DefaultLabel = "Interactive element"

// FrameworkPass runs the fixed second pass: import injection, then the
// accessibility and performance enhancements selected by ctx. Every step
// checks for its own output first, so running it twice changes nothing.
func FrameworkPass(c *ast.ComponentAST, ctx *genctx.Context, capability *framework.Capability) {
	InjectImports(c, ctx, capability)
	if ctx.Optimization.Accessibility {
		EnhanceAccessibility(c.Tree)
	}
	if ctx.Optimization.Performance {
		EnhancePerformance(c.Tree)
	}
}

// InjectImports imports the bindings the component's animated elements
// need, plus any names accumulated in ctx.Imports, from the motion module.
// Names already bound by an import are left alone. It reports whether the
// import list changed.
func InjectImports(c *ast.ComponentAST, ctx *genctx.Context, capability *framework.Capability) bool {
	for _, el := range parser.ExtractAnimatedElements(c) {
		switch {
		case el.Tag == parser.ReservedCall:
			ctx.Imports.Add(capability.CallBinding)
		case strings.HasPrefix(el.Tag, "m."):
			ctx.Imports.Add("m")
		default:
			ctx.Imports.Add(capability.ElementBinding)
		}
	}
	if ctx.Imports.Len() == 0 {
		return false
	}

	changed := false
	for _, name := range ctx.Imports.Values() {
		var added bool
		c.Imports, added = ast.AddNamed(c.Imports, capability.MotionModule, name)
		changed = changed || added
	}
	ctx.Dependencies.Add(capability.MotionModule)
	return changed
}

var interactiveProps = []string{"whileHover", "whileTap", "whileFocus", "onClick", "onTap"}

// IsInteractive reports whether an element responds to pointer or keyboard
// interaction.
func IsInteractive(n *ast.Node) bool {
	if n.Kind != ast.KindElement {
		return false
	}
	if n.Tag == "button" || n.Tag == "a" || n.Tag == "motion.button" || n.Tag == "motion.a" {
		return true
	}
	if !n.IsMotion() {
		return false
	}
	for _, a := range n.Attrs {
		if a.Name == "@click" || a.Name == "v-on:click" {
			return true
		}
		name, _, ok := parser.PropName(a)
		if !ok {
			continue
		}
		for _, p := range interactiveProps {
			if name == p {
				return true
			}
		}
	}
	return false
}

// HasLabel reports whether an element carries an accessible name.
func HasLabel(n *ast.Node) bool {
	for _, a := range n.Attrs {
		if name, _, ok := parser.PropName(a); ok && (name == "aria-label" || name == "aria-labelledby") {
			return true
		}
	}
	return false
}

// EnhanceAccessibility labels interactive elements that have no accessible
// name. It returns the number of labels added.
func EnhanceAccessibility(tree *ast.Tree) int {
	added := 0
	tree.Walk(func(id ast.NodeID) bool {
		n := tree.Node(id)
		if IsInteractive(n) && !HasLabel(n) {
			n.Attrs = append(n.Attrs, ast.Attribute{Name: "aria-label", Kind: ast.AttrStatic, Value: DefaultLabel})
			added++
		}
		return true
	})
	return added
}

// transformCarriers are the props whose values can hold transform keys.
var transformCarriers = map[string]bool{
	"animate": true, "initial": true, "exit": true, "whileHover": true,
	"whileTap": true, "whileInView": true, "whileFocus": true, "whileDrag": true,
	"style": true, "variants": true,
}

// IsTransformKey reports whether a style key animates a transform.
func IsTransformKey(key string) bool {
	switch key {
	case "x", "y", "z", "transform":
		return true
	}
	for _, prefix := range []string{"scale", "rotate", "skew", "translate"} {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// EnhancePerformance adds a willChange hint to motion elements animating
// transforms. Elements already hinted, or whose style cannot be read
// statically, are skipped. It returns the number of hints added.
func EnhancePerformance(tree *ast.Tree) int {
	added := 0
	tree.Walk(func(id ast.NodeID) bool {
		n := tree.Node(id)
		if !n.IsMotion() || !animatesTransform(n) {
			return true
		}
		if addWillChange(n, InTemplate(tree, id)) {
			added++
		}
		return true
	})
	return added
}

func animatesTransform(n *ast.Node) bool {
	for _, a := range n.Attrs {
		name, bound, ok := parser.PropName(a)
		if !ok || !transformCarriers[name] {
			continue
		}
		if a.Kind != ast.AttrExpression && !bound {
			continue
		}
		if hasTransformKey(parser.EvalLiteral(a.Value)) {
			return true
		}
	}
	return false
}

func hasTransformKey(v ast.Value) bool {
	switch v.Kind {
	case ast.ValueObject:
		for _, f := range v.Fields {
			if IsTransformKey(f.Name) || hasTransformKey(f.Value) {
				return true
			}
		}
	case ast.ValueArray:
		for _, it := range v.Items {
			if hasTransformKey(it) {
				return true
			}
		}
	}
	return false
}

func styleIndex(n *ast.Node) int {
	for i, a := range n.Attrs {
		if name, _, ok := parser.PropName(a); ok && name == "style" {
			return i
		}
	}
	return -1
}

// HasWillChange reports whether the element's style already carries the
// hint.
func HasWillChange(n *ast.Node) bool {
	i := styleIndex(n)
	if i < 0 {
		return false
	}
	v := n.Attrs[i].Value
	return strings.Contains(v, "willChange") || strings.Contains(v, "will-change")
}

func addWillChange(n *ast.Node, template bool) bool {
	if HasWillChange(n) {
		return false
	}
	i := styleIndex(n)
	if i < 0 {
		if template {
			n.Attrs = append(n.Attrs, ast.Attribute{Name: ":style", Kind: ast.AttrStatic, Value: "{ willChange: 'transform' }"})
		} else {
			n.Attrs = append(n.Attrs, ast.Attribute{Name: "style", Kind: ast.AttrExpression, Value: `{ willChange: "transform" }`})
		}
		return true
	}

	a := &n.Attrs[i]
	_, bound, _ := parser.PropName(*a)
	switch {
	case a.Kind == ast.AttrExpression:
		if parser.EvalLiteral(a.Value).Kind != ast.ValueObject {
			return false
		}
		a.Value = appendField(a.Value, `willChange: "transform"`)
	case a.Kind == ast.AttrStatic && bound:
		if parser.EvalLiteral(a.Value).Kind != ast.ValueObject {
			return false
		}
		a.Value = appendField(a.Value, `willChange: 'transform'`)
	case a.Kind == ast.AttrStatic:
		css := strings.TrimRight(strings.TrimSpace(a.Value), "; ")
		if css != "" {
			css += "; "
		}
		a.Value = css + "will-change: transform"
	default:
		return false
	}
	return true
}

// appendField adds field to the end of an object literal's source.
func appendField(obj, field string) string {
	trimmed := strings.TrimSpace(obj)
	body := strings.TrimRight(trimmed[1:len(trimmed)-1], " \t\r\n")
	if strings.TrimSpace(body) == "" {
		return "{ " + field + " }"
	}
	if !strings.HasSuffix(body, ",") {
		body += ","
	}
	return "{" + body + " " + field + " }"
}
