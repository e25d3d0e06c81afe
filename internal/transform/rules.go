package transform

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
)

// MotionProps are the props that only mean something on animated elements.
var MotionProps = []string{
	"animate", "initial", "exit", "whileHover", "whileTap", "whileInView",
	"whileFocus", "whileDrag", "layout", "layoutId", "variants", "drag",
}

const presenceTag = "AnimatePresence"

// DefaultRules returns the built-in rules in application order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "promote-animated-markup",
			Description: "Intrinsic elements carrying motion props become motion elements",
			Frameworks:  framework.SetOf(framework.React, framework.Vue),
			Condition: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) bool {
				n := tree.Node(id)
				return n.Kind == ast.KindElement && isIntrinsic(n.Tag) && motionPropIndex(n) >= 0
			},
			Transform: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) ([]ast.NodeID, error) {
				n := tree.Node(id)
				n.Tag = "motion." + n.Tag
				return []ast.NodeID{id}, nil
			},
		},
		{
			Name:        "bind-object-motion-props",
			Description: "Static motion attributes holding object or array literals become bindings in templates",
			Frameworks:  framework.SetOf(framework.Vue),
			Condition: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) bool {
				n := tree.Node(id)
				return n.IsMotion() && InTemplate(tree, id) && staticLiteralProp(n) >= 0
			},
			Transform: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) ([]ast.NodeID, error) {
				n := tree.Node(id)
				for i := staticLiteralProp(n); i >= 0; i = staticLiteralProp(n) {
					n.Attrs[i].Name = ":" + n.Attrs[i].Name
				}
				return []ast.NodeID{id}, nil
			},
		},
		{
			Name:        "wrap-exit-in-presence",
			Description: "Motion elements with exit animations are wrapped in AnimatePresence",
			Frameworks:  framework.SetOf(framework.React),
			Condition: func(tree *ast.Tree, id ast.NodeID, _ *genctx.Context) bool {
				n := tree.Node(id)
				if !n.IsMotion() || !n.HasAttr("exit") {
					return false
				}
				for _, a := range tree.Ancestors(id) {
					if p := tree.Node(a); p.Kind == ast.KindElement && p.Tag == presenceTag {
						return false
					}
				}
				return true
			},
			Transform: func(tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) ([]ast.NodeID, error) {
				// a conditional element mounts and unmounts with its
				// expression, so presence has to sit outside it
				target := id
				if p := tree.Parent(id); tree.Valid(p) {
					if n := tree.Node(p); n.Kind == ast.KindExpression && n.Tag == "{" {
						target = p
					}
				}
				w, err := tree.Wrap(target, ast.Node{Kind: ast.KindElement, Tag: presenceTag, Pos: -1})
				if err != nil {
					return nil, err
				}
				ctx.Imports.Add(presenceTag)
				return []ast.NodeID{w}, nil
			},
		},
	}
}

// isIntrinsic reports whether tag names a platform element (lowercase, not
// namespaced).
func isIntrinsic(tag string) bool {
	if tag == "" || strings.ContainsAny(tag, ".:") {
		return false
	}
	if c := tag[0]; c < 'a' || c > 'z' {
		return false
	}
	switch tag {
	case "template", "slot", "component", "transition", "keep-alive":
		return false
	}
	return true
}

func isMotionProp(name string) bool {
	for _, p := range MotionProps {
		if p == name {
			return true
		}
	}
	return false
}

// motionPropIndex returns the index of the first motion prop on n, or -1.
func motionPropIndex(n *ast.Node) int {
	for i, a := range n.Attrs {
		if name, _, ok := parser.PropName(a); ok && isMotionProp(name) {
			return i
		}
	}
	return -1
}

func staticLiteralProp(n *ast.Node) int {
	for i, a := range n.Attrs {
		if a.Kind != ast.AttrStatic || strings.HasPrefix(a.Name, ":") || strings.HasPrefix(a.Name, "v-") {
			continue
		}
		if name, _, ok := parser.PropName(a); !ok || !isMotionProp(name) {
			continue
		}
		v := strings.TrimSpace(a.Value)
		if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
			return i
		}
	}
	return -1
}

// InTemplate reports whether id sits inside a <template> block.
func InTemplate(tree *ast.Tree, id ast.NodeID) bool {
	for _, a := range tree.Ancestors(id) {
		if n := tree.Node(a); n.Kind == ast.KindBlock && n.Tag == "template" {
			return true
		}
	}
	return false
}
