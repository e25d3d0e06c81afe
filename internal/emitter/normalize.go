package emitter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// legacyMotionModules are animation packages remapped along with the
// source framework's motion module when a component changes framework.
var legacyMotionModules = []string{"framer-motion"}

// reservedPattern matches a use of r: "Name." for member identifiers, a
// call otherwise. Declarations ("function name(") are captured in group 2.
func reservedPattern(r framework.ReservedIdentifier) *regexp.Regexp {
	name := regexp.QuoteMeta(r.Name)
	if r.Member {
		return regexp.MustCompile(`(^|[^.\w$])()` + name + `\s*\.`)
	}
	return regexp.MustCompile(`(^|[^.\w$])(function\s+)?` + name + `\s*(?:<[^<>()]*>)?\s*\(`)
}

// usesReserved reports whether body references r outside its own
// declaration.
func usesReserved(body string, r framework.ReservedIdentifier) bool {
	for _, m := range reservedPattern(r).FindAllStringSubmatch(body, -1) {
		if m[2] == "" {
			return true
		}
	}
	return false
}

// reservedImports adds the import every referenced reserved identifier
// needs, merged into existing declarations.
func reservedImports(imports []ast.ImportDeclaration, body string, capability *framework.Capability) []ast.ImportDeclaration {
	for _, r := range capability.Reserved {
		if ast.BindsLocal(imports, r.Name) || !usesReserved(body, r) {
			continue
		}
		if r.Kind == framework.ImportDefault {
			imports, _ = ast.AddDefault(imports, r.Source, r.Name)
		} else {
			imports, _ = ast.AddNamed(imports, r.Source, r.Name)
		}
	}
	return imports
}

// componentSignature matches a capitalized function declaration whose
// parameter list is directly followed by its body.
var componentSignature = regexp.MustCompile(`(function\s+[A-Z][\w$]*\s*(?:<[^<>()]*>)?\s*\([^()]*\))(\s*\{)`)

// annotateComponent gives the component function a JSX.Element return
// type. Functions that already declare one are left alone.
func annotateComponent(code string) string {
	loc := componentSignature.FindStringSubmatchIndex(code)
	if loc == nil {
		return code
	}
	return code[:loc[3]] + ": JSX.Element" + code[loc[3]:]
}

// isSFC reports whether the tree is made of single-file component blocks.
func isSFC(tree *ast.Tree) bool {
	for _, k := range tree.Node(tree.Root()).Children {
		if tree.Node(k).Kind == ast.KindBlock {
			return true
		}
	}
	return false
}

// scriptBlock returns the block imports belong in, preferring a setup
// script. With create set, a <script setup> block is added in front of the
// first block when there is none.
func scriptBlock(tree *ast.Tree, create, typescript bool) ast.NodeID {
	root := tree.Root()
	found, first := ast.NoNode, -1
	for i, k := range tree.Node(root).Children {
		n := tree.Node(k)
		if n.Kind != ast.KindBlock {
			continue
		}
		if first < 0 {
			first = i
		}
		if n.Tag == "script" && (found == ast.NoNode || n.HasAttr("setup")) {
			found = k
		}
	}
	if found != ast.NoNode || !create {
		return found
	}

	attrs := []ast.Attribute{{Name: "setup", Kind: ast.AttrBoolean}}
	if typescript {
		attrs = append(attrs, ast.Attribute{Name: "lang", Kind: ast.AttrStatic, Value: "ts"})
	}
	block := tree.Add(ast.Node{Kind: ast.KindBlock, Tag: "script", Attrs: attrs, Pos: -1})
	gap := tree.Add(ast.Node{Kind: ast.KindText, Text: "\n\n", Pos: -1})
	if first < 0 {
		first = 0
	}
	tree.InsertChild(root, first, block)
	tree.InsertChild(root, first+1, gap)
	return block
}

// typedScripts marks every script block as TypeScript.
func typedScripts(tree *ast.Tree) {
	for _, k := range tree.Node(tree.Root()).Children {
		n := tree.Node(k)
		if n.Kind != ast.KindBlock || n.Tag != "script" {
			continue
		}
		if a, _ := n.Attr("lang"); a != nil {
			if a.Value != "ts" && a.Value != "tsx" {
				a.Kind, a.Value = ast.AttrStatic, "ts"
			}
			continue
		}
		n.Attrs = append(n.Attrs, ast.Attribute{Name: "lang", Kind: ast.AttrStatic, Value: "ts"})
	}
}

// remapImports moves imports of the source framework's animation packages
// to the target's motion module. The React default import has no meaning
// outside React and the Vue runtime none inside it; both are dropped and
// the dropped local names are returned.
func remapImports(imports []ast.ImportDeclaration, from, to *framework.Capability) ([]ast.ImportDeclaration, []string) {
	moved := append([]string{from.MotionModule}, legacyMotionModules...)
	out := make([]ast.ImportDeclaration, 0, len(imports))
	var dropped []string
	for _, d := range ast.CloneImports(imports) {
		for _, m := range moved {
			if d.Source == m {
				d.Source = to.MotionModule
			}
		}
		switch {
		case from.Framework == framework.React && to.Framework != framework.React && d.Source == "react":
			kept := d.Specifiers[:0]
			for _, s := range d.Specifiers {
				if s.Kind == ast.SpecifierDefault {
					dropped = append(dropped, s.Local)
					continue
				}
				kept = append(kept, s)
			}
			if len(kept) == 0 {
				continue
			}
			d.Specifiers = kept
		case from.Framework == framework.Vue && to.Framework == framework.React && d.Source == "vue":
			for _, s := range d.Specifiers {
				dropped = append(dropped, s.Local)
			}
			continue
		}
		out = append(out, d)
	}
	return ast.MergeImports(out), dropped
}

// validate checks the tree can be walked: a program root, no dangling
// children, no cycles and only known node kinds.
func validate(tree *ast.Tree) error {
	if tree == nil || !tree.Valid(tree.Root()) || tree.Node(tree.Root()).Kind != ast.KindProgram {
		return errors.New("tree has no program root")
	}
	stack := []ast.NodeID{tree.Root()}
	visits := 0
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visits++; visits > tree.Len() {
			return errors.New("tree contains a cycle")
		}
		n := tree.Node(id)
		if n.Kind > ast.KindCall {
			return fmt.Errorf("node %d has unknown kind %s", id, n.Kind)
		}
		for _, c := range n.Children {
			if !tree.Valid(c) {
				return fmt.Errorf("node %d has dangling child %d", id, c)
			}
			stack = append(stack, c)
		}
	}
	return nil
}

// bodyText is the serialized tree without imports, used to look for
// reserved identifiers.
func bodyText(tree *ast.Tree) string {
	return strings.TrimSpace(render(tree, tree.Root()))
}
