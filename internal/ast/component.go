package ast

import (
	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// UnnamedComponent is the name used when no component name can be resolved.
const UnnamedComponent = "UnnamedComponent"

// SpecifierKind distinguishes the three import binding forms.
type SpecifierKind string

const (
	SpecifierDefault   SpecifierKind = "default"
	SpecifierNamed     SpecifierKind = "named"
	SpecifierNamespace SpecifierKind = "namespace"
)

// ImportSpecifier is one binding introduced by an import.
type ImportSpecifier struct {
	Kind     SpecifierKind `json:"kind"`
	Imported string        `json:"imported,omitempty"`
	Local    string        `json:"local"`
	// TypeOnly marks an inline "type" modifier: import { type X }.
	TypeOnly bool `json:"typeOnly,omitempty"`
}

// ImportDeclaration is one import statement. Within a ComponentAST no two
// declarations share a Source.
type ImportDeclaration struct {
	Source     string            `json:"source"`
	Specifiers []ImportSpecifier `json:"specifiers"`
	TypeOnly   bool              `json:"typeOnly,omitempty"`
}

// ExportKind distinguishes default from named exports.
type ExportKind string

const (
	ExportDefault ExportKind = "default"
	ExportNamed   ExportKind = "named"
)

// ExportSpecifier is one entry of an export list.
type ExportSpecifier struct {
	Exported string `json:"exported"`
	Local    string `json:"local"`
}

// ExportDeclaration is export metadata; the statement itself stays in the
// body text.
type ExportDeclaration struct {
	Kind        ExportKind        `json:"kind"`
	Declaration string            `json:"declaration,omitempty"`
	Specifiers  []ExportSpecifier `json:"specifiers,omitempty"`
}

// ComponentAST is the parsed form of one component.
type ComponentAST struct {
	framework     framework.Framework
	ComponentName string
	Tree          *Tree
	Imports       []ImportDeclaration
	Exports       []ExportDeclaration
	TypeScript    bool
	// Source is the text the component was parsed from. Node positions
	// are offsets into it.
	Source string
}

// NewComponent creates a component for fw. The framework cannot change
// afterwards.
func NewComponent(fw framework.Framework, tree *Tree) *ComponentAST {
	if tree == nil {
		tree = NewTree()
	}
	return &ComponentAST{framework: fw, Tree: tree, ComponentName: UnnamedComponent}
}

// Framework returns the framework the component was parsed as.
func (c *ComponentAST) Framework() framework.Framework { return c.framework }

// Clone deep-copies the component, tree included.
func (c *ComponentAST) Clone() *ComponentAST {
	cp := &ComponentAST{
		framework:     c.framework,
		ComponentName: c.ComponentName,
		TypeScript:    c.TypeScript,
		Source:        c.Source,
	}
	if c.Tree != nil {
		cp.Tree = c.Tree.Clone()
	}
	cp.Imports = CloneImports(c.Imports)
	cp.Exports = make([]ExportDeclaration, len(c.Exports))
	for i, e := range c.Exports {
		e.Specifiers = append([]ExportSpecifier(nil), e.Specifiers...)
		cp.Exports[i] = e
	}
	return cp
}

// CloneImports deep-copies an import list.
func CloneImports(in []ImportDeclaration) []ImportDeclaration {
	if in == nil {
		return nil
	}
	out := make([]ImportDeclaration, len(in))
	for i, d := range in {
		d.Specifiers = append([]ImportSpecifier(nil), d.Specifiers...)
		out[i] = d
	}
	return out
}

// DefaultExport returns the default export, if any.
func (c *ComponentAST) DefaultExport() (ExportDeclaration, bool) {
	for _, e := range c.Exports {
		if e.Kind == ExportDefault {
			return e, true
		}
	}
	return ExportDeclaration{}, false
}
