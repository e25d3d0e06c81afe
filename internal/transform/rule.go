// Package transform rewrites a parsed component. Generic rules from a
// Registry run first, in registration order; a fixed framework pass
// (import injection, accessibility and performance hints) runs second.
package transform

import (
	"fmt"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
)

// Condition decides whether a rule applies to a node.
type Condition func(tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) bool

// Action rewrites a node. It returns the ids that take the node's place:
// the node itself for an in-place rewrite, several ids to splice, none to
// remove it. An action may also restructure the tree itself (Tree.Wrap);
// the engine then only attaches returned ids that are still detached.
type Action func(tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) ([]ast.NodeID, error)

// Rule is one declarative rewrite. Rules are values; once registered they
// are never modified.
type Rule struct {
	Name        string
	Description string
	// Frameworks scopes the rule. The empty set means every framework.
	Frameworks framework.Set
	Condition  Condition
	Transform  Action
}

// AppliesTo reports whether the rule is in scope for fw.
func (r Rule) AppliesTo(fw framework.Framework) bool {
	return r.Frameworks.Empty() || r.Frameworks.Has(fw)
}

func (r Rule) validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("rule has no name")
	case r.Condition == nil:
		return fmt.Errorf("rule %s has no condition", r.Name)
	case r.Transform == nil:
		return fmt.Errorf("rule %s has no transform", r.Name)
	}
	return nil
}

// RuleError reports a rule that failed or panicked. The transform that hit
// it is abandoned as a whole.
type RuleError struct {
	Rule string
	Node ast.NodeID
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed on node %d: %v", e.Rule, e.Node, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Code is the stable error code used in response envelopes.
func (e *RuleError) Code() string { return "transform_rule_error" }
