package transform

import (
	"fmt"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// Engine applies a frozen rule registry and the framework pass. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	rules *Registry
	caps  *framework.Capabilities
	log   logger.Logger
}

// NewEngine creates an engine. The registry is frozen; nil arguments select
// the defaults.
func NewEngine(rules *Registry, caps *framework.Capabilities, log logger.Logger) *Engine {
	if rules == nil {
		rules = DefaultRegistry()
	}
	if caps == nil {
		caps = framework.Defaults()
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Engine{rules: rules.Freeze(), caps: caps, log: log}
}

// Transform rewrites a copy of c for ctx.Framework and returns it. The
// input component is never modified. On error nothing is committed: c and
// ctx are left as they were.
func (e *Engine) Transform(c *ast.ComponentAST, ctx *genctx.Context) (*ast.ComponentAST, error) {
	capability, err := e.caps.Get(ctx.Framework)
	if err != nil {
		return nil, err
	}

	work := c.Clone()
	scratch := ctx.Clone()

	applied := 0
	for _, rule := range e.rules.For(ctx.Framework) {
		n, err := e.applyRule(rule, work.Tree, scratch)
		if err != nil {
			return nil, err
		}
		applied += n
	}

	FrameworkPass(work, scratch, capability)

	*ctx = *scratch
	e.log.Debug("transformed component",
		logger.F("framework", ctx.Framework),
		logger.F("component", work.ComponentName),
		logger.F("rewrites", applied),
		logger.F("imports", len(work.Imports)),
	)
	return work, nil
}

// applyRule runs one rule over a snapshot of the attached nodes. Nodes the
// rule creates are not revisited by it.
func (e *Engine) applyRule(rule Rule, tree *ast.Tree, ctx *genctx.Context) (int, error) {
	created := ast.NodeID(tree.Len())
	applied := 0
	for _, id := range tree.Preorder() {
		if id >= created || id == tree.Root() || !tree.Attached(id) {
			continue
		}
		ok, err := safeCondition(rule, tree, id, ctx)
		if err != nil {
			return applied, &RuleError{Rule: rule.Name, Node: id, Err: err}
		}
		if !ok {
			continue
		}
		if err := e.rewrite(rule, tree, id, ctx); err != nil {
			return applied, &RuleError{Rule: rule.Name, Node: id, Err: err}
		}
		applied++
	}
	return applied, nil
}

func (e *Engine) rewrite(rule Rule, tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) error {
	parent := tree.Parent(id)
	index := tree.IndexOf(parent, id)

	repl, err := safeTransform(rule, tree, id, ctx)
	if err != nil {
		return err
	}
	for _, r := range repl {
		if !tree.Valid(r) || r == tree.Root() {
			return fmt.Errorf("invalid replacement node %d", r)
		}
	}
	if len(repl) == 1 && repl[0] == id {
		return nil
	}

	if tree.Parent(id) == parent && tree.IndexOf(parent, id) == index {
		return tree.Replace(id, repl)
	}
	// The action restructured the tree itself; attach whatever it left loose.
	for k, r := range repl {
		if !tree.Attached(r) {
			tree.InsertChild(parent, index+k, r)
		}
	}
	return nil
}

func safeCondition(rule Rule, tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("condition panicked: %v", r)
		}
	}()
	return rule.Condition(tree, id, ctx), nil
}

func safeTransform(rule Rule, tree *ast.Tree, id ast.NodeID, ctx *genctx.Context) (repl []ast.NodeID, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return rule.Transform(tree, id, ctx)
}
