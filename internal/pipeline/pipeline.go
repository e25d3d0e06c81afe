// Package pipeline wires the stages together: parse, transform, generate
// and optionally optimize. A Pipeline holds only read-only collaborators
// built at startup, so one value serves concurrent requests.
package pipeline

import (
	"context"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/emitter"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
	"github.com/simonhull/firebird-suite/plume/internal/transform"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// Context is the per-request generation state.
type Context = genctx.Context

// Optimization selects enhancement passes and analyzers.
type Optimization = genctx.Optimization

// NewContext creates the state for one request.
func NewContext(fw framework.Framework, typescript bool) *Context {
	return genctx.New(fw, typescript)
}

// Config holds the collaborators of a pipeline. Zero fields select the
// defaults.
type Config struct {
	Capabilities *framework.Capabilities
	Rules        *transform.Registry
	Formatter    emitter.Formatter
	Logger       logger.Logger
}

// Pipeline runs generation requests.
type Pipeline struct {
	caps    *framework.Capabilities
	parser  *parser.Parser
	engine  *transform.Engine
	emitter *emitter.Emitter
	log     logger.Logger
}

// New builds a pipeline. The rule registry is frozen.
func New(cfg Config) *Pipeline {
	if cfg.Capabilities == nil {
		cfg.Capabilities = framework.Defaults()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewSilentLogger()
	}
	return &Pipeline{
		caps:    cfg.Capabilities,
		parser:  parser.New(cfg.Capabilities, cfg.Logger),
		engine:  transform.NewEngine(cfg.Rules, cfg.Capabilities, cfg.Logger),
		emitter: emitter.New(cfg.Capabilities, cfg.Formatter, cfg.Logger),
		log:     cfg.Logger,
	}
}

// WithLogger returns a copy of the pipeline that logs to log.
func (p *Pipeline) WithLogger(log logger.Logger) *Pipeline {
	cp := *p
	cp.log = log
	return &cp
}

// Capabilities returns the capability table the pipeline was built with.
func (p *Pipeline) Capabilities() *framework.Capabilities { return p.caps }

// Request is one generation request.
type Request struct {
	Source string `json:"source"`
	// Framework is the target. SourceFramework is what Source is written
	// for; empty means the same as Framework.
	Framework       framework.Framework `json:"framework"`
	SourceFramework framework.Framework `json:"sourceFramework,omitempty"`
	TypeScript      bool                `json:"typescript"`
	JSX             *bool               `json:"jsx,omitempty"`
	Plugins         []string            `json:"plugins,omitempty"`

	Options      emitter.Options `json:"options"`
	Optimization Optimization    `json:"optimization"`
	// Optimize applies the selected analyzers' rewrites to the output.
	Optimize bool `json:"optimize,omitempty"`
}

func (r Request) sourceFramework() framework.Framework {
	if r.SourceFramework == "" {
		return r.Framework
	}
	return r.SourceFramework
}

// Result is a successful generation.
type Result struct {
	Code          string
	Map           string
	Imports       []ast.ImportDeclaration
	Exports       []ast.ExportDeclaration
	Framework     framework.Framework
	TypeScript    bool
	ComponentName string
	Dependencies  []string
	Suggestions   []optimizer.Suggestion
	Cost          *optimizer.Cost
	Formatted     bool
	Optimized     bool
}

// Run executes one request. Errors are typed per stage: an unsupported
// framework is reported before any parsing, and a failed request never
// returns partial output.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if _, err := p.caps.Get(req.Framework); err != nil {
		return nil, err
	}
	from := req.sourceFramework()
	if _, err := p.caps.Get(from); err != nil {
		return nil, err
	}

	comp, err := p.parser.Parse(req.Source, parser.Options{
		Framework:  from,
		TypeScript: req.TypeScript,
		JSX:        req.JSX,
		Plugins:    req.Plugins,
	})
	if err != nil {
		return nil, err
	}

	gctx := NewContext(req.Framework, req.TypeScript)
	gctx.ComponentName = comp.ComponentName
	gctx.Optimization = req.Optimization

	transformed, err := p.engine.Transform(comp, gctx)
	if err != nil {
		return nil, err
	}

	out, err := p.emitter.Generate(ctx, transformed, emitter.Target{Framework: req.Framework, TypeScript: req.TypeScript}, req.Options)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Code:          out.Code,
		Map:           out.Map,
		Imports:       out.Imports,
		Exports:       out.Exports,
		Framework:     out.Framework,
		TypeScript:    out.TypeScript,
		ComponentName: comp.ComponentName,
		Dependencies:  gctx.Dependencies.Values(),
		Suggestions:   make([]optimizer.Suggestion, 0),
		Formatted:     out.Formatted,
	}

	if req.Optimization.Any() {
		p.optimize(res, req)
	}

	p.log.Debug("generated component",
		logger.F("component", res.ComponentName),
		logger.F("from", from),
		logger.F("framework", res.Framework),
		logger.F("bytes", len(res.Code)),
		logger.F("suggestions", len(res.Suggestions)),
	)
	return res, nil
}

// optimize runs the selected analyzers over the generated code. A rewrite
// invalidates the line map, so it is dropped.
func (p *Pipeline) optimize(res *Result, req Request) {
	suite := optimizer.NewSuite(p.caps, req.Optimization)
	if req.Optimize {
		code := suite.Optimize(res.Code, res.Framework)
		if code != res.Code {
			res.Code = code
			res.Map = ""
			res.Optimized = true
		}
	}
	res.Suggestions = suite.Analyze(res.Code, res.Framework)

	if req.Optimization.BundleSize {
		// the framework was validated in Run
		cost, err := optimizer.NewBundleSize(p.caps).EstimateCost(res.Code, res.Framework)
		if err == nil {
			res.Cost = &cost
		}
	}
}

// Generate runs req and wraps the outcome in a response envelope.
func (p *Pipeline) Generate(ctx context.Context, req Request) *Response {
	res, err := p.Run(ctx, req)
	if err != nil {
		p.log.Debug("generation failed", logger.Err(err))
		return Failure(err)
	}
	return Success(res)
}

// Analyze runs the selected analyzers over code.
func (p *Pipeline) Analyze(code string, fw framework.Framework, opt Optimization) ([]optimizer.Suggestion, error) {
	if _, err := p.caps.Get(fw); err != nil {
		return nil, err
	}
	return optimizer.NewSuite(p.caps, opt).Analyze(code, fw), nil
}

// Optimize rewrites code with the selected analyzers and reports what is
// left to fix afterwards.
func (p *Pipeline) Optimize(code string, fw framework.Framework, opt Optimization) (string, []optimizer.Suggestion, error) {
	if _, err := p.caps.Get(fw); err != nil {
		return "", nil, err
	}
	suite := optimizer.NewSuite(p.caps, opt)
	out := suite.Optimize(code, fw)
	return out, suite.Analyze(out, fw), nil
}

// EstimateCost prices the animation features code uses.
func (p *Pipeline) EstimateCost(code string, fw framework.Framework) (optimizer.Cost, error) {
	return optimizer.NewBundleSize(p.caps).EstimateCost(code, fw)
}
