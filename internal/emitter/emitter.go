// Package emitter turns a component tree back into source code for a
// target framework: it serializes the tree, converts between JSX and
// template forms, normalizes imports and typing, and optionally formats,
// minifies and source-maps the result.
package emitter

import (
	"context"
	"errors"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// Target selects the output framework and typing mode.
type Target struct {
	Framework  framework.Framework
	TypeScript bool
}

// Options controls output post-processing.
type Options struct {
	Format       bool `json:"format" yaml:"format" mapstructure:"format"`
	UseFormatter bool `json:"useFormatter" yaml:"use_formatter" mapstructure:"use_formatter"`
	Comments     bool `json:"comments" yaml:"comments" mapstructure:"comments"`
	SourceMap    bool `json:"sourceMap" yaml:"source_map" mapstructure:"source_map"`
	Minify       bool `json:"minify" yaml:"minify" mapstructure:"minify"`
}

// Result is generated code plus its import and export metadata.
type Result struct {
	Code       string
	Map        string
	Imports    []ast.ImportDeclaration
	Exports    []ast.ExportDeclaration
	Framework  framework.Framework
	TypeScript bool
	// Formatted reports whether the external formatter rewrote Code.
	Formatted bool
}

// Emitter generates code. It holds no per-request state.
type Emitter struct {
	caps      *framework.Capabilities
	formatter Formatter
	log       logger.Logger
}

// New creates an emitter. A nil formatter selects prettier; nil caps and
// log select the defaults.
func New(caps *framework.Capabilities, formatter Formatter, log logger.Logger) *Emitter {
	if caps == nil {
		caps = framework.Defaults()
	}
	if formatter == nil {
		formatter = NewCommandFormatter(nil, nil)
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Emitter{caps: caps, formatter: formatter, log: log}
}

// Generate emits c with the default emitter.
func Generate(ctx context.Context, c *ast.ComponentAST, target Target, opts Options) (*Result, error) {
	return New(nil, nil, nil).Generate(ctx, c, target, opts)
}

// Generate emits c for target. c is not modified.
func (e *Emitter) Generate(ctx context.Context, c *ast.ComponentAST, target Target, opts Options) (*Result, error) {
	to, err := e.caps.Get(target.Framework)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &GenerationError{Stage: "validate", Err: errors.New("no component")}
	}
	if err := validate(c.Tree); err != nil {
		return nil, &GenerationError{Stage: "validate", Err: err}
	}
	from, err := e.caps.Get(c.Framework())
	if err != nil {
		from = to
	}

	work := c.Clone()
	if from.Framework != to.Framework {
		switch {
		case from.NativeForm == framework.FormJSX && to.NativeForm == framework.FormTemplate && !isSFC(work.Tree):
			work.Tree = jsxToTemplate(work)
			work.Exports = []ast.ExportDeclaration{{Kind: ast.ExportDefault}}
		case to.NativeForm != framework.FormTemplate && isSFC(work.Tree):
			// script targets read JSX but not single-file components
			work.Tree = templateToJSX(work)
			work.Exports = []ast.ExportDeclaration{{Kind: ast.ExportDefault, Declaration: work.ComponentName}}
		}
		var dropped []string
		work.Imports, dropped = remapImports(work.Imports, from, to)
		if len(dropped) > 0 {
			e.log.Warn("dropped imports the target framework cannot use",
				logger.F("from", from.Framework),
				logger.F("to", to.Framework),
				logger.F("names", strings.Join(dropped, ", ")))
		}
	}

	sfc := isSFC(work.Tree)
	work.Imports = ast.MergeImports(reservedImports(work.Imports, bodyText(work.Tree), to))
	if sfc && target.TypeScript {
		typedScripts(work.Tree)
	}
	block := ast.NoNode
	if sfc {
		block = scriptBlock(work.Tree, len(work.Imports) > 0, target.TypeScript)
	}

	out, err := serialize(work.Tree, FormatImports(work.Imports), block)
	if err != nil {
		return nil, &GenerationError{Stage: "serialize", Err: err}
	}
	code := out.b.String()
	if target.TypeScript && to.Framework == framework.React {
		code = annotateComponent(code)
	}

	lines, mapping := strings.Split(code, "\n"), out.lines
	if opts.Comments {
		banner := "// Generated by Plume for " + to.DisplayName
		if sfc {
			banner = "<!-- Generated by Plume for " + to.DisplayName + " -->"
		}
		lines = append([]string{banner}, lines...)
		mapping = append([]int{-1}, mapping...)
	}
	code = strings.Join(lines, "\n")

	formatted := false
	if opts.Format && opts.UseFormatter {
		pretty, err := e.formatter.Format(ctx, code, formatterParser(to, sfc, target.TypeScript))
		switch {
		case err != nil:
			e.log.Warn("formatter failed, keeping unformatted code",
				logger.F("framework", to.Framework),
				logger.Err(err),
			)
		case pretty != code:
			code, formatted, mapping = pretty, true, nil
		}
	}
	if opts.Minify {
		code, mapping = minify(code, mapping)
	}

	res := &Result{
		Code:       code,
		Imports:    work.Imports,
		Exports:    work.Exports,
		Framework:  to.Framework,
		TypeScript: target.TypeScript,
		Formatted:  formatted,
	}
	if opts.SourceMap {
		if mapping == nil {
			e.log.Debug("source map skipped: formatter rewrote the code")
		} else {
			file := work.ComponentName + to.FileExt(target.TypeScript)
			source := c.ComponentName + from.FileExt(c.TypeScript)
			if res.Map, err = buildSourceMap(file, source, c.Source, mapping); err != nil {
				return nil, &GenerationError{Stage: "sourcemap", Err: err}
			}
		}
	}

	e.log.Debug("generated component",
		logger.F("framework", to.Framework),
		logger.F("component", work.ComponentName),
		logger.F("bytes", len(res.Code)),
		logger.F("formatted", formatted),
	)
	return res, nil
}

// formatterParser picks the pretty-printer syntax for the emitted form.
func formatterParser(to *framework.Capability, sfc, typescript bool) string {
	parser := to.FormatterParser(typescript)
	switch {
	case sfc:
		return "vue"
	case parser == "vue" && typescript:
		return "babel-ts"
	case parser == "vue":
		return "babel"
	}
	return parser
}

// minify drops blank lines and trailing whitespace, keeping the line
// mapping in step.
func minify(code string, mapping []int) (string, []int) {
	var kept []string
	var keptMap []int
	for i, l := range strings.Split(code, "\n") {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			continue
		}
		kept = append(kept, l)
		if mapping != nil && i < len(mapping) {
			keptMap = append(keptMap, mapping[i])
		}
	}
	code = strings.Join(kept, "\n") + "\n"
	if mapping == nil {
		return code, nil
	}
	return code, append(keptMap, -1)
}
