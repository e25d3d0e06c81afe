// Package parser turns component source into an ast.ComponentAST.
//
// A single scanner accepts the markup forms of every supported framework.
// Which forms are recognized is controlled by extension flags (jsx, sfc,
// typescript) whose defaults come from the framework capability.
package parser

import (
	"strings"
	"unicode"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// Parser parses components against a capability table.
type Parser struct {
	caps *framework.Capabilities
	log  logger.Logger
}

// New creates a parser. A nil log discards debug output.
func New(caps *framework.Capabilities, log logger.Logger) *Parser {
	if caps == nil {
		caps = framework.Defaults()
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Parser{caps: caps, log: log}
}

// Parse parses source with the built-in capability table.
func Parse(source string, opts Options) (*ast.ComponentAST, error) {
	return New(nil, nil).Parse(source, opts)
}

// Parse parses source into a component. Malformed input yields a
// *ParseError; an unknown framework yields a *framework.UnsupportedError.
func (p *Parser) Parse(source string, opts Options) (*ast.ComponentAST, error) {
	capability, err := p.caps.Get(opts.Framework)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, newParseError(source, 0, "empty source")
	}

	s := &scanner{
		src:      source,
		limit:    len(source),
		flags:    resolveFlags(capability, opts, p.log),
		callName: capability.CallBinding,
		tree:     ast.NewTree(),
	}
	s.comp = ast.NewComponent(capability.Framework, s.tree)
	s.comp.TypeScript = opts.TypeScript
	s.comp.Source = source

	if s.flags.sfc && strings.HasPrefix(strings.TrimSpace(source), "<") {
		err = s.parseSFC()
	} else {
		_, err = s.scanScript(0, scanMode{parent: s.tree.Root(), topLevel: true})
	}
	if err != nil {
		return nil, err
	}

	s.comp.ComponentName = s.componentName(capability)
	p.log.Debug("parsed component",
		logger.F("framework", capability.Framework),
		logger.F("component", s.comp.ComponentName),
		logger.F("nodes", s.tree.Len()),
		logger.F("imports", len(s.comp.Imports)),
	)
	return s.comp, nil
}

// scanner is the state of one parse.
type scanner struct {
	src   string
	limit int
	flags flags

	callName string
	tree     *ast.Tree
	comp     *ast.ComponentAST

	declarations []string
	nameHint     string
}

// componentName applies the resolution order: default export identifier,
// then an uppercase function or class declaration for component-style
// frameworks, then the sentinel.
func (s *scanner) componentName(capability *framework.Capability) string {
	if d, ok := s.comp.DefaultExport(); ok && d.Declaration != "" {
		return d.Declaration
	}
	if s.nameHint != "" {
		return s.nameHint
	}
	if capability.ComponentStyle {
		for _, name := range s.declarations {
			if r := []rune(name); len(r) > 0 && unicode.IsUpper(r[0]) {
				return name
			}
		}
	}
	return ast.UnnamedComponent
}
