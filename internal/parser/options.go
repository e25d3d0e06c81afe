package parser

import (
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// Options selects the framework and the syntax extensions to accept.
type Options struct {
	Framework  framework.Framework
	TypeScript bool
	// JSX overrides the framework's default for tag-like elements in
	// expression position. Nil keeps the default.
	JSX *bool
	// Plugins enables extra extensions by name: "jsx", "sfc",
	// "typescript", "decorators".
	Plugins []string
}

// flags is the resolved extension set for one parse.
type flags struct {
	jsx        bool
	sfc        bool
	typescript bool
	decorators bool
}

func resolveFlags(capability *framework.Capability, opts Options, log logger.Logger) flags {
	f := flags{
		jsx:        capability.HasExtension("jsx"),
		sfc:        capability.HasExtension("sfc"),
		typescript: opts.TypeScript,
	}

	for _, plugin := range opts.Plugins {
		switch plugin {
		case "jsx":
			f.jsx = true
		case "sfc":
			f.sfc = true
		case "typescript":
			f.typescript = true
		case "decorators":
			// Decorators pass through as ordinary code.
			f.decorators = true
		default:
			log.Debug("ignoring unknown parser plugin", logger.F("plugin", plugin))
		}
	}

	if opts.JSX != nil {
		f.jsx = *opts.JSX
	}
	return f
}
