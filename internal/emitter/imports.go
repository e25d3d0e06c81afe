package emitter

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// FormatImport renders one declaration. A declaration mixing a namespace
// with named specifiers has no single-statement form and is written as two
// statements for the same module.
func FormatImport(d ast.ImportDeclaration) string {
	var def, ns string
	var named []string
	for _, s := range d.Specifiers {
		switch s.Kind {
		case ast.SpecifierDefault:
			def = s.Local
		case ast.SpecifierNamespace:
			ns = "* as " + s.Local
		default:
			named = append(named, formatNamed(s))
		}
	}

	keyword := "import "
	if d.TypeOnly {
		keyword = "import type "
	}
	from := `"` + d.Source + `";`

	if def == "" && ns == "" && len(named) == 0 {
		return "import " + from
	}

	var heads []string
	if def != "" {
		heads = append(heads, def)
	}
	if ns != "" {
		heads = append(heads, ns)
	}
	list := ""
	if len(named) > 0 {
		list = "{ " + strings.Join(named, ", ") + " }"
	}

	switch {
	case ns != "" && list != "":
		return keyword + strings.Join(heads, ", ") + " from " + from + "\n" +
			keyword + list + " from " + from
	case list != "":
		heads = append(heads, list)
	}
	return keyword + strings.Join(heads, ", ") + " from " + from
}

func formatNamed(s ast.ImportSpecifier) string {
	out := s.Imported
	if s.Imported == "" {
		out = s.Local
	}
	if s.Local != "" && s.Local != out {
		out += " as " + s.Local
	}
	if s.TypeOnly {
		out = "type " + out
	}
	return out
}

// FormatImports renders every declaration, one statement per line.
func FormatImports(imports []ast.ImportDeclaration) string {
	var b strings.Builder
	for _, d := range imports {
		b.WriteString(FormatImport(d))
		b.WriteByte('\n')
	}
	return b.String()
}
