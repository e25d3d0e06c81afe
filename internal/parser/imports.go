package parser

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// parseImport reads the import statement starting at i. ok is false for
// dynamic import() and import.meta, which are ordinary expressions.
func (s *scanner) parseImport(i int) (decl ast.ImportDeclaration, end int, ok bool, err error) {
	src := s.src
	j, err := skipTrivia(src, i+len("import"))
	if err != nil {
		return decl, i, false, err
	}
	if j >= s.limit || src[j] == '(' || src[j] == '.' {
		return decl, i, false, nil
	}

	if word, after := readIdent(src, j); word == "type" {
		k, err := skipTrivia(src, after)
		if err != nil {
			return decl, i, false, err
		}
		// "import type from 'x'" binds a default named type.
		if k < s.limit && (src[k] == '{' || src[k] == '*' || isIdentStart(src[k])) && !hasWordAt(src, k, "from") {
			decl.TypeOnly = true
			j = k
		}
	}

	if j < s.limit && (src[j] == '"' || src[j] == '\'') {
		decl.Source, j, err = s.readModule(j)
		if err != nil {
			return decl, i, false, err
		}
		return decl, s.statementEnd(j), true, nil
	}

	for {
		switch {
		case j < s.limit && src[j] == '*':
			j, err = skipTrivia(src, j+1)
			if err != nil {
				return decl, i, false, err
			}
			if !hasWordAt(src, j, "as") {
				return decl, i, false, newParseError(src, j, "expected 'as' in namespace import")
			}
			j, err = skipTrivia(src, j+2)
			if err != nil {
				return decl, i, false, err
			}
			local, after := readIdent(src, j)
			if local == "" {
				return decl, i, false, newParseError(src, j, "expected namespace binding")
			}
			decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{Kind: ast.SpecifierNamespace, Local: local})
			j = after

		case j < s.limit && src[j] == '{':
			specs, after, err := s.readImportList(j)
			if err != nil {
				return decl, i, false, err
			}
			decl.Specifiers = append(decl.Specifiers, specs...)
			j = after

		case j < s.limit && isIdentStart(src[j]) && !hasWordAt(src, j, "from"):
			local, after := readIdent(src, j)
			decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{Kind: ast.SpecifierDefault, Local: local})
			j = after

		default:
			return decl, i, false, newParseError(src, j, "malformed import statement")
		}

		j, err = skipTrivia(src, j)
		if err != nil {
			return decl, i, false, err
		}
		if j < s.limit && src[j] == ',' {
			j, err = skipTrivia(src, j+1)
			if err != nil {
				return decl, i, false, err
			}
			continue
		}
		break
	}

	if !hasWordAt(src, j, "from") {
		return decl, i, false, newParseError(src, j, "expected 'from' in import statement")
	}
	j, err = skipTrivia(src, j+len("from"))
	if err != nil {
		return decl, i, false, err
	}
	decl.Source, j, err = s.readModule(j)
	if err != nil {
		return decl, i, false, err
	}
	return decl, s.statementEnd(j), true, nil
}

// readImportList reads { a, b as c, type D } starting at the brace.
func (s *scanner) readImportList(i int) ([]ast.ImportSpecifier, int, error) {
	src := s.src
	var specs []ast.ImportSpecifier
	j := i + 1
	for {
		var err error
		j, err = skipTrivia(src, j)
		if err != nil {
			return nil, i, err
		}
		if j >= s.limit {
			return nil, i, newParseError(src, i, "unclosed import list")
		}
		if src[j] == '}' {
			return specs, j + 1, nil
		}

		spec := ast.ImportSpecifier{Kind: ast.SpecifierNamed}
		name, after := s.readName(j)
		if name == "type" {
			if k, _ := skipTrivia(src, after); k < s.limit && src[k] != ',' && src[k] != '}' && !hasWordAt(src, k, "as") {
				spec.TypeOnly = true
				name, after = s.readName(k)
			}
		}
		if name == "" {
			return nil, i, newParseError(src, j, "malformed import specifier")
		}
		spec.Imported, spec.Local = name, name

		j, err = skipTrivia(src, after)
		if err != nil {
			return nil, i, err
		}
		if hasWordAt(src, j, "as") {
			j, err = skipTrivia(src, j+2)
			if err != nil {
				return nil, i, err
			}
			local, after := readIdent(src, j)
			if local == "" {
				return nil, i, newParseError(src, j, "expected local binding after 'as'")
			}
			spec.Local = local
			j, err = skipTrivia(src, after)
			if err != nil {
				return nil, i, err
			}
		}
		specs = append(specs, spec)

		if j < s.limit && src[j] == ',' {
			j++
		}
	}
}

// readName reads an identifier or a quoted module export name.
func (s *scanner) readName(i int) (string, int) {
	if i < s.limit && (s.src[i] == '"' || s.src[i] == '\'') {
		end, err := skipString(s.src, i)
		if err != nil {
			return "", i
		}
		return s.src[i+1 : end-1], end
	}
	return readIdent(s.src, i)
}

func (s *scanner) readModule(i int) (string, int, error) {
	if i >= s.limit || (s.src[i] != '"' && s.src[i] != '\'') {
		return "", i, newParseError(s.src, i, "expected module specifier string")
	}
	end, err := skipString(s.src, i)
	if err != nil {
		return "", i, err
	}
	return s.src[i+1 : end-1], end, nil
}

// statementEnd consumes an optional semicolon, trailing blanks and one
// newline after a lifted statement.
func (s *scanner) statementEnd(j int) int {
	k := j
	for k < s.limit && (s.src[k] == ' ' || s.src[k] == '\t') {
		k++
	}
	if k < s.limit && s.src[k] == ';' {
		k++
		j = k
		for k < s.limit && (s.src[k] == ' ' || s.src[k] == '\t') {
			k++
		}
	}
	if k < s.limit && s.src[k] == '\r' {
		k++
	}
	if k < s.limit && s.src[k] == '\n' {
		return k + 1
	}
	if k >= s.limit {
		return k
	}
	return j
}

// addImport merges decl into the component's import list.
func (s *scanner) addImport(decl ast.ImportDeclaration) {
	s.comp.Imports = ast.MergeImports(append(s.comp.Imports, decl))
}

// hasWordAt reports whether word appears at i as a whole identifier.
func hasWordAt(src string, i int, word string) bool {
	if !strings.HasPrefix(src[i:], word) {
		return false
	}
	end := i + len(word)
	return end >= len(src) || !isIdentPart(src[end])
}
