package parser

import (
	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

var declarationKeywords = map[string]bool{
	"function": true, "class": true, "const": true, "let": true, "var": true,
	"interface": true, "type": true, "enum": true,
}

// recordExport adds metadata for the export statement whose keyword ends at
// i. The statement text itself stays in the body.
func (s *scanner) recordExport(i int) error {
	src := s.src
	j, err := skipTrivia(src, i)
	if err != nil {
		return err
	}

	word, after := readIdent(src, j)
	switch {
	case word == "default":
		decl := ast.ExportDeclaration{Kind: ast.ExportDefault}
		k, err := skipTrivia(src, after)
		if err != nil {
			return err
		}
		name, next := readIdent(src, k)
		if name == "async" {
			if k, err = skipTrivia(src, next); err != nil {
				return err
			}
			name, next = readIdent(src, k)
		}
		switch {
		case name == "function" || name == "class":
			k, err = skipTrivia(src, next)
			if err != nil {
				return err
			}
			if k < s.limit && src[k] == '*' {
				if k, err = skipTrivia(src, k+1); err != nil {
					return err
				}
			}
			decl.Declaration, _ = readIdent(src, k)
		case name == "defineComponent":
			k, err = skipTrivia(src, next)
			if err != nil {
				return err
			}
			if k < s.limit && src[k] == '(' {
				if k, err = skipTrivia(src, k+1); err != nil {
					return err
				}
				s.objectNameHint(k)
			}
		case name != "":
			if k, err = skipTrivia(src, next); err != nil {
				return err
			}
			if k >= s.limit || src[k] == ';' || src[k] == '\n' || src[k] == '}' || precedingNewline(src, next, k) {
				decl.Declaration = name
			}
		case k < s.limit && src[k] == '{':
			s.objectNameHint(k)
		}
		s.comp.Exports = append(s.comp.Exports, decl)

	case word == "async" || declarationKeywords[word]:
		k := after
		if word == "async" {
			if k, err = skipTrivia(src, k); err != nil {
				return err
			}
			_, k = readIdent(src, k)
		}
		if k, err = skipTrivia(src, k); err != nil {
			return err
		}
		if k < s.limit && src[k] == '*' {
			if k, err = skipTrivia(src, k+1); err != nil {
				return err
			}
		}
		name, _ := readIdent(src, k)
		s.comp.Exports = append(s.comp.Exports, ast.ExportDeclaration{Kind: ast.ExportNamed, Declaration: name})

	case j < s.limit && src[j] == '{':
		specs, err := s.readExportList(j)
		if err != nil {
			return err
		}
		s.comp.Exports = append(s.comp.Exports, ast.ExportDeclaration{Kind: ast.ExportNamed, Specifiers: specs})

	case j < s.limit && src[j] == '*':
		spec := ast.ExportSpecifier{Exported: "*", Local: "*"}
		k, err := skipTrivia(src, j+1)
		if err != nil {
			return err
		}
		if hasWordAt(src, k, "as") {
			if k, err = skipTrivia(src, k+2); err != nil {
				return err
			}
			spec.Exported, _ = s.readName(k)
		}
		s.comp.Exports = append(s.comp.Exports, ast.ExportDeclaration{Kind: ast.ExportNamed, Specifiers: []ast.ExportSpecifier{spec}})
	}
	return nil
}

func (s *scanner) readExportList(i int) ([]ast.ExportSpecifier, error) {
	src := s.src
	var specs []ast.ExportSpecifier
	j := i + 1
	for {
		var err error
		if j, err = skipTrivia(src, j); err != nil {
			return nil, err
		}
		if j >= s.limit {
			return nil, newParseError(src, i, "unclosed export list")
		}
		if src[j] == '}' {
			return specs, nil
		}
		local, after := s.readName(j)
		if local == "type" {
			if k, _ := skipTrivia(src, after); k < s.limit && src[k] != ',' && src[k] != '}' && !hasWordAt(src, k, "as") {
				local, after = s.readName(k)
			}
		}
		if local == "" {
			return nil, newParseError(src, j, "malformed export specifier")
		}
		spec := ast.ExportSpecifier{Exported: local, Local: local}
		if j, err = skipTrivia(src, after); err != nil {
			return nil, err
		}
		if hasWordAt(src, j, "as") {
			if j, err = skipTrivia(src, j+2); err != nil {
				return nil, err
			}
			spec.Exported, j = s.readName(j)
		}
		specs = append(specs, spec)
		if j < s.limit && src[j] == ',' {
			j++
		}
	}
}

// recordDeclaration notes a top level function or class name for component
// name resolution.
func (s *scanner) recordDeclaration(i int) {
	j, err := skipTrivia(s.src, i)
	if err != nil {
		return
	}
	if j < s.limit && s.src[j] == '*' {
		if j, err = skipTrivia(s.src, j+1); err != nil {
			return
		}
	}
	if name, _ := readIdent(s.src, j); name != "" {
		s.declarations = append(s.declarations, name)
	}
}

// objectNameHint reads the "name" field of the object literal at i, as in
// export default { name: "Card" }.
func (s *scanner) objectNameHint(i int) {
	if s.nameHint != "" || i >= s.limit || s.src[i] != '{' {
		return
	}
	end, err := s.scanScript(i+1, scanMode{parent: ast.NoNode, close: '}'})
	if err != nil {
		return
	}
	obj := EvalLiteral(s.src[i : end+1])
	if name, ok := obj.Field("name"); ok && name.Kind == ast.ValueString && name.Str != "" {
		s.nameHint = name.Str
	}
}

func precedingNewline(src string, from, to int) bool {
	for k := from; k < to && k < len(src); k++ {
		if src[k] == '\n' {
			return true
		}
	}
	return false
}
