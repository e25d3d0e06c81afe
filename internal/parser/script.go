package parser

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// scanMode controls one run of scanScript.
type scanMode struct {
	// parent receives Code, Element and Call nodes. NoNode discards them.
	parent ast.NodeID
	// close is the bracket that ends the run when seen at depth zero. Zero
	// means the run ends at the scanner limit.
	close byte
	// topLevel enables import lifting and export/declaration bookkeeping.
	topLevel bool
	// commas, when set, collects depth-zero comma offsets.
	commas *[]int
}

type openBracket struct {
	char byte
	pos  int
}

var closerOf = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// scanScript scans script text from start. It returns the offset of the
// closing bracket (for bracketed runs) or the limit.
func (s *scanner) scanScript(start int, m scanMode) (int, error) {
	src := s.src
	i := start
	codeStart := start
	cls, last := tokNone, byte(0)
	prevWord := ""
	var stack []openBracket

	flush := func(end int) {
		if m.parent != ast.NoNode && end > codeStart {
			id := s.tree.Add(ast.Node{Kind: ast.KindCode, Text: src[codeStart:end], Pos: codeStart})
			s.tree.AppendChild(m.parent, id)
		}
	}

	for i < s.limit {
		c := src[i]
		switch {
		case isSpace(c):
			i++
			continue

		case c == '/' && i+1 < s.limit && src[i+1] == '/':
			i = skipLineComment(src, i)
			continue

		case c == '/' && i+1 < s.limit && src[i+1] == '*':
			end, err := skipBlockComment(src, i)
			if err != nil {
				return i, err
			}
			i = end
			continue

		case c == '\'' || c == '"':
			end, err := skipString(src, i)
			if err != nil {
				return i, err
			}
			i, cls = end, tokValue

		case c == '`':
			end, err := s.skipTemplateLiteral(i)
			if err != nil {
				return i, err
			}
			i, cls = end, tokValue

		case c == '/':
			if expressionStart(cls, last) {
				end, err := skipRegex(src, i)
				if err != nil {
					return i, err
				}
				i, cls = end, tokValue
			} else {
				i, cls, last = i+1, tokPunct, c
			}

		case c == '(' || c == '[' || c == '{':
			stack = append(stack, openBracket{char: c, pos: i})
			i, cls, last = i+1, tokPunct, c

		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 {
				if c == m.close {
					flush(i)
					return i, nil
				}
				return i, newParseError(src, i, "unexpected %q", string(c))
			}
			top := stack[len(stack)-1]
			if closerOf[top.char] != c {
				return i, newParseError(src, i, "mismatched %q, expected %q", string(c), string(closerOf[top.char]))
			}
			stack = stack[:len(stack)-1]
			i, cls, last = i+1, tokPunct, c

		case c == ',' && len(stack) == 0 && m.commas != nil:
			*m.commas = append(*m.commas, i)
			i, cls, last = i+1, tokPunct, c

		case isIdentStart(c):
			word, end := readIdent(src, i)
			dotted := i > 0 && precedingChar(src, i) == '.'

			if m.topLevel && len(stack) == 0 && !dotted && s.statementStart(i, cls, last) {
				switch word {
				case "import":
					decl, stmtEnd, ok, err := s.parseImport(i)
					if err != nil {
						return i, err
					}
					if ok {
						flush(i)
						s.addImport(decl)
						i, codeStart = stmtEnd, stmtEnd
						cls, last = tokPunct, ';'
						continue
					}
				case "export":
					if err := s.recordExport(end); err != nil {
						return i, err
					}
				}
			}
			if m.topLevel && len(stack) == 0 && !dotted && (word == "function" || word == "class") {
				s.recordDeclaration(end)
			}

			if word == s.callName && !dotted && prevWord != "function" {
				if paren, err := skipTrivia(src, end); err == nil && paren < s.limit && src[paren] == '(' {
					flush(i)
					callEnd, err := s.parseCall(i, paren, m.parent)
					if err != nil {
						return i, err
					}
					i, codeStart = callEnd, callEnd
					cls, prevWord = tokValue, ""
					continue
				}
			}

			prevWord = word
			if operandKeywords[word] {
				cls = tokKeyword
			} else {
				cls = tokValue
			}
			i = end
			continue

		case isDigit(c):
			for i < s.limit && (isIdentPart(src[i]) || src[i] == '.') {
				i++
			}
			cls = tokValue

		case c == '<' && s.flags.jsx && expressionStart(cls, last) && s.elementAhead(i):
			flush(i)
			id, end, err := s.parseElement(i, markupJSX)
			if err != nil {
				return i, err
			}
			if m.parent != ast.NoNode {
				s.tree.AppendChild(m.parent, id)
			}
			i, codeStart, cls = end, end, tokValue

		default:
			i, cls, last = i+1, tokPunct, c
		}
		prevWord = ""
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return i, newParseError(src, top.pos, "unclosed %q", string(top.char))
	}
	if m.close != 0 {
		return i, newParseError(src, start, "unexpected end of input, expected %q", string(m.close))
	}
	flush(s.limit)
	return s.limit, nil
}

// skipTemplateLiteral skips a `…` literal, scanning ${} substitutions as
// script.
func (s *scanner) skipTemplateLiteral(i int) (int, error) {
	src := s.src
	for j := i + 1; j < s.limit; j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1, nil
		case '$':
			if j+1 < s.limit && src[j+1] == '{' {
				end, err := s.scanScript(j+2, scanMode{parent: ast.NoNode, close: '}'})
				if err != nil {
					return i, err
				}
				j = end
			}
		}
	}
	return i, newParseError(src, i, "unterminated template literal")
}

// parseCall records an invocation of the reserved call name. Arguments are
// kept raw (whitespace included) so they serialize unchanged.
func (s *scanner) parseCall(start, paren int, parent ast.NodeID) (int, error) {
	var commas []int
	end, err := s.scanScript(paren+1, scanMode{parent: ast.NoNode, close: ')', commas: &commas})
	if err != nil {
		return start, err
	}

	args := make([]string, 0, len(commas)+1)
	from := paren + 1
	for _, comma := range commas {
		args = append(args, s.src[from:comma])
		from = comma + 1
	}
	args = append(args, s.src[from:end])

	id := s.tree.Add(ast.Node{Kind: ast.KindCall, Tag: s.callName, Args: args, Pos: start})
	if parent != ast.NoNode {
		s.tree.AppendChild(parent, id)
	}
	return end + 1, nil
}

// statementStart reports whether offset i begins a statement.
func (s *scanner) statementStart(i int, cls tokenClass, last byte) bool {
	if cls == tokNone || (cls == tokPunct && (last == ';' || last == '}')) {
		return true
	}
	j := i - 1
	for j >= 0 && (s.src[j] == ' ' || s.src[j] == '\t') {
		j--
	}
	return j < 0 || s.src[j] == '\n'
}

// elementAhead reports whether the '<' at i opens an element rather than a
// comparison or a type parameter list.
func (s *scanner) elementAhead(i int) bool {
	if i+1 >= s.limit {
		return false
	}
	next := s.src[i+1]
	if next == '>' {
		return true
	}
	if !isIdentStart(next) {
		return false
	}
	if s.flags.typescript {
		// <T,> and <T extends U> are generic parameter lists.
		name, j := readIdent(s.src, i+1)
		j = skipSpace(s.src, j)
		if j < s.limit && s.src[j] == ',' {
			return false
		}
		if strings.HasPrefix(s.src[j:], "extends ") && name != "" {
			return false
		}
	}
	return true
}

func precedingChar(src string, i int) byte {
	for j := i - 1; j >= 0; j-- {
		if !isSpace(src[j]) {
			return src[j]
		}
	}
	return 0
}
