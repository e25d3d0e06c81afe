package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// EvalLiteral resolves a script expression to a literal value. Objects,
// arrays, strings, numbers, booleans, null and undefined resolve
// recursively; anything else becomes an opaque marker over its source
// text. It never fails.
func EvalLiteral(expr string) ast.Value {
	r := &literalReader{s: expr}
	r.skip()
	if r.eof() {
		return ast.Opaque(expr)
	}
	v := r.element()
	r.skip()
	if !r.eof() {
		return ast.Opaque(expr)
	}
	return v
}

type literalReader struct {
	s string
	i int
}

func (r *literalReader) eof() bool { return r.i >= len(r.s) }

func (r *literalReader) peek() byte {
	if r.eof() {
		return 0
	}
	return r.s[r.i]
}

func (r *literalReader) skip() {
	for !r.eof() {
		switch {
		case isSpace(r.s[r.i]):
			r.i++
		case strings.HasPrefix(r.s[r.i:], "//"):
			r.i = skipLineComment(r.s, r.i)
		case strings.HasPrefix(r.s[r.i:], "/*"):
			end, err := skipBlockComment(r.s, r.i)
			if err != nil {
				r.i = len(r.s)
				return
			}
			r.i = end
		default:
			return
		}
	}
}

// element reads one value in list or field position. When the text is not
// a literal followed by a separator, the whole extent becomes opaque.
func (r *literalReader) element() ast.Value {
	start := r.i
	v, ok := r.value()
	if ok {
		r.skip()
		if r.eof() || r.peek() == ',' || r.peek() == '}' || r.peek() == ']' {
			return v
		}
	}
	r.i = start
	r.skipExpr()
	return ast.Opaque(r.s[start:r.i])
}

func (r *literalReader) value() (ast.Value, bool) {
	switch c := r.peek(); {
	case c == '{':
		return r.object()
	case c == '[':
		return r.array()
	case c == '"' || c == '\'':
		str, ok := r.quoted()
		return ast.Value{Kind: ast.ValueString, Str: str}, ok
	case c == '`':
		return r.template()
	case isDigit(c) || c == '-' || c == '+' || c == '.':
		return r.number()
	case isIdentStart(c):
		word, end := readIdent(r.s, r.i)
		r.i = end
		switch word {
		case "true":
			return ast.Value{Kind: ast.ValueBool, Bool: true}, true
		case "false":
			return ast.Value{Kind: ast.ValueBool}, true
		case "null":
			return ast.Value{Kind: ast.ValueNull}, true
		case "undefined":
			return ast.Value{Kind: ast.ValueUndefined}, true
		}
	}
	return ast.Value{}, false
}

func (r *literalReader) object() (ast.Value, bool) {
	start := r.i
	r.i++
	obj := ast.Value{Kind: ast.ValueObject, Fields: []ast.Prop{}}
	for {
		r.skip()
		if r.eof() {
			return ast.Value{}, false
		}
		if r.peek() == '}' {
			r.i++
			return obj, true
		}

		// Spreads and computed keys hide the object's shape.
		if r.peek() == '[' || strings.HasPrefix(r.s[r.i:], "...") {
			return r.opaqueBalanced(start)
		}

		keyStart := r.i
		var key string
		switch c := r.peek(); {
		case c == '"' || c == '\'':
			k, ok := r.quoted()
			if !ok {
				return ast.Value{}, false
			}
			key = k
		case isIdentStart(c):
			key, r.i = readIdent(r.s, r.i)
		case isDigit(c):
			for !r.eof() && (isIdentPart(r.peek()) || r.peek() == '.') {
				r.i++
			}
			key = r.s[keyStart:r.i]
		default:
			return ast.Value{}, false
		}

		r.skip()
		switch r.peek() {
		case ':':
			r.i++
			r.skip()
			obj.Fields = append(obj.Fields, ast.Prop{Name: key, Value: r.element()})
		case ',', '}':
			// shorthand { x }
			obj.Fields = append(obj.Fields, ast.Prop{Name: key, Value: ast.Opaque(key)})
		default:
			// methods, getters: keep the field, hide its body
			r.i = keyStart
			r.skipExpr()
			obj.Fields = append(obj.Fields, ast.Prop{Name: key, Value: ast.Opaque(r.s[keyStart:r.i])})
		}

		r.skip()
		if r.peek() == ',' {
			r.i++
		}
	}
}

func (r *literalReader) array() (ast.Value, bool) {
	start := r.i
	r.i++
	arr := ast.Value{Kind: ast.ValueArray, Items: []ast.Value{}}
	for {
		r.skip()
		if r.eof() {
			return ast.Value{}, false
		}
		if r.peek() == ']' {
			r.i++
			return arr, true
		}
		if strings.HasPrefix(r.s[r.i:], "...") {
			return r.opaqueBalanced(start)
		}
		arr.Items = append(arr.Items, r.element())
		r.skip()
		if r.peek() == ',' {
			r.i++
		}
	}
}

// opaqueBalanced rewinds to start and returns the bracketed extent as an
// opaque value.
func (r *literalReader) opaqueBalanced(start int) (ast.Value, bool) {
	r.i = start + 1
	for {
		r.skipExpr()
		if r.eof() {
			return ast.Value{}, false
		}
		if r.peek() != ',' {
			break
		}
		r.i++
	}
	r.i++ // closing bracket
	return ast.Opaque(r.s[start:r.i]), true
}

// skipExpr advances to the next depth-zero ',' or closing bracket.
func (r *literalReader) skipExpr() {
	depth := 0
	for !r.eof() {
		switch c := r.peek(); c {
		case '"', '\'':
			end, err := skipString(r.s, r.i)
			if err != nil {
				r.i = len(r.s)
				return
			}
			r.i = end
			continue
		case '`':
			r.i++
			for !r.eof() && r.peek() != '`' {
				if r.peek() == '\\' {
					r.i++
				}
				r.i++
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return
			}
			depth--
		case ',':
			if depth == 0 {
				return
			}
		}
		r.i++
	}
}

func (r *literalReader) quoted() (string, bool) {
	quote := r.s[r.i]
	var b strings.Builder
	for j := r.i + 1; j < len(r.s); j++ {
		c := r.s[j]
		switch {
		case c == quote:
			r.i = j + 1
			return b.String(), true
		case c == '\n':
			return "", false
		case c == '\\' && j+1 < len(r.s):
			j++
			n, ok := unescape(r.s, &j)
			if !ok {
				return "", false
			}
			b.WriteString(n)
		default:
			b.WriteByte(c)
		}
	}
	return "", false
}

// template resolves a template literal without substitutions.
func (r *literalReader) template() (ast.Value, bool) {
	var b strings.Builder
	for j := r.i + 1; j < len(r.s); j++ {
		c := r.s[j]
		switch {
		case c == '`':
			r.i = j + 1
			return ast.Value{Kind: ast.ValueString, Str: b.String()}, true
		case c == '$' && j+1 < len(r.s) && r.s[j+1] == '{':
			return ast.Value{}, false
		case c == '\\' && j+1 < len(r.s):
			j++
			n, ok := unescape(r.s, &j)
			if !ok {
				return ast.Value{}, false
			}
			b.WriteString(n)
		default:
			b.WriteByte(c)
		}
	}
	return ast.Value{}, false
}

// unescape decodes the escape whose first character is at *j, leaving *j
// on its last character.
func unescape(s string, j *int) (string, bool) {
	switch c := s[*j]; c {
	case 'n':
		return "\n", true
	case 't':
		return "\t", true
	case 'r':
		return "\r", true
	case 'b':
		return "\b", true
	case 'f':
		return "\f", true
	case 'v':
		return "\v", true
	case '0':
		return "\x00", true
	case '\n':
		return "", true
	case 'u':
		if *j+4 < len(s) && s[*j+1] != '{' {
			n, err := strconv.ParseUint(s[*j+1:*j+5], 16, 32)
			if err != nil {
				return "", false
			}
			*j += 4
			return string(rune(n)), true
		}
		end := strings.IndexByte(s[*j:], '}')
		if end < 0 {
			return "", false
		}
		n, err := strconv.ParseUint(s[*j+2:*j+end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return "", false
		}
		*j += end
		return string(rune(n)), true
	case 'x':
		if *j+2 >= len(s) {
			return "", false
		}
		n, err := strconv.ParseUint(s[*j+1:*j+3], 16, 8)
		if err != nil {
			return "", false
		}
		*j += 2
		return string(rune(n)), true
	default:
		return string(c), true
	}
}

func (r *literalReader) number() (ast.Value, bool) {
	start := r.i
	if c := r.peek(); c == '-' || c == '+' {
		r.i++
	}
	digits := r.i
	for !r.eof() {
		c := r.peek()
		if isIdentPart(c) || c == '.' {
			r.i++
			continue
		}
		// exponent sign
		if (c == '-' || c == '+') && r.i > digits && (r.s[r.i-1] == 'e' || r.s[r.i-1] == 'E') && !strings.HasPrefix(r.s[digits:], "0x") {
			r.i++
			continue
		}
		break
	}
	text := strings.ReplaceAll(r.s[digits:r.i], "_", "")
	if text == "" {
		return ast.Value{}, false
	}

	var n float64
	if len(text) > 1 && text[0] == '0' && strings.ContainsAny(text[1:2], "xXoObB") {
		i, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return ast.Value{}, false
		}
		n = float64(i)
	} else {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ast.Value{}, false
		}
		n = f
	}
	if r.s[start] == '-' {
		n = -n
	}
	return ast.Value{Kind: ast.ValueNumber, Num: n}, true
}
