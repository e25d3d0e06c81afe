package parser

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// isTagChar accepts everything that may appear in an element or attribute
// name across JSX and template dialects (motion.div, v-bind:x, @click).
func isTagChar(c byte) bool {
	return isIdentPart(c) || c == '.' || c == '-' || c == ':' || c == '@' || c == '#'
}

func readIdent(src string, i int) (string, int) {
	start := i
	for i < len(src) && isIdentPart(src[i]) {
		i++
	}
	return src[start:i], i
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

// skipTrivia skips whitespace and comments. Unterminated block comments are
// reported through the returned error.
func skipTrivia(src string, i int) (int, error) {
	for i < len(src) {
		switch {
		case isSpace(src[i]):
			i++
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i)
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			end, err := skipBlockComment(src, i)
			if err != nil {
				return i, err
			}
			i = end
		default:
			return i, nil
		}
	}
	return i, nil
}

func skipLineComment(src string, i int) int {
	for i < len(src) && src[i] != '\n' {
		i++
	}
	return i
}

func skipBlockComment(src string, i int) (int, error) {
	for j := i + 2; j+1 < len(src); j++ {
		if src[j] == '*' && src[j+1] == '/' {
			return j + 2, nil
		}
	}
	return i, newParseError(src, i, "unterminated block comment")
}

// skipString skips a '…' or "…" literal starting at i.
func skipString(src string, i int) (int, error) {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return i, newParseError(src, i, "unterminated string literal")
		case quote:
			return j + 1, nil
		}
	}
	return i, newParseError(src, i, "unterminated string literal")
}

// skipRegex skips a regular expression literal starting at i.
func skipRegex(src string, i int) (int, error) {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return i, newParseError(src, i, "unterminated regular expression")
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				j++
				for j < len(src) && isIdentPart(src[j]) {
					j++
				}
				return j, nil
			}
		}
	}
	return i, newParseError(src, i, "unterminated regular expression")
}

// tokenClass summarizes the previous significant token, which decides
// whether "/" starts a regex and "<" starts an element.
type tokenClass int

const (
	tokNone tokenClass = iota
	tokPunct
	tokKeyword
	tokValue
)

// operandKeywords are keywords after which an expression operand begins.
var operandKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true, "default": true,
	"export": true,
}

// expressionStart reports whether an operand (regex, element) may start
// after a token of class cls whose last character is last.
func expressionStart(cls tokenClass, last byte) bool {
	switch cls {
	case tokNone, tokKeyword:
		return true
	case tokPunct:
		return last != ')' && last != ']'
	default:
		return false
	}
}
