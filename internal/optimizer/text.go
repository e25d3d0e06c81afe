package optimizer

import (
	"regexp"
	"sort"
	"strings"
)

// tag is an opening tag found in code. end is the offset just past '>'.
type tag struct {
	start, nameEnd, end int
	name                string
}

// attr is one attribute of a tag. Value keeps its delimiters ({...} or
// quotes); it is empty for boolean attributes.
type attr struct {
	Name       string
	Value      string
	start, end int
}

// base strips the binding prefix from a template attribute name.
func (a attr) base() string {
	name := strings.TrimPrefix(a.Name, "v-bind:")
	return strings.TrimPrefix(name, ":")
}

// prefix returns the binding prefix of the attribute name.
func (a attr) prefix() string {
	return strings.TrimSuffix(a.Name, a.base())
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '.' || c == '-' || c == ':' || c == '_' || c == '$'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanTags finds opening tags in markup-bearing code. Text that looks like
// a comparison rather than a tag is skipped.
func scanTags(code string) []tag {
	var tags []tag
	for i := 0; i < len(code); i++ {
		if code[i] != '<' || i+1 >= len(code) || !isNameStart(code[i+1]) {
			continue
		}
		j := i + 1
		for j < len(code) && isNameChar(code[j]) {
			j++
		}
		if j >= len(code) || !(isSpace(code[j]) || code[j] == '/' || code[j] == '>') {
			continue
		}
		end := tagEnd(code, j)
		if end < 0 {
			continue
		}
		tags = append(tags, tag{start: i, nameEnd: j, end: end, name: code[i+1 : j]})
	}
	return tags
}

// tagEnd returns the offset past the '>' closing the tag whose attributes
// start at from, or -1.
func tagEnd(code string, from int) int {
	depth := 0
	var quote byte
	for k := from; k < len(code); k++ {
		c := code[k]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
		case c == '<' && depth == 0:
			return -1
		case c == '>' && depth == 0:
			return k + 1
		}
	}
	return -1
}

// balanced returns the offset past the delimiter matching code[from].
func balanced(code string, from int) int {
	open := code[from]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '(':
		close = ')'
	case '[':
		close = ']'
	default:
		return from + 1
	}
	depth := 0
	var quote byte
	for k := from; k < len(code); k++ {
		c := code[k]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return k + 1
			}
		}
	}
	return len(code)
}

// attrs parses the attributes of t. Spreads are skipped.
func attrs(code string, t tag) []attr {
	var out []attr
	limit := t.end - 1
	k := t.nameEnd
	for k < limit {
		c := code[k]
		switch {
		case isSpace(c) || c == '/':
			k++
			continue
		case c == '{':
			k = balanced(code, k)
			continue
		}
		start := k
		for k < limit && !isSpace(code[k]) && code[k] != '=' && code[k] != '>' && code[k] != '/' {
			k++
		}
		a := attr{Name: code[start:k], start: start}
		if k < limit && code[k] == '=' {
			k++
			vs := k
			switch {
			case k < limit && (code[k] == '"' || code[k] == '\''):
				q := code[k]
				k++
				for k < limit && code[k] != q {
					k++
				}
				k++
			case k < limit && code[k] == '{':
				k = balanced(code, k)
			default:
				for k < limit && !isSpace(code[k]) && code[k] != '>' {
					k++
				}
			}
			if k > limit {
				k = limit
			}
			a.Value = code[vs:k]
		}
		a.end = k
		if a.Name != "" {
			out = append(out, a)
		}
		if k == start {
			k++
		}
	}
	return out
}

// findAttr returns the first attribute whose base name is one of names.
func findAttr(list []attr, names ...string) (attr, bool) {
	for _, a := range list {
		for _, n := range names {
			if a.base() == n || a.Name == n {
				return a, true
			}
		}
	}
	return attr{}, false
}

// edit replaces code[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// applyEdits applies non-overlapping edits, latest offset first.
func applyEdits(code string, edits []edit) string {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	for _, e := range edits {
		code = code[:e.start] + e.text + code[e.end:]
	}
	return code
}

var importPattern = regexp.MustCompile(`(?m)^([ \t]*)import\s+([^;'"]*?)\s*from\s*(["'])([^"'\n]+)["'][ \t]*(;?)[ \t]*(?:\n|$)`)

// importStmt is one `import ... from "module"` statement.
type importStmt struct {
	start, end int
	indent     string
	quote      string
	semi       bool
	Module     string
	TypeOnly   bool
	Default    string
	Namespace  string
	Named      []specifier
}

// specifier is one entry of a named import list.
type specifier struct {
	Imported string
	Local    string
	Type     bool
}

func (s specifier) String() string {
	out := s.Imported
	if s.Local != s.Imported {
		out += " as " + s.Local
	}
	if s.Type {
		out = "type " + out
	}
	return out
}

// findImports parses every import statement with a from clause.
func findImports(code string) []importStmt {
	var out []importStmt
	for _, m := range importPattern.FindAllStringSubmatchIndex(code, -1) {
		st := importStmt{
			start:  m[0],
			end:    m[1],
			indent: code[m[2]:m[3]],
			quote:  code[m[6]:m[7]],
			Module: code[m[8]:m[9]],
			semi:   m[11] > m[10],
		}
		clause := strings.TrimSpace(code[m[4]:m[5]])
		if strings.HasPrefix(clause, "type ") {
			st.TypeOnly = true
			clause = strings.TrimSpace(strings.TrimPrefix(clause, "type "))
		}
		if open := strings.Index(clause, "{"); open >= 0 {
			close := strings.LastIndex(clause, "}")
			if close < open {
				continue
			}
			for _, part := range strings.Split(clause[open+1:close], ",") {
				if sp, ok := parseSpecifier(part); ok {
					st.Named = append(st.Named, sp)
				}
			}
			clause = strings.TrimSpace(clause[:open] + clause[close+1:])
		}
		for _, part := range strings.Split(clause, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case strings.HasPrefix(part, "*"):
				st.Namespace = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(part, "*")), "as"))
			default:
				st.Default = part
			}
		}
		out = append(out, st)
	}
	return out
}

func parseSpecifier(part string) (specifier, bool) {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return specifier{}, false
	}
	var sp specifier
	if fields[0] == "type" && len(fields) > 1 {
		sp.Type = true
		fields = fields[1:]
	}
	sp.Imported = fields[0]
	sp.Local = fields[0]
	if len(fields) == 3 && fields[1] == "as" {
		sp.Local = fields[2]
	}
	return sp, true
}

// String renders the statement on one line, keeping its quote style.
func (st importStmt) String() string {
	var parts []string
	if st.Default != "" {
		parts = append(parts, st.Default)
	}
	if st.Namespace != "" {
		parts = append(parts, "* as "+st.Namespace)
	}
	if len(st.Named) > 0 {
		names := make([]string, len(st.Named))
		for i, sp := range st.Named {
			names[i] = sp.String()
		}
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}
	var b strings.Builder
	b.WriteString(st.indent)
	b.WriteString("import ")
	if st.TypeOnly {
		b.WriteString("type ")
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(" from " + st.quote + st.Module + st.quote)
	if st.semi {
		b.WriteString(";")
	}
	b.WriteString("\n")
	return b.String()
}

// withoutImports blanks out import statements so identifier searches only
// see the body.
func withoutImports(code string, imports []importStmt) string {
	if len(imports) == 0 {
		return code
	}
	b := []byte(code)
	for _, st := range imports {
		for k := st.start; k < st.end; k++ {
			if b[k] != '\n' {
				b[k] = ' '
			}
		}
	}
	return string(b)
}

// uses reports whether name appears as a whole identifier in body.
func uses(body, name string) bool {
	re, err := regexp.Compile(`(^|[^\w$])` + regexp.QuoteMeta(name) + `($|[^\w$])`)
	if err != nil {
		return false
	}
	return re.MatchString(body)
}

// firstUse returns the offset of the first whole-identifier use of name
// in body, or -1.
func firstUse(body, name string) int {
	re := regexp.MustCompile(`(^|[^\w$])` + regexp.QuoteMeta(name) + `($|[^\w$])`)
	loc := re.FindStringSubmatchIndex(body)
	if loc == nil {
		return -1
	}
	return loc[3]
}

// lastImportEnd returns the offset past the last import statement, or -1.
func lastImportEnd(imports []importStmt) int {
	end := -1
	for _, st := range imports {
		if st.end > end {
			end = st.end
		}
	}
	return end
}

// objectBounds returns the offsets of the braces enclosing pos, or -1s.
func objectBounds(code string, pos int) (int, int) {
	depth := 0
	start := -1
	for k := pos - 1; k >= 0; k-- {
		switch code[k] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				start = k
			} else {
				depth--
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return -1, -1
	}
	end := balanced(code, start)
	return start, end
}

// inertMask marks the offsets of code that hold no script: comments,
// string and template literal contents and <style> blocks. Values of bound
// template attributes (:x="...", v-bind:x="...") are script and stay live.
func inertMask(code string) []bool {
	mask := make([]bool, len(code))
	fill := func(from, to int) {
		for k := from; k < to; k++ {
			mask[k] = true
		}
	}

	bound := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"' && bound:
			bound = false
		case c == '"' && boundValueAt(code, i):
			bound = true
		case c == '"' || c == '\'' || c == '`':
			end := literalEnd(code, i)
			fill(i, end)
			i = end - 1
		case strings.HasPrefix(code[i:], "//"):
			end := strings.IndexByte(code[i:], '\n')
			if end < 0 {
				end = len(code) - i
			}
			fill(i, i+end)
			i += end - 1
		case strings.HasPrefix(code[i:], "/*"):
			end := strings.Index(code[i+2:], "*/")
			if end < 0 {
				end = len(code)
			} else {
				end = i + 2 + end + 2
			}
			fill(i, end)
			i = end - 1
		case strings.HasPrefix(code[i:], "<style") && i+6 < len(code) && (isSpace(code[i+6]) || code[i+6] == '>'):
			end := strings.Index(code[i:], "</style>")
			if end < 0 {
				end = len(code)
			} else {
				end = i + end + len("</style>")
			}
			fill(i, end)
			i = end - 1
		}
	}
	return mask
}

// literalEnd returns the offset past the string literal opening at from.
// Quoted strings also end at a newline.
func literalEnd(code string, from int) int {
	q := code[from]
	for k := from + 1; k < len(code); k++ {
		switch {
		case code[k] == '\\':
			k++
		case code[k] == q:
			return k + 1
		case code[k] == '\n' && q != '`':
			return k
		}
	}
	return len(code)
}

// boundValueAt reports whether the quote at pos opens the value of a bound
// template attribute.
func boundValueAt(code string, pos int) bool {
	if pos < 2 || code[pos-1] != '=' {
		return false
	}
	k := pos - 2
	for k >= 0 && isNameChar(code[k]) {
		k--
	}
	name := code[k+1 : pos-1]
	return strings.HasPrefix(name, ":") || strings.HasPrefix(name, "v-bind:")
}
