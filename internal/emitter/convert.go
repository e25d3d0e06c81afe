package emitter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
)

var (
	returnTail    = regexp.MustCompile(`return\s*\(?\s*$`)
	returnAnd     = regexp.MustCompile(`return\s*\(?\s*([^;\n]+?)\s*&&\s*\(?\s*$`)
	returnTernary = regexp.MustCompile(`return\s*\(?\s*([^;\n]+?)\s*\?\s*\(?\s*$`)
	functionHead  = regexp.MustCompile(`(?:export\s+default\s+)?(?:async\s+)?function\s*[\w$]*\s*(?:<[^<>]*>)?\s*\(([^()]*)\)\s*(?::\s*[^{]+)?\{`)
	arrowHead     = regexp.MustCompile(`(?:export\s+)?(?:const|let|var)\s+[\w$]+\s*(?::[^=]+)?=\s*(?:\(([^()]*)\)|([\w$]+))\s*(?::[^=]+?)?=>\s*\{`)
	arrowExpr     = regexp.MustCompile(`(?:export\s+)?(?:const|let|var)\s+[\w$]+\s*(?::[^=]+)?=\s*(?:\(([^()]*)\)|([\w$]+))\s*(?::[^=]+?)?=>\s*\(?\s*$`)
	functionTail  = regexp.MustCompile(`^\s*(?:\)\s*)*;?\s*\}\s*;?`)
	exprTail      = regexp.MustCompile(`^\s*(?:\)\s*)*;?`)
	defaultName   = regexp.MustCompile(`(?m)^[ \t]*export\s+default\s+[\w$]+\s*;?[ \t]*\n?`)

	andPattern   = regexp.MustCompile(`^\s*\(?\s*([\s\S]+?)\s*&&\s*\(?\s*$`)
	mapPattern   = regexp.MustCompile(`^\s*([\w$.?\[\]]+)\.map\(\s*\(?\s*([\w$]+)\s*(?:,\s*([\w$]+)\s*)?\)?\s*=>\s*\(?\s*$`)
	mapClose     = regexp.MustCompile(`^\s*\)?\s*\)\s*$`)
	ternaryOpen  = regexp.MustCompile(`^\s*([\s\S]+?)\s*\?\s*\(?\s*$`)
	ternaryMid   = regexp.MustCompile(`^\s*\)?\s*:\s*\(?\s*$`)
	closeParen   = regexp.MustCompile(`^\s*\)?\s*$`)
	vForPattern  = regexp.MustCompile(`^\s*\(?\s*([\w$]+)\s*(?:,\s*([\w$]+)\s*)?(?:,\s*[\w$]+\s*)?\)?\s+(?:in|of)\s+([\s\S]+?)\s*$`)
	propsDefine  = regexp.MustCompile(`(?m)^[ \t]*const\s+(\{[^}]*\}|[\w$]+)\s*(?::[^=]+)?=\s*(?:withDefaults\(\s*)?defineProps\b[^\n]*\n?`)
	bareDefine   = regexp.MustCompile(`(?m)^[ \t]*defineProps\b[^\n]*\n?`)
	simplePath   = regexp.MustCompile(`^[\w$.]+$`)
	arrowHandler = regexp.MustCompile(`^(?:async\s+)?(?:\([^()]*\)|[\w$]+)\s*=>`)
)

type converter struct {
	src *ast.Tree
	dst *ast.Tree
}

// jsxToTemplate rebuilds a JSX component as a single-file component: the
// returned markup becomes the template, the rest of the function body the
// setup script.
func jsxToTemplate(c *ast.ComponentAST) *ast.Tree {
	cv := &converter{src: c.Tree, dst: ast.NewTree()}
	kids := c.Tree.Node(c.Tree.Root()).Children
	root := cv.dst.Root()

	ret := findReturn(c.Tree, kids)
	mi := ret.index
	if mi < 0 {
		var script strings.Builder
		for _, k := range kids {
			script.WriteString(render(c.Tree, k))
		}
		cv.addBlock(root, "script", nil, "\n"+strings.Trim(script.String(), "\n")+"\n")
		return cv.dst
	}

	var pre, post strings.Builder
	for i, k := range kids {
		switch {
		case i == mi-1 && ret.cond != "":
			pre.WriteString(ret.head)
		case i < mi:
			pre.WriteString(render(c.Tree, k))
		case i > mi && i > ret.alt:
			post.WriteString(render(c.Tree, k))
		}
	}

	script := setupScript(pre.String(), post.String())
	if strings.TrimSpace(script) != "" {
		cv.addBlock(root, "script", []ast.Attribute{{Name: "setup", Kind: ast.AttrBoolean}}, "\n"+script+"\n")
		cv.dst.AppendChild(root, cv.dst.Add(ast.Node{Kind: ast.KindText, Text: "\n\n", Pos: -1}))
	}

	tmpl := cv.dst.Add(ast.Node{Kind: ast.KindBlock, Tag: "template", Pos: -1})
	cv.dst.AppendChild(root, tmpl)
	cv.dst.AppendChild(tmpl, cv.dst.Add(ast.Node{Kind: ast.KindText, Text: "\n  ", Pos: -1}))

	markup := c.Tree.Node(kids[mi])
	var body []ast.NodeID
	switch {
	case ret.cond != "":
		cond := ast.Attribute{Name: "v-if", Kind: ast.AttrStatic, Value: quoteSafe(strings.TrimSpace(ret.cond))}
		body = cv.templateNode(kids[mi], cond)
		if ret.alt >= 0 {
			body = append(body, cv.dst.Add(ast.Node{Kind: ast.KindText, Text: "\n  ", Pos: -1}))
			body = append(body, cv.templateNode(kids[ret.alt], ast.Attribute{Name: "v-else", Kind: ast.AttrBoolean})...)
		}
	case markup.Tag == "":
		body = cv.templateList(trimBlank(c.Tree, markup.Children))
	default:
		body = cv.templateNode(kids[mi])
	}
	for _, id := range body {
		cv.dst.AppendChild(tmpl, id)
	}
	cv.dst.AppendChild(tmpl, cv.dst.Add(ast.Node{Kind: ast.KindText, Text: "\n", Pos: -1}))
	cv.dst.AppendChild(root, cv.dst.Add(ast.Node{Kind: ast.KindText, Text: "\n", Pos: -1}))
	return cv.dst
}

// returned locates the markup a component returns among the program's
// children. A guarded return (cond && <X/>) sets cond; a ternary return
// also sets alt to the else branch. head replaces the code before the
// markup with the guard removed.
type returned struct {
	index, alt int
	cond       string
	head       string
}

// findReturn picks the element right after a return, else the last element.
func findReturn(tree *ast.Tree, kids []ast.NodeID) returned {
	last := -1
	for i, k := range kids {
		if tree.Node(k).Kind != ast.KindElement {
			continue
		}
		last = i
		if i == 0 {
			continue
		}
		p := tree.Node(kids[i-1])
		if p.Kind != ast.KindCode {
			continue
		}
		if returnTail.MatchString(p.Text) {
			return returned{index: i, alt: -1}
		}
		if m := returnAnd.FindStringSubmatchIndex(p.Text); m != nil {
			return returned{index: i, alt: -1, cond: p.Text[m[2]:m[3]], head: p.Text[:m[2]]}
		}
		if m := returnTernary.FindStringSubmatchIndex(p.Text); m != nil && i+2 < len(kids) {
			mid, alt := tree.Node(kids[i+1]), tree.Node(kids[i+2])
			if mid.Kind == ast.KindCode && ternaryMid.MatchString(mid.Text) && alt.Kind == ast.KindElement {
				return returned{index: i, alt: i + 2, cond: p.Text[m[2]:m[3]], head: p.Text[:m[2]]}
			}
		}
	}
	return returned{index: last, alt: -1}
}

// setupScript unwraps the component function around the returned markup.
func setupScript(pre, post string) string {
	pre = returnTail.ReplaceAllString(pre, "")

	if m := arrowExpr.FindStringSubmatchIndex(pre); m != nil {
		params := ""
		if m[2] >= 0 {
			params = pre[m[2]:m[3]]
		} else {
			params = pre[m[4]:m[5]]
		}
		post = exprTail.ReplaceAllString(defaultName.ReplaceAllString(post, ""), "")
		return joinScript(pre[:m[0]], propsLine(params), "", post)
	}

	loc := functionHead.FindStringSubmatchIndex(pre)
	arrow := arrowHead.FindStringSubmatchIndex(pre)
	params := ""
	switch {
	case loc != nil && (arrow == nil || loc[0] <= arrow[0]):
		params = pre[loc[2]:loc[3]]
	case arrow != nil:
		loc = arrow
		if arrow[2] >= 0 {
			params = pre[arrow[2]:arrow[3]]
		} else {
			params = pre[arrow[4]:arrow[5]]
		}
		post = defaultName.ReplaceAllString(post, "")
	default:
		return strings.Trim(pre+post, "\n")
	}

	post = functionTail.ReplaceAllString(post, "")
	return joinScript(pre[:loc[0]], propsLine(params), dedent(pre[loc[1]:]), post)
}

// joinScript assembles a setup script from the code around the component
// function, its props declaration and its body.
func joinScript(before, props, body, after string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(before, " \t\n"))
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(props)
	b.WriteString(strings.Trim(body, "\n"))
	if rest := strings.Trim(after, "\n"); rest != "" {
		b.WriteString("\n\n" + rest)
	}
	return strings.Trim(b.String(), "\n")
}

// propsLine turns a function parameter pattern into a defineProps call.
func propsLine(params string) string {
	p := strings.TrimSpace(params)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "{") {
		name := strings.TrimSpace(strings.SplitN(p, ":", 2)[0])
		return "const " + name + " = defineProps()\n"
	}
	end := strings.LastIndex(p, "}")
	if end < 0 {
		return ""
	}
	p = p[:end+1]

	var names []string
	for _, part := range splitTopLevel(p[1:len(p)-1], ',') {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "...") {
			continue
		}
		fields := strings.FieldsFunc(part, func(r rune) bool { return r == ':' || r == '=' })
		if len(fields) == 0 {
			continue
		}
		names = append(names, strconv.Quote(strings.TrimSpace(fields[0])))
	}
	return "const " + p + " = defineProps([" + strings.Join(names, ", ") + "])\n"
}

// splitTopLevel splits s at sep outside brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func (cv *converter) addBlock(parent ast.NodeID, tag string, attrs []ast.Attribute, content string) ast.NodeID {
	code := cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: content, Pos: -1})
	id := cv.dst.Add(ast.Node{Kind: ast.KindBlock, Tag: tag, Attrs: attrs, Children: []ast.NodeID{code}, Pos: -1})
	cv.dst.AppendChild(parent, id)
	return id
}

func (cv *converter) templateList(kids []ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, k := range kids {
		out = append(out, cv.templateNode(k)...)
	}
	return out
}

// templateNode converts one JSX node into template nodes in dst.
func (cv *converter) templateNode(id ast.NodeID, extra ...ast.Attribute) []ast.NodeID {
	n := cv.src.Node(id)
	switch n.Kind {
	case ast.KindElement:
		tag := n.Tag
		if tag == "" {
			tag = "template"
		}
		attrs := append([]ast.Attribute(nil), extra...)
		for _, a := range n.Attrs {
			attrs = append(attrs, templateAttr(a))
		}
		kids := cv.templateList(n.Children)
		return []ast.NodeID{cv.dst.Add(ast.Node{
			Kind: ast.KindElement, Tag: tag, Attrs: attrs,
			SelfClosing: n.SelfClosing, Children: kids, Pos: n.Pos,
		})}
	case ast.KindText:
		return []ast.NodeID{cv.dst.Add(ast.Node{Kind: ast.KindText, Text: n.Text, Pos: n.Pos})}
	case ast.KindExpression:
		return cv.templateExpression(id)
	default:
		return []ast.NodeID{cv.dst.Add(ast.Node{Kind: ast.KindText, Text: render(cv.src, id), Pos: n.Pos})}
	}
}

// templateExpression converts a JSX {…} child. Conditionals and list maps
// over a single element become directives; anything else is interpolated.
func (cv *converter) templateExpression(id ast.NodeID) []ast.NodeID {
	n := cv.src.Node(id)
	var elems []int
	for i, k := range n.Children {
		if cv.src.Node(k).Kind == ast.KindElement {
			elems = append(elems, i)
		}
	}
	text := func(from, to int) string {
		var b strings.Builder
		for _, k := range n.Children[from:to] {
			b.WriteString(render(cv.src, k))
		}
		return b.String()
	}
	static := func(name, value string) ast.Attribute {
		return ast.Attribute{Name: name, Kind: ast.AttrStatic, Value: quoteSafe(strings.TrimSpace(value))}
	}

	switch len(elems) {
	case 0:
		inner := strings.TrimSpace(text(0, len(n.Children)))
		if inner == "" {
			return nil
		}
		if strings.HasPrefix(inner, "/*") && strings.HasSuffix(inner, "*/") {
			comment := strings.TrimSpace(inner[2 : len(inner)-2])
			return []ast.NodeID{cv.dst.Add(ast.Node{Kind: ast.KindText, Text: "<!-- " + comment + " -->", Pos: n.Pos})}
		}
		return []ast.NodeID{cv.interpolate(inner, n.Pos)}

	case 1:
		e := elems[0]
		before, after := text(0, e), text(e+1, len(n.Children))
		if m := andPattern.FindStringSubmatch(before); m != nil && closeParen.MatchString(after) {
			return cv.templateNode(n.Children[e], static("v-if", m[1]))
		}
		if m := mapPattern.FindStringSubmatch(before); m != nil && mapClose.MatchString(after) {
			head := m[2]
			if m[3] != "" {
				head = "(" + m[2] + ", " + m[3] + ")"
			}
			return cv.templateNode(n.Children[e], static("v-for", head+" in "+m[1]))
		}

	case 2:
		a, b := elems[0], elems[1]
		m := ternaryOpen.FindStringSubmatch(text(0, a))
		if m != nil && ternaryMid.MatchString(text(a+1, b)) && closeParen.MatchString(text(b+1, len(n.Children))) {
			out := cv.templateNode(n.Children[a], static("v-if", m[1]))
			return append(out, cv.templateNode(n.Children[b], ast.Attribute{Name: "v-else", Kind: ast.AttrBoolean})...)
		}
	}
	return []ast.NodeID{cv.interpolate(strings.TrimSpace(text(0, len(n.Children))), n.Pos)}
}

func (cv *converter) interpolate(expr string, pos int) ast.NodeID {
	code := cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: " " + expr + " ", Pos: -1})
	return cv.dst.Add(ast.Node{Kind: ast.KindExpression, Tag: "{{", Children: []ast.NodeID{code}, Pos: pos})
}

func templateAttr(a ast.Attribute) ast.Attribute {
	switch a.Kind {
	case ast.AttrSpread:
		return ast.Attribute{Name: "v-bind", Kind: ast.AttrStatic, Value: quoteSafe(strings.TrimSpace(a.Value))}
	case ast.AttrExpression:
		v := quoteSafe(strings.TrimSpace(a.Value))
		if event, ok := eventName(a.Name); ok {
			return ast.Attribute{Name: "@" + event, Kind: ast.AttrStatic, Value: v}
		}
		return ast.Attribute{Name: ":" + templateName(a.Name), Kind: ast.AttrStatic, Value: v}
	default:
		a.Name = templateName(a.Name)
		return a
	}
}

func templateName(name string) string {
	switch name {
	case "className":
		return "class"
	case "htmlFor":
		return "for"
	}
	return name
}

// eventName maps onClick to click.
func eventName(prop string) (string, bool) {
	if len(prop) < 3 || !strings.HasPrefix(prop, "on") || prop[2] < 'A' || prop[2] > 'Z' {
		return "", false
	}
	return strings.ToLower(prop[2:]), true
}

// quoteSafe makes an expression safe inside a double-quoted attribute.
func quoteSafe(v string) string {
	if !strings.Contains(v, `"`) {
		return v
	}
	if !strings.Contains(v, "'") {
		return strings.ReplaceAll(v, `"`, "'")
	}
	return strings.ReplaceAll(v, `"`, "&quot;")
}

// templateToJSX rebuilds a single-file component as a function component
// returning JSX.
func templateToJSX(c *ast.ComponentAST) *ast.Tree {
	cv := &converter{src: c.Tree, dst: ast.NewTree()}
	template, script := ast.NoNode, ast.NoNode
	for _, k := range c.Tree.Node(c.Tree.Root()).Children {
		n := c.Tree.Node(k)
		if n.Kind != ast.KindBlock {
			continue
		}
		switch {
		case n.Tag == "template" && template == ast.NoNode:
			template = k
		case n.Tag == "script" && (script == ast.NoNode || n.HasAttr("setup")):
			script = k
		}
	}

	var body string
	if script != ast.NoNode {
		var b strings.Builder
		for _, k := range c.Tree.Node(script).Children {
			b.WriteString(render(c.Tree, k))
		}
		body = b.String()
	}
	params, body := extractProps(body)
	body = strings.Trim(dedent(body), "\n")

	var head strings.Builder
	head.WriteString("export default function " + c.ComponentName + "(" + params + ") {\n")
	if body != "" {
		head.WriteString(indent(body, "  ") + "\n\n")
	}

	root := cv.dst.Root()
	if template == ast.NoNode {
		head.WriteString("  return null\n}\n")
		cv.dst.AppendChild(root, cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: head.String(), Pos: -1}))
		return cv.dst
	}

	nodes := cv.jsxList(trimBlank(c.Tree, c.Tree.Node(template).Children))
	var markup ast.NodeID
	if len(nodes) == 1 && cv.dst.Node(nodes[0]).Kind == ast.KindElement {
		markup = nodes[0]
	} else {
		markup = cv.dst.Add(ast.Node{Kind: ast.KindElement, Tag: "", Children: nodes, Pos: -1})
	}

	head.WriteString("  return (\n    ")
	cv.dst.AppendChild(root, cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: head.String(), Pos: -1}))
	cv.dst.AppendChild(root, markup)
	cv.dst.AppendChild(root, cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: "\n  )\n}\n", Pos: -1}))
	return cv.dst
}

// extractProps removes a defineProps declaration from a setup script and
// returns the binding it declared, to become the function's parameter.
func extractProps(script string) (string, string) {
	if m := propsDefine.FindStringSubmatchIndex(script); m != nil {
		return script[m[2]:m[3]], script[:m[0]] + script[m[1]:]
	}
	return "", bareDefine.ReplaceAllString(script, "")
}

type branch struct {
	cond string
	id   ast.NodeID
}

// jsxList converts template siblings, folding v-if/v-else-if/v-else chains
// into a single conditional expression.
func (cv *converter) jsxList(kids []ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for i := 0; i < len(kids); i++ {
		n := cv.src.Node(kids[i])
		cond, ok := directive(n, "v-if")
		if !ok {
			out = append(out, cv.jsxNode(kids[i])...)
			continue
		}

		chain := []branch{{cond: cond, id: kids[i]}}
		next := i + 1
		for {
			k := nextElement(cv.src, kids, next)
			if k < 0 {
				break
			}
			m := cv.src.Node(kids[k])
			if c, ok := directive(m, "v-else-if"); ok {
				chain = append(chain, branch{cond: c, id: kids[k]})
				next = k + 1
				continue
			}
			if _, ok := directive(m, "v-else"); ok {
				chain = append(chain, branch{id: kids[k]})
				next = k + 1
			}
			break
		}
		out = append(out, cv.conditional(chain))
		i = next - 1
	}
	return out
}

func (cv *converter) conditional(chain []branch) ast.NodeID {
	var kids []ast.NodeID
	code := func(text string) {
		kids = append(kids, cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: text, Pos: -1}))
	}
	operand := func(id ast.NodeID) {
		for _, c := range cv.jsxNode(id) {
			if cv.dst.Node(c).Kind != ast.KindExpression {
				kids = append(kids, c)
				continue
			}
			inner := append([]ast.NodeID(nil), cv.dst.Node(c).Children...)
			code("(")
			kids = append(kids, inner...)
			code(")")
		}
	}

	if len(chain) == 1 {
		code(chain[0].cond + " && ")
		operand(chain[0].id)
	} else {
		for i, br := range chain {
			switch {
			case i == 0:
				code(br.cond + " ? ")
			case br.cond != "":
				code(" : " + br.cond + " ? ")
			default:
				code(" : ")
			}
			operand(br.id)
		}
		if chain[len(chain)-1].cond != "" {
			code(" : null")
		}
	}
	return cv.dst.Add(ast.Node{Kind: ast.KindExpression, Tag: "{", Children: kids, Pos: cv.src.Node(chain[0].id).Pos})
}

// jsxNode converts one template node into JSX nodes in dst.
func (cv *converter) jsxNode(id ast.NodeID) []ast.NodeID {
	n := cv.src.Node(id)
	switch n.Kind {
	case ast.KindText:
		text := strings.TrimSpace(n.Text)
		if strings.HasPrefix(text, "<!--") && strings.HasSuffix(text, "-->") {
			comment := strings.TrimSpace(text[4 : len(text)-3])
			return []ast.NodeID{cv.jsxExpression("/* "+comment+" */", n.Pos)}
		}
		return []ast.NodeID{cv.dst.Add(ast.Node{Kind: ast.KindText, Text: escapeBraces(n.Text), Pos: n.Pos})}
	case ast.KindExpression:
		var b strings.Builder
		for _, k := range n.Children {
			b.WriteString(render(cv.src, k))
		}
		return []ast.NodeID{cv.jsxExpression(strings.TrimSpace(b.String()), n.Pos)}
	case ast.KindElement:
		return []ast.NodeID{cv.jsxElement(n)}
	default:
		return []ast.NodeID{cv.dst.Add(ast.Node{Kind: ast.KindText, Text: render(cv.src, id), Pos: n.Pos})}
	}
}

func (cv *converter) jsxExpression(expr string, pos int) ast.NodeID {
	code := cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: expr, Pos: -1})
	return cv.dst.Add(ast.Node{Kind: ast.KindExpression, Tag: "{", Children: []ast.NodeID{code}, Pos: pos})
}

func (cv *converter) jsxElement(n *ast.Node) ast.NodeID {
	tag := n.Tag
	fragment := tag == "template"
	if fragment {
		tag = ""
	}
	pos := n.Pos
	selfClosing := n.SelfClosing
	srcAttrs := n.Attrs
	srcKids := n.Children

	var attrs []ast.Attribute
	var extra []ast.NodeID
	hasStyle := false
	for _, a := range srcAttrs {
		if name, _ := strings.CutPrefix(a.Name, ":"); name == "style" {
			hasStyle = true
		}
	}
	for _, a := range srcAttrs {
		switch a.Name {
		case "v-if", "v-else-if", "v-else", "v-for":
			continue
		case "v-show":
			if !hasStyle {
				attrs = append(attrs, ast.Attribute{Name: "style", Kind: ast.AttrExpression, Value: `{ display: ` + a.Value + ` ? undefined : "none" }`})
			}
			continue
		case "v-html":
			attrs = append(attrs, ast.Attribute{Name: "dangerouslySetInnerHTML", Kind: ast.AttrExpression, Value: "{ __html: " + a.Value + " }"})
			continue
		case "v-text":
			extra = append(extra, cv.jsxExpression(a.Value, -1))
			continue
		}
		if out, ok := jsxAttr(a); ok && !fragment {
			attrs = append(attrs, out)
		}
	}

	kids := cv.jsxList(srcKids)
	kids = append(kids, extra...)
	el := cv.dst.Add(ast.Node{
		Kind: ast.KindElement, Tag: tag, Attrs: attrs,
		SelfClosing: selfClosing && len(kids) == 0, Children: kids, Pos: pos,
	})

	v, ok := directive(n, "v-for")
	if !ok {
		return el
	}
	m := vForPattern.FindStringSubmatch(v)
	if m == nil {
		return el
	}
	params := m[1]
	if m[2] != "" {
		params = "(" + m[1] + ", " + m[2] + ")"
	}
	open := cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: m[3] + ".map(" + params + " => ", Pos: -1})
	closing := cv.dst.Add(ast.Node{Kind: ast.KindCode, Text: ")", Pos: -1})
	return cv.dst.Add(ast.Node{Kind: ast.KindExpression, Tag: "{", Children: []ast.NodeID{open, el, closing}, Pos: pos})
}

// jsxAttr converts one template attribute. Directives with no JSX form are
// dropped.
func jsxAttr(a ast.Attribute) (ast.Attribute, bool) {
	name := a.Name
	switch {
	case a.Kind == ast.AttrSpread:
		return a, true
	case name == "v-bind":
		return ast.Attribute{Kind: ast.AttrSpread, Value: a.Value}, true
	case strings.HasPrefix(name, "@") || strings.HasPrefix(name, "v-on:"):
		if a.Kind == ast.AttrBoolean {
			return a, false
		}
		event := strings.TrimPrefix(strings.TrimPrefix(name, "@"), "v-on:")
		event, _, _ = strings.Cut(event, ".")
		return ast.Attribute{Name: "on" + pascal(event), Kind: ast.AttrExpression, Value: handler(a.Value)}, true
	case strings.HasPrefix(name, ":") || strings.HasPrefix(name, "v-bind:"):
		if a.Kind == ast.AttrBoolean {
			return a, false
		}
		prop, _, ok := parser.PropName(a)
		if !ok {
			return a, false
		}
		prop, _, _ = strings.Cut(prop, ".")
		return ast.Attribute{Name: jsxName(prop), Kind: ast.AttrExpression, Value: a.Value}, true
	case strings.HasPrefix(name, "v-") || strings.HasPrefix(name, "#"):
		return a, false
	case name == "style" && a.Kind == ast.AttrStatic:
		return ast.Attribute{Name: "style", Kind: ast.AttrExpression, Value: styleObject(a.Value)}, true
	}
	if prop, _, ok := parser.PropName(a); ok {
		name = prop
	}
	a.Name = jsxName(name)
	return a, true
}

func jsxName(name string) string {
	switch name {
	case "class":
		return "className"
	case "for":
		return "htmlFor"
	}
	return name
}

func pascal(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == ':' || r == '_' }) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

// handler turns a template event expression into a JSX handler value.
func handler(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case simplePath.MatchString(v), arrowHandler.MatchString(v), strings.HasPrefix(v, "function"):
		return v
	case strings.Contains(v, ";"):
		return "() => { " + v + " }"
	}
	return "() => " + v
}

// styleObject converts an inline CSS declaration list to an object literal.
func styleObject(css string) string {
	var fields []string
	for _, decl := range strings.Split(css, ";") {
		key, value, ok := strings.Cut(decl, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" {
			continue
		}
		if !strings.HasPrefix(key, "--") {
			parts := strings.Split(key, "-")
			for i := 1; i < len(parts); i++ {
				if parts[i] != "" {
					parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
				}
			}
			key = strings.Join(parts, "")
		} else {
			key = strconv.Quote(key)
		}
		fields = append(fields, key+": "+strconv.Quote(value))
	}
	if len(fields) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}

func escapeBraces(text string) string {
	if !strings.ContainsAny(text, "{}") {
		return text
	}
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '{':
			b.WriteString(`{"{"}`)
		case '}':
			b.WriteString(`{"}"}`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// directive returns the value of a template directive on n.
func directive(n *ast.Node, name string) (string, bool) {
	if n.Kind != ast.KindElement {
		return "", false
	}
	if a, _ := n.Attr(name); a != nil {
		return a.Value, true
	}
	return "", false
}

// nextElement returns the index of the next element at or after from,
// skipping whitespace text, or -1.
func nextElement(tree *ast.Tree, kids []ast.NodeID, from int) int {
	for i := from; i < len(kids); i++ {
		n := tree.Node(kids[i])
		if n.Kind == ast.KindText && strings.TrimSpace(n.Text) == "" {
			continue
		}
		if n.Kind == ast.KindElement {
			return i
		}
		return -1
	}
	return -1
}

// trimBlank drops whitespace-only text at both ends of a child list.
func trimBlank(tree *ast.Tree, kids []ast.NodeID) []ast.NodeID {
	blank := func(id ast.NodeID) bool {
		n := tree.Node(id)
		return n.Kind == ast.KindText && strings.TrimSpace(n.Text) == ""
	}
	for len(kids) > 0 && blank(kids[0]) {
		kids = kids[1:]
	}
	for len(kids) > 0 && blank(kids[len(kids)-1]) {
		kids = kids[:len(kids)-1]
	}
	return kids
}

func dedent(text string) string {
	lines := strings.Split(text, "\n")
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lead := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || lead < common {
			common = lead
		}
	}
	if common <= 0 {
		return text
	}
	for i, l := range lines {
		if len(l) >= common {
			lines[i] = l[common:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
