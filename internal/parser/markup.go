package parser

import (
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

type markupMode uint8

const (
	// markupJSX: {expr} attribute values and children.
	markupJSX markupMode = iota
	// markupTemplate: quoted directive values and {{ expr }} interpolation.
	markupTemplate
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// parseElement parses the element whose '<' is at i. The element is added
// to the arena detached; the caller attaches it.
func (s *scanner) parseElement(i int, mode markupMode) (ast.NodeID, int, error) {
	src := s.src
	j := i + 1
	tagStart := j
	for j < s.limit && isTagChar(src[j]) {
		j++
	}
	tag := src[tagStart:j]
	node := ast.Node{Kind: ast.KindElement, Tag: tag, Pos: i}

	// attributes
	for {
		var err error
		if j, err = s.skipTagSpace(j, mode); err != nil {
			return ast.NoNode, i, err
		}
		if j >= s.limit {
			return ast.NoNode, i, newParseError(src, i, "unclosed tag <%s>", tag)
		}
		if src[j] == '/' && j+1 < s.limit && src[j+1] == '>' {
			node.SelfClosing = true
			return s.tree.Add(node), j + 2, nil
		}
		if src[j] == '>' {
			j++
			break
		}
		if tag == "" {
			return ast.NoNode, i, newParseError(src, j, "fragments cannot have attributes")
		}
		attr, end, err := s.parseAttribute(j, mode)
		if err != nil {
			return ast.NoNode, i, err
		}
		node.Attrs = append(node.Attrs, attr)
		j = end
	}

	if mode == markupTemplate && voidElements[strings.ToLower(tag)] {
		node.SelfClosing = true
		return s.tree.Add(node), j, nil
	}

	id := s.tree.Add(node)
	end, err := s.parseChildren(j, id, mode, tag, i)
	if err != nil {
		return ast.NoNode, i, err
	}
	return id, end, nil
}

// parseChildren parses markup children of parent from j until the closing
// tag for tag. With open < 0 it parses until the scanner limit instead.
func (s *scanner) parseChildren(j int, parent ast.NodeID, mode markupMode, tag string, open int) (int, error) {
	src := s.src
	for {
		if j >= s.limit {
			if open < 0 {
				return j, nil
			}
			return j, newParseError(src, open, "unclosed element <%s>", tag)
		}

		switch {
		case strings.HasPrefix(src[j:], "</"):
			if open < 0 {
				return j, newParseError(src, j, "unexpected closing tag")
			}
			k := j + 2
			for k < s.limit && src[k] != '>' {
				k++
			}
			if k >= s.limit {
				return j, newParseError(src, j, "unterminated closing tag")
			}
			if closing := strings.TrimSpace(src[j+2 : k]); closing != tag {
				return j, newParseError(src, j, "mismatched closing tag </%s>, expected </%s>", closing, tag)
			}
			return k + 1, nil

		case mode == markupTemplate && strings.HasPrefix(src[j:], "<!--"):
			k := strings.Index(src[j:s.limit], "-->")
			if k < 0 {
				return j, newParseError(src, j, "unterminated comment")
			}
			s.appendNode(parent, ast.Node{Kind: ast.KindText, Text: src[j : j+k+3], Pos: j})
			j += k + 3

		case src[j] == '<' && j+1 < s.limit && (isIdentStart(src[j+1]) || src[j+1] == '>'):
			child, end, err := s.parseElement(j, mode)
			if err != nil {
				return j, err
			}
			s.tree.AppendChild(parent, child)
			j = end

		case mode == markupJSX && src[j] == '{':
			expr := s.tree.Add(ast.Node{Kind: ast.KindExpression, Tag: "{", Pos: j})
			s.tree.AppendChild(parent, expr)
			end, err := s.scanScript(j+1, scanMode{parent: expr, close: '}'})
			if err != nil {
				return j, err
			}
			j = end + 1

		case mode == markupTemplate && strings.HasPrefix(src[j:], "{{"):
			end, err := s.scanScript(j+2, scanMode{parent: ast.NoNode, close: '}'})
			if err != nil {
				return j, err
			}
			if end+1 >= s.limit || src[end+1] != '}' {
				return j, newParseError(src, j, "unterminated interpolation")
			}
			expr := s.tree.Add(ast.Node{Kind: ast.KindExpression, Tag: "{{", Pos: j})
			s.tree.AppendChild(parent, expr)
			s.appendNode(expr, ast.Node{Kind: ast.KindCode, Text: src[j+2 : end], Pos: j + 2})
			j = end + 2

		default:
			k := j + 1
			for k < s.limit && !s.textStop(k, mode) {
				k++
			}
			s.appendNode(parent, ast.Node{Kind: ast.KindText, Text: src[j:k], Pos: j})
			j = k
		}
	}
}

func (s *scanner) textStop(k int, mode markupMode) bool {
	switch s.src[k] {
	case '<':
		return true
	case '{':
		return mode == markupJSX || (k+1 < s.limit && s.src[k+1] == '{')
	}
	return false
}

func (s *scanner) appendNode(parent ast.NodeID, n ast.Node) ast.NodeID {
	id := s.tree.Add(n)
	s.tree.AppendChild(parent, id)
	return id
}

// parseAttribute parses one attribute (or JSX spread) at j.
func (s *scanner) parseAttribute(j int, mode markupMode) (ast.Attribute, int, error) {
	src := s.src
	if mode == markupJSX && src[j] == '{' {
		k := skipSpace(src, j+1)
		if !strings.HasPrefix(src[k:], "...") {
			return ast.Attribute{}, j, newParseError(src, j, "expected spread attribute")
		}
		end, err := s.scanScript(k+3, scanMode{parent: ast.NoNode, close: '}'})
		if err != nil {
			return ast.Attribute{}, j, err
		}
		return ast.Attribute{Kind: ast.AttrSpread, Value: strings.TrimSpace(src[k+3 : end])}, end + 1, nil
	}

	nameStart := j
	for j < s.limit && (isTagChar(src[j]) || src[j] == '[' || src[j] == ']') {
		j++
	}
	if j == nameStart {
		return ast.Attribute{}, j, newParseError(src, j, "unexpected %q in tag", string(src[j]))
	}
	attr := ast.Attribute{Name: src[nameStart:j], Kind: ast.AttrBoolean}

	k := skipSpace(src, j)
	if k >= s.limit || src[k] != '=' {
		return attr, j, nil
	}
	k = skipSpace(src, k+1)
	if k >= s.limit {
		return attr, k, newParseError(src, nameStart, "missing value for attribute %s", attr.Name)
	}

	switch c := src[k]; {
	case c == '"' || c == '\'':
		end := strings.IndexByte(src[k+1:s.limit], c)
		if end < 0 {
			return attr, k, newParseError(src, k, "unterminated attribute value")
		}
		attr.Kind, attr.Value = ast.AttrStatic, src[k+1:k+1+end]
		return attr, k + end + 2, nil

	case c == '{' && mode == markupJSX:
		end, err := s.scanScript(k+1, scanMode{parent: ast.NoNode, close: '}'})
		if err != nil {
			return attr, k, err
		}
		attr.Kind, attr.Value = ast.AttrExpression, src[k+1:end]
		return attr, end + 1, nil

	case mode == markupTemplate:
		end := k
		for end < s.limit && !isSpace(src[end]) && src[end] != '>' && !(src[end] == '/' && end+1 < s.limit && src[end+1] == '>') {
			end++
		}
		attr.Kind, attr.Value = ast.AttrStatic, src[k:end]
		return attr, end, nil
	}
	return attr, k, newParseError(src, k, "malformed value for attribute %s", attr.Name)
}

// skipTagSpace skips whitespace inside a tag; JSX also allows comments.
func (s *scanner) skipTagSpace(j int, mode markupMode) (int, error) {
	if mode == markupJSX {
		return skipTrivia(s.src, j)
	}
	return skipSpace(s.src, j), nil
}
