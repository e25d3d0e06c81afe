package emitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// output accumulates generated text and remembers, for every generated
// line, the source offset its first mapped byte came from.
type output struct {
	b     strings.Builder
	lines []int
}

func newOutput() *output {
	return &output{lines: []int{-1}}
}

// write appends text copied from the source at pos, or synthesized when pos
// is negative.
func (o *output) write(text string, pos int) {
	for text != "" {
		if cur := len(o.lines) - 1; o.lines[cur] < 0 && pos >= 0 {
			o.lines[cur] = pos
		}
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			o.b.WriteString(text)
			return
		}
		o.b.WriteString(text[:i+1])
		text = text[i+1:]
		if pos >= 0 {
			pos += i + 1
		}
		o.lines = append(o.lines, -1)
	}
}

// serializer writes a tree back out as source text. Imports are written at
// the top of the program, or at the top of importBlock for single-file
// components.
type serializer struct {
	tree        *ast.Tree
	out         *output
	imports     string
	importBlock ast.NodeID

	trimLead   bool
	blankFirst bool
}

type frame struct {
	id    ast.NodeID
	close string
	done  bool
}

func serialize(tree *ast.Tree, imports string, importBlock ast.NodeID) (*output, error) {
	s := &serializer{tree: tree, out: newOutput(), imports: imports, importBlock: importBlock}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.out, nil
}

func (s *serializer) run() error {
	t := s.tree
	if t == nil || !t.Valid(t.Root()) || t.Node(t.Root()).Kind != ast.KindProgram {
		return errors.New("tree has no program root")
	}
	if s.imports != "" && s.importBlock == ast.NoNode {
		s.out.write(s.imports, -1)
		s.blankFirst = true
	}

	stack := []frame{{id: t.Root()}}
	visits := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.done {
			s.trimLead = false
			s.out.write(f.close, -1)
			continue
		}
		if visits++; visits > t.Len() {
			return errors.New("tree contains a cycle")
		}

		n := t.Node(f.id)
		closing, err := s.open(f.id, n)
		if err != nil {
			return err
		}
		if closing != "" {
			stack = append(stack, frame{close: closing, done: true})
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			c := n.Children[i]
			if !t.Valid(c) {
				return fmt.Errorf("node %d has dangling child %d", f.id, c)
			}
			stack = append(stack, frame{id: c})
		}
	}
	return nil
}

// open writes the part of n that precedes its children and returns what
// follows them.
func (s *serializer) open(id ast.NodeID, n *ast.Node) (string, error) {
	switch n.Kind {
	case ast.KindProgram:
		return "", nil
	case ast.KindCode, ast.KindText:
		s.emit(n.Text, n.Pos)
		return "", nil
	case ast.KindCall:
		s.emit(n.Tag+"("+strings.Join(n.Args, ",")+")", n.Pos)
		return "", nil
	case ast.KindExpression:
		open, closing := "{", "}"
		if n.Tag == "{{" {
			open, closing = "{{", "}}"
		}
		s.emit(open, n.Pos)
		return closing, nil
	case ast.KindElement:
		s.emit("<"+n.Tag+formatAttrs(n.Attrs), n.Pos)
		if n.SelfClosing && len(n.Children) == 0 {
			s.out.write(" />", -1)
			return "", nil
		}
		s.out.write(">", -1)
		return "</" + n.Tag + ">", nil
	case ast.KindBlock:
		s.emit("<"+n.Tag+formatAttrs(n.Attrs)+">", n.Pos)
		if id == s.importBlock && s.imports != "" {
			s.out.write("\n"+s.imports, -1)
			s.trimLead = true
		}
		return "</" + n.Tag + ">", nil
	default:
		return "", fmt.Errorf("node %d has unknown kind %s", id, n.Kind)
	}
}

// emit writes source-derived text, applying the pending separators around
// lifted imports.
func (s *serializer) emit(text string, pos int) {
	if s.trimLead {
		trimmed := strings.TrimLeft(text, "\r\n")
		if pos >= 0 {
			pos += len(text) - len(trimmed)
		}
		text = trimmed
		if text == "" {
			return
		}
		s.trimLead = false
	}
	if text == "" {
		return
	}
	if s.blankFirst {
		if !strings.HasPrefix(text, "\n") && !strings.HasPrefix(text, "\r\n") {
			s.out.write("\n", -1)
		}
		s.blankFirst = false
	}
	s.out.write(text, pos)
}

func formatAttrs(attrs []ast.Attribute) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(formatAttr(a))
	}
	return b.String()
}

func formatAttr(a ast.Attribute) string {
	switch a.Kind {
	case ast.AttrExpression:
		return a.Name + "={" + a.Value + "}"
	case ast.AttrBoolean:
		return a.Name
	case ast.AttrSpread:
		return "{..." + a.Value + "}"
	default:
		if strings.Contains(a.Value, `"`) {
			return a.Name + "='" + a.Value + "'"
		}
		return a.Name + `="` + a.Value + `"`
	}
}

// render serializes the subtree at id with no imports, for conversions.
func render(tree *ast.Tree, id ast.NodeID) string {
	sub := &serializer{tree: tree, out: newOutput(), importBlock: ast.NoNode}
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.done {
			sub.out.write(f.close, -1)
			continue
		}
		n := tree.Node(f.id)
		closing, err := sub.open(f.id, n)
		if err != nil {
			continue
		}
		if closing != "" {
			stack = append(stack, frame{close: closing, done: true})
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.Children[i]})
		}
	}
	return sub.out.b.String()
}
