// Package ast holds the structural tree Plume parses components into.
//
// The tree is an arena: nodes live in one slice and refer to each other by
// NodeID, with parents tracked in a separate slice. There are no pointer
// cycles, so a tree can be deep-copied with two slice copies and traversed
// with an explicit stack.
package ast

import (
	"fmt"
	"strings"
)

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode is the parent of the root and of detached nodes.
const NoNode NodeID = -1

// Kind is the structural category of a node.
type Kind uint8

const (
	// KindProgram is the root of every tree.
	KindProgram Kind = iota
	// KindBlock is a top level single-file-component block (template,
	// script, style). Tag holds the block name, Attrs its attributes.
	KindBlock
	// KindCode is raw script text carried through verbatim.
	KindCode
	// KindElement is a tag-like element.
	KindElement
	// KindText is literal markup text.
	KindText
	// KindExpression is an embedded expression: a JSX {…} container or a
	// {{ … }} template interpolation (Tag is "{" or "{{"). Its children are
	// Code, Element and Call nodes.
	KindExpression
	// KindCall is an invocation of a reserved function. Tag is the callee
	// and Args the raw argument source.
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindBlock:
		return "block"
	case KindCode:
		return "code"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindExpression:
		return "expression"
	case KindCall:
		return "call"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// AttrKind says how an attribute value was written.
type AttrKind uint8

const (
	// AttrStatic is a quoted string value: name="value".
	AttrStatic AttrKind = iota
	// AttrExpression is a JSX expression value: name={value}.
	AttrExpression
	// AttrBoolean is a bare attribute: name.
	AttrBoolean
	// AttrSpread is a JSX spread: {...value}. Name is empty.
	AttrSpread
)

// Attribute is one element attribute, kept in source order.
type Attribute struct {
	Name  string
	Kind  AttrKind
	Value string
}

// Node is one structural node. Which fields matter depends on Kind.
type Node struct {
	Kind        Kind
	Tag         string
	Attrs       []Attribute
	Text        string
	Args        []string
	SelfClosing bool
	Children    []NodeID
	// Pos is the byte offset of the node in the parsed source, or -1 for
	// nodes synthesized by a rewrite.
	Pos int
}

// Attr returns the attribute with the given name and its index.
func (n *Node) Attr(name string) (*Attribute, int) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			return &n.Attrs[i], i
		}
	}
	return nil, -1
}

// HasAttr reports whether any of names is present.
func (n *Node) HasAttr(names ...string) bool {
	for _, name := range names {
		if a, _ := n.Attr(name); a != nil {
			return true
		}
	}
	return false
}

// IsMotion reports whether the node is an element in the animation
// namespace (motion.div, m.span).
func (n *Node) IsMotion() bool {
	if n.Kind != KindElement {
		return false
	}
	return strings.HasPrefix(n.Tag, "motion.") || strings.HasPrefix(n.Tag, "m.")
}

// Tree is the node arena.
type Tree struct {
	nodes  []Node
	parent []NodeID
	root   NodeID
}

// NewTree returns a tree containing only a Program root.
func NewTree() *Tree {
	t := &Tree{}
	t.root = t.Add(Node{Kind: KindProgram})
	return t
}

// Root returns the Program node id.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the arena, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether id addresses a node.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns a pointer into the arena. The pointer is invalidated by the
// next Add, so do not hold it across allocations.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.parent[id]
}

// Add allocates a detached node and returns its id. Child ids already set
// on n are adopted (and detached from any previous parent).
func (t *Tree) Add(n Node) NodeID {
	for _, c := range n.Children {
		t.detach(c)
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.parent = append(t.parent, NoNode)
	for _, c := range n.Children {
		t.parent[c] = id
	}
	return id
}

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.detach(child)
	t.nodes[parent].Children = append(t.nodes[parent].Children, child)
	t.parent[child] = parent
}

// InsertChild attaches child at index among parent's children.
func (t *Tree) InsertChild(parent NodeID, index int, child NodeID) {
	t.detach(child)
	kids := t.nodes[parent].Children
	if index < 0 || index > len(kids) {
		index = len(kids)
	}
	kids = append(kids, NoNode)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	t.nodes[parent].Children = kids
	t.parent[child] = parent
}

// Replace splices with into old's position under old's parent. An empty
// with removes old. Replacing the root is an error.
func (t *Tree) Replace(old NodeID, with []NodeID) error {
	p := t.parent[old]
	if p == NoNode {
		return fmt.Errorf("cannot replace node %d: it has no parent", old)
	}
	idx := t.IndexOf(p, old)
	if idx < 0 {
		return fmt.Errorf("node %d is not a child of %d", old, p)
	}

	// A replacement may be old itself (in-place rewrite) or contain it.
	keep := false
	for _, id := range with {
		if id == old {
			keep = true
		}
	}
	for _, id := range with {
		if id != old {
			t.detach(id)
		}
	}
	idx = t.IndexOf(p, old)

	kids := t.nodes[p].Children
	spliced := make([]NodeID, 0, len(kids)-1+len(with))
	spliced = append(spliced, kids[:idx]...)
	spliced = append(spliced, with...)
	spliced = append(spliced, kids[idx+1:]...)
	t.nodes[p].Children = spliced

	if !keep {
		t.parent[old] = NoNode
	}
	for _, id := range with {
		t.parent[id] = p
	}
	return nil
}

// Wrap puts wrapper in id's position and makes id its only child. It returns
// the wrapper's id.
func (t *Tree) Wrap(id NodeID, wrapper Node) (NodeID, error) {
	wrapper.Children = nil
	w := t.Add(wrapper)
	if err := t.Replace(id, []NodeID{w}); err != nil {
		return NoNode, err
	}
	t.AppendChild(w, id)
	return w, nil
}

// IndexOf returns child's position among parent's children, or -1.
func (t *Tree) IndexOf(parent, child NodeID) int {
	for i, c := range t.nodes[parent].Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Attached reports whether id is reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	for steps := 0; id != NoNode && steps <= len(t.nodes); steps++ {
		if id == t.root {
			return true
		}
		id = t.parent[id]
	}
	return false
}

func (t *Tree) detach(id NodeID) {
	p := t.parent[id]
	if p == NoNode {
		return
	}
	if idx := t.IndexOf(p, id); idx >= 0 {
		kids := t.nodes[p].Children
		t.nodes[p].Children = append(kids[:idx:idx], kids[idx+1:]...)
	}
	t.parent[id] = NoNode
}

// Walk visits attached nodes in pre-order (source order). Returning false
// from visit skips the node's children.
func (t *Tree) Walk(visit func(id NodeID) bool) {
	t.WalkFrom(t.root, visit)
}

// WalkFrom is Walk starting at an arbitrary node.
func (t *Tree) WalkFrom(start NodeID, visit func(id NodeID) bool) {
	stack := []NodeID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(id) {
			continue
		}
		kids := t.nodes[id].Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Preorder returns the ids Walk would visit.
func (t *Tree) Preorder() []NodeID {
	ids := make([]NodeID, 0, len(t.nodes))
	t.Walk(func(id NodeID) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Ancestors returns the parents of id from nearest to the root.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := t.parent[id]; p != NoNode; p = t.parent[p] {
		out = append(out, p)
	}
	return out
}

// Find returns the first attached node, in source order, matching pred.
func (t *Tree) Find(pred func(n *Node) bool) (NodeID, bool) {
	found := NoNode
	t.Walk(func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		if pred(&t.nodes[id]) {
			found = id
			return false
		}
		return true
	})
	return found, found != NoNode
}

// Clone deep-copies the arena.
func (t *Tree) Clone() *Tree {
	cp := &Tree{
		nodes:  make([]Node, len(t.nodes)),
		parent: append([]NodeID(nil), t.parent...),
		root:   t.root,
	}
	for i, n := range t.nodes {
		n.Attrs = append([]Attribute(nil), n.Attrs...)
		n.Args = append([]string(nil), n.Args...)
		n.Children = append([]NodeID(nil), n.Children...)
		cp.nodes[i] = n
	}
	return cp
}
