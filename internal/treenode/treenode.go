// Package treenode implements an intrusive ownership tree. A Branch owns its
// children; every node keeps a non-owning reference to its parent.
//
// Leaf types embed Leaf and have no child sequence at all, so adding a child
// to them does not compile. Container types embed Branch[C], where C is the
// only node type they accept.
package treenode

import "slices"

// Node is a member of an ownership tree.
type Node interface {
	// Parent returns the owning container, or nil for a root or a detached node.
	Parent() Container
	// Row returns the node's index in its parent's child sequence, or 0 for a root.
	Row() int
	// RemoveSelf detaches the node from its parent. It panics on a root.
	RemoveSelf()

	link(parent Container, self Node)
}

// Container is a Node that owns an ordered sequence of children.
type Container interface {
	Node
	ChildCount() int
	Child(row int) Node
	RemoveChild(row int)
	RemoveChildren()

	indexOf(n Node) int
}

// Leaf is the parent-reference half of a node. Embed it in node types that
// must never gain children.
type Leaf struct {
	parent Container
	self   Node
}

func (l *Leaf) Parent() Container {
	return l.parent
}

func (l *Leaf) Row() int {
	if l.parent == nil {
		return 0
	}
	row := l.parent.indexOf(l.self)
	if row < 0 {
		panic("treenode: node is missing from its parent's children")
	}
	return row
}

func (l *Leaf) RemoveSelf() {
	if l.parent == nil {
		panic("treenode: RemoveSelf called on a root node")
	}
	l.parent.RemoveChild(l.Row())
}

func (l *Leaf) link(parent Container, self Node) {
	l.parent = parent
	l.self = self
}

// Branch owns children of type C.
//
// A branch adopts children only once it has an identity: either it was
// created with NewRoot, or it has itself been added to a parent. Children
// then see the outermost node type (the one embedding Branch) as their parent.
type Branch[C Node] struct {
	Leaf
	children []C
}

// NewRoot returns a parentless branch ready to adopt children.
func NewRoot[C Node]() *Branch[C] {
	b := &Branch[C]{}
	b.self = b
	return b
}

// AddChild appends node to the child sequence.
func (b *Branch[C]) AddChild(node C) {
	b.InsertChild(len(b.children), node)
}

// InsertChild inserts node at row, shifting later siblings down.
func (b *Branch[C]) InsertChild(row int, node C) {
	owner, ok := b.self.(Container)
	if !ok {
		panic("treenode: branch must be attached or created with NewRoot before adopting children")
	}
	if node.Parent() != nil {
		panic("treenode: node already has a parent")
	}
	node.link(owner, node)
	b.children = slices.Insert(b.children, row, node)
}

// RemoveChild detaches the child at row together with its subtree and
// compacts the child sequence.
func (b *Branch[C]) RemoveChild(row int) {
	child := b.children[row]
	b.children = slices.Delete(b.children, row, row+1)
	release(child)
}

// RemoveChildren detaches every child.
func (b *Branch[C]) RemoveChildren() {
	children := b.children
	b.children = nil
	for _, child := range children {
		release(child)
	}
}

// HasChild reports whether node is a direct child of b.
func (b *Branch[C]) HasChild(node C) bool {
	return b.indexOf(node) >= 0
}

// HasChildren reports whether b owns at least one child.
func (b *Branch[C]) HasChildren() bool {
	return len(b.children) > 0
}

func (b *Branch[C]) ChildCount() int {
	return len(b.children)
}

func (b *Branch[C]) Child(row int) Node {
	return b.children[row]
}

// At returns the child at row with its concrete type.
func (b *Branch[C]) At(row int) C {
	return b.children[row]
}

// Children returns a copy of the child sequence.
func (b *Branch[C]) Children() []C {
	return slices.Clone(b.children)
}

func (b *Branch[C]) indexOf(n Node) int {
	for i, child := range b.children {
		if Node(child) == n {
			return i
		}
	}
	return -1
}

// release tears down a removed subtree so no descendant keeps a reference
// into the live tree.
func release(n Node) {
	if c, ok := n.(Container); ok {
		c.RemoveChildren()
	}
	n.link(nil, n)
}
