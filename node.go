package apkicons

import (
	"github.com/jward/apkicons/internal/treenode"
)

// IconNode is a projected source file. It embeds only treenode.Leaf, so it
// has no child sequence.
type IconNode struct {
	treenode.Leaf
	iconType   IconType
	scope      *Scope
	scopeIndex int
}

// Type returns the slot the icon was classified under.
func (n *IconNode) Type() IconType { return n.iconType }

// Scope returns the scope that claimed the icon.
func (n *IconNode) Scope() *Scope { return n.scope }

// ActivityNode groups the icons of one activity scope.
type ActivityNode struct {
	treenode.Branch[*IconNode]
	scope      *Scope
	scopeIndex int
}

// Scope returns the activity scope the node represents.
func (n *ActivityNode) Scope() *Scope { return n.scope }

type applicationGroup struct {
	treenode.Branch[*IconNode]
}

type activitiesGroup struct {
	treenode.Branch[*ActivityNode]
}

// iconParent is implemented by the two node types that hold icons.
type iconParent interface {
	treenode.Container
	At(row int) *IconNode
	InsertChild(row int, node *IconNode)
}

var (
	_ iconParent = (*applicationGroup)(nil)
	_ iconParent = (*ActivityNode)(nil)
)
