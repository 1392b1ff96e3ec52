package apkicons

import (
	"fmt"

	"github.com/jward/apkicons/internal/resource"
	"github.com/jward/apkicons/internal/source"
	"github.com/jward/apkicons/internal/treenode"
)

// Index addresses one cell of the projection. The zero Index is the
// invisible root. Like any model index it is only meaningful until the next
// structural change.
type Index struct {
	row    int
	column int
	node   treenode.Node
}

// IsValid reports whether the index addresses a row.
func (i Index) IsValid() bool { return i.node != nil }

// Row returns the index's row within its parent.
func (i Index) Row() int { return i.row }

// Column returns the index's column.
func (i Index) Column() int { return i.column }

// Sibling returns the index of column in the same row.
func (i Index) Sibling(column int) Index {
	if !i.IsValid() || column < 0 || column >= columnCount {
		return Index{}
	}
	return Index{row: i.row, column: column, node: i.node}
}

// indexOf returns the column 0 index of a live node, or the root index.
func (m *Model) indexOf(n treenode.Node) Index {
	if n == nil || n == treenode.Node(m.root) {
		return Index{}
	}
	return Index{row: n.Row(), node: n}
}

func (m *Model) container(parent Index) treenode.Container {
	if !parent.IsValid() {
		return m.root
	}
	if parent.column != 0 {
		return nil
	}
	c, _ := parent.node.(treenode.Container)
	return c
}

// Index returns the index of (row, column) under parent.
func (m *Model) Index(row, column int, parent Index) Index {
	c := m.container(parent)
	if c == nil || row < 0 || row >= c.ChildCount() || column < 0 || column >= columnCount {
		return Index{}
	}
	return Index{row: row, column: column, node: c.Child(row)}
}

// Parent returns the parent of idx. Top-level rows have the root as parent.
func (m *Model) Parent(idx Index) Index {
	if !idx.IsValid() {
		return Index{}
	}
	p := idx.node.Parent()
	if p == nil {
		return Index{}
	}
	return m.indexOf(p)
}

// RowCount returns the number of child rows under parent. The root always
// has two.
func (m *Model) RowCount(parent Index) int {
	c := m.container(parent)
	if c == nil {
		return 0
	}
	return c.ChildCount()
}

// ColumnCount returns the number of columns, which is the same for every row.
func (m *Model) ColumnCount(Index) int {
	return columnCount
}

// HasChildren reports whether parent has child rows.
func (m *Model) HasChildren(parent Index) bool {
	return m.RowCount(parent) > 0
}

// Data returns the display text of a cell: a caption, a source path, or an
// icon slot name depending on the column.
func (m *Model) Data(idx Index) string {
	if !idx.IsValid() {
		return ""
	}
	switch idx.column {
	case ColumnCaption:
		return m.caption(idx.node)
	case ColumnPath:
		if icon, ok := idx.node.(*IconNode); ok {
			return m.iconPath(icon)
		}
	case ColumnType:
		if icon, ok := idx.node.(*IconNode); ok {
			return icon.iconType.String()
		}
	}
	return ""
}

func (m *Model) caption(n treenode.Node) string {
	switch n := n.(type) {
	case *applicationGroup:
		return "Application"
	case *activitiesGroup:
		return "Activities"
	case *ActivityNode:
		return n.scope.Caption()
	case *IconNode:
		return resource.Caption(m.iconPath(n))
	}
	return ""
}

func (m *Model) iconPath(icon *IconNode) string {
	h, ok := m.proxies.Key(icon)
	if !ok {
		return ""
	}
	return m.src.PathOf(h)
}

// IconNode returns the icon at idx, or nil if idx is not an icon row.
func (m *Model) IconNode(idx Index) *IconNode {
	icon, _ := idx.node.(*IconNode)
	return icon
}

// ActivityNode returns the activity at idx, or nil if idx is not an
// activity row.
func (m *Model) ActivityNode(idx Index) *ActivityNode {
	act, _ := idx.node.(*ActivityNode)
	return act
}

// MapToSource returns the source handle of the icon at idx. Group and
// activity rows have no source and report false.
func (m *Model) MapToSource(idx Index) (Handle, bool) {
	icon := m.IconNode(idx)
	if icon == nil {
		return Handle{}, false
	}
	return m.proxies.Key(icon)
}

// MapFromSource returns the index of the icon projecting h, or an invalid
// index if h is not projected.
func (m *Model) MapFromSource(h Handle) Index {
	icon, ok := m.proxies.Value(h)
	if !ok {
		return Index{}
	}
	return m.indexOf(icon)
}

// IndexForPath returns the icon row projecting the source node at p.
func (m *Model) IndexForPath(p string) (Index, error) {
	if m.src == nil {
		return Index{}, ErrNoSource
	}
	h, ok := m.src.Lookup(p)
	if !ok {
		return Index{}, fmt.Errorf("apkicons: %s: %w", p, source.ErrNotFound)
	}
	idx := m.MapFromSource(h)
	if !idx.IsValid() {
		return Index{}, fmt.Errorf("apkicons: %s is not an icon: %w", p, ErrInvalidIndex)
	}
	return idx, nil
}

// representative returns the icon shown for idx: the icon itself, or the
// first icon of a group or activity.
func (m *Model) representative(idx Index) *IconNode {
	switch n := idx.node.(type) {
	case *IconNode:
		return n
	case *ActivityNode:
		if n.HasChildren() {
			return n.At(0)
		}
	case *applicationGroup:
		if n.HasChildren() {
			return n.At(0)
		}
	}
	return nil
}

// GetIconPath returns the source path of the icon at idx. For the
// application row and activity rows it is the path of their first icon.
func (m *Model) GetIconPath(idx Index) string {
	icon := m.representative(idx)
	if icon == nil {
		return ""
	}
	return m.iconPath(icon)
}

// GetIconCaption returns the caption column of idx.
func (m *Model) GetIconCaption(idx Index) string {
	return m.Data(idx.Sibling(ColumnCaption))
}

// GetIconType returns the slot of the icon at idx.
func (m *Model) GetIconType(idx Index) (IconType, bool) {
	icon := m.IconNode(idx)
	if icon == nil {
		return 0, false
	}
	return icon.iconType, true
}

// ResourcePath returns the source path behind idx, or "" when idx is not
// an icon row.
func (m *Model) ResourcePath(idx Index) string {
	icon := m.IconNode(idx)
	if icon == nil {
		return ""
	}
	return m.iconPath(icon)
}
