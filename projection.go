package apkicons

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jward/apkicons/internal/manifest"
)

// sourceListener forwards source notifications to the model without
// exposing the Listener methods on Model itself.
type sourceListener struct {
	m *Model
}

func (l *sourceListener) RowsInserted(parent Handle, first, last int) {
	l.m.mutate(func() { l.m.sourceRowsInserted(parent, first, last) })
}

func (l *sourceListener) RowsAboutToBeRemoved(parent Handle, first, last int) {
	l.m.mutate(func() { l.m.sourceRowsAboutToBeRemoved(parent, first, last) })
}

func (l *sourceListener) DataChanged(first, last Handle) {
	l.m.mutate(func() { l.m.sourceDataChanged(first, last) })
}

func (l *sourceListener) Reset() {
	l.m.log.Debug("source reset")
	l.m.mutate(l.m.rebuild)
}

// rebuild discards the projection and populates it again from the source.
func (m *Model) rebuild() {
	m.app.RemoveChildren()
	m.activities.RemoveChildren()
	m.proxies.Clear()
	m.images.Purge()
	if m.src != nil {
		m.populate()
	}
	m.log.WithFields(logrus.Fields{
		"scopes": len(m.scopes),
		"icons":  m.proxies.Len(),
	}).Debug("populate")
	m.emit(Event{Kind: EventReset})
}

// populate resolves every (scope, slot) pair and projects the files it
// resolves to that no earlier pair has claimed.
func (m *Model) populate() {
	for si, scope := range m.scopes {
		for _, t := range manifest.IconTypes {
			ref := scope.Reference(t)
			if ref == "" {
				continue
			}
			handles := m.resolver.Resolve(m.src, ref)
			if len(handles) == 0 {
				m.log.WithFields(logrus.Fields{"scope": scope.Caption(), "ref": ref}).Trace("unresolved")
				continue
			}
			for _, h := range handles {
				if m.proxies.ContainsKey(h) {
					continue
				}
				m.appendIcon(h, si, t, false)
			}
		}
	}
}

// classify returns the first (scope, slot) whose reference matches h.
func (m *Model) classify(h Handle) (int, IconType, bool) {
	p := m.src.PathOf(h)
	for si, scope := range m.scopes {
		for _, t := range manifest.IconTypes {
			ref := scope.Reference(t)
			if ref != "" && m.resolver.Matches(ref, p) {
				return si, t, true
			}
		}
	}
	return 0, 0, false
}

// offer projects h if it matches a scope. Directories offer their whole
// subtree.
func (m *Model) offer(h Handle) {
	if m.src.IsDir(h) {
		for row := range m.src.ChildCount(h) {
			m.offer(m.src.Child(h, row))
		}
		return
	}
	if m.proxies.ContainsKey(h) {
		return
	}
	if si, t, ok := m.classify(h); ok {
		m.appendIcon(h, si, t, true)
	}
}

// prune drops the projection of h and, for directories, of its subtree.
func (m *Model) prune(h Handle) {
	if m.src.IsDir(h) {
		for row := range m.src.ChildCount(h) {
			m.prune(m.src.Child(h, row))
		}
		return
	}
	if icon, ok := m.proxies.Value(h); ok {
		m.removeIcon(icon)
	}
}

func (m *Model) sourceRowsInserted(parent Handle, first, last int) {
	before := m.proxies.Len()
	for row := first; row <= last; row++ {
		m.offer(m.src.Child(parent, row))
	}
	m.log.WithFields(logrus.Fields{
		"parent": m.src.PathOf(parent),
		"first":  first,
		"last":   last,
		"added":  m.proxies.Len() - before,
	}).Debug("insert")
}

func (m *Model) sourceRowsAboutToBeRemoved(parent Handle, first, last int) {
	before := m.proxies.Len()
	for row := first; row <= last; row++ {
		m.prune(m.src.Child(parent, row))
	}
	m.log.WithFields(logrus.Fields{
		"parent":  m.src.PathOf(parent),
		"first":   first,
		"last":    last,
		"removed": before - m.proxies.Len(),
	}).Debug("remove")
}

// sourceDataChanged re-classifies changed files that are projected. A file
// whose claim still holds keeps its row; otherwise its row is dropped and
// the file is offered again.
func (m *Model) sourceDataChanged(first, last Handle) {
	if !m.src.Valid(first) || !m.src.Valid(last) {
		return
	}
	parent := m.src.Parent(first)
	from, to := m.src.Row(first), m.src.Row(last)
	for row := from; row <= to; row++ {
		h := m.src.Child(parent, row)
		icon, ok := m.proxies.Value(h)
		if !ok {
			continue
		}
		m.images.Remove(h)
		si, t, ok := m.classify(h)
		if ok && si == icon.scopeIndex && t == icon.iconType {
			m.emit(Event{Kind: EventDataChanged, Parent: m.indexOf(icon.Parent()), First: icon.Row(), Last: icon.Row()})
			continue
		}
		m.log.WithField("path", m.src.PathOf(h)).Debug("reclassify")
		m.removeIcon(icon)
		m.offer(h)
	}
}

// appendIcon creates the icon row for h under the group of scope si,
// creating the activity row first if needed.
func (m *Model) appendIcon(h Handle, si int, t IconType, notify bool) {
	scope := m.scopes[si]
	var parent iconParent = m.app
	if !scope.IsApplication() {
		act, row, created := m.activityFor(si)
		if created && notify {
			m.emit(Event{Kind: EventRowsInserted, Parent: m.indexOf(m.activities), First: row, Last: row})
		}
		parent = act
	}
	icon := &IconNode{iconType: t, scope: scope, scopeIndex: si}
	row := m.iconRow(parent, h, icon)
	parent.InsertChild(row, icon)
	m.proxies.Insert(h, icon)
	if notify {
		m.emit(Event{Kind: EventRowsInserted, Parent: m.indexOf(parent), First: row, Last: row})
	}
}

// activityFor returns the activity row for scope si, inserting it in scope
// order if it does not exist yet.
func (m *Model) activityFor(si int) (*ActivityNode, int, bool) {
	row := m.activities.ChildCount()
	for i, act := range m.activities.Children() {
		if act.scopeIndex == si {
			return act, i, false
		}
		if act.scopeIndex > si {
			row = i
			break
		}
	}
	act := &ActivityNode{scope: m.scopes[si], scopeIndex: si}
	m.activities.InsertChild(row, act)
	return act, row, true
}

// iconRow is the position a full rebuild would give icon among parent's
// children: by scope, then slot, then source tree order.
func (m *Model) iconRow(parent iconParent, h Handle, icon *IconNode) int {
	n := parent.ChildCount()
	for row := range n {
		sib := parent.At(row)
		if sib.scopeIndex != icon.scopeIndex {
			if sib.scopeIndex > icon.scopeIndex {
				return row
			}
			continue
		}
		if sib.iconType != icon.iconType {
			if sib.iconType > icon.iconType {
				return row
			}
			continue
		}
		sh, _ := m.proxies.Key(sib)
		if m.treeOrder(h, sh) < 0 {
			return row
		}
	}
	return n
}

// treeOrder compares the pre-order positions of two source nodes.
func (m *Model) treeOrder(a, b Handle) int {
	pa, pb := m.rowPath(a), m.rowPath(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] - pb[i]
		}
	}
	return len(pa) - len(pb)
}

func (m *Model) rowPath(h Handle) []int {
	var rows []int
	root := m.src.Root()
	for h != root && m.src.Valid(h) {
		rows = append(rows, m.src.Row(h))
		h = m.src.Parent(h)
	}
	slices.Reverse(rows)
	return rows
}

// removeIcon drops icon and its mapping. An activity left without icons is
// removed as well.
func (m *Model) removeIcon(icon *IconNode) {
	h, ok := m.proxies.DeleteValue(icon)
	if !ok {
		panic("apkicons: icon row without a source mapping")
	}
	m.images.Remove(h)
	parent := icon.Parent()
	parentIndex := m.indexOf(parent)
	row := icon.Row()
	icon.RemoveSelf()
	m.emit(Event{Kind: EventRowsRemoved, Parent: parentIndex, First: row, Last: row})

	if act, ok := parent.(*ActivityNode); ok && !act.HasChildren() {
		arow := act.Row()
		act.RemoveSelf()
		m.emit(Event{Kind: EventRowsRemoved, Parent: m.indexOf(m.activities), First: arow, Last: arow})
	}
}
