package restree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jward/apkicons/internal/source"
)

// Subscribe registers l for notifications.
func (t *Tree) Subscribe(l source.Listener) func() {
	sub := &subscription{l: l}
	t.subs = append(t.subs, sub)
	return func() {
		t.subs = slices.DeleteFunc(t.subs, func(s *subscription) bool { return s == sub })
	}
}

func (t *Tree) notify(fn func(l source.Listener)) {
	t.delivering = true
	defer func() { t.delivering = false }()
	for _, sub := range slices.Clone(t.subs) {
		fn(sub.l)
	}
}

func (t *Tree) checkMutable() error {
	if t.delivering {
		return source.ErrReentrant
	}
	return nil
}

// Mkdir creates the directory p and any missing parents. Each created
// directory is announced with its own RowsInserted notification.
func (t *Tree) Mkdir(p string) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	parts, err := splitPath(p)
	if err != nil {
		return err
	}
	if t.dir != "" {
		if err := os.MkdirAll(t.diskPath(joinParts(parts)), 0o755); err != nil {
			return fmt.Errorf("restree: mkdir %s: %w", p, err)
		}
	}
	_, err = t.ensureDirs(parts)
	return err
}

func (t *Tree) ensureDirs(parts []string) (uint32, error) {
	slot := uint32(rootSlot)
	for i, name := range parts {
		if next, ok := t.childByName(slot, name); ok {
			if !t.nodes[next].dir {
				return 0, fmt.Errorf("restree: %s: %w", joinParts(parts[:i+1]), errNotDir)
			}
			slot = next
			continue
		}
		slot = t.insertNode(slot, name, true, nil)
	}
	return slot, nil
}

// insertNode creates a child of parent at its sorted position and announces it.
func (t *Tree) insertNode(parent uint32, name string, dir bool, content []byte) uint32 {
	row := t.insertPosition(parent, name)
	slot := t.alloc(name, dir, parent)
	if t.dir == "" && !dir {
		t.nodes[slot].content = slices.Clone(content)
	}
	t.nodes[parent].children = slices.Insert(t.nodes[parent].children, row, slot)
	parentHandle := t.handle(parent)
	t.notify(func(l source.Listener) { l.RowsInserted(parentHandle, row, row) })
	return slot
}

// WriteContent replaces the content of the file at p, creating it (and its
// parent directories) when missing.
func (t *Tree) WriteContent(p string, data []byte) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	parts, err := splitPath(p)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: cannot write the root", ErrInvalidPath)
	}
	rel := joinParts(parts)
	if h, ok := t.Lookup(rel); ok {
		slot, _ := t.resolve(h)
		if t.nodes[slot].dir {
			return fmt.Errorf("restree: write %s: %w", rel, source.ErrIsDirectory)
		}
		if err := t.writeDisk(rel, data); err != nil {
			return err
		}
		if t.dir == "" {
			t.nodes[slot].content = slices.Clone(data)
		}
		t.notify(func(l source.Listener) { l.DataChanged(h, h) })
		return nil
	}

	if err := t.writeDisk(rel, data); err != nil {
		return err
	}
	parent, err := t.ensureDirs(parts[:len(parts)-1])
	if err != nil {
		return err
	}
	t.insertNode(parent, parts[len(parts)-1], false, data)
	return nil
}

func (t *Tree) writeDisk(rel string, data []byte) error {
	if t.dir == "" {
		return nil
	}
	abs := t.diskPath(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("restree: write %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("restree: write %s: %w", rel, err)
	}
	return nil
}

// Remove deletes the node at p together with its subtree.
func (t *Tree) Remove(p string) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	parts, err := splitPath(p)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: cannot remove the root", ErrInvalidPath)
	}
	rel := joinParts(parts)
	h, ok := t.Lookup(rel)
	if !ok {
		return fmt.Errorf("restree: remove %s: %w", rel, source.ErrNotFound)
	}
	if t.dir != "" {
		if err := os.RemoveAll(t.diskPath(rel)); err != nil {
			return fmt.Errorf("restree: remove %s: %w", rel, err)
		}
	}
	slot, _ := t.resolve(h)
	parent := t.nodes[slot].parent
	row := slices.Index(t.nodes[parent].children, slot)
	parentHandle := t.handle(parent)
	t.notify(func(l source.Listener) { l.RowsAboutToBeRemoved(parentHandle, row, row) })

	t.nodes[parent].children = slices.Delete(t.nodes[parent].children, row, row+1)
	t.release(slot)
	return nil
}

// Reload discards every node and, for a disk-backed tree, rescans the
// directory. Listeners receive a single Reset.
func (t *Tree) Reload() error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	// Bump every generation so handles from before the reload stop resolving.
	gens := make([]uint32, len(t.nodes))
	for i := range t.nodes {
		gens[i] = t.nodes[i].gen + 1
		if gens[i] == 0 {
			gens[i] = 1
		}
	}
	t.init()
	t.nodes[rootSlot].gen = gens[rootSlot]
	for slot := 1; slot < len(gens); slot++ {
		t.nodes = append(t.nodes, node{gen: gens[slot]})
		t.free = append(t.free, uint32(slot))
	}
	slices.Reverse(t.free)
	if t.dir != "" {
		if err := t.scan(rootSlot, t.dir); err != nil {
			return err
		}
	}
	t.notify(func(l source.Listener) { l.Reset() })
	return nil
}

func joinParts(parts []string) string {
	return strings.Join(parts, "/")
}

var errNotDir = errors.New("not a directory")
