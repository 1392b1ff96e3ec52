// Package restree is an arena-backed resource tree that implements
// source.Source. Nodes live in slots; removing a node bumps its slot
// generation so every outstanding handle to it stops resolving.
//
// A Tree is either purely in-memory or mirrors a directory on disk. In the
// latter case mutators touch the disk first and only update the tree (and
// notify listeners) once the disk operation succeeded.
package restree

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jward/apkicons/internal/source"
)

// ErrInvalidPath is returned for paths that escape the tree or name the root
// where a file is required.
var ErrInvalidPath = errors.New("restree: invalid path")

type node struct {
	gen      uint32
	live     bool
	name     string
	dir      bool
	content  []byte
	parent   uint32
	children []uint32
}

type subscription struct {
	l source.Listener
}

// Tree is a mutable resource tree. It is not safe for concurrent use: all
// reads, mutations and notifications happen on the caller's goroutine.
type Tree struct {
	nodes      []node
	free       []uint32
	dir        string
	subs       []*subscription
	delivering bool
}

var _ source.Source = (*Tree)(nil)

const rootSlot = 0

// New returns an empty in-memory tree.
func New() *Tree {
	t := &Tree{}
	t.init()
	return t
}

// Load mirrors the directory at dir. Later mutations are written through to
// disk.
func Load(dir string) (*Tree, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("restree: load %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("restree: load %s: not a directory", dir)
	}
	t := &Tree{dir: dir}
	t.init()
	if err := t.scan(rootSlot, dir); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) init() {
	t.nodes = []node{{gen: 1, live: true, dir: true}}
	t.free = nil
}

func (t *Tree) scan(parent uint32, abs string) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("restree: read %s: %w", abs, err)
	}
	for _, e := range entries {
		slot := t.alloc(e.Name(), e.IsDir(), parent)
		t.nodes[parent].children = append(t.nodes[parent].children, slot)
		if e.IsDir() {
			if err := t.scan(slot, filepath.Join(abs, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dir returns the backing directory, or "" for an in-memory tree.
func (t *Tree) Dir() string {
	return t.dir
}

// Len returns the number of live nodes, the root included.
func (t *Tree) Len() int {
	return len(t.nodes) - len(t.free)
}

func (t *Tree) alloc(name string, dir bool, parent uint32) uint32 {
	n := node{live: true, name: name, dir: dir, parent: parent}
	if k := len(t.free); k > 0 {
		slot := t.free[k-1]
		t.free = t.free[:k-1]
		n.gen = t.nodes[slot].gen
		t.nodes[slot] = n
		return slot
	}
	n.gen = 1
	t.nodes = append(t.nodes, n)
	return uint32(len(t.nodes) - 1)
}

// release frees slot and its descendants, bumping their generations.
func (t *Tree) release(slot uint32) {
	for _, child := range t.nodes[slot].children {
		t.release(child)
	}
	n := &t.nodes[slot]
	n.live = false
	n.children = nil
	n.content = nil
	n.gen++
	if n.gen == 0 {
		n.gen = 1
	}
	t.free = append(t.free, slot)
}

func (t *Tree) handle(slot uint32) source.Handle {
	return source.NewHandle(slot, t.nodes[slot].gen)
}

func (t *Tree) resolve(h source.Handle) (uint32, bool) {
	if h.IsZero() {
		return 0, false
	}
	slot := h.Slot()
	if int(slot) >= len(t.nodes) {
		return 0, false
	}
	n := &t.nodes[slot]
	if !n.live || n.gen != h.Generation() {
		return 0, false
	}
	return slot, true
}

// Root returns the handle of the root directory.
func (t *Tree) Root() source.Handle {
	return t.handle(rootSlot)
}

// Valid reports whether h still names a live node.
func (t *Tree) Valid(h source.Handle) bool {
	_, ok := t.resolve(h)
	return ok
}

func (t *Tree) ChildCount(h source.Handle) int {
	slot, ok := t.resolve(h)
	if !ok {
		return 0
	}
	return len(t.nodes[slot].children)
}

func (t *Tree) Child(h source.Handle, row int) source.Handle {
	slot, ok := t.resolve(h)
	if !ok {
		return source.Handle{}
	}
	children := t.nodes[slot].children
	if row < 0 || row >= len(children) {
		return source.Handle{}
	}
	return t.handle(children[row])
}

func (t *Tree) Parent(h source.Handle) source.Handle {
	slot, ok := t.resolve(h)
	if !ok || slot == rootSlot {
		return source.Handle{}
	}
	return t.handle(t.nodes[slot].parent)
}

func (t *Tree) Row(h source.Handle) int {
	slot, ok := t.resolve(h)
	if !ok || slot == rootSlot {
		return 0
	}
	return slices.Index(t.nodes[t.nodes[slot].parent].children, slot)
}

func (t *Tree) IsDir(h source.Handle) bool {
	slot, ok := t.resolve(h)
	return ok && t.nodes[slot].dir
}

// Name returns the last path element of h.
func (t *Tree) Name(h source.Handle) string {
	slot, ok := t.resolve(h)
	if !ok {
		return ""
	}
	return t.nodes[slot].name
}

// PathOf returns the slash-separated path of h relative to the root. The
// root itself has the empty path.
func (t *Tree) PathOf(h source.Handle) string {
	slot, ok := t.resolve(h)
	if !ok {
		return ""
	}
	var parts []string
	for slot != rootSlot {
		parts = append(parts, t.nodes[slot].name)
		slot = t.nodes[slot].parent
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

func (t *Tree) ContentOf(h source.Handle) ([]byte, error) {
	slot, ok := t.resolve(h)
	if !ok {
		return nil, source.ErrNotFound
	}
	if t.nodes[slot].dir {
		return nil, source.ErrIsDirectory
	}
	if t.dir != "" {
		data, err := os.ReadFile(t.diskPath(t.PathOf(h)))
		if err != nil {
			return nil, fmt.Errorf("restree: read %s: %w", t.PathOf(h), err)
		}
		return data, nil
	}
	return slices.Clone(t.nodes[slot].content), nil
}

// Lookup returns the node at p.
func (t *Tree) Lookup(p string) (source.Handle, bool) {
	parts, err := splitPath(p)
	if err != nil {
		return source.Handle{}, false
	}
	slot := uint32(rootSlot)
	for _, name := range parts {
		next, ok := t.childByName(slot, name)
		if !ok {
			return source.Handle{}, false
		}
		slot = next
	}
	return t.handle(slot), true
}

func (t *Tree) childByName(parent uint32, name string) (uint32, bool) {
	for _, c := range t.nodes[parent].children {
		if t.nodes[c].name == name {
			return c, true
		}
	}
	return 0, false
}

// insertPosition keeps siblings ordered by name.
func (t *Tree) insertPosition(parent uint32, name string) int {
	children := t.nodes[parent].children
	row, _ := slices.BinarySearchFunc(children, name, func(slot uint32, target string) int {
		return strings.Compare(t.nodes[slot].name, target)
	})
	return row
}

func splitPath(p string) ([]string, error) {
	p = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
	if p == "" {
		return nil, nil
	}
	parts := strings.Split(p, "/")
	for _, part := range parts {
		if part == ".." {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPath, p)
		}
	}
	return parts, nil
}

func (t *Tree) diskPath(rel string) string {
	return filepath.Join(t.dir, filepath.FromSlash(rel))
}
