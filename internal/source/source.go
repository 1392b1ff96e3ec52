// Package source defines the boundary between the icon projection and the
// hierarchical resource tree it observes.
package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a path does not name a node.
	ErrNotFound = errors.New("source: not found")
	// ErrIsDirectory is returned when file content is requested for a directory.
	ErrIsDirectory = errors.New("source: is a directory")
	// ErrReentrant is returned when a mutation is requested while the source
	// is still delivering a notification.
	ErrReentrant = errors.New("source: mutation during notification delivery")
)

// Handle is a persistent reference to a source node. It stays equal to
// itself while the node lives, regardless of sibling inserts and removals,
// and never compares equal to a handle of a node created later in the same
// slot. The zero Handle is invalid.
type Handle struct {
	slot uint32
	gen  uint32
}

// NewHandle builds a handle from an arena slot and its generation. The
// generation must be non-zero.
func NewHandle(slot, gen uint32) Handle {
	if gen == 0 {
		panic("source: handle generation must be non-zero")
	}
	return Handle{slot: slot, gen: gen}
}

// Slot returns the arena slot the handle points at.
func (h Handle) Slot() uint32 { return h.slot }

// Generation returns the slot generation captured by the handle.
func (h Handle) Generation() uint32 { return h.gen }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(invalid)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.slot, h.gen)
}

// Source is a read-only view of a hierarchical resource tree plus the two
// mutators the projection forwards edits to.
//
// Mutators report synchronous failure through their error. A successful
// mutation is observed through the Listener notifications it triggers.
type Source interface {
	Root() Handle
	Valid(h Handle) bool
	ChildCount(h Handle) int
	Child(h Handle, row int) Handle
	Parent(h Handle) Handle
	Row(h Handle) int
	IsDir(h Handle) bool
	PathOf(h Handle) string
	ContentOf(h Handle) ([]byte, error)
	Lookup(path string) (Handle, bool)

	WriteContent(path string, data []byte) error
	Remove(path string) error

	// Subscribe registers l for structural notifications and returns a
	// function that unregisters it.
	Subscribe(l Listener) (unsubscribe func())
}

// Listener receives structural notifications. Notifications are delivered
// synchronously, one at a time, after the in-memory tree has been updated
// (or, for RowsAboutToBeRemoved, before it is).
type Listener interface {
	// RowsInserted reports that rows first..last of parent were created.
	RowsInserted(parent Handle, first, last int)
	// RowsAboutToBeRemoved reports that rows first..last of parent are about
	// to be removed. Their handles are still valid during the call.
	RowsAboutToBeRemoved(parent Handle, first, last int)
	// DataChanged reports that the content of the sibling range from first
	// to last (inclusive) changed.
	DataChanged(first, last Handle)
	// Reset reports that the whole tree was replaced.
	Reset()
}
