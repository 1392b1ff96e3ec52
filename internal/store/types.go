package store

import "time"

// Snapshot is one recorded state of a project's icon projection.
type Snapshot struct {
	ID      int64
	Root    string
	Label   string
	Scopes  []string
	TakenAt time.Time
	Icons   []*Icon
}

// Icon is one projected icon within a snapshot.
type Icon struct {
	ID         int64
	SnapshotID int64
	Position   int
	Scope      string
	Kind       string
	Type       string
	Path       string
	Caption    string
	Hash       string
}
