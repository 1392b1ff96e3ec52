package apkicons

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jward/apkicons/internal/store"
)

// IconRecord describes one projected icon at the time of a snapshot.
type IconRecord struct {
	Scope   string `json:"scope"`
	Kind    string `json:"kind"`
	Type    string `json:"type"`
	Path    string `json:"path"`
	Caption string `json:"caption"`
	Hash    string `json:"hash"`
}

// Snapshot returns a record per projected icon, in display order. Icons
// whose content cannot be read get an empty hash.
func (m *Model) Snapshot() []IconRecord {
	var out []IconRecord
	m.eachIcon(func(icon *IconNode) {
		h, _ := m.proxies.Key(icon)
		p := m.src.PathOf(h)
		rec := IconRecord{
			Scope:   icon.scope.Caption(),
			Kind:    icon.scope.Kind.String(),
			Type:    icon.iconType.String(),
			Path:    p,
			Caption: m.caption(icon),
		}
		if data, err := m.src.ContentOf(h); err == nil {
			rec.Hash = fmt.Sprintf("%x", sha256.Sum256(data))
		}
		out = append(out, rec)
	})
	return out
}

// SnapshotDiff lists what changed between two snapshots, keyed by path.
type SnapshotDiff struct {
	Added   []IconRecord `json:"added"`
	Removed []IconRecord `json:"removed"`
	Changed []IconRecord `json:"changed"`
}

// Empty reports whether the snapshots were equivalent.
func (d SnapshotDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffSnapshots compares prev against cur. Changed holds the current record
// of icons whose content hash or classification differs.
func DiffSnapshots(prev, cur []IconRecord) SnapshotDiff {
	before := make(map[string]IconRecord, len(prev))
	for _, r := range prev {
		before[r.Path] = r
	}
	var d SnapshotDiff
	seen := make(map[string]bool, len(cur))
	for _, r := range cur {
		seen[r.Path] = true
		old, ok := before[r.Path]
		switch {
		case !ok:
			d.Added = append(d.Added, r)
		case old.Hash != r.Hash || old.Scope != r.Scope || old.Type != r.Type:
			d.Changed = append(d.Changed, r)
		}
	}
	for _, r := range prev {
		if !seen[r.Path] {
			d.Removed = append(d.Removed, r)
		}
	}
	return d
}

// OpenStore opens (creating if needed) the snapshot database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("apkicons: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("apkicons: migrate: %w", err)
	}
	return s, nil
}

// SaveSnapshot records the model's current icons under root.
func SaveSnapshot(s *Store, root, label string, m *Model) (int64, error) {
	snap := &store.Snapshot{Root: root, Label: label, TakenAt: time.Now()}
	for _, scope := range m.Scopes() {
		snap.Scopes = append(snap.Scopes, scope.Caption())
	}
	for _, r := range m.Snapshot() {
		snap.Icons = append(snap.Icons, &store.Icon{
			Scope: r.Scope, Kind: r.Kind, Type: r.Type, Path: r.Path, Caption: r.Caption, Hash: r.Hash,
		})
	}
	id, err := s.InsertSnapshot(snap)
	if err != nil {
		return 0, fmt.Errorf("apkicons: save snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the icons of the newest snapshot of root. ok is
// false when root has never been recorded.
func LatestSnapshot(s *Store, root string) (records []IconRecord, ok bool, err error) {
	snap, err := s.LatestSnapshot(root)
	if err != nil {
		return nil, false, fmt.Errorf("apkicons: latest snapshot: %w", err)
	}
	if snap == nil {
		return nil, false, nil
	}
	for _, icon := range snap.Icons {
		records = append(records, IconRecord{
			Scope: icon.Scope, Kind: icon.Kind, Type: icon.Type, Path: icon.Path, Caption: icon.Caption, Hash: icon.Hash,
		})
	}
	return records, true, nil
}
