package store

import (
	"database/sql"
	"fmt"
)

// InsertSnapshot writes snap and its icons in a single transaction and sets
// the assigned IDs.
func (s *Store) InsertSnapshot(snap *Snapshot) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO snapshots (root, label, scopes, taken_at) VALUES (?, ?, ?, ?)",
		snap.Root, snap.Label, marshalStrings(snap.Scopes), snap.TakenAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	for i, icon := range snap.Icons {
		icon.SnapshotID = id
		icon.Position = i
		if _, err := insertIconTx(tx, icon); err != nil {
			return 0, fmt.Errorf("insert snapshot: icon %q: %w", icon.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert snapshot: commit: %w", err)
	}
	snap.ID = id
	return id, nil
}

func insertIconTx(tx *sql.Tx, icon *Icon) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO snapshot_icons (snapshot_id, position, scope, kind, icon_type, path, caption, hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		icon.SnapshotID, icon.Position, icon.Scope, icon.Kind, icon.Type, icon.Path, icon.Caption, icon.Hash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	icon.ID = id
	return id, nil
}

func (s *Store) scanSnapshot(scanner interface{ Scan(...any) error }) (*Snapshot, error) {
	snap := &Snapshot{}
	var label, scopes sql.NullString
	if err := scanner.Scan(&snap.ID, &snap.Root, &label, &scopes, &snap.TakenAt); err != nil {
		return nil, err
	}
	snap.Label = label.String
	snap.Scopes = unmarshalStrings(scopes.String)
	return snap, nil
}

// SnapshotByID returns the snapshot with its icons, or nil if it does not
// exist.
func (s *Store) SnapshotByID(id int64) (*Snapshot, error) {
	snap, err := s.scanSnapshot(s.db.QueryRow(
		"SELECT id, root, label, scopes, taken_at FROM snapshots WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot by id: %w", err)
	}
	if snap.Icons, err = s.IconsBySnapshot(snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestSnapshot returns the most recent snapshot of root with its icons,
// or nil if root has none.
func (s *Store) LatestSnapshot(root string) (*Snapshot, error) {
	snap, err := s.scanSnapshot(s.db.QueryRow(
		"SELECT id, root, label, scopes, taken_at FROM snapshots WHERE root = ? ORDER BY taken_at DESC, id DESC LIMIT 1", root,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if snap.Icons, err = s.IconsBySnapshot(snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// Snapshots lists the snapshots of root, newest first, without icons.
func (s *Store) Snapshots(root string) ([]*Snapshot, error) {
	rows, err := s.db.Query(
		"SELECT id, root, label, scopes, taken_at FROM snapshots WHERE root = ? ORDER BY taken_at DESC, id DESC", root,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshots: %w", err)
	}
	defer rows.Close()
	var out []*Snapshot
	for rows.Next() {
		snap, err := s.scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("snapshots: scan: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// IconsBySnapshot returns the icons of a snapshot in recorded order.
func (s *Store) IconsBySnapshot(snapshotID int64) ([]*Icon, error) {
	rows, err := s.db.Query(
		`SELECT id, snapshot_id, position, scope, kind, icon_type, path, caption, hash
		 FROM snapshot_icons WHERE snapshot_id = ? ORDER BY position`, snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("icons by snapshot: %w", err)
	}
	defer rows.Close()
	var out []*Icon
	for rows.Next() {
		icon := &Icon{}
		var caption, hash sql.NullString
		if err := rows.Scan(&icon.ID, &icon.SnapshotID, &icon.Position, &icon.Scope, &icon.Kind,
			&icon.Type, &icon.Path, &caption, &hash); err != nil {
			return nil, fmt.Errorf("icons by snapshot: scan: %w", err)
		}
		icon.Caption = caption.String
		icon.Hash = hash.String
		out = append(out, icon)
	}
	return out, rows.Err()
}

// IconHistory returns every recorded state of path across snapshots of
// root, oldest first.
func (s *Store) IconHistory(root, path string) ([]*Icon, error) {
	rows, err := s.db.Query(
		`SELECT i.id, i.snapshot_id, i.position, i.scope, i.kind, i.icon_type, i.path, i.caption, i.hash
		 FROM snapshot_icons i JOIN snapshots s ON s.id = i.snapshot_id
		 WHERE s.root = ? AND i.path = ? ORDER BY s.taken_at, s.id`, root, path,
	)
	if err != nil {
		return nil, fmt.Errorf("icon history: %w", err)
	}
	defer rows.Close()
	var out []*Icon
	for rows.Next() {
		icon := &Icon{}
		var caption, hash sql.NullString
		if err := rows.Scan(&icon.ID, &icon.SnapshotID, &icon.Position, &icon.Scope, &icon.Kind,
			&icon.Type, &icon.Path, &caption, &hash); err != nil {
			return nil, fmt.Errorf("icon history: scan: %w", err)
		}
		icon.Caption = caption.String
		icon.Hash = hash.String
		out = append(out, icon)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps the newest keep snapshots of root and deletes the
// rest. It returns the number deleted.
func (s *Store) PruneSnapshots(root string, keep int) (int, error) {
	snaps, err := s.Snapshots(root)
	if err != nil {
		return 0, err
	}
	if len(snaps) <= keep {
		return 0, nil
	}
	var ids []int64
	for _, snap := range snaps[max(keep, 0):] {
		ids = append(ids, snap.ID)
	}
	_, err = s.db.Exec("DELETE FROM snapshots WHERE id IN ("+placeholderList(len(ids))+")", int64sToArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return len(ids), nil
}
