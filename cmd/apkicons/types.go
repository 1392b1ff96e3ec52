package main

import (
	"time"

	"github.com/jward/apkicons"
	"github.com/jward/apkicons/internal/manifest"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIIcon is a JSON-friendly projected icon.
type CLIIcon struct {
	Scope   string `json:"scope"`
	Kind    string `json:"kind"`
	Type    string `json:"type"`
	Path    string `json:"path"`
	Caption string `json:"caption"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// CLIScope is a JSON-friendly manifest scope.
type CLIScope struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Caption   string `json:"caption"`
	Icon      string `json:"icon,omitempty"`
	RoundIcon string `json:"round_icon,omitempty"`
	Banner    string `json:"banner,omitempty"`
}

// CLIEdit reports what an edit did to one resource.
type CLIEdit struct {
	Action string `json:"action"`
	Path   string `json:"path"`
}

// CLISnapshot describes a recorded snapshot.
type CLISnapshot struct {
	ID    int64  `json:"id"`
	Root  string `json:"root"`
	Label string `json:"label,omitempty"`
	Icons int    `json:"icons"`
}

// CLIIconState is one recorded state of an icon.
type CLIIconState struct {
	SnapshotID int64     `json:"snapshot_id"`
	Label      string    `json:"label,omitempty"`
	TakenAt    time.Time `json:"taken_at"`
	Scope      string    `json:"scope"`
	Type       string    `json:"type"`
	Hash       string    `json:"hash"`
}

// CLIPrune reports the result of pruning snapshots.
type CLIPrune struct {
	Deleted int `json:"deleted"`
	Kept    int `json:"kept"`
}

// cliIcons lists the model's icons in display order with their pixel size
// when it can be read.
func cliIcons(m *apkicons.Model) []CLIIcon {
	var out []CLIIcon
	for _, r := range m.Snapshot() {
		icon := CLIIcon{Scope: r.Scope, Kind: r.Kind, Type: r.Type, Path: r.Path, Caption: r.Caption}
		if idx, err := m.IndexForPath(r.Path); err == nil {
			if size, err := m.IconSize(idx); err == nil {
				icon.Width, icon.Height = size.X, size.Y
			}
		}
		out = append(out, icon)
	}
	return out
}

func toCLIScope(s *apkicons.Scope) CLIScope {
	return CLIScope{
		Kind:      s.Kind.String(),
		Name:      s.Name,
		Caption:   s.Caption(),
		Icon:      s.Reference(manifest.TypeIcon),
		RoundIcon: s.Reference(manifest.TypeRoundIcon),
		Banner:    s.Reference(manifest.TypeBanner),
	}
}
