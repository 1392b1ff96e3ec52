package apkicons

import (
	"github.com/jward/apkicons/internal/manifest"
	"github.com/jward/apkicons/internal/source"
	"github.com/jward/apkicons/internal/store"
)

// Public type aliases for the internal types that appear in the Model API.

type Handle = source.Handle
type Source = source.Source
type Listener = source.Listener
type Scope = manifest.Scope
type Manifest = manifest.Manifest
type IconType = manifest.IconType
type Store = store.Store

const (
	TypeIcon      = manifest.TypeIcon
	TypeRoundIcon = manifest.TypeRoundIcon
	TypeBanner    = manifest.TypeBanner
)

// Top-level rows. The projection always has exactly these two.
const (
	RowApplication = iota
	RowActivities
)

// Columns of every row.
const (
	ColumnCaption = iota
	ColumnPath
	ColumnType
	columnCount
)

// Resolver turns a scope's slot reference into source files. Resolve must
// return files in source tree order, and Matches must agree with it for a
// single file path.
type Resolver interface {
	Resolve(src Source, ref string) []Handle
	Matches(ref, path string) bool
}
