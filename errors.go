package apkicons

import "errors"

var (
	// ErrInvalidIndex is returned when an operation that needs an icon row
	// is given a group row, an activity row, or an invalid index.
	ErrInvalidIndex = errors.New("apkicons: index does not address an icon")

	// ErrUnsupportedFormat is returned for icons that cannot be decoded or
	// encoded as raster images.
	ErrUnsupportedFormat = errors.New("apkicons: unsupported image format")

	// ErrNoIcon is returned when a group has no icon to show.
	ErrNoIcon = errors.New("apkicons: no icon")

	// ErrNoSource is returned by edits on a model without a source.
	ErrNoSource = errors.New("apkicons: no source")
)
