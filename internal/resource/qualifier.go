package resource

import (
	"path"
	"strconv"
	"strings"
)

// Qualifiers returns the configuration qualifiers of the resource
// directory holding p, e.g. [xxhdpi v4] for res/mipmap-xxhdpi-v4/a.png.
func Qualifiers(p string) []string {
	dir, _, ok := splitResourcePath(p)
	if !ok {
		return nil
	}
	_, quals := splitDir(dir)
	return quals
}

// Caption is the display label of a resource variant: its qualifiers joined
// by ", ", or "Default" for an unqualified directory. Literal paths are
// labelled with their file name.
func Caption(p string) string {
	if _, _, ok := splitResourcePath(p); !ok {
		return path.Base(p)
	}
	quals := Qualifiers(p)
	if len(quals) == 0 {
		return "Default"
	}
	return strings.Join(quals, ", ")
}

var densities = map[string]int{
	"ldpi":    120,
	"mdpi":    160,
	"tvdpi":   213,
	"hdpi":    240,
	"xhdpi":   320,
	"xxhdpi":  480,
	"xxxhdpi": 640,
}

// Density returns the dots-per-inch of the density qualifier in p. Paths
// without one, and anydpi/nodpi directories, report 0.
func Density(p string) int {
	for _, q := range Qualifiers(p) {
		if d, ok := densities[q]; ok {
			return d
		}
		if strings.HasSuffix(q, "dpi") {
			if n, err := strconv.Atoi(strings.TrimSuffix(q, "dpi")); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// Scale converts a size in density-independent pixels to pixels for the
// density of p. Density-less paths use mdpi.
func Scale(p string, dp int) int {
	d := Density(p)
	if d == 0 {
		d = 160
	}
	return (dp*d + 80) / 160
}
