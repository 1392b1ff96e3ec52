package resource

import (
	"github.com/jward/apkicons/internal/source"
)

// DirResolver resolves references by walking the res/ directory of a
// source tree. The zero value is ready to use.
type DirResolver struct{}

// Resolve returns every file the reference resolves to, in source tree
// order. Unparseable and unresolvable references yield nil.
func (DirResolver) Resolve(src source.Source, ref string) []source.Handle {
	r, ok := ParseReference(ref)
	if !ok {
		return nil
	}
	if r.IsLiteral() {
		h, ok := src.Lookup(r.Literal)
		if !ok || src.IsDir(h) {
			return nil
		}
		return []source.Handle{h}
	}
	res, ok := src.Lookup("res")
	if !ok || !src.IsDir(res) {
		return nil
	}
	var out []source.Handle
	for i := range src.ChildCount(res) {
		dir := src.Child(res, i)
		if !src.IsDir(dir) {
			continue
		}
		for j := range src.ChildCount(dir) {
			f := src.Child(dir, j)
			if !src.IsDir(f) && r.Matches(src.PathOf(f)) {
				out = append(out, f)
			}
		}
	}
	return out
}

// Matches reports whether path is one of the files ref resolves to.
func (DirResolver) Matches(ref, path string) bool {
	r, ok := ParseReference(ref)
	return ok && r.Matches(path)
}
