// Package resource understands Android resource references and the
// res/<type>[-qualifiers]/<name>.<ext> layout of a decoded APK.
package resource

import (
	"path"
	"strings"
)

// Reference is a parsed icon attribute value. Either Type and Name are set
// (an @type/name reference) or Literal holds a project-relative path.
type Reference struct {
	Type    string
	Name    string
	Literal string
}

// ParseReference parses a manifest attribute value. Framework references
// (@android:...), theme attributes (?attr/...) and empty values yield false.
func ParseReference(s string) (Reference, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Reference{}, false
	case strings.HasPrefix(s, "?"):
		return Reference{}, false
	case strings.HasPrefix(s, "@"):
		body := strings.TrimPrefix(strings.TrimPrefix(s[1:], "*"), "+")
		if pkg, rest, ok := strings.Cut(body, ":"); ok {
			if pkg == "android" {
				return Reference{}, false
			}
			body = rest
		}
		typ, name, ok := strings.Cut(body, "/")
		if !ok || typ == "" || name == "" || strings.Contains(name, "/") {
			return Reference{}, false
		}
		return Reference{Type: typ, Name: name}, true
	default:
		lit := strings.TrimPrefix(path.Clean("/"+s), "/")
		if lit == "" {
			return Reference{}, false
		}
		return Reference{Literal: lit}, true
	}
}

// IsLiteral reports whether r names a path rather than a resource.
func (r Reference) IsLiteral() bool {
	return r.Literal != ""
}

func (r Reference) String() string {
	if r.IsLiteral() {
		return r.Literal
	}
	return "@" + r.Type + "/" + r.Name
}

// Matches reports whether the project-relative file path p is one of the
// variants r resolves to.
func (r Reference) Matches(p string) bool {
	if r.IsLiteral() {
		return strings.TrimPrefix(path.Clean("/"+p), "/") == r.Literal
	}
	dir, file, ok := splitResourcePath(p)
	if !ok {
		return false
	}
	typ, _ := splitDir(dir)
	return typ == r.Type && baseName(file) == r.Name
}

// splitResourcePath splits res/<dir>/<file>.
func splitResourcePath(p string) (dir, file string, ok bool) {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) != 3 || parts[0] != "res" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// splitDir splits "mipmap-xxhdpi-v4" into "mipmap" and its qualifiers.
func splitDir(dir string) (string, []string) {
	parts := strings.Split(dir, "-")
	return parts[0], parts[1:]
}

// baseName strips the extension, treating ".9.png" as one extension.
func baseName(file string) string {
	if strings.HasSuffix(file, ".9.png") {
		return strings.TrimSuffix(file, ".9.png")
	}
	if i := strings.IndexByte(file, '.'); i > 0 {
		return file[:i]
	}
	return file
}
