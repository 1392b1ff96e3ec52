package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

const androidNamespace = "http://schemas.android.com/apk/res/android"

// Manifest holds the scopes declared by a manifest, application first.
type Manifest struct {
	Package string
	Scopes  []*Scope
}

// Application returns the application scope, or nil if none was declared.
func (m *Manifest) Application() *Scope {
	for _, s := range m.Scopes {
		if s.IsApplication() {
			return s
		}
	}
	return nil
}

// Load parses the decoded AndroidManifest.xml at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a decoded (text) AndroidManifest.xml. Activities and activity
// aliases are only recognised inside <application>.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	dec := xml.NewDecoder(r)
	inApplication := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manifest: parse: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "manifest":
				m.Package = plainAttr(el, "package")
			case "application":
				inApplication = true
				m.Scopes = append(m.Scopes, scopeFrom(el, KindApplication))
			case "activity", "activity-alias":
				if inApplication {
					m.Scopes = append(m.Scopes, scopeFrom(el, KindActivity))
				}
			}
		case xml.EndElement:
			if el.Name.Local == "application" {
				inApplication = false
			}
		}
	}
	if m.Package == "" && len(m.Scopes) == 0 {
		return nil, fmt.Errorf("manifest: parse: no <manifest> element")
	}
	for _, s := range m.Scopes {
		s.Package = m.Package
		if s.Kind == KindActivity && len(s.Name) > 0 && s.Name[0] == '.' {
			s.Name = m.Package + s.Name
		}
	}
	return m, nil
}

func scopeFrom(el xml.StartElement, kind Kind) *Scope {
	s := &Scope{Kind: kind, Name: androidAttr(el, "name")}
	for _, t := range IconTypes {
		s.SetReference(t, androidAttr(el, t.Attribute()))
	}
	return s
}

func androidAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local && (a.Name.Space == androidNamespace || a.Name.Space == "android") {
			return a.Value
		}
	}
	return ""
}

func plainAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}
