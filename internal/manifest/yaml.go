package manifest

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// scopeFile is the on-disk shape of an explicit scope list.
type scopeFile struct {
	Package string `yaml:"package"`
	Scopes  []struct {
		Kind      string `yaml:"kind"`
		Name      string `yaml:"name"`
		Icon      string `yaml:"icon"`
		RoundIcon string `yaml:"roundIcon"`
		Banner    string `yaml:"banner"`
	} `yaml:"scopes"`
}

// LoadScopes reads an explicit YAML scope list from path.
func LoadScopes(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open scopes: %w", err)
	}
	defer f.Close()
	return ParseScopes(f)
}

// ParseScopes decodes a YAML scope list. Scope order is preserved; it
// decides the order of activity groups in the projection.
func ParseScopes(r io.Reader) (*Manifest, error) {
	var file scopeFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("manifest: decode scopes: %w", err)
	}
	m := &Manifest{Package: file.Package}
	for i, entry := range file.Scopes {
		s := &Scope{
			Name:      entry.Name,
			Package:   file.Package,
			Icon:      entry.Icon,
			RoundIcon: entry.RoundIcon,
			Banner:    entry.Banner,
		}
		switch entry.Kind {
		case "application", "":
			if m.Application() != nil {
				return nil, fmt.Errorf("manifest: scope %d: duplicate application scope", i)
			}
			s.Kind = KindApplication
		case "activity":
			if entry.Name == "" {
				return nil, fmt.Errorf("manifest: scope %d: activity without a name", i)
			}
			s.Kind = KindActivity
		default:
			return nil, fmt.Errorf("manifest: scope %d: unknown kind %q", i, entry.Kind)
		}
		m.Scopes = append(m.Scopes, s)
	}
	return m, nil
}
