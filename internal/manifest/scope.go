// Package manifest turns an Android manifest into icon classification
// scopes: one for the application and one per activity, each naming the
// resources its icon slots point at.
package manifest

import (
	"fmt"
	"strings"
)

// IconType is an icon attribute slot.
type IconType int

const (
	TypeIcon IconType = iota
	TypeRoundIcon
	TypeBanner
)

// IconTypes lists every slot in display order.
var IconTypes = []IconType{TypeIcon, TypeRoundIcon, TypeBanner}

func (t IconType) String() string {
	switch t {
	case TypeIcon:
		return "Icon"
	case TypeRoundIcon:
		return "Round Icon"
	case TypeBanner:
		return "Banner"
	default:
		return fmt.Sprintf("IconType(%d)", int(t))
	}
}

// Attribute returns the manifest attribute name backing the slot.
func (t IconType) Attribute() string {
	switch t {
	case TypeIcon:
		return "icon"
	case TypeRoundIcon:
		return "roundIcon"
	case TypeBanner:
		return "banner"
	default:
		return ""
	}
}

// ParseIconType accepts either the attribute name or the display name.
func ParseIconType(s string) (IconType, bool) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, t := range IconTypes {
		if norm == strings.ToLower(t.Attribute()) {
			return t, true
		}
	}
	return 0, false
}

// Kind tells which manifest component a scope describes.
type Kind int

const (
	KindApplication Kind = iota
	KindActivity
)

func (k Kind) String() string {
	if k == KindApplication {
		return "application"
	}
	return "activity"
}

// Scope binds one manifest component to the resource references of its
// icon slots. An empty reference means the slot is not declared.
type Scope struct {
	Kind      Kind
	Name      string
	Package   string
	Icon      string
	RoundIcon string
	Banner    string
}

// Reference returns the resource reference declared for slot t.
func (s *Scope) Reference(t IconType) string {
	switch t {
	case TypeIcon:
		return s.Icon
	case TypeRoundIcon:
		return s.RoundIcon
	case TypeBanner:
		return s.Banner
	default:
		return ""
	}
}

// SetReference declares ref for slot t.
func (s *Scope) SetReference(t IconType, ref string) {
	switch t {
	case TypeIcon:
		s.Icon = ref
	case TypeRoundIcon:
		s.RoundIcon = ref
	case TypeBanner:
		s.Banner = ref
	}
}

// IsApplication reports whether s is the application scope.
func (s *Scope) IsApplication() bool {
	return s.Kind == KindApplication
}

// Caption is the label shown for the scope's group row. Activity names
// inside the manifest package are shortened to their ".Relative" form.
func (s *Scope) Caption() string {
	if s.IsApplication() {
		return "Application"
	}
	name := s.Name
	if s.Package != "" && strings.HasPrefix(name, s.Package+".") {
		name = strings.TrimPrefix(name, s.Package)
	}
	return name
}
