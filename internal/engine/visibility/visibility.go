// Package visibility implements the access-control levels of the module
// system and a checker that accumulates violations instead of failing fast.
package visibility

import (
	"slices"
	"strings"
)

// Visibility is ordered by reach: Private < Restricted < Crate < Public.
type Visibility uint8

const (
	Private Visibility = iota
	Restricted
	Crate
	Public
)

// All lists every level from narrowest to widest.
var All = []Visibility{Private, Restricted, Crate, Public}

// FromKeyword maps a declaration modifier to its level. The bare absence of
// a modifier means Private and is not a keyword.
func FromKeyword(keyword string) (Visibility, bool) {
	switch strings.TrimSpace(keyword) {
	case "pub", "prakāśita":
		return Public, true
	case "pub(crate)", "khaṇḍa-gata":
		return Crate, true
	case "pub(super)", "mitra-gata":
		return Restricted, true
	default:
		return Private, false
	}
}

func (v Visibility) String() string {
	switch v {
	case Public:
		return "pub"
	case Crate:
		return "pub(crate)"
	case Restricted:
		return "pub(super)"
	case Private:
		return "private"
	default:
		return "invalid"
	}
}

// Describe returns the human wording used in diagnostics.
func (v Visibility) Describe() string {
	switch v {
	case Public:
		return "public"
	case Crate:
		return "crate-visible"
	case Restricted:
		return "restricted"
	default:
		return "private"
	}
}

// Reach describes how far a visibility level extends.
type Reach uint8

const (
	ReachLocal Reach = iota
	ReachModule
	ReachCrate
	ReachUniverse
)

func (v Visibility) Reach() Reach {
	switch v {
	case Public:
		return ReachUniverse
	case Crate:
		return ReachCrate
	case Restricted:
		return ReachModule
	default:
		return ReachLocal
	}
}

// AllowsAccess decides whether code in accessor may reference a symbol of
// this visibility that is defined in target.
func (v Visibility) AllowsAccess(accessor, target Scope) bool {
	switch v {
	case Public:
		return true
	case Crate:
		return accessor.Crate == target.Crate
	case Restricted:
		return hasPrefix(accessor.ModulePath, target.ParentModule()) ||
			target.allows(accessor.ModulePath)
	case Private:
		return slices.Equal(accessor.ModulePath, target.ModulePath)
	default:
		panic("visibility: unknown level " + v.String())
	}
}

// Required returns the narrowest level v such that v and every wider level
// let accessor reach a symbol defined in target. Restricted does not look at
// the compilation unit, so the levels are not monotone on their own.
func Required(accessor, target Scope) Visibility {
	required := Public
	for i := len(All) - 1; i >= 0; i-- {
		if !All[i].AllowsAccess(accessor, target) {
			break
		}
		required = All[i]
	}
	return required
}

// Scope is the context a visibility decision is made in: the compilation unit,
// the module path inside it, and module paths granted explicit access.
type Scope struct {
	Crate      string
	ModulePath []string
	Allowed    [][]string
}

func NewScope(crate string, modulePath []string) Scope {
	return Scope{Crate: crate, ModulePath: slices.Clone(modulePath)}
}

// Allow grants restricted access to the module at path.
func (s Scope) Allow(path []string) Scope {
	if s.allows(path) {
		return s
	}
	s.Allowed = append(slices.Clone(s.Allowed), slices.Clone(path))
	return s
}

func (s Scope) allows(path []string) bool {
	for _, allowed := range s.Allowed {
		if slices.Equal(allowed, path) {
			return true
		}
	}
	return false
}

func (s Scope) ParentModule() []string {
	if len(s.ModulePath) <= 1 {
		return []string{}
	}
	return slices.Clone(s.ModulePath[:len(s.ModulePath)-1])
}

// IsChildOf reports whether s is strictly nested inside other within the same
// compilation unit.
func (s Scope) IsChildOf(other Scope) bool {
	if s.Crate != other.Crate {
		return false
	}
	if len(s.ModulePath) <= len(other.ModulePath) {
		return false
	}
	return hasPrefix(s.ModulePath, other.ModulePath)
}

func (s Scope) Child(name string) Scope {
	path := make([]string, 0, len(s.ModulePath)+1)
	path = append(path, s.ModulePath...)
	path = append(path, name)
	return Scope{Crate: s.Crate, ModulePath: path}
}

func (s Scope) String() string {
	if len(s.ModulePath) == 0 {
		return s.Crate
	}
	return s.Crate + "::" + strings.Join(s.ModulePath, "::")
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	return slices.Equal(path[:len(prefix)], prefix)
}
