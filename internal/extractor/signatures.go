package extractor

import (
	"errors"
	"fmt"
	"slices"
)

// Role is the meaning of one positional argument of a translation function.
type Role int

const (
	RoleSingular Role = iota
	RolePlural
	RoleCount
	RoleContext
	RoleDomain
)

func (r Role) String() string {
	switch r {
	case RoleSingular:
		return "singular"
	case RolePlural:
		return "plural"
	case RoleCount:
		return "count"
	case RoleContext:
		return "context"
	case RoleDomain:
		return "domain"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Signature is the argument template of a translation function. The number
// of roles is the exact argument count a call must have.
type Signature struct {
	Name  string
	Roles []Role
}

// Arity returns the expected argument count.
func (s Signature) Arity() int {
	return len(s.Roles)
}

// Index returns the argument position of role, or -1.
func (s Signature) Index(role Role) int {
	return slices.Index(s.Roles, role)
}

var (
	ErrNoDomain     = errors.New("signature has no domain argument")
	ErrNoSingular   = errors.New("signature has no singular argument")
	ErrDuplicateArg = errors.New("signature repeats a role")
)

// Table is a read-only registry of translation functions. It is safe to
// share between goroutines.
type Table struct {
	sigs map[string]Signature
}

// NewTable validates and builds a table. Every signature needs exactly one
// singular and one domain argument.
func NewTable(defs map[string][]Role) (*Table, error) {
	t := &Table{sigs: make(map[string]Signature, len(defs))}
	for name, roles := range defs {
		seen := make(map[Role]bool, len(roles))
		for _, r := range roles {
			if seen[r] {
				return nil, fmt.Errorf("%s: %w: %s", name, ErrDuplicateArg, r)
			}
			seen[r] = true
		}
		if !seen[RoleDomain] {
			return nil, fmt.Errorf("%s: %w", name, ErrNoDomain)
		}
		if !seen[RoleSingular] {
			return nil, fmt.Errorf("%s: %w", name, ErrNoSingular)
		}
		t.sigs[name] = Signature{Name: name, Roles: slices.Clone(roles)}
	}
	return t, nil
}

// Lookup returns the signature registered under name.
func (t *Table) Lookup(name string) (Signature, bool) {
	s, ok := t.sigs[name]
	return s, ok
}

// Has reports whether name is a translation function.
func (t *Table) Has(name string) bool {
	_, ok := t.sigs[name]
	return ok
}

// Names returns the registered names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.sigs))
	for n := range t.sigs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

var (
	textDomain          = []Role{RoleSingular, RoleDomain}
	textContextDomain   = []Role{RoleSingular, RoleContext, RoleDomain}
	pluralDomain        = []Role{RoleSingular, RolePlural, RoleCount, RoleDomain}
	pluralContextDomain = []Role{RoleSingular, RolePlural, RoleCount, RoleContext, RoleDomain}
	noopDomain          = []Role{RoleSingular, RolePlural, RoleDomain}
	noopContextDomain   = []Role{RoleSingular, RolePlural, RoleContext, RoleDomain}
)

// gettext compatibility set.
var defaultSignatures = map[string][]Role{
	"__":              textDomain,
	"_e":              textDomain,
	"esc_attr__":      textDomain,
	"esc_attr_e":      textDomain,
	"esc_html__":      textDomain,
	"esc_html_e":      textDomain,
	"esc_xml__":       textDomain,
	"esc_xml_e":       textDomain,
	"_x":              textContextDomain,
	"_ex":             textContextDomain,
	"esc_attr_x":      textContextDomain,
	"esc_html_x":      textContextDomain,
	"esc_xml_x":       textContextDomain,
	"_n":              pluralDomain,
	"_nx":             pluralContextDomain,
	"_n_noop":         noopDomain,
	"_nx_noop":        noopContextDomain,
	"_":               textDomain,
	"_c":              textDomain,
	"_nc":             pluralDomain,
	"__ngettext":      pluralDomain,
	"__ngettext_noop": noopDomain,
}

var defaultTable = func() *Table {
	t, err := NewTable(defaultSignatures)
	if err != nil {
		panic(err)
	}
	return t
}()

// DefaultTable returns the shared gettext compatibility table.
func DefaultTable() *Table {
	return defaultTable
}
