package types

import "sort"

// StringSet is an unordered set of names
type StringSet map[string]struct{}

// NewStringSet builds a set from names
func NewStringSet(names ...string) StringSet {
	s := make(StringSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s StringSet) Add(name string) {
	s[name] = struct{}{}
}

func (s StringSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s StringSet) Remove(name string) {
	delete(s, name)
}

// Sorted returns the members in lexical order
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Difference returns the members of s not in other
func (s StringSet) Difference(other StringSet) StringSet {
	out := make(StringSet)
	for n := range s {
		if !other.Has(n) {
			out.Add(n)
		}
	}
	return out
}

// Clone returns an independent copy
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for n := range s {
		out.Add(n)
	}
	return out
}

// Inventory is a point-in-time snapshot of what the package manager reports
// as installed. It is never reused across invocations.
type Inventory struct {
	Formulae StringSet `json:"formulae" yaml:"formulae"`
	Casks    StringSet `json:"casks" yaml:"casks"`
	Taps     StringSet `json:"taps" yaml:"taps"`
	// Dependencies are formulae installed only as dependencies of others
	Dependencies StringSet `json:"dependencies" yaml:"dependencies"`
}

// NewInventory returns an empty inventory with every set allocated
func NewInventory() *Inventory {
	return &Inventory{
		Formulae:     make(StringSet),
		Casks:        make(StringSet),
		Taps:         make(StringSet),
		Dependencies: make(StringSet),
	}
}

// Set returns the installed set for a kind
func (inv *Inventory) Set(kind PackageKind) StringSet {
	if kind == Cask {
		return inv.Casks
	}
	return inv.Formulae
}

// Installed reports whether name is installed as kind
func (inv *Inventory) Installed(kind PackageKind, name string) bool {
	return inv.Set(kind).Has(name)
}

// MainFormulae are the installed formulae not present merely as dependencies
func (inv *Inventory) MainFormulae() StringSet {
	return inv.Formulae.Difference(inv.Dependencies)
}
